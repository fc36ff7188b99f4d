package ir

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type recorder struct {
	events []string
	veto   map[Event]bool
}

func (r *recorder) fn(n *Node, ev Event, key any) error {
	r.events = append(r.events, n.Value()+":"+ev.String())
	if r.veto[ev] {
		return errors.New("no")
	}
	return nil
}

func TestNotificatorAttach(t *testing.T) {
	n := NewComplex("svc", "a", 1)
	defer n.destroy()
	first := &recorder{veto: map[Event]bool{NotifDetach: true}}
	if err := NotificatorAttach(n, first.fn, "k1"); err != nil {
		t.Fatal(err)
	}
	second := &recorder{}
	if err := NotificatorAttach(n, second.fn, "k2"); !errors.Is(err, ErrDenied) {
		t.Fatalf("detach veto: %v", err)
	}
	if _, key := n.Notificator(); key != "k1" {
		t.Errorf("vetoed detach replaced notificator, key %v", key)
	}
	first.veto = nil
	second.veto = map[Event]bool{NotifAttach: true}
	if err := NotificatorAttach(n, second.fn, "k2"); !errors.Is(err, ErrDenied) {
		t.Fatalf("attach veto: %v", err)
	}
	if fn, _ := n.Notificator(); fn != nil {
		t.Errorf("vetoed attach left a notificator")
	}
	want := []string{"a:notif-attach", "a:notif-detach", "a:notif-detach"}
	if diff := cmp.Diff(want, first.events); diff != "" {
		t.Errorf("first (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a:notif-attach"}, second.events); diff != "" {
		t.Errorf("second (-want +got):\n%s", diff)
	}
	if err := NotificatorAttach(nil, nil, nil); !errors.Is(err, ErrInvalid) {
		t.Errorf("nil node: %v", err)
	}
}

func TestAttachUdata(t *testing.T) {
	n := NewComplex("svc", "a", 1)
	defer n.destroy()
	r := &recorder{}
	if err := AttachUdata(n, 1); err != nil {
		t.Fatal(err)
	}
	if err := NotificatorAttach(n, r.fn, nil); err != nil {
		t.Fatal(err)
	}
	r.veto = map[Event]bool{UdataAttach: true}
	if err := AttachUdata(n, 2); !errors.Is(err, ErrDenied) {
		t.Fatalf("attach veto: %v", err)
	}
	if n.UserData() != 1 {
		t.Errorf("vetoed attach kept data %v", n.UserData())
	}
	r.veto = map[Event]bool{UdataDetach: true}
	if err := AttachUdata(n, 3); !errors.Is(err, ErrDenied) {
		t.Fatalf("detach veto: %v", err)
	}
	if n.UserData() != 1 {
		t.Errorf("vetoed detach changed data %v", n.UserData())
	}
	r.veto = nil
	if err := AttachUdata(n, nil); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"a:notif-attach",
		"a:udata-detach", "a:udata-attach",
		"a:udata-detach",
		"a:udata-detach",
	}
	if diff := cmp.Diff(want, r.events); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestLazyNotificator(t *testing.T) {
	root := testTree(t)
	defer root.Destroy()
	svc, _ := root.GetObj("svc", "web", FirstObject, GetNoFlags)
	own := &recorder{}
	port, _ := svc.GetObj("port", "", FirstAttribute, GetNoFlags)
	if err := NotificatorAttach(port, own.fn, nil); err != nil {
		t.Fatal(err)
	}
	mustAttach(t, svc, NewAttribute("timeout", "5", 4))

	all := &recorder{}
	if err := LazyNotificator(svc, "", all.fn, nil); err != nil {
		t.Fatal(err)
	}
	want := []string{"web:notif-attach", "b:obj-add", "5:obj-add"}
	if diff := cmp.Diff(want, all.events); diff != "" {
		t.Errorf("all types (-want +got):\n%s", diff)
	}

	typed := &recorder{}
	if err := LazyNotificator(svc, "timeout", typed.fn, nil); err != nil {
		t.Fatal(err)
	}
	want = []string{"web:notif-attach", "5:obj-add"}
	if diff := cmp.Diff(want, typed.events); diff != "" {
		t.Errorf("typed (-want +got):\n%s", diff)
	}
	if svc.LazyNotifications().Len() != 2 {
		t.Fatalf("holders %d", svc.LazyNotifications().Len())
	}

	// replacing the callback on an existing holder reuses it
	again := &recorder{}
	if err := LazyNotificator(svc, "timeout", again.fn, nil); err != nil {
		t.Fatal(err)
	}
	if svc.LazyNotifications().Len() != 2 {
		t.Errorf("holder duplicated")
	}
	if typed.events[len(typed.events)-1] != "web:notif-detach" {
		t.Errorf("old lazy callback not detached: %v", typed.events)
	}

	port2 := NewAttribute("retries", "3", 9)
	mustAttach(t, svc, port2)
	before := len(all.events)
	CheckLazyFilters(svc, func(n *Node) bool { return n == port2 })
	if got := all.events[before:]; len(got) != 1 || got[0] != "3:obj-add" {
		t.Errorf("restricted check: %v", got)
	}
	if err := LazyNotificator(port, "", all.fn, nil); !errors.Is(err, ErrInvalid) {
		t.Errorf("lazy on attribute: %v", err)
	}
}

func TestDestroyNotifiesSubtree(t *testing.T) {
	root := testTree(t)
	r := &recorder{}
	svc, _ := root.GetObj("svc", "web", FirstObject, GetNoFlags)
	port, _ := svc.GetObj("port", "", FirstAttribute, GetNoFlags)
	for _, n := range []*Node{root, svc, port} {
		if err := NotificatorAttach(n, r.fn, nil); err != nil {
			t.Fatal(err)
		}
	}
	r.events = nil
	root.Destroy()
	want := []string{":obj-destroy", "web:obj-destroy", "80:obj-destroy"}
	if diff := cmp.Diff(want, r.events); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}
