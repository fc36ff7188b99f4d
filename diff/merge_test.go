package diff

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/ncnf/encode"
	"github.com/signadot/ncnf/ir"
	"github.com/signadot/ncnf/parse"
	"github.com/signadot/ncnf/resolve"
)

func mustResolved(t *testing.T, src string) *ir.Node {
	t.Helper()
	root, err := parse.ParseString(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := resolve.Resolve(root); err != nil {
		root.Destroy()
		t.Fatalf("resolve: %v", err)
	}
	return root
}

func mustGet(t *testing.T, n *ir.Node, path string) *ir.Node {
	t.Helper()
	res, err := ir.ResolvePath(n, path, "/", false)
	if err != nil {
		t.Fatalf("%s: %v", path, err)
	}
	return res
}

type recorder struct {
	events []string
}

func (r *recorder) fn(n *ir.Node, ev ir.Event, key any) error {
	switch ev {
	case ir.NotifAttach, ir.NotifDetach:
		return nil
	}
	r.events = append(r.events, n.Type()+":"+ev.String())
	return nil
}

func (r *recorder) watch(t *testing.T, n *ir.Node) {
	t.Helper()
	if err := ir.NotificatorAttach(n, r.fn, nil); err != nil {
		t.Fatal(err)
	}
}

func TestMergeAddRemove(t *testing.T) {
	old := mustResolved(t, `svc web { port 80; timeout 5; }`)
	defer old.Destroy()
	new := mustResolved(t, `svc web { port 80; retries 3; }`)
	defer new.Destroy()

	svc := mustGet(t, old, "web")
	port, _ := svc.GetObj("port", "", ir.FirstAttribute, ir.GetNoFlags)
	timeout, _ := svc.GetObj("timeout", "", ir.FirstAttribute, ir.GetNoFlags)
	r := &recorder{}
	r.watch(t, svc)
	r.watch(t, port)
	r.watch(t, timeout)

	deltas := map[string]Delta{}
	err := Merge(old, new, OnDelta(func(n *ir.Node, d Delta) {
		deltas[n.Type()] = d
	}))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"svc:obj-change", "timeout:obj-destroy"}
	if diff := cmp.Diff(want, r.events); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
	wantDeltas := map[string]Delta{"": Changed, "svc": Changed, "timeout": Deleted, "retries": Added}
	if diff := cmp.Diff(wantDeltas, deltas); diff != "" {
		t.Errorf("deltas (-want +got):\n%s", diff)
	}
	if got, _ := svc.GetObj("port", "", ir.FirstAttribute, ir.GetNoFlags); got != port {
		t.Errorf("unchanged attribute replaced")
	}
	if v, err := svc.GetAttr("retries"); err != nil || v != "3" {
		t.Errorf("retries: %q %v", v, err)
	}
	if _, err := svc.GetAttr("timeout"); !errors.Is(err, ir.ErrNotFound) {
		t.Errorf("timeout still there: %v", err)
	}
	if !ir.Equal(old, new) {
		t.Errorf("merged tree differs:\n%s\nwant:\n%s", encode.MustString(old), encode.MustString(new))
	}
}

func TestMergeRetarget(t *testing.T) {
	old := mustResolved(t, `
entity a { }
entity b { }
ref target x = entity a;
`)
	defer old.Destroy()
	new := mustResolved(t, `
entity a { }
entity b { }
ref target x = entity b;
`)
	defer new.Destroy()

	ref, err := old.GetObj("target", "x", ir.FirstObject, ir.GetNoFlags)
	if err != nil {
		t.Fatal(err)
	}
	r := &recorder{}
	r.watch(t, old)
	r.watch(t, ref)
	if err := Merge(old, new); err != nil {
		t.Fatal(err)
	}
	b := mustGet(t, old, "b")
	if ref.Target() != b {
		t.Errorf("reference bound to %v, want %v", ref.Target(), b)
	}
	if ref.RefValue() != "b" {
		t.Errorf("reference names %q", ref.RefValue())
	}
	want := []string{":obj-change", "target:obj-change"}
	if diff := cmp.Diff(want, r.events); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestMergeAttachFollowsTarget(t *testing.T) {
	old := mustResolved(t, `
host h1 { addr 10.0.0.1; }
svc web { attach backend b = host h1; ref peer p = host h1; }
`)
	defer old.Destroy()
	new := mustResolved(t, `
host h1 { addr 10.0.0.2; }
svc web { attach backend b = host h1; ref peer p = host h1; }
`)
	defer new.Destroy()

	svc := mustGet(t, old, "web")
	r := &recorder{}
	r.watch(t, svc)
	backend, _ := svc.GetObj("backend", "", ir.FirstObject, ir.GetNoFlags)
	peer, _ := svc.GetObj("peer", "", ir.FirstObject, ir.GetNoFlags)
	r.watch(t, backend)
	r.watch(t, peer)
	if err := Merge(old, new); err != nil {
		t.Fatal(err)
	}
	want := []string{"svc:obj-change", "backend:obj-change"}
	if diff := cmp.Diff(want, r.events); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestMergeDeepDelete(t *testing.T) {
	old := mustResolved(t, `
zone z { rack r { host h { addr 10.0.0.1; } } }
keep k { }
`)
	defer old.Destroy()
	new := mustResolved(t, `keep k { }`)
	defer new.Destroy()

	keep := mustGet(t, old, "k")
	r := &recorder{}
	r.watch(t, keep)
	for _, p := range []string{"z", "z/r", "z/r/h"} {
		r.watch(t, mustGet(t, old, p))
	}
	if err := Merge(old, new); err != nil {
		t.Fatal(err)
	}
	want := []string{"zone:obj-destroy", "rack:obj-destroy", "host:obj-destroy"}
	if diff := cmp.Diff(want, r.events); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
	if old.Objects().Len() != 1 || old.Objects().At(0) != keep {
		t.Errorf("deleted subtree kept: %s", encode.MustString(old))
	}
}

func TestMergeLazy(t *testing.T) {
	old := mustResolved(t, `svc a { }`)
	defer old.Destroy()
	new := mustResolved(t, `svc a { } svc b { } host h { }`)
	defer new.Destroy()

	var added []string
	err := ir.LazyNotificator(old, "svc", func(n *ir.Node, ev ir.Event, _ any) error {
		if ev == ir.ObjAdd {
			added = append(added, n.Value())
		}
		return nil
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := Merge(old, new); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, added); diff != "" {
		t.Errorf("lazy adds (-want +got):\n%s", diff)
	}
}

func TestMergeRollback(t *testing.T) {
	oldSrc := `
svc web { port 80; ref backend b = host h1; }
host h1 { addr 10.0.0.1; }
`
	newSrc := `
svc web { port 81; ref backend b = host h2; limits l { cpu 2; } }
host h2 { addr 10.0.0.2; }
host h3 { }
`
	for _, failAt := range []int{1, 2, 3, 4} {
		old := mustResolved(t, oldSrc)
		new := mustResolved(t, newSrc)
		before := encode.MustString(old)
		count := ir.Count(old)
		backend := mustGet(t, old, "web/b")
		target := backend.Target()
		r := &recorder{}
		r.watch(t, old)

		calls := 0
		errQuota := errors.New("quota")
		err := Merge(old, new, WithCloneHook(func(*ir.Node) error {
			calls++
			if calls == failAt {
				return errQuota
			}
			return nil
		}))
		if !errors.Is(err, ir.ErrNoMem) || !errors.Is(err, errQuota) {
			t.Errorf("fail at %d: got %v", failAt, err)
		}
		if got := encode.MustString(old); got != before {
			t.Errorf("fail at %d: tree changed:\n%s", failAt, Text(before, got))
		}
		if got := ir.Count(old); got != count {
			t.Errorf("fail at %d: %d nodes, want %d", failAt, got, count)
		}
		if backend.Target() != target || backend.HasStagedRef() {
			t.Errorf("fail at %d: reference state changed", failAt)
		}
		if len(r.events) != 0 {
			t.Errorf("fail at %d: events %v", failAt, r.events)
		}
		// a later merge starts from clean state
		if err := Merge(old, new); err != nil {
			t.Fatalf("fail at %d: retry: %v", failAt, err)
		}
		if !ir.Equal(old, new) {
			t.Errorf("fail at %d: retry differs", failAt)
		}
		old.Destroy()
		new.Destroy()
	}
}

func TestMergeDanglingReference(t *testing.T) {
	old := mustResolved(t, `
host h1 { }
svc web { ref backend b = host h1; }
`)
	defer old.Destroy()
	// a new tree whose reference would bind to a removed host; built by
	// hand since resolution would reject it
	new := mustResolved(t, `
host h2 { }
svc web { }
`)
	defer new.Destroy()
	web := mustGet(t, new, "web")
	ref := ir.NewReference("backend", "b", "host", "h1", false, 3)
	if err := web.Attach(ref, false); err != nil {
		t.Fatal(err)
	}
	before := encode.MustString(old)
	if err := Merge(old, new); !errors.Is(err, ir.ErrNotFound) {
		t.Fatalf("got %v", err)
	}
	if got := encode.MustString(old); got != before {
		t.Errorf("tree changed:\n%s", Text(before, got))
	}
}

func TestMergeInvalid(t *testing.T) {
	root := mustResolved(t, `svc web { }`)
	defer root.Destroy()
	web := mustGet(t, root, "web")
	cases := []struct {
		name     string
		old, new *ir.Node
	}{
		{"nil", nil, root},
		{"not root", web, root},
		{"new not root", root, web},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := Merge(c.old, c.new); !errors.Is(err, ir.ErrInvalid) {
				t.Errorf("got %v", err)
			}
		})
	}
}

func TestText(t *testing.T) {
	got := Text("a\nb\nc\n", "a\nc\nd\n")
	want := "  a\n- b\n  c\n+ d\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if Text("x\n", "x\n") != "" {
		t.Errorf("equal inputs differ")
	}
}

func TestMergePatch(t *testing.T) {
	from := []byte(`{"svc":{"port":"80","timeout":"5"}}`)
	to := []byte(`{"svc":{"port":"81"}}`)
	p, err := MergePatch(from, to)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ApplyMergePatch(from, p)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(to) {
		t.Errorf("got %s, want %s", got, to)
	}
}
