package ir

import (
	"errors"
	"net/netip"
	"testing"
)

func attrNode(t *testing.T, kv ...string) *Node {
	t.Helper()
	n := NewComplex("svc", "x", 1)
	for i := 0; i+1 < len(kv); i += 2 {
		mustAttach(t, n, NewAttribute(kv[i], kv[i+1], i+2))
	}
	return n
}

func TestGetAttrInt(t *testing.T) {
	tests := []struct {
		val  string
		want int
		err  error
	}{
		{"42", 42, nil},
		{"-7", -7, nil},
		{"12abc", 12, nil},
		{"on", 1, nil},
		{"yes", 1, nil},
		{"true", 1, nil},
		{"off", 0, nil},
		{"no", 0, nil},
		{"false", 0, nil},
		{"maybe", 0, ErrInvalid},
		{"", 0, ErrInvalid},
	}
	for _, tt := range tests {
		n := attrNode(t, "v", tt.val)
		got, err := n.GetAttrInt("v")
		if !errors.Is(err, tt.err) {
			t.Errorf("%q: err %v want %v", tt.val, err, tt.err)
		}
		if got != tt.want {
			t.Errorf("%q: got %d want %d", tt.val, got, tt.want)
		}
		n.destroy()
	}
}

func TestGetAttrConversions(t *testing.T) {
	n := attrNode(t,
		"big", "8589934592",
		"ratio", "1.5x",
		"junk", "abc",
		"ip", "10.1.2.3",
		"ep", "192.168.0.1:8080",
		"noport", "127.0.0.1",
		"v6", "::1",
	)
	defer n.destroy()

	if v, err := n.GetAttrLong("big"); err != nil || v != 8589934592 {
		t.Errorf("long: %d %v", v, err)
	}
	if v, err := n.GetAttrLong("junk"); err != nil || v != 0 {
		t.Errorf("long junk: %d %v", v, err)
	}
	if v, err := n.GetAttrDouble("ratio"); err != nil || v != 1.5 {
		t.Errorf("double: %v %v", v, err)
	}
	if v, err := n.GetAttrDouble("junk"); err != nil || v != 0 {
		t.Errorf("double junk: %v %v", v, err)
	}
	if v, err := n.GetAttrIP("ip"); err != nil || v != netip.MustParseAddr("10.1.2.3") {
		t.Errorf("ip: %v %v", v, err)
	}
	if _, err := n.GetAttrIP("v6"); !errors.Is(err, ErrInvalid) {
		t.Errorf("ipv6 accepted: %v", err)
	}
	addr, port, err := n.GetAttrIPPort("ep")
	if err != nil || addr != netip.MustParseAddr("192.168.0.1") || port != 8080 {
		t.Errorf("ipport: %v %d %v", addr, port, err)
	}
	if _, port, err := n.GetAttrIPPort("noport"); err != nil || port != 0 {
		t.Errorf("ipport without port: %d %v", port, err)
	}
	if _, err := n.GetAttr("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing: %v", err)
	}
}

func TestGetAttrOfAttribute(t *testing.T) {
	a := NewAttribute("port", "80", 1)
	defer a.destroy()
	if v, err := a.GetAttr("anything"); err != nil || v != "80" {
		t.Errorf("got %q %v", v, err)
	}
	var nilNode *Node
	if _, err := nilNode.GetAttr("x"); !errors.Is(err, ErrInvalid) {
		t.Errorf("nil: %v", err)
	}
}
