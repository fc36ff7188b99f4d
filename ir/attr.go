package ir

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// GetAttr returns the value of the first attribute of n named typ. When n
// is itself an attribute its own value is returned.
func (n *Node) GetAttr(typ string) (string, error) {
	if n == nil {
		return "", ErrInvalid
	}
	if n.Class == AttributeClass {
		return n.Value(), nil
	}
	if typ == "" {
		return "", ErrInvalid
	}
	found, err := n.GetObj(typ, "", FirstAttribute, GetNoFlags)
	if err != nil {
		return "", err
	}
	return found.Value(), nil
}

// leadingInt parses the longest integer prefix of s, as atoi does.
func leadingInt(s string) int64 {
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	v, err := strconv.ParseInt(s[:i], 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func startsNumeric(s string) bool {
	return s != "" && (s[0] == '-' || (s[0] >= '0' && s[0] <= '9'))
}

// GetAttrInt returns attribute typ as an integer. Besides numbers, the
// words on, yes and true read as 1 and off, no and false as 0.
func (n *Node) GetAttrInt(typ string) (int, error) {
	s, err := n.GetAttr(typ)
	if err != nil {
		return 0, err
	}
	if startsNumeric(s) {
		return int(int32(leadingInt(s))), nil
	}
	if v, ok := Truth(s); ok {
		if v {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("%w: %s %q is not an integer", ErrInvalid, typ, s)
}

// GetAttrLong returns attribute typ as a 64 bit integer. A value not
// starting like a number reads as 0.
func (n *Node) GetAttrLong(typ string) (int64, error) {
	s, err := n.GetAttr(typ)
	if err != nil {
		return 0, err
	}
	if !startsNumeric(s) {
		return 0, nil
	}
	return leadingInt(s), nil
}

// GetAttrDouble returns attribute typ as a float. Like atof, trailing
// garbage is ignored and an unparsable value reads as 0.
func (n *Node) GetAttrDouble(typ string) (float64, error) {
	s, err := n.GetAttr(typ)
	if err != nil {
		return 0, err
	}
	s = strings.TrimSpace(s)
	for end := len(s); end > 0; end-- {
		if v, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return v, nil
		}
	}
	return 0, nil
}

// GetAttrIP returns attribute typ as an IPv4 address.
func (n *Node) GetAttrIP(typ string) (netip.Addr, error) {
	s, err := n.GetAttr(typ)
	if err != nil {
		return netip.Addr{}, err
	}
	return parseIPv4(s)
}

// GetAttrIPPort returns attribute typ as an IPv4 address with an optional
// ":port" suffix. A missing port reads as 0.
func (n *Node) GetAttrIPPort(typ string) (netip.Addr, uint16, error) {
	s, err := n.GetAttr(typ)
	if err != nil {
		return netip.Addr{}, 0, err
	}
	host, port, hasPort := strings.Cut(s, ":")
	var p uint16
	if hasPort {
		p = uint16(leadingInt(port))
	}
	addr, err := parseIPv4(host)
	if err != nil {
		return netip.Addr{}, 0, err
	}
	return addr, p, nil
}

func parseIPv4(s string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil || !addr.Is4() {
		return netip.Addr{}, fmt.Errorf("%w: %q is not an IPv4 address", ErrInvalid, s)
	}
	return addr, nil
}
