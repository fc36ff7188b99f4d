package ir

import "fmt"

// Class identifies the variant of a Node.
type Class int

const (
	InvalidClass Class = iota
	RootClass
	ComplexClass
	AttributeClass
	ReferenceClass
	InsertionClass
	IteratorClass
	LazyNotifClass
)

func Classes() []Class {
	return []Class{
		RootClass,
		ComplexClass,
		AttributeClass,
		ReferenceClass,
		InsertionClass,
		IteratorClass,
		LazyNotifClass,
	}
}

func (c Class) String() string {
	s, ok := map[Class]string{
		InvalidClass:   "Invalid",
		RootClass:      "Root",
		ComplexClass:   "Complex",
		AttributeClass: "Attribute",
		ReferenceClass: "Reference",
		InsertionClass: "Insertion",
		IteratorClass:  "Iterator",
		LazyNotifClass: "LazyNotification",
	}[c]
	if ok {
		return s
	}
	return "<unknown class>"
}

// IsContainer reports whether nodes of class c own collections.
func (c Class) IsContainer() bool {
	switch c {
	case RootClass, ComplexClass:
		return true
	case AttributeClass, ReferenceClass, InsertionClass, IteratorClass, LazyNotifClass, InvalidClass:
		return false
	default:
		panic(fmt.Sprintf("unknown class %d", int(c)))
	}
}

func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Class) UnmarshalText(d []byte) error {
	cc, ok := map[string]Class{
		"Root":             RootClass,
		"Complex":          ComplexClass,
		"Attribute":        AttributeClass,
		"Reference":        ReferenceClass,
		"Insertion":        InsertionClass,
		"Iterator":         IteratorClass,
		"LazyNotification": LazyNotifClass,
	}[string(d)]
	if !ok {
		return fmt.Errorf("unrecognized class %q", d)
	}
	*c = cc
	return nil
}

// Kind names one of the four collections of a container.
type Kind int

const (
	Attributes Kind = iota
	Objects
	Inserts
	LazyNotifications

	numKinds
)

func Kinds() []Kind {
	return []Kind{Attributes, Objects, Inserts, LazyNotifications}
}

func (k Kind) String() string {
	switch k {
	case Attributes:
		return "attributes"
	case Objects:
		return "objects"
	case Inserts:
		return "inserts"
	case LazyNotifications:
		return "lazy-notifications"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// KindOf returns the collection in which a node of class c is kept by
// its container.
func KindOf(c Class) (Kind, bool) {
	switch c {
	case ComplexClass, ReferenceClass:
		return Objects, true
	case AttributeClass:
		return Attributes, true
	case InsertionClass:
		return Inserts, true
	case LazyNotifClass:
		return LazyNotifications, true
	case RootClass, IteratorClass, InvalidClass:
		return 0, false
	default:
		panic(fmt.Sprintf("unknown class %d", int(c)))
	}
}
