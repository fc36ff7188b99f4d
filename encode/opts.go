package encode

type EncodeOption func(*EncState)

// Indent sets the number of spaces per nesting level, 2 by default.
func Indent(n int) EncodeOption {
	return func(es *EncState) { es.indent = n }
}

// Verbose annotates each statement with the line it was read from.
func Verbose(v bool) EncodeOption {
	return func(es *EncState) { es.verbose = v }
}

// MarkedOnly skips nodes whose Mark is 0, along with their contents.
func MarkedOnly(v bool) EncodeOption {
	return func(es *EncState) { es.markedOnly = v }
}

// Flatten prints only the children of the encoded node whose type is
// typ, or all of them for "*" or "-", one per line without their
// contents.
func Flatten(typ string) EncodeOption {
	return func(es *EncState) {
		es.flatten = typ
		es.flat = true
	}
}

func EncodeColors(c *Colors) EncodeOption {
	return func(es *EncState) {
		if c == nil {
			es.Color = nil
			return
		}
		es.Color = c.Color
	}
}
