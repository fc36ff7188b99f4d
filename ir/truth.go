package ir

// Truth interprets the boolean words accepted in attribute values.
func Truth(s string) (v bool, ok bool) {
	switch s {
	case "on", "yes", "true":
		return true, true
	case "off", "no", "false":
		return false, true
	default:
		return false, false
	}
}
