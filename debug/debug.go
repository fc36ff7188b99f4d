package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Assert  bool
	Bstr    bool
	Parse   bool
	Resolve bool
	Diff    bool
	Notify  bool
	Query   bool
	Policy  bool
}

var d *debug

func init() {
	d = &debug{}
	d.Assert = boolEnv("NCNF_DEBUG_ASSERT")
	d.Bstr = boolEnv("NCNF_DEBUG_BSTR")
	d.Parse = boolEnv("NCNF_DEBUG_PARSE")
	d.Resolve = boolEnv("NCNF_DEBUG_RESOLVE")
	d.Diff = boolEnv("NCNF_DEBUG_DIFF")
	d.Notify = boolEnv("NCNF_DEBUG_NOTIFY")
	d.Query = boolEnv("NCNF_DEBUG_QUERY")
	d.Policy = boolEnv("NCNF_DEBUG_POLICY")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

// Assert reports whether internal consistency checks that are too costly
// for production (double release, use after destroy) should panic.
func Assert() bool {
	return d.Assert
}
func Bstr() bool {
	return d.Bstr
}
func Parse() bool {
	return d.Parse
}
func Resolve() bool {
	return d.Resolve
}
func Diff() bool {
	return d.Diff
}
func Notify() bool {
	return d.Notify
}
func Query() bool {
	return d.Query
}
func Policy() bool {
	return d.Policy
}

// SetAssert overrides NCNF_DEBUG_ASSERT, returning the previous value.
func SetAssert(v bool) bool {
	old := d.Assert
	d.Assert = v
	return old
}

func LogAny(v any) {
	d, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", v)
		return
	}
	os.Stderr.Write(d)
}
