package query

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/ncnf/encode"
	"github.com/signadot/ncnf/ir"
	"github.com/signadot/ncnf/parse"
	"github.com/signadot/ncnf/resolve"
)

const src = `
svc web {
	port 8080;
	enabled yes;
	ref backend b = host h1;
}
svc api {
	port 9090;
	enabled off;
}
host h1 { addr 10.0.0.1; }
`

func testTree(t *testing.T) *ir.Node {
	t.Helper()
	root, err := parse.ParseString(src)
	if err != nil {
		t.Fatal(err)
	}
	if err := resolve.Resolve(root); err != nil {
		t.Fatal(err)
	}
	return root
}

func names(ns []*ir.Node) []string {
	res := make([]string, len(ns))
	for i, n := range ns {
		res[i] = n.Type() + ":" + n.Value()
	}
	return res
}

func TestSelect(t *testing.T) {
	root := testTree(t)
	defer root.Destroy()
	cases := []struct {
		q    string
		want []string
	}{
		{`type == "svc"`, []string{"svc:web", "svc:api"}},
		{`class == "attribute" && type == "port"`, []string{"port:8080", "port:9090"}},
		{`has("port") && attr("port") matches "^80"`, []string{"svc:web"}},
		{`truth(attr("enabled"))`, []string{"svc:web"}},
		{`class == "reference"`, []string{"backend:b"}},
		{`depth == 1 && class == "complex"`, []string{"svc:web", "svc:api", "host:h1"}},
		{`path() == "web/8080"`, []string{"port:8080"}},
		{`line == 11 && class == "complex"`, []string{"host:h1"}},
		{`false`, []string{}},
	}
	for _, c := range cases {
		t.Run(c.q, func(t *testing.T) {
			q, err := Compile(c.q)
			if err != nil {
				t.Fatal(err)
			}
			sel, err := q.Select(root)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(c.want, names(sel)); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	for _, src := range []string{`type ==`, `type`, `nosuch == 1`, `attr(1)`} {
		if _, err := Compile(src); !errors.Is(err, ir.ErrFormat) {
			t.Errorf("%q: got %v", src, err)
		}
	}
}

func TestMark(t *testing.T) {
	root := testTree(t)
	defer root.Destroy()
	q := MustCompile(`type == "port" && value == "9090"`)
	n, err := q.Mark(root, 1)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("marked %d", n)
	}
	sel, _ := q.Select(root)
	MarkTree(sel[0], 1)
	got := encode.MustString(root, encode.MarkedOnly(true))
	want := "svc \"api\" {\n  port \"9090\";\n}"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDescendantsOf(t *testing.T) {
	root := testTree(t)
	defer root.Destroy()
	sel, err := MustCompile(`type == "svc" || type == "port"`).Select(root)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"svc:web", "port:8080", "enabled:yes", "backend:b",
		"svc:api", "port:9090", "enabled:off",
	}
	if diff := cmp.Diff(want, names(DescendantsOf(sel))); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestSelectNil(t *testing.T) {
	if _, err := MustCompile(`true`).Select(nil); !errors.Is(err, ir.ErrInvalid) {
		t.Errorf("got %v", err)
	}
}
