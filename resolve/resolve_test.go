package resolve

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/ncnf/encode"
	"github.com/signadot/ncnf/ir"
	"github.com/signadot/ncnf/parse"
)

func mustParse(t *testing.T, src string) *ir.Node {
	t.Helper()
	root, err := parse.ParseString(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return root
}

func attrs(n *ir.Node) map[string]string {
	res := map[string]string{}
	a := n.Attributes()
	for i := 0; i < a.Len(); i++ {
		res[a.At(i).Type()] = a.At(i).Value()
	}
	return res
}

func TestInsertionExpansion(t *testing.T) {
	root := mustParse(t, `
A a { x 1; }
B b { insert A; y 2; }
`)
	defer root.Destroy()
	if err := Resolve(root); err != nil {
		t.Fatal(err)
	}
	b, err := root.GetObj("B", "", ir.FirstObject, ir.GetNoFlags)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]string{"x": "1", "y": "2"}, attrs(b)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if b.Inserts().Len() != 0 {
		t.Errorf("inserts left: %d", b.Inserts().Len())
	}
	a, _ := root.GetObj("A", "", ir.FirstObject, ir.GetNoFlags)
	x, _ := b.GetObj("x", "", ir.FirstAttribute, ir.GetNoFlags)
	if x.Parent != b || x == a.Attributes().At(0) {
		t.Errorf("inserted attribute not a copy owned by B")
	}
}

func TestInsertionNested(t *testing.T) {
	root := mustParse(t, `
base b { port 80; opts o { verbose yes; } }
mid m { insert base b; tls on; }
svc s { insert mid; name web; }
`)
	defer root.Destroy()
	if err := Resolve(root); err != nil {
		t.Fatal(err)
	}
	svc, _ := root.GetObj("svc", "s", ir.FirstObject, ir.GetNoFlags)
	want := map[string]string{"port": "80", "tls": "on", "name": "web"}
	if diff := cmp.Diff(want, attrs(svc)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	opts, err := svc.GetObj("opts", "o", ir.FirstObject, ir.GetNoFlags)
	if err != nil || opts.Parent != svc {
		t.Fatalf("nested object not copied: %v", err)
	}
	if v, _ := opts.GetAttr("verbose"); v != "yes" {
		t.Errorf("verbose %q", v)
	}
}

func TestInherit(t *testing.T) {
	root := mustParse(t, `
defaults d { port 80; host a; host b; }
svc s { port 8080; inherit defaults; }
`)
	defer root.Destroy()
	if err := Resolve(root); err != nil {
		t.Fatal(err)
	}
	svc, _ := root.GetObj("svc", "", ir.FirstObject, ir.GetNoFlags)
	var got []string
	a := svc.Attributes()
	for i := 0; i < a.Len(); i++ {
		got = append(got, a.At(i).Type()+"="+a.At(i).Value())
		if a.Ignored(i) {
			t.Errorf("entry %d left unsearchable", i)
		}
	}
	if diff := cmp.Diff([]string{"port=8080", "host=a", "host=b"}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestInsertDuplicate(t *testing.T) {
	root := mustParse(t, `
A a { x 1; }
B b { insert A; x 1; }
`)
	defer root.Destroy()
	err := Resolve(root)
	if !errors.Is(err, ir.ErrExists) || !strings.Contains(err.Error(), "similar entry already there") {
		t.Fatalf("got %v", err)
	}
	if err := Resolve(mustParse(t, `A a { x 1; } B b { insert A; x 1; }`), Relaxed(true)); err != nil {
		t.Errorf("relaxed: %v", err)
	}
}

func TestInsertionCycle(t *testing.T) {
	root := mustParse(t, `
A a { insert B; }
B b { insert A; }
`)
	defer root.Destroy()
	err := Resolve(root)
	if !errors.Is(err, ir.ErrCycle) {
		t.Fatalf("got %v", err)
	}
	var cerr *ir.CycleError
	if !errors.As(err, &cerr) {
		t.Fatalf("not a cycle error: %T", err)
	}
	var path []string
	for _, p := range cerr.Path {
		path = append(path, p.Type)
	}
	if diff := cmp.Diff([]string{"A", "B", "A"}, path); diff != "" {
		t.Errorf("path (-want +got):\n%s", diff)
	}
}

func TestInsertionMissing(t *testing.T) {
	root := mustParse(t, `B b { insert nothing; }`)
	defer root.Destroy()
	err := Resolve(root)
	var lerr *ir.LineError
	if !errors.Is(err, ir.ErrNotFound) || !errors.As(err, &lerr) || lerr.Line != 1 {
		t.Fatalf("got %v", err)
	}
}

func TestInsertionTooDeep(t *testing.T) {
	var b strings.Builder
	for i := 0; i < MaxDepth; i++ {
		fmt.Fprintf(&b, "c \"%d\" { insert c \"%d\"; }\n", i, i+1)
	}
	fmt.Fprintf(&b, "c \"%d\" { x 1; }\n", MaxDepth)
	root := mustParse(t, b.String())
	defer root.Destroy()
	if err := Resolve(root); !errors.Is(err, ir.ErrTooManyRefs) {
		t.Fatalf("got %v", err)
	}
}

func diamonds(depth int, base string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "t t0 { %s }\nu u0 { y 1; }\n", base)
	for i := 1; i <= depth; i++ {
		for _, ty := range []string{"t", "u"} {
			fmt.Fprintf(&b, "%s %s%d { insert t t%d; insert u u%d; }\n", ty, ty, i, i-1, i-1)
		}
	}
	return b.String()
}

func TestCheckLoopsShared(t *testing.T) {
	root := mustParse(t, diamonds(30, "x 1;"))
	defer root.Destroy()
	start := time.Now()
	if err := CheckLoops(root); err != nil {
		t.Fatalf("unexpected %v", err)
	}
	if d := time.Since(start); d > 2*time.Second {
		t.Errorf("took %s", d)
	}

	cyc := mustParse(t, diamonds(30, "insert u u2;"))
	defer cyc.Destroy()
	if err := CheckLoops(cyc); !errors.Is(err, ir.ErrCycle) {
		t.Fatalf("got %v", err)
	}
}

func TestReferences(t *testing.T) {
	root := mustParse(t, `
host h1 { addr 10.0.0.1; }
svc s {
	ref backend b = host h1;
	port 80;
	listen @port;
	alias @listen;
}
`)
	defer root.Destroy()
	if err := Resolve(root); err != nil {
		t.Fatal(err)
	}
	svc, _ := root.GetObj("svc", "", ir.FirstObject, ir.GetNoFlags)
	host, _ := root.GetObj("host", "h1", ir.FirstObject, ir.GetNoFlags)
	ref := svc.Objects().At(0)
	if ref.Target() != host {
		t.Errorf("target %v", ref.Target())
	}
	want := map[string]string{"port": "80", "listen": "80", "alias": "80"}
	if diff := cmp.Diff(want, attrs(svc)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	for i := 0; i < svc.Attributes().Len(); i++ {
		if svc.Attributes().At(i).Indirect {
			t.Errorf("%s still indirect", svc.Attributes().At(i))
		}
	}
}

func TestIdempotent(t *testing.T) {
	root := mustParse(t, `
A a { x 1; }
host h { }
B b { insert A; ref r x = host h; y @x; }
`)
	defer root.Destroy()
	if err := Resolve(root); err != nil {
		t.Fatal(err)
	}
	before := encode.MustString(root)
	clone := root.Clone()
	defer clone.Destroy()
	if err := Resolve(root); err != nil {
		t.Fatal(err)
	}
	if got := encode.MustString(root); got != before {
		t.Errorf("second resolve changed the tree:\n%s\nvs\n%s", before, got)
	}
	if !ir.Equal(root, clone) {
		t.Errorf("second resolve changed the structure")
	}
}

func TestReferenceErrors(t *testing.T) {
	tests := []struct {
		src string
		err error
		msg string
	}{
		{src: `ref a b = host h;`, err: ir.ErrNotFound, msg: "cannot find right-hand object"},
		{src: `x @nothing;`, err: ir.ErrNotFound, msg: "right-hand attribute"},
		{src: `x @x;`, err: ir.ErrInvalid, msg: "itself"},
	}
	for _, tt := range tests {
		root := mustParse(t, tt.src)
		err := Resolve(root)
		if !errors.Is(err, tt.err) || !strings.Contains(err.Error(), tt.msg) {
			t.Errorf("%s: got %v", tt.src, err)
		}
		root.Destroy()
	}
}

func TestReferenceErrorLine(t *testing.T) {
	root := mustParse(t, "host h { }\nsvc web {\n  ref backend b = host g;\n}\n")
	defer root.Destroy()
	var lErr *ir.LineError
	if err := Resolve(root); !errors.As(err, &lErr) {
		t.Fatalf("got %v", err)
	}
	if lErr.Line != 3 || lErr.Type != "backend" {
		t.Errorf("got %+v", lErr)
	}
}

func TestIndirectTooDeep(t *testing.T) {
	chain := func(n int) string {
		var b strings.Builder
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "a%d @a%d;\n", i, i+1)
		}
		fmt.Fprintf(&b, "a%d end;\n", n)
		return b.String()
	}
	root := mustParse(t, chain(MaxDepth+1))
	if err := Resolve(root); !errors.Is(err, ir.ErrTooDeep) {
		t.Errorf("long chain: %v", err)
	}
	root.Destroy()

	root = mustParse(t, chain(MaxDepth-1))
	defer root.Destroy()
	if err := Resolve(root); err != nil {
		t.Fatalf("short chain: %v", err)
	}
	if v, _ := root.GetAttr("a0"); v != "end" {
		t.Errorf("a0 = %q", v)
	}
}

func TestReferenceHook(t *testing.T) {
	root := mustParse(t, `
host h1 { }
host h2 { }
ref a x = host h1;
ref b y = host h2;
`)
	defer root.Destroy()
	if err := Resolve(root); err != nil {
		t.Fatal(err)
	}
	var after []string
	hook := func(ref *ir.Node, p Phase) error {
		switch p {
		case BeforeResolve:
			if ref.Type() == "b" {
				return ErrSkip
			}
		case AfterResolve:
			after = append(after, ref.Type())
		}
		return nil
	}
	if err := References(root, hook); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a"}, after); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	boom := errors.New("boom")
	if err := References(root, func(*ir.Node, Phase) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("abort: %v", err)
	}
}
