package parse

import (
	"errors"
	"testing"

	"github.com/signadot/ncnf/ir"
	"github.com/signadot/ncnf/token"
)

type parseTest struct {
	in string
	e  error
}

func TestParseOK(t *testing.T) {
	pts := []parseTest{
		{in: ``},
		{in: `# only a comment`},
		{in: `port 80;`},
		{in: `svc "web" { }`},
		{in: `svc web { port 80; };`},
		{in: `svc "web" { host "h" { addr "10.0.0.1"; } }`},
		{in: `ref backend "b" = host "h1";`},
		{in: `attach backend b = host h1;`},
		{in: `svc x { insert defaults; inherit base "b"; }`},
		{in: `addr @ip;`},
		{in: `name ref;`},
		{in: "msg \"\\\nline one\\nline two\";"},
		{in: `"odd type" v;`},
	}
	for _, pt := range pts {
		root, err := ParseString(pt.in)
		if err != nil {
			t.Errorf("%q: %v", pt.in, err)
			continue
		}
		if root.Class != ir.RootClass {
			t.Errorf("%q: got %s", pt.in, root.Class)
		}
		root.Destroy()
	}
}

func TestParseErr(t *testing.T) {
	pts := []parseTest{
		{in: `port 80`, e: ErrMissingSemi},
		{in: `svc "web" {`, e: ErrUnbalanced},
		{in: `}`, e: ErrUnbalanced},
		{in: `ref a b host h1;`, e: ErrParse},
		{in: `port;`, e: ErrParse},
		{in: `svc a { x 1; } svc A { }`, e: ir.ErrExists},
		{in: `port 80; PORT 80;`, e: ir.ErrExists},
		{in: `= x;`, e: token.ErrUnexpected},
		{in: `a "unterminated`, e: token.ErrUnterminated},
	}
	for _, pt := range pts {
		root, err := ParseString(pt.in)
		if err == nil {
			root.Destroy()
			t.Errorf("%q: no error", pt.in)
			continue
		}
		if !errors.Is(err, ErrParse) {
			t.Errorf("%q: %v is not a parse error", pt.in, err)
		}
		if !errors.Is(err, pt.e) {
			t.Errorf("%q: got %v want %v", pt.in, err, pt.e)
		}
	}
}

func TestParseRelaxed(t *testing.T) {
	root, err := ParseString(`svc a { } svc A { }`, Relaxed())
	if err != nil {
		t.Fatal(err)
	}
	defer root.Destroy()
	if root.Objects().Len() != 2 {
		t.Errorf("got %d objects", root.Objects().Len())
	}
}

func TestParseStructure(t *testing.T) {
	src := `# test
svc "web" {
	port 80;
	ref backend "b" = host "h1";
	insert defaults;
	inherit base x;
	addr @ip;
}
attach db d = host h2;
host h1 { }
`
	pos := map[*ir.Node]*token.Pos{}
	root, err := Parse([]byte(src), ParsePositions(pos), Filename("test.conf"))
	if err != nil {
		t.Fatal(err)
	}
	defer root.Destroy()
	if n := root.Objects().Len(); n != 3 {
		t.Fatalf("root objects %d", n)
	}
	svc := root.Objects().At(0)
	if svc.Class != ir.ComplexClass || svc.Type() != "svc" || svc.Value() != "web" || svc.Line != 2 {
		t.Errorf("svc: %s line %d", svc, svc.Line)
	}
	port := svc.Attributes().At(0)
	if port.Type() != "port" || port.Value() != "80" || port.Line != 3 || port.Parent != svc {
		t.Errorf("port: %s line %d", port, port.Line)
	}
	addr := svc.Attributes().At(1)
	if !addr.Indirect || addr.Value() != "ip" {
		t.Errorf("addr: %s indirect=%v", addr, addr.Indirect)
	}
	ref := svc.Objects().At(0)
	if ref.Class != ir.ReferenceClass || ref.RefType() != "host" || ref.RefValue() != "h1" || ref.IsAttach() {
		t.Errorf("ref: %s", ref)
	}
	ins := svc.Inserts()
	if ins.Len() != 2 || ins.At(0).Inherit || !ins.At(1).Inherit || ins.At(0).Value() != "" {
		t.Errorf("inserts: %v", ins.Nodes())
	}
	if db := root.Objects().At(1); !db.IsAttach() || db.Line != 9 {
		t.Errorf("db: %s line %d", db, db.Line)
	}
	if p := pos[port]; p == nil || p.Line() != 2 || p.Col() != 1 {
		t.Errorf("port position %v", p)
	}

	_, err = Parse([]byte("x"), Filename("bad.conf"))
	if err == nil || !errors.Is(err, ErrParse) {
		t.Fatalf("got %v", err)
	}
}
