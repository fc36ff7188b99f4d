package ncnf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/ncnf/asyncval"
	"github.com/signadot/ncnf/encode"
	"github.com/signadot/ncnf/ir"
	"github.com/signadot/ncnf/parse"
	"github.com/signadot/ncnf/policy"
)

const docExample = `
_validator-embedded yes;

template web {
    port 80;
}

host h1 { addr 10.0.0.1; }

service www {
    insert template web;
    attach backend b = host h1;
    timeout @default-timeout;
}

default-timeout 30;
`

func TestRead(t *testing.T) {
	root, err := Read([]byte(docExample))
	if err != nil {
		t.Fatal(err)
	}
	defer root.Destroy()
	www, err := ir.ResolvePath(root, "www", "/", false)
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]string{}
	for _, a := range []string{"port", "timeout"} {
		got[a], _ = www.GetAttr(a)
	}
	if diff := cmp.Diff(map[string]string{"port": "80", "timeout": "30"}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	b, _ := www.GetObj("backend", "b", ir.FirstObject, ir.GetNoFlags)
	if addr, _ := b.GetAttr("addr"); addr != "10.0.0.1" {
		t.Errorf("backend addr %q", addr)
	}
}

func TestReadErrors(t *testing.T) {
	cases := []struct {
		src string
		is  error
	}{
		{`a {`, parse.ErrParse},
		{`a x { insert b; }`, ir.ErrNotFound},
		{`_validator-embedded 1; svc a.b { } svc ab { }`, policy.ErrPolicy},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			if _, err := Read([]byte(c.src)); !errors.Is(err, c.is) {
				t.Errorf("got %v, want %v", err, c.is)
			}
		})
	}
	root, err := Read([]byte(cases[2].src), NoEmbedded())
	if err != nil {
		t.Fatalf("embedded policies not skipped: %v", err)
	}
	root.Destroy()
}

func TestReadFileRules(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "app.conf")
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("app.conf", `_validator-rules app.yaml; svc a { }`)

	// a missing rule file is not an error
	root, err := ReadFile(conf)
	if err != nil {
		t.Fatal(err)
	}
	root.Destroy()

	write("app.yaml", "rules:\n  - type: svc\n    require: [port]\n")
	if _, err := ReadFile(conf); !errors.Is(err, policy.ErrPolicy) {
		t.Fatalf("got %v", err)
	}
	root, err = ReadFile(conf, NoRules())
	if err != nil {
		t.Fatal(err)
	}
	root.Destroy()

	write("app.yaml", "rules: [")
	if _, err := ReadFile(conf); !errors.Is(err, policy.ErrRules) {
		t.Fatalf("got %v", err)
	}
}

func TestReadFileAsync(t *testing.T) {
	conf := filepath.Join(t.TempDir(), "app.conf")
	// fails the embedded policy, which a successful validator skips
	if err := os.WriteFile(conf, []byte(`_validator-embedded 1; a x { } b X. { }`), 0o644); err != nil {
		t.Fatal(err)
	}
	s := &asyncval.Session{}
	opt := WithAsyncValidation(s, "test -f "+asyncval.ConfigFileArg)
	if _, err := ReadFile(conf, opt, WithContext(context.Background())); !errors.Is(err, asyncval.ErrAgain) {
		t.Fatalf("first read: %v", err)
	}
	<-s.Done()
	root, err := ReadFile(conf, opt)
	if err != nil {
		t.Fatalf("after validation: %v", err)
	}
	root.Destroy()
}

func TestDiff(t *testing.T) {
	old, err := Read([]byte(`svc a { port 80; }`))
	if err != nil {
		t.Fatal(err)
	}
	defer old.Destroy()
	new, err := Read([]byte(`svc a { port 81; }`))
	if err != nil {
		t.Fatal(err)
	}
	if err := Diff(old, new); err != nil {
		t.Fatal(err)
	}
	if got, want := encode.MustString(old), "svc \"a\" {\n  port \"81\";\n}"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if err := Diff(old, old); !errors.Is(err, ir.ErrInvalid) {
		t.Errorf("self diff: %v", err)
	}
}
