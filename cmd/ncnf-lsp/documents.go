package main

import (
	"errors"
	"strings"
	"sync"

	"github.com/signadot/ncnf/ir"
	"github.com/signadot/ncnf/parse"
	"github.com/signadot/ncnf/policy"
	"github.com/signadot/ncnf/resolve"
	"github.com/signadot/ncnf/token"
	"go.lsp.dev/uri"
)

type documentStore struct {
	mu   sync.RWMutex
	docs map[string]*document
}

type document struct {
	uri       string
	content   string
	version   int32
	root      *ir.Node
	positions map[*ir.Node]*token.Pos
	// err is the first problem found reading content.
	err error
}

func (ds *documentStore) get(uri string) *document {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.docs[uri]
}

func (ds *documentStore) put(uri string, content string, version int32) *document {
	doc := newDocument(uri, content, version)
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if old := ds.docs[uri]; old != nil {
		old.root.Destroy()
	}
	ds.docs[uri] = doc
	return doc
}

func (ds *documentStore) remove(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if old := ds.docs[uri]; old != nil {
		old.root.Destroy()
	}
	delete(ds.docs, uri)
}

// newDocument reads content the way ncnf.ReadFile would. The tree kept
// for hovering is the resolved one when resolution succeeds and the
// parsed one otherwise.
func newDocument(u string, content string, version int32) *document {
	doc := &document{uri: u, content: content, version: version}
	doc.root, doc.positions, doc.err = parseDoc(content)
	if doc.err != nil {
		return doc
	}
	if err := resolve.Resolve(doc.root); err != nil {
		doc.err = err
		doc.root.Destroy()
		doc.root, doc.positions, _ = parseDoc(content)
		return doc
	}
	doc.err = checkPolicies(doc.root, filename(u))
	return doc
}

func parseDoc(content string) (*ir.Node, map[*ir.Node]*token.Pos, error) {
	positions := map[*ir.Node]*token.Pos{}
	root, err := parse.ParseString(content, parse.ParsePositions(positions))
	if err != nil {
		return nil, nil, err
	}
	return root, positions, nil
}

func checkPolicies(root *ir.Node, file string) error {
	if path, ok := policy.RulesPath(root, file); ok {
		rs, err := policy.LoadRules(path)
		switch {
		case policy.IsMissing(err):
		case err != nil:
			return err
		default:
			if err := rs.Check(root); err != nil {
				return err
			}
		}
	}
	return policy.Embedded(root)
}

// filename is the local path of a file URI, or "".
func filename(u string) string {
	if !strings.HasPrefix(u, uri.FileScheme+"://") {
		return ""
	}
	return uri.URI(u).Filename()
}

// errLine returns the 0-based line and column of err, if it names one.
func errLine(err error) (line, col int, ok bool) {
	var tErr *token.Error
	if errors.As(err, &tErr) && tErr.Pos.D != nil {
		line, col = tErr.Pos.LineCol()
		return line, col, true
	}
	var lErr *ir.LineError
	if errors.As(err, &lErr) && lErr.Line > 0 {
		return lErr.Line - 1, 0, true
	}
	return 0, 0, false
}
