package parse

import (
	"fmt"

	"github.com/signadot/ncnf/debug"
	"github.com/signadot/ncnf/ir"
	"github.com/signadot/ncnf/token"
)

// Parse builds a Root from d. On error nothing is returned; any partial
// tree is destroyed.
func Parse(d []byte, opts ...ParseOption) (*ir.Node, error) {
	pOpts := &parseOpts{}
	for _, f := range opts {
		f(pOpts)
	}
	toks, err := token.Tokenize(nil, d)
	if err != nil {
		return nil, pOpts.wrap(err)
	}
	p := &parser{toks: toks, opts: pOpts, end: token.NewPosDoc(d).Pos(len(d))}
	root := ir.NewRoot()
	if err := p.stmts(root, true); err != nil {
		root.Destroy()
		return nil, pOpts.wrap(err)
	}
	if debug.Parse() {
		debug.Logf("parsed %d nodes\n", ir.Count(root))
	}
	return root, nil
}

// ParseString is Parse of a string.
func ParseString(s string, opts ...ParseOption) (*ir.Node, error) {
	return Parse([]byte(s), opts...)
}

func (o *parseOpts) wrap(err error) error {
	if o.filename != "" {
		return fmt.Errorf("%w: %s: %w", ErrParse, o.filename, err)
	}
	return fmt.Errorf("%w: %w", ErrParse, err)
}

type parser struct {
	toks []token.Token
	i    int
	opts *parseOpts
	end  *token.Pos
}

func (p *parser) peek() *token.Token {
	if p.i >= len(p.toks) {
		return nil
	}
	return &p.toks[p.i]
}

func (p *parser) next() *token.Token {
	t := p.peek()
	if t != nil {
		p.i++
	}
	return t
}

// pos returns the position of the next token, or the end of input.
func (p *parser) pos() *token.Pos {
	if t := p.peek(); t != nil {
		return t.Pos
	}
	return p.end
}

func (p *parser) expect(tt token.TokenType, what string) (*token.Token, error) {
	t := p.peek()
	if t == nil || t.Type != tt {
		return nil, token.ExpectedErr(what, p.pos())
	}
	p.i++
	return t, nil
}

// word reads a type or value. Keywords are plain words in this position.
func (p *parser) word(what string) (string, error) {
	t := p.peek()
	if t == nil {
		return "", token.ExpectedErr(what, p.pos())
	}
	switch t.Type {
	case token.TName, token.TString, token.TInsert, token.TInherit, token.TRef, token.TAttach:
		p.i++
		return t.String(), nil
	default:
		return "", token.ExpectedErr(what, t.Pos)
	}
}

func (p *parser) semi() error {
	if _, err := p.expect(token.TSemi, "';'"); err != nil {
		return fmt.Errorf("%w: %w", ErrMissingSemi, err)
	}
	return nil
}

func (p *parser) track(n *ir.Node, pos *token.Pos) {
	if p.opts.positions != nil && pos != nil {
		p.opts.positions[n] = pos
	}
}

func (p *parser) attach(c, n *ir.Node, pos *token.Pos) error {
	if err := c.Attach(n, p.opts.relaxed); err != nil {
		err = ir.NodeErr(n, err)
		n.Destroy()
		return err
	}
	p.track(n, pos)
	return nil
}

func (p *parser) stmts(c *ir.Node, top bool) error {
	for {
		t := p.peek()
		if t == nil {
			if top {
				return nil
			}
			return fmt.Errorf("%w: %w", ErrUnbalanced, token.ExpectedErr("'}'", p.end))
		}
		if t.Type == token.TRCurl {
			if top {
				return fmt.Errorf("%w: %w", ErrUnbalanced, token.UnexpectedErr("'}'", t.Pos))
			}
			p.i++
			return nil
		}
		if err := p.stmt(c); err != nil {
			return err
		}
	}
}

func (p *parser) stmt(c *ir.Node) error {
	t := p.next()
	line := t.Pos.Line() + 1
	switch t.Type {
	case token.TRef, token.TAttach:
		return p.reference(c, t, line)
	case token.TInsert, token.TInherit:
		typ, err := p.word("insertion type")
		if err != nil {
			return err
		}
		val := ""
		if nt := p.peek(); nt != nil && nt.Type != token.TSemi {
			if val, err = p.word("insertion value or ';'"); err != nil {
				return err
			}
		}
		if err := p.semi(); err != nil {
			return err
		}
		return p.attach(c, ir.NewInsertion(typ, val, t.Type == token.TInherit, line), t.Pos)
	case token.TName, token.TString:
		typ := t.String()
		if nt := p.peek(); nt != nil && nt.Type == token.TAt {
			p.i++
			target, err := p.word("attribute name after '@'")
			if err != nil {
				return err
			}
			if err := p.semi(); err != nil {
				return err
			}
			return p.attach(c, ir.NewIndirect(typ, target, line), t.Pos)
		}
		val, err := p.word("value")
		if err != nil {
			return err
		}
		nt := p.peek()
		if nt != nil && nt.Type == token.TLCurl {
			p.i++
			n := ir.NewComplex(typ, val, line)
			if err := p.attach(c, n, t.Pos); err != nil {
				return err
			}
			if err := p.stmts(n, false); err != nil {
				return err
			}
			if nt := p.peek(); nt != nil && nt.Type == token.TSemi {
				p.i++
			}
			return nil
		}
		if err := p.semi(); err != nil {
			return err
		}
		return p.attach(c, ir.NewAttribute(typ, val, line), t.Pos)
	default:
		return token.UnexpectedErr(fmt.Sprintf("%q", t.Bytes), t.Pos)
	}
}

func (p *parser) reference(c *ir.Node, kw *token.Token, line int) error {
	typ, err := p.word("reference type")
	if err != nil {
		return err
	}
	val, err := p.word("reference value")
	if err != nil {
		return err
	}
	if _, err := p.expect(token.TEq, "'='"); err != nil {
		return err
	}
	rtyp, err := p.word("target type")
	if err != nil {
		return err
	}
	rval, err := p.word("target value")
	if err != nil {
		return err
	}
	if err := p.semi(); err != nil {
		return err
	}
	n := ir.NewReference(typ, val, rtyp, rval, kw.Type == token.TAttach, line)
	return p.attach(c, n, kw.Pos)
}
