package encode

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/signadot/ncnf/ir"
	"github.com/signadot/ncnf/token"
)

var ErrEncoding = errors.New("encoding error")

type EncState struct {
	depth, indent int
	verbose       bool
	markedOnly    bool
	flat          bool
	flatten       string

	Color func(ir.Class, ColorAttr, string) string
}

// Encode writes node to w in the configuration grammar. A root is
// written as its contents; an iterator as the nodes it holds.
func Encode(node *ir.Node, w io.Writer, opts ...EncodeOption) error {
	if node == nil {
		return ir.ErrInvalid
	}
	es := &EncState{
		indent: 2,
	}
	for _, opt := range opts {
		opt(es)
	}
	buf := &bytes.Buffer{}
	var err error
	if es.flat {
		err = encodeFlat(node, buf, es)
	} else {
		err = encode(node, buf, es)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func (es *EncState) color(c ir.Class, a ColorAttr, v string) string {
	if es.Color == nil {
		return v
	}
	return es.Color(c, a, v)
}

func (es *EncState) writeIndent(b *bytes.Buffer) {
	b.WriteString(strings.Repeat(" ", es.indent*es.depth))
}

func (es *EncState) writeType(b *bytes.Buffer, c ir.Class, typ string) {
	if token.NeedsQuote(typ) {
		typ = token.Quote(typ)
	}
	b.WriteString(es.color(c, TypeColor, typ))
}

func (es *EncState) writeValue(b *bytes.Buffer, c ir.Class, v string) {
	b.WriteString(es.color(c, ValueColor, token.Quote(v)))
}

func (es *EncState) writeKeyword(b *bytes.Buffer, c ir.Class, kw string) {
	b.WriteString(es.color(c, KeywordColor, kw))
	b.WriteByte(' ')
}

func (es *EncState) writeSep(b *bytes.Buffer, c ir.Class, sep string) {
	b.WriteString(es.color(c, SepColor, sep))
}

func (es *EncState) writeLine(b *bytes.Buffer, n *ir.Node) {
	if es.verbose {
		b.WriteString(es.color(n.Class, CommentColor, "\t# line "+strconv.Itoa(n.Line)))
	}
	b.WriteByte('\n')
}

func encode(node *ir.Node, b *bytes.Buffer, es *EncState) error {
	if es.markedOnly && node.Mark == 0 && node.Class != ir.RootClass && node.Class != ir.IteratorClass {
		return nil
	}
	switch node.Class {
	case ir.RootClass:
		return encodeBody(node, b, es)
	case ir.ComplexClass:
		return encodeComplex(node, b, es)
	case ir.AttributeClass:
		encodeAttribute(node, b, es)
	case ir.ReferenceClass:
		encodeReference(node, b, es)
	case ir.InsertionClass:
		encodeInsertion(node, b, es)
	case ir.IteratorClass:
		for _, n := range node.All() {
			if err := encode(n, b, es); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: cannot encode %s", ErrEncoding, node.Class)
	}
	return nil
}

var bodyKinds = [...]ir.Kind{ir.Attributes, ir.Objects, ir.Inserts}

func encodeBody(node *ir.Node, b *bytes.Buffer, es *EncState) error {
	for i, k := range bodyKinds {
		coll := node.Collection(k)
		for j := 0; j < coll.Len(); j++ {
			if err := encode(coll.At(j), b, es); err != nil {
				return err
			}
		}
		if i+1 < len(bodyKinds) && coll.Len() != 0 && node.Collection(bodyKinds[i+1]).Len() != 0 {
			b.WriteByte('\n')
		}
	}
	return nil
}

func encodeComplex(node *ir.Node, b *bytes.Buffer, es *EncState) error {
	es.writeIndent(b)
	es.writeType(b, node.Class, node.Type())
	b.WriteByte(' ')
	es.writeValue(b, node.Class, node.Value())
	b.WriteByte(' ')
	es.writeSep(b, node.Class, "{")
	es.writeLine(b, node)
	es.depth++
	err := encodeBody(node, b, es)
	es.depth--
	if err != nil {
		return err
	}
	es.writeIndent(b)
	es.writeSep(b, node.Class, "}")
	if es.depth == 0 {
		b.WriteString("\n\n")
	} else {
		b.WriteByte('\n')
	}
	return nil
}

func encodeAttribute(node *ir.Node, b *bytes.Buffer, es *EncState) {
	es.writeIndent(b)
	es.writeType(b, node.Class, node.Type())
	b.WriteByte(' ')
	if node.Indirect {
		es.writeSep(b, node.Class, "@")
	}
	es.writeValue(b, node.Class, node.Value())
	es.writeSep(b, node.Class, ";")
	es.writeLine(b, node)
}

func encodeReference(node *ir.Node, b *bytes.Buffer, es *EncState) {
	es.writeIndent(b)
	kw := "ref"
	if node.IsAttach() {
		kw = "attach"
	}
	es.writeKeyword(b, node.Class, kw)
	es.writeType(b, node.Class, node.Type())
	b.WriteByte(' ')
	es.writeValue(b, node.Class, node.Value())
	b.WriteByte(' ')
	es.writeSep(b, node.Class, "=")
	b.WriteByte(' ')
	es.writeType(b, node.Class, node.RefType())
	b.WriteByte(' ')
	es.writeValue(b, node.Class, node.RefValue())
	es.writeSep(b, node.Class, ";")
	es.writeLine(b, node)
}

func encodeInsertion(node *ir.Node, b *bytes.Buffer, es *EncState) {
	es.writeIndent(b)
	kw := "insert"
	if node.Inherit {
		kw = "inherit"
	}
	es.writeKeyword(b, node.Class, kw)
	es.writeType(b, node.Class, node.Type())
	if node.Value() != "" {
		b.WriteByte(' ')
		es.writeValue(b, node.Class, node.Value())
	}
	es.writeSep(b, node.Class, ";")
	es.writeLine(b, node)
}

// encodeFlat lists the selected children of a container, one line each.
func encodeFlat(node *ir.Node, b *bytes.Buffer, es *EncState) error {
	if node.Class == ir.IteratorClass {
		for _, n := range node.All() {
			if err := encodeFlat(n, b, es); err != nil {
				return err
			}
		}
		return nil
	}
	if !node.Class.IsContainer() {
		return fmt.Errorf("%w: cannot flatten %s", ErrEncoding, node.Class)
	}
	all := es.flatten == "" || es.flatten == "*" || es.flatten == "-"
	for _, k := range [...]ir.Kind{ir.Attributes, ir.Objects} {
		coll := node.Collection(k)
		for i := 0; i < coll.Len(); i++ {
			c := coll.At(i)
			if !all && c.Type() != es.flatten {
				continue
			}
			if es.markedOnly && c.Mark == 0 {
				continue
			}
			es.writeIndent(b)
			switch c.Class {
			case ir.ComplexClass:
				fmt.Fprintf(b, "%s %s { ... }", c.Type(), c.Value())
			case ir.AttributeClass:
				fmt.Fprintf(b, "%s\t%s", c.Type(), c.Value())
			case ir.ReferenceClass:
				fmt.Fprintf(b, "%s %s => %s %s { ... }", c.Type(), c.Value(), c.RefType(), c.RefValue())
			}
			es.writeLine(b, c)
		}
	}
	return nil
}
