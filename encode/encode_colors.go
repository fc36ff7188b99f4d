package encode

import (
	"strings"

	"github.com/signadot/ncnf/ir"

	"github.com/fatih/color"
)

type Colorable struct {
	Class ir.Class
	Attr  ColorAttr
}

type ColorAttr int

const (
	CommentColor ColorAttr = iota
	KeywordColor
	TypeColor
	ValueColor
	SepColor
)

type Colors struct {
	Default func(string, ...any) string
	Map     map[Colorable]func(string, ...any) string
}

func NewColors() *Colors {
	colors := &Colors{
		Default: colorDefault,
		Map:     map[Colorable]func(string, ...any) string{},
	}
	for _, c := range ir.Classes() {
		able := Colorable{Class: c, Attr: CommentColor}
		colors.Map[able] = color.BlueString
		able.Attr = KeywordColor
		colors.Map[able] = color.RGB(168, 0, 196).SprintfFunc()
		able.Attr = SepColor
		colors.Map[able] = color.RGB(255, 0, 196).SprintfFunc()
	}
	able := Colorable{Class: ir.ComplexClass, Attr: TypeColor}
	colors.Map[able] = color.RGB(128, 168, 196).SprintfFunc()
	able.Attr = ValueColor
	colors.Map[able] = color.RGB(196, 168, 128).SprintfFunc()

	able.Class = ir.AttributeClass
	able.Attr = TypeColor
	colors.Map[able] = color.RGB(196, 96, 16).SprintfFunc()
	able.Attr = ValueColor
	colors.Map[able] = color.RGB(8, 196, 16).SprintfFunc()

	able.Class = ir.ReferenceClass
	able.Attr = TypeColor
	colors.Map[able] = color.CyanString
	able.Attr = ValueColor
	colors.Map[able] = color.RGB(128, 216, 236).SprintfFunc()

	able.Class = ir.InsertionClass
	able.Attr = ValueColor
	colors.Map[able] = color.RGB(198, 198, 46).SprintfFunc()
	for k, f := range colors.Map {
		colors.Map[k] = func(v string, _ ...any) string {
			return f(strings.Replace(v, "%", "%%", -1))
		}
	}
	return colors
}

func colorDefault(v string, _ ...any) string { return v }

func (c *Colors) Color(cl ir.Class, a ColorAttr, s string) string {
	return c.Get(cl, a)(s)
}

func (c *Colors) Get(cl ir.Class, a ColorAttr) func(string, ...any) string {
	f := c.Map[Colorable{Class: cl, Attr: a}]
	if f == nil {
		return c.Default
	}
	return f
}
