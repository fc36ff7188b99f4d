package encode

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/signadot/ncnf/ir"
)

// Export maps a container to an ordered mapping for structured output.
//
// Attributes map their type to their value, or to the list of values
// when the type repeats. Objects are grouped by type, each group mapping
// object values to their contents. A reference maps to its target as
// "type value", under "ref" or "attach". When attributes and objects
// share a type, the object group key gets a "{}" suffix.
func Export(n *ir.Node) (yaml.MapSlice, error) {
	if n == nil || !n.Class.IsContainer() {
		return nil, fmt.Errorf("%w: cannot export %s", ErrEncoding, classOf(n))
	}
	res := yaml.MapSlice{}
	index := map[string]int{}
	attrs := n.Attributes()
	for i := 0; i < attrs.Len(); i++ {
		a := attrs.At(i)
		j, ok := index[a.Type()]
		if !ok {
			index[a.Type()] = len(res)
			res = append(res, yaml.MapItem{Key: a.Type(), Value: a.Value()})
			continue
		}
		switch v := res[j].Value.(type) {
		case string:
			res[j].Value = []string{v, a.Value()}
		case []string:
			res[j].Value = append(v, a.Value())
		}
	}
	objs := n.Objects()
	for i := 0; i < objs.Len(); i++ {
		o := objs.At(i)
		var v any
		switch o.Class {
		case ir.ComplexClass:
			body, err := Export(o)
			if err != nil {
				return nil, err
			}
			v = body
		case ir.ReferenceClass:
			kw := "ref"
			if o.IsAttach() {
				kw = "attach"
			}
			v = yaml.MapSlice{{Key: kw, Value: o.RefType() + " " + o.RefValue()}}
		default:
			continue
		}
		key := o.Type()
		if _, isAttr := index[key]; isAttr {
			key += "{}"
		}
		j, ok := index["\x00"+o.Type()]
		if !ok {
			j = len(res)
			index["\x00"+o.Type()] = j
			res = append(res, yaml.MapItem{Key: key, Value: yaml.MapSlice{}})
		}
		group := res[j].Value.(yaml.MapSlice)
		res[j].Value = append(group, yaml.MapItem{Key: o.Value(), Value: v})
	}
	return res, nil
}

func classOf(n *ir.Node) string {
	if n == nil {
		return "nil node"
	}
	return n.Class.String()
}

// YAML exports n, a root or complex object, as YAML.
func YAML(n *ir.Node) ([]byte, error) {
	ms, err := Export(n)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(ms)
}

// JSON exports n, a root or complex object, as JSON.
func JSON(n *ir.Node) ([]byte, error) {
	ms, err := Export(n)
	if err != nil {
		return nil, err
	}
	return yaml.MarshalWithOptions(ms, yaml.JSON())
}
