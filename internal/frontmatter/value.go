package frontmatter

import (
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Kind identifies the variant stored in a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindTime
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "timestamp"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is one front matter value. The zero Value is null.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
	t    time.Time
	seq  []Value
	m    Map
}

// Constructors, mainly for tests and synthesized pages.
func String(s string) Value        { return Value{kind: KindString, s: s} }
func Int(i int64) Value            { return Value{kind: KindInt, i: i} }
func Float(f float64) Value        { return Value{kind: KindFloat, f: f} }
func Bool(b bool) Value            { return Value{kind: KindBool, b: b} }
func Time(t time.Time) Value       { return Value{kind: KindTime, t: t} }
func Sequence(vs ...Value) Value   { return Value{kind: KindSequence, seq: vs} }
func Mapping(m Map) Value          { return Value{kind: KindMapping, m: m} }
func (v Value) Kind() Kind         { return v.kind }
func (v Value) IsNull() bool       { return v.kind == KindNull }
func (v Value) Items() []Value     { return v.seq }
func (v Value) Fields() Map        { return v.m }

// AsString returns the string variant.
func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

// AsBool returns the bool variant.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsInt returns the int variant. Floats with no fractional part are accepted.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindFloat:
		if v.f == float64(int64(v.f)) {
			return int64(v.f), true
		}
	}
	return 0, false
}

// AsFloat returns the numeric variants as float64.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	}
	return 0, false
}

// AsTime returns the timestamp variant. A string holding an RFC 3339
// timestamp is also accepted since quoted dates are common in front matter.
func (v Value) AsTime() (time.Time, bool) {
	switch v.kind {
	case KindTime:
		return v.t, true
	case KindString:
		if t, err := time.Parse(time.RFC3339, v.s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AsStrings returns a sequence of scalars as strings.
func (v Value) AsStrings() ([]string, bool) {
	if v.kind != KindSequence {
		return nil, false
	}
	out := make([]string, 0, len(v.seq))
	for _, item := range v.seq {
		switch item.kind {
		case KindSequence, KindMapping, KindNull:
			return nil, false
		}
		out = append(out, item.Text())
	}
	return out, true
}

// Text renders scalars the way a template would print them.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.t.Format(time.RFC3339)
	case KindNull:
		return ""
	default:
		return fmt.Sprint(v.Interface())
	}
}

// Interface converts the value to plain Go values: string, int64, float64,
// bool, time.Time, []any, map[string]any or nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindTime:
		return v.t
	case KindSequence:
		out := make([]any, len(v.seq))
		for i, item := range v.seq {
			out[i] = item.Interface()
		}
		return out
	case KindMapping:
		return v.m.Interface()
	default:
		return nil
	}
}

func fromNode(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Value{}, nil
		}
		return fromNode(n.Content[0])
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			item, err := fromNode(c)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return Sequence(items...), nil
	case yaml.MappingNode:
		m := make(Map, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, val := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return Value{}, fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
			}
			item, err := fromNode(val)
			if err != nil {
				return Value{}, err
			}
			m[k.Value] = item
		}
		return Mapping(m), nil
	case yaml.ScalarNode:
		return scalar(n)
	default:
		return Value{}, fmt.Errorf("line %d: unsupported yaml node", n.Line)
	}
}

func scalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Value{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, err
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return Value{}, err
		}
		return Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, err
		}
		return Float(f), nil
	case "!!timestamp":
		var t time.Time
		if err := n.Decode(&t); err != nil {
			return Value{}, err
		}
		return Time(t), nil
	default:
		return String(n.Value), nil
	}
}
