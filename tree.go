package siteconf

import (
	"fmt"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// NodeKind enumerates the shapes a document tree value can take.
type NodeKind int

const (
	KindScalar NodeKind = iota
	KindSequence
	KindMapping
)

func (k NodeKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Node is the untyped document tree: a scalar, an ordered sequence of nodes,
// or a string-keyed mapping of nodes. Mappings remember insertion order so
// merged documents serialize deterministically.
type Node struct {
	kind   NodeKind
	scalar any // string, int64, float64, bool, or nil
	seq    []*Node
	keys   []string
	fields map[string]*Node
}

// Scalar wraps a scalar value as a Node. Integer kinds normalize to int64.
func Scalar(v any) *Node {
	switch t := v.(type) {
	case int:
		v = int64(t)
	case int32:
		v = int64(t)
	case uint32:
		v = int64(t)
	case uint64:
		v = int64(t)
	case float32:
		v = float64(t)
	}
	return &Node{kind: KindScalar, scalar: v}
}

// Sequence wraps nodes as a sequence Node.
func Sequence(items ...*Node) *Node {
	return &Node{kind: KindSequence, seq: items}
}

// Mapping returns an empty mapping Node.
func Mapping() *Node {
	return &Node{kind: KindMapping, fields: map[string]*Node{}}
}

// Kind reports the node's shape.
func (n *Node) Kind() NodeKind { return n.kind }

// ScalarValue returns the scalar payload; nil for non-scalars.
func (n *Node) ScalarValue() any {
	if n.kind != KindScalar {
		return nil
	}
	return n.scalar
}

// Items returns the sequence elements; nil for non-sequences.
func (n *Node) Items() []*Node {
	if n.kind != KindSequence {
		return nil
	}
	return n.seq
}

// Keys returns the mapping keys in insertion order.
func (n *Node) Keys() []string {
	if n.kind != KindMapping {
		return nil
	}
	return n.keys
}

// Get looks up a mapping key.
func (n *Node) Get(key string) (*Node, bool) {
	if n.kind != KindMapping {
		return nil, false
	}
	c, ok := n.fields[key]
	return c, ok
}

// Set stores a mapping entry, preserving the original position of existing
// keys and appending new ones.
func (n *Node) Set(key string, child *Node) {
	if n.kind != KindMapping {
		return
	}
	if _, ok := n.fields[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.fields[key] = child
}

// Len returns the element count for sequences and mappings, 0 for scalars.
func (n *Node) Len() int {
	switch n.kind {
	case KindSequence:
		return len(n.seq)
	case KindMapping:
		return len(n.keys)
	default:
		return 0
	}
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	switch n.kind {
	case KindScalar:
		return &Node{kind: KindScalar, scalar: n.scalar}
	case KindSequence:
		items := make([]*Node, len(n.seq))
		for i, it := range n.seq {
			items[i] = it.Clone()
		}
		return &Node{kind: KindSequence, seq: items}
	case KindMapping:
		out := Mapping()
		for _, k := range n.keys {
			out.Set(k, n.fields[k].Clone())
		}
		return out
	default:
		return nil
	}
}

// SortKeys recursively reorders all mapping keys into ascending order.
// Validated dumps call this so output is stable regardless of input order.
func (n *Node) SortKeys() {
	if n == nil {
		return
	}
	switch n.kind {
	case KindSequence:
		for _, it := range n.seq {
			it.SortKeys()
		}
	case KindMapping:
		sort.Strings(n.keys)
		for _, k := range n.keys {
			n.fields[k].SortKeys()
		}
	}
}

// FromAny normalizes a decoded YAML/JSON value into a Node. Map keys must be
// strings; non-string keys are skipped the way YAML-to-JSON bridges drop
// them.
func FromAny(v any) *Node {
	switch t := v.(type) {
	case nil:
		return Scalar(nil)
	case map[string]any:
		out := Mapping()
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out.Set(k, FromAny(t[k]))
		}
		return out
	case map[any]any:
		out := Mapping()
		keys := make([]string, 0, len(t))
		for k := range t {
			if ks, ok := k.(string); ok {
				keys = append(keys, ks)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			out.Set(k, FromAny(t[k]))
		}
		return out
	case []any:
		items := make([]*Node, len(t))
		for i := range t {
			items[i] = FromAny(t[i])
		}
		return Sequence(items...)
	case []string:
		items := make([]*Node, len(t))
		for i := range t {
			items[i] = Scalar(t[i])
		}
		return Sequence(items...)
	default:
		return Scalar(v)
	}
}

// ToAny converts the node back into plain Go values (map[string]any,
// []any, scalars). Mapping order is lost; use YAML marshaling when order
// matters.
func (n *Node) ToAny() any {
	if n == nil {
		return nil
	}
	switch n.kind {
	case KindScalar:
		return n.scalar
	case KindSequence:
		out := make([]any, len(n.seq))
		for i, it := range n.seq {
			out[i] = it.ToAny()
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(n.keys))
		for _, k := range n.keys {
			out[k] = n.fields[k].ToAny()
		}
		return out
	default:
		return nil
	}
}

// UnmarshalYAML builds the node from a yaml.v3 document node, preserving
// mapping key order and resolving scalar tags to typed values.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	built, err := fromYAMLNode(value)
	if err != nil {
		return err
	}
	*n = *built
	return nil
}

// MarshalYAML emits the node through yaml.v3, keeping mapping key order.
func (n *Node) MarshalYAML() (any, error) {
	return toYAMLNode(n), nil
}

func fromYAMLNode(y *yaml.Node) (*Node, error) {
	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return Mapping(), nil
		}
		return fromYAMLNode(y.Content[0])
	case yaml.AliasNode:
		return fromYAMLNode(y.Alias)
	case yaml.MappingNode:
		out := Mapping()
		for i := 0; i+1 < len(y.Content); i += 2 {
			k := y.Content[i]
			if k.Kind == yaml.AliasNode {
				k = k.Alias
			}
			child, err := fromYAMLNode(y.Content[i+1])
			if err != nil {
				return nil, err
			}
			out.Set(k.Value, child)
		}
		return out, nil
	case yaml.SequenceNode:
		items := make([]*Node, 0, len(y.Content))
		for _, c := range y.Content {
			child, err := fromYAMLNode(c)
			if err != nil {
				return nil, err
			}
			items = append(items, child)
		}
		return Sequence(items...), nil
	case yaml.ScalarNode:
		return scalarFromYAML(y)
	default:
		return nil, fmt.Errorf("unsupported yaml node kind %d at line %d", y.Kind, y.Line)
	}
}

func scalarFromYAML(y *yaml.Node) (*Node, error) {
	switch y.Tag {
	case "!!null", "":
		if y.Tag == "" && y.Value != "" {
			return Scalar(y.Value), nil
		}
		return Scalar(nil), nil
	case "!!bool":
		b, err := strconv.ParseBool(y.Value)
		if err != nil {
			return nil, fmt.Errorf("bad bool %q at line %d", y.Value, y.Line)
		}
		return Scalar(b), nil
	case "!!int":
		// Base selection handles 0x/0o forms; plain zero-prefixed decimals
		// (e.g. gid 0111111 written as 111111) already arrive unprefixed.
		i, err := strconv.ParseInt(y.Value, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int %q at line %d", y.Value, y.Line)
		}
		return Scalar(i), nil
	case "!!float":
		f, err := strconv.ParseFloat(y.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("bad float %q at line %d", y.Value, y.Line)
		}
		return Scalar(f), nil
	default:
		return Scalar(y.Value), nil
	}
}

func toYAMLNode(n *Node) *yaml.Node {
	if n == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	switch n.kind {
	case KindScalar:
		return scalarToYAML(n.scalar)
	case KindSequence:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, it := range n.seq {
			out.Content = append(out.Content, toYAMLNode(it))
		}
		return out
	case KindMapping:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range n.keys {
			out.Content = append(out.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				toYAMLNode(n.fields[k]))
		}
		return out
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

func scalarToYAML(v any) *yaml.Node {
	switch t := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(t)}
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(t, 10)}
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(t, 'g', -1, 64)}
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(t)}
	}
}
