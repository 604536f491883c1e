package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	siteconf "github.com/hpcops/siteconf"
)

// Decoder walks one mapping node, pulling out declared fields with type
// coercion and accumulating issues instead of failing fast. Finish flags
// every key that was never consumed, so undeclared attributes are rejected
// rather than silently passed through.
type Decoder struct {
	node *siteconf.Node
	path string
	seen map[string]struct{}
	iss  siteconf.Issues
}

// NewDecoder roots a decoder at the given mapping node and dotted path.
// Intake and other sibling schemas reuse it for their own record shapes.
func NewDecoder(n *siteconf.Node, path string) *Decoder {
	return &Decoder{node: n, path: path, seen: map[string]struct{}{}}
}

func JoinPath(parent, field string) string {
	if parent == "" {
		return field
	}
	if strings.HasPrefix(field, "[") {
		return parent + field
	}
	return parent + "." + field
}

func (d *Decoder) Fail(field, code, msg string) {
	d.iss = siteconf.AppendIssues(d.iss, siteconf.Issue{
		Path:    JoinPath(d.path, field),
		Code:    code,
		Message: msg,
	})
}

func (d *Decoder) Merge(iss siteconf.Issues) {
	d.iss = siteconf.AppendIssues(d.iss, iss...)
}

// take marks a field consumed and returns its node. Explicit nulls count as
// absent so a layered override can leave optional fields untouched.
func (d *Decoder) Take(field string) (*siteconf.Node, bool) {
	d.seen[field] = struct{}{}
	c, ok := d.node.Get(field)
	if !ok || c == nil {
		return nil, false
	}
	if c.Kind() == siteconf.KindScalar && c.ScalarValue() == nil {
		return nil, false
	}
	return c, true
}

func (d *Decoder) Str(field string) (string, bool) {
	c, ok := d.Take(field)
	if !ok {
		return "", false
	}
	s, ok := asString(c)
	if !ok {
		d.Fail(field, siteconf.CodeInvalidType, "expected string, got "+c.Kind().String())
		return "", false
	}
	return s, true
}

func (d *Decoder) ReqStr(field string) (string, bool) {
	if s, ok := d.Str(field); ok {
		return s, true
	}
	if _, present := d.Take(field); !present {
		d.Fail(field, siteconf.CodeRequired, "required attribute missing")
	}
	return "", false
}

// uint32 coerces int64, integral float64, and numeric strings into the
// declared integer type, rejecting anything outside [0, 2^32).
func (d *Decoder) Uint32(field string) (uint32, bool) {
	c, ok := d.Take(field)
	if !ok {
		return 0, false
	}
	i, ok := asInt(c)
	if !ok {
		d.Fail(field, siteconf.CodeInvalidType, "expected integer, got "+describe(c))
		return 0, false
	}
	if i < 0 || i > uintMax {
		d.Fail(field, siteconf.CodeOutOfRange, fmt.Sprintf("%d outside [0, %d]", i, uintMax))
		return 0, false
	}
	return uint32(i), true
}

func (d *Decoder) ReqUint32(field string) (uint32, bool) {
	if _, present := d.Take(field); !present {
		d.Fail(field, siteconf.CodeRequired, "required attribute missing")
		return 0, false
	}
	return d.Uint32(field)
}

func (d *Decoder) Bool(field string) (bool, bool) {
	c, ok := d.Take(field)
	if !ok {
		return false, false
	}
	b, ok := c.ScalarValue().(bool)
	if !ok {
		d.Fail(field, siteconf.CodeInvalidType, "expected bool, got "+describe(c))
		return false, false
	}
	return b, true
}

// strSeq reads a sequence of strings; element failures carry indexed paths
// such as groups[2].
func (d *Decoder) StrSeq(field string) ([]string, bool) {
	c, ok := d.Take(field)
	if !ok {
		return nil, false
	}
	if c.Kind() != siteconf.KindSequence {
		d.Fail(field, siteconf.CodeInvalidType, "expected sequence, got "+c.Kind().String())
		return nil, false
	}
	out := make([]string, 0, c.Len())
	bad := false
	for i, it := range c.Items() {
		s, ok := asString(it)
		if !ok {
			d.Fail(fmt.Sprintf("%s[%d]", field, i), siteconf.CodeInvalidType, "expected string, got "+describe(it))
			bad = true
			continue
		}
		out = append(out, s)
	}
	return out, !bad
}

// strSet reads a set-valued sequence of strings, normalizing to sorted,
// deduplicated order so validated records compare and serialize stably.
func (d *Decoder) StrSet(field string) ([]string, bool) {
	vals, ok := d.StrSeq(field)
	if vals == nil {
		return nil, ok
	}
	sort.Strings(vals)
	out := make([]string, 0, len(vals))
	for i, v := range vals {
		if i > 0 && v == out[len(out)-1] {
			continue
		}
		out = append(out, v)
	}
	return out, ok
}

func (d *Decoder) Enum(field string, allowed ...string) (string, bool) {
	s, ok := d.Str(field)
	if !ok {
		return "", false
	}
	for _, a := range allowed {
		if s == a {
			return s, true
		}
	}
	d.Fail(field, siteconf.CodeInvalidEnum, fmt.Sprintf("%q not one of %s", s, strings.Join(allowed, ", ")))
	return "", false
}

func (d *Decoder) Pattern(field string, check func(string) bool, hint string) (string, bool) {
	s, ok := d.Str(field)
	if !ok {
		return "", false
	}
	if !check(s) {
		d.Fail(field, siteconf.CodePattern, fmt.Sprintf("%q does not match %s", s, hint))
		return "", false
	}
	return s, true
}

// mapping reads a nested mapping field, returning the child node for a
// nested decoder rooted at the extended path.
func (d *Decoder) Mapping(field string) (*siteconf.Node, string, bool) {
	c, ok := d.Take(field)
	if !ok {
		return nil, "", false
	}
	if c.Kind() != siteconf.KindMapping {
		d.Fail(field, siteconf.CodeInvalidType, "expected mapping, got "+c.Kind().String())
		return nil, "", false
	}
	return c, JoinPath(d.path, field), true
}

func (d *Decoder) ReqPattern(field string, check func(string) bool, hint string) (string, bool) {
	if _, present := d.Take(field); !present {
		d.Fail(field, siteconf.CodeRequired, "required attribute missing")
		return "", false
	}
	return d.Pattern(field, check, hint)
}

// skip marks envelope fields (kind, name) the registry already consumed.
func (d *Decoder) Skip(fields ...string) {
	for _, f := range fields {
		d.seen[f] = struct{}{}
	}
}

// finish rejects any attribute the variant does not declare.
func (d *Decoder) Finish() siteconf.Issues {
	for _, k := range d.node.Keys() {
		if _, ok := d.seen[k]; ok {
			continue
		}
		d.Fail(k, siteconf.CodeUnknownKey, "attribute not declared by this record kind")
	}
	return d.iss
}

func asString(n *siteconf.Node) (string, bool) {
	if n.Kind() != siteconf.KindScalar {
		return "", false
	}
	s, ok := n.ScalarValue().(string)
	return s, ok
}

func asInt(n *siteconf.Node) (int64, bool) {
	if n.Kind() != siteconf.KindScalar {
		return 0, false
	}
	switch t := n.ScalarValue().(type) {
	case int64:
		return t, true
	case float64:
		if t == float64(int64(t)) {
			return int64(t), true
		}
		return 0, false
	case string:
		i, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

func describe(n *siteconf.Node) string {
	if n.Kind() != siteconf.KindScalar {
		return n.Kind().String()
	}
	switch n.ScalarValue().(type) {
	case string:
		return "string"
	case int64:
		return "integer"
	case float64:
		return "float"
	case bool:
		return "bool"
	case nil:
		return "null"
	default:
		return "scalar"
	}
}
