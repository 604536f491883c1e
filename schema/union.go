package schema

import (
	"strings"

	siteconf "github.com/hpcops/siteconf"
)

// unionCandidate is one alternative shape for a polymorphic field.
type unionCandidate struct {
	name    string
	matches func(*siteconf.Node) bool
	decode  func(*siteconf.Node, string) (any, siteconf.Issues)
}

// resolveUnion tries candidates in their declared order and decodes the
// first structural match. A value matching more than one candidate has no
// disambiguating discriminator and is reported as union_ambiguous rather
// than resolved by preference; a value matching none is an invalid_type
// naming every accepted shape.
func resolveUnion(n *siteconf.Node, path string, cands ...unionCandidate) (any, siteconf.Issues) {
	var matched []int
	for i, c := range cands {
		if c.matches(n) {
			matched = append(matched, i)
		}
	}
	switch len(matched) {
	case 1:
		return cands[matched[0]].decode(n, path)
	case 0:
		names := make([]string, len(cands))
		for i, c := range cands {
			names[i] = c.name
		}
		return nil, siteconf.Issues{{
			Path:    path,
			Code:    siteconf.CodeInvalidType,
			Message: "expected one of: " + strings.Join(names, ", "),
		}}
	default:
		names := make([]string, len(matched))
		for i, m := range matched {
			names[i] = cands[m].name
		}
		return nil, siteconf.Issues{{
			Path:    path,
			Code:    siteconf.CodeUnionAmbiguous,
			Message: "value matches multiple variants without a discriminator: " + strings.Join(names, ", "),
		}}
	}
}
