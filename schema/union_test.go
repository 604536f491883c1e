package schema

import (
	"testing"

	siteconf "github.com/hpcops/siteconf"
)

func TestResolveUnion_Ambiguous(t *testing.T) {
	anyScalar := func(n *siteconf.Node) bool { return n.Kind() == siteconf.KindScalar }
	decode := func(n *siteconf.Node, p string) (any, siteconf.Issues) { return "x", nil }
	_, iss := resolveUnion(siteconf.Scalar("v"), "f",
		unionCandidate{name: "first", matches: anyScalar, decode: decode},
		unionCandidate{name: "second", matches: anyScalar, decode: decode},
	)
	if len(iss) != 1 || iss[0].Code != siteconf.CodeUnionAmbiguous {
		t.Fatalf("got %v", iss)
	}
	if iss[0].Path != "f" {
		t.Fatalf("path: %q", iss[0].Path)
	}
}

func TestResolveUnion_DeclarationOrderDecides(t *testing.T) {
	// only the first candidate matches; its decoder must run
	_, issA := resolveUnion(siteconf.Scalar("v"), "f",
		unionCandidate{
			name:    "string",
			matches: func(n *siteconf.Node) bool { _, ok := asString(n); return ok },
			decode:  func(n *siteconf.Node, p string) (any, siteconf.Issues) { return "string", nil },
		},
		unionCandidate{
			name:    "mapping",
			matches: func(n *siteconf.Node) bool { return n.Kind() == siteconf.KindMapping },
			decode:  func(n *siteconf.Node, p string) (any, siteconf.Issues) { return "mapping", nil },
		},
	)
	if issA != nil {
		t.Fatalf("unexpected issues: %v", issA)
	}
}

func TestResolveUnion_NoMatchNamesShapes(t *testing.T) {
	_, iss := resolveUnion(siteconf.Scalar(int64(7)), "f",
		unionCandidate{
			name:    "boolean toggle",
			matches: func(n *siteconf.Node) bool { _, ok := n.ScalarValue().(bool); return ok },
			decode:  func(n *siteconf.Node, p string) (any, siteconf.Issues) { return nil, nil },
		},
	)
	if len(iss) != 1 || iss[0].Code != siteconf.CodeInvalidType {
		t.Fatalf("got %v", iss)
	}
	if iss[0].Message == "" {
		t.Fatalf("no-match diagnostic must name the accepted shapes")
	}
}
