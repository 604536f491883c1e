package schema

import (
	"fmt"

	siteconf "github.com/hpcops/siteconf"
)

type decodeFunc func(name string, n *siteconf.Node, path string) (Record, siteconf.Issues)

// Registry is the closed set of record variants. Declaration order is part
// of the schema contract: it fixes the tie-break order for polymorphic
// resolution and the order kinds are reported in diagnostics.
type Registry struct {
	order    []Kind
	decoders map[Kind]decodeFunc
}

// DefaultRegistry returns the registry covering the internal provisioning
// schema.
func DefaultRegistry() *Registry {
	r := &Registry{decoders: map[Kind]decodeFunc{}}
	r.register(KindUser, decodeUser)
	r.register(KindGroup, decodeGroup)
	r.register(KindStorage, decodeStorage)
	r.register(KindHost, decodeHost)
	r.register(KindSlurmAccess, decodeSlurmAccess)
	return r
}

func (r *Registry) register(k Kind, fn decodeFunc) {
	if _, dup := r.decoders[k]; dup {
		panic(fmt.Sprintf("schema: kind %q registered twice", k))
	}
	r.order = append(r.order, k)
	r.decoders[k] = fn
}

// Kinds lists the registered kinds in declaration order.
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, len(r.order))
	copy(out, r.order)
	return out
}

// Validate converts a merged document tree into a typed record set, or
// fails with a ValidationError enumerating every field-level violation
// found in one pass. The input tree is never mutated.
//
// Two document shapes are accepted: a single record (a mapping carrying
// "kind" and "name" at top level), or a mapping of member name to record
// body, each body carrying its own "kind".
func (r *Registry) Validate(tree *siteconf.Node) (*Set, error) {
	return r.ValidateSource("", tree)
}

// ValidateSource is Validate with a source label (file name or forest key)
// attached to any resulting error.
func (r *Registry) ValidateSource(source string, tree *siteconf.Node) (*Set, error) {
	if tree == nil || tree.Kind() != siteconf.KindMapping {
		return nil, &siteconf.ValidationError{Source: source, Issues: siteconf.Issues{{
			Path: "", Code: siteconf.CodeInvalidType, Message: "document root must be a mapping",
		}}}
	}

	set := NewSet()
	var iss siteconf.Issues

	if _, ok := tree.Get("kind"); ok {
		rec, memberIss := r.validateMember("", tree, "")
		iss = siteconf.AppendIssues(iss, memberIss...)
		if rec != nil {
			set.Add(rec)
		}
	} else {
		for _, name := range tree.Keys() {
			body, _ := tree.Get(name)
			if body == nil || body.Kind() != siteconf.KindMapping {
				iss = siteconf.AppendIssues(iss, siteconf.Issue{
					Path: name, Code: siteconf.CodeInvalidType, Message: "record body must be a mapping",
				})
				continue
			}
			rec, memberIss := r.validateMember(name, body, name)
			iss = siteconf.AppendIssues(iss, memberIss...)
			if rec != nil {
				set.Add(rec)
			}
		}
	}

	if len(iss) > 0 {
		return nil, &siteconf.ValidationError{Source: source, Issues: iss}
	}
	return set, nil
}

// validateMember resolves one record body against the registry. name is the
// member key when the document used the named-members shape, empty for the
// single-record shape (where the "name" attribute is authoritative).
func (r *Registry) validateMember(name string, body *siteconf.Node, path string) (Record, siteconf.Issues) {
	var iss siteconf.Issues

	kindNode, ok := body.Get("kind")
	if !ok {
		return nil, siteconf.Issues{{
			Path: JoinPath(path, "kind"), Code: siteconf.CodeKindMissing,
			Message: "record does not declare a kind",
		}}
	}
	kindStr, ok := asString(kindNode)
	if !ok {
		return nil, siteconf.Issues{{
			Path: JoinPath(path, "kind"), Code: siteconf.CodeInvalidType,
			Message: "kind must be a string",
		}}
	}
	decode, ok := r.decoders[Kind(kindStr)]
	if !ok {
		return nil, siteconf.Issues{{
			Path: JoinPath(path, "kind"), Code: siteconf.CodeKindUnknown,
			Message: fmt.Sprintf("unknown record kind %q", kindStr),
			Hint:    "registered kinds: " + kindList(r.order),
		}}
	}

	if attrNode, ok := body.Get("name"); ok {
		attr, strOK := asString(attrNode)
		if !strOK {
			iss = siteconf.AppendIssues(iss, siteconf.Issue{
				Path: JoinPath(path, "name"), Code: siteconf.CodeInvalidType,
				Message: "name must be a string",
			})
		} else if name == "" {
			name = attr
		} else if attr != name {
			iss = siteconf.AppendIssues(iss, siteconf.Issue{
				Path: JoinPath(path, "name"), Code: siteconf.CodeNameMismatch,
				Message: fmt.Sprintf("name attribute %q conflicts with member key %q", attr, name),
			})
		}
	}
	if name == "" {
		iss = siteconf.AppendIssues(iss, siteconf.Issue{
			Path: JoinPath(path, "name"), Code: siteconf.CodeRequired,
			Message: "record has no name",
		})
	}

	rec, decIss := decode(name, body, path)
	iss = siteconf.AppendIssues(iss, decIss...)
	if len(iss) > 0 {
		return nil, iss
	}
	return rec, nil
}

func kindList(kinds []Kind) string {
	out := ""
	for i, k := range kinds {
		if i > 0 {
			out += ", "
		}
		out += string(k)
	}
	return out
}
