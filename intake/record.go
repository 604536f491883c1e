// Package intake models the onboarding system's export format and its
// one-way conversion into the internal provisioning schema.
package intake

import (
	siteconf "github.com/hpcops/siteconf"
	"github.com/hpcops/siteconf/schema"
)

// Record is one account request as exported by the onboarding system.
type Record struct {
	Account Account
	Sponsor Sponsor
	Meta    Meta
}

// Account identifies the requester. Key carries the submitted SSH public
// key; it never survives conversion into the internal schema.
type Account struct {
	Name   string
	Email  string
	Kerb   string
	IAM    uint32
	Mothra uint32
	Key    string
}

// Sponsor identifies the PI vouching for the request.
type Sponsor struct {
	AccountName string
	Name        string
	Email       string
	Kerb        string
	IAM         uint32
	Mothra      uint32
}

// Meta carries request routing information.
type Meta struct {
	Cluster string
}

// Validate converts an untyped intake document into a typed Record, or
// fails with a ValidationError listing every violation.
func Validate(tree *siteconf.Node) (*Record, error) {
	return ValidateSource("", tree)
}

// ValidateSource is Validate with a source label attached to any error.
func ValidateSource(source string, tree *siteconf.Node) (*Record, error) {
	if tree == nil || tree.Kind() != siteconf.KindMapping {
		return nil, &siteconf.ValidationError{Source: source, Issues: siteconf.Issues{{
			Path: "", Code: siteconf.CodeInvalidType, Message: "intake document must be a mapping",
		}}}
	}
	d := schema.NewDecoder(tree, "")
	rec := &Record{}
	if c, p, ok := d.Mapping("account"); ok {
		rec.Account = decodeAccount(d, c, p)
	} else {
		d.Fail("account", siteconf.CodeRequired, "required attribute missing")
	}
	if c, p, ok := d.Mapping("sponsor"); ok {
		rec.Sponsor = decodeSponsor(d, c, p)
	} else {
		d.Fail("sponsor", siteconf.CodeRequired, "required attribute missing")
	}
	if c, p, ok := d.Mapping("meta"); ok {
		md := schema.NewDecoder(c, p)
		rec.Meta.Cluster, _ = md.ReqStr("cluster")
		d.Merge(md.Finish())
	} else {
		d.Fail("meta", siteconf.CodeRequired, "required attribute missing")
	}
	if iss := d.Finish(); len(iss) > 0 {
		return nil, &siteconf.ValidationError{Source: source, Issues: iss}
	}
	return rec, nil
}

func decodeAccount(parent *schema.Decoder, n *siteconf.Node, path string) Account {
	d := schema.NewDecoder(n, path)
	a := Account{}
	a.Name, _ = d.ReqStr("name")
	a.Email, _ = d.ReqPattern("email", schema.ValidEmail, "an email address")
	a.Kerb, _ = d.ReqPattern("kerb", schema.ValidKerberosID, "a principal name")
	a.IAM, _ = d.ReqUint32("iam")
	a.Mothra, _ = d.ReqUint32("mothra")
	a.Key, _ = d.Str("key")
	parent.Merge(d.Finish())
	return a
}

func decodeSponsor(parent *schema.Decoder, n *siteconf.Node, path string) Sponsor {
	d := schema.NewDecoder(n, path)
	s := Sponsor{}
	s.AccountName, _ = d.ReqStr("accountname")
	s.Name, _ = d.ReqStr("name")
	s.Email, _ = d.ReqPattern("email", schema.ValidEmail, "an email address")
	s.Kerb, _ = d.ReqPattern("kerb", schema.ValidKerberosID, "a principal name")
	s.IAM, _ = d.ReqUint32("iam")
	s.Mothra, _ = d.ReqUint32("mothra")
	parent.Merge(d.Finish())
	return s
}
