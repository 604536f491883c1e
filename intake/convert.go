package intake

import (
	"math"
	"sort"

	siteconf "github.com/hpcops/siteconf"
	"github.com/hpcops/siteconf/schema"
)

// Result is the internal-schema output of one conversion. Group is only
// set when policy made the new account a sponsor, in which case it is the
// account's own freshly-derived access group. Credential is only set when
// the intake record carried a public key.
type Result struct {
	User       *schema.User
	Group      *schema.Group
	Credential *Credential
}

// Convert maps a validated intake record into the internal provisioning
// schema. Identity fields (username, numeric ids) are never fabricated:
// when the intake record lacks one and no policy derives it, conversion
// fails with a ConversionError naming the missing field. Converting the
// same record twice produces structurally identical results.
func Convert(rec *Record, pol Policy) (*Result, error) {
	var iss siteconf.Issues
	requireStr := func(v, field string) {
		if v == "" {
			iss = siteconf.AppendIssues(iss, siteconf.Issue{
				Path: field, Code: siteconf.CodeMissingSource,
				Message: "internal schema requires this field and no derivation policy covers it",
			})
		}
	}

	requireStr(rec.Account.Kerb, "account.kerb")
	requireStr(rec.Account.Name, "account.name")
	requireStr(rec.Account.Email, "account.email")
	if rec.Account.Mothra == 0 {
		iss = siteconf.AppendIssues(iss, siteconf.Issue{
			Path: "account.mothra", Code: siteconf.CodeMissingSource,
			Message: "internal uid/gid derive from the mothra id",
		})
	}

	sponsorAccount := pol.IsAdminSponsor(rec.Sponsor.Kerb)
	if !sponsorAccount {
		requireStr(rec.Sponsor.Kerb, "sponsor.kerb")
	}
	if len(iss) > 0 {
		return nil, &siteconf.ConversionError{Username: rec.Account.Kerb, Issues: iss}
	}

	username := rec.Account.Kerb

	var group *schema.Group
	var accessGroup string
	if sponsorAccount {
		if rec.Account.Mothra > math.MaxUint32-pol.MinSponsorGID {
			return nil, &siteconf.ConversionError{Username: username, Issues: siteconf.Issues{{
				Path: "account.mothra", Code: siteconf.CodeOutOfRange,
				Message: "derived sponsor gid exceeds the 32-bit id space",
			}}}
		}
		// The request came through an admin sponsor: the new account is
		// itself a sponsor and gets an access group of its own.
		accessGroup = pol.SponsorGroup(username)
		group = &schema.Group{
			Name: accessGroup,
			GID:  pol.MinSponsorGID + rec.Account.Mothra,
		}
	} else {
		accessGroup = pol.SponsorGroup(rec.Sponsor.Kerb)
	}

	groups := append([]string{accessGroup}, pol.DefaultGroups...)
	sort.Strings(groups)
	groups = slicesCompact(groups)

	user := &schema.User{
		Name:     username,
		Fullname: rec.Account.Name,
		Email:    rec.Account.Email,
		UID:      rec.Account.Mothra,
		GID:      rec.Account.Mothra,
		Groups:   groups,
		Shell:    pol.DefaultShell,
	}

	var cred *Credential
	if rec.Account.Key != "" {
		cred = &Credential{Username: username, Key: rec.Account.Key}
	}

	return &Result{User: user, Group: group, Credential: cred}, nil
}

func slicesCompact(vals []string) []string {
	out := vals[:0]
	for i, v := range vals {
		if i > 0 && v == vals[i-1] {
			continue
		}
		out = append(out, v)
	}
	return out
}
