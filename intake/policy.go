package intake

import "github.com/hpcops/siteconf/schema"

// Policy is the derivation table for internal-only fields that have no
// intake equivalent. Keeping the whole table in one inspectable value,
// rather than conditionals inside the converter, is what makes conversion
// decisions auditable.
type Policy struct {
	// SponsorGroupSuffix derives a sponsor's access group name from the
	// sponsor's principal name.
	SponsorGroupSuffix string
	// SponsorGroups overrides the derived group name for specific
	// sponsors (principal name to group name).
	SponsorGroups map[string]string
	// AdminSponsors lists sponsors whose requests create sponsor
	// accounts: the new user gets an access group of their own instead of
	// joining the sponsor's.
	AdminSponsors []string
	// MinSponsorGID offsets a new sponsor group's gid from the sponsor's
	// numeric id, keeping sponsor gids in a reserved band.
	MinSponsorGID uint32
	// DefaultGroups are granted to every converted account.
	DefaultGroups []string
	// DefaultShell is assigned since intake records carry no shell.
	DefaultShell string
}

// DefaultPolicy returns the site-standard derivation table.
func DefaultPolicy() Policy {
	return Policy{
		SponsorGroupSuffix: "grp",
		MinSponsorGID:      3_000_000,
		DefaultShell:       schema.DefaultShell,
	}
}

// IsAdminSponsor reports whether the sponsor's requests create sponsor
// accounts.
func (p Policy) IsAdminSponsor(kerb string) bool {
	for _, s := range p.AdminSponsors {
		if s == kerb {
			return true
		}
	}
	return false
}

// SponsorGroup resolves the access group granted by the given sponsor.
func (p Policy) SponsorGroup(kerb string) string {
	if g, ok := p.SponsorGroups[kerb]; ok {
		return g
	}
	return kerb + p.SponsorGroupSuffix
}
