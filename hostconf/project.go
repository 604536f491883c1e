// Package hostconf assembles the per-host variable set consumed by the
// external installer-manifest renderer. The renderer has no schema
// awareness, so every contract violation must be caught here, before any
// template is touched.
package hostconf

import (
	siteconf "github.com/hpcops/siteconf"
	"github.com/hpcops/siteconf/schema"
)

// Context is the flat variable mapping handed to the renderer for one
// host. Values are scalars or sequences of scalars only; the renderer's
// own layout/snippet composition is out of scope here.
type Context map[string]any

// SiteParams are the site-wide render parameters shared by every host:
// provisioning network identity and the keys installed for root.
type SiteParams struct {
	CobblerIP      string
	PuppetIP       string
	PuppetFQDN     string
	Environment    string // default puppet environment when the host sets none
	AuthorizedKeys []string
}

// Project builds the template context for one host. The disk-layout
// reference is an explicit per-host attribute, never inferred from
// hardware, and both it and the management IP are required by the
// rendering contract.
func Project(h *schema.Host, site SiteParams) (Context, error) {
	var iss siteconf.Issues
	require := func(v, attr string) {
		if v == "" {
			iss = siteconf.AppendIssues(iss, siteconf.Issue{
				Path: attr, Code: siteconf.CodeMissingAttribute,
				Message: "host attribute required by the template contract",
			})
		}
	}
	require(h.Name, "name")
	require(h.IP, "ip")
	require(h.Layout, "layout")
	if len(iss) > 0 {
		return nil, &siteconf.ProjectionError{Host: h.Name, Issues: iss}
	}

	env := h.Environment
	if env == "" {
		env = site.Environment
	}

	ctx := Context{
		"hostname":           h.Name,
		"ip":                 h.IP,
		"domain":             h.Domain,
		"layout":             h.Layout,
		"cobbler_ip":         site.CobblerIP,
		"puppet_ip":          site.PuppetIP,
		"puppet_fqdn":        site.PuppetFQDN,
		"puppet_environment": env,
	}
	if len(site.AuthorizedKeys) > 0 {
		keys := make([]string, len(site.AuthorizedKeys))
		copy(keys, site.AuthorizedKeys)
		ctx["ssh_authorized_keys"] = keys
	}
	return ctx, nil
}

// ProjectSet projects every host record in a validated set, keyed by host
// name. Any single failing host fails the whole batch, keeping manifest
// generation all-or-nothing.
func ProjectSet(set *schema.Set, site SiteParams) (map[string]Context, error) {
	out := map[string]Context{}
	for _, r := range set.ByKind(schema.KindHost) {
		h := r.(*schema.Host)
		ctx, err := Project(h, site)
		if err != nil {
			return nil, err
		}
		out[h.Name] = ctx
	}
	return out, nil
}
