package hostconf

import (
	"errors"
	"reflect"
	"testing"

	siteconf "github.com/hpcops/siteconf"
	"github.com/hpcops/siteconf/schema"
)

var site = SiteParams{
	CobblerIP:      "10.0.0.2",
	PuppetIP:       "10.0.0.3",
	PuppetFQDN:     "puppet.example.edu",
	Environment:    "production",
	AuthorizedKeys: []string{"ssh-ed25519 AAAA root@admin"},
}

func TestProject_FullContext(t *testing.T) {
	h := &schema.Host{
		Name:        "gpu-01",
		IP:          "10.0.1.11",
		Domain:      "hpc.example.edu",
		Environment: "staging",
		Layout:      "raid-nvme",
	}
	ctx, err := Project(h, site)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	want := Context{
		"hostname":            "gpu-01",
		"ip":                  "10.0.1.11",
		"domain":              "hpc.example.edu",
		"layout":              "raid-nvme",
		"cobbler_ip":          "10.0.0.2",
		"puppet_ip":           "10.0.0.3",
		"puppet_fqdn":         "puppet.example.edu",
		"puppet_environment":  "staging",
		"ssh_authorized_keys": []string{"ssh-ed25519 AAAA root@admin"},
	}
	if !reflect.DeepEqual(ctx, want) {
		t.Fatalf("context:\n got %v\nwant %v", ctx, want)
	}
}

func TestProject_EnvironmentFallsBackToSite(t *testing.T) {
	h := &schema.Host{Name: "node-1", IP: "10.0.1.20", Layout: "standard"}
	ctx, err := Project(h, site)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if ctx["puppet_environment"] != "production" {
		t.Fatalf("environment: %v", ctx["puppet_environment"])
	}
}

func TestProject_MissingAttributesReported(t *testing.T) {
	h := &schema.Host{Name: "bare-host"}
	_, err := Project(h, site)
	var pe *siteconf.ProjectionError
	if !errors.As(err, &pe) {
		t.Fatalf("want ProjectionError, got %v", err)
	}
	if pe.Host != "bare-host" {
		t.Fatalf("host: %q", pe.Host)
	}
	paths := map[string]bool{}
	for _, it := range pe.Issues {
		if it.Code != siteconf.CodeMissingAttribute {
			t.Fatalf("code: %v", it)
		}
		paths[it.Path] = true
	}
	if !paths["ip"] || !paths["layout"] {
		t.Fatalf("both missing attributes must be named: %v", pe.Issues)
	}
}

func TestProjectSet_AllOrNothing(t *testing.T) {
	doc := `
good-host:
  kind: host
  ip: 10.0.1.30
  layout: standard
half-host:
  kind: host
  ip: 10.0.1.31
`
	tree, err := siteconf.ParseBytes([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	set, err := schema.DefaultRegistry().Validate(tree)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if _, err := ProjectSet(set, site); err == nil {
		t.Fatalf("one incomplete host must fail the whole batch")
	}

	// with only complete hosts the batch succeeds
	okDoc := `
good-host:
  kind: host
  ip: 10.0.1.30
  layout: standard
`
	tree, _ = siteconf.ParseBytes([]byte(okDoc))
	set, err = schema.DefaultRegistry().Validate(tree)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	ctxs, err := ProjectSet(set, site)
	if err != nil {
		t.Fatalf("project set: %v", err)
	}
	if len(ctxs) != 1 || ctxs["good-host"]["hostname"] != "good-host" {
		t.Fatalf("contexts: %v", ctxs)
	}
}
