package intake

import (
	"errors"
	"math"
	"reflect"
	"testing"

	siteconf "github.com/hpcops/siteconf"
)

func sampleRecord() *Record {
	return &Record{
		Account: Account{
			Name:   "Alice Liddell",
			Email:  "alice@example.edu",
			Kerb:   "alice",
			IAM:    7001,
			Mothra: 104523,
			Key:    "ssh-ed25519 AAAAC3Nz alice@laptop",
		},
		Sponsor: Sponsor{
			AccountName: "Bob PI",
			Name:        "Bob PI",
			Email:       "bob@example.edu",
			Kerb:        "bobpi",
			IAM:         5001,
			Mothra:      100001,
		},
		Meta: Meta{Cluster: "hpc1"},
	}
}

func TestConvert_RegularAccount(t *testing.T) {
	pol := DefaultPolicy()
	pol.DefaultGroups = []string{"cluster-users"}
	res, err := Convert(sampleRecord(), pol)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	u := res.User
	if u.Name != "alice" || u.Fullname != "Alice Liddell" || u.Email != "alice@example.edu" {
		t.Fatalf("identity: %+v", u)
	}
	if u.UID != 104523 || u.GID != 104523 {
		t.Fatalf("uid/gid derive from the numeric id: %+v", u)
	}
	if !reflect.DeepEqual(u.Groups, []string{"bobpigrp", "cluster-users"}) {
		t.Fatalf("groups: %v", u.Groups)
	}
	if u.Shell != pol.DefaultShell {
		t.Fatalf("shell: %q", u.Shell)
	}
	if res.Group != nil {
		t.Fatalf("regular accounts must not create groups: %+v", res.Group)
	}
	if res.Credential == nil || res.Credential.Username != "alice" {
		t.Fatalf("credential: %+v", res.Credential)
	}
}

func TestConvert_Deterministic(t *testing.T) {
	pol := DefaultPolicy()
	pol.DefaultGroups = []string{"cluster-users"}
	a, err := Convert(sampleRecord(), pol)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	b, err := Convert(sampleRecord(), pol)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("conversion not deterministic:\n a=%+v\n b=%+v", a, b)
	}
}

func TestConvert_AdminSponsorCreatesGroup(t *testing.T) {
	pol := DefaultPolicy()
	pol.AdminSponsors = []string{"bobpi"}
	res, err := Convert(sampleRecord(), pol)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if res.Group == nil {
		t.Fatalf("admin-sponsored account must create its own group")
	}
	if res.Group.Name != "alicegrp" {
		t.Fatalf("group name: %q", res.Group.Name)
	}
	if res.Group.GID != pol.MinSponsorGID+104523 {
		t.Fatalf("gid: %d", res.Group.GID)
	}
	found := false
	for _, g := range res.User.Groups {
		if g == "alicegrp" {
			found = true
		}
	}
	if !found {
		t.Fatalf("user must join their own group: %v", res.User.Groups)
	}
}

func TestConvert_SponsorGIDOverflowRejected(t *testing.T) {
	pol := DefaultPolicy()
	pol.AdminSponsors = []string{"bobpi"}

	rec := sampleRecord()
	rec.Account.Mothra = math.MaxUint32 - pol.MinSponsorGID + 1
	_, err := Convert(rec, pol)
	var ce *siteconf.ConversionError
	if !errors.As(err, &ce) {
		t.Fatalf("gid wraparound must fail conversion, got %v", err)
	}
	if len(ce.Issues) != 1 || ce.Issues[0].Path != "account.mothra" || ce.Issues[0].Code != siteconf.CodeOutOfRange {
		t.Fatalf("issues: %v", ce.Issues)
	}

	// the largest representable id still converts
	rec = sampleRecord()
	rec.Account.Mothra = math.MaxUint32 - pol.MinSponsorGID
	res, err := Convert(rec, pol)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if res.Group == nil || res.Group.GID != math.MaxUint32 {
		t.Fatalf("group: %+v", res.Group)
	}
}

func TestConvert_SponsorGroupOverride(t *testing.T) {
	pol := DefaultPolicy()
	pol.SponsorGroups = map[string]string{"bobpi": "boblab"}
	res, err := Convert(sampleRecord(), pol)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !reflect.DeepEqual(res.User.Groups, []string{"boblab"}) {
		t.Fatalf("groups: %v", res.User.Groups)
	}
}

func TestConvert_MissingIdentityFails(t *testing.T) {
	rec := sampleRecord()
	rec.Account.Kerb = ""
	rec.Account.Mothra = 0
	_, err := Convert(rec, DefaultPolicy())
	var ce *siteconf.ConversionError
	if !errors.As(err, &ce) {
		t.Fatalf("want ConversionError, got %v", err)
	}
	paths := map[string]bool{}
	for _, it := range ce.Issues {
		if it.Code != siteconf.CodeMissingSource {
			t.Fatalf("code: %v", it)
		}
		paths[it.Path] = true
	}
	if !paths["account.kerb"] || !paths["account.mothra"] {
		t.Fatalf("issues must name every missing field: %v", ce.Issues)
	}
}

func TestConvert_NoKeyNoCredential(t *testing.T) {
	rec := sampleRecord()
	rec.Account.Key = ""
	res, err := Convert(rec, DefaultPolicy())
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if res.Credential != nil {
		t.Fatalf("no key submitted, no credential expected")
	}
}

func TestConvert_GroupListDeduped(t *testing.T) {
	pol := DefaultPolicy()
	pol.DefaultGroups = []string{"bobpigrp"}
	res, err := Convert(sampleRecord(), pol)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !reflect.DeepEqual(res.User.Groups, []string{"bobpigrp"}) {
		t.Fatalf("groups: %v", res.User.Groups)
	}
}
