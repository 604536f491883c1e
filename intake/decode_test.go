package intake

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	siteconf "github.com/hpcops/siteconf"
)

const intakeYAML = `
account:
  name: Alice Liddell
  email: alice@example.edu
  kerb: alice
  iam: 7001
  mothra: 104523
  key: ssh-ed25519 AAAAC3Nz alice@laptop
sponsor:
  accountname: Bob PI
  name: Bob PI
  email: bob@example.edu
  kerb: bobpi
  iam: 5001
  mothra: 100001
meta:
  cluster: hpc1
`

const intakeJSON = `{
  "account": {
    "name": "Alice Liddell",
    "email": "alice@example.edu",
    "kerb": "alice",
    "iam": 7001,
    "mothra": 104523
  },
  "sponsor": {
    "accountname": "Bob PI",
    "name": "Bob PI",
    "email": "bob@example.edu",
    "kerb": "bobpi",
    "iam": 5001,
    "mothra": 100001
  },
  "meta": {"cluster": "hpc1"}
}`

func TestDecodeYAML(t *testing.T) {
	rec, err := DecodeYAML("req.yaml", []byte(intakeYAML))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Account.Kerb != "alice" || rec.Account.Mothra != 104523 {
		t.Fatalf("account: %+v", rec.Account)
	}
	if rec.Sponsor.Kerb != "bobpi" || rec.Meta.Cluster != "hpc1" {
		t.Fatalf("sponsor/meta: %+v %+v", rec.Sponsor, rec.Meta)
	}
	if rec.Account.Key == "" {
		t.Fatalf("key lost in decode")
	}
}

func TestDecodeJSON(t *testing.T) {
	rec, err := DecodeJSON("req.json", []byte(intakeJSON))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Account.Kerb != "alice" || rec.Account.IAM != 7001 {
		t.Fatalf("account: %+v", rec.Account)
	}
	if rec.Account.Key != "" {
		t.Fatalf("optional key must stay empty when absent")
	}
}

func TestLoad_PicksFormatByExtension(t *testing.T) {
	dir := t.TempDir()
	ypath := filepath.Join(dir, "req.yaml")
	jpath := filepath.Join(dir, "req.json")
	if err := os.WriteFile(ypath, []byte(intakeYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(jpath, []byte(intakeJSON), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, p := range []string{ypath, jpath} {
		rec, err := Load(p)
		if err != nil {
			t.Fatalf("load %s: %v", p, err)
		}
		if rec.Account.Kerb != "alice" {
			t.Fatalf("load %s: %+v", p, rec.Account)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	var pe *siteconf.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("want ParseError, got %v", err)
	}
}

func TestValidate_AccumulatesIssues(t *testing.T) {
	doc := `
account:
  name: Alice
  kerb: Not_Valid_Kerb
  iam: 7001
  mothra: 104523
  surprise: 1
sponsor:
  accountname: Bob
  name: Bob
  email: bob@example.edu
  kerb: bobpi
  iam: 5001
  mothra: 100001
`
	_, err := DecodeYAML("req.yaml", []byte(doc))
	var ve *siteconf.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	want := map[string]string{
		"account.email":    siteconf.CodeRequired,
		"account.kerb":     siteconf.CodePattern,
		"account.surprise": siteconf.CodeUnknownKey,
		"meta":             siteconf.CodeRequired,
	}
	for path, code := range want {
		found := false
		for _, it := range ve.Issues {
			if it.Path == path && it.Code == code {
				found = true
			}
		}
		if !found {
			t.Fatalf("missing %s at %s in %v", code, path, ve.Issues)
		}
	}
}
