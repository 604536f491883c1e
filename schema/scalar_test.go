package schema

import "testing"

func TestValidKerberosID(t *testing.T) {
	ok := []string{"alice", "a", "_svc", "web-admin", "host$", "a1234567890123456789012345678901"}
	for _, s := range ok {
		if !ValidKerberosID(s) {
			t.Fatalf("%q should be valid", s)
		}
	}
	bad := []string{"", "Alice", "1abc", "with space", "toolongtoolongtoolongtoolongtoolong", "dollar$mid"}
	for _, s := range bad {
		if ValidKerberosID(s) {
			t.Fatalf("%q should be rejected", s)
		}
	}
}

func TestValidQuota(t *testing.T) {
	ok := []string{"100G", "1.5T", "500M", "2P", "+10g"}
	for _, s := range ok {
		if !ValidQuota(s) {
			t.Fatalf("%q should be valid", s)
		}
	}
	bad := []string{"", "100", "G", "100GB", "ten gigs", "1..5T"}
	for _, s := range bad {
		if ValidQuota(s) {
			t.Fatalf("%q should be rejected", s)
		}
	}
}

func TestValidIPv4(t *testing.T) {
	ok := []string{"10.0.0.1", "192.168.1.254"}
	for _, s := range ok {
		if !ValidIPv4(s) {
			t.Fatalf("%q should be valid", s)
		}
	}
	bad := []string{"", "256.0.0.1", "fe80::1", "10.0.0", "example.com"}
	for _, s := range bad {
		if ValidIPv4(s) {
			t.Fatalf("%q should be rejected", s)
		}
	}
}

func TestValidEmail(t *testing.T) {
	if !ValidEmail("alice@example.edu") {
		t.Fatalf("plain address should be valid")
	}
	for _, s := range []string{"", "alice", "alice@", "@example.edu", "a b@example.edu", "alice@host"} {
		if ValidEmail(s) {
			t.Fatalf("%q should be rejected", s)
		}
	}
}
