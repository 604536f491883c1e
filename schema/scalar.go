package schema

import (
	"math"
	"net"
	"regexp"
	"strings"
)

const uintMax int64 = math.MaxUint32

// DefaultShell is assigned when a record carries no shell of its own.
const DefaultShell = "/usr/bin/bash"

var enabledShells = []string{
	"/bin/sh",
	"/bin/bash",
	"/bin/zsh",
	"/usr/bin/sh",
	"/usr/bin/zsh",
	"/usr/bin/bash",
}

var disabledShells = []string{
	"/usr/sbin/nologin-account-disabled",
	"/bin/false",
	"/usr/sbin/nologin",
}

// kerberosRe matches POSIX-style principal names as the directory service
// accepts them.
var kerberosRe = regexp.MustCompile(`^[a-z_]([a-z0-9_-]{0,31}|[a-z0-9_-]{0,30}\$)$`)

// quotaRe matches storage quota strings like "100G" or "1.5T".
var quotaRe = regexp.MustCompile(`^[+-]?([0-9]*[.])?[0-9]+[MmGgTtPp]$`)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func ValidKerberosID(s string) bool { return kerberosRe.MatchString(s) }

func ValidQuota(s string) bool { return quotaRe.MatchString(s) }

func ValidEmail(s string) bool { return emailRe.MatchString(s) }

func ValidIPv4(s string) bool {
	ip := net.ParseIP(s)
	return ip != nil && ip.To4() != nil && strings.Contains(s, ".")
}
