package intake

import (
	"path/filepath"
	"strings"

	"github.com/hpcops/siteconf/internal/atomicfile"
)

// Credential is a public key extracted from an intake record. Once
// extracted it is owned by convention only: the file name carries the
// username, and the internal record holds no copy of the key.
type Credential struct {
	Username string
	Key      string
}

// Filename returns the conventional key file name.
func (c *Credential) Filename() string {
	return c.Username + ".pub"
}

// WriteTo persists the key under dir as <username>.pub, atomically, with a
// single trailing newline. It returns the written path.
func (c *Credential) WriteTo(dir string) (string, error) {
	path := filepath.Join(dir, c.Filename())
	data := strings.TrimRight(c.Key, "\n") + "\n"
	if err := atomicfile.Write(path, []byte(data), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
