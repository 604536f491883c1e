package intake

import (
	"os"
	"path/filepath"
	"strings"

	gojson "github.com/goccy/go-json"

	siteconf "github.com/hpcops/siteconf"
)

// Load reads and validates one intake export. The onboarding API emits
// JSON; operators also hand-write YAML fixtures, so the format is chosen by
// extension with YAML as the fallback.
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &siteconf.ParseError{File: path, Err: err}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return DecodeJSON(path, data)
	default:
		return DecodeYAML(path, data)
	}
}

// DecodeYAML parses a YAML intake export and validates it.
func DecodeYAML(source string, data []byte) (*Record, error) {
	tree, err := siteconf.ParseBytes(data)
	if err != nil {
		return nil, &siteconf.ParseError{File: source, Err: err}
	}
	return ValidateSource(source, tree)
}

// DecodeJSON parses a JSON intake export and validates it.
func DecodeJSON(source string, data []byte) (*Record, error) {
	var v any
	if err := gojson.Unmarshal(data, &v); err != nil {
		return nil, &siteconf.ParseError{File: source, Err: err}
	}
	return ValidateSource(source, siteconf.FromAny(v))
}
