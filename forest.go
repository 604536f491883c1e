package siteconf

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hpcops/siteconf/internal/atomicfile"
)

// MergeStrategy selects how ParseForest combines the input files.
type MergeStrategy string

const (
	// MergeAll merges every file into a single tree keyed "merged-all".
	MergeAll MergeStrategy = "all"
	// MergePrefix merges files sharing a basename prefix (the portion before
	// the first dot), keyed by that prefix.
	MergePrefix MergeStrategy = "prefix"
	// MergeNone parses each file independently, keyed by its path.
	MergeNone MergeStrategy = "none"
)

// ParseBytes parses one YAML document into a tree. Empty input yields an
// empty mapping.
func ParseBytes(data []byte) (*Node, error) {
	n := &Node{}
	if err := yaml.Unmarshal(data, n); err != nil {
		return nil, err
	}
	if n.Kind() == KindScalar && n.ScalarValue() == nil {
		return Mapping(), nil
	}
	return n, nil
}

// ParseFile parses one YAML file into a tree. A missing file parses as an
// empty mapping: layered site overrides are optional by convention, and an
// absent layer must merge as a no-op. Malformed input returns a ParseError.
func ParseFile(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Mapping(), nil
		}
		return nil, &ParseError{File: path, Err: err}
	}
	n, err := ParseBytes(data)
	if err != nil {
		return nil, &ParseError{File: path, Err: err}
	}
	return n, nil
}

// ParseForest parses the given YAML files and combines them under the
// strategy, returning trees keyed by merge group. Result keys are
// "merged-all" for MergeAll, the basename prefix for MergePrefix, and the
// file path for MergeNone.
func ParseForest(paths []string, strategy MergeStrategy) (map[string]*Node, error) {
	forest := map[string]*Node{}
	switch strategy {
	case MergeAll:
		trees := make([]*Node, 0, len(paths))
		for _, p := range paths {
			t, err := ParseFile(p)
			if err != nil {
				return nil, err
			}
			trees = append(trees, t)
		}
		forest["merged-all"] = Merge(trees...)
	case MergePrefix:
		groups := map[string][]*Node{}
		order := []string{}
		for _, p := range paths {
			prefix, _, _ := strings.Cut(filepath.Base(p), ".")
			t, err := ParseFile(p)
			if err != nil {
				return nil, err
			}
			if _, ok := groups[prefix]; !ok {
				order = append(order, prefix)
			}
			groups[prefix] = append(groups[prefix], t)
		}
		for _, prefix := range order {
			forest[prefix] = Merge(groups[prefix]...)
		}
	default: // MergeNone
		for _, p := range paths {
			t, err := ParseFile(p)
			if err != nil {
				return nil, err
			}
			forest[p] = t
		}
	}
	return forest, nil
}

// EncodeYAML serializes a tree to YAML, preserving mapping key order.
func EncodeYAML(n *Node) ([]byte, error) {
	return yaml.Marshal(n)
}

// WriteFile serializes a tree and writes it atomically, so an interrupted
// run never replaces a prior valid output with a partial one. The path "-"
// writes to stdout instead.
func WriteFile(path string, n *Node) error {
	data, err := EncodeYAML(n)
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return atomicfile.Write(path, data, 0o644)
}
