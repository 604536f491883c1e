package siteconf

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType    = "invalid_type"
	CodeRequired       = "required"
	CodeUnknownKey     = "unknown_key"
	CodeKindMissing    = "kind_missing"
	CodeKindUnknown    = "kind_unknown"
	CodeUnionAmbiguous = "union_ambiguous"
	CodeInvalidEnum    = "invalid_enum"
	CodeInvalidFormat  = "invalid_format"
	CodePattern        = "pattern"
	CodeOutOfRange     = "out_of_range"
	CodeNameMismatch   = "name_mismatch"
	CodeParseError     = "parse_error"
	// Conversion/projection passes (cross-schema semantics)
	CodeMissingSource    = "missing_source"
	CodeMissingAttribute = "missing_attribute"
)

// Issue represents a single diagnostic entry.
type Issue struct {
	Path    string // Dotted field path (for example: users.alice.groups[2]).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, expected values, etc.
	Cause   error  // Optional: underlying error.
}

// Issues is a collection of diagnostics that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at users.alice.uid
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// Rebase prefixes every issue path with the given parent segment, producing
// dotted paths as diagnostics bubble up through nested records.
func (iss Issues) Rebase(parent string) Issues {
	if parent == "" {
		return iss
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		p := it.Path
		switch {
		case p == "":
			p = parent
		case strings.HasPrefix(p, "["):
			p = parent + p
		default:
			p = parent + "." + p
		}
		it.Path = p
		out[i] = it
	}
	return out
}

// ParseError reports a malformed input document. It aborts the pipeline
// before any merge takes place.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports one or more schema violations accumulated over a
// whole document.
type ValidationError struct {
	Source string // file or forest key the document came from
	Issues Issues
}

func (e *ValidationError) Error() string {
	if e.Source == "" {
		return "validation failed: " + e.Issues.Error()
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Source, e.Issues.Error())
}

func (e *ValidationError) Unwrap() error { return e.Issues }

// ConversionError reports an intake record that cannot be converted because
// required internal data has no source field and no derivation policy.
type ConversionError struct {
	Username string // identity of the offending intake record, when known
	Issues   Issues
}

func (e *ConversionError) Error() string {
	if e.Username == "" {
		return "conversion failed: " + e.Issues.Error()
	}
	return fmt.Sprintf("conversion failed for %q: %s", e.Username, e.Issues.Error())
}

func (e *ConversionError) Unwrap() error { return e.Issues }

// ProjectionError reports a host record missing an attribute the template
// contract requires. It is raised before any rendering is attempted.
type ProjectionError struct {
	Host   string
	Issues Issues
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("projection failed for host %q: %s", e.Host, e.Issues.Error())
}

func (e *ProjectionError) Unwrap() error { return e.Issues }
