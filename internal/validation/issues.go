// Package validation carries the ordered, field-addressed issue lists that
// every rule check in the module returns instead of failing fast.
package validation

import "strings"

// Issue is one problem tied to a dotted field path such as
// "signatories.beneficiary.email". An empty path refers to the whole record.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Issues is an ordered list of problems; an empty list means valid.
type Issues []Issue

// Add appends an issue.
func (is *Issues) Add(path, message string) {
	*is = append(*is, Issue{Path: path, Message: message})
}

// Merge appends other after prefixing every path with prefix.
func (is *Issues) Merge(prefix string, other Issues) {
	*is = append(*is, other.Prefixed(prefix)...)
}

// Prefixed returns a copy with prefix joined in front of every path.
func (is Issues) Prefixed(prefix string) Issues {
	if len(is) == 0 {
		return nil
	}
	out := make(Issues, len(is))
	for i, issue := range is {
		out[i] = Issue{Path: JoinPath(prefix, issue.Path), Message: issue.Message}
	}
	return out
}

// Has reports whether any issue targets path exactly.
func (is Issues) Has(path string) bool {
	for _, issue := range is {
		if issue.Path == path {
			return true
		}
	}
	return false
}

// Messages returns every message recorded against path, in order.
func (is Issues) Messages(path string) []string {
	var out []string
	for _, issue := range is {
		if issue.Path == path {
			out = append(out, issue.Message)
		}
	}
	return out
}

// Err returns nil for an empty list and an *Error otherwise.
func (is Issues) Err() error {
	if len(is) == 0 {
		return nil
	}
	return &Error{Issues: is}
}

// JoinPath joins non-empty dotted path segments.
func JoinPath(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		if segment != "" {
			parts = append(parts, segment)
		}
	}
	return strings.Join(parts, ".")
}

// Error wraps an issue list so it can travel through error returns.
type Error struct {
	Issues Issues
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "validation failed"
	}
	first := e.Issues[0]
	if first.Path == "" {
		return "validation failed: " + first.Message
	}
	return "validation failed: " + first.Path + ": " + first.Message
}
