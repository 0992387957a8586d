package shelang

import (
	"errors"
	"fmt"
	"strings"
)

// IssueKind classifies a problem found while reading a document.
type IssueKind int

const (
	// FormatError: a field is missing or malformed and was defaulted, or a
	// piece of text could not be parsed and was skipped.
	FormatError IssueKind = iota
	// StructuralError: a wire names a node or port that does not exist
	// and was skipped.
	StructuralError
	// EmptyDocument: no FRAME block was found.
	EmptyDocument
)

func (k IssueKind) String() string {
	switch k {
	case FormatError:
		return "format"
	case StructuralError:
		return "structural"
	case EmptyDocument:
		return "empty document"
	}
	return fmt.Sprintf("issue(%d)", int(k))
}

// Issue is one problem with the line it was found on (0 if unknown).
type Issue struct {
	Kind    IssueKind
	Line    int
	Message string
}

func (i Issue) String() string {
	if i.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", i.Line, i.Kind, i.Message)
	}
	return fmt.Sprintf("%s: %s", i.Kind, i.Message)
}

// ErrEmptyDocument and ErrBrokenWires are returned by Report.Err.
var (
	ErrEmptyDocument = errors.New("shelang: no frames found, the file may not be a scheme")
	ErrBrokenWires   = errors.New("shelang: some wires reference missing boxes or ports")
)

// Report summarizes an import. Imports never fail outright; everything
// that went wrong is listed here.
type Report struct {
	Frames   int
	Controls int
	Nodes    int
	Wires    int
	Issues   []Issue
}

func (r *Report) add(kind IssueKind, line int, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)})
}

// Count returns the number of issues of one kind.
func (r *Report) Count(kind IssueKind) int {
	n := 0
	for _, i := range r.Issues {
		if i.Kind == kind {
			n++
		}
	}
	return n
}

// Has reports whether any issue of the kind was recorded.
func (r *Report) Has(kind IssueKind) bool { return r.Count(kind) > 0 }

// Err returns ErrEmptyDocument or ErrBrokenWires for reports a user should
// be warned about, and nil otherwise. Format issues alone are not errors.
func (r *Report) Err() error {
	switch {
	case r.Has(EmptyDocument):
		return ErrEmptyDocument
	case r.Has(StructuralError):
		return fmt.Errorf("%w (%d skipped)", ErrBrokenWires, r.Count(StructuralError))
	}
	return nil
}

// Summary is a one-line description for a status bar.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d boxes, %d wires", r.Nodes, r.Wires)
	if skipped := r.Controls - r.Wires; skipped > 0 {
		fmt.Fprintf(&b, ", %d wires skipped", skipped)
	}
	if n := r.Count(FormatError); n > 0 {
		fmt.Fprintf(&b, ", %d format issues", n)
	}
	if r.Has(EmptyDocument) {
		b.WriteString(", no frames found")
	}
	return b.String()
}
