package dsstore

import "fmt"

// DiagnosticKind classifies a non-fatal anomaly surfaced while reading a
// container (§5, §7): the file is still accepted, but something about it
// deviates from what a writer produced by this package would emit.
type DiagnosticKind int

const (
	// DiagUnknownTOCName is reported for a table-of-contents entry whose
	// name is not "DSDB". The entry is retained, not rejected.
	DiagUnknownTOCName DiagnosticKind = iota
	// DiagReservedNonZero is reported when the allocator's reserved word
	// after blockCount is not zero. The Iloc trailing padding is not
	// checked.
	DiagReservedNonZero
	// DiagOrderViolation is reported when a record sorts before the record
	// read just before it in traversal order (leaf and internal-node
	// records alike); records that compare equal are not reported.
	// Tolerated to accept files from buggy writers.
	DiagOrderViolation
)

func (k DiagnosticKind) String() string {
	switch k {
	case DiagUnknownTOCName:
		return "unknown-toc-name"
	case DiagReservedNonZero:
		return "reserved-non-zero"
	case DiagOrderViolation:
		return "order-violation"
	default:
		return fmt.Sprintf("DiagnosticKind(%d)", int(k))
	}
}

// Diagnostic is one non-fatal anomaly observed while reading a container.
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// diagHandler is threaded explicitly through the read path (C4/C5), the way
// the teacher threads *Superblock through tableReader/dirReader, rather than
// installed as a package-wide global: see §4.11/§5 of SPEC_FULL.md.
type diagHandler struct {
	cb func(Diagnostic)
}

// report invokes the handler if one is installed; a nil handler silently
// drops the diagnostic, matching §5's "absence of a handler silently drops
// diagnostics".
func (h *diagHandler) report(kind DiagnosticKind, format string, args ...interface{}) {
	if h == nil || h.cb == nil {
		return
	}
	h.cb(Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...)})
}
