// Package errs defines the error taxonomy shared by the locus-refinement
// pipeline (spec §7): InvalidTranscript, InvalidCDS, InvalidORF,
// InvalidConfiguration, NotInLocus, and ModificationError. These are
// kinds, not distinct Go types, following the same fmt.Errorf("...: %w")
// wrapping convention the teacher uses throughout internal/cache and
// internal/annotate, so callers inspect with errors.Is/errors.As instead
// of type-switching on unexported structs.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies which taxonomy bucket an Error belongs to.
type Kind string

const (
	// InvalidTranscript marks a structural violation caught at
	// finalization time: overlapping exons, a multi-exon transcript
	// without a strand, UTR present without CDS, or a boundary mismatch.
	InvalidTranscript Kind = "invalid_transcript"
	// InvalidCDS marks a failure to reconcile CDS against exons while
	// inferring UTR.
	InvalidCDS Kind = "invalid_cds"
	// InvalidORF marks an internal ORF whose CDS segments skip an exon.
	InvalidORF Kind = "invalid_orf"
	// InvalidConfiguration marks a configuration validation failure.
	// Fatal: the pipeline must not process any Superlocus.
	InvalidConfiguration Kind = "invalid_configuration"
	// NotInLocus marks a transcript rejected by a locus membership check.
	// Locally recoverable: the caller tries a different bucket.
	NotInLocus Kind = "not_in_locus"
	// ModificationError marks an attempt to mutate a finalized transcript.
	// A programming error, treated as a fatal assertion by callers.
	ModificationError Kind = "modification_error"
)

// Error is the concrete type behind every Kind above.
type Error struct {
	Kind Kind
	TID  string // offending transcript id, if any
	Msg  string
	Err  error // wrapped cause, optional
}

func (e *Error) Error() string {
	if e.TID != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s (tid=%s): %v", e.Kind, e.Msg, e.TID, e.Err)
		}
		return fmt.Sprintf("%s: %s (tid=%s)", e.Kind, e.Msg, e.TID)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind for the given transcript.
func New(kind Kind, tid, msg string) *Error {
	return &Error{Kind: kind, TID: tid, Msg: msg}
}

// Newf is like New but with a format string.
func Newf(kind Kind, tid, format string, args ...any) *Error {
	return &Error{Kind: kind, TID: tid, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind/tid context to an underlying error.
func Wrap(kind Kind, tid string, err error) *Error {
	return &Error{Kind: kind, TID: tid, Msg: "wrapped error", Err: err}
}

// Is reports whether err is an *Error of the given kind, unwrapping as
// needed.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
