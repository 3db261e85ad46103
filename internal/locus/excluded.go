package locus

import "github.com/mikado-go/mikado/internal/transcript"

// ExcludedLocus is spec §9 Open Question 4's resolution: in the
// original source excluded_locus is written but never read downstream,
// so it is kept here strictly as a diagnostic collector for transcripts
// the pipeline drops — nothing in this package or its callers reads it
// back into scoring or output.
type ExcludedLocus struct {
	Chrom   string
	Entries []ExcludedEntry
}

// ExcludedEntry records one dropped transcript and why it was dropped.
type ExcludedEntry struct {
	Transcript *transcript.Transcript
	Reason     string
}

// NewExcludedLocus creates an empty collector for chrom.
func NewExcludedLocus(chrom string) *ExcludedLocus {
	return &ExcludedLocus{Chrom: chrom}
}

// Add records t as dropped for reason.
func (e *ExcludedLocus) Add(t *transcript.Transcript, reason string) {
	e.Entries = append(e.Entries, ExcludedEntry{Transcript: t, Reason: reason})
}
