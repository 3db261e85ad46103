// Package transcript holds the Transcript record — exons, CDS, UTR, and
// the ORF/intron structure derived from them — plus the finalizer that
// brings a raw record into the validated, self-consistent state every
// metric reader requires. Grounded on the teacher's cache.Transcript
// (internal/cache/transcript.go) for field shape, generalized from a
// fixed GENCODE record to the richer, finalizable model spec.md §3
// describes, and on mikado_lib's transcript.py/finalizing.py for the
// finalization algorithm itself.
package transcript

import (
	"sort"

	"github.com/mikado-go/mikado/internal/errs"
	"github.com/mikado-go/mikado/internal/interval"
)

// Strand is the genomic strand a transcript (or one of its introns) lies on.
type Strand int8

const (
	StrandNone Strand = 0
	StrandPlus Strand = 1
	StrandMinus Strand = -1
)

// SegmentKind tags one entry of an internal ORF's ordered segment list.
type SegmentKind string

const (
	SegExon SegmentKind = "exon"
	SegCDS  SegmentKind = "CDS"
	SegUTR  SegmentKind = "UTR"
)

// ORFSegment is one tagged segment of an internal ORF (spec §3, internal_orfs).
type ORFSegment struct {
	Kind  SegmentKind
	Start int
	End   int
}

func (s ORFSegment) Interval() interval.Interval {
	return interval.Interval{Start: s.Start, End: s.End}
}

// CDSSegment is one coding interval with its reading-frame phase.
type CDSSegment struct {
	interval.Interval
	Phase int // 0, 1, or 2
}

// BlastHit is one external-homology hit attached to a transcript
// (spec §3 "external-homology state"), field names following common
// BLAST+ tabular output columns as named conceptually by the pack's
// blast-invocation package (kortschak-ins/blast), though that package
// itself is an out-of-scope external collaborator and is not imported.
type BlastHit struct {
	EValue          float64
	Bits            float64
	GlobalPositives int
}

// Transcript is the central entity of spec.md §3.
type Transcript struct {
	TID     string
	Parents []string
	Chrom   string
	Strand  Strand

	Start int
	End   int

	Exons       []interval.Interval // sorted ascending, disjoint after finalize
	CombinedCDS []interval.Interval // sorted ascending, disjoint, subset of exon union
	CombinedUTR []interval.Interval // sorted ascending, disjoint

	Introns []interval.Interval // gaps between consecutive exons
	Splices []int               // the two endpoints of each intron

	InternalORFs        [][]ORFSegment
	SelectedORFIndex    int
	HasStartCodon       bool
	HasStopCodon        bool
	Phases              []int // phase per CDS segment of the selected ORF
	VerifiedIntrons     map[interval.Interval]bool

	BlastHits []BlastHit

	// CanonicalIntrons flags introns confirmed as canonical splice
	// sites by sequence-level analysis performed outside this package
	// (spec §1 Non-goals excludes sequence operations from the core).
	CanonicalIntrons map[interval.Interval]bool

	Score float64

	Finalized bool

	snowyBlastCached bool
	snowyBlastScore  float64

	// Set by the enclosing locus during grouping (spec §4.C
	// "neighbor-relative" metrics); never read before that stage runs.
	ExonFraction               float64
	IntronFraction             float64
	CombinedCDSIntronFraction  float64
	SelectedCDSIntronFraction  float64
	RetainedIntrons            []interval.Interval
	RetainedFraction           float64
	ProportionVerifiedIntrons         float64
	ProportionVerifiedIntronsInLocus  float64

	metricsCache map[string]float64
}

// New creates a raw, un-finalized transcript from required identity fields.
func New(tid string, parents []string, chrom string, strand Strand, exons []interval.Interval) *Transcript {
	ex := make([]interval.Interval, len(exons))
	copy(ex, exons)
	return &Transcript{
		TID:     tid,
		Parents: parents,
		Chrom:   chrom,
		Strand:  strand,
		Exons:   ex,
	}
}

// Monoexonic reports whether the transcript has exactly one exon.
func (t *Transcript) Monoexonic() bool {
	return len(t.Exons) == 1
}

// IsCoding reports whether the transcript carries any CDS (spec §3
// invariant 6: feature = "mRNA" iff CDS non-empty).
func (t *Transcript) IsCoding() bool {
	return len(t.CombinedCDS) > 0
}

// Feature returns "mRNA" if coding, else "transcript" (spec §3 invariant 6).
func (t *Transcript) Feature() string {
	if t.IsCoding() {
		return "mRNA"
	}
	return "transcript"
}

// CDNALength is the sum of exon lengths.
func (t *Transcript) CDNALength() int {
	total := 0
	for _, e := range t.Exons {
		total += e.Len()
	}
	return total
}

// CombinedCDSLength sums the combined CDS interval lengths.
func (t *Transcript) CombinedCDSLength() int {
	total := 0
	for _, c := range t.CombinedCDS {
		total += c.Len()
	}
	return total
}

// CombinedUTRLength sums the combined UTR interval lengths.
func (t *Transcript) CombinedUTRLength() int {
	total := 0
	for _, u := range t.CombinedUTR {
		total += u.Len()
	}
	return total
}

// SelectedORF returns the segment list of the selected internal ORF, or
// nil if there are no internal ORFs. A finalized non-coding transcript
// carries one default ORF without CDS segments, so this is non-nil for it.
func (t *Transcript) SelectedORF() []ORFSegment {
	if len(t.InternalORFs) == 0 {
		return nil
	}
	return t.InternalORFs[t.SelectedORFIndex]
}

// SelectedCDS returns the CDS-tagged segments of the selected ORF as
// plain intervals, ordered ascending.
func (t *Transcript) SelectedCDS() []interval.Interval {
	var out []interval.Interval
	for _, seg := range t.SelectedORF() {
		if seg.Kind == SegCDS {
			out = append(out, seg.Interval())
		}
	}
	return out
}

// MustBeFinalized panics if t has not been finalized. Every metric
// definition in spec §4.C requires finalize to have run first; metric
// readers call this as a guard rather than silently reading zero values.
func (t *Transcript) MustBeFinalized() {
	if !t.Finalized {
		panic(errs.New(errs.ModificationError, t.TID, "metric read before finalize"))
	}
}

// requireNotFinalized guards the mutators listed in spec §4.B step 10.
func (t *Transcript) requireNotFinalized(op string) error {
	if t.Finalized {
		return errs.Newf(errs.ModificationError, t.TID, "%s called on finalized transcript; reset Finalized first", op)
	}
	return nil
}

// AddExon appends an exon prior to finalization.
func (t *Transcript) AddExon(iv interval.Interval) error {
	if err := t.requireNotFinalized("AddExon"); err != nil {
		return err
	}
	t.Exons = append(t.Exons, iv)
	return nil
}

// StripCDS removes all CDS/UTR information, turning a coding transcript
// into a non-coding one prior to re-finalization.
func (t *Transcript) StripCDS() error {
	if err := t.requireNotFinalized("StripCDS"); err != nil {
		return err
	}
	t.CombinedCDS = nil
	t.CombinedUTR = nil
	t.InternalORFs = nil
	t.Phases = nil
	t.HasStartCodon = false
	t.HasStopCodon = false
	return nil
}

// RemoveUTRs clears UTR information without touching CDS.
func (t *Transcript) RemoveUTRs() error {
	if err := t.requireNotFinalized("RemoveUTRs"); err != nil {
		return err
	}
	t.CombinedUTR = nil
	return nil
}

// ReverseStrand flips the transcript's strand, used when chimera-split or
// orientation correction requires it. Exons and CDS segments keep their
// ascending genomic order; only the strand changes.
func (t *Transcript) ReverseStrand() error {
	if err := t.requireNotFinalized("ReverseStrand"); err != nil {
		return err
	}
	switch t.Strand {
	case StrandPlus:
		t.Strand = StrandMinus
	case StrandMinus:
		t.Strand = StrandPlus
	}
	return nil
}

// Reset clears the finalized flag so mutators may run again. Introns and
// splices are cleared and recomputed on the next Finalize; internal ORFs
// already present are kept and re-validated there, and the selected ORF
// is chosen again.
func (t *Transcript) Reset() {
	t.Finalized = false
	t.Introns = nil
	t.Splices = nil
	t.metricsCache = nil
}

func sortIntervals(ivs []interval.Interval) {
	sort.Slice(ivs, func(i, j int) bool {
		if ivs[i].Start != ivs[j].Start {
			return ivs[i].Start < ivs[j].Start
		}
		return ivs[i].End < ivs[j].End
	})
}
