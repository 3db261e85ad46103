// Package locus implements spec §4.E-H's locus hierarchy. Per spec §9's
// redesign note, the source's Abstractlocus ← Sublocus ←
// MonosublocusHolder inheritance chain is replaced with a single Locus
// struct tagged by Kind; sublocus.go, holder.go and superlocus.go
// supply kind-specific intersection predicates and drive the shared
// operations defined here. Grounded on the teacher's cache package for
// the general shape of a coordinate-indexed container, and on
// mikado_lib's loci_objects/abstractlocus.py for the operations
// themselves.
package locus

import (
	"sort"

	"github.com/mikado-go/mikado/internal/errs"
	"github.com/mikado-go/mikado/internal/graph"
	"github.com/mikado-go/mikado/internal/interval"
	"github.com/mikado-go/mikado/internal/transcript"
)

// Kind tags which stage of the pipeline a Locus value represents.
type Kind string

const (
	KindSublocus           Kind = "sublocus"
	KindMonosublocusHolder Kind = "monosublocus_holder"
	KindLocus              Kind = "locus"
	KindSuperlocus         Kind = "superlocus"
)

// Locus is the composition-based stand-in for every level of the
// source's locus hierarchy. Shared behavior lives in the functions
// below; sublocus.go and holder.go supply the kind-specific
// intersection predicates spec §4.F/§4.G define.
type Locus struct {
	Kind   Kind
	Chrom  string
	Strand transcript.Strand
	Start  int
	End    int
	Flank  int

	// Splitted records whether this Locus (only meaningful for
	// KindLocus values) was carved out of a MonosublocusHolder whose
	// graph had more than one community or clique (spec §4.G step 4,
	// "mark splitted").
	Splitted bool

	Transcripts map[string]*transcript.Transcript

	ExonUnion           []interval.Interval
	IntronUnion         []interval.Interval
	VerifiedIntronUnion []interval.Interval

	monoexonic *bool
}

// New creates an empty Locus of the given kind, awaiting its first
// AddTranscript call to seed chromosome/strand/extent.
func New(kind Kind, chrom string, strand transcript.Strand, flank int) *Locus {
	return &Locus{
		Kind:        kind,
		Chrom:       chrom,
		Strand:      strand,
		Flank:       flank,
		Transcripts: make(map[string]*transcript.Transcript),
	}
}

// AddTranscript implements spec §4.E's add_transcript. When
// checkInLocus is true and the locus already holds a member, t is
// rejected with errs.NotInLocus for a chromosome mismatch, an
// incompatible strand, or coordinates disjoint from the locus's
// current extent widened by Flank on both sides. At Sublocus level,
// t's monoexonic flag must also match every existing member's.
func (l *Locus) AddTranscript(t *transcript.Transcript, checkInLocus bool) error {
	if checkInLocus && len(l.Transcripts) > 0 {
		if t.Chrom != l.Chrom {
			return errs.Newf(errs.NotInLocus, t.TID, "chromosome %q does not match locus chromosome %q", t.Chrom, l.Chrom)
		}
		if !strandsCompatible(l.Strand, t.Strand) {
			return errs.Newf(errs.NotInLocus, t.TID, "strand incompatible with locus strand")
		}
		widened := interval.Interval{Start: l.Start - l.Flank, End: l.End + l.Flank}
		if !interval.Overlaps(widened, interval.Interval{Start: t.Start, End: t.End}) {
			return errs.Newf(errs.NotInLocus, t.TID, "coordinates disjoint from locus extent")
		}
	}

	if l.Kind == KindSublocus && l.monoexonic != nil && *l.monoexonic != t.Monoexonic() {
		return errs.Newf(errs.NotInLocus, t.TID, "monoexonic flag does not match sublocus")
	}

	if len(l.Transcripts) == 0 {
		l.Chrom = t.Chrom
		if l.Strand == transcript.StrandNone {
			l.Strand = t.Strand
		}
		l.Start, l.End = t.Start, t.End
	} else {
		if t.Start < l.Start {
			l.Start = t.Start
		}
		if t.End > l.End {
			l.End = t.End
		}
	}

	mono := t.Monoexonic()
	l.monoexonic = &mono

	l.Transcripts[t.TID] = t
	l.ExonUnion = interval.Union(append(append([]interval.Interval(nil), l.ExonUnion...), t.Exons...))
	l.IntronUnion = interval.Union(append(append([]interval.Interval(nil), l.IntronUnion...), t.Introns...))

	var verified []interval.Interval
	for iv, ok := range t.VerifiedIntrons {
		if ok {
			verified = append(verified, iv)
		}
	}
	l.VerifiedIntronUnion = interval.Union(append(append([]interval.Interval(nil), l.VerifiedIntronUnion...), verified...))

	return nil
}

func strandsCompatible(a, b transcript.Strand) bool {
	if a == transcript.StrandNone || b == transcript.StrandNone {
		return true
	}
	return a == b
}

// ChooseBest implements spec §4.E's choose_best: argmax by Score, with
// a deterministic tie-break (spec §9 Open Question 1): highest
// cdna_length, then highest combined_cds_length, then lexicographically
// smallest tid.
func ChooseBest(candidates []*transcript.Transcript) *transcript.Transcript {
	if len(candidates) == 0 {
		return nil
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if better(c, best) {
			best = c
		}
	}
	return best
}

func better(a, b *transcript.Transcript) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if al, bl := a.CDNALength(), b.CDNALength(); al != bl {
		return al > bl
	}
	if ac, bc := a.CombinedCDSLength(), b.CombinedCDSLength(); ac != bc {
		return ac > bc
	}
	return a.TID < b.TID
}

// Predicate decides whether two transcripts should be joined by an edge
// for the purposes of community/clique discovery (spec §4.E's
// define_graph predicate argument).
type Predicate func(a, b *transcript.Transcript) bool

// DefineGraph builds the undirected graph over l's current members
// using predicate, delegating to the graph package for community and
// clique discovery.
func (l *Locus) DefineGraph(predicate Predicate) *graph.Graph {
	tids := make([]string, 0, len(l.Transcripts))
	for tid := range l.Transcripts {
		tids = append(tids, tid)
	}
	sort.Strings(tids)
	return graph.Define(tids, func(a, b string) bool {
		return predicate(l.Transcripts[a], l.Transcripts[b])
	})
}

// ComputeNeighborMetrics fills in every "neighbor-relative" field spec
// §4.C lists from l's current extent: exon/intron fractions relative
// to the locus union, retained introns, and the locus-wide verified
// intron proportion. Grounded on mikado_lib's
// Abstractlocus.find_retained_introns, with spec §9 Open Question 2's
// retained-intron semantics pinned to the Sublocus definition: an
// intron counts as retained when some other member's intron falls
// wholly inside one of t's exons, and that exon carries no CDS.
func ComputeNeighborMetrics(l *Locus) {
	exonTotal := sumLen(l.ExonUnion)
	intronTotal := sumLen(l.IntronUnion)
	verifiedTotal := len(l.VerifiedIntronUnion)

	for _, t := range l.Transcripts {
		if exonTotal > 0 {
			t.ExonFraction = float64(t.CDNALength()) / float64(exonTotal)
		}
		if intronTotal > 0 {
			t.IntronFraction = float64(sumLen(t.Introns)) / float64(intronTotal)
			t.CombinedCDSIntronFraction = float64(sumLen(t.CombinedCDSIntrons())) / float64(intronTotal)
			t.SelectedCDSIntronFraction = float64(sumLen(t.SelectedCDSIntrons())) / float64(intronTotal)
		}

		var retained []interval.Interval
		for _, exon := range t.Exons {
			if overlapsCDS(t, exon) {
				continue
			}
		members:
			for _, other := range l.Transcripts {
				if other.TID == t.TID {
					continue
				}
				for _, intron := range other.Introns {
					if interval.Contains(exon, intron) {
						retained = append(retained, exon)
						break members
					}
				}
			}
		}
		t.RetainedIntrons = retained
		if cdna := t.CDNALength(); cdna > 0 {
			t.RetainedFraction = float64(sumLen(retained)) / float64(cdna)
		}

		t.ProportionVerifiedIntrons = t.ProportionVerifiedIntronsSelf()
		if verifiedTotal > 0 {
			inLocus := 0
			for iv, ok := range t.VerifiedIntrons {
				if ok && containsIv(l.VerifiedIntronUnion, iv) {
					inLocus++
				}
			}
			t.ProportionVerifiedIntronsInLocus = float64(inLocus) / float64(verifiedTotal)
		}
	}
}

func overlapsCDS(t *transcript.Transcript, exon interval.Interval) bool {
	for _, cds := range t.CombinedCDS {
		if interval.Overlaps(exon, cds) {
			return true
		}
	}
	return false
}

func containsIv(set []interval.Interval, iv interval.Interval) bool {
	for _, s := range set {
		if s == iv {
			return true
		}
	}
	return false
}

func sumLen(ivs []interval.Interval) int {
	total := 0
	for _, iv := range ivs {
		total += iv.Len()
	}
	return total
}
