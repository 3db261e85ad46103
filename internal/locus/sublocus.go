package locus

import (
	"sort"

	"go.uber.org/zap"

	"github.com/mikado-go/mikado/internal/interval"
	"github.com/mikado-go/mikado/internal/scoring"
	"github.com/mikado-go/mikado/internal/transcript"
)

// Monosublocus is a single transcript selected as the representative of
// a Sublocus (spec glossary).
type Monosublocus struct {
	Chrom      string
	Strand     transcript.Strand
	Transcript *transcript.Transcript
}

// NewSublocus seeds a Sublocus-kind Locus, optionally from a single
// seed transcript (spec §4.F: "constructed from either a coordinate
// span or a single seed transcript"). Pass a nil seed and call
// AddTranscript directly to build from a bare coordinate span instead.
func NewSublocus(chrom string, strand transcript.Strand, seed *transcript.Transcript) *Locus {
	l := New(KindSublocus, chrom, strand, 0)
	if seed != nil {
		_ = l.AddTranscript(seed, false)
	}
	return l
}

// IsIntersectingStrict implements spec §4.F's is_intersecting: true iff
// any exon pair between a and b overlaps by zero coordinates or more;
// always false for a transcript compared against itself.
func IsIntersectingStrict(a, b *transcript.Transcript) bool {
	if a == nil || b == nil || a.TID == b.TID {
		return false
	}
	for _, ea := range a.Exons {
		for _, eb := range b.Exons {
			if interval.Overlaps(ea, eb) {
				return true
			}
		}
	}
	return false
}

// DefineMonosubloci implements spec §4.F's define_monosubloci:
// 1. Compute every member's neighbor-relative metrics.
// 2. Run the scoring engine over the whole sublocus.
// 3. Greedily pick the best remaining transcript, emit it as a
//    Monosublocus, and remove it plus everything it strictly
//    intersects; repeat until no members remain.
// 4. When purge is true, a winner scoring 0 is removed but not
//    emitted — it is returned separately so the caller can record it
//    as excluded.
//
// log may be nil; a nop logger is substituted so call sites never need
// to guard against it.
func (l *Locus) DefineMonosubloci(cfg scoring.Config, purge bool, log *zap.SugaredLogger) ([]*Monosublocus, []*transcript.Transcript) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	ComputeNeighborMetrics(l)

	remaining := make([]*transcript.Transcript, 0, len(l.Transcripts))
	for _, t := range l.Transcripts {
		remaining = append(remaining, t)
	}
	sort.Slice(remaining, func(i, j int) bool { return remaining[i].TID < remaining[j].TID })

	scoring.Score(cfg, remaining)

	var monosubloci []*Monosublocus
	var purged []*transcript.Transcript

	for len(remaining) > 0 {
		best := ChooseBest(remaining)

		var next []*transcript.Transcript
		for _, t := range remaining {
			if t.TID == best.TID || IsIntersectingStrict(best, t) {
				continue
			}
			next = append(next, t)
		}
		remaining = next

		if purge && best.Score <= 0 {
			log.Warnw("purged at sublocus stage", "tid", best.TID, "score", best.Score)
			purged = append(purged, best)
			continue
		}
		log.Debugw("monosublocus winner", "tid", best.TID, "chrom", l.Chrom)
		monosubloci = append(monosubloci, &Monosublocus{Chrom: l.Chrom, Strand: l.Strand, Transcript: best})
	}

	return monosubloci, purged
}
