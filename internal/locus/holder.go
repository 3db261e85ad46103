package locus

import (
	"sort"

	"go.uber.org/zap"

	"github.com/mikado-go/mikado/internal/interval"
	"github.com/mikado-go/mikado/internal/scoring"
	"github.com/mikado-go/mikado/internal/transcript"
)

// NewMonosublocusHolder seeds an empty MonosublocusHolder-kind Locus
// awaiting the merged Monosubloci of every Sublocus in a Superlocus.
func NewMonosublocusHolder(chrom string, strand transcript.Strand) *Locus {
	return New(KindMonosublocusHolder, chrom, strand, 0)
}

// IsIntersectingRelaxed implements spec §4.G's laxer is_intersecting:
// disjoint coordinate ranges are never intersecting; otherwise a shared
// splice site (or, when cdsOnly is true, a shared CDS-intron boundary)
// is sufficient; failing that, monoexonic or non-coding transcripts
// fall back to plain exon overlap and coding multiexonic transcripts
// fall back to CDS-segment overlap.
//
// A monoexonic transcript paired with a multiexonic one is never
// merged by plain exon overlap (spec §9 Open Question territory,
// pinned here by S1: a monoexonic and a multiexonic transcript sharing
// no splice site or CDS stay in separate Loci even when their exons
// overlap) — such a pair is judged by CDS overlap alone, and considered
// non-intersecting if either lacks CDS entirely.
func IsIntersectingRelaxed(a, b *transcript.Transcript, cdsOnly bool) bool {
	if a == nil || b == nil || a.TID == b.TID {
		return false
	}

	span := func(t *transcript.Transcript) interval.Interval {
		return interval.Interval{Start: t.Start, End: t.End}
	}
	if !interval.Overlaps(span(a), span(b)) {
		return false
	}

	if cdsOnly {
		if sharedCDSIntronBoundary(a, b) {
			return true
		}
	} else if sharedSplice(a.Splices, b.Splices) {
		return true
	}

	if a.Monoexonic() != b.Monoexonic() {
		if !a.IsCoding() || !b.IsCoding() {
			return false
		}
		return anyCDSOverlap(a, b)
	}

	if a.Monoexonic() || !a.IsCoding() || !b.IsCoding() {
		return anyExonOverlap(a, b)
	}
	return anyCDSOverlap(a, b)
}

func sharedSplice(a, b []int) bool {
	set := make(map[int]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	for _, s := range b {
		if set[s] {
			return true
		}
	}
	return false
}

func cdsIntronBoundaries(t *transcript.Transcript) map[int]bool {
	bounds := make(map[int]bool)
	for _, in := range t.CombinedCDSIntrons() {
		bounds[in.Start] = true
		bounds[in.End] = true
	}
	return bounds
}

func sharedCDSIntronBoundary(a, b *transcript.Transcript) bool {
	boundsA := cdsIntronBoundaries(a)
	for coord := range cdsIntronBoundaries(b) {
		if boundsA[coord] {
			return true
		}
	}
	return false
}

func anyExonOverlap(a, b *transcript.Transcript) bool {
	for _, ea := range a.Exons {
		for _, eb := range b.Exons {
			if interval.Overlaps(ea, eb) {
				return true
			}
		}
	}
	return false
}

func anyCDSOverlap(a, b *transcript.Transcript) bool {
	for _, ca := range a.CombinedCDS {
		for _, cb := range b.CombinedCDS {
			if interval.Overlaps(ca, cb) {
				return true
			}
		}
	}
	return false
}

// DefineLoci implements spec §4.G's define_loci:
// 1. Score every member with the scoring engine.
// 2. Build the graph under the relaxed predicate (cdsOnly selects the
//    CDS-intron-boundary variant).
// 3. While nodes remain, find cliques and communities; for each
//    community pick the best transcript and remove it plus every
//    clique containing it; emit a Locus for it unless purge is set and
//    its score is 0 (in which case it is recorded into excluded
//    instead).
// log may be nil; a nop logger is substituted so call sites never need
// to guard against it.
// 4. Each emitted Locus is marked Splitted when its originating pass
//    had more than one community or clique to choose among.
func (l *Locus) DefineLoci(cfg scoring.Config, cdsOnly bool, purge bool, excluded *ExcludedLocus, log *zap.SugaredLogger) []*Locus {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	ComputeNeighborMetrics(l)

	members := make([]*transcript.Transcript, 0, len(l.Transcripts))
	for _, t := range l.Transcripts {
		members = append(members, t)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].TID < members[j].TID })
	scoring.Score(cfg, members)

	g := l.DefineGraph(func(a, b *transcript.Transcript) bool {
		return IsIntersectingRelaxed(a, b, cdsOnly)
	})

	var out []*Locus
	for len(g.Nodes()) > 0 {
		cliques := g.Cliques()
		communities := g.Communities()
		splitted := len(communities) > 1 || len(cliques) > 1

		for _, community := range communities {
			if len(community) == 0 {
				continue
			}
			candidates := make([]*transcript.Transcript, 0, len(community))
			for _, tid := range community {
				candidates = append(candidates, l.Transcripts[tid])
			}
			best := ChooseBest(candidates)

			toRemove := map[string]bool{best.TID: true}
			for _, clique := range cliques {
				if containsTID(clique, best.TID) {
					for _, tid := range clique {
						toRemove[tid] = true
					}
				}
			}
			for tid := range toRemove {
				g.RemoveNode(tid)
			}

			if purge && best.Score <= 0 {
				log.Warnw("purged at locus stage", "tid", best.TID, "score", best.Score)
				if excluded != nil {
					excluded.Add(best, "requirements expression failed at locus stage")
				}
				continue
			}

			if splitted {
				log.Debugw("community split into multiple loci", "chrom", l.Chrom, "winner", best.TID)
			}
			outLocus := New(KindLocus, l.Chrom, l.Strand, 0)
			_ = outLocus.AddTranscript(best, false)
			outLocus.Splitted = splitted
			out = append(out, outLocus)
		}
	}
	return out
}

func containsTID(set []string, tid string) bool {
	for _, s := range set {
		if s == tid {
			return true
		}
	}
	return false
}
