package locus

import (
	"sort"

	"go.uber.org/zap"

	"github.com/mikado-go/mikado/internal/graph"
	"github.com/mikado-go/mikado/internal/scoring"
	"github.com/mikado-go/mikado/internal/transcript"
)

// Superlocus groups transcripts that share chromosome and strand and
// whose coordinates fall within Flank bp of some existing member's
// extent (spec §4.H), then drives them through Sublocus →
// MonosublocusHolder → Locus.
type Superlocus struct {
	loc *Locus
}

// NewSuperlocus creates an empty Superlocus for the given chromosome,
// strand, and flank distance.
func NewSuperlocus(chrom string, strand transcript.Strand, flank int) *Superlocus {
	return &Superlocus{loc: New(KindSuperlocus, chrom, strand, flank)}
}

// Add attempts to add t under spec §4.E's add_transcript membership
// rule: chromosome and strand must match, and t's extent must fall
// within Flank bp of the superlocus's current span. Returns
// errs.NotInLocus if rejected.
func (s *Superlocus) Add(t *transcript.Transcript) error {
	return s.loc.AddTranscript(t, true)
}

// Chrom, Strand and Len expose the superlocus's current grouping state.
func (s *Superlocus) Chrom() string            { return s.loc.Chrom }
func (s *Superlocus) Strand() transcript.Strand { return s.loc.Strand }
func (s *Superlocus) Len() int                  { return len(s.loc.Transcripts) }

// Options bundles the driver-level settings from spec §6's run_options
// that shape locus partitioning.
type Options struct {
	Purge              bool
	SublociFromCDSOnly bool
	Logger             *zap.SugaredLogger
}

// Result is everything a Superlocus run produces: the final Loci (one
// transcript each, spec invariant 4) and a diagnostic record of what
// was discarded along the way (spec §9 Open Question 4).
type Result struct {
	Loci     []*Locus
	Excluded *ExcludedLocus
}

// Run drives the full pipeline spec §4.H describes: partition the
// superlocus into Subloci by strict exon-overlap connected components,
// reduce each Sublocus to Monosubloci (§4.F), merge the survivors into
// a single MonosublocusHolder, and reduce that to the final Loci
// (§4.G). Transcripts a Sublocus or the holder rejects on the
// requirements expression are recorded into the returned
// ExcludedLocus.
func (s *Superlocus) Run(cfg scoring.Config, opts Options) Result {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	excluded := NewExcludedLocus(s.loc.Chrom)

	subloci := s.partitionSubloci()
	log.Debugw("partitioned superlocus", "chrom", s.loc.Chrom, "subloci", len(subloci))

	holder := NewMonosublocusHolder(s.loc.Chrom, s.loc.Strand)
	for _, sub := range subloci {
		monosubloci, purged := sub.DefineMonosubloci(cfg, opts.Purge, log)
		for _, t := range purged {
			excluded.Add(t, "requirements expression failed at sublocus stage")
		}
		for _, m := range monosubloci {
			_ = holder.AddTranscript(m.Transcript, false)
		}
	}

	loci := holder.DefineLoci(cfg, opts.SublociFromCDSOnly, opts.Purge, excluded, log)
	log.Debugw("superlocus resolved", "chrom", s.loc.Chrom, "loci", len(loci), "excluded", len(excluded.Entries))
	return Result{Loci: loci, Excluded: excluded}
}

// partitionSubloci implements spec §4.H's first step: connected
// components of the strict exon-overlap graph become individual
// Sublocus values. The monoexonic and multiexonic populations are
// partitioned separately before the overlap graph is built, since a
// Sublocus requires every member to share the same monoexonic flag
// (spec §4.F) — S1 pins a monoexonic and a multiexonic transcript whose
// exons do overlap into two distinct Subloci, not one.
func (s *Superlocus) partitionSubloci() []*Locus {
	var mono, multi []string
	for tid, t := range s.loc.Transcripts {
		if t.Monoexonic() {
			mono = append(mono, tid)
		} else {
			multi = append(multi, tid)
		}
	}

	var subloci []*Locus
	subloci = append(subloci, s.partitionPool(mono)...)
	subloci = append(subloci, s.partitionPool(multi)...)
	return subloci
}

func (s *Superlocus) partitionPool(tids []string) []*Locus {
	if len(tids) == 0 {
		return nil
	}
	g := graph.Define(tids, func(a, b string) bool {
		return IsIntersectingStrict(s.loc.Transcripts[a], s.loc.Transcripts[b])
	})
	communities := g.Communities()

	subloci := make([]*Locus, 0, len(communities))
	for _, community := range communities {
		sort.Strings(community)
		sub := New(KindSublocus, s.loc.Chrom, s.loc.Strand, 0)
		for _, tid := range community {
			_ = sub.AddTranscript(s.loc.Transcripts[tid], false)
		}
		subloci = append(subloci, sub)
	}
	return subloci
}
