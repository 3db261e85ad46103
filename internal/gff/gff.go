// Package gff is the thin input-record surface spec §1 and §6 call
// for: a collaborator stub enough to feed internal/transcript from
// either GFF3 or GTF attribute conventions. Full format robustness
// (multi-line feature stitching, validation of every GFF3 column) is
// out of scope per spec §1 — this package exists only to carry already-
// parsed rows into Builder.Assemble. Grounded on the teacher's
// internal/cache/gtf_loader.go gtfFeature struct and its
// transcript-id-keyed assembly loop (parseGTF), generalized from a
// GTF-only attribute set (transcript_id) to the GFF3 ID/Parent
// convention spec §6 also names.
package gff

import (
	"sort"
	"strings"

	"github.com/mikado-go/mikado/internal/errs"
	"github.com/mikado-go/mikado/internal/interval"
	"github.com/mikado-go/mikado/internal/transcript"
)

// Record is one already-parsed GFF3 or GTF row (spec §6): chrom,
// source, feature, a 1-based inclusive start/end, score, strand, phase,
// and a flat attribute map. The caller is responsible for producing
// these from whatever parser it uses; this package only assembles them.
type Record struct {
	Chrom      string
	Source     string
	Feature    string // "transcript"/"mRNA"/... for a parent row; "exon"/"CDS"/"five_prime_UTR"/"three_prime_UTR" for a child row
	Start      int
	End        int
	Score      float64
	HasScore   bool
	Strand     transcript.Strand
	Phase      int
	Attributes map[string]string
}

// transcriptID resolves a record's owning transcript id: GTF's
// transcript_id when present, otherwise the GFF3 ID of a transcript-like
// row, otherwise the row's GFF3 Parent.
func (r Record) transcriptID() string {
	if id := r.Attributes["transcript_id"]; id != "" {
		return id
	}
	if id := r.Attributes["ID"]; isTranscriptLike(r.Feature) && id != "" {
		return id
	}
	return r.Attributes["Parent"]
}

func isTranscriptLike(feature string) bool {
	switch strings.ToLower(feature) {
	case "transcript", "mrna", "ncrna", "mirna", "lncrna", "pseudogenic_transcript":
		return true
	default:
		return false
	}
}

func isExonLike(feature string) bool {
	return strings.EqualFold(feature, "exon")
}

func isCDSLike(feature string) bool {
	return strings.EqualFold(feature, "CDS")
}

// Builder accumulates Records and assembles them into finalized
// Transcript values, grouping child rows by transcriptID() the way
// parseGTF groups exon/CDS rows by transcript_id before constructing
// each cache.Transcript.
type Builder struct {
	parents map[string]Record
	exons   map[string][]interval.Interval
	cds     map[string][]interval.Interval
	order   []string
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		parents: make(map[string]Record),
		exons:   make(map[string][]interval.Interval),
		cds:     make(map[string][]interval.Interval),
	}
}

// Add feeds one Record into the builder. Parent (transcript-like) rows
// register the transcript's identity; exon/CDS rows accumulate
// coordinates keyed by the parent's id, matched via ID/Parent (GFF3) or
// transcript_id (GTF) per spec §6.
func (b *Builder) Add(r Record) {
	id := r.transcriptID()
	if id == "" {
		return
	}
	if isTranscriptLike(r.Feature) {
		if _, seen := b.parents[id]; !seen {
			b.order = append(b.order, id)
		}
		b.parents[id] = r
		return
	}
	if isExonLike(r.Feature) {
		b.exons[id] = append(b.exons[id], interval.Interval{Start: r.Start, End: r.End})
	} else if isCDSLike(r.Feature) {
		b.cds[id] = append(b.cds[id], interval.Interval{Start: r.Start, End: r.End})
	}
}

// Assemble builds a finalized Transcript for every transcript-like row
// seen, in first-encountered order. A transcript whose finalizer
// rejects it (spec §7: InvalidTranscript/InvalidCDS/InvalidORF) is
// omitted from the returned slice and reported via onInvalid instead of
// aborting the whole batch — matching spec §7's "offending transcript
// is skipped with a warning; pipeline continues".
func (b *Builder) Assemble(onInvalid func(tid string, err error)) []*transcript.Transcript {
	var out []*transcript.Transcript
	for _, id := range b.order {
		parent := b.parents[id]
		exons := sortedCopy(b.exons[id])
		if len(exons) == 0 {
			if onInvalid != nil {
				onInvalid(id, errs.New(errs.InvalidTranscript, id, "no exon rows found for transcript"))
			}
			continue
		}

		t := transcript.New(id, []string{parent.Attributes["gene_id"]}, parent.Chrom, parent.Strand, exons)
		t.Start, t.End = exons[0].Start, exons[len(exons)-1].End
		t.CombinedCDS = sortedCopy(b.cds[id])

		if err := t.Finalize(); err != nil {
			if onInvalid != nil {
				onInvalid(id, err)
			}
			continue
		}
		out = append(out, t)
	}
	return out
}

func sortedCopy(ivs []interval.Interval) []interval.Interval {
	out := make([]interval.Interval, len(ivs))
	copy(out, ivs)
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}
