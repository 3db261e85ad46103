// Package metrics implements the ~60-feature metrics engine of spec
// §4.C: a static, process-wide registry of named, pure functions of a
// finalized Transcript (plus the configured intron-length Bounds for
// the two num_introns_* metrics; neighbor-relative metrics read fields
// the enclosing locus has already set). Grounded on the teacher's pattern of a
// flat file of small named predicate/lookup functions keyed by a
// string/enum (internal/annotate/consequence.go's consequence-term
// table, internal/annotate/codon.go's codon table) — here the table
// holds float64-valued feature functions instead of strings. Spec §9
// design note: "Global mutable available_metrics list → initialized
// once at program start from a static metric registry; read-only
// afterward."
package metrics

import (
	"sort"

	"github.com/mikado-go/mikado/internal/interval"
	"github.com/mikado-go/mikado/internal/transcript"
)

// Metric names one of the named numeric features of spec §4.C.
type Metric string

const (
	CDNALength                        Metric = "cdna_length"
	ExonNum                           Metric = "exon_num"
	CombinedCDSLength                 Metric = "combined_cds_length"
	CombinedCDSNum                    Metric = "combined_cds_num"
	SelectedCDSLength                 Metric = "selected_cds_length"
	SelectedCDSNum                    Metric = "selected_cds_num"
	CombinedCDSFraction               Metric = "combined_cds_fraction"
	SelectedCDSFraction               Metric = "selected_cds_fraction"
	UTRLength                         Metric = "utr_length"
	FiveUTRLength                     Metric = "five_utr_length"
	FiveUTRNum                        Metric = "five_utr_num"
	FiveUTRNumComplete                Metric = "five_utr_num_complete"
	ThreeUTRLength                    Metric = "three_utr_length"
	ThreeUTRNum                       Metric = "three_utr_num"
	ThreeUTRNumComplete               Metric = "three_utr_num_complete"
	HighestCDSExonNumber              Metric = "highest_cds_exon_number"
	NumberInternalORFs                Metric = "number_internal_orfs"
	CDSNotMaximal                     Metric = "cds_not_maximal"
	CDSNotMaximalFraction             Metric = "cds_not_maximal_fraction"
	MaxIntronLength                   Metric = "max_intron_length"
	StartDistanceFromTSS              Metric = "start_distance_from_tss"
	SelectedStartDistanceFromTSS      Metric = "selected_start_distance_from_tss"
	EndDistanceFromTES                Metric = "end_distance_from_tes"
	SelectedEndDistanceFromTES        Metric = "selected_end_distance_from_tes"
	EndDistanceFromJunction           Metric = "end_distance_from_junction"
	SelectedEndDistanceFromJunction   Metric = "selected_end_distance_from_junction"
	HasStartCodon                     Metric = "has_start_codon"
	HasStopCodon                      Metric = "has_stop_codon"
	IsComplete                        Metric = "is_complete"
	Monoexonic                        Metric = "monoexonic"
	IsCoding                          Metric = "is_coding"
	NumIntronsGreaterThanMax          Metric = "num_introns_greater_than_max"
	NumIntronsSmallerThanMin          Metric = "num_introns_smaller_than_min"
	CanonicalIntronProportion         Metric = "canonical_intron_proportion"
	SnowyBlastScore                   Metric = "snowy_blast_score"
	BestBits                          Metric = "best_bits"
	BlastScore                        Metric = "blast_score" // alias of snowy_blast_score

	ExonFraction                      Metric = "exon_fraction"
	IntronFraction                    Metric = "intron_fraction"
	CombinedCDSIntronFraction         Metric = "combined_cds_intron_fraction"
	SelectedCDSIntronFraction         Metric = "selected_cds_intron_fraction"
	RetainedIntronsNum                Metric = "retained_introns_num"
	RetainedFraction                  Metric = "retained_fraction"
	ProportionVerifiedIntrons         Metric = "proportion_verified_introns"
	ProportionVerifiedIntronsInLocus  Metric = "proportion_verified_introns_inlocus"
	VerifiedIntronsNum                Metric = "verified_introns_num"
	NonVerifiedIntronsNum             Metric = "non_verified_introns_num"
)

// Bounds carries the configured intron-length thresholds used by
// num_introns_greater_than_max / num_introns_smaller_than_min.
type Bounds struct {
	MaxIntronLength int
	MinIntronLength int
}

type computeFunc func(t *transcript.Transcript, b Bounds) float64

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

var registry map[Metric]computeFunc

func init() {
	registry = map[Metric]computeFunc{
		CDNALength:           func(t *transcript.Transcript, _ Bounds) float64 { return float64(t.CDNALength()) },
		ExonNum:               func(t *transcript.Transcript, _ Bounds) float64 { return float64(len(t.Exons)) },
		CombinedCDSLength:     func(t *transcript.Transcript, _ Bounds) float64 { return float64(t.CombinedCDSLength()) },
		CombinedCDSNum:        func(t *transcript.Transcript, _ Bounds) float64 { return float64(len(t.CombinedCDS)) },
		SelectedCDSLength:     func(t *transcript.Transcript, _ Bounds) float64 { return float64(sumIv(t.SelectedCDS())) },
		SelectedCDSNum:        func(t *transcript.Transcript, _ Bounds) float64 { return float64(len(t.SelectedCDS())) },
		CombinedCDSFraction:   func(t *transcript.Transcript, _ Bounds) float64 { return ratio(t.CombinedCDSLength(), t.CDNALength()) },
		SelectedCDSFraction:   func(t *transcript.Transcript, _ Bounds) float64 { return ratio(sumIv(t.SelectedCDS()), t.CDNALength()) },
		UTRLength:             func(t *transcript.Transcript, _ Bounds) float64 { return float64(t.CombinedUTRLength()) },
		FiveUTRLength:         func(t *transcript.Transcript, _ Bounds) float64 { return float64(sumIv(t.FiveUTR())) },
		FiveUTRNum:            func(t *transcript.Transcript, _ Bounds) float64 { return float64(len(t.FiveUTR())) },
		FiveUTRNumComplete:    func(t *transcript.Transcript, _ Bounds) float64 { return boolToFloat(t.HasStartCodon && len(t.FiveUTR()) > 0) },
		ThreeUTRLength:        func(t *transcript.Transcript, _ Bounds) float64 { return float64(sumIv(t.ThreeUTR())) },
		ThreeUTRNum:           func(t *transcript.Transcript, _ Bounds) float64 { return float64(len(t.ThreeUTR())) },
		ThreeUTRNumComplete:   func(t *transcript.Transcript, _ Bounds) float64 { return boolToFloat(t.HasStopCodon && len(t.ThreeUTR()) > 0) },
		HighestCDSExonNumber:  func(t *transcript.Transcript, _ Bounds) float64 { return float64(t.HighestCDSExonNumber()) },
		NumberInternalORFs:    func(t *transcript.Transcript, _ Bounds) float64 { return float64(t.NumberInternalORFs()) },
		CDSNotMaximal:         func(t *transcript.Transcript, _ Bounds) float64 { return float64(t.CDSNotMaximal()) },
		CDSNotMaximalFraction: func(t *transcript.Transcript, _ Bounds) float64 { return ratio(t.CDSNotMaximal(), t.CombinedCDSLength()) },
		MaxIntronLength:       func(t *transcript.Transcript, _ Bounds) float64 { return float64(t.MaxIntronLength()) },

		StartDistanceFromTSS:            func(t *transcript.Transcript, _ Bounds) float64 { return float64(t.StartDistanceFromTSS()) },
		SelectedStartDistanceFromTSS:     func(t *transcript.Transcript, _ Bounds) float64 { return float64(t.SelectedStartDistanceFromTSS()) },
		EndDistanceFromTES:               func(t *transcript.Transcript, _ Bounds) float64 { return float64(t.EndDistanceFromTES()) },
		SelectedEndDistanceFromTES:       func(t *transcript.Transcript, _ Bounds) float64 { return float64(t.SelectedEndDistanceFromTES()) },
		EndDistanceFromJunction:          func(t *transcript.Transcript, _ Bounds) float64 { return float64(t.EndDistanceFromJunction()) },
		SelectedEndDistanceFromJunction:  func(t *transcript.Transcript, _ Bounds) float64 { return float64(t.SelectedEndDistanceFromJunction()) },

		HasStartCodon: func(t *transcript.Transcript, _ Bounds) float64 { return boolToFloat(t.HasStartCodon) },
		HasStopCodon:  func(t *transcript.Transcript, _ Bounds) float64 { return boolToFloat(t.HasStopCodon) },
		IsComplete:    func(t *transcript.Transcript, _ Bounds) float64 { return boolToFloat(t.IsComplete()) },
		Monoexonic:    func(t *transcript.Transcript, _ Bounds) float64 { return boolToFloat(t.Monoexonic()) },
		IsCoding:      func(t *transcript.Transcript, _ Bounds) float64 { return boolToFloat(t.IsCoding()) },

		NumIntronsGreaterThanMax:  func(t *transcript.Transcript, b Bounds) float64 { return float64(t.NumIntronsGreaterThan(b.MaxIntronLength)) },
		NumIntronsSmallerThanMin:  func(t *transcript.Transcript, b Bounds) float64 { return float64(t.NumIntronsSmallerThan(b.MinIntronLength)) },
		CanonicalIntronProportion: func(t *transcript.Transcript, _ Bounds) float64 { return t.CanonicalIntronProportion() },
		SnowyBlastScore:           func(t *transcript.Transcript, _ Bounds) float64 { return t.SnowyBlastScore() },
		BestBits:                  func(t *transcript.Transcript, _ Bounds) float64 { return t.BestBits() },
		BlastScore:                func(t *transcript.Transcript, _ Bounds) float64 { return t.SnowyBlastScore() },

		ExonFraction:                     func(t *transcript.Transcript, _ Bounds) float64 { return t.ExonFraction },
		IntronFraction:                   func(t *transcript.Transcript, _ Bounds) float64 { return t.IntronFraction },
		CombinedCDSIntronFraction:        func(t *transcript.Transcript, _ Bounds) float64 { return t.CombinedCDSIntronFraction },
		SelectedCDSIntronFraction:        func(t *transcript.Transcript, _ Bounds) float64 { return t.SelectedCDSIntronFraction },
		RetainedIntronsNum:               func(t *transcript.Transcript, _ Bounds) float64 { return float64(len(t.RetainedIntrons)) },
		RetainedFraction:                 func(t *transcript.Transcript, _ Bounds) float64 { return t.RetainedFraction },
		ProportionVerifiedIntrons:        func(t *transcript.Transcript, _ Bounds) float64 { return t.ProportionVerifiedIntrons },
		ProportionVerifiedIntronsInLocus: func(t *transcript.Transcript, _ Bounds) float64 { return t.ProportionVerifiedIntronsInLocus },
		VerifiedIntronsNum:               func(t *transcript.Transcript, _ Bounds) float64 { return float64(t.VerifiedIntronsNum()) },
		NonVerifiedIntronsNum:            func(t *transcript.Transcript, _ Bounds) float64 { return float64(t.NonVerifiedIntronsNum()) },
	}
}

func sumIv(ivs []interval.Interval) int {
	total := 0
	for _, iv := range ivs {
		total += iv.Len()
	}
	return total
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Compute evaluates metric m for t. It panics if t has not been
// finalized (spec §4.B: "all metric readers call the finalizer lazily
// if not yet finalized" — the pipeline finalizes eagerly instead, so a
// metric read on a raw transcript here is a programming error, not a
// recoverable one).
func Compute(m Metric, t *transcript.Transcript, b Bounds) (float64, bool) {
	t.MustBeFinalized()
	fn, ok := registry[m]
	if !ok {
		return 0, false
	}
	return fn(t, b), true
}

// Names returns every registered metric name, sorted.
func Names() []Metric {
	out := make([]Metric, 0, len(registry))
	for m := range registry {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Exists reports whether m is a known metric name.
func Exists(m Metric) bool {
	_, ok := registry[m]
	return ok
}
