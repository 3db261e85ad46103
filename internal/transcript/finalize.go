package transcript

import (
	"sort"

	"github.com/mikado-go/mikado/internal/errs"
	"github.com/mikado-go/mikado/internal/interval"
)

// Finalize brings t into the fully validated, self-consistent state
// every metric requires (spec §4.B). It is a pure, idempotent procedure:
// calling it again on an already-finalized transcript is a no-op.
// Grounded step-by-step on mikado_lib's finalizing.py
// (__basic_final_checks, __check_cdna_vs_utr, __calculate_introns,
// __check_completeness, __verify_boundaries, __check_internal_orf).
func (t *Transcript) Finalize() error {
	if t.Finalized {
		return nil
	}

	if err := t.basicChecks(); err != nil {
		return err
	}

	sortIntervals(t.Exons)

	if t.Start == 0 && t.End == 0 {
		t.Start = t.Exons[0].Start
		t.End = t.Exons[len(t.Exons)-1].End
	}

	if err := t.reconcileUTR(); err != nil {
		return err
	}

	if err := t.calculateIntrons(); err != nil {
		return err
	}

	sortIntervals(t.CombinedCDS)
	sortIntervals(t.CombinedUTR)

	t.checkCompleteness()

	if err := t.verifyBoundaries(); err != nil {
		return err
	}

	if len(t.InternalORFs) == 0 {
		t.buildDefaultORF()
	}
	for _, orf := range t.InternalORFs {
		if err := t.checkInternalORF(orf); err != nil {
			return err
		}
	}

	t.selectLongestORF()

	t.Finalized = true
	return nil
}

// basicChecks implements finalizing.py's __basic_final_checks.
func (t *Transcript) basicChecks() error {
	if len(t.Exons) == 0 {
		return errs.New(errs.InvalidTranscript, t.TID, "no exons defined")
	}
	if len(t.Exons) > 1 && t.Strand == StrandNone {
		return errs.New(errs.InvalidTranscript, t.TID, "multiexonic transcript without a defined strand")
	}
	if len(t.CombinedUTR) > 0 && len(t.CombinedCDS) == 0 {
		return errs.New(errs.InvalidTranscript, t.TID, "UTR present without CDS")
	}
	return nil
}

// reconcileUTR implements finalizing.py's __check_cdna_vs_utr: infer
// UTR from exons minus CDS when cdna_length indicates UTR is missing.
func (t *Transcript) reconcileUTR() error {
	cdnaLen := t.CDNALength()
	if cdnaLen <= t.CombinedUTRLength()+t.CombinedCDSLength() {
		return nil
	}
	if len(t.CombinedUTR) != 0 || len(t.CombinedCDS) == 0 {
		return nil
	}

	sortIntervals(t.CombinedCDS)
	cdsFirst := t.CombinedCDS[0]
	cdsLast := t.CombinedCDS[len(t.CombinedCDS)-1]

	for _, exon := range t.Exons {
		switch {
		case containsInterval(t.CombinedCDS, exon):
			continue
		case exon.End < cdsFirst.Start || exon.Start > cdsLast.End:
			t.CombinedUTR = append(t.CombinedUTR, exon)
		case exon.Start < cdsFirst.Start && exon.End == cdsFirst.End:
			t.CombinedUTR = append(t.CombinedUTR, interval.Interval{Start: exon.Start, End: cdsFirst.Start - 1})
		case exon.End > cdsLast.End && exon.Start == cdsLast.Start:
			t.CombinedUTR = append(t.CombinedUTR, interval.Interval{Start: cdsLast.End + 1, End: exon.End})
		default:
			if len(t.CombinedCDS) == 1 {
				t.CombinedUTR = append(t.CombinedUTR, interval.Interval{Start: exon.Start, End: cdsFirst.Start - 1})
				t.CombinedUTR = append(t.CombinedUTR, interval.Interval{Start: cdsLast.End + 1, End: exon.End})
			} else {
				return errs.New(errs.InvalidCDS, t.TID, "could not infer UTR: a single CDS segment is not wholly interior to its exon")
			}
		}
	}

	bothZero := t.CombinedCDSLength() == 0 && t.CombinedUTRLength() == 0
	equal := cdnaLen == t.CombinedUTRLength()+t.CombinedCDSLength()
	if !bothZero && !equal {
		return errs.New(errs.InvalidCDS, t.TID, "failed to reconcile inferred UTR against cDNA length")
	}
	return nil
}

func containsInterval(set []interval.Interval, iv interval.Interval) bool {
	for _, s := range set {
		if s == iv {
			return true
		}
	}
	return false
}

// calculateIntrons implements finalizing.py's __calculate_introns.
func (t *Transcript) calculateIntrons() error {
	var introns []interval.Interval
	var splices []int

	for i := 0; i+1 < len(t.Exons); i++ {
		a, b := t.Exons[i], t.Exons[i+1]
		if a.End >= b.Start {
			return errs.Newf(errs.InvalidTranscript, t.TID, "overlapping exons found: %v / %v", a, b)
		}
		introns = append(introns, interval.Interval{Start: a.End + 1, End: b.Start - 1})
		splices = append(splices, a.End+1, b.Start-1)
	}

	t.Introns = introns
	t.Splices = splices
	return nil
}

// checkCompleteness implements finalizing.py's __check_completeness.
func (t *Transcript) checkCompleteness() {
	if len(t.CombinedUTR) == 0 || len(t.CombinedCDS) == 0 {
		return
	}
	first := t.CombinedUTR[0]
	last := t.CombinedUTR[len(t.CombinedUTR)-1]
	cdsFirst := t.CombinedCDS[0]
	cdsLast := t.CombinedCDS[len(t.CombinedCDS)-1]

	if first.Start < cdsFirst.Start {
		switch t.Strand {
		case StrandPlus:
			t.HasStartCodon = true
		case StrandMinus:
			t.HasStopCodon = true
		}
	}
	if last.End > cdsLast.End {
		switch t.Strand {
		case StrandPlus:
			t.HasStopCodon = true
		case StrandMinus:
			t.HasStartCodon = true
		}
	}
}

// verifyBoundaries implements finalizing.py's __verify_boundaries.
func (t *Transcript) verifyBoundaries() error {
	first := t.Exons[0]
	last := t.Exons[len(t.Exons)-1]

	if first.Start == t.Start && last.End == t.End {
		return nil
	}

	if first.Start > t.Start && len(t.CombinedCDS) > 0 && t.CombinedCDS[0].Start == t.Start {
		t.Exons[0] = interval.Interval{Start: t.Start, End: first.End}
	}
	if last.End < t.End && len(t.CombinedCDS) > 0 && t.CombinedCDS[len(t.CombinedCDS)-1].End == t.End {
		t.Exons[len(t.Exons)-1] = interval.Interval{Start: t.Exons[len(t.Exons)-1].Start, End: t.End}
	}

	first = t.Exons[0]
	last = t.Exons[len(t.Exons)-1]
	if first.Start != t.Start || last.End != t.End {
		return errs.Newf(errs.InvalidTranscript, t.TID,
			"coordinates %d:%d do not match exon bounds %d:%d", t.Start, t.End, first.Start, last.End)
	}
	return nil
}

// buildDefaultORF constructs the single merged, ordered segment list
// tagged by type, used when no internal ORF was supplied explicitly.
func (t *Transcript) buildDefaultORF() {
	var segs []ORFSegment
	for _, exon := range t.Exons {
		cdsParts := clipToCDS(exon, t.CombinedCDS)
		if len(cdsParts) == 0 {
			segs = append(segs, ORFSegment{Kind: SegExon, Start: exon.Start, End: exon.End})
			continue
		}
		cursor := exon.Start
		for _, cds := range cdsParts {
			if cds.Start > cursor {
				segs = append(segs, ORFSegment{Kind: SegUTR, Start: cursor, End: cds.Start - 1})
			}
			segs = append(segs, ORFSegment{Kind: SegCDS, Start: cds.Start, End: cds.End})
			cursor = cds.End + 1
		}
		if cursor <= exon.End {
			segs = append(segs, ORFSegment{Kind: SegUTR, Start: cursor, End: exon.End})
		}
	}
	t.InternalORFs = [][]ORFSegment{segs}
	if len(t.CombinedCDS) > 0 {
		t.Phases = make([]int, len(t.CombinedCDS))
	}
}

func clipToCDS(exon interval.Interval, cds []interval.Interval) []interval.Interval {
	var out []interval.Interval
	for _, c := range cds {
		if interval.Overlaps(exon, c) {
			start, end := c.Start, c.End
			if start < exon.Start {
				start = exon.Start
			}
			if end > exon.End {
				end = exon.End
			}
			out = append(out, interval.Interval{Start: start, End: end})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// checkInternalORF implements finalizing.py's __check_internal_orf:
// consecutive CDS segments of one ORF must lie in consecutive exons.
func (t *Transcript) checkInternalORF(orf []ORFSegment) error {
	var cdsSegs []interval.Interval
	for _, seg := range orf {
		if seg.Kind == SegCDS {
			cdsSegs = append(cdsSegs, seg.Interval())
		}
	}
	sort.Slice(cdsSegs, func(i, j int) bool { return cdsSegs[i].Start < cdsSegs[j].Start })

	previousExonIndex := -1
	for _, seg := range cdsSegs {
		found := false
		for idx, exon := range t.Exons {
			if exon.Start <= seg.Start && seg.End <= exon.End {
				if previousExonIndex != -1 && previousExonIndex+1 != idx {
					return errs.Newf(errs.InvalidORF, t.TID,
						"ORF skips an exon: segment %v lands in exon %d, expected %d", seg, idx, previousExonIndex+1)
				}
				previousExonIndex = idx
				found = true
				break
			}
		}
		if !found {
			return errs.Newf(errs.InvalidORF, t.TID, "no exon contains CDS segment %v", seg)
		}
	}
	return nil
}

// selectLongestORF sets SelectedORFIndex to the ORF with the longest
// combined CDS length.
func (t *Transcript) selectLongestORF() {
	if len(t.InternalORFs) == 0 {
		return
	}
	best, bestLen := 0, -1
	for i, orf := range t.InternalORFs {
		length := 0
		for _, seg := range orf {
			if seg.Kind == SegCDS {
				length += seg.Interval().Len()
			}
		}
		if length > bestLen {
			best, bestLen = i, length
		}
	}
	t.SelectedORFIndex = best
}
