package transcript

import "github.com/mikado-go/mikado/internal/interval"

// FiveUTR returns the UTR segments upstream of the CDS on the sense
// strand: before the first CDS segment for + strand transcripts, after
// the last for - strand.
func (t *Transcript) FiveUTR() []interval.Interval {
	if len(t.CombinedCDS) == 0 {
		return nil
	}
	first, last := t.CombinedCDS[0], t.CombinedCDS[len(t.CombinedCDS)-1]
	var out []interval.Interval
	for _, u := range t.CombinedUTR {
		switch t.Strand {
		case StrandPlus:
			if u.End < first.Start {
				out = append(out, u)
			}
		case StrandMinus:
			if u.Start > last.End {
				out = append(out, u)
			}
		}
	}
	return out
}

// ThreeUTR is the complement of FiveUTR among CombinedUTR.
func (t *Transcript) ThreeUTR() []interval.Interval {
	if len(t.CombinedCDS) == 0 {
		return nil
	}
	five := t.FiveUTR()
	fiveSet := make(map[interval.Interval]bool, len(five))
	for _, f := range five {
		fiveSet[f] = true
	}
	var out []interval.Interval
	for _, u := range t.CombinedUTR {
		if !fiveSet[u] {
			out = append(out, u)
		}
	}
	return out
}

func sumLen(ivs []interval.Interval) int {
	total := 0
	for _, iv := range ivs {
		total += iv.Len()
	}
	return total
}

// HighestCDSExonNumber returns the 1-based index, among exons, of the
// exon farthest along the transcript that carries CDS.
func (t *Transcript) HighestCDSExonNumber() int {
	highest := 0
	for i, exon := range t.Exons {
		for _, cds := range t.CombinedCDS {
			if interval.Overlaps(exon, cds) {
				if i+1 > highest {
					highest = i + 1
				}
			}
		}
	}
	return highest
}

// NumberInternalORFs is the count of distinct internal ORFs.
func (t *Transcript) NumberInternalORFs() int {
	return len(t.InternalORFs)
}

// CDSNotMaximal is the combined CDS length minus the selected ORF's CDS
// length: coding sequence present in other, non-selected internal ORFs.
func (t *Transcript) CDSNotMaximal() int {
	return t.CombinedCDSLength() - sumLen(t.SelectedCDS())
}

// MaxIntronLength is the length of the longest intron, 0 if monoexonic.
func (t *Transcript) MaxIntronLength() int {
	max := 0
	for _, in := range t.Introns {
		if l := in.Len(); l > max {
			max = l
		}
	}
	return max
}

// StartDistanceFromTSS is the cDNA distance from the transcription start
// site to the start of the combined CDS.
func (t *Transcript) StartDistanceFromTSS() int {
	return t.cdnaOffsetOf(t.cdsStartGenomic(t.CombinedCDS))
}

// SelectedStartDistanceFromTSS is like StartDistanceFromTSS but for the
// selected ORF only.
func (t *Transcript) SelectedStartDistanceFromTSS() int {
	return t.cdnaOffsetOf(t.cdsStartGenomic(t.SelectedCDS()))
}

// EndDistanceFromTES is the cDNA distance from the end of the combined
// CDS to the transcription end site.
func (t *Transcript) EndDistanceFromTES() int {
	return t.CDNALength() - 1 - t.cdnaOffsetOf(t.cdsEndGenomic(t.CombinedCDS))
}

// SelectedEndDistanceFromTES is like EndDistanceFromTES for the selected ORF.
func (t *Transcript) SelectedEndDistanceFromTES() int {
	return t.CDNALength() - 1 - t.cdnaOffsetOf(t.cdsEndGenomic(t.SelectedCDS()))
}

func (t *Transcript) cdsStartGenomic(cds []interval.Interval) int {
	if len(cds) == 0 {
		return -1
	}
	if t.Strand == StrandMinus {
		return cds[len(cds)-1].End
	}
	return cds[0].Start
}

func (t *Transcript) cdsEndGenomic(cds []interval.Interval) int {
	if len(cds) == 0 {
		return -1
	}
	if t.Strand == StrandMinus {
		return cds[0].Start
	}
	return cds[len(cds)-1].End
}

// cdnaOffsetOf converts a genomic coordinate to a 0-based cDNA offset,
// walking exons in transcript order: ascending for + strand, descending
// for - strand (t.Exons itself is always ascending). A position outside
// every exon yields 0.
func (t *Transcript) cdnaOffsetOf(pos int) int {
	if pos < 0 {
		return 0
	}
	offset := 0
	for i := range t.Exons {
		exon := t.Exons[i]
		if t.Strand == StrandMinus {
			exon = t.Exons[len(t.Exons)-1-i]
		}
		if pos >= exon.Start && pos <= exon.End {
			if t.Strand == StrandMinus {
				return offset + (exon.End - pos)
			}
			return offset + (pos - exon.Start)
		}
		offset += exon.Len()
	}
	return 0
}

// EndDistanceFromJunction is the cDNA distance from the end of the
// combined CDS to the nearest splice site downstream of it, by the same
// rule as SelectedEndDistanceFromJunction; 0 if none downstream,
// monoexonic, or non-coding.
func (t *Transcript) EndDistanceFromJunction() int {
	return t.endDistanceFromJunction(t.CombinedCDS)
}

// SelectedEndDistanceFromJunction walks from the selected stop codon
// downstream along splice sites to the nearest one on the same strand;
// 0 if none downstream, monoexonic, or non-coding (spec §4.C).
func (t *Transcript) SelectedEndDistanceFromJunction() int {
	return t.endDistanceFromJunction(t.SelectedCDS())
}

func (t *Transcript) endDistanceFromJunction(cds []interval.Interval) int {
	if t.Monoexonic() || len(cds) == 0 || len(t.Splices) == 0 {
		return 0
	}
	stopPos := t.cdsEndGenomic(cds)
	stopOffset := t.cdnaOffsetOf(stopPos)

	best := -1
	for _, splice := range t.Splices {
		offset := t.cdnaOffsetOf(splice)
		if offset <= stopOffset {
			continue
		}
		dist := offset - stopOffset
		if best == -1 || dist < best {
			best = dist
		}
	}
	if best == -1 {
		return 0
	}
	return best
}

// IsComplete reports whether both a start and stop codon were inferred.
func (t *Transcript) IsComplete() bool {
	return t.HasStartCodon && t.HasStopCodon
}

// CombinedCDSIntrons returns the introns wholly contained in the
// combined CDS span, used for the CDS-only relaxed intersection
// predicate (spec §4.G) and the combined_cds_intron_fraction metric.
func (t *Transcript) CombinedCDSIntrons() []interval.Interval {
	return t.cdsIntrons(t.CombinedCDS)
}

// SelectedCDSIntrons is like CombinedCDSIntrons for the selected ORF.
func (t *Transcript) SelectedCDSIntrons() []interval.Interval {
	return t.cdsIntrons(t.SelectedCDS())
}

func (t *Transcript) cdsIntrons(cds []interval.Interval) []interval.Interval {
	if len(cds) == 0 {
		return nil
	}
	start, end := cds[0].Start, cds[len(cds)-1].End
	var out []interval.Interval
	for _, in := range t.Introns {
		if in.Start >= start && in.End <= end {
			out = append(out, in)
		}
	}
	return out
}

// NumIntronsGreaterThan counts introns longer than max.
func (t *Transcript) NumIntronsGreaterThan(max int) int {
	count := 0
	for _, in := range t.Introns {
		if in.Len() > max {
			count++
		}
	}
	return count
}

// NumIntronsSmallerThan counts introns shorter than min.
func (t *Transcript) NumIntronsSmallerThan(min int) int {
	count := 0
	for _, in := range t.Introns {
		if in.Len() < min {
			count++
		}
	}
	return count
}

// CanonicalIntronProportion is the fraction of introns flagged as
// canonical splice sites (GT-AG and friends). Canonicality itself is a
// sequence-level fact outside the scope of this package (spec §1
// Non-goals: "sequence-level operations"); callers that have sequence
// data populate CanonicalIntrons before reading this metric.
func (t *Transcript) CanonicalIntronProportion() float64 {
	if len(t.Introns) == 0 {
		return 0
	}
	if t.CanonicalIntrons == nil {
		return 0
	}
	canon := 0
	for _, in := range t.Introns {
		if t.CanonicalIntrons[in] {
			canon++
		}
	}
	return float64(canon) / float64(len(t.Introns))
}

// SnowyBlastScore implements spec §4.C: sum of hit.GlobalPositives over
// 2*|hits|, 0 if no hits. Cached after first evaluation.
func (t *Transcript) SnowyBlastScore() float64 {
	if t.snowyBlastCached {
		return t.snowyBlastScore
	}
	if len(t.BlastHits) == 0 {
		t.snowyBlastCached = true
		return 0
	}
	sum := 0
	for _, h := range t.BlastHits {
		sum += h.GlobalPositives
	}
	t.snowyBlastScore = float64(sum) / float64(2*len(t.BlastHits))
	t.snowyBlastCached = true
	return t.snowyBlastScore
}

// BestBits returns the highest bit score among attached BLAST hits, 0 if none.
func (t *Transcript) BestBits() float64 {
	best := 0.0
	for _, h := range t.BlastHits {
		if h.Bits > best {
			best = h.Bits
		}
	}
	return best
}

// VerifiedIntronsNum counts introns present in VerifiedIntrons.
func (t *Transcript) VerifiedIntronsNum() int {
	count := 0
	for _, in := range t.Introns {
		if t.VerifiedIntrons[in] {
			count++
		}
	}
	return count
}

// NonVerifiedIntronsNum is the complement of VerifiedIntronsNum.
func (t *Transcript) NonVerifiedIntronsNum() int {
	return len(t.Introns) - t.VerifiedIntronsNum()
}

// ProportionVerifiedIntronsSelf is |verified ∩ introns| / |introns|,
// 0 if monoexonic.
func (t *Transcript) ProportionVerifiedIntronsSelf() float64 {
	if len(t.Introns) == 0 {
		return 0
	}
	return float64(t.VerifiedIntronsNum()) / float64(len(t.Introns))
}
