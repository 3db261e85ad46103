package locus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikado-go/mikado/internal/interval"
	"github.com/mikado-go/mikado/internal/transcript"
)

func mkTranscript(t *testing.T, tid string, exons []interval.Interval, cds []interval.Interval) *transcript.Transcript {
	t.Helper()
	tr := transcript.New(tid, nil, "chr1", transcript.StrandPlus, exons)
	tr.Start, tr.End = exons[0].Start, exons[len(exons)-1].End
	tr.CombinedCDS = cds
	require.NoError(t, tr.Finalize())
	return tr
}

func TestAddTranscriptSeedsExtent(t *testing.T) {
	l := New(KindLocus, "", transcript.StrandNone, 0)
	tr := mkTranscript(t, "t1", []interval.Interval{{Start: 100, End: 200}}, nil)

	require.NoError(t, l.AddTranscript(tr, true))
	assert.Equal(t, "chr1", l.Chrom)
	assert.Equal(t, transcript.StrandPlus, l.Strand)
	assert.Equal(t, 100, l.Start)
	assert.Equal(t, 200, l.End)
}

func TestAddTranscriptExtendsExtent(t *testing.T) {
	l := New(KindLocus, "chr1", transcript.StrandPlus, 0)
	a := mkTranscript(t, "a", []interval.Interval{{Start: 100, End: 200}}, nil)
	b := mkTranscript(t, "b", []interval.Interval{{Start: 150, End: 300}}, nil)

	require.NoError(t, l.AddTranscript(a, true))
	require.NoError(t, l.AddTranscript(b, true))
	assert.Equal(t, 100, l.Start)
	assert.Equal(t, 300, l.End)
}

func TestAddTranscriptRejectsChromMismatch(t *testing.T) {
	l := New(KindLocus, "chr1", transcript.StrandPlus, 0)
	a := mkTranscript(t, "a", []interval.Interval{{Start: 100, End: 200}}, nil)
	require.NoError(t, l.AddTranscript(a, true))

	b := transcript.New("b", nil, "chr2", transcript.StrandPlus, []interval.Interval{{Start: 100, End: 200}})
	b.Start, b.End = 100, 200
	require.NoError(t, b.Finalize())

	err := l.AddTranscript(b, true)
	require.Error(t, err)
}

func TestAddTranscriptRejectsStrandMismatch(t *testing.T) {
	l := New(KindLocus, "chr1", transcript.StrandPlus, 0)
	a := mkTranscript(t, "a", []interval.Interval{{Start: 100, End: 200}}, nil)
	require.NoError(t, l.AddTranscript(a, true))

	b := transcript.New("b", nil, "chr1", transcript.StrandMinus, []interval.Interval{{Start: 100, End: 500}, {Start: 600, End: 700}})
	b.Start, b.End = 100, 700
	require.NoError(t, b.Finalize())

	err := l.AddTranscript(b, true)
	require.Error(t, err)
}

func TestAddTranscriptRejectsDisjointBeyondFlank(t *testing.T) {
	l := New(KindLocus, "chr1", transcript.StrandPlus, 10)
	a := mkTranscript(t, "a", []interval.Interval{{Start: 100, End: 200}}, nil)
	require.NoError(t, l.AddTranscript(a, true))

	far := mkTranscript(t, "far", []interval.Interval{{Start: 500, End: 600}}, nil)
	err := l.AddTranscript(far, true)
	require.Error(t, err)

	near := mkTranscript(t, "near", []interval.Interval{{Start: 205, End: 300}}, nil)
	require.NoError(t, l.AddTranscript(near, true))
}

func TestAddTranscriptSublocusEnforcesMonoexonicFlag(t *testing.T) {
	l := New(KindSublocus, "chr1", transcript.StrandPlus, 0)
	mono := mkTranscript(t, "mono", []interval.Interval{{Start: 100, End: 200}}, nil)
	require.NoError(t, l.AddTranscript(mono, false))

	multi := mkTranscript(t, "multi", []interval.Interval{{Start: 100, End: 150}, {Start: 180, End: 200}}, nil)
	err := l.AddTranscript(multi, false)
	require.Error(t, err)
}

func TestChooseBestByScore(t *testing.T) {
	a := mkTranscript(t, "a", []interval.Interval{{Start: 1, End: 100}}, nil)
	b := mkTranscript(t, "b", []interval.Interval{{Start: 1, End: 100}}, nil)
	a.Score = 1
	b.Score = 2

	best := ChooseBest([]*transcript.Transcript{a, b})
	assert.Equal(t, "b", best.TID)
}

func TestChooseBestTieBreakCDNALength(t *testing.T) {
	a := mkTranscript(t, "a", []interval.Interval{{Start: 1, End: 100}}, nil)
	b := mkTranscript(t, "b", []interval.Interval{{Start: 1, End: 300}}, nil)
	a.Score, b.Score = 1, 1

	best := ChooseBest([]*transcript.Transcript{a, b})
	assert.Equal(t, "b", best.TID)
}

func TestChooseBestTieBreakLexicographicTID(t *testing.T) {
	a := mkTranscript(t, "zzz", []interval.Interval{{Start: 1, End: 100}}, nil)
	b := mkTranscript(t, "aaa", []interval.Interval{{Start: 1, End: 100}}, nil)
	a.Score, b.Score = 1, 1

	best := ChooseBest([]*transcript.Transcript{a, b})
	assert.Equal(t, "aaa", best.TID)
}

func TestComputeNeighborMetricsRetainedIntron(t *testing.T) {
	// S3: locus exon union contains intron [150,180]; T has an exon
	// [100,250] not covered by CDS.
	l := New(KindLocus, "chr1", transcript.StrandPlus, 0)

	splicer := mkTranscript(t, "splicer", []interval.Interval{{Start: 50, End: 149}, {Start: 181, End: 300}}, nil)
	require.NoError(t, l.AddTranscript(splicer, false))

	retaining := mkTranscript(t, "retaining", []interval.Interval{{Start: 100, End: 250}}, nil)
	require.NoError(t, l.AddTranscript(retaining, false))

	ComputeNeighborMetrics(l)

	require.Len(t, retaining.RetainedIntrons, 1)
	assert.Equal(t, interval.Interval{Start: 100, End: 250}, retaining.RetainedIntrons[0])
	assert.InDelta(t, float64(151)/float64(retaining.CDNALength()), retaining.RetainedFraction, 1e-9)
}
