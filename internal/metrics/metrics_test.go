package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikado-go/mikado/internal/interval"
	"github.com/mikado-go/mikado/internal/transcript"
)

func mkTranscript(t *testing.T) *transcript.Transcript {
	t.Helper()
	tr := transcript.New("t1", nil, "chr1", transcript.StrandPlus, []interval.Interval{
		{Start: 1, End: 100}, {Start: 200, End: 300},
	})
	tr.Start, tr.End = 1, 300
	tr.CombinedCDS = []interval.Interval{{Start: 50, End: 100}, {Start: 200, End: 250}}
	require.NoError(t, tr.Finalize())
	return tr
}

func TestComputeIntrinsicMetrics(t *testing.T) {
	tr := mkTranscript(t)

	v, ok := Compute(CDNALength, tr, Bounds{})
	require.True(t, ok)
	assert.Equal(t, float64(201), v)

	v, _ = Compute(CombinedCDSLength, tr, Bounds{})
	assert.Equal(t, float64(102), v)

	v, _ = Compute(UTRLength, tr, Bounds{})
	assert.Equal(t, float64(99), v)

	v, _ = Compute(Monoexonic, tr, Bounds{})
	assert.Equal(t, float64(0), v)

	v, _ = Compute(IsCoding, tr, Bounds{})
	assert.Equal(t, float64(1), v)
}

func TestComputePanicsBeforeFinalize(t *testing.T) {
	tr := transcript.New("t2", nil, "chr1", transcript.StrandPlus, []interval.Interval{{Start: 1, End: 10}})
	assert.Panics(t, func() {
		Compute(CDNALength, tr, Bounds{})
	})
}

func TestComputeUnknownMetric(t *testing.T) {
	tr := mkTranscript(t)
	_, ok := Compute(Metric("not_a_real_metric"), tr, Bounds{})
	assert.False(t, ok)
}

func TestNamesSortedAndComplete(t *testing.T) {
	names := Names()
	assert.True(t, len(names) >= 40)
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
	assert.True(t, Exists(CDNALength))
	assert.False(t, Exists("nonexistent"))
}

func TestBlastScoreAlias(t *testing.T) {
	tr := mkTranscript(t)
	tr.BlastHits = []transcript.BlastHit{{GlobalPositives: 10}, {GlobalPositives: 20}}
	a, _ := Compute(SnowyBlastScore, tr, Bounds{})
	b, _ := Compute(BlastScore, tr, Bounds{})
	assert.Equal(t, a, b)
	assert.Equal(t, float64(30)/4, a)
}

func TestNoHitsZeroScore(t *testing.T) {
	tr := mkTranscript(t)
	v, _ := Compute(SnowyBlastScore, tr, Bounds{})
	assert.Equal(t, float64(0), v)
}
