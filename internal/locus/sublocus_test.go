package locus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikado-go/mikado/internal/interval"
	"github.com/mikado-go/mikado/internal/metrics"
	"github.com/mikado-go/mikado/internal/scoring"
	"github.com/mikado-go/mikado/internal/transcript"
)

func scoreByCDNALength() scoring.Config {
	return scoring.Config{
		Rules: map[metrics.Metric]scoring.Rule{
			metrics.CDNALength: {Metric: metrics.CDNALength, Rescaling: scoring.RescaleMax, Multiplier: 1},
		},
	}
}

func TestIsIntersectingStrict(t *testing.T) {
	x := mkTranscript(t, "x", []interval.Interval{{Start: 1, End: 100}, {Start: 200, End: 300}}, nil)
	y := mkTranscript(t, "y", []interval.Interval{{Start: 50, End: 150}, {Start: 200, End: 300}}, nil)
	z := mkTranscript(t, "z", []interval.Interval{{Start: 400, End: 500}}, nil)

	assert.True(t, IsIntersectingStrict(x, y))
	assert.False(t, IsIntersectingStrict(x, z))
	assert.False(t, IsIntersectingStrict(x, x))
}

// S2: strict exon overlap grouping via a Sublocus's purge-free define,
// asserting the best winner is the longer transcript.
func TestDefineMonosublociPicksBestAndRemovesIntersectors(t *testing.T) {
	x := mkTranscript(t, "x", []interval.Interval{{Start: 1, End: 100}, {Start: 200, End: 300}}, nil)
	y := mkTranscript(t, "y", []interval.Interval{{Start: 50, End: 150}, {Start: 200, End: 300}}, nil)

	l := New(KindSublocus, "chr1", transcript.StrandPlus, 0)
	require.NoError(t, l.AddTranscript(x, false))
	require.NoError(t, l.AddTranscript(y, false))

	monosubloci, purged := l.DefineMonosubloci(scoreByCDNALength(), false, nil)
	require.Empty(t, purged)
	require.Len(t, monosubloci, 1)
	assert.Equal(t, "y", monosubloci[0].Transcript.TID) // cdna_length 202 beats x's 201
}

// S4: all transcripts fail requirements → all scores 0.
func TestDefineMonosublociPurgeBehavior(t *testing.T) {
	a := mkTranscript(t, "a", []interval.Interval{{Start: 1, End: 100}}, nil)
	b := mkTranscript(t, "b", []interval.Interval{{Start: 50, End: 200}}, nil)

	expr, err := scoring.ParseExpression("never_passes")
	require.NoError(t, err)
	cfg := scoring.Config{
		Rules: map[metrics.Metric]scoring.Rule{
			metrics.CDNALength: {Metric: metrics.CDNALength, Rescaling: scoring.RescaleMax, Multiplier: 1},
		},
		Requirements: scoring.Requirements{
			Parameters: map[string]scoring.Check{
				"never_passes": {Operator: scoring.OpGT, Value: 1e18},
			},
			Expression: expr,
		},
	}

	l := New(KindSublocus, "chr1", transcript.StrandPlus, 0)
	require.NoError(t, l.AddTranscript(a, false))
	require.NoError(t, l.AddTranscript(b, false))

	// purge = true: no Monosublocus emitted, winner recorded as purged.
	monosubloci, purged := l.DefineMonosubloci(cfg, true, nil)
	assert.Empty(t, monosubloci)
	require.Len(t, purged, 1)

	// purge = false: exactly one emitted (the tie-break winner), score 0.
	a.Reset()
	require.NoError(t, a.Finalize())
	b.Reset()
	require.NoError(t, b.Finalize())
	l2 := New(KindSublocus, "chr1", transcript.StrandPlus, 0)
	require.NoError(t, l2.AddTranscript(a, false))
	require.NoError(t, l2.AddTranscript(b, false))

	monosubloci2, purged2 := l2.DefineMonosubloci(cfg, false, nil)
	assert.Empty(t, purged2)
	require.Len(t, monosubloci2, 1)
	assert.Equal(t, 0.0, monosubloci2[0].Transcript.Score)
}
