package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikado-go/mikado/internal/interval"
	"github.com/mikado-go/mikado/internal/locus"
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

func mkSuperlocus(t *testing.T, chrom string, tid string, start, end int) *locus.Superlocus {
	t.Helper()
	tr := transcript.New(tid, nil, chrom, transcript.StrandPlus,
		[]interval.Interval{{Start: start, End: end}})
	tr.Start, tr.End = start, end
	require.NoError(t, tr.Finalize())

	sl := locus.NewSuperlocus(chrom, transcript.StrandPlus, 1000)
	require.NoError(t, sl.Add(tr))
	return sl
}

func TestRunResolvesEverySuperlocus(t *testing.T) {
	items := make(chan WorkItem, 3)
	items <- WorkItem{Seq: 0, Superlocus: mkSuperlocus(t, "chr1", "a", 1, 100)}
	items <- WorkItem{Seq: 1, Superlocus: mkSuperlocus(t, "chr2", "b", 1, 100)}
	items <- WorkItem{Seq: 2, Superlocus: mkSuperlocus(t, "chr3", "c", 1, 100)}
	close(items)

	results := Run(context.Background(), items, scoreByCDNALength(), locus.Options{}, 2, nil)

	seen := map[int]bool{}
	for r := range results {
		seen[r.Seq] = true
		assert.Len(t, r.Result.Loci, 1)
	}
	assert.Len(t, seen, 3)
}

func TestOrderedCollectRestoresSequenceOrder(t *testing.T) {
	items := make(chan WorkItem, 5)
	for i := 0; i < 5; i++ {
		items <- WorkItem{Seq: i, Superlocus: mkSuperlocus(t, "chr1", string(rune('a'+i)), i*1000+1, i*1000+100)}
	}
	close(items)

	results := Run(context.Background(), items, scoreByCDNALength(), locus.Options{}, 3, nil)

	var order []int
	err := OrderedCollect(results, func(r WorkResult) error {
		order = append(order, r.Seq)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestRunSkipsNewWorkAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := make(chan WorkItem, 1)
	items <- WorkItem{Seq: 0, Superlocus: mkSuperlocus(t, "chr1", "a", 1, 100)}
	close(items)

	results := Run(ctx, items, scoreByCDNALength(), locus.Options{}, 1, nil)

	var got []WorkResult
	for r := range results {
		got = append(got, r)
	}
	require.Len(t, got, 1)
	assert.True(t, got[0].Skipped)
	assert.Equal(t, 0, got[0].Seq)
}

// Run must emit exactly one WorkResult per WorkItem sent regardless of
// when ctx is cancelled relative to worker scheduling: a cancelled item
// becomes a Skipped result rather than vanishing from the sequence
// space, so a consumer counting results in can never be shorted.
func TestRunEmitsOneResultPerItemAcrossCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	items := make(chan WorkItem, 5)
	for i := 0; i < 5; i++ {
		items <- WorkItem{Seq: i, Superlocus: mkSuperlocus(t, "chr1", string(rune('a'+i)), i*1000+1, i*1000+100)}
	}
	close(items)

	results := Run(ctx, items, scoreByCDNALength(), locus.Options{}, 1, nil)

	seen := map[int]bool{}
	i := 0
	for r := range results {
		seen[r.Seq] = true
		i++
		if i == 2 {
			cancel()
		}
	}
	assert.Len(t, seen, 5)
}

// OrderedCollect must not stall or drop a result when one sequence
// number in the middle of the run is Skipped: the fix is that Run
// always emits a WorkResult for every Seq it was handed, so
// OrderedCollect's pending map never waits forever on a missing entry.
func TestOrderedCollectDeliversSkippedResultsInSequence(t *testing.T) {
	results := make(chan WorkResult, 5)
	results <- WorkResult{Seq: 0, Result: locus.Result{}}
	results <- WorkResult{Seq: 1, Result: locus.Result{}}
	results <- WorkResult{Seq: 2, Skipped: true}
	results <- WorkResult{Seq: 3, Skipped: true}
	results <- WorkResult{Seq: 4, Result: locus.Result{}}
	close(results)

	var order []int
	var skippedSeqs []int
	err := OrderedCollect(results, func(r WorkResult) error {
		order = append(order, r.Seq)
		if r.Skipped {
			skippedSeqs = append(skippedSeqs, r.Seq)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
	assert.Equal(t, []int{2, 3}, skippedSeqs)
}
