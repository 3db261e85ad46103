package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikado-go/mikado/internal/interval"
	"github.com/mikado-go/mikado/internal/metrics"
	"github.com/mikado-go/mikado/internal/transcript"
)

func mkMetricsTranscript(t *testing.T, tid string) *transcript.Transcript {
	t.Helper()
	tr := transcript.New(tid, nil, "chr1", transcript.StrandPlus,
		[]interval.Interval{{Start: 1, End: 100}, {Start: 201, End: 300}})
	tr.Start, tr.End = 1, 300
	require.NoError(t, tr.Finalize())
	return tr
}

func TestMetricsWriterWriteHeaderListsEveryMetricSorted(t *testing.T) {
	var buf bytes.Buffer
	w := NewMetricsWriter(&buf, metrics.Bounds{})
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Flush())

	header := buf.String()
	assert.True(t, strings.HasPrefix(header, "tid\tparent\tscore\t"))
	for _, m := range metrics.Names() {
		assert.Contains(t, header, string(m))
	}
}

func TestMetricsWriterWriteRowMatchesHeaderColumnCount(t *testing.T) {
	tr := mkMetricsTranscript(t, "T1")
	tr.Score = 12.5

	var buf bytes.Buffer
	w := NewMetricsWriter(&buf, metrics.Bounds{})
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Write(tr, "locus1"))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	header := strings.Split(lines[0], "\t")
	row := strings.Split(lines[1], "\t")
	assert.Equal(t, len(header), len(row))
	assert.Equal(t, "T1", row[0])
	assert.Equal(t, "locus1", row[1])
	assert.Equal(t, "12.50", row[2])
}

// The transcript's one intron (101-200) is 100bp. A zero-value Bounds
// is NOT a no-op: MaxIntronLength=0 would make every transcript's
// introns count as "greater than max". This pins the writer to the
// bounds it was actually constructed with instead of silently
// defaulting to the zero value internally.
func TestMetricsWriterUsesConfiguredBoundsNotZeroValue(t *testing.T) {
	tr := mkMetricsTranscript(t, "T1")

	var buf bytes.Buffer
	w := NewMetricsWriter(&buf, metrics.Bounds{MaxIntronLength: 200, MinIntronLength: 50})
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Write(tr, "locus1"))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	header := strings.Split(lines[0], "\t")
	row := strings.Split(lines[1], "\t")

	greaterIdx := -1
	smallerIdx := -1
	for i, col := range header {
		switch col {
		case string(metrics.NumIntronsGreaterThanMax):
			greaterIdx = i
		case string(metrics.NumIntronsSmallerThanMin):
			smallerIdx = i
		}
	}
	require.GreaterOrEqual(t, greaterIdx, 0)
	require.GreaterOrEqual(t, smallerIdx, 0)
	assert.Equal(t, "0.00", row[greaterIdx])
	assert.Equal(t, "0.00", row[smallerIdx])

	// Contrast with the zero-value Bounds{} a caller might pass by
	// mistake: MaxIntronLength=0 makes the same 100bp intron count as
	// over-max, proving the writer's output genuinely depends on the
	// bounds it was given rather than ignoring them.
	var zeroBuf bytes.Buffer
	zw := NewMetricsWriter(&zeroBuf, metrics.Bounds{})
	require.NoError(t, zw.WriteHeader())
	require.NoError(t, zw.Write(tr, "locus1"))
	require.NoError(t, zw.Flush())
	zeroRow := strings.Split(strings.Split(strings.TrimRight(zeroBuf.String(), "\n"), "\n")[1], "\t")
	assert.Equal(t, "1.00", zeroRow[greaterIdx])
}
