package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikado-go/mikado/internal/interval"
	"github.com/mikado-go/mikado/internal/locus"
	"github.com/mikado-go/mikado/internal/transcript"
)

func TestLociWriterEmitsLocusThenTranscriptLines(t *testing.T) {
	tr := transcript.New("T1", nil, "chr1", transcript.StrandPlus,
		[]interval.Interval{{Start: 100, End: 200}})
	tr.Start, tr.End = 100, 200
	require.NoError(t, tr.Finalize())
	tr.Score = 5

	l := locus.New(locus.KindLocus, "chr1", transcript.StrandPlus, 0)
	require.NoError(t, l.AddTranscript(tr, false))

	var buf bytes.Buffer
	w := NewLociWriter(&buf, "")
	require.NoError(t, w.Write(l))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "\tlocus\t")
	assert.Contains(t, lines[0], "Mikado") // default source
	assert.Contains(t, lines[1], "\ttranscript\t")
	assert.Contains(t, lines[1], "ID=T1")
	assert.Contains(t, lines[1], "Parent=chr1_locus_100_200")
}

func TestLociWriterUsesConfiguredSource(t *testing.T) {
	tr := transcript.New("T1", nil, "chr1", transcript.StrandPlus,
		[]interval.Interval{{Start: 1, End: 50}})
	tr.Start, tr.End = 1, 50
	require.NoError(t, tr.Finalize())

	l := locus.New(locus.KindLocus, "chr1", transcript.StrandPlus, 0)
	require.NoError(t, l.AddTranscript(tr, false))

	var buf bytes.Buffer
	w := NewLociWriter(&buf, "CustomSource")
	require.NoError(t, w.Write(l))
	require.NoError(t, w.Flush())

	assert.Contains(t, buf.String(), "CustomSource")
}
