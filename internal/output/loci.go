package output

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/mikado-go/mikado/internal/locus"
	"github.com/mikado-go/mikado/internal/transcript"
)

// LociWriter writes the GFF3-like locus/transcript stream spec §6
// describes: a locus line followed by each of its child transcript
// lines, one locus block per Locus.
type LociWriter struct {
	w      *bufio.Writer
	source string
}

// NewLociWriter creates a writer that stamps the configured "source"
// column (spec §6's source key, default "Mikado") onto every line.
func NewLociWriter(w io.Writer, source string) *LociWriter {
	if source == "" {
		source = "Mikado"
	}
	return &LociWriter{w: bufio.NewWriter(w), source: source}
}

// Write emits one locus block: a "locus" feature line spanning every
// member's extent, followed by a "transcript" line per member, sorted
// by start coordinate then tid for determinism.
func (lw *LociWriter) Write(l *locus.Locus) error {
	members := make([]*transcript.Transcript, 0, len(l.Transcripts))
	for _, t := range l.Transcripts {
		members = append(members, t)
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].Start != members[j].Start {
			return members[i].Start < members[j].Start
		}
		return members[i].TID < members[j].TID
	})

	locusID := fmt.Sprintf("%s_locus_%d_%d", l.Chrom, l.Start, l.End)
	if _, err := lw.w.WriteString(fmt.Sprintf(
		"%s\t%s\tlocus\t%d\t%d\t.\t%s\t.\tID=%s\n",
		l.Chrom, lw.source, l.Start, l.End, strandSymbol(l.Strand), locusID,
	)); err != nil {
		return err
	}

	for _, t := range members {
		if _, err := lw.w.WriteString(fmt.Sprintf(
			"%s\t%s\ttranscript\t%d\t%d\t%s\t%s\t.\tID=%s;Parent=%s\n",
			t.Chrom, lw.source, t.Start, t.End, formatFloat(t.Score), strandSymbol(t.Strand),
			t.TID, locusID,
		)); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (lw *LociWriter) Flush() error {
	return lw.w.Flush()
}

func strandSymbol(s transcript.Strand) string {
	switch s {
	case transcript.StrandPlus:
		return "+"
	case transcript.StrandMinus:
		return "-"
	default:
		return "."
	}
}
