package gff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikado-go/mikado/internal/transcript"
)

func TestBuilderAssemblesGFF3StyleRecords(t *testing.T) {
	b := NewBuilder()
	b.Add(Record{
		Chrom: "chr1", Feature: "mRNA", Start: 1, End: 300, Strand: transcript.StrandPlus,
		Attributes: map[string]string{"ID": "T1", "gene_id": "G1"},
	})
	b.Add(Record{Chrom: "chr1", Feature: "exon", Start: 1, End: 100, Strand: transcript.StrandPlus,
		Attributes: map[string]string{"Parent": "T1"}})
	b.Add(Record{Chrom: "chr1", Feature: "exon", Start: 201, End: 300, Strand: transcript.StrandPlus,
		Attributes: map[string]string{"Parent": "T1"}})
	b.Add(Record{Chrom: "chr1", Feature: "CDS", Start: 1, End: 100, Strand: transcript.StrandPlus,
		Attributes: map[string]string{"Parent": "T1"}})

	var invalid []string
	out := b.Assemble(func(tid string, err error) { invalid = append(invalid, tid) })

	require.Len(t, out, 1)
	assert.Empty(t, invalid)
	assert.Equal(t, "T1", out[0].TID)
	assert.Len(t, out[0].Exons, 2)
}

func TestBuilderAssemblesGTFStyleRecords(t *testing.T) {
	b := NewBuilder()
	b.Add(Record{
		Chrom: "chr1", Feature: "transcript", Start: 1, End: 100, Strand: transcript.StrandPlus,
		Attributes: map[string]string{"transcript_id": "T2", "gene_id": "G2"},
	})
	b.Add(Record{Chrom: "chr1", Feature: "exon", Start: 1, End: 100, Strand: transcript.StrandPlus,
		Attributes: map[string]string{"transcript_id": "T2"}})

	out := b.Assemble(nil)
	require.Len(t, out, 1)
	assert.Equal(t, "T2", out[0].TID)
}

func TestBuilderReportsTranscriptWithNoExonsAsInvalid(t *testing.T) {
	b := NewBuilder()
	b.Add(Record{
		Chrom: "chr1", Feature: "mRNA", Start: 1, End: 100, Strand: transcript.StrandPlus,
		Attributes: map[string]string{"ID": "T3"},
	})

	var invalid []string
	out := b.Assemble(func(tid string, err error) { invalid = append(invalid, tid) })
	assert.Empty(t, out)
	assert.Equal(t, []string{"T3"}, invalid)
}

func TestBuilderPreservesFirstEncounteredOrder(t *testing.T) {
	b := NewBuilder()
	for _, id := range []string{"Tb", "Ta"} {
		b.Add(Record{Chrom: "chr1", Feature: "mRNA", Start: 1, End: 100, Strand: transcript.StrandPlus,
			Attributes: map[string]string{"ID": id}})
		b.Add(Record{Chrom: "chr1", Feature: "exon", Start: 1, End: 100, Strand: transcript.StrandPlus,
			Attributes: map[string]string{"Parent": id}})
	}

	out := b.Assemble(nil)
	require.Len(t, out, 2)
	assert.Equal(t, "Tb", out[0].TID)
	assert.Equal(t, "Ta", out[1].TID)
}
