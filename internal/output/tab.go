// Package output renders a Superlocus run's results: a GFF3-like
// locus/transcript stream (loci.go) and the tab-delimited metrics
// sidecar this file implements, adapted from the teacher's TabWriter
// (originally a VEP consequence-table writer over variant/Annotation
// pairs) into a metrics-table writer over transcript/metric pairs,
// keeping the same bufio-backed WriteHeader/Write/Flush shape.
package output

import (
	"bufio"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/mikado-go/mikado/internal/metrics"
	"github.com/mikado-go/mikado/internal/transcript"
)

// MetricsWriter writes the tab-delimited metrics sidecar spec §6
// describes: columns tid, parent, score, then every registered
// metric name in sorted order (a stable column order across runs).
// Floats are rounded to two decimals. The literal string "NA" appears
// only for a metric name Compute does not know or for a NaN value; a
// metric that has no data for a transcript (no CDS, no introns, ...)
// still renders as its computed value, usually 0.
type MetricsWriter struct {
	w       *bufio.Writer
	columns []metrics.Metric
	bounds  metrics.Bounds
}

// NewMetricsWriter creates a writer whose metric columns are every
// name in the process-wide registry, sorted. bounds is the resolved
// intron-length range (config.Resolved.Scoring.Bounds) used to compute
// num_introns_greater_than_max/num_introns_smaller_than_min; the zero
// value is NOT a safe "unconfigured" default for MaxIntronLength (it
// would count every intron as over-max), so callers should always pass
// the bounds resolved from config, not a bare metrics.Bounds{}.
func NewMetricsWriter(w io.Writer, bounds metrics.Bounds) *MetricsWriter {
	names := metrics.Names()
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return &MetricsWriter{w: bufio.NewWriter(w), columns: names, bounds: bounds}
}

// WriteHeader writes the column header line.
func (mw *MetricsWriter) WriteHeader() error {
	cols := append([]string{"tid", "parent", "score"}, metricNames(mw.columns)...)
	_, err := mw.w.WriteString(strings.Join(cols, "\t") + "\n")
	return err
}

// Write emits one row for t, scoped to the given parent locus
// identifier.
func (mw *MetricsWriter) Write(t *transcript.Transcript, parent string) error {
	values := make([]string, 0, len(mw.columns)+3)
	values = append(values, t.TID, parent, formatFloat(t.Score))

	for _, m := range mw.columns {
		v, ok := metrics.Compute(m, t, mw.bounds)
		if !ok {
			values = append(values, "NA")
			continue
		}
		values = append(values, formatFloat(v))
	}

	_, err := mw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (mw *MetricsWriter) Flush() error {
	return mw.w.Flush()
}

func metricNames(ms []metrics.Metric) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = string(m)
	}
	return out
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	rounded := math.Round(v*100) / 100
	return strconv.FormatFloat(rounded, 'f', 2, 64)
}
