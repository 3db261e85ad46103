package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikado-go/mikado/internal/config"
	"github.com/mikado-go/mikado/internal/gff"
	"github.com/mikado-go/mikado/internal/locus"
	"github.com/mikado-go/mikado/internal/metrics"
	"github.com/mikado-go/mikado/internal/output"
	"github.com/mikado-go/mikado/internal/pipeline"
	"github.com/mikado-go/mikado/internal/transcript"
)

func newPickCmd() *cobra.Command {
	var cfgPath string
	var lociOut string
	var metricsOut string

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Run the Superlocus pipeline over an input annotation file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPick(cfgPath, lociOut, metricsOut)
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to a JSON or YAML configuration file (required)")
	cmd.Flags().StringVar(&lociOut, "loci-out", "", "override the configured loci_out path")
	cmd.Flags().StringVar(&metricsOut, "metrics-out", "", "path for the per-transcript metrics sidecar; none is written when empty")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runPick(cfgPath, lociOutOverride, metricsOutOverride string) error {
	resolved, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	logLevel := zap.InfoLevel
	_ = logLevel.UnmarshalText([]byte(resolved.Document.LogSettings.LogLevel))
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(logLevel)
	zapLogger, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer zapLogger.Sync()
	log := zapLogger.Sugar()

	lociOutPath := lociOutOverride
	if lociOutPath == "" {
		lociOutPath = resolved.Document.LociOut
	}
	metricsOutPath := metricsOutOverride

	transcripts, err := loadTranscripts(resolved.Document.Input, log)
	if err != nil {
		return err
	}

	superloci := groupIntoSuperloci(transcripts)

	items := make(chan pipeline.WorkItem, len(superloci))
	for i, sl := range superloci {
		items <- pipeline.WorkItem{Seq: i, Superlocus: sl}
	}
	close(items)

	threads := resolved.Document.RunOptions.Threads
	results := pipeline.Run(context.Background(), items, resolved.Scoring, resolved.Locus, threads, log)

	lociWriter, closeLoci, err := openLociWriter(lociOutPath, resolved.Document.Source)
	if err != nil {
		return err
	}
	defer closeLoci()

	var metricsWriter *output.MetricsWriter
	var closeMetrics func() error
	if metricsOutPath != "" {
		metricsWriter, closeMetrics, err = openMetricsWriter(metricsOutPath, resolved.Scoring.Bounds)
		if err != nil {
			return err
		}
		defer closeMetrics()
		if err := metricsWriter.WriteHeader(); err != nil {
			return err
		}
	}

	totalLoci := 0
	totalExcluded := 0
	totalSkipped := 0
	err = pipeline.OrderedCollect(results, func(r pipeline.WorkResult) error {
		if r.Skipped {
			totalSkipped++
			log.Warnw("superlocus not resolved, run cancelled", "seq", r.Seq)
			return nil
		}
		for _, l := range r.Result.Loci {
			if lociWriter != nil {
				if err := lociWriter.Write(l); err != nil {
					return err
				}
			}
			if metricsWriter != nil {
				for _, t := range l.Transcripts {
					if err := metricsWriter.Write(t, l.Chrom); err != nil {
						return err
					}
				}
			}
			totalLoci++
		}
		totalExcluded += len(r.Result.Excluded.Entries)
		return nil
	})
	if err != nil {
		return err
	}

	if lociWriter != nil {
		if err := lociWriter.Flush(); err != nil {
			return err
		}
	}
	if metricsWriter != nil {
		if err := metricsWriter.Flush(); err != nil {
			return err
		}
	}

	log.Infow("pick finished", "loci", totalLoci, "excluded", totalExcluded, "skipped", totalSkipped)
	return nil
}

func loadTranscripts(path string, log *zap.SugaredLogger) ([]*transcript.Transcript, error) {
	// Reading and parsing the GFF3/GTF file itself is an external
	// collaborator's job per spec §1; here we only exercise the
	// assembly surface gff.Builder provides once records are in hand.
	builder := gff.NewBuilder()
	_ = path // the record source is wired by the external collaborator
	return builder.Assemble(func(tid string, err error) {
		log.Warnw("skipping invalid transcript", "tid", tid, "reason", err)
	}), nil
}

// groupIntoSuperloci implements spec §4.H's membership rule at the
// driver level: each transcript joins the first still-open Superlocus
// that accepts it (chrom/strand match, extent within flank bp), or
// seeds a new one.
func groupIntoSuperloci(transcripts []*transcript.Transcript) []*locus.Superlocus {
	const flank = 1000
	var open []*locus.Superlocus

	for _, t := range transcripts {
		placed := false
		for _, sl := range open {
			if sl.Add(t) == nil {
				placed = true
				break
			}
		}
		if !placed {
			sl := locus.NewSuperlocus(t.Chrom, t.Strand, flank)
			_ = sl.Add(t)
			open = append(open, sl)
		}
	}
	return open
}

func openLociWriter(path, source string) (*output.LociWriter, func() error, error) {
	if path == "" {
		return nil, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating loci_out %s: %w", path, err)
	}
	return output.NewLociWriter(f, source), f.Close, nil
}

func openMetricsWriter(path string, bounds metrics.Bounds) (*output.MetricsWriter, func() error, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating metrics sidecar %s: %w", path, err)
	}
	return output.NewMetricsWriter(f, bounds), f.Close, nil
}
