// Package config loads and validates the JSON/YAML configuration
// document of spec §6 with github.com/spf13/viper (already a teacher
// dependency via cmd/vibe-vep/config.go), decoding the scoring and
// requirements sub-documents with gopkg.in/yaml.v3 for typed,
// order-independent validation that viper's generic map decoding
// cannot give directly. Validation aggregates every fault into a
// single InvalidConfiguration error, following
// shanghai_lib/json_utils.py's style (original_source/), rather than
// stopping at the first one.
package config

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mikado-go/mikado/internal/errs"
	"github.com/mikado-go/mikado/internal/locus"
	"github.com/mikado-go/mikado/internal/metrics"
	"github.com/mikado-go/mikado/internal/scoring"
)

// DBType enumerates spec §6's recognized homology/ORF persistence
// backends. The value is validated but never opened here: persistence
// itself is an external collaborator's job (spec §1, "out of scope").
type DBType string

const (
	DBSQLite     DBType = "sqlite"
	DBMySQL      DBType = "mysql"
	DBPostgreSQL DBType = "postgresql"
)

// Leniency is one of chimera_split.blast_params.leniency's recognized
// values.
type Leniency string

const (
	LeniencyStringent Leniency = "STRINGENT"
	LeniencyPermissive Leniency = "PERMISSIVE"
	LeniencyLenient   Leniency = "LENIENT"
)

// LogLevel is one of log_settings.log_level's recognized values.
type LogLevel string

const (
	LogInfo     LogLevel = "INFO"
	LogWarn     LogLevel = "WARN"
	LogError    LogLevel = "ERROR"
	LogCritical LogLevel = "CRITICAL"
	LogDebug    LogLevel = "DEBUG"
)

// Database bundles spec §6's db/dbtype/dbhost/dbuser/dbpasswd/dbport
// keys. Consumed only by the external homology/ORF persistence
// collaborator; the core never opens a connection.
type Database struct {
	DB       string `mapstructure:"db" yaml:"db"`
	DBType   DBType `mapstructure:"dbtype" yaml:"dbtype"`
	DBHost   string `mapstructure:"dbhost" yaml:"dbhost"`
	DBUser   string `mapstructure:"dbuser" yaml:"dbuser"`
	DBPasswd string `mapstructure:"dbpasswd" yaml:"dbpasswd"`
	DBPort   int    `mapstructure:"dbport" yaml:"dbport"`
}

// BlastParams is chimera_split.blast_params.
type BlastParams struct {
	Evalue              float64  `mapstructure:"evalue" yaml:"evalue"`
	HSPEvalue           float64  `mapstructure:"hsp_evalue" yaml:"hsp_evalue"`
	MaxTargetSeqs       int      `mapstructure:"max_target_seqs" yaml:"max_target_seqs"`
	MinimalHSPOverlap   float64  `mapstructure:"minimal_hsp_overlap" yaml:"minimal_hsp_overlap"`
	Leniency            Leniency `mapstructure:"leniency" yaml:"leniency"`
}

// ChimeraSplit is the chimera_split section.
type ChimeraSplit struct {
	Execute     bool        `mapstructure:"execute" yaml:"execute"`
	BlastCheck  bool        `mapstructure:"blast_check" yaml:"blast_check"`
	BlastParams BlastParams `mapstructure:"blast_params" yaml:"blast_params"`
}

// ORFLoading is the orf_loading section.
type ORFLoading struct {
	StrandSpecific            bool `mapstructure:"strand_specific" yaml:"strand_specific"`
	MinimalSecondaryORFLength int  `mapstructure:"minimal_secondary_orf_length" yaml:"minimal_secondary_orf_length"`
}

// RunOptions is the run_options section; it maps directly onto
// locus.Options plus three driver-level knobs (ExcludeCDS,
// RemoveOverlappingFragments, Threads). Of those three only Threads is
// read, by cmd/mikado as the pipeline worker count; the other two are
// decoded but not acted on.
//
// MinIntronLength/MaxIntronLength are the intron_range bounds spec.md:43
// requires the transcript's configuration reference to carry, consumed
// by num_introns_greater_than_max/num_introns_smaller_than_min
// (metrics.Bounds). Unset (zero value) MinIntronLength is already a
// no-op bound (no intron is shorter than 0bp); unset MaxIntronLength is
// NOT a no-op at zero, so it is defaulted away from zero in resolve,
// mirroring original_source's intron_range=(0, sys.maxsize) default.
type RunOptions struct {
	Purge                      bool `mapstructure:"purge" yaml:"purge"`
	ExcludeCDS                 bool `mapstructure:"exclude_cds" yaml:"exclude_cds"`
	RemoveOverlappingFragments bool `mapstructure:"remove_overlapping_fragments" yaml:"remove_overlapping_fragments"`
	Threads                    int  `mapstructure:"threads" yaml:"threads"`
	SublociFromCDSOnly         bool `mapstructure:"subloci_from_cds_only" yaml:"subloci_from_cds_only"`
	MinIntronLength            int  `mapstructure:"min_intron_length" yaml:"min_intron_length"`
	MaxIntronLength            int  `mapstructure:"max_intron_length" yaml:"max_intron_length"`
}

// LogSettings is the log_settings section.
type LogSettings struct {
	Log      string   `mapstructure:"log" yaml:"log"`
	LogLevel LogLevel `mapstructure:"log_level" yaml:"log_level"`
}

// scoringDoc and requirementsDoc mirror the on-disk shape of the
// "scoring" and "requirements" keys before they are turned into
// scoring.Config. Kept private: callers only ever see the validated
// scoring.Config this package produces.
type scoringDoc struct {
	Parameters map[string]ruleDoc `yaml:"parameters"`
}

type ruleDoc struct {
	Rescaling  string   `yaml:"rescaling"`
	Value      float64  `yaml:"value"`
	Multiplier float64  `yaml:"multiplier"`
	Filter     *filterDoc `yaml:"filter"`
}

type filterDoc struct {
	Operator string  `yaml:"operator"`
	Value    float64 `yaml:"value"`
}

type requirementsDoc struct {
	Parameters map[string]checkDoc `yaml:"parameters"`
	Expression string              `yaml:"expression"`
}

type checkDoc struct {
	Operator string    `yaml:"operator"`
	Value    float64   `yaml:"value"`
	Values   []float64 `yaml:"values"`
}

// Document is the full configuration tree spec §6 describes.
type Document struct {
	Database     `mapstructure:",squash" yaml:",inline"`
	Input        string       `mapstructure:"input" yaml:"input"`
	Source       string       `mapstructure:"source" yaml:"source"`
	LociOut      string       `mapstructure:"loci_out" yaml:"loci_out"`
	MonolociOut  string       `mapstructure:"monoloci_out" yaml:"monoloci_out"`
	SublociOut   string       `mapstructure:"subloci_out" yaml:"subloci_out"`
	Scoring      scoringDoc      `mapstructure:"scoring" yaml:"scoring"`
	Requirements requirementsDoc `mapstructure:"requirements" yaml:"requirements"`
	Blast        map[string]any  `mapstructure:"blast" yaml:"blast"`
	ORFLoading   ORFLoading      `mapstructure:"orf_loading" yaml:"orf_loading"`
	ChimeraSplit ChimeraSplit    `mapstructure:"chimera_split" yaml:"chimera_split"`
	RunOptions   RunOptions      `mapstructure:"run_options" yaml:"run_options"`
	LogSettings  LogSettings     `mapstructure:"log_settings" yaml:"log_settings"`
}

// Resolved is everything the pipeline needs after a Document has been
// loaded and validated: the scoring engine's Config and the driver's
// locus.Options, plus the passthrough fields an output/pipeline stage
// reads directly.
type Resolved struct {
	Document Document
	Scoring  scoring.Config
	Locus    locus.Options
}

// Load reads a JSON or YAML configuration file at path via viper
// (format is inferred from the file extension, matching the teacher's
// cmd/vibe-vep/config.go convention), decodes it into a Document, and
// validates it.
func Load(path string) (*Resolved, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, errs.Newf(errs.InvalidConfiguration, "", "reading config %s: %v", path, err)
	}

	var doc Document
	if err := v.Unmarshal(&doc); err != nil {
		return nil, errs.Newf(errs.InvalidConfiguration, "", "decoding config %s: %v", path, err)
	}

	return resolve(doc)
}

// LoadYAML parses a raw YAML document directly (used by callers that
// already have the bytes in hand, e.g. embedded test fixtures), via
// yaml.v3's typed decode rather than viper's generic map decode — the
// scoring/requirements sub-documents need exact field typing that
// viper's AllSettings()-style map walk loses track of.
func LoadYAML(raw []byte) (*Resolved, error) {
	// Pre-set the threads default so an absent key resolves to 1 while an
	// explicit 0 still reaches validation, as on the viper path.
	doc := Document{RunOptions: RunOptions{Threads: 1}}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&doc); err != nil {
		return nil, errs.Newf(errs.InvalidConfiguration, "", "decoding yaml: %v", err)
	}
	return resolve(doc)
}

// noMaxIntronLength is the no-op upper bound original_source's
// intron_range=(0, sys.maxsize) defaults to: large enough that no real
// intron ever exceeds it, so num_introns_greater_than_max stays 0 until
// a caller actually configures max_intron_length.
const noMaxIntronLength = math.MaxInt32

func setDefaults(v *viper.Viper) {
	v.SetDefault("source", "Mikado")
	v.SetDefault("run_options.threads", 1)
	v.SetDefault("run_options.max_intron_length", noMaxIntronLength)
	v.SetDefault("log_settings.log_level", string(LogInfo))
}

func resolve(doc Document) (*Resolved, error) {
	if doc.Source == "" {
		doc.Source = "Mikado"
	}
	if doc.LogSettings.LogLevel == "" {
		doc.LogSettings.LogLevel = LogInfo
	}
	if doc.RunOptions.MaxIntronLength == 0 {
		doc.RunOptions.MaxIntronLength = noMaxIntronLength
	}

	var faults []string

	if doc.Database.DBType != "" {
		switch doc.Database.DBType {
		case DBSQLite, DBMySQL, DBPostgreSQL:
		default:
			faults = append(faults, fmt.Sprintf("dbtype %q is not one of sqlite, mysql, postgresql", doc.Database.DBType))
		}
	}

	switch doc.LogSettings.LogLevel {
	case LogInfo, LogWarn, LogError, LogCritical, LogDebug:
	default:
		faults = append(faults, fmt.Sprintf("log_settings.log_level %q is not one of INFO, WARN, ERROR, CRITICAL, DEBUG", doc.LogSettings.LogLevel))
	}

	if doc.RunOptions.Threads < 1 {
		faults = append(faults, "run_options.threads must be >= 1")
	}
	if doc.ORFLoading.MinimalSecondaryORFLength < 0 {
		faults = append(faults, "orf_loading.minimal_secondary_orf_length must be >= 0")
	}
	if doc.RunOptions.MinIntronLength < 0 {
		faults = append(faults, "run_options.min_intron_length must be >= 0")
	}
	if doc.RunOptions.MaxIntronLength < doc.RunOptions.MinIntronLength {
		faults = append(faults, "run_options.max_intron_length must be >= min_intron_length")
	}

	if doc.ChimeraSplit.Execute {
		bp := doc.ChimeraSplit.BlastParams
		if bp.MinimalHSPOverlap < 0 || bp.MinimalHSPOverlap > 1 {
			faults = append(faults, "chimera_split.blast_params.minimal_hsp_overlap must be in [0,1]")
		}
		switch bp.Leniency {
		case LeniencyStringent, LeniencyPermissive, LeniencyLenient, "":
		default:
			faults = append(faults, fmt.Sprintf("chimera_split.blast_params.leniency %q is not one of STRINGENT, PERMISSIVE, LENIENT", bp.Leniency))
		}
	}

	scoringCfg, scoringFaults := buildScoringConfig(doc)
	scoringCfg.Bounds = metrics.Bounds{
		MinIntronLength: doc.RunOptions.MinIntronLength,
		MaxIntronLength: doc.RunOptions.MaxIntronLength,
	}
	faults = append(faults, scoringFaults...)

	if len(faults) > 0 {
		sort.Strings(faults)
		return nil, errs.Newf(errs.InvalidConfiguration, "", "invalid configuration:\n\t%s", joinLines(faults))
	}

	if err := scoringCfg.Validate(); err != nil {
		return nil, err
	}

	return &Resolved{
		Document: doc,
		Scoring:  scoringCfg,
		Locus: locus.Options{
			Purge:              doc.RunOptions.Purge,
			SublociFromCDSOnly: doc.RunOptions.SublociFromCDSOnly,
		},
	}, nil
}

func buildScoringConfig(doc Document) (scoring.Config, []string) {
	var faults []string

	rules := make(map[metrics.Metric]scoring.Rule, len(doc.Scoring.Parameters))
	for name, rd := range doc.Scoring.Parameters {
		m := metrics.Metric(name)
		if !metrics.Exists(m) {
			faults = append(faults, fmt.Sprintf("scoring parameter %q is not a recognized metric", name))
			continue
		}
		rescale, err := parseRescaling(rd.Rescaling)
		if err != nil {
			faults = append(faults, fmt.Sprintf("scoring parameter %q: %v", name, err))
			continue
		}
		rule := scoring.Rule{
			Metric:     m,
			Rescaling:  rescale,
			Target:     rd.Value,
			Multiplier: rd.Multiplier,
		}
		if rd.Filter != nil {
			op, err := scoring.ValidateOperator(rd.Filter.Operator)
			if err != nil {
				faults = append(faults, fmt.Sprintf("scoring parameter %q filter: %v", name, err))
			} else {
				rule.Filter = &scoring.Check{Operator: op, Value: rd.Filter.Value}
			}
		}
		rules[m] = rule
	}

	parameters := make(map[string]scoring.Check, len(doc.Requirements.Parameters))
	var names []string
	for name, cd := range doc.Requirements.Parameters {
		op, err := scoring.ValidateOperator(cd.Operator)
		if err != nil {
			faults = append(faults, fmt.Sprintf("requirements parameter %q: %v", name, err))
			continue
		}
		parameters[name] = scoring.Check{Operator: op, Value: cd.Value, Values: cd.Values}
		names = append(names, name)
	}
	sort.Strings(names)

	var expr scoring.Expr
	if doc.Requirements.Expression != "" {
		parsed, err := scoring.ParseExpression(doc.Requirements.Expression)
		if err != nil {
			faults = append(faults, fmt.Sprintf("requirements.expression: %v", err))
		} else {
			expr = parsed
		}
	} else {
		expr = scoring.DefaultExpression(names)
	}

	return scoring.Config{
		Rules: rules,
		Requirements: scoring.Requirements{
			Parameters: parameters,
			Expression: expr,
		},
	}, faults
}

func parseRescaling(s string) (scoring.Rescaling, error) {
	switch scoring.Rescaling(s) {
	case scoring.RescaleMax, scoring.RescaleMin, scoring.RescaleTarget:
		return scoring.Rescaling(s), nil
	default:
		return "", fmt.Errorf("rescaling must be one of max, min, target, got %q", s)
	}
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n\t"
		}
		out += l
	}
	return out
}
