package scoring

import (
	"fmt"
	"sort"

	"github.com/mikado-go/mikado/internal/errs"
	"github.com/mikado-go/mikado/internal/metrics"
)

// Rescaling is one of the three rescale functions spec §4.D defines.
type Rescaling string

const (
	RescaleMax    Rescaling = "max"
	RescaleMin    Rescaling = "min"
	RescaleTarget Rescaling = "target"
)

// Rule is one entry of the configured "scoring" section.
type Rule struct {
	Metric     metrics.Metric
	Rescaling  Rescaling
	Target     float64 // only meaningful when Rescaling == RescaleTarget
	Multiplier float64
	Filter     *Check // restricts the rescaling pool; nil means no filter
}

// Requirements is spec §4.D's "requirements" section.
type Requirements struct {
	Parameters map[string]Check
	Expression Expr
}

// Config is the validated subset of spec §6's configuration document
// that the scoring engine consumes.
type Config struct {
	Rules        map[metrics.Metric]Rule
	Requirements Requirements
	Bounds       metrics.Bounds
}

// Validate checks a Config for the faults spec §4.D and §7 describe,
// aggregating every fault into a single InvalidConfiguration error
// rather than stopping at the first one, following the original
// source's shanghai_lib/json_utils.py aggregation style.
func (c Config) Validate() error {
	var faults []string

	if len(c.Rules) == 0 {
		faults = append(faults, "no parameters specified for scoring")
	}
	for name, rule := range c.Rules {
		if !metrics.Exists(rule.Metric) {
			faults = append(faults, fmt.Sprintf("scoring parameter %q is not a recognized metric", name))
		}
		switch rule.Rescaling {
		case RescaleMax, RescaleMin:
		case RescaleTarget:
			// Target value is carried on the rule itself; nothing further to check.
		default:
			faults = append(faults, fmt.Sprintf("scoring parameter %q: rescaling must be one of max, min, target", name))
		}
		if rule.Multiplier == 0 {
			faults = append(faults, fmt.Sprintf("scoring parameter %q: multiplier must be non-zero", name))
		}
	}

	for name, check := range c.Requirements.Parameters {
		if _, err := ValidateOperator(string(check.Operator)); err != nil {
			faults = append(faults, fmt.Sprintf("requirements parameter %q: %v", name, err))
		}
	}

	if len(faults) > 0 {
		sort.Strings(faults)
		return errs.Newf(errs.InvalidConfiguration, "", "invalid scoring/requirements configuration:\n\t%s", joinLines(faults))
	}
	return nil
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
