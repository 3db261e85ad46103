package scoring

import (
	"math"

	"github.com/mikado-go/mikado/internal/metrics"
	"github.com/mikado-go/mikado/internal/transcript"
)

// Score implements spec §4.D end to end: for every configured metric,
// build the candidate pool, rescale, multiply, and sum into
// transcript.Score; then zero out any transcript failing the
// requirements expression. Transcripts must already be finalized and
// have their neighbor-relative metrics set by the enclosing locus.
func Score(cfg Config, pool []*transcript.Transcript) {
	for _, t := range pool {
		t.Score = 0
	}

	for _, rule := range cfg.Rules {
		scoreRule(rule, pool, cfg.Bounds)
	}

	applyRequirements(cfg, pool)
}

func scoreRule(rule Rule, pool []*transcript.Transcript, bounds metrics.Bounds) {
	type sample struct {
		t     *transcript.Transcript
		value float64
	}

	var candidates []sample
	for _, t := range pool {
		v, ok := metrics.Compute(rule.Metric, t, bounds)
		if !ok {
			continue
		}
		if rule.Filter != nil && !rule.Filter.Evaluate(v) {
			continue // filtered-out transcripts receive 0 for this metric
		}
		candidates = append(candidates, sample{t: t, value: v})
	}

	if len(candidates) == 0 {
		return
	}

	min, max := candidates[0].value, candidates[0].value
	for _, c := range candidates[1:] {
		if c.value < min {
			min = c.value
		}
		if c.value > max {
			max = c.value
		}
	}

	for _, c := range candidates {
		var rescaled float64
		switch {
		case len(candidates) == 1 || max == min:
			rescaled = 1
		case rule.Rescaling == RescaleMax:
			rescaled = (c.value - min) / (max - min)
		case rule.Rescaling == RescaleMin:
			rescaled = (max - c.value) / (max - min)
		case rule.Rescaling == RescaleTarget:
			denom := math.Abs(max - rule.Target)
			if alt := math.Abs(rule.Target - min); alt > denom {
				denom = alt
			}
			if denom == 0 {
				rescaled = 1
			} else {
				rescaled = 1 - math.Abs(c.value-rule.Target)/denom
			}
		}
		c.t.Score += rescaled * rule.Multiplier
	}
}

// applyRequirements evaluates cfg.Requirements.Expression per
// transcript, substituting each named parameter's own Check against
// its same-named metric, and zeroes the score of any transcript for
// which the expression is false.
func applyRequirements(cfg Config, pool []*transcript.Transcript) {
	if cfg.Requirements.Expression == nil || len(cfg.Requirements.Parameters) == 0 {
		return
	}
	for _, t := range pool {
		vars := make(map[string]bool, len(cfg.Requirements.Parameters))
		for name, check := range cfg.Requirements.Parameters {
			v, ok := metrics.Compute(metrics.Metric(name), t, cfg.Bounds)
			if !ok {
				vars[name] = false
				continue
			}
			vars[name] = check.Evaluate(v)
		}
		if !cfg.Requirements.Expression.Eval(vars) {
			t.Score = 0
		}
	}
}
