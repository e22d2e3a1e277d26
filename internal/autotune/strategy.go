package autotune

import "math"

// FullSearch tests every applicable candidate every phase — the baseline
// strategy.
type FullSearch struct{}

func (FullSearch) Name() string { return "full-search" }

func (FullSearch) Candidates(space []Config, _ *History) []Config {
	return append([]Config(nil), space...)
}

// Predictive reuses previous winners once enough history has accumulated:
// only configurations within RelativeBand of the best known reduced time, or
// not tested in StaleAfter phases, are retested, with a stale-forcing rule
// so no candidate goes untested indefinitely.
type Predictive struct {
	Reduce       ReduceStrategy
	RelativeBand float64 // e.g. 0.2 retests anything within 20% of the best
	StaleAfter   int     // phases; 0 uses a default of 5
	WarmupPhases int     // phases before the band filter kicks in; 0 uses 3
}

func (p Predictive) Name() string { return "predictive" }

func (p Predictive) Candidates(space []Config, h *History) []Config {
	staleAfter := p.StaleAfter
	if staleAfter <= 0 {
		staleAfter = 5
	}
	warmup := p.WarmupPhases
	if warmup <= 0 {
		warmup = 3
	}
	if h.phase < warmup {
		return append([]Config(nil), space...)
	}

	bestTime := math.Inf(1)
	for _, cfg := range space {
		if d, ok := h.reduced(cfg, p.Reduce); ok && float64(d) < bestTime {
			bestTime = float64(d)
		}
	}
	if math.IsInf(bestTime, 1) {
		return append([]Config(nil), space...)
	}

	var out []Config
	for _, cfg := range space {
		since := h.phasesSinceTested(cfg)
		if since < 0 || since >= staleAfter {
			out = append(out, cfg)
			continue
		}
		if d, ok := h.reduced(cfg, p.Reduce); ok {
			if (float64(d)-bestTime)/bestTime <= p.RelativeBand {
				out = append(out, cfg)
			}
		}
	}
	if len(out) == 0 {
		return append([]Config(nil), space...)
	}
	return out
}

// Bayesian picks the single candidate with the best lowerConfidenceBound
// acquisition value: reduced mean minus Beta * an uncertainty term that
// shrinks with evidence count, so unexplored candidates stay attractive
// until they accumulate samples.
type Bayesian struct {
	Reduce   ReduceStrategy
	Beta     float64 // exploration weight; 0 uses 1.0
	evidence map[Config]int
}

func (b *Bayesian) Name() string { return "bayesian" }

func (b *Bayesian) Candidates(space []Config, h *History) []Config {
	if b.evidence == nil {
		b.evidence = make(map[Config]int)
	}
	beta := b.Beta
	if beta == 0 {
		beta = 1.0
	}

	var best Config
	bestScore := math.Inf(1)
	found := false
	for _, cfg := range space {
		n := b.evidence[cfg]
		mean, ok := h.reduced(cfg, b.Reduce)
		var score float64
		if !ok {
			score = math.Inf(-1) // untested candidates win outright
		} else {
			uncertainty := 1.0 / math.Sqrt(float64(n+1))
			score = float64(mean) - beta*uncertainty*float64(mean)
		}
		if !found || score < bestScore {
			best, bestScore, found = cfg, score, true
		}
	}
	if !found {
		return nil
	}
	b.evidence[best]++
	return []Config{best}
}

// LiveInfo is the runtime snapshot a rule-based strategy consults: density
// and homogeneity of the local particle distribution.
type LiveInfo struct {
	ParticleCount int
	Density       float64
	Homogeneity   float64 // 0 = clustered, 1 = uniform
}

// Rule is one clause of a RuleBased program: a predicate over LiveInfo and
// the configuration it prefers when the predicate holds.
type Rule struct {
	When   func(LiveInfo) bool
	Prefer func(cfg Config) bool
}

// RuleBased orders configurations by a small compiled set of rules over
// LiveInfo instead of measured history — useful for the very first phase,
// before any timing data exists.
type RuleBased struct {
	Rules []Rule
	Info  LiveInfo
}

func (r RuleBased) Name() string { return "rule-based" }

func (r RuleBased) Candidates(space []Config, _ *History) []Config {
	var preferred, rest []Config
	for _, cfg := range space {
		matched := false
		for _, rule := range r.Rules {
			if rule.When(r.Info) && rule.Prefer(cfg) {
				matched = true
				break
			}
		}
		if matched {
			preferred = append(preferred, cfg)
		} else {
			rest = append(rest, cfg)
		}
	}
	if len(preferred) == 0 {
		return append([]Config(nil), space...)
	}
	return append(preferred, rest...)
}
