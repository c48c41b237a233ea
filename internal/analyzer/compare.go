package analyzer

import (
	"sort"
	"time"

	"github.com/blackwell-systems/basketmine/internal/mining"
)

// Compare builds a comparison from an orchestrator report.
func Compare(report *mining.Report) *Comparison {
	c := &Comparison{Agree: true}

	var ref *mining.Result
	for _, name := range report.Order {
		outcome := report.Outcomes[name]
		row := StrategyRow{Strategy: name}
		if outcome.Err != nil {
			row.Err = outcome.Err.Error()
			c.Rows = append(c.Rows, row)
			continue
		}

		res := outcome.Result
		row.Itemsets = res.Table.Len()
		row.Rules = len(res.Rules)
		row.Candidates = res.Table.Candidates()
		row.Elapsed = res.Elapsed
		row.RulesElapsed = res.RulesElapsed
		c.Rows = append(c.Rows, row)

		if ref == nil {
			ref = res
			c.Reference = name
			continue
		}
		if !ref.Table.Equal(res.Table) {
			c.Agree = false
			c.Disagreements = append(c.Disagreements, Disagreement{
				Strategy: name,
				Diffs:    ref.Table.Diff(res.Table),
			})
		}
	}

	fillSpeedups(c)
	return c
}

// fillSpeedups sets Baseline to the slowest successful row and each
// successful row's Speedup relative to it.
func fillSpeedups(c *Comparison) {
	var slowest time.Duration
	for _, r := range c.Rows {
		if r.Err == "" && (c.Baseline == "" || r.Elapsed > slowest) {
			slowest = r.Elapsed
			c.Baseline = r.Strategy
		}
	}
	for i := range c.Rows {
		r := &c.Rows[i]
		if r.Err != "" {
			continue
		}
		if r.Elapsed > 0 {
			r.Speedup = float64(slowest) / float64(r.Elapsed)
		} else {
			r.Speedup = 1
		}
	}
}

// CandidateReduction lines up the per-size candidate counts of two tables.
// Sizes evaluated by only one of them report zero for the other.
func CandidateReduction(baseline, other *mining.Table) []LevelReduction {
	bySize := make(map[int]*LevelReduction)
	var sizes []int
	get := func(k int) *LevelReduction {
		l, ok := bySize[k]
		if !ok {
			l = &LevelReduction{Size: k}
			bySize[k] = l
			sizes = append(sizes, k)
		}
		return l
	}

	for _, l := range baseline.Levels {
		get(l.Size).Baseline = l.Candidates
	}
	for _, l := range other.Levels {
		r := get(l.Size)
		r.Candidates = l.Candidates
		r.Frequent = l.Frequent
	}

	sort.Ints(sizes)
	out := make([]LevelReduction, len(sizes))
	for i, k := range sizes {
		out[i] = *bySize[k]
	}
	return out
}
