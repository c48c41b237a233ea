package analyzer

import "time"

// StrategyRow summarizes one strategy in a comparison.
type StrategyRow struct {
	Strategy     string
	Itemsets     int
	Rules        int
	Candidates   int
	Elapsed      time.Duration
	RulesElapsed time.Duration
	Speedup      float64 // baseline elapsed / this elapsed; 0 when failed
	Err          string  // empty on success
}

// Disagreement lists how one strategy's table differs from the reference.
type Disagreement struct {
	Strategy string
	Diffs    []string
}

// Comparison is the side-by-side view of several strategies over the same
// transactions and thresholds.
type Comparison struct {
	Rows          []StrategyRow
	Reference     string // first successful strategy; tables are checked against it
	Baseline      string // slowest successful strategy; speedups are relative to it
	Agree         bool   // every successful strategy produced the same table
	Disagreements []Disagreement
}

// Succeeded returns the number of strategies that finished without error.
func (c *Comparison) Succeeded() int {
	n := 0
	for _, r := range c.Rows {
		if r.Err == "" {
			n++
		}
	}
	return n
}

// Fastest returns the successful row with the lowest elapsed time.
func (c *Comparison) Fastest() (StrategyRow, bool) {
	var best StrategyRow
	found := false
	for _, r := range c.Rows {
		if r.Err != "" {
			continue
		}
		if !found || r.Elapsed < best.Elapsed {
			best, found = r, true
		}
	}
	return best, found
}

// LevelReduction compares candidate counts of two strategies at one size.
type LevelReduction struct {
	Size       int
	Baseline   int // candidates counted by the baseline strategy
	Candidates int // candidates counted by the compared strategy
	Frequent   int
}

// Saved returns the fraction of baseline candidates that were never counted.
func (l LevelReduction) Saved() float64 {
	if l.Baseline == 0 {
		return 0
	}
	return 1 - float64(l.Candidates)/float64(l.Baseline)
}

// StrategyStats aggregates the recorded runs of one strategy.
type StrategyStats struct {
	Strategy    string
	Runs        int
	Failures    int
	MeanElapsed time.Duration
	BestElapsed time.Duration
	LastRun     time.Time
}
