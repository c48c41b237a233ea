package analyzer

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// CompareBatch rebuilds a comparison from the stored runs of one batch.
// Tables are compared through their stored itemset rows. batchID may be a
// unique prefix.
func (a *Analyzer) CompareBatch(batchID string) (*Comparison, error) {
	batchID, err := a.store.ResolveBatch(batchID)
	if err != nil {
		return nil, err
	}
	runs, err := a.store.ListBatch(batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load batch %s: %w", batchID, err)
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("batch %s has no runs", batchID)
	}

	c := &Comparison{Agree: true}
	var ref map[string]int
	for _, run := range runs {
		c.Rows = append(c.Rows, StrategyRow{
			Strategy:     run.Strategy,
			Itemsets:     run.ItemsetCount,
			Rules:        run.RuleCount,
			Candidates:   run.Candidates,
			Elapsed:      run.Elapsed,
			RulesElapsed: run.RulesElapsed,
			Err:          run.Error,
		})
		if run.Failed() {
			continue
		}

		rows, err := a.store.GetItemsets(run.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load itemsets for run %s: %w", run.ID, err)
		}
		counts := make(map[string]int, len(rows))
		for _, r := range rows {
			counts[r.Key()] = r.Count
		}

		if ref == nil {
			ref = counts
			c.Reference = run.Strategy
			continue
		}
		if diffs := diffCounts(ref, counts); len(diffs) > 0 {
			c.Agree = false
			c.Disagreements = append(c.Disagreements, Disagreement{Strategy: run.Strategy, Diffs: diffs})
		}
	}

	fillSpeedups(c)
	return c, nil
}

// History aggregates the recorded runs of a dataset per strategy, ordered by
// mean elapsed time.
func (a *Analyzer) History(dataset string) ([]StrategyStats, error) {
	runs, err := a.store.ListRuns(dataset, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	byStrategy := make(map[string]*StrategyStats)
	totals := make(map[string]time.Duration)
	for _, run := range runs {
		s, ok := byStrategy[run.Strategy]
		if !ok {
			s = &StrategyStats{Strategy: run.Strategy}
			byStrategy[run.Strategy] = s
		}
		s.Runs++
		if run.CreatedAt.After(s.LastRun) {
			s.LastRun = run.CreatedAt
		}
		if run.Failed() {
			s.Failures++
			continue
		}
		totals[run.Strategy] += run.Elapsed
		if s.BestElapsed == 0 || run.Elapsed < s.BestElapsed {
			s.BestElapsed = run.Elapsed
		}
	}

	out := make([]StrategyStats, 0, len(byStrategy))
	for name, s := range byStrategy {
		if ok := s.Runs - s.Failures; ok > 0 {
			s.MeanElapsed = totals[name] / time.Duration(ok)
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MeanElapsed != out[j].MeanElapsed {
			return out[i].MeanElapsed < out[j].MeanElapsed
		}
		return out[i].Strategy < out[j].Strategy
	})
	return out, nil
}

func diffCounts(ref, other map[string]int) []string {
	var diffs []string
	for k, c := range ref {
		oc, ok := other[k]
		switch {
		case !ok:
			diffs = append(diffs, fmt.Sprintf("{%s} only in reference (count %d)", display(k), c))
		case oc != c:
			diffs = append(diffs, fmt.Sprintf("{%s} count %d vs %d", display(k), c, oc))
		}
	}
	for k, c := range other {
		if _, ok := ref[k]; !ok {
			diffs = append(diffs, fmt.Sprintf("{%s} only in compared run (count %d)", display(k), c))
		}
	}
	sort.Strings(diffs)
	return diffs
}

// display renders an itemset key as its comma separated members.
func display(key string) string {
	var items []string
	if err := json.Unmarshal([]byte(key), &items); err != nil {
		return key
	}
	return strings.Join(items, ", ")
}
