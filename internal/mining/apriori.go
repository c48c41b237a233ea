package mining

import (
	"context"
	"fmt"
)

// Apriori mines level by level. Size-k candidates are joined only from
// frequent size-(k-1) itemsets and pruned when any (k-1)-subset is not
// frequent, so far fewer candidates reach the counting scan than with
// BruteForce while the resulting table is identical.
type Apriori struct{}

// Name returns "apriori".
func (Apriori) Name() string { return StrategyApriori }

// Mine implements Strategy.
func (Apriori) Mine(ctx context.Context, txns *Transactions, minSupport float64) (*Table, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	minCount, err := prepare(txns, minSupport)
	if err != nil {
		return nil, err
	}

	table := newTable(txns.Len(), minCount)

	// Level 1: one scan counts every item.
	counts := countItems(txns)
	items := txns.Items()
	first := LevelStats{Size: 1, Candidates: len(items)}
	var frequent []Itemset
	for _, it := range items {
		if c := counts[it]; c >= minCount {
			set := Itemset{it}
			table.add(set, c)
			frequent = append(frequent, set)
			first.Frequent++
		}
	}
	table.Levels = append(table.Levels, first)

	for k := 2; len(frequent) > 0; k++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("apriori stopped before size %d: %w", k, err)
		}

		candidates := aprioriGen(frequent)
		if len(candidates) == 0 {
			break
		}

		level := LevelStats{Size: k, Candidates: len(candidates)}
		next := make([]Itemset, 0, len(candidates))
		for _, c := range candidates {
			if n := countSupport(txns, c); n >= minCount {
				table.add(c, n)
				next = append(next, c)
				level.Frequent++
			}
		}
		table.Levels = append(table.Levels, level)
		frequent = next
	}

	return table, nil
}

// aprioriGen joins and prunes. prev must hold same-size itemsets in
// lexicographic order; the output keeps that order.
//
// Join: two itemsets sharing their first k-2 items combine into one of size k.
// Every k-itemset whose (k-1)-subsets are all frequent is produced this way,
// by the two subsets that drop one of its last two items.
//
// Prune: drop a candidate if any other (k-1)-subset is missing from prev.
func aprioriGen(prev []Itemset) []Itemset {
	prevSet := make(map[string]struct{}, len(prev))
	for _, s := range prev {
		prevSet[s.Key()] = struct{}{}
	}

	var out []Itemset
	for i := 0; i < len(prev); i++ {
		for j := i + 1; j < len(prev); j++ {
			if !samePrefix(prev[i], prev[j]) {
				// Sorted input: no later j shares the prefix either.
				break
			}
			size := len(prev[i]) + 1
			cand := make(Itemset, size)
			copy(cand, prev[i])
			cand[size-1] = prev[j][size-2]

			if hasInfrequentSubset(cand, prevSet) {
				continue
			}
			out = append(out, cand)
		}
	}
	return out
}

// samePrefix reports whether a and b agree on all but their last item.
func samePrefix(a, b Itemset) bool {
	for i := 0; i < len(a)-1; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// hasInfrequentSubset checks the (k-1)-subsets not already known to be
// frequent from the join, i.e. those dropping one of the first k-2 items.
func hasInfrequentSubset(cand Itemset, prevSet map[string]struct{}) bool {
	sub := make(Itemset, len(cand)-1)
	for skip := 0; skip < len(cand)-2; skip++ {
		sub = sub[:0]
		sub = append(sub, cand[:skip]...)
		sub = append(sub, cand[skip+1:]...)
		if _, ok := prevSet[sub.Key()]; !ok {
			return true
		}
	}
	return false
}
