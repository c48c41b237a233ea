package mining

import (
	"context"
	"fmt"
)

// Strategy names. They are stable keys for reports, storage and export files.
const (
	StrategyBrute    = "brute"
	StrategyApriori  = "apriori"
	StrategyFPGrowth = "fpgrowth"
)

// Strategy mines a Frequent-Itemset Table from a transaction store. Mine
// treats a nil ctx as context.Background().
type Strategy interface {
	Name() string
	Mine(ctx context.Context, txns *Transactions, minSupport float64) (*Table, error)
}

// BruteForce enumerates every combination of the item universe, one size at
// a time, and counts each one with a full scan. It is the slow ground truth
// the other strategies are checked against.
type BruteForce struct{}

// Name returns "brute".
func (BruteForce) Name() string { return StrategyBrute }

// Mine implements Strategy.
func (BruteForce) Mine(ctx context.Context, txns *Transactions, minSupport float64) (*Table, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	minCount, err := prepare(txns, minSupport)
	if err != nil {
		return nil, err
	}

	items := txns.Items()
	table := newTable(txns.Len(), minCount)

	for k := 1; k <= len(items); k++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("brute force stopped before size %d: %w", k, err)
		}

		level := LevelStats{Size: k}
		forEachCombination(items, k, func(c Itemset) bool {
			level.Candidates++
			if n := countSupport(txns, c); n >= minCount {
				table.add(c.Clone(), n)
				level.Frequent++
			}
			return true
		})
		table.Levels = append(table.Levels, level)

		if level.Frequent == 0 {
			break
		}
	}

	return table, nil
}
