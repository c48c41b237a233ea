package mining

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// scenarioStore is the four-basket store used across the engine tests.
func scenarioStore() *Transactions {
	return NewTransactions([][]string{
		{"a", "b"},
		{"a", "b", "c"},
		{"a"},
		{"b", "c"},
	})
}

// randomStore returns a reproducible store of n baskets drawn from a
// universe of size items with skewed popularity.
func randomStore(seed int64, n, items, maxBasket int) *Transactions {
	rng := rand.New(rand.NewSource(seed))
	universe := make([]string, items)
	for i := range universe {
		universe[i] = fmt.Sprintf("item%02d", i)
	}

	raw := make([][]string, n)
	for i := range raw {
		size := 1 + rng.Intn(maxBasket)
		basket := make([]string, 0, size)
		for j := 0; j < size; j++ {
			// Squaring biases picks toward low indexes.
			f := rng.Float64()
			basket = append(basket, universe[int(f*f*float64(items))])
		}
		raw[i] = basket
	}
	return NewTransactions(raw)
}

func allStrategies() []Strategy {
	return []Strategy{BruteForce{}, Apriori{}, FPGrowth{}}
}

func mine(t *testing.T, s Strategy, txns *Transactions, minSupport float64) *Table {
	t.Helper()
	table, err := s.Mine(context.Background(), txns, minSupport)
	require.NoError(t, err, "strategy %s", s.Name())
	return table
}

func counts(table *Table) map[string]int {
	out := make(map[string]int, table.Len())
	for _, e := range table.Entries() {
		out[e.Items.Join(",")] = e.Count
	}
	return out
}

type panicStrategy struct{}

func (panicStrategy) Name() string { return "panics" }

func (panicStrategy) Mine(context.Context, *Transactions, float64) (*Table, error) {
	panic("boom")
}
