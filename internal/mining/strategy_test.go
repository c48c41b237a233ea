package mining

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategies_ScenarioStore(t *testing.T) {
	want := map[string]int{
		"a":   3,
		"b":   3,
		"c":   2,
		"a,b": 2,
		"b,c": 2,
	}

	for _, s := range allStrategies() {
		t.Run(s.Name(), func(t *testing.T) {
			table := mine(t, s, scenarioStore(), 0.5)

			assert.Equal(t, 4, table.N())
			assert.Equal(t, 2, table.MinCount())
			assert.Equal(t, want, counts(table))
			assert.Equal(t, 2, table.MaxSize())

			_, ok := table.Count(NewItemset("a", "b", "c"))
			assert.False(t, ok, "{a,b,c} occurs once and is not frequent")

			sup, ok := table.Support(NewItemset("a"))
			require.True(t, ok)
			assert.InDelta(t, 0.75, sup, 1e-12)
		})
	}
}

func TestStrategies_EmptyStore(t *testing.T) {
	empty := NewTransactions(nil)
	for _, s := range allStrategies() {
		t.Run(s.Name(), func(t *testing.T) {
			_, err := s.Mine(context.Background(), empty, 0.5)
			assert.ErrorIs(t, err, ErrEmptyTransactionStore)

			_, err = s.Mine(context.Background(), nil, 0.5)
			assert.ErrorIs(t, err, ErrEmptyTransactionStore)
		})
	}
}

func TestStrategies_InvalidThreshold(t *testing.T) {
	for _, s := range allStrategies() {
		for _, v := range []float64{0, -0.1, 1.5, 20} {
			_, err := s.Mine(context.Background(), scenarioStore(), v)
			assert.ErrorIs(t, err, ErrInvalidThreshold, "%s with min_support=%g", s.Name(), v)
		}

		// The threshold is checked before the store is looked at.
		_, err := s.Mine(context.Background(), NewTransactions(nil), 1.5)
		assert.ErrorIs(t, err, ErrInvalidThreshold, s.Name())
	}
}

func TestStrategies_SupportOfOne(t *testing.T) {
	txns := NewTransactions([][]string{{"a", "b"}, {"a", "b", "c"}, {"a", "b"}})
	for _, s := range allStrategies() {
		table := mine(t, s, txns, 1)
		assert.Equal(t, map[string]int{"a": 3, "b": 3, "a,b": 3}, counts(table), s.Name())
	}
}

func TestStrategies_MinCountFloorsToOne(t *testing.T) {
	// 0.1 * 4 floors to 0, so every occurring itemset is frequent.
	for _, s := range allStrategies() {
		table := mine(t, s, scenarioStore(), 0.1)
		assert.Equal(t, 1, table.MinCount())
		c, ok := table.Count(NewItemset("a", "b", "c"))
		require.True(t, ok, s.Name())
		assert.Equal(t, 1, c)
		assert.Equal(t, 7, table.Len(), s.Name())
	}
}

func TestStrategies_NothingFrequent(t *testing.T) {
	txns := NewTransactions([][]string{{"a"}, {"b"}, {"c"}, {"d"}})
	for _, s := range allStrategies() {
		table := mine(t, s, txns, 0.5)
		assert.Zero(t, table.Len(), s.Name())
		assert.Zero(t, table.MaxSize(), s.Name())
	}
}

func TestStrategies_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, s := range allStrategies() {
		_, err := s.Mine(ctx, scenarioStore(), 0.5)
		assert.ErrorIs(t, err, context.Canceled, s.Name())
	}
}

func TestStrategies_NilContext(t *testing.T) {
	var ctx context.Context
	for _, s := range allStrategies() {
		table, err := s.Mine(ctx, scenarioStore(), 0.5)
		require.NoError(t, err, s.Name())
		assert.Equal(t, 5, table.Len(), s.Name())
	}
}

func TestBruteForce_LevelStats(t *testing.T) {
	table := mine(t, BruteForce{}, scenarioStore(), 0.5)
	assert.Equal(t, []LevelStats{
		{Size: 1, Candidates: 3, Frequent: 3},
		{Size: 2, Candidates: 3, Frequent: 2},
		{Size: 3, Candidates: 1, Frequent: 0},
	}, table.Levels)
	assert.Equal(t, 7, table.Candidates())
}

func TestApriori_LevelStats(t *testing.T) {
	table := mine(t, Apriori{}, scenarioStore(), 0.5)
	// {a,b} and {b,c} share no 1-item prefix, so no size-3 candidate exists.
	assert.Equal(t, []LevelStats{
		{Size: 1, Candidates: 3, Frequent: 3},
		{Size: 2, Candidates: 3, Frequent: 2},
	}, table.Levels)
}

func TestFPGrowth_LevelStats(t *testing.T) {
	table := mine(t, FPGrowth{}, scenarioStore(), 0.5)
	assert.Equal(t, []LevelStats{
		{Size: 1, Candidates: 3, Frequent: 3},
		{Size: 2, Candidates: 2, Frequent: 2},
	}, table.Levels)
}

func TestAprioriGen(t *testing.T) {
	prev := []Itemset{
		{"a", "b"},
		{"a", "c"},
		{"a", "d"},
		{"b", "c"},
		{"c", "d"},
	}
	got := aprioriGen(prev)

	// {a,b,d} is pruned because {b,d} is not frequent.
	assert.Equal(t, []Itemset{{"a", "b", "c"}, {"a", "c", "d"}}, got)
}

func TestFPTree_HeaderOrder(t *testing.T) {
	base := []prefixPath{
		{items: []string{"a", "b"}, count: 1},
		{items: []string{"b", "c"}, count: 2},
		{items: []string{"d"}, count: 1},
	}
	tree := buildFPTree(base, 2)

	assert.Equal(t, map[string]int{"b": 3, "c": 2}, tree.counts)
	assert.Equal(t, []string{"c", "b"}, tree.leastFrequentFirst())

	paths := tree.prefixPaths("c")
	require.Len(t, paths, 1)
	assert.Equal(t, []string{"b"}, paths[0].items)
	assert.Equal(t, 2, paths[0].count)
}
