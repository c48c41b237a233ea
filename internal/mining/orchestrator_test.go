package mining

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrchestrator_DefaultRunsAll(t *testing.T) {
	o := DefaultOrchestrator()
	assert.Equal(t, []string{StrategyBrute, StrategyApriori, StrategyFPGrowth}, o.Strategies())

	report := o.Run(context.Background(), Request{
		Transactions:  scenarioStore(),
		MinSupport:    0.5,
		MinConfidence: 0.6,
	})

	assert.Equal(t, []string{StrategyBrute, StrategyApriori, StrategyFPGrowth}, report.Order)
	assert.Equal(t, 4, report.N)
	assert.Empty(t, report.Errors())
	require.Len(t, report.Succeeded(), 3)

	base, ok := report.Result(StrategyBrute)
	require.True(t, ok)
	for _, res := range report.Succeeded() {
		assert.True(t, base.Table.Equal(res.Table), "%s disagrees: %v", res.Strategy, base.Table.Diff(res.Table))
		assert.Equal(t, ruleKeys(base.Rules), ruleKeys(res.Rules))
		assert.GreaterOrEqual(t, res.Elapsed.Nanoseconds(), int64(0))
	}
}

func TestOrchestrator_Resolve(t *testing.T) {
	o := DefaultOrchestrator()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty means all", nil, []string{"brute", "apriori", "fpgrowth"}},
		{"all keyword", []string{"all"}, []string{"brute", "apriori", "fpgrowth"}},
		{"request order kept", []string{"fpgrowth", "brute"}, []string{"fpgrowth", "brute"}},
		{"case and spaces", []string{" Apriori "}, []string{"apriori"}},
		{"duplicates", []string{"apriori", "all", "apriori"}, []string{"apriori", "brute", "fpgrowth"}},
		{"unknown kept", []string{"eclat"}, []string{"eclat"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, o.Resolve(tt.in))
		})
	}
}

func TestOrchestrator_UnknownStrategy(t *testing.T) {
	report := DefaultOrchestrator().Run(context.Background(), Request{
		Transactions:  scenarioStore(),
		MinSupport:    0.5,
		MinConfidence: 0.6,
		Strategies:    []string{"apriori", "eclat"},
	})

	_, ok := report.Result("apriori")
	assert.True(t, ok, "a bad sibling must not stop apriori")

	err := report.Outcomes["eclat"].Err
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStrategyUnavailable)

	var se *StrategyError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "eclat", se.Strategy)
	assert.Equal(t, 0.5, se.MinSupport)
	assert.Contains(t, err.Error(), `strategy "eclat"`)
	assert.Contains(t, err.Error(), "min_support=0.5")
}

func TestOrchestrator_PanicIsolated(t *testing.T) {
	o := NewOrchestrator(Apriori{}, panicStrategy{})

	for _, parallel := range []bool{false, true} {
		report := o.Run(context.Background(), Request{
			Transactions:  scenarioStore(),
			MinSupport:    0.5,
			MinConfidence: 0.6,
			Parallel:      parallel,
		})

		assert.ErrorIs(t, report.Outcomes["panics"].Err, ErrStrategyFailure)
		assert.Contains(t, report.Outcomes["panics"].Err.Error(), "boom")
		_, ok := report.Result(StrategyApriori)
		assert.True(t, ok, "parallel=%v", parallel)
	}
}

func TestOrchestrator_ThresholdErrorsPerStrategy(t *testing.T) {
	report := DefaultOrchestrator().Run(context.Background(), Request{
		Transactions:  scenarioStore(),
		MinSupport:    1.5,
		MinConfidence: 0.6,
	})

	assert.Empty(t, report.Succeeded())
	require.Len(t, report.Errors(), 3)
	for name, err := range report.Errors() {
		assert.ErrorIs(t, err, ErrInvalidThreshold, name)
		assert.NotErrorIs(t, err, ErrStrategyFailure, name)
	}
}

func TestOrchestrator_BadConfidence(t *testing.T) {
	report := DefaultOrchestrator().Run(context.Background(), Request{
		Transactions:  scenarioStore(),
		MinSupport:    0.5,
		MinConfidence: 0,
		Strategies:    []string{"apriori"},
	})
	assert.ErrorIs(t, report.Outcomes["apriori"].Err, ErrInvalidThreshold)
}

func TestOrchestrator_EmptyStore(t *testing.T) {
	report := DefaultOrchestrator().Run(context.Background(), Request{
		Transactions:  NewTransactions([][]string{{""}}),
		MinSupport:    0.5,
		MinConfidence: 0.5,
	})
	for _, name := range report.Order {
		assert.ErrorIs(t, report.Outcomes[name].Err, ErrEmptyTransactionStore, name)
	}
}

func TestOrchestrator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := DefaultOrchestrator().Run(ctx, Request{
		Transactions:  scenarioStore(),
		MinSupport:    0.5,
		MinConfidence: 0.5,
	})
	for _, name := range report.Order {
		err := report.Outcomes[name].Err
		assert.ErrorIs(t, err, context.Canceled, name)
		assert.NotErrorIs(t, err, ErrStrategyFailure, name)
	}
}

func TestOrchestrator_RegisterReplaces(t *testing.T) {
	o := NewOrchestrator(Apriori{})
	o.Register(Apriori{})
	o.Register(FPGrowth{})
	assert.Equal(t, []string{StrategyApriori, StrategyFPGrowth}, o.Strategies())
}

func TestOrchestrator_ParallelMatchesSequential(t *testing.T) {
	txns := randomStore(7, 200, 12, 6)
	req := Request{Transactions: txns, MinSupport: 0.05, MinConfidence: 0.4}

	seq := DefaultOrchestrator().Run(context.Background(), req)
	req.Parallel = true
	par := DefaultOrchestrator().Run(context.Background(), req)

	for _, name := range seq.Order {
		a, ok := seq.Result(name)
		require.True(t, ok)
		b, ok := par.Result(name)
		require.True(t, ok)
		assert.True(t, a.Table.Equal(b.Table), name)
		assert.Equal(t, ruleKeys(a.Rules), ruleKeys(b.Rules), name)
	}
}

func TestOrchestrator_OnDone(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		var mu sync.Mutex
		var seen []string
		failed := 0

		report := DefaultOrchestrator().Run(context.Background(), Request{
			Transactions:  scenarioStore(),
			MinSupport:    0.5,
			MinConfidence: 0.6,
			Strategies:    []string{"apriori", "eclat", "fpgrowth"},
			Parallel:      parallel,
			OnDone: func(name string, out Outcome) {
				mu.Lock()
				defer mu.Unlock()
				seen = append(seen, name)
				if out.Err != nil {
					failed++
				}
			},
		})

		if !parallel {
			assert.Equal(t, report.Order, seen)
		}
		sort.Strings(seen)
		assert.Equal(t, []string{"apriori", "eclat", "fpgrowth"}, seen, "parallel=%v", parallel)
		assert.Equal(t, 1, failed, "parallel=%v", parallel)
	}
}
