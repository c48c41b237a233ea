package mining

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidThreshold indicates a support or confidence threshold outside (0, 1].
	ErrInvalidThreshold = errors.New("mining: invalid threshold")
	// ErrEmptyTransactionStore indicates there were no transactions to mine.
	ErrEmptyTransactionStore = errors.New("mining: empty transaction store")
	// ErrInconsistentItemsetTable indicates a frequent-itemset table that
	// violates monotonicity (a subset of a frequent itemset is missing).
	ErrInconsistentItemsetTable = errors.New("mining: inconsistent itemset table")
	// ErrStrategyUnavailable indicates a requested strategy cannot run.
	ErrStrategyUnavailable = errors.New("mining: strategy unavailable")
	// ErrStrategyFailure indicates an unexpected failure inside one strategy.
	ErrStrategyFailure = errors.New("mining: strategy failure")
)

// StrategyError records which strategy failed and under which thresholds.
// errors.Is sees through it to the underlying sentinel.
type StrategyError struct {
	Strategy      string
	MinSupport    float64
	MinConfidence float64
	Err           error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("strategy %q (min_support=%g, min_confidence=%g): %v",
		e.Strategy, e.MinSupport, e.MinConfidence, e.Err)
}

func (e *StrategyError) Unwrap() error {
	return e.Err
}

// isEngineError reports whether err already belongs to a known error kind.
func isEngineError(err error) bool {
	for _, target := range []error{
		ErrInvalidThreshold,
		ErrEmptyTransactionStore,
		ErrInconsistentItemsetTable,
		ErrStrategyUnavailable,
		ErrStrategyFailure,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
