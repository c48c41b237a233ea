package mining

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValidateThreshold checks that v is a fraction in (0, 1].
func ValidateThreshold(name string, v float64) error {
	if math.IsNaN(v) || v <= 0 || v > 1 {
		return fmt.Errorf("%w: %s=%g (must be in (0, 1])", ErrInvalidThreshold, name, v)
	}
	return nil
}

// NormalizeThreshold accepts a fraction in (0, 1] or a percentage in
// (1, 100] and returns the fraction.
func NormalizeThreshold(v float64) (float64, error) {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0, fmt.Errorf("%w: %g (must be a fraction in (0, 1] or a percentage in (1, 100])", ErrInvalidThreshold, v)
	case v <= 1:
		return v, nil
	case v <= 100:
		return v / 100, nil
	default:
		return 0, fmt.Errorf("%w: %g (must be a fraction in (0, 1] or a percentage in (1, 100])", ErrInvalidThreshold, v)
	}
}

// ParseThreshold parses user input such as "0.2", "20" or "20%".
func ParseThreshold(s string) (float64, error) {
	s = strings.TrimSpace(s)
	pct := strings.HasSuffix(s, "%")
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidThreshold, s)
	}
	if pct {
		if v <= 0 || v > 100 {
			return 0, fmt.Errorf("%w: %g%% (must be in (0, 100])", ErrInvalidThreshold, v)
		}
		return v / 100, nil
	}
	return NormalizeThreshold(v)
}

// MinCount converts a support fraction into the minimum transaction count
// for a store of n transactions: max(1, floor(minSupport*n)).
func MinCount(minSupport float64, n int) int {
	c := int(math.Floor(minSupport * float64(n)))
	if c < 1 {
		return 1
	}
	return c
}

// prepare validates the common strategy inputs and returns the minimum count.
// The threshold is checked first so that no scan happens on bad input.
func prepare(txns *Transactions, minSupport float64) (int, error) {
	if err := ValidateThreshold("min_support", minSupport); err != nil {
		return 0, err
	}
	if txns.Len() == 0 {
		return 0, fmt.Errorf("%w: nothing to mine (0 transactions)", ErrEmptyTransactionStore)
	}
	return MinCount(minSupport, txns.Len()), nil
}
