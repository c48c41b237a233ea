package mining

import "fmt"

// Rule is an association rule Antecedent -> Consequent.
type Rule struct {
	Antecedent Itemset
	Consequent Itemset
	Count      int     // support count of Antecedent ∪ Consequent
	Support    float64 // Count / n
	Confidence float64 // Count / count(Antecedent)
	Lift       float64 // Confidence / support(Consequent)
}

func (r Rule) String() string {
	return fmt.Sprintf("%s -> %s (support=%.3f, confidence=%.3f)",
		r.Antecedent, r.Consequent, r.Support, r.Confidence)
}

// Itemset returns Antecedent ∪ Consequent.
func (r Rule) Itemset() Itemset {
	return r.Antecedent.Union(r.Consequent)
}

// DeriveRules returns every rule whose confidence meets minConfidence.
//
// Itemsets are visited in Entries order; for each, antecedents go by
// increasing size and then lexicographic combination order, so the output
// is identical across runs. The table must satisfy monotonicity: a missing
// antecedent or consequent yields ErrInconsistentItemsetTable.
func DeriveRules(table *Table, minConfidence float64) ([]Rule, error) {
	if err := ValidateThreshold("min_confidence", minConfidence); err != nil {
		return nil, err
	}
	if table == nil {
		return nil, fmt.Errorf("%w: nil table", ErrInconsistentItemsetTable)
	}

	n := float64(table.N())
	var rules []Rule
	for _, e := range table.Entries() {
		if len(e.Items) < 2 {
			continue
		}

		var derr error
		for size := 1; size < len(e.Items) && derr == nil; size++ {
			forEachCombination(e.Items, size, func(ant Itemset) bool {
				antCount, ok := table.Count(ant)
				if !ok {
					derr = missingSubset(table, e.Items, ant)
					return false
				}
				if antCount == 0 {
					return true
				}

				confidence := float64(e.Count) / float64(antCount)
				if confidence < minConfidence {
					return true
				}

				cons := e.Items.Minus(ant)
				consCount, ok := table.Count(cons)
				if !ok {
					derr = missingSubset(table, e.Items, cons)
					return false
				}

				rules = append(rules, Rule{
					Antecedent: ant.Clone(),
					Consequent: cons,
					Count:      e.Count,
					Support:    float64(e.Count) / n,
					Confidence: confidence,
					Lift:       confidence / (float64(consCount) / n),
				})
				return true
			})
		}
		if derr != nil {
			return nil, derr
		}
	}

	return rules, nil
}

func missingSubset(table *Table, itemset, subset Itemset) error {
	return fmt.Errorf("%w: subset %s of frequent itemset %s is missing (table has %d itemsets over %d transactions)",
		ErrInconsistentItemsetTable, subset, itemset, table.Len(), table.N())
}
