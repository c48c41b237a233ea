package mining

import "sort"

// Transactions is an ordered, read-only transaction store. Each transaction
// is a canonical, non-empty Itemset.
type Transactions struct {
	txns  []Itemset
	items Itemset
}

// NewTransactions builds a store from raw baskets. Items are trimmed and
// de-duplicated per basket; baskets left empty are dropped.
func NewTransactions(raw [][]string) *Transactions {
	t := &Transactions{txns: make([]Itemset, 0, len(raw))}
	universe := make(map[string]struct{})
	for _, basket := range raw {
		set := NewItemset(basket...)
		if len(set) == 0 {
			continue
		}
		t.txns = append(t.txns, set)
		for _, it := range set {
			universe[it] = struct{}{}
		}
	}

	t.items = make(Itemset, 0, len(universe))
	for it := range universe {
		t.items = append(t.items, it)
	}
	sort.Strings(t.items)
	return t
}

// Len returns the number of transactions. A nil store has length zero.
func (t *Transactions) Len() int {
	if t == nil {
		return 0
	}
	return len(t.txns)
}

// At returns transaction i. The result must not be modified.
func (t *Transactions) At(i int) Itemset {
	return t.txns[i]
}

// Items returns the sorted set of distinct items across all transactions.
func (t *Transactions) Items() Itemset {
	if t == nil {
		return nil
	}
	return t.items.Clone()
}

// Baskets returns a copy of the transactions as plain string slices.
func (t *Transactions) Baskets() [][]string {
	out := make([][]string, t.Len())
	for i := range out {
		out[i] = t.txns[i].Clone()
	}
	return out
}
