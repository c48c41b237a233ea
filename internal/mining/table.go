package mining

import (
	"fmt"
	"sort"
)

// LevelStats describes one candidate size of a mining run.
type LevelStats struct {
	Size       int // itemset size k
	Candidates int // candidates whose support was counted
	Frequent   int // candidates that met the minimum count
}

// Entry is one row of a Table.
type Entry struct {
	Items Itemset
	Count int
}

// Table is a Frequent-Itemset Table: every itemset whose support count met
// the minimum count, keyed canonically. Tables are immutable once returned
// by a Strategy.
type Table struct {
	n        int
	minCount int
	entries  map[string]Entry

	// Levels records per-size candidate counts in increasing size order.
	Levels []LevelStats
}

func newTable(n, minCount int) *Table {
	return &Table{
		n:        n,
		minCount: minCount,
		entries:  make(map[string]Entry),
	}
}

func (t *Table) add(items Itemset, count int) {
	t.entries[items.Key()] = Entry{Items: items, Count: count}
}

// N returns the number of transactions the table was mined from.
func (t *Table) N() int {
	return t.n
}

// MinCount returns the minimum support count used to build the table.
func (t *Table) MinCount() int {
	return t.minCount
}

// Len returns the number of frequent itemsets.
func (t *Table) Len() int {
	return len(t.entries)
}

// Count returns the support count of a canonical itemset.
func (t *Table) Count(items Itemset) (int, bool) {
	e, ok := t.entries[items.Key()]
	return e.Count, ok
}

// Support returns the support fraction of a canonical itemset.
func (t *Table) Support(items Itemset) (float64, bool) {
	c, ok := t.Count(items)
	if !ok || t.n == 0 {
		return 0, false
	}
	return float64(c) / float64(t.n), true
}

// Entries returns all rows ordered by size, then item order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return compareItemsets(out[i].Items, out[j].Items) < 0
	})
	return out
}

// Level returns the rows of size k in item order.
func (t *Table) Level(k int) []Entry {
	var out []Entry
	for _, e := range t.Entries() {
		if len(e.Items) == k {
			out = append(out, e)
		}
	}
	return out
}

// MaxSize returns the size of the largest frequent itemset, or 0.
func (t *Table) MaxSize() int {
	max := 0
	for _, e := range t.entries {
		if len(e.Items) > max {
			max = len(e.Items)
		}
	}
	return max
}

// Candidates returns the total number of candidates counted across levels.
func (t *Table) Candidates() int {
	total := 0
	for _, l := range t.Levels {
		total += l.Candidates
	}
	return total
}

// LevelStat returns the stats for size k, if that size was evaluated.
func (t *Table) LevelStat(k int) (LevelStats, bool) {
	for _, l := range t.Levels {
		if l.Size == k {
			return l, true
		}
	}
	return LevelStats{}, false
}

// Equal reports whether both tables hold the same itemsets with the same
// counts over the same number of transactions.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.n != o.n || len(t.entries) != len(o.entries) {
		return false
	}
	for k, e := range t.entries {
		oe, ok := o.entries[k]
		if !ok || oe.Count != e.Count {
			return false
		}
	}
	return true
}

// Diff describes the itemsets that differ between t and o, in a stable order.
func (t *Table) Diff(o *Table) []string {
	var diffs []string
	for _, e := range t.Entries() {
		oc, ok := o.Count(e.Items)
		switch {
		case !ok:
			diffs = append(diffs, fmt.Sprintf("%s only in first (count %d)", e.Items, e.Count))
		case oc != e.Count:
			diffs = append(diffs, fmt.Sprintf("%s count %d vs %d", e.Items, e.Count, oc))
		}
	}
	for _, e := range o.Entries() {
		if _, ok := t.Count(e.Items); !ok {
			diffs = append(diffs, fmt.Sprintf("%s only in second (count %d)", e.Items, e.Count))
		}
	}
	return diffs
}
