package dataset

import (
	"sort"

	"github.com/blackwell-systems/basketmine/internal/mining"
)

// ItemCount is an item and the number of transactions that contain it.
type ItemCount struct {
	Item  string
	Count int
}

// Summary describes a transaction store at a glance.
type Summary struct {
	Transactions int
	Items        int
	AvgBasket    float64
	MaxBasket    int
	Top          []ItemCount // most frequent items, count descending
}

// Summarize computes a Summary keeping the top most frequent items.
func Summarize(txns *mining.Transactions, top int) Summary {
	s := Summary{Transactions: txns.Len(), Items: len(txns.Items())}
	if s.Transactions == 0 {
		return s
	}

	freq := make(map[string]int)
	total := 0
	for i := 0; i < txns.Len(); i++ {
		t := txns.At(i)
		total += len(t)
		if len(t) > s.MaxBasket {
			s.MaxBasket = len(t)
		}
		for _, it := range t {
			freq[it]++
		}
	}
	s.AvgBasket = float64(total) / float64(s.Transactions)

	counts := make([]ItemCount, 0, len(freq))
	for it, c := range freq {
		counts = append(counts, ItemCount{Item: it, Count: c})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Item < counts[j].Item
	})
	if top >= 0 && top < len(counts) {
		counts = counts[:top]
	}
	s.Top = counts
	return s
}

// Summary summarizes the dataset with its ten most frequent items.
func (d *Dataset) Summary() Summary {
	return Summarize(d.Transactions, 10)
}

// OneHot returns the sorted item universe and, per transaction, whether
// each item is present.
func OneHot(txns *mining.Transactions) ([]string, [][]bool) {
	items := txns.Items()
	col := make(map[string]int, len(items))
	for i, it := range items {
		col[it] = i
	}

	matrix := make([][]bool, txns.Len())
	for i := range matrix {
		row := make([]bool, len(items))
		for _, it := range txns.At(i) {
			row[col[it]] = true
		}
		matrix[i] = row
	}
	return items, matrix
}
