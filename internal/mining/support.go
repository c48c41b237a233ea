package mining

// countSupport returns the number of transactions that contain candidate.
// One full linear scan per call.
func countSupport(txns *Transactions, candidate Itemset) int {
	count := 0
	for _, t := range txns.txns {
		if candidate.IsSubsetOf(t) {
			count++
		}
	}
	return count
}

// countItems counts every single item in one scan.
func countItems(txns *Transactions) map[string]int {
	counts := make(map[string]int, len(txns.items))
	for _, t := range txns.txns {
		for _, it := range t {
			counts[it]++
		}
	}
	return counts
}
