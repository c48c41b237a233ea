package mining

import (
	"sort"
	"strings"
)

// keySep joins items into a map key. Items never contain it after cleaning.
const keySep = "\x1f"

// Itemset is a set of items in canonical form: sorted ascending, no
// duplicates. Two itemsets with the same members have the same Key.
type Itemset []string

// NewItemset returns the canonical itemset for items. Surrounding whitespace
// is trimmed and blank items are dropped.
func NewItemset(items ...string) Itemset {
	set := make(Itemset, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || strings.Contains(it, keySep) {
			continue
		}
		set = append(set, it)
	}
	sort.Strings(set)
	return dedupeSorted(set)
}

func dedupeSorted(s Itemset) Itemset {
	if len(s) < 2 {
		return s
	}
	out := s[:1]
	for _, it := range s[1:] {
		if it != out[len(out)-1] {
			out = append(out, it)
		}
	}
	return out
}

// Key returns the canonical map key of the itemset.
func (s Itemset) Key() string {
	return strings.Join(s, keySep)
}

// Join renders the items separated by sep, e.g. "bread|milk".
func (s Itemset) Join(sep string) string {
	return strings.Join(s, sep)
}

func (s Itemset) String() string {
	return "{" + strings.Join(s, ", ") + "}"
}

// Clone returns an independent copy.
func (s Itemset) Clone() Itemset {
	out := make(Itemset, len(s))
	copy(out, s)
	return out
}

// Contains reports whether item is a member.
func (s Itemset) Contains(item string) bool {
	i := sort.SearchStrings(s, item)
	return i < len(s) && s[i] == item
}

// IsSubsetOf reports whether every member of s is in t. Both must be canonical.
func (s Itemset) IsSubsetOf(t Itemset) bool {
	if len(s) > len(t) {
		return false
	}
	j := 0
	for _, it := range s {
		for j < len(t) && t[j] < it {
			j++
		}
		if j == len(t) || t[j] != it {
			return false
		}
		j++
	}
	return true
}

// Minus returns the members of s that are not in t.
func (s Itemset) Minus(t Itemset) Itemset {
	out := make(Itemset, 0, len(s))
	for _, it := range s {
		if !t.Contains(it) {
			out = append(out, it)
		}
	}
	return out
}

// Intersects reports whether s and t share at least one item.
func (s Itemset) Intersects(t Itemset) bool {
	for _, it := range s {
		if t.Contains(it) {
			return true
		}
	}
	return false
}

// Union returns the canonical union of s and t.
func (s Itemset) Union(t Itemset) Itemset {
	out := make(Itemset, 0, len(s)+len(t))
	i, j := 0, 0
	for i < len(s) && j < len(t) {
		switch {
		case s[i] < t[j]:
			out = append(out, s[i])
			i++
		case s[i] > t[j]:
			out = append(out, t[j])
			j++
		default:
			out = append(out, s[i])
			i++
			j++
		}
	}
	out = append(out, s[i:]...)
	return append(out, t[j:]...)
}

// compareItemsets orders by size first, then element-wise.
func compareItemsets(a, b Itemset) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// forEachCombination calls fn with every size-k combination of items in
// lexicographic index order. The slice passed to fn is reused between calls;
// fn must Clone it to retain it. Iteration stops early when fn returns false.
func forEachCombination(items Itemset, k int, fn func(Itemset) bool) {
	n := len(items)
	if k <= 0 || k > n {
		return
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	buf := make(Itemset, k)
	for {
		for i, j := range idx {
			buf[i] = items[j]
		}
		if !fn(buf) {
			return
		}

		// Advance the rightmost index that still has room.
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
