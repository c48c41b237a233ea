package mining

import (
	"context"
	"fmt"
	"sort"
)

// FPGrowth compresses the transactions into a frequency-ordered prefix tree
// and mines it recursively through conditional pattern bases. No candidate
// is ever counted by scanning the store again after the tree is built.
type FPGrowth struct{}

// Name returns "fpgrowth".
func (FPGrowth) Name() string { return StrategyFPGrowth }

// fpNode is one prefix-tree node. next links nodes carrying the same item.
type fpNode struct {
	item     string
	count    int
	parent   *fpNode
	children map[string]*fpNode
	next     *fpNode
}

// fpTree is a prefix tree with a header table.
type fpTree struct {
	root   *fpNode
	heads  map[string]*fpNode
	tails  map[string]*fpNode
	counts map[string]int
	rank   map[string]int // 0 is the most frequent item
}

// prefixPath is one entry of a conditional pattern base.
type prefixPath struct {
	items []string
	count int
}

// Mine implements Strategy.
func (FPGrowth) Mine(ctx context.Context, txns *Transactions, minSupport float64) (*Table, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	minCount, err := prepare(txns, minSupport)
	if err != nil {
		return nil, err
	}

	table := newTable(txns.Len(), minCount)

	base := make([]prefixPath, txns.Len())
	for i, t := range txns.txns {
		base[i] = prefixPath{items: t, count: 1}
	}
	tree := buildFPTree(base, minCount)

	levels := map[int]*LevelStats{
		1: {Size: 1, Candidates: len(txns.items), Frequent: len(tree.counts)},
	}

	m := &fpMiner{table: table, minCount: minCount, levels: levels}
	for _, item := range tree.leastFrequentFirst() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("fp-growth stopped before projecting %q: %w", item, err)
		}
		m.project(tree, item, nil)
	}

	sizes := make([]int, 0, len(levels))
	for k := range levels {
		sizes = append(sizes, k)
	}
	sort.Ints(sizes)
	for _, k := range sizes {
		table.Levels = append(table.Levels, *levels[k])
	}

	return table, nil
}

type fpMiner struct {
	table    *Table
	minCount int
	levels   map[int]*LevelStats
}

// project records suffix+item and mines its conditional tree.
func (m *fpMiner) project(tree *fpTree, item string, suffix Itemset) {
	pattern := NewItemset(append(suffix.Clone(), item)...)
	m.table.add(pattern, tree.counts[item])

	if len(pattern) > 1 {
		l, ok := m.levels[len(pattern)]
		if !ok {
			l = &LevelStats{Size: len(pattern)}
			m.levels[len(pattern)] = l
		}
		// Every item in a conditional header is frequent by construction.
		l.Candidates++
		l.Frequent++
	}

	cond := buildFPTree(tree.prefixPaths(item), m.minCount)
	if len(cond.counts) == 0 {
		return
	}
	for _, next := range cond.leastFrequentFirst() {
		m.project(cond, next, pattern)
	}
}

// buildFPTree inserts every path, keeping only items whose weighted count
// meets minCount, ordered by descending frequency.
func buildFPTree(paths []prefixPath, minCount int) *fpTree {
	t := &fpTree{
		root:   &fpNode{children: make(map[string]*fpNode)},
		heads:  make(map[string]*fpNode),
		tails:  make(map[string]*fpNode),
		counts: make(map[string]int),
		rank:   make(map[string]int),
	}

	totals := make(map[string]int)
	for _, p := range paths {
		for _, it := range p.items {
			totals[it] += p.count
		}
	}

	frequent := make([]string, 0, len(totals))
	for it, c := range totals {
		if c >= minCount {
			frequent = append(frequent, it)
		}
	}
	sort.Slice(frequent, func(i, j int) bool {
		ci, cj := totals[frequent[i]], totals[frequent[j]]
		if ci != cj {
			return ci > cj
		}
		return frequent[i] < frequent[j]
	})
	for i, it := range frequent {
		t.rank[it] = i
		t.counts[it] = totals[it]
	}

	ordered := make([]string, 0, 16)
	for _, p := range paths {
		ordered = ordered[:0]
		for _, it := range p.items {
			if _, ok := t.rank[it]; ok {
				ordered = append(ordered, it)
			}
		}
		if len(ordered) == 0 {
			continue
		}
		sort.Slice(ordered, func(i, j int) bool {
			return t.rank[ordered[i]] < t.rank[ordered[j]]
		})
		t.insert(ordered, p.count)
	}

	return t
}

// insert adds one ordered path with the given weight.
func (t *fpTree) insert(items []string, count int) {
	cur := t.root
	for _, it := range items {
		child, ok := cur.children[it]
		if !ok {
			child = &fpNode{
				item:     it,
				parent:   cur,
				children: make(map[string]*fpNode),
			}
			cur.children[it] = child
			t.link(child)
		}
		child.count += count
		cur = child
	}
}

// link appends n to the header chain of its item.
func (t *fpTree) link(n *fpNode) {
	if tail, ok := t.tails[n.item]; ok {
		tail.next = n
	} else {
		t.heads[n.item] = n
	}
	t.tails[n.item] = n
}

// prefixPaths returns the conditional pattern base of item: for every node
// of item, the path from the root down to (excluding) that node.
func (t *fpTree) prefixPaths(item string) []prefixPath {
	var paths []prefixPath
	for n := t.heads[item]; n != nil; n = n.next {
		var path []string
		for p := n.parent; p != nil && p.parent != nil; p = p.parent {
			path = append(path, p.item)
		}
		if len(path) > 0 {
			paths = append(paths, prefixPath{items: path, count: n.count})
		}
	}
	return paths
}

// leastFrequentFirst returns header items from the bottom of the order up.
func (t *fpTree) leastFrequentFirst() []string {
	items := make([]string, len(t.rank))
	for it, r := range t.rank {
		items[len(items)-1-r] = it
	}
	return items
}
