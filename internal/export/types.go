package export

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/blackwell-systems/basketmine/internal/mining"
)

// ItemSep joins the items of an itemset in exported cells.
const ItemSep = "|"

// ItemsetRow is one exported frequent itemset. Itemset is the display form;
// Items holds the members themselves, since an item may contain ItemSep.
type ItemsetRow struct {
	Itemset string   `json:"itemset"`
	Items   []string `json:"items,omitempty"`
	Size    int      `json:"size"`
	Count   int      `json:"count"`
	Support float64  `json:"support"`
}

// ItemList returns the members of the itemset. Rows built without Items
// fall back to splitting the display form.
func (r ItemsetRow) ItemList() []string {
	if len(r.Items) > 0 {
		return r.Items
	}
	if r.Itemset == "" {
		return nil
	}
	return strings.Split(r.Itemset, ItemSep)
}

// Key identifies the itemset without ambiguity: the JSON array of its
// members. Two rows share a key only when they hold the same items.
func (r ItemsetRow) Key() string {
	items := r.ItemList()
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return string(b)
}

// RuleRow is one exported association rule.
type RuleRow struct {
	Antecedent string  `json:"antecedent"`
	Consequent string  `json:"consequent"`
	Support    float64 `json:"support"`
	Confidence float64 `json:"confidence"`
	Lift       float64 `json:"lift"`
}

// ItemsetRows flattens a table, most frequent first and then by itemset.
func ItemsetRows(table *mining.Table) []ItemsetRow {
	if table == nil {
		return nil
	}
	entries := table.Entries()
	rows := make([]ItemsetRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, ItemsetRow{
			Itemset: e.Items.Join(ItemSep),
			Items:   append([]string(nil), e.Items...),
			Size:    len(e.Items),
			Count:   e.Count,
			Support: float64(e.Count) / float64(table.N()),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		if rows[i].Itemset != rows[j].Itemset {
			return rows[i].Itemset < rows[j].Itemset
		}
		return rows[i].Key() < rows[j].Key()
	})
	return rows
}

// RuleRows flattens rules, keeping their order.
func RuleRows(rules []mining.Rule) []RuleRow {
	rows := make([]RuleRow, len(rules))
	for i, r := range rules {
		rows[i] = RuleRow{
			Antecedent: r.Antecedent.Join(ItemSep),
			Consequent: r.Consequent.Join(ItemSep),
			Support:    r.Support,
			Confidence: r.Confidence,
			Lift:       r.Lift,
		}
	}
	return rows
}
