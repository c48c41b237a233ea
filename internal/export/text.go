package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

func writeCSV(files Files, itemsets []ItemsetRow, rules []RuleRow) error {
	records := [][]string{itemsetHeader}
	for _, r := range itemsets {
		records = append(records, []string{r.Itemset, strconv.Itoa(r.Count), formatFloat(r.Support)})
	}
	if err := saveCSV(files.Itemsets, records); err != nil {
		return fmt.Errorf("failed to write itemsets csv: %w", err)
	}

	records = [][]string{ruleHeader}
	for _, r := range rules {
		records = append(records, []string{
			r.Antecedent, r.Consequent,
			formatFloat(r.Support), formatFloat(r.Confidence), formatFloat(r.Lift),
		})
	}
	if err := saveCSV(files.Rules, records); err != nil {
		return fmt.Errorf("failed to write rules csv: %w", err)
	}
	return nil
}

func saveCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(files Files, itemsets []ItemsetRow, rules []RuleRow) error {
	if itemsets == nil {
		itemsets = []ItemsetRow{}
	}
	if rules == nil {
		rules = []RuleRow{}
	}
	if err := saveJSON(files.Itemsets, itemsets); err != nil {
		return fmt.Errorf("failed to write itemsets json: %w", err)
	}
	if err := saveJSON(files.Rules, rules); err != nil {
		return fmt.Errorf("failed to write rules json: %w", err)
	}
	return nil
}

func saveJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
