package export

import (
	"fmt"

	"github.com/360EntSecGroup-Skylar/excelize/v2"
)

const (
	itemsetSheet = "itemsets"
	ruleSheet    = "rules"
)

func writeXLSX(files Files, itemsets []ItemsetRow, rules []RuleRow) error {
	rows := make([][]interface{}, len(itemsets))
	for i, r := range itemsets {
		rows[i] = []interface{}{r.Itemset, r.Count, r.Support}
	}
	if err := saveSheet(files.Itemsets, itemsetSheet, itemsetHeader, rows); err != nil {
		return fmt.Errorf("failed to write itemsets workbook: %w", err)
	}

	rows = make([][]interface{}, len(rules))
	for i, r := range rules {
		rows[i] = []interface{}{r.Antecedent, r.Consequent, r.Support, r.Confidence, r.Lift}
	}
	if err := saveSheet(files.Rules, ruleSheet, ruleHeader, rows); err != nil {
		return fmt.Errorf("failed to write rules workbook: %w", err)
	}
	return nil
}

// saveSheet writes a single-sheet workbook with a bold header row.
func saveSheet(path, sheet string, header []string, rows [][]interface{}) error {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheet)

	head := make([]interface{}, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return err
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return err
	}

	return f.SaveAs(path)
}
