// Package export writes mined itemsets and rules to spreadsheet, CSV or
// JSON files, one file for itemsets and one for rules per strategy.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/basketmine/internal/mining"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown export format")

// Format is an output file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Formats lists the supported formats, default first.
var Formats = []Format{FormatXLSX, FormatCSV, FormatJSON}

// ParseFormat accepts a format name case-insensitively; empty means xlsx.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, ".")))
	if s == "" {
		return FormatXLSX, nil
	}
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want xlsx, csv or json)", ErrUnknownFormat, s)
}

// Files are the paths written for one strategy.
type Files struct {
	Itemsets string
	Rules    string
}

// Writer writes export files into Dir.
type Writer struct {
	Dir    string
	Format Format
}

// New returns a Writer for dir. An empty format means xlsx.
func New(dir string, format Format) *Writer {
	if format == "" {
		format = FormatXLSX
	}
	return &Writer{Dir: dir, Format: format}
}

// Paths returns the file names used for a dataset and strategy, e.g.
// grocery_apriori_frequent_itemsets.xlsx and grocery_apriori_rules.xlsx.
func (w *Writer) Paths(dataset, strategy string) Files {
	prefix := fmt.Sprintf("%s_%s", sanitize(dataset), sanitize(strategy))
	return Files{
		Itemsets: filepath.Join(w.Dir, fmt.Sprintf("%s_frequent_itemsets.%s", prefix, w.Format)),
		Rules:    filepath.Join(w.Dir, fmt.Sprintf("%s_rules.%s", prefix, w.Format)),
	}
}

// WriteResult exports one strategy result.
func (w *Writer) WriteResult(dataset string, res *mining.Result) (Files, error) {
	return w.Write(dataset, res.Strategy, ItemsetRows(res.Table), RuleRows(res.Rules))
}

// Write exports already flattened rows.
func (w *Writer) Write(dataset, strategy string, itemsets []ItemsetRow, rules []RuleRow) (Files, error) {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return Files{}, fmt.Errorf("failed to create export directory: %w", err)
	}

	files := w.Paths(dataset, strategy)
	var err error
	switch w.Format {
	case FormatXLSX:
		err = writeXLSX(files, itemsets, rules)
	case FormatCSV:
		err = writeCSV(files, itemsets, rules)
	case FormatJSON:
		err = writeJSON(files, itemsets, rules)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownFormat, w.Format)
	}
	if err != nil {
		return Files{}, err
	}
	return files, nil
}

var itemsetHeader = []string{"itemset", "count", "support"}
var ruleHeader = []string{"antecedent", "consequent", "support", "confidence", "lift"}

func sanitize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "dataset"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, s)
}
