// Package dataset loads market-basket transactions from CSV files.
//
// The expected layout has a header row and one transaction per line, with
// items spread over the columns Item1 through Item7. Other columns are
// ignored, so exports that carry a transaction id or timestamp load as is.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/blackwell-systems/basketmine/internal/mining"
)

// ErrNoItemColumns is returned when the header has none of the item columns.
var ErrNoItemColumns = errors.New("no item columns found")

// Default item column layout.
const (
	DefaultItemPrefix  = "Item"
	DefaultItemColumns = 7
)

// Options controls how a CSV file is read.
type Options struct {
	Name        string // dataset name; derived from the file name when empty
	ItemPrefix  string // item column prefix, e.g. "Item"
	ItemColumns int    // number of item columns, numbered from 1
}

func (o Options) withDefaults() Options {
	if o.ItemPrefix == "" {
		o.ItemPrefix = DefaultItemPrefix
	}
	if o.ItemColumns <= 0 {
		o.ItemColumns = DefaultItemColumns
	}
	return o
}

// Columns returns the item column names in order.
func (o Options) Columns() []string {
	o = o.withDefaults()
	cols := make([]string, o.ItemColumns)
	for i := range cols {
		cols[i] = o.ItemPrefix + strconv.Itoa(i+1)
	}
	return cols
}

// Dataset is a loaded, cleaned transaction store.
type Dataset struct {
	Name         string
	Path         string
	Columns      []string // item columns present in the file
	Transactions *mining.Transactions
	Rows         int // data rows read, including dropped ones
	Dropped      int // rows left without any item after cleaning
}

// LoadCSV opens and reads the CSV file at path.
func LoadCSV(path string, opts Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	if opts.Name == "" {
		opts.Name = NameFromPath(path)
	}

	ds, err := ReadCSV(f, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	ds.Path = path
	return ds, nil
}

// ReadCSV reads transactions from r. Cells are trimmed; empty cells and the
// placeholders "nan" and "none" are skipped, duplicate items in a row are
// collapsed and rows left empty are dropped.
func ReadCSV(r io.Reader, opts Options) (*Dataset, error) {
	opts = opts.withDefaults()

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("missing header row: %w", ErrNoItemColumns)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	var cols []string
	var positions []int
	for _, c := range opts.Columns() {
		if i, ok := index[c]; ok {
			cols = append(cols, c)
			positions = append(positions, i)
		}
	}
	if len(positions) == 0 {
		return nil, fmt.Errorf("%w: expected %s..%s", ErrNoItemColumns,
			opts.Columns()[0], opts.Columns()[opts.ItemColumns-1])
	}

	ds := &Dataset{Name: opts.Name, Columns: cols}
	var raw [][]string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", ds.Rows+2, err)
		}
		ds.Rows++

		basket := make([]string, 0, len(positions))
		for _, p := range positions {
			if p >= len(record) {
				continue
			}
			if item, ok := cleanItem(record[p]); ok {
				basket = append(basket, item)
			}
		}
		if len(basket) == 0 {
			ds.Dropped++
			continue
		}
		raw = append(raw, basket)
	}

	ds.Transactions = mining.NewTransactions(raw)
	return ds, nil
}

// ReadBaskets reads one transaction per line with items separated by
// commas. Blank lines and lines starting with '#' are skipped.
func ReadBaskets(r io.Reader) (*mining.Transactions, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	var raw [][]string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read baskets: %w", err)
		}
		basket := make([]string, 0, len(record))
		for _, cell := range record {
			if item, ok := cleanItem(cell); ok {
				basket = append(basket, item)
			}
		}
		raw = append(raw, basket)
	}
	return mining.NewTransactions(raw), nil
}

// NameFromPath derives a short dataset name from a file name:
// "data/grocerytransactions.csv" becomes "grocery".
func NameFromPath(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if short := strings.TrimSuffix(name, "transactions"); short != "" {
		name = short
	}
	return strings.TrimRight(name, "_-.")
}

func cleanItem(cell string) (string, bool) {
	item := strings.TrimSpace(cell)
	if item == "" {
		return "", false
	}
	switch strings.ToLower(item) {
	case "nan", "none":
		return "", false
	}
	return item, true
}
