package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"
)

// MaxColumns is the number of item columns in the CSV layout.
const MaxColumns = 7

var catalog = []string{
	"bread", "milk", "eggs", "butter", "coffee", "tea", "sugar", "cheese",
	"apples", "bananas", "rice", "pasta", "tomatoes", "onions", "chicken",
	"yogurt", "cereal", "juice", "cookies", "chips", "soda", "water",
	"flour", "jam", "honey", "salmon", "lettuce", "carrots", "potatoes", "beer",
}

var bundles = [][]string{
	{"bread", "butter"},
	{"coffee", "milk", "sugar"},
	{"pasta", "tomatoes"},
	{"chips", "soda"},
}

type genOptions struct {
	Transactions int
	Items        int
	MaxBasket    int
	BundleRate   float64
	Skew         float64
	EmptyRate    float64
	Seed         int64
}

type genStats struct {
	Transactions int
	Slots        int
	Distinct     int
}

func defaultGenOptions() genOptions {
	return genOptions{
		Transactions: 1000,
		Items:        20,
		MaxBasket:    5,
		BundleRate:   0.3,
		Skew:         1.2,
		EmptyRate:    0,
		Seed:         1,
	}
}

func (o genOptions) validate() error {
	switch {
	case o.Transactions <= 0:
		return fmt.Errorf("transactions must be positive, got %d", o.Transactions)
	case o.Items < 2:
		return fmt.Errorf("items must be at least 2, got %d", o.Items)
	case o.MaxBasket < 1 || o.MaxBasket > MaxColumns:
		return fmt.Errorf("max-basket must be in [1, %d], got %d", MaxColumns, o.MaxBasket)
	case o.BundleRate < 0 || o.BundleRate > 1:
		return fmt.Errorf("bundle-rate must be in [0, 1], got %g", o.BundleRate)
	case o.EmptyRate < 0 || o.EmptyRate >= 1:
		return fmt.Errorf("empty-rate must be in [0, 1), got %g", o.EmptyRate)
	case o.Skew <= 1:
		return fmt.Errorf("skew must be greater than 1, got %g", o.Skew)
	}
	return nil
}

// itemName returns the name of catalog entry i. Catalogs larger than the
// built-in list continue as item031, item032, ...
func itemName(i int) string {
	if i < len(catalog) {
		return catalog[i]
	}
	return fmt.Sprintf("item%03d", i+1)
}

// generate writes o.Transactions rows to w.
func generate(w io.Writer, o genOptions) (genStats, error) {
	var stats genStats
	if err := o.validate(); err != nil {
		return stats, err
	}

	rng := rand.New(rand.NewSource(o.Seed))
	zipf := rand.NewZipf(rng, o.Skew, 1, uint64(o.Items-1))
	inCatalog := make(map[string]bool, o.Items)
	for i := 0; i < o.Items; i++ {
		inCatalog[itemName(i)] = true
	}

	cw := csv.NewWriter(w)
	header := []string{"TransactionID"}
	for i := 1; i <= MaxColumns; i++ {
		header = append(header, "Item"+strconv.Itoa(i))
	}
	if err := cw.Write(header); err != nil {
		return stats, err
	}

	seen := make(map[string]bool)
	for t := 1; t <= o.Transactions; t++ {
		row := make([]string, MaxColumns+1)
		row[0] = strconv.Itoa(t)

		if rng.Float64() >= o.EmptyRate {
			basket := drawBasket(rng, zipf, o, inCatalog)
			for i, item := range basket {
				row[i+1] = item
				seen[item] = true
			}
			stats.Slots += len(basket)
		}
		if err := cw.Write(row); err != nil {
			return stats, err
		}
		stats.Transactions++
	}

	cw.Flush()
	stats.Distinct = len(seen)
	return stats, cw.Error()
}

// drawBasket returns between 1 and o.MaxBasket distinct items.
func drawBasket(rng *rand.Rand, zipf *rand.Zipf, o genOptions, inCatalog map[string]bool) []string {
	size := 1 + rng.Intn(o.MaxBasket)
	basket := make([]string, 0, size)
	has := make(map[string]bool, size)

	if rng.Float64() < o.BundleRate {
		for _, item := range bundles[rng.Intn(len(bundles))] {
			if len(basket) < o.MaxBasket && inCatalog[item] {
				basket = append(basket, item)
				has[item] = true
			}
		}
	}

	// Bounded so tiny catalogs cannot spin forever on duplicates.
	for tries := 0; len(basket) < size && tries < 8*MaxColumns; tries++ {
		item := itemName(int(zipf.Uint64()))
		if has[item] {
			continue
		}
		basket = append(basket, item)
		has[item] = true
	}
	return basket
}
