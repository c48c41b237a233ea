// Command basketmine-gen writes synthetic market-basket CSV files in the
// TransactionID,Item1..Item7 layout read by basketmine.
//
// Item popularity follows a Zipf distribution over the catalog, and a few
// bundles (bread+butter, coffee+milk, ...) are planted so that the output
// always carries association rules worth finding. The same seed always
// produces the same file.
package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	opts    genOptions
	outPath string
)

var rootCmd = &cobra.Command{
	Use:   "basketmine-gen",
	Short: "Generate a synthetic transaction dataset",
	Example: `  basketmine-gen --transactions 5000 --seed 7 --out grocerytransactions.csv
  basketmine-gen -n 200 --items 12 --bundle-rate 0.5`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if outPath != "" && outPath != "-" {
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}

		stats, err := generate(w, opts)
		if err != nil {
			return err
		}
		if outPath != "" && outPath != "-" {
			fmt.Fprintf(os.Stderr, "✓ Wrote %s transactions (%s item slots, %d distinct items) to %s\n",
				humanize.Comma(int64(stats.Transactions)), humanize.Comma(int64(stats.Slots)), stats.Distinct, outPath)
		}
		return nil
	},
}

func init() {
	d := defaultGenOptions()
	rootCmd.Flags().IntVarP(&opts.Transactions, "transactions", "n", d.Transactions, "number of transactions")
	rootCmd.Flags().IntVar(&opts.Items, "items", d.Items, "catalog size")
	rootCmd.Flags().IntVar(&opts.MaxBasket, "max-basket", d.MaxBasket, "largest basket (at most 7)")
	rootCmd.Flags().Float64Var(&opts.BundleRate, "bundle-rate", d.BundleRate, "probability a basket starts with a planted bundle")
	rootCmd.Flags().Float64Var(&opts.Skew, "skew", d.Skew, "Zipf exponent of item popularity (> 1)")
	rootCmd.Flags().Float64Var(&opts.EmptyRate, "empty-rate", d.EmptyRate, "probability of an all-empty row")
	rootCmd.Flags().Int64Var(&opts.Seed, "seed", d.Seed, "random seed")
	rootCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: stdout)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
