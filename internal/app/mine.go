package app

import (
	"bufio"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/basketmine/internal/analyzer"
	"github.com/blackwell-systems/basketmine/internal/export"
	"github.com/blackwell-systems/basketmine/internal/mining"
	"github.com/blackwell-systems/basketmine/internal/output"
)

var (
	mineSupport     string
	mineConfidence  string
	mineStrategies  []string
	mineParallel    bool
	mineTimeout     time.Duration
	mineExport      bool
	mineFormat      string
	mineOutDir      string
	mineNoSave      bool
	mineTop         int
	mineInteractive bool
)

var mineCmd = &cobra.Command{
	Use:   "mine [dataset | file.csv]",
	Short: "Mine frequent itemsets and association rules",
	Long: `Mine a transaction dataset for frequent itemsets and association rules.

The dataset is either a registered name (see 'basketmine datasets list') or a
path to a CSV file with Item1..Item7 columns. Thresholds accept a fraction
(0.2) or a percentage (20 or 20%).

Every requested strategy mines the same data independently. A failing
strategy is reported and never stops the others. Results are recorded in the
run history unless --no-save is given, and can be written to spreadsheets
with --export:

  <dataset>_<strategy>_frequent_itemsets.xlsx
  <dataset>_<strategy>_rules.xlsx`,
	Example: `  # Mine a registered dataset with every strategy
  basketmine mine grocery

  # Custom thresholds, one strategy, top 20 rows
  basketmine mine ./cafetransactions.csv --support 5% --confidence 0.7 --strategy fpgrowth --top 20

  # Run strategies concurrently and export CSV files
  basketmine mine bookstore --parallel --export --format csv --out results/

  # Prompt for dataset, thresholds and algorithm
  basketmine mine --interactive`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMine,
}

func init() {
	mineCmd.Flags().StringVarP(&mineSupport, "support", "s", "", "minimum support, fraction or percent (default from config: 0.2)")
	mineCmd.Flags().StringVarP(&mineConfidence, "confidence", "c", "", "minimum confidence, fraction or percent (default from config: 0.6)")
	mineCmd.Flags().StringSliceVar(&mineStrategies, "strategy", nil, "strategy to run: brute, apriori, fpgrowth or all (repeatable)")
	mineCmd.Flags().BoolVar(&mineParallel, "parallel", false, "run strategies concurrently")
	mineCmd.Flags().DurationVar(&mineTimeout, "timeout", 0, "cancel mining after this long (0 = no limit)")
	mineCmd.Flags().BoolVar(&mineExport, "export", false, "write itemsets and rules files per strategy")
	mineCmd.Flags().StringVar(&mineFormat, "format", "", "export format: xlsx, csv or json (default from config: xlsx)")
	mineCmd.Flags().StringVar(&mineOutDir, "out", "", "export directory (default from config: .)")
	mineCmd.Flags().BoolVar(&mineNoSave, "no-save", false, "do not record the runs in the history database")
	mineCmd.Flags().IntVar(&mineTop, "top", 10, "rows to show per table (0 = all)")
	mineCmd.Flags().BoolVarP(&mineInteractive, "interactive", "i", false, "prompt for dataset, thresholds and algorithm")

	RootCmd.AddCommand(mineCmd)
}

func runMine(cmd *cobra.Command, args []string) error {
	c := appConfig()

	var target string
	if len(args) == 1 {
		target = args[0]
	}

	minSupport, minConfidence, err := thresholds(mineSupport, mineConfidence)
	if err != nil {
		return err
	}
	strategies := c.Strategies
	if len(mineStrategies) > 0 {
		strategies = mineStrategies
	}

	if mineInteractive {
		answers, err := promptMine(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), c)
		if err != nil {
			return err
		}
		target = answers.Dataset
		minSupport, minConfidence = answers.MinSupport, answers.MinConfidence
		strategies = answers.Strategies
	}
	if target == "" {
		return fmt.Errorf("a dataset name or CSV path is required (or use --interactive)")
	}

	timeout := c.Timeout
	if cmd.Flags().Changed("timeout") {
		timeout = mineTimeout
	}

	ds, err := loadDataset(target)
	if err != nil {
		return err
	}

	req := mining.Request{
		Transactions:  ds.Transactions,
		MinSupport:    minSupport,
		MinConfidence: minConfidence,
		Strategies:    strategies,
		Parallel:      boolFlag(cmd, "parallel", mineParallel, c.Parallel),
	}

	fmt.Printf("\nMining %s: support %.1f%% (min count %d), confidence %.1f%%\n\n",
		ds.Name, minSupport*100, mining.MinCount(minSupport, ds.Transactions.Len()), minConfidence*100)
	report := runRequest(req, timeout)
	fmt.Println()

	printReport(report, mineTop)

	if !mineNoSave {
		if err := saveReport(ds.Name, req, report); err != nil {
			return err
		}
	}

	if mineExport {
		if err := exportReport(ds.Name, report); err != nil {
			return err
		}
	}

	if len(report.Succeeded()) == 0 {
		return fmt.Errorf("all %d strategies failed", len(report.Order))
	}
	return nil
}

// printReport prints itemsets and rules per strategy. When several
// strategies agree only the first table is printed, followed by the
// comparison.
func printReport(report *mining.Report, top int) {
	comparison := analyzer.Compare(report)
	printed := false

	for _, name := range report.Order {
		outcome := report.Outcomes[name]
		if outcome.Err != nil {
			fmt.Printf("✗ %s: %v\n\n", name, outcome.Err)
			continue
		}
		res := outcome.Result
		fmt.Printf("── %s: %d itemsets, %d rules (%s mining, %s rules)\n",
			name, res.Table.Len(), len(res.Rules),
			res.Elapsed.Round(time.Microsecond), res.RulesElapsed.Round(time.Microsecond))

		if printed && comparison.Agree {
			continue
		}
		printed = true
		fmt.Println()
		fmt.Print(output.RenderItemsetTable(export.ItemsetRows(res.Table), top))
		fmt.Println()
		fmt.Print(output.RenderRuleTable(export.RuleRows(res.Rules), top))
		fmt.Println()
	}

	if len(report.Order) > 1 {
		fmt.Println()
		fmt.Print(output.RenderComparisonTable(comparison))
	}
}

func saveReport(name string, req mining.Request, report *mining.Report) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	batchID, runs, err := st.SaveReport(name, req, report)
	if err != nil {
		return fmt.Errorf("failed to record runs: %w", err)
	}
	fmt.Printf("\n✓ Recorded %d runs (batch %s)\n", len(runs), output.ShortID(batchID))
	return nil
}

func exportReport(name string, report *mining.Report) error {
	c := appConfig()
	format, outDir := c.Format, c.OutputDir
	if mineFormat != "" {
		format = mineFormat
	}
	if mineOutDir != "" {
		outDir = mineOutDir
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}

	w := export.New(outDir, f)
	for _, res := range report.Succeeded() {
		files, err := w.WriteResult(name, res)
		if err != nil {
			return fmt.Errorf("failed to export %s: %w", res.Strategy, err)
		}
		fmt.Printf("[%s] Saved files:\n  %s\n  %s\n", res.Strategy, files.Itemsets, files.Rules)
	}
	return nil
}
