package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/basketmine/internal/analyzer"
	"github.com/blackwell-systems/basketmine/internal/mining"
	"github.com/blackwell-systems/basketmine/internal/output"
)

var (
	compareSupport    string
	compareConfidence string
	compareParallel   bool
	compareTimeout    time.Duration
	compareNoSave     bool
	compareBatch      string
)

var compareCmd = &cobra.Command{
	Use:   "compare [dataset | file.csv]",
	Short: "Run every strategy and compare results and timings",
	Long: `Run brute force, Apriori and FP-Growth on the same dataset and compare them.

The comparison shows, per strategy, the number of itemsets and rules, the
number of candidate itemsets whose support was counted, the time spent and
the speedup over the slowest strategy. All strategies must produce identical
itemset tables; any difference is listed.

The candidate table shows, per itemset size, how many candidates brute force
counted and how many each pruning strategy counted instead.

With --batch, a previously recorded batch is compared from the history
instead of mining again.`,
	Example: `  # Compare strategies on a registered dataset
  basketmine compare grocery --support 10

  # Compare a recorded batch
  basketmine compare --batch 3f2a9c1e`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVarP(&compareSupport, "support", "s", "", "minimum support, fraction or percent")
	compareCmd.Flags().StringVarP(&compareConfidence, "confidence", "c", "", "minimum confidence, fraction or percent")
	compareCmd.Flags().BoolVar(&compareParallel, "parallel", false, "run strategies concurrently")
	compareCmd.Flags().DurationVar(&compareTimeout, "timeout", 0, "cancel mining after this long (0 = no limit)")
	compareCmd.Flags().BoolVar(&compareNoSave, "no-save", false, "do not record the runs in the history database")
	compareCmd.Flags().StringVar(&compareBatch, "batch", "", "compare a recorded batch instead of mining")

	RootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	if compareBatch != "" {
		return compareRecordedBatch(compareBatch)
	}
	if len(args) == 0 {
		return fmt.Errorf("a dataset name or CSV path is required (or use --batch)")
	}

	minSupport, minConfidence, err := thresholds(compareSupport, compareConfidence)
	if err != nil {
		return err
	}

	ds, err := loadDataset(args[0])
	if err != nil {
		return err
	}

	req := mining.Request{
		Transactions:  ds.Transactions,
		MinSupport:    minSupport,
		MinConfidence: minConfidence,
		Strategies:    []string{mining.StrategyAll},
		Parallel:      compareParallel,
	}
	timeout := appConfig().Timeout
	if cmd.Flags().Changed("timeout") {
		timeout = compareTimeout
	}

	fmt.Printf("\nComparing strategies on %s (%d transactions, support %.1f%%, confidence %.1f%%)\n\n",
		ds.Name, ds.Transactions.Len(), minSupport*100, minConfidence*100)
	report := runRequest(req, timeout)
	fmt.Println()

	fmt.Print(output.RenderComparisonTable(analyzer.Compare(report)))
	printCandidateLevels(report)

	if !compareNoSave {
		if err := saveReport(ds.Name, req, report); err != nil {
			return err
		}
	}
	return nil
}

// printCandidateLevels prints per-size candidate counts of each pruning
// strategy against brute force.
func printCandidateLevels(report *mining.Report) {
	brute, ok := report.Result(mining.StrategyBrute)
	if !ok {
		return
	}
	for _, res := range report.Succeeded() {
		if res.Strategy == mining.StrategyBrute {
			continue
		}
		fmt.Println()
		fmt.Print(output.RenderLevelTable(mining.StrategyBrute, res.Strategy,
			analyzer.CandidateReduction(brute.Table, res.Table)))
	}
}

func compareRecordedBatch(batchID string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	c, err := analyzer.New(st).CompareBatch(batchID)
	if err != nil {
		return fmt.Errorf("failed to compare batch %s: %w", batchID, err)
	}
	fmt.Print(output.RenderComparisonTable(c))
	return nil
}
