package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/basketmine/internal/analyzer"
	"github.com/blackwell-systems/basketmine/internal/output"
	"github.com/blackwell-systems/basketmine/internal/snapshots"
)

var (
	runsDataset string
	runsLimit   int
	runsTop     int
	runsYes     bool
	runsKeep    int
	runsNoSnap  bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect and manage the run history",
	Long: `Inspect and manage recorded mining runs.

Every strategy execution of 'basketmine mine', 'compare', 'watch' and the
HTTP API (with persist) is recorded with its thresholds, timings, itemsets
and rules. Run ids may be abbreviated to any unique prefix.`,
	Example: `  basketmine runs list --dataset grocery
  basketmine runs show 3f2a9c1e
  basketmine runs history grocery
  basketmine runs delete 3f2a9c1e --yes
  basketmine runs prune --keep 100`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its itemsets and rules",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

var runsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest runs",
	Args:  cobra.NoArgs,
	RunE:  runRunsPrune,
}

var runsHistoryCmd = &cobra.Command{
	Use:   "history [dataset]",
	Short: "Show per-strategy timing statistics",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRunsHistory,
}

func init() {
	runsListCmd.Flags().StringVar(&runsDataset, "dataset", "", "only runs of this dataset")
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to list (0 = all)")
	runsShowCmd.Flags().IntVar(&runsTop, "top", 10, "rows to show per table (0 = all)")
	runsDeleteCmd.Flags().BoolVar(&runsYes, "yes", false, "skip confirmation prompt")
	runsPruneCmd.Flags().IntVar(&runsKeep, "keep", 50, "number of newest runs to keep")
	runsPruneCmd.Flags().BoolVar(&runsYes, "yes", false, "skip confirmation prompt")
	runsPruneCmd.Flags().BoolVar(&runsNoSnap, "no-snapshot", false, "skip the snapshot taken before pruning")

	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsDeleteCmd, runsPruneCmd, runsHistoryCmd)
	RootCmd.AddCommand(runsCmd)
}

func runRunsList(cmd *cobra.Command, args []string) error {
	if runsLimit < 0 {
		return fmt.Errorf("invalid limit: %d (must not be negative)", runsLimit)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(runsDataset, runsLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	fmt.Print(output.RenderRunTable(runs))
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.GetRun(args[0])
	if err != nil {
		return err
	}
	fmt.Print(output.RenderRunDetail(run))
	if run.Failed() {
		return nil
	}

	itemsets, err := st.GetItemsets(run.ID)
	if err != nil {
		return fmt.Errorf("failed to load itemsets: %w", err)
	}
	rules, err := st.GetRules(run.ID)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}

	fmt.Println()
	fmt.Print(output.RenderItemsetTable(itemsets, runsTop))
	fmt.Println()
	fmt.Print(output.RenderRuleTable(rules, runsTop))
	return nil
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.GetRun(args[0])
	if err != nil {
		return err
	}
	if !runsYes && !confirm(cmd.InOrStdin(), fmt.Sprintf("Delete %s run %s of %s?", run.Strategy, output.ShortID(run.ID), run.Dataset)) {
		fmt.Println("Cancelled")
		return nil
	}

	if err := st.DeleteRun(run.ID); err != nil {
		return err
	}
	fmt.Printf("✓ Deleted run %s\n", output.ShortID(run.ID))
	return nil
}

func runRunsPrune(cmd *cobra.Command, args []string) error {
	if runsKeep < 0 {
		return fmt.Errorf("invalid keep: %d (must not be negative)", runsKeep)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if !runsYes && !confirm(cmd.InOrStdin(), fmt.Sprintf("Delete every run except the newest %d?", runsKeep)) {
		fmt.Println("Cancelled")
		return nil
	}

	if !runsNoSnap {
		m, err := snapshotManager(st)
		if err != nil {
			return err
		}
		path, saved, err := m.CreateSnapshot("", "runs prune")
		switch {
		case errors.Is(err, snapshots.ErrNothingToSnapshot):
		case err != nil:
			return fmt.Errorf("failed to snapshot before pruning: %w", err)
		default:
			fmt.Printf("Snapshot of %d runs saved to %s\n", saved, path)
		}
	}

	n, err := st.PruneRuns(runsKeep)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Pruned %d runs\n", n)
	return nil
}

func runRunsHistory(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var ds string
	if len(args) == 1 {
		ds = args[0]
	}
	stats, err := analyzer.New(st).History(ds)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	fmt.Print(output.RenderHistoryTable(stats))
	return nil
}
