package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/basketmine/internal/export"
)

var (
	exportFormat string
	exportOutDir string
)

var exportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Write a recorded run's itemsets and rules to files",
	Long: `Write the itemsets and rules of a recorded run to two files:

  <dataset>_<strategy>_frequent_itemsets.<ext>
  <dataset>_<strategy>_rules.<ext>

Itemsets are sorted by count, most frequent first. Rules keep the order in
which they were derived.`,
	Example: `  basketmine export 3f2a9c1e
  basketmine export 3f2a9c1e --format json --out results/`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "xlsx, csv or json (default from config: xlsx)")
	exportCmd.Flags().StringVar(&exportOutDir, "out", "", "output directory (default from config: .)")

	RootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	c := appConfig()
	format, outDir := c.Format, c.OutputDir
	if exportFormat != "" {
		format = exportFormat
	}
	if exportOutDir != "" {
		outDir = exportOutDir
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.GetRun(args[0])
	if err != nil {
		return err
	}
	if run.Failed() {
		return fmt.Errorf("run %s failed (%s), nothing to export", run.ID, run.Error)
	}

	itemsets, err := st.GetItemsets(run.ID)
	if err != nil {
		return fmt.Errorf("failed to load itemsets: %w", err)
	}
	rules, err := st.GetRules(run.ID)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}

	files, err := export.New(outDir, f).Write(run.Dataset, run.Strategy, itemsets, rules)
	if err != nil {
		return err
	}
	fmt.Printf("[%s] Saved files:\n  %s\n  %s\n", run.Strategy, files.Itemsets, files.Rules)
	return nil
}
