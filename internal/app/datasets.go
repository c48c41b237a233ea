package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/basketmine/internal/dataset"
	"github.com/blackwell-systems/basketmine/internal/output"
)

var datasetsTop int

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List and inspect transaction datasets",
	Long: `List registered datasets and inspect their shape.

Five sample datasets are registered by default (grocery, shopping, cafe,
restaurant, bookstore), each expected as <name>transactions.csv in the data
directory. More can be added under 'datasets:' in config.yaml or as
name=path lines in the datasets file next to it.`,
}

var datasetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered datasets",
	Args:  cobra.NoArgs,
	RunE:  runDatasetsList,
}

var datasetsInspectCmd = &cobra.Command{
	Use:   "inspect <dataset | file.csv>",
	Short: "Show transaction count, basket sizes and the most frequent items",
	Args:  cobra.ExactArgs(1),
	RunE:  runDatasetsInspect,
}

func init() {
	datasetsInspectCmd.Flags().IntVar(&datasetsTop, "top", 10, "most frequent items to show")

	datasetsCmd.AddCommand(datasetsListCmd, datasetsInspectCmd)
	RootCmd.AddCommand(datasetsCmd)
}

func runDatasetsList(cmd *cobra.Command, args []string) error {
	c := appConfig()

	fmt.Printf("%-4s %-14s %-8s %s\n", "#", "Name", "Status", "Path")
	for i, name := range c.DatasetNames() {
		path, _ := c.DatasetPath(name)
		status := "ok"
		if _, err := os.Stat(path); err != nil {
			status = "missing"
		}
		fmt.Printf("%-4d %-14s %-8s %s\n", i+1, name, status, path)
	}
	return nil
}

func runDatasetsInspect(cmd *cobra.Command, args []string) error {
	if datasetsTop < 0 {
		return fmt.Errorf("invalid top: %d (must not be negative)", datasetsTop)
	}

	ds, err := loadDataset(args[0])
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Print(output.RenderDatasetSummary(ds.Name, dataset.Summarize(ds.Transactions, datasetsTop), ds.Dropped))
	return nil
}
