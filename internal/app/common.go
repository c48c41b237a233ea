package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/basketmine/internal/dataset"
	"github.com/blackwell-systems/basketmine/internal/mining"
	"github.com/blackwell-systems/basketmine/internal/output"
)

// thresholds resolves --support/--confidence flag text against the config.
// Empty flag text keeps the configured value.
func thresholds(support, confidence string) (float64, float64, error) {
	c := appConfig()
	minSupport, minConfidence := c.MinSupport, c.MinConfidence

	var err error
	if support != "" {
		if minSupport, err = mining.ParseThreshold(support); err != nil {
			return 0, 0, fmt.Errorf("invalid --support: %w", err)
		}
	}
	if confidence != "" {
		if minConfidence, err = mining.ParseThreshold(confidence); err != nil {
			return 0, 0, fmt.Errorf("invalid --confidence: %w", err)
		}
	}
	return minSupport, minConfidence, nil
}

// loadDataset resolves a dataset name or path and loads it with a spinner.
func loadDataset(arg string) (*dataset.Dataset, error) {
	c := appConfig()
	name, path, err := c.ResolveDataset(arg)
	if err != nil {
		return nil, err
	}

	spinner := output.NewSpinner(fmt.Sprintf("Loading %s", path))
	spinner.Start()
	ds, err := dataset.LoadCSV(path, c.DatasetOptions(name))
	if err != nil {
		spinner.Stop()
		return nil, fmt.Errorf("failed to load dataset %s: %w", name, err)
	}
	spinner.StopWithMessage(fmt.Sprintf("✓ Loaded %d transactions from %s", ds.Transactions.Len(), name))

	if ds.Dropped > 0 {
		fmt.Printf("  (%d empty rows dropped)\n", ds.Dropped)
	}
	return ds, nil
}

// runRequest runs req with a stage display and an optional timeout.
func runRequest(req mining.Request, timeout time.Duration) *mining.Report {
	orch := mining.DefaultOrchestrator()
	stages := output.NewStages(orch.Resolve(req.Strategies))
	req.OnDone = func(name string, out mining.Outcome) {
		stages.Done(name, out.Err == nil)
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return orch.Run(ctx, req)
}

// confirm asks a yes/no question on in. Anything but y or yes is a no.
func confirm(in io.Reader, prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)

	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// boolFlag returns the flag value when it was given on the command line,
// so --name=false can override a configured true.
func boolFlag(cmd *cobra.Command, name string, value, configured bool) bool {
	if cmd.Flags().Changed(name) {
		return value
	}
	return configured
}
