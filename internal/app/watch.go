package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/basketmine/internal/analyzer"
	"github.com/blackwell-systems/basketmine/internal/mining"
	"github.com/blackwell-systems/basketmine/internal/output"
	"github.com/blackwell-systems/basketmine/internal/store"
	"github.com/blackwell-systems/basketmine/internal/watcher"
)

var (
	watchDaemon      bool
	watchDaemonChild bool
	watchPIDFile     string
	watchLogFile     string
	watchStop        bool
	watchSupport     string
	watchConfidence  string
	watchStrategies  []string
	watchDebounce    time.Duration

	watchCmd = &cobra.Command{
		Use:   "watch [dataset | file.csv]",
		Short: "Re-mine a dataset whenever its file changes",
		Long: `Watch a dataset file and mine it again every time it changes.

The dataset is mined once at start. After that every write, create or
rename of the file (debounced) reloads it, runs the strategies and records a
new batch in the run history.

Watch modes:
  • Foreground (default): Run in current terminal with Ctrl+C to stop
  • Daemon: Run as a background process logging to a file
  • Stop: Stop a running daemon`,
		Example: `  # Run in foreground (Ctrl+C to stop)
  basketmine watch ./grocerytransactions.csv

  # Run as background daemon with custom thresholds
  basketmine watch cafe --support 5 --confidence 70 --daemon

  # Stop running daemon
  basketmine watch --stop

  # Use custom PID and log files
  basketmine watch grocery --daemon --pid-file /tmp/watch.pid --log-file /tmp/watch.log`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run as background daemon")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal flag for daemon child process")
	watchCmd.Flags().StringVar(&watchPIDFile, "pid-file", "", "PID file path (default: ~/.basketmine/watch.pid)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "log file path (default: ~/.basketmine/watch.log)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop running daemon")
	watchCmd.Flags().StringVarP(&watchSupport, "support", "s", "", "minimum support, fraction or percent")
	watchCmd.Flags().StringVarP(&watchConfidence, "confidence", "c", "", "minimum confidence, fraction or percent")
	watchCmd.Flags().StringSliceVar(&watchStrategies, "strategy", nil, "strategy to run (repeatable, default from config)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "quiet period after a change before re-mining")

	// Hide the internal daemon-child flag from help
	watchCmd.Flags().MarkHidden("daemon-child")

	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchPIDFile == "" {
		defaultPID, err := stateFile("watch.pid")
		if err != nil {
			return fmt.Errorf("failed to get default PID file path: %w", err)
		}
		watchPIDFile = defaultPID
	}

	if watchLogFile == "" {
		defaultLog, err := stateFile("watch.log")
		if err != nil {
			return fmt.Errorf("failed to get default log file path: %w", err)
		}
		watchLogFile = defaultLog
	}

	if watchStop {
		return stopWatchDaemon()
	}
	if len(args) == 0 {
		return fmt.Errorf("a dataset name or CSV path is required")
	}

	if watchDaemon {
		return startWatchDaemon()
	}

	c := appConfig()
	name, path, err := c.ResolveDataset(args[0])
	if err != nil {
		return err
	}
	minSupport, minConfidence, err := thresholds(watchSupport, watchConfidence)
	if err != nil {
		return err
	}
	strategies := c.Strategies
	if len(watchStrategies) > 0 {
		strategies = watchStrategies
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	w, err := watcher.New(st, watcher.Options{
		Path:          path,
		CSV:           c.DatasetOptions(name),
		MinSupport:    minSupport,
		MinConfidence: minConfidence,
		Strategies:    strategies,
		Parallel:      c.Parallel,
		Timeout:       c.Timeout,
		Debounce:      watchDebounce,
		OnBatch:       printBatch(watchDaemonChild),
	})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if watchDaemonChild {
		// Output is redirected to the log file; logrus carries the details.
		return w.RunDaemon(watchPIDFile)
	}
	return runWatchForeground(w, st, path)
}

// printBatch returns the per-pass callback. The daemon child stays quiet.
func printBatch(quiet bool) func(*watcher.Batch) {
	return func(b *watcher.Batch) {
		if quiet {
			return
		}
		ts := time.Now().Format("15:04:05")
		if b.Err != nil {
			fmt.Printf("[%s] ✗ %v\n", ts, b.Err)
			return
		}
		c := analyzer.Compare(b.Report)
		fastest, _ := c.Fastest()
		fmt.Printf("[%s] ✓ %s: %d transactions, %d/%d strategies ok, fastest %s (batch %s)\n",
			ts, b.Dataset.Name, b.Dataset.Transactions.Len(),
			c.Succeeded(), len(c.Rows), fastest.Strategy, output.ShortID(b.BatchID))
		if best, ok := firstResult(b.Report); ok {
			fmt.Printf("           %d itemsets, %d rules\n", best.Table.Len(), len(best.Rules))
		}
		if !c.Agree {
			fmt.Print(output.RenderComparisonTable(c))
		}
	}
}

func firstResult(report *mining.Report) (*mining.Result, bool) {
	results := report.Succeeded()
	if len(results) == 0 {
		return nil, false
	}
	return results[0], true
}

func stopWatchDaemon() error {
	running, err := watcher.IsDaemonRunning(watchPIDFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if !running {
		fmt.Println("Daemon is not running")
		return nil
	}

	spinner := output.NewSpinner("Stopping daemon...")
	spinner.Start()
	if err := watcher.StopDaemon(watchPIDFile); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	spinner.StopWithMessage("✓ Daemon stopped")

	return nil
}

func startWatchDaemon() error {
	spinner := output.NewSpinner("Starting daemon...")
	spinner.Start()
	if err := watcher.StartDaemon(watchPIDFile, watchLogFile, daemonArgs(os.Args[1:])); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	spinner.StopWithMessage("✓ Daemon started")

	fmt.Printf("\nDataset watch daemon started\n")
	fmt.Printf("  PID file: %s\n", watchPIDFile)
	fmt.Printf("  Log file: %s\n", watchLogFile)
	fmt.Printf("\nTo stop: basketmine watch --stop\n")

	return nil
}

// daemonArgs returns the command line for the daemon child: the given
// arguments without --daemon, with the resolved PID file pinned.
func daemonArgs(args []string) []string {
	out := make([]string, 0, len(args)+2)
	for _, a := range args {
		if a == "--daemon" || a == "--daemon=true" {
			continue
		}
		out = append(out, a)
	}
	return append(out, "--pid-file", watchPIDFile)
}

func runWatchForeground(w *watcher.Watcher, st *store.Store, path string) error {
	fmt.Printf("Watching %s (press Ctrl+C to stop)...\n\n", path)

	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	sig := <-sigCh
	fmt.Printf("\nReceived signal %v, shutting down...\n", sig)

	spinner := output.NewSpinner("Stopping watcher...")
	spinner.Start()
	if err := w.Stop(); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to stop watcher: %w", err)
	}
	spinner.StopWithMessage("✓ Watcher stopped")

	runs, err := st.ListRuns("", 0)
	if err == nil {
		fmt.Printf("%d mining passes, %d runs in history\n", w.Passes(), len(runs))
	}
	return nil
}
