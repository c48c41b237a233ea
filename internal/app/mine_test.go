package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/basketmine/internal/store"
	"github.com/blackwell-systems/basketmine/internal/watcher"
)

const scenarioCSV = `TransactionID,Item1,Item2,Item3
1,a,b,
2,a,b,c
3,a,,
4,b,c,
`

// setupCLI isolates config, home and database in a temp dir and returns the
// dataset path and the database path.
func setupCLI(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("HOME", dir)

	csvPath := filepath.Join(dir, "scenariotransactions.csv")
	if err := os.WriteFile(csvPath, []byte(scenarioCSV), 0644); err != nil {
		t.Fatalf("failed to write dataset: %v", err)
	}

	resetFlags()
	t.Cleanup(resetFlags)
	return csvPath, filepath.Join(dir, "runs.db")
}

// resetFlags restores command globals between Execute calls.
func resetFlags() {
	cfg, dbPath, configPath, verbose = nil, "", "", false

	mineSupport, mineConfidence, mineStrategies = "", "", nil
	mineParallel, mineTimeout, mineExport = false, 0, false
	mineFormat, mineOutDir, mineNoSave, mineTop, mineInteractive = "", "", false, 10, false

	compareSupport, compareConfidence, compareParallel = "", "", false
	compareTimeout, compareNoSave, compareBatch = 0, false, ""

	runsDataset, runsLimit, runsTop, runsYes, runsKeep, runsNoSnap = "", 20, 10, false, 50, false
	snapshotDataset, snapshotReason, snapshotDirFlag, snapshotMaxAge = "", "manual", "", 90*24*time.Hour
	exportFormat, exportOutDir = "", ""
	datasetsTop = 10

	watchDaemon, watchDaemonChild, watchStop = false, false, false
	watchPIDFile, watchLogFile, watchSupport, watchConfidence = "", "", "", ""
	watchStrategies, watchDebounce = nil, watcher.DefaultDebounce

	RootCmd.SetIn(nil)
	RootCmd.SetArgs(nil)
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	RootCmd.SetArgs(args)
	return RootCmd.Execute()
}

func listRuns(t *testing.T, db string) []*store.Run {
	t.Helper()
	st, err := store.Open(db)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	runs, err := st.ListRuns("", 0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	return runs
}

func TestMineCommand(t *testing.T) {
	if mineCmd.Name() != "mine" {
		t.Errorf("expected command name 'mine', got '%s'", mineCmd.Name())
	}
	if mineCmd.Example == "" || mineCmd.Long == "" {
		t.Error("expected Long and Example to be set")
	}

	for _, name := range []string{"support", "confidence", "strategy", "parallel", "timeout", "export", "format", "out", "no-save", "top", "interactive"} {
		if mineCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected --%s flag to be registered", name)
		}
	}
	if f := mineCmd.Flags().ShorthandLookup("s"); f == nil || f.Name != "support" {
		t.Error("expected -s to be shorthand for --support")
	}
}

func TestMineEndToEnd(t *testing.T) {
	csvPath, db := setupCLI(t)
	outDir := filepath.Join(t.TempDir(), "results")

	err := execute(t, "mine", csvPath, "--db", db, "--support", "50", "--confidence", "0.6",
		"--parallel", "--export", "--format", "csv", "--out", outDir)
	if err != nil {
		t.Fatalf("mine failed: %v", err)
	}

	runs := listRuns(t, db)
	if len(runs) != 3 {
		t.Fatalf("expected 3 recorded runs, got %d", len(runs))
	}
	batch := runs[0].BatchID
	for _, r := range runs {
		if r.Dataset != "scenario" {
			t.Errorf("Dataset = %q, want scenario", r.Dataset)
		}
		if r.BatchID != batch {
			t.Error("expected all runs to share one batch")
		}
		if r.Failed() || r.ItemsetCount != 5 || r.RuleCount != 4 {
			t.Errorf("%s: itemsets=%d rules=%d err=%q, want 5/4", r.Strategy, r.ItemsetCount, r.RuleCount, r.Error)
		}
	}

	for _, strategy := range []string{"brute", "apriori", "fpgrowth"} {
		for _, suffix := range []string{"frequent_itemsets", "rules"} {
			path := filepath.Join(outDir, "scenario_"+strategy+"_"+suffix+".csv")
			if _, err := os.Stat(path); err != nil {
				t.Errorf("expected export %s: %v", path, err)
			}
		}
	}
}

func TestMineNoSave(t *testing.T) {
	csvPath, db := setupCLI(t)

	if err := execute(t, "mine", csvPath, "--db", db, "--strategy", "apriori", "--no-save"); err != nil {
		t.Fatalf("mine failed: %v", err)
	}
	if _, err := os.Stat(db); !os.IsNotExist(err) {
		t.Errorf("expected no database with --no-save, stat error = %v", err)
	}
}

func TestMineInteractive(t *testing.T) {
	csvPath, db := setupCLI(t)

	RootCmd.SetIn(strings.NewReader(csvPath + "\n50%\n0.6\n2\n"))
	if err := execute(t, "mine", "--interactive", "--db", db); err != nil {
		t.Fatalf("interactive mine failed: %v", err)
	}

	runs := listRuns(t, db)
	if len(runs) != 1 || runs[0].Strategy != "apriori" {
		t.Fatalf("expected one apriori run, got %+v", runs)
	}
	if runs[0].MinSupport != 0.5 {
		t.Errorf("MinSupport = %g, want 0.5", runs[0].MinSupport)
	}
}

func TestMineErrors(t *testing.T) {
	csvPath, db := setupCLI(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no dataset", []string{"mine", "--db", db}, "dataset name or CSV path is required"},
		{"unknown dataset", []string{"mine", "nosuchdataset", "--db", db}, "unknown dataset"},
		{"bad support", []string{"mine", csvPath, "--db", db, "--support", "abc"}, "invalid --support"},
		{"unknown strategy", []string{"mine", csvPath, "--db", db, "--strategy", "eclat", "--no-save"}, "all 1 strategies failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestCompareAndRunsCommands(t *testing.T) {
	csvPath, db := setupCLI(t)

	if err := execute(t, "compare", csvPath, "--db", db, "--support", "0.5"); err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	runs := listRuns(t, db)
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs after compare, got %d", len(runs))
	}

	resetFlags()
	if err := execute(t, "compare", "--batch", runs[0].BatchID[:8], "--db", db); err != nil {
		t.Errorf("compare --batch failed: %v", err)
	}

	resetFlags()
	if err := execute(t, "runs", "list", "--db", db, "--dataset", "scenario"); err != nil {
		t.Errorf("runs list failed: %v", err)
	}

	resetFlags()
	if err := execute(t, "runs", "show", runs[0].ID[:8], "--db", db); err != nil {
		t.Errorf("runs show failed: %v", err)
	}

	resetFlags()
	if err := execute(t, "runs", "history", "scenario", "--db", db); err != nil {
		t.Errorf("runs history failed: %v", err)
	}

	resetFlags()
	outDir := t.TempDir()
	if err := execute(t, "export", runs[0].ID, "--db", db, "--format", "json", "--out", outDir); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	exported := filepath.Join(outDir, "scenario_"+runs[0].Strategy+"_rules.json")
	if _, err := os.Stat(exported); err != nil {
		t.Errorf("expected %s: %v", exported, err)
	}

	resetFlags()
	if err := execute(t, "runs", "delete", runs[0].ID, "--db", db, "--yes"); err != nil {
		t.Fatalf("runs delete failed: %v", err)
	}
	if got := len(listRuns(t, db)); got != 2 {
		t.Errorf("expected 2 runs after delete, got %d", got)
	}

	resetFlags()
	RootCmd.SetIn(strings.NewReader("n\n"))
	if err := execute(t, "runs", "prune", "--keep", "0", "--db", db); err != nil {
		t.Fatalf("runs prune failed: %v", err)
	}
	if got := len(listRuns(t, db)); got != 2 {
		t.Errorf("declined prune deleted runs: %d left", got)
	}

	resetFlags()
	if err := execute(t, "runs", "prune", "--keep", "1", "--yes", "--db", db); err != nil {
		t.Fatalf("runs prune failed: %v", err)
	}
	if got := len(listRuns(t, db)); got != 1 {
		t.Errorf("expected 1 run after prune, got %d", got)
	}

	// Pruning left a snapshot behind that brings the deleted run back.
	home, _ := os.UserHomeDir()
	snaps, _ := filepath.Glob(filepath.Join(home, ".basketmine", "snapshots", "*.json"))
	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot after prune, got %v", snaps)
	}

	resetFlags()
	if err := execute(t, "snapshot", "restore", "latest", "--db", db); err != nil {
		t.Fatalf("snapshot restore failed: %v", err)
	}
	if got := len(listRuns(t, db)); got != 2 {
		t.Errorf("expected 2 runs after restore, got %d", got)
	}

	resetFlags()
	if err := execute(t, "snapshot", "list"); err != nil {
		t.Errorf("snapshot list failed: %v", err)
	}

	resetFlags()
	if err := execute(t, "runs", "show", "ffffffff", "--db", db); err == nil {
		t.Error("expected error for unknown run id")
	}
}

func TestSnapshotCommands(t *testing.T) {
	csvPath, db := setupCLI(t)
	snapDir := t.TempDir()

	if err := execute(t, "snapshot", "create", "--dir", snapDir, "--db", db); err == nil {
		t.Error("expected error when there are no runs to snapshot")
	}

	resetFlags()
	if err := execute(t, "mine", csvPath, "--db", db, "--strategy", "fpgrowth"); err != nil {
		t.Fatalf("mine failed: %v", err)
	}

	resetFlags()
	if err := execute(t, "snapshot", "create", "--dir", snapDir, "--reason", "test", "--db", db); err != nil {
		t.Fatalf("snapshot create failed: %v", err)
	}
	snaps, _ := filepath.Glob(filepath.Join(snapDir, "*.json"))
	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot file, got %v", snaps)
	}

	other := filepath.Join(t.TempDir(), "other.db")
	resetFlags()
	if err := execute(t, "snapshot", "restore", filepath.Base(snaps[0]), "--dir", snapDir, "--db", other); err != nil {
		t.Fatalf("snapshot restore by file name failed: %v", err)
	}
	if runs := listRuns(t, other); len(runs) != 1 || runs[0].Strategy != "fpgrowth" {
		t.Errorf("expected the fpgrowth run in the other database, got %+v", runs)
	}

	resetFlags()
	if err := execute(t, "snapshot", "clean", "--dir", snapDir, "--older-than", "1h"); err != nil {
		t.Fatalf("snapshot clean failed: %v", err)
	}
	if snaps, _ := filepath.Glob(filepath.Join(snapDir, "*.json")); len(snaps) != 1 {
		t.Errorf("a fresh snapshot must survive clean, got %v", snaps)
	}
}

func TestDatasetsCommands(t *testing.T) {
	csvPath, _ := setupCLI(t)

	if err := execute(t, "datasets", "list"); err != nil {
		t.Errorf("datasets list failed: %v", err)
	}

	resetFlags()
	if err := execute(t, "datasets", "inspect", csvPath, "--top", "2"); err != nil {
		t.Errorf("datasets inspect failed: %v", err)
	}

	resetFlags()
	if err := execute(t, "datasets", "inspect", "bookstore"); err == nil {
		t.Error("expected error for a registered dataset whose file is missing")
	}
}

func TestMineTimeoutFlag(t *testing.T) {
	csvPath, db := setupCLI(t)

	// A generous timeout must not affect a tiny dataset.
	if err := execute(t, "mine", csvPath, "--db", db, "--timeout", time.Minute.String(), "--no-save"); err != nil {
		t.Fatalf("mine with timeout failed: %v", err)
	}
}
