package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/basketmine/internal/mining"
	"github.com/blackwell-systems/basketmine/internal/watcher"
)

func TestWatchCommand(t *testing.T) {
	// Test that watch command is properly configured
	if watchCmd.Name() != "watch" {
		t.Errorf("expected command name 'watch', got '%s'", watchCmd.Name())
	}

	if watchCmd.Short == "" {
		t.Error("expected Short description to be set")
	}

	if watchCmd.Long == "" {
		t.Error("expected Long description to be set")
	}

	if watchCmd.Example == "" {
		t.Error("expected Example to be set")
	}

	if watchCmd.RunE == nil {
		t.Error("expected RunE to be set")
	}
}

func TestWatchCommandFlags(t *testing.T) {
	tests := []struct {
		flagName     string
		shouldHidden bool
	}{
		{"daemon", false},
		{"daemon-child", true},
		{"pid-file", false},
		{"log-file", false},
		{"stop", false},
		{"support", false},
		{"confidence", false},
		{"strategy", false},
		{"debounce", false},
	}

	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			flag := watchCmd.Flags().Lookup(tt.flagName)
			if flag == nil {
				t.Fatalf("expected flag '%s' to exist", tt.flagName)
			}
			if flag.Hidden != tt.shouldHidden {
				t.Errorf("flag '%s' hidden = %v, want %v", tt.flagName, flag.Hidden, tt.shouldHidden)
			}
		})
	}

	if got := watchCmd.Flags().Lookup("debounce").DefValue; got != watcher.DefaultDebounce.String() {
		t.Errorf("debounce default = %s, want %s", got, watcher.DefaultDebounce)
	}
}

func TestDaemonArgs(t *testing.T) {
	oldPID := watchPIDFile
	defer func() { watchPIDFile = oldPID }()
	watchPIDFile = "/tmp/watch.pid"

	got := daemonArgs([]string{"watch", "grocery", "--daemon", "--support", "10", "--daemon=true"})
	want := "watch grocery --support 10 --pid-file /tmp/watch.pid"
	if strings.Join(got, " ") != want {
		t.Errorf("daemonArgs() = %q, want %q", strings.Join(got, " "), want)
	}
}

func TestWatchStopWhenNotRunning(t *testing.T) {
	setupCLI(t)
	defer func() { watchStop, watchPIDFile, watchLogFile = false, "", "" }()

	pidFile := filepath.Join(t.TempDir(), "watch.pid")
	if err := execute(t, "watch", "--stop", "--pid-file", pidFile); err != nil {
		t.Errorf("watch --stop with no daemon should succeed, got %v", err)
	}
}

func TestWatchRequiresDataset(t *testing.T) {
	setupCLI(t)
	defer func() { watchPIDFile, watchLogFile = "", "" }()

	err := execute(t, "watch")
	if err == nil || !strings.Contains(err.Error(), "dataset name or CSV path is required") {
		t.Errorf("expected missing dataset error, got %v", err)
	}

	// The default state files land under ~/.basketmine.
	home, _ := os.UserHomeDir()
	if watchPIDFile != filepath.Join(home, ".basketmine", "watch.pid") {
		t.Errorf("watchPIDFile = %q", watchPIDFile)
	}
}

func TestPrintBatch(t *testing.T) {
	csvPath, _ := setupCLI(t)

	st := newTestStore(t)
	w, err := watcher.New(st, watcher.Options{
		Path:          csvPath,
		MinSupport:    0.5,
		MinConfidence: 0.6,
		Strategies:    []string{mining.StrategyAll},
		Debounce:      10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("watcher.New() error = %v", err)
	}

	b := w.Mine()
	if b.Err != nil {
		t.Fatalf("Mine() error = %v", b.Err)
	}

	// Neither mode may panic on a successful or a failed pass.
	printBatch(false)(b)
	printBatch(true)(b)
	printBatch(false)(&watcher.Batch{Err: os.ErrNotExist})
}
