package watcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/blackwell-systems/basketmine/internal/store"
)

// setupTestStore creates an in-memory SQLite store for tests and registers
// cleanup with t.Cleanup so callers don't need explicit defer.
func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("setupTestStore: open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// writeDataset writes an Item1..Item3 CSV with one row per basket.
func writeDataset(t *testing.T, path string, baskets ...string) {
	t.Helper()
	content := "Item1,Item2,Item3\n"
	for _, b := range baskets {
		content += b + "\n"
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		t.Fatalf("writeDataset: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("writeDataset: rename: %v", err)
	}
}

func datasetPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "grocerytransactions.csv")
}
