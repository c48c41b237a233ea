package snapshots

import (
	"errors"
	"time"

	"github.com/blackwell-systems/basketmine/internal/export"
	"github.com/blackwell-systems/basketmine/internal/store"
)

// FormatVersion is written into every snapshot file. Restore refuses newer
// versions.
const FormatVersion = 1

var (
	// ErrNothingToSnapshot is returned when no run matches.
	ErrNothingToSnapshot = errors.New("no runs to snapshot")
	// ErrUnsupportedVersion is returned for snapshot files from a newer release.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)

// SnapshotData represents the JSON structure stored in snapshot files.
type SnapshotData struct {
	Version   int            `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	Reason    string         `json:"reason,omitempty"`
	Runs      []*RunSnapshot `json:"runs"`
}

// RunSnapshot is one recorded run with its results. Failed runs carry no
// itemsets or rules.
type RunSnapshot struct {
	Run      *store.Run          `json:"run"`
	Itemsets []export.ItemsetRow `json:"itemsets"`
	Rules    []export.RuleRow    `json:"rules"`
}

// Info describes a snapshot file on disk.
type Info struct {
	Path      string
	CreatedAt time.Time
	Reason    string
	Runs      int
	SizeBytes int64
}

// Manager manages snapshot creation, restoration, and cleanup.
type Manager struct {
	store       *store.Store
	snapshotDir string
}

// New creates a new snapshot Manager.
func New(store *store.Store, snapshotDir string) *Manager {
	return &Manager{
		store:       store,
		snapshotDir: snapshotDir,
	}
}

// Dir returns the directory snapshots are written to.
func (m *Manager) Dir() string {
	return m.snapshotDir
}
