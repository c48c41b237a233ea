package snapshots

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// CreateSnapshot writes the recorded runs of dataset, or of every dataset
// when dataset is empty, to a new JSON file and returns its path and the
// number of runs written.
func (m *Manager) CreateSnapshot(dataset, reason string) (string, int, error) {
	runs, err := m.store.ListRuns(dataset, 0)
	if err != nil {
		return "", 0, fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		if dataset != "" {
			return "", 0, fmt.Errorf("%w for dataset %s", ErrNothingToSnapshot, dataset)
		}
		return "", 0, ErrNothingToSnapshot
	}

	if err := os.MkdirAll(m.snapshotDir, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	snapshotData := &SnapshotData{
		Version:   FormatVersion,
		CreatedAt: time.Now().UTC(),
		Reason:    reason,
		Runs:      make([]*RunSnapshot, 0, len(runs)),
	}

	// Oldest first so a restore replays history in order.
	for i := len(runs) - 1; i >= 0; i-- {
		run := runs[i]
		rs := &RunSnapshot{Run: run}
		if !run.Failed() {
			if rs.Itemsets, err = m.store.GetItemsets(run.ID); err != nil {
				return "", 0, fmt.Errorf("failed to get itemsets of run %s: %w", run.ID, err)
			}
			if rs.Rules, err = m.store.GetRules(run.ID); err != nil {
				return "", 0, fmt.Errorf("failed to get rules of run %s: %w", run.ID, err)
			}
		}
		snapshotData.Runs = append(snapshotData.Runs, rs)
	}

	// Generate snapshot filename: YYYY-MM-DD-HHMMSS-<rand>.json
	timestamp := snapshotData.CreatedAt.Format("2006-01-02-150405")
	snapshotPath := filepath.Join(m.snapshotDir, fmt.Sprintf("%s-%s.json", timestamp, uuid.NewString()[:8]))

	jsonData, err := json.MarshalIndent(snapshotData, "", "  ")
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal snapshot data: %w", err)
	}

	tmp := snapshotPath + ".tmp"
	if err := os.WriteFile(tmp, jsonData, 0644); err != nil {
		return "", 0, fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := os.Rename(tmp, snapshotPath); err != nil {
		os.Remove(tmp)
		return "", 0, fmt.Errorf("failed to write snapshot file: %w", err)
	}

	log.WithFields(log.Fields{"path": snapshotPath, "runs": len(runs)}).Debug("snapshot written")
	return snapshotPath, len(runs), nil
}

// ListSnapshots returns the snapshot files in the snapshot directory,
// newest first. A missing directory holds no snapshots.
func (m *Manager) ListSnapshots() ([]*Info, error) {
	entries, err := os.ReadDir(m.snapshotDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot directory: %w", err)
	}

	var infos []*Info
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(m.snapshotDir, e.Name())
		data, err := loadSnapshotFile(path)
		if err != nil {
			log.WithError(err).WithField("path", path).Warn("skipping unreadable snapshot")
			continue
		}
		var size int64
		if fi, err := e.Info(); err == nil {
			size = fi.Size()
		}
		infos = append(infos, &Info{
			Path:      path,
			CreatedAt: data.CreatedAt,
			Reason:    data.Reason,
			Runs:      len(data.Runs),
			SizeBytes: size,
		})
	}

	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos, nil
}

// CleanupOldSnapshots removes snapshot files older than maxAge and returns
// how many were removed.
func (m *Manager) CleanupOldSnapshots(maxAge time.Duration) (int, error) {
	infos, err := m.ListSnapshots()
	if err != nil {
		return 0, err
	}

	cutoffDate := time.Now().Add(-maxAge)
	deletedCount := 0
	for _, info := range infos {
		if !info.CreatedAt.Before(cutoffDate) {
			continue
		}
		if err := os.Remove(info.Path); err != nil && !os.IsNotExist(err) {
			return deletedCount, fmt.Errorf("failed to delete snapshot file %s: %w", info.Path, err)
		}
		deletedCount++
	}
	return deletedCount, nil
}
