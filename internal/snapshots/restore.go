package snapshots

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/blackwell-systems/basketmine/internal/store"
)

// RestoreSnapshot inserts the runs of a snapshot file into the store. Runs
// whose id is already recorded are skipped, so restoring twice is harmless.
func (m *Manager) RestoreSnapshot(path string) (restored, skipped int, err error) {
	snapshotData, err := loadSnapshotFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load snapshot file: %w", err)
	}

	for _, rs := range snapshotData.Runs {
		if rs == nil || rs.Run == nil || rs.Run.ID == "" {
			return restored, skipped, fmt.Errorf("snapshot %s: run without id", path)
		}

		_, err := m.store.GetRun(rs.Run.ID)
		switch {
		case err == nil:
			skipped++
			continue
		case !errors.Is(err, store.ErrRunNotFound):
			return restored, skipped, fmt.Errorf("failed to check run %s: %w", rs.Run.ID, err)
		}

		if err := m.store.InsertRun(rs.Run, rs.Itemsets, rs.Rules); err != nil {
			return restored, skipped, fmt.Errorf("failed to restore run %s: %w", rs.Run.ID, err)
		}
		restored++
	}
	return restored, skipped, nil
}

// loadSnapshotFile reads and parses a snapshot JSON file.
func loadSnapshotFile(path string) (*SnapshotData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var snapshotData SnapshotData
	if err := json.Unmarshal(data, &snapshotData); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot JSON: %w", err)
	}
	if snapshotData.Version < 1 || snapshotData.Version > FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, snapshotData.Version)
	}
	return &snapshotData, nil
}
