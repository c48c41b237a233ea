package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/basketmine/internal/snapshots"
	"github.com/blackwell-systems/basketmine/internal/store"
)

var (
	snapshotDataset string
	snapshotReason  string
	snapshotDirFlag string
	snapshotMaxAge  time.Duration
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Back up and restore the run history",
	Long: `Write recorded runs, with their itemsets and rules, to JSON snapshot files and
restore them into any history database.

'basketmine runs prune' takes a snapshot automatically before deleting
anything. Restoring skips runs that are already recorded.`,
	Example: `  basketmine snapshot create --reason "before upgrade"
  basketmine snapshot list
  basketmine snapshot restore latest
  basketmine snapshot clean --older-than 720h`,
}

var snapshotCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Snapshot the run history",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotCreate,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshot files, newest first",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotList,
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore <file | latest>",
	Short: "Restore runs from a snapshot file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotRestore,
}

var snapshotCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete old snapshot files",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotClean,
}

func init() {
	snapshotCmd.PersistentFlags().StringVar(&snapshotDirFlag, "dir", "", "snapshot directory (default: ~/.basketmine/snapshots)")
	snapshotCreateCmd.Flags().StringVar(&snapshotDataset, "dataset", "", "only runs of this dataset")
	snapshotCreateCmd.Flags().StringVar(&snapshotReason, "reason", "manual", "note stored in the snapshot")
	snapshotCleanCmd.Flags().DurationVar(&snapshotMaxAge, "older-than", 90*24*time.Hour, "delete snapshots older than this")

	snapshotCmd.AddCommand(snapshotCreateCmd, snapshotListCmd, snapshotRestoreCmd, snapshotCleanCmd)
	RootCmd.AddCommand(snapshotCmd)
}

// snapshotManager returns a manager for st rooted at --dir or the default
// snapshot directory.
func snapshotManager(st *store.Store) (*snapshots.Manager, error) {
	dir := snapshotDirFlag
	if dir == "" {
		def, err := stateFile("snapshots")
		if err != nil {
			return nil, err
		}
		dir = def
	}
	return snapshots.New(st, dir), nil
}

func runSnapshotCreate(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	m, err := snapshotManager(st)
	if err != nil {
		return err
	}
	path, n, err := m.CreateSnapshot(snapshotDataset, snapshotReason)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Saved %d runs to %s\n", n, path)
	return nil
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	m, err := snapshotManager(nil)
	if err != nil {
		return err
	}
	infos, err := m.ListSnapshots()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Printf("No snapshots in %s\n", m.Dir())
		return nil
	}

	fmt.Printf("%-40s %-14s %6s %9s  %s\n", "File", "Created", "Runs", "Size", "Reason")
	for _, info := range infos {
		fmt.Printf("%-40s %-14s %6d %9s  %s\n",
			filepath.Base(info.Path), humanize.Time(info.CreatedAt), info.Runs,
			humanize.Bytes(uint64(info.SizeBytes)), info.Reason)
	}
	return nil
}

func runSnapshotRestore(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	m, err := snapshotManager(st)
	if err != nil {
		return err
	}

	path := args[0]
	if path == "latest" {
		infos, err := m.ListSnapshots()
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			return fmt.Errorf("no snapshots in %s", m.Dir())
		}
		path = infos[0].Path
	} else if _, err := os.Stat(path); os.IsNotExist(err) {
		path = filepath.Join(m.Dir(), path)
	}

	restored, skipped, err := m.RestoreSnapshot(path)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Restored %d runs from %s (%d already recorded)\n", restored, filepath.Base(path), skipped)
	return nil
}

func runSnapshotClean(cmd *cobra.Command, args []string) error {
	m, err := snapshotManager(nil)
	if err != nil {
		return err
	}
	n, err := m.CleanupOldSnapshots(snapshotMaxAge)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Deleted %d snapshots older than %s\n", n, snapshotMaxAge)
	return nil
}
