// Package watcher re-mines a dataset whenever its CSV file changes.
//
// The Watcher subscribes to the file's directory with fsnotify so that
// editors which replace the file through a rename are caught too. Bursts of
// events are collapsed by a debounce timer; each settled change reloads the
// CSV, runs the configured strategies, stores the batch in the run history
// and hands it to an optional callback.
//
// Key features:
//   - Initial mining pass on Start
//   - Debounced reload on write, create and rename
//   - One mining pass at a time; a change during a pass queues another
//   - Daemon mode support with PID file management
//   - Graceful shutdown with SIGTERM/SIGINT handling
//
// Example usage:
//
//	st, err := store.Open("~/.basketmine/basketmine.db")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer st.Close()
//
//	w, err := watcher.New(st, watcher.Options{
//		Path:       "grocerytransactions.csv",
//		MinSupport: 0.2,
//		OnBatch:    func(b *watcher.Batch) { fmt.Println(b.BatchID) },
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := w.Start(); err != nil {
//		log.Fatal(err)
//	}
//	defer w.Stop()
package watcher
