package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	"github.com/blackwell-systems/basketmine/internal/dataset"
	"github.com/blackwell-systems/basketmine/internal/mining"
	"github.com/blackwell-systems/basketmine/internal/store"
)

// DefaultDebounce is the quiet period after the last file event before the
// dataset is reloaded.
const DefaultDebounce = 500 * time.Millisecond

// Options configures what is mined on each change.
type Options struct {
	Path          string
	CSV           dataset.Options
	MinSupport    float64
	MinConfidence float64
	Strategies    []string
	Parallel      bool
	// Timeout bounds each mining pass; zero means no limit.
	Timeout  time.Duration
	Debounce time.Duration
	// Orchestrator defaults to mining.DefaultOrchestrator().
	Orchestrator *mining.Orchestrator
	// OnBatch is called after every pass, including failed loads.
	OnBatch func(*Batch)
}

// Batch is the outcome of one mining pass.
type Batch struct {
	BatchID string
	Dataset *dataset.Dataset
	Report  *mining.Report
	Runs    []*store.Run
	Err     error
}

// Watcher mines a dataset file and re-mines it whenever the file changes.
type Watcher struct {
	store  *store.Store
	opts   Options
	path   string
	fs     *fsnotify.Watcher
	ctx    context.Context
	cancel context.CancelFunc
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
	mu     sync.Mutex
	passes int
}

// New creates a new Watcher instance.
func New(st *store.Store, opts Options) (*Watcher, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if opts.Path == "" {
		return nil, fmt.Errorf("dataset path cannot be empty")
	}
	path, err := filepath.Abs(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", opts.Path, err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Orchestrator == nil {
		opts.Orchestrator = mining.DefaultOrchestrator()
	}
	if opts.CSV.Name == "" {
		opts.CSV.Name = dataset.NameFromPath(path)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		store:  st,
		opts:   opts,
		path:   path,
		ctx:    ctx,
		cancel: cancel,
		stopCh: make(chan struct{}),
	}, nil
}

// Start mines the dataset once and then watches it for changes. A failed
// initial pass is reported through OnBatch and does not stop the watcher.
func (w *Watcher) Start() error {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fs.Add(filepath.Dir(w.path)); err != nil {
		fs.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}
	w.fs = fs

	log.WithField("path", w.path).Info("watching dataset")
	w.Mine()

	w.wg.Add(1)
	go w.run()
	return nil
}

// run collapses file events and mines once the file has been quiet for the
// debounce period.
func (w *Watcher) run() {
	defer w.wg.Done()

	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			log.WithFields(log.Fields{"path": ev.Name, "op": ev.Op.String()}).Debug("dataset changed")
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.opts.Debounce)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("file watcher error")
		case <-timer.C:
			w.Mine()
		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

// Mine reloads the dataset, runs the strategies and records the batch.
// Passes are serialized.
func (w *Watcher) Mine() *Batch {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.passes++

	batch := w.mine()
	entry := log.WithFields(log.Fields{"dataset": w.opts.CSV.Name, "pass": w.passes})
	if batch.Err != nil {
		entry.WithError(batch.Err).Error("mining pass failed")
	} else {
		entry.WithFields(log.Fields{
			"batch":        batch.BatchID,
			"transactions": batch.Dataset.Transactions.Len(),
			"succeeded":    succeededNames(batch.Report),
		}).Info("mining pass recorded")
	}

	if w.opts.OnBatch != nil {
		w.opts.OnBatch(batch)
	}
	return batch
}

// succeededNames lists the strategies of report that produced a result.
func succeededNames(report *mining.Report) string {
	var names []string
	for _, res := range report.Succeeded() {
		names = append(names, res.Strategy)
	}
	return strings.Join(names, ",")
}

func (w *Watcher) mine() *Batch {
	ds, err := dataset.LoadCSV(w.path, w.opts.CSV)
	if err != nil {
		return &Batch{Err: fmt.Errorf("failed to load dataset: %w", err)}
	}

	ctx := w.ctx
	if w.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.opts.Timeout)
		defer cancel()
	}

	req := mining.Request{
		Transactions:  ds.Transactions,
		MinSupport:    w.opts.MinSupport,
		MinConfidence: w.opts.MinConfidence,
		Strategies:    w.opts.Strategies,
		Parallel:      w.opts.Parallel,
	}
	report := w.opts.Orchestrator.Run(ctx, req)

	batch := &Batch{Dataset: ds, Report: report}
	batch.BatchID, batch.Runs, batch.Err = w.store.SaveReport(ds.Name, req, report)
	if batch.Err != nil {
		batch.Err = fmt.Errorf("failed to record batch: %w", batch.Err)
	}
	return batch
}

// Passes returns how many mining passes have run.
func (w *Watcher) Passes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.passes
}

// Stop halts the watcher, cancelling any pass in progress. It is safe to
// call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.once.Do(func() {
		close(w.stopCh)
		w.cancel()
		if w.fs != nil {
			err = w.fs.Close()
		}
		w.wg.Wait()
	})
	return err
}
