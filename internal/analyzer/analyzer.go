package analyzer

import "github.com/blackwell-systems/basketmine/internal/store"

// Analyzer compares strategy runs, either fresh from the orchestrator or
// loaded from run history.
type Analyzer struct {
	store *store.Store
}

// New creates a new Analyzer instance with the given store.
func New(store *store.Store) *Analyzer {
	return &Analyzer{store: store}
}
