package store

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/blackwell-systems/basketmine/internal/export"
	"github.com/blackwell-systems/basketmine/internal/mining"
)

// SaveReport records every outcome of an orchestrated request under one
// batch id. Failed strategies are stored with their error and no rows.
// The batch is written in one transaction: on error nothing is stored.
func (s *Store) SaveReport(dataset string, req mining.Request, report *mining.Report) (string, []*Run, error) {
	batchID := uuid.NewString()
	runs := make([]*Run, 0, len(report.Order))

	tx, err := s.db.Begin()
	if err != nil {
		return "", nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, name := range report.Order {
		outcome := report.Outcomes[name]
		run := &Run{
			BatchID:       batchID,
			Dataset:       dataset,
			Strategy:      name,
			MinSupport:    req.MinSupport,
			MinConfidence: req.MinConfidence,
			Transactions:  report.N,
			MinCount:      mining.MinCount(req.MinSupport, report.N),
		}

		var itemsets []export.ItemsetRow
		var rules []export.RuleRow
		if outcome.Err != nil {
			run.Error = outcome.Err.Error()
		} else {
			res := outcome.Result
			itemsets = export.ItemsetRows(res.Table)
			rules = export.RuleRows(res.Rules)
			run.MinCount = res.Table.MinCount()
			run.ItemsetCount = len(itemsets)
			run.RuleCount = len(rules)
			run.Candidates = res.Table.Candidates()
			run.Elapsed = res.Elapsed
			run.RulesElapsed = res.RulesElapsed
		}

		if err := insertRun(tx, run, itemsets, rules); err != nil {
			return "", nil, fmt.Errorf("failed to save %s run: %w", name, err)
		}
		runs = append(runs, run)
	}

	if err := tx.Commit(); err != nil {
		return "", nil, fmt.Errorf("failed to commit batch %s: %w", batchID, err)
	}
	return batchID, runs, nil
}
