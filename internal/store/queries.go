package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/blackwell-systems/basketmine/internal/export"
)

const runColumns = `id, batch_id, dataset, strategy, min_support, min_confidence, transactions,
	min_count, itemset_count, rule_count, candidates, elapsed_ns, rules_elapsed_ns, error, created_at`

// InsertRun stores a run with its itemsets and rules in one transaction.
// An empty ID or BatchID is filled with a new UUID and a zero CreatedAt with
// the current time.
func (s *Store) InsertRun(run *Run, itemsets []export.ItemsetRow, rules []export.RuleRow) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertRun(tx, run, itemsets, rules); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.ID, err)
	}
	return nil
}

func insertRun(tx *sql.Tx, run *Run, itemsets []export.ItemsetRow, rules []export.RuleRow) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.BatchID == "" {
		run.BatchID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := tx.Exec(`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.BatchID,
		run.Dataset,
		run.Strategy,
		run.MinSupport,
		run.MinConfidence,
		run.Transactions,
		run.MinCount,
		run.ItemsetCount,
		run.RuleCount,
		run.Candidates,
		int64(run.Elapsed),
		int64(run.RulesElapsed),
		run.Error,
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return wrap(fmt.Sprintf("insert run %s", run.ID), err)
	}

	itemStmt, err := tx.Prepare(`INSERT INTO itemsets (run_id, items, item_list, size, count, support) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare itemset insert: %w", err)
	}
	defer itemStmt.Close()
	for _, row := range itemsets {
		if _, err := itemStmt.Exec(run.ID, row.Itemset, row.Key(), row.Size, row.Count, row.Support); err != nil {
			return fmt.Errorf("failed to insert itemset %s: %w", row.Itemset, err)
		}
	}

	ruleStmt, err := tx.Prepare(`INSERT INTO rules (run_id, position, antecedent, consequent, support, confidence, lift)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare rule insert: %w", err)
	}
	defer ruleStmt.Close()
	for i, row := range rules {
		if _, err := ruleStmt.Exec(run.ID, i, row.Antecedent, row.Consequent, row.Support, row.Confidence, row.Lift); err != nil {
			return fmt.Errorf("failed to insert rule %s -> %s: %w", row.Antecedent, row.Consequent, err)
		}
	}
	return nil
}

// prefixMatch matches col against an exact id or a literal prefix of it.
// substr keeps '%' and '_' in user input from acting as wildcards.
func prefixMatch(col string) string {
	return col + ` = ? OR substr(` + col + `, 1, length(?)) = ?`
}

// GetRun retrieves a run by full id or by a unique id prefix.
func (s *Store) GetRun(id string) (*Run, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: empty run id", ErrRunNotFound)
	}
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs WHERE `+prefixMatch("id")+` ORDER BY id LIMIT 2`,
		id, id, id)
	if err != nil {
		return nil, wrap(fmt.Sprintf("get run %s", id), err)
	}
	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}

	switch {
	case len(runs) == 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case len(runs) > 1 && runs[0].ID != id:
		return nil, fmt.Errorf("%w: %s matches %s and %s", ErrAmbiguousRunID, id, runs[0].ID, runs[1].ID)
	}
	return runs[0], nil
}

// ListRuns returns runs newest first, optionally limited to one dataset.
// A limit of zero or less returns every run.
func (s *Store) ListRuns(dataset string, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []interface{}
	if dataset != "" {
		query += ` WHERE dataset = ?`
		args = append(args, dataset)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, wrap("list runs", err)
	}
	return scanRuns(rows)
}

// ListBatch returns the runs of one orchestrated request in insertion order.
func (s *Store) ListBatch(batchID string) ([]*Run, error) {
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs WHERE batch_id = ? ORDER BY rowid`, batchID)
	if err != nil {
		return nil, wrap(fmt.Sprintf("list batch %s", batchID), err)
	}
	return scanRuns(rows)
}

// ResolveBatch expands a batch id prefix to the full id.
func (s *Store) ResolveBatch(prefix string) (string, error) {
	if strings.TrimSpace(prefix) == "" {
		return "", fmt.Errorf("%w: empty batch id", ErrRunNotFound)
	}
	rows, err := s.db.Query(`SELECT DISTINCT batch_id FROM runs WHERE `+prefixMatch("batch_id")+` ORDER BY batch_id LIMIT 2`,
		prefix, prefix, prefix)
	if err != nil {
		return "", wrap(fmt.Sprintf("resolve batch %s", prefix), err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("failed to scan batch id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch {
	case len(ids) == 0:
		return "", fmt.Errorf("%w: no batch %s", ErrRunNotFound, prefix)
	case len(ids) > 1 && ids[0] != prefix:
		return "", fmt.Errorf("%w: batch %s matches %s and %s", ErrAmbiguousRunID, prefix, ids[0], ids[1])
	}
	return ids[0], nil
}

// GetItemsets returns the itemsets of a run, most frequent first.
func (s *Store) GetItemsets(runID string) ([]export.ItemsetRow, error) {
	rows, err := s.db.Query(`
		SELECT items, item_list, size, count, support
		FROM itemsets
		WHERE run_id = ?
		ORDER BY count DESC, items, item_list
	`, runID)
	if err != nil {
		return nil, wrap(fmt.Sprintf("get itemsets for %s", runID), err)
	}
	defer rows.Close()

	var out []export.ItemsetRow
	for rows.Next() {
		var row export.ItemsetRow
		var list string
		if err := rows.Scan(&row.Itemset, &list, &row.Size, &row.Count, &row.Support); err != nil {
			return nil, fmt.Errorf("failed to scan itemset row: %w", err)
		}
		if err := json.Unmarshal([]byte(list), &row.Items); err != nil {
			return nil, fmt.Errorf("failed to decode itemset %s: %w", row.Itemset, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating itemsets: %w", err)
	}
	return out, nil
}

// GetRules returns the rules of a run in derivation order.
func (s *Store) GetRules(runID string) ([]export.RuleRow, error) {
	rows, err := s.db.Query(`
		SELECT antecedent, consequent, support, confidence, lift
		FROM rules
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, wrap(fmt.Sprintf("get rules for %s", runID), err)
	}
	defer rows.Close()

	var out []export.RuleRow
	for rows.Next() {
		var row export.RuleRow
		if err := rows.Scan(&row.Antecedent, &row.Consequent, &row.Support, &row.Confidence, &row.Lift); err != nil {
			return nil, fmt.Errorf("failed to scan rule row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}
	return out, nil
}

// DeleteRun removes a run and, by cascade, its itemsets and rules.
func (s *Store) DeleteRun(id string) error {
	result, err := s.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return wrap(fmt.Sprintf("delete run %s", id), err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// PruneRuns keeps the newest keep runs and deletes the rest. It returns the
// number of runs deleted.
func (s *Store) PruneRuns(keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	result, err := s.db.Exec(`
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, wrap("prune runs", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// Datasets returns the distinct dataset names with recorded runs.
func (s *Store) Datasets() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT dataset FROM runs ORDER BY dataset`)
	if err != nil {
		return nil, wrap("list datasets", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func scanRuns(rows *sql.Rows) ([]*Run, error) {
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		var elapsed, rulesElapsed int64
		var createdAt string

		err := rows.Scan(
			&run.ID,
			&run.BatchID,
			&run.Dataset,
			&run.Strategy,
			&run.MinSupport,
			&run.MinConfidence,
			&run.Transactions,
			&run.MinCount,
			&run.ItemsetCount,
			&run.RuleCount,
			&run.Candidates,
			&elapsed,
			&rulesElapsed,
			&run.Error,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}

		run.Elapsed = time.Duration(elapsed)
		run.RulesElapsed = time.Duration(rulesElapsed)
		run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at for run %s: %w", run.ID, err)
		}

		runs = append(runs, &run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}
