package store

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    batch_id TEXT NOT NULL,
    dataset TEXT NOT NULL,
    strategy TEXT NOT NULL,
    min_support REAL NOT NULL,
    min_confidence REAL NOT NULL,
    transactions INTEGER NOT NULL,
    min_count INTEGER NOT NULL,
    itemset_count INTEGER NOT NULL,
    rule_count INTEGER NOT NULL,
    candidates INTEGER NOT NULL,
    elapsed_ns INTEGER NOT NULL,
    rules_elapsed_ns INTEGER NOT NULL,
    error TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);

` + itemsetsTable + `
CREATE TABLE IF NOT EXISTS rules (
    run_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    antecedent TEXT NOT NULL,
    consequent TEXT NOT NULL,
    support REAL NOT NULL,
    confidence REAL NOT NULL,
    lift REAL NOT NULL,
    PRIMARY KEY (run_id, position),
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_runs_dataset ON runs(dataset);
CREATE INDEX IF NOT EXISTS idx_runs_batch ON runs(batch_id);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`

// itemsetsTable keys itemsets by item_list, the JSON array of their members.
// items is the joined display form and is not unique: an item may itself
// contain the separator.
const itemsetsTable = `
CREATE TABLE IF NOT EXISTS itemsets (
    run_id TEXT NOT NULL,
    items TEXT NOT NULL,
    item_list TEXT NOT NULL,
    size INTEGER NOT NULL,
    count INTEGER NOT NULL,
    support REAL NOT NULL,
    PRIMARY KEY (run_id, item_list),
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);
`
