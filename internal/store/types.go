package store

import "time"

// Run is one strategy execution over one dataset.
type Run struct {
	ID            string
	BatchID       string // shared by the runs of one orchestrated request
	Dataset       string
	Strategy      string
	MinSupport    float64
	MinConfidence float64
	Transactions  int
	MinCount      int
	ItemsetCount  int
	RuleCount     int
	Candidates    int
	Elapsed       time.Duration
	RulesElapsed  time.Duration
	Error         string // empty on success
	CreatedAt     time.Time
}

// Failed reports whether the strategy ended with an error.
func (r *Run) Failed() bool {
	return r.Error != ""
}
