package server

import (
	"time"

	"github.com/blackwell-systems/basketmine/internal/export"
	"github.com/blackwell-systems/basketmine/internal/store"
)

type JSON map[string]any

// MineRequest is the body of POST /mine. Exactly one transaction source is
// used, in order: Transactions, Baskets (one comma-separated basket per
// line), CSV (Item1..Item7 layout). Thresholds accept fractions or
// percentages.
type MineRequest struct {
	Dataset       string     `json:"dataset,omitempty"`
	Transactions  [][]string `json:"transactions,omitempty"`
	Baskets       string     `json:"baskets,omitempty"`
	CSV           string     `json:"csv,omitempty"`
	MinSupport    float64    `json:"min_support"`
	MinConfidence float64    `json:"min_confidence"`
	Strategies    []string   `json:"strategies,omitempty"`
	Parallel      bool       `json:"parallel,omitempty"`
	Persist       bool       `json:"persist,omitempty"`
}

// MineResponse reports every requested strategy.
type MineResponse struct {
	Dataset       string           `json:"dataset"`
	Transactions  int              `json:"transactions"`
	MinSupport    float64          `json:"min_support"`
	MinConfidence float64          `json:"min_confidence"`
	MinCount      int              `json:"min_count"`
	Agree         bool             `json:"agree"`
	Cached        bool             `json:"cached"`
	BatchID       string           `json:"batch_id,omitempty"`
	Results       []StrategyResult `json:"results"`
}

// StrategyResult is one strategy's outcome. Error and ErrorKind are set
// instead of the rows when the strategy failed.
type StrategyResult struct {
	Strategy       string              `json:"strategy"`
	Itemsets       []export.ItemsetRow `json:"itemsets,omitempty"`
	Rules          []export.RuleRow    `json:"rules,omitempty"`
	Candidates     int                 `json:"candidates,omitempty"`
	ElapsedMS      float64             `json:"elapsed_ms"`
	RulesElapsedMS float64             `json:"rules_elapsed_ms"`
	Error          string              `json:"error,omitempty"`
	ErrorKind      string              `json:"error_kind,omitempty"`
}

type runView struct {
	ID             string    `json:"id"`
	BatchID        string    `json:"batch_id"`
	Dataset        string    `json:"dataset"`
	Strategy       string    `json:"strategy"`
	MinSupport     float64   `json:"min_support"`
	MinConfidence  float64   `json:"min_confidence"`
	Transactions   int       `json:"transactions"`
	MinCount       int       `json:"min_count"`
	Itemsets       int       `json:"itemsets"`
	Rules          int       `json:"rules"`
	Candidates     int       `json:"candidates"`
	ElapsedMS      float64   `json:"elapsed_ms"`
	RulesElapsedMS float64   `json:"rules_elapsed_ms"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func newRunView(r *store.Run) runView {
	return runView{
		ID:             r.ID,
		BatchID:        r.BatchID,
		Dataset:        r.Dataset,
		Strategy:       r.Strategy,
		MinSupport:     r.MinSupport,
		MinConfidence:  r.MinConfidence,
		Transactions:   r.Transactions,
		MinCount:       r.MinCount,
		Itemsets:       r.ItemsetCount,
		Rules:          r.RuleCount,
		Candidates:     r.Candidates,
		ElapsedMS:      millis(r.Elapsed),
		RulesElapsedMS: millis(r.RulesElapsed),
		Error:          r.Error,
		CreatedAt:      r.CreatedAt,
	}
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
