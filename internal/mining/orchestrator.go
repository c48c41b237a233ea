package mining

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// StrategyAll expands to every registered strategy.
const StrategyAll = "all"

// Result is the output of one strategy run. It is not modified after Run
// returns it.
type Result struct {
	Strategy     string
	Table        *Table
	Rules        []Rule
	Elapsed      time.Duration // time spent in Strategy.Mine
	RulesElapsed time.Duration // time spent deriving rules
}

// Request describes one orchestrated run. Thresholds are fractions in (0, 1].
type Request struct {
	Transactions  *Transactions
	MinSupport    float64
	MinConfidence float64
	// Strategies to run, in order. Empty means all registered strategies.
	Strategies []string
	// Parallel runs strategies concurrently. Each run owns its own result
	// and only reads the shared transaction store.
	Parallel bool
	// OnDone, if set, is called as each strategy finishes. In parallel mode
	// it is called from the strategy's goroutine.
	OnDone func(name string, outcome Outcome)
}

// Outcome holds either a Result or the error that stopped the strategy.
type Outcome struct {
	Result *Result
	Err    error
}

// Report collects the outcome of every requested strategy.
type Report struct {
	Order    []string // strategy names in request order
	Outcomes map[string]Outcome
	N        int // number of transactions mined
}

// Result returns the successful result for a strategy.
func (r *Report) Result(name string) (*Result, bool) {
	o, ok := r.Outcomes[name]
	if !ok || o.Err != nil {
		return nil, false
	}
	return o.Result, true
}

// Succeeded returns successful results in request order.
func (r *Report) Succeeded() []*Result {
	var out []*Result
	for _, name := range r.Order {
		if o := r.Outcomes[name]; o.Err == nil && o.Result != nil {
			out = append(out, o.Result)
		}
	}
	return out
}

// Errors returns the per-strategy errors, keyed by strategy name.
func (r *Report) Errors() map[string]error {
	errs := make(map[string]error)
	for name, o := range r.Outcomes {
		if o.Err != nil {
			errs[name] = o.Err
		}
	}
	return errs
}

// Orchestrator runs registered strategies over the same transactions and
// thresholds.
type Orchestrator struct {
	strategies map[string]Strategy
	order      []string
}

// NewOrchestrator returns an orchestrator with the given strategies
// registered in order.
func NewOrchestrator(strategies ...Strategy) *Orchestrator {
	o := &Orchestrator{strategies: make(map[string]Strategy)}
	for _, s := range strategies {
		o.Register(s)
	}
	return o
}

// DefaultOrchestrator registers brute, apriori and fpgrowth.
func DefaultOrchestrator() *Orchestrator {
	return NewOrchestrator(BruteForce{}, Apriori{}, FPGrowth{})
}

// Register adds or replaces a strategy under its Name.
func (o *Orchestrator) Register(s Strategy) {
	name := s.Name()
	if _, exists := o.strategies[name]; !exists {
		o.order = append(o.order, name)
	}
	o.strategies[name] = s
}

// Strategies returns the registered strategy names in registration order.
func (o *Orchestrator) Strategies() []string {
	out := make([]string, len(o.order))
	copy(out, o.order)
	return out
}

// Resolve normalizes requested names: lower-cased, de-duplicated, "all" and
// an empty list expanded to every registered strategy. Unknown names are
// kept so that Run reports them as unavailable.
func (o *Orchestrator) Resolve(names []string) []string {
	if len(names) == 0 {
		return o.Strategies()
	}
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		switch name {
		case "":
			continue
		case StrategyAll:
			for _, s := range o.order {
				add(s)
			}
		default:
			add(name)
		}
	}
	return out
}

// Run executes each requested strategy and derives its rules. A failing
// strategy is recorded in the report and never stops the others.
func (o *Orchestrator) Run(ctx context.Context, req Request) *Report {
	if ctx == nil {
		ctx = context.Background()
	}

	names := o.Resolve(req.Strategies)
	outcomes := make([]Outcome, len(names))

	if req.Parallel {
		var wg sync.WaitGroup
		for i, name := range names {
			wg.Add(1)
			go func(i int, name string) {
				defer wg.Done()
				outcomes[i] = o.runOne(ctx, name, req)
				req.notify(name, outcomes[i])
			}(i, name)
		}
		wg.Wait()
	} else {
		for i, name := range names {
			outcomes[i] = o.runOne(ctx, name, req)
			req.notify(name, outcomes[i])
		}
	}

	report := &Report{
		Order:    names,
		Outcomes: make(map[string]Outcome, len(names)),
		N:        req.Transactions.Len(),
	}
	for i, name := range names {
		report.Outcomes[name] = outcomes[i]
	}
	return report
}

func (req Request) notify(name string, outcome Outcome) {
	if req.OnDone != nil {
		req.OnDone(name, outcome)
	}
}

func (o *Orchestrator) runOne(ctx context.Context, name string, req Request) Outcome {
	res, err := o.execute(ctx, name, req)
	if err != nil {
		if !isEngineError(err) && ctx.Err() == nil {
			err = fmt.Errorf("%w: %w", ErrStrategyFailure, err)
		}
		return Outcome{Err: &StrategyError{
			Strategy:      name,
			MinSupport:    req.MinSupport,
			MinConfidence: req.MinConfidence,
			Err:           err,
		}}
	}
	return Outcome{Result: res}
}

func (o *Orchestrator) execute(ctx context.Context, name string, req Request) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("%w: panic: %v", ErrStrategyFailure, r)
		}
	}()

	s, ok := o.strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: no strategy registered as %q (available: %s)",
			ErrStrategyUnavailable, name, strings.Join(o.sortedNames(), ", "))
	}

	start := time.Now()
	table, err := s.Mine(ctx, req.Transactions, req.MinSupport)
	elapsed := time.Since(start)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	rules, err := DeriveRules(table, req.MinConfidence)
	if err != nil {
		return nil, err
	}

	return &Result{
		Strategy:     name,
		Table:        table,
		Rules:        rules,
		Elapsed:      elapsed,
		RulesElapsed: time.Since(start),
	}, nil
}

func (o *Orchestrator) sortedNames() []string {
	names := o.Strategies()
	sort.Strings(names)
	return names
}
