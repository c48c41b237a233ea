// Package mining finds frequent itemsets and association rules in
// market-basket transactions.
//
// Three strategies produce the same Frequent-Itemset Table for the same
// input and thresholds:
//
//	brute     enumerates every combination of the item universe, size by size
//	apriori   level-wise join and prune over the previous level's frequent sets
//	fpgrowth  compresses transactions into a prefix tree and mines conditional trees
//
// A single rule deriver turns any table into confidence-qualified rules, and
// the Orchestrator runs several strategies over one transaction store and
// collects per-strategy results, timings and errors side by side.
//
// Support is tracked as exact integer counts; fractions are derived only
// when reported. Thresholds given to the engine are fractions in (0, 1];
// use NormalizeThreshold to accept percentages from user input.
//
// Example:
//
//	txns := mining.NewTransactions([][]string{{"a", "b"}, {"a", "b", "c"}, {"a"}, {"b", "c"}})
//	report := mining.DefaultOrchestrator().Run(ctx, mining.Request{
//		Transactions:  txns,
//		MinSupport:    0.5,
//		MinConfidence: 0.6,
//	})
//	res, _ := report.Result(mining.StrategyApriori)
//	for _, r := range res.Rules {
//		fmt.Println(r)
//	}
//
// The engine is synchronous and performs no I/O. Strategies honor context
// cancellation between candidate sizes only; the counting loops are never
// interrupted.
package mining
