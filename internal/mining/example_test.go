package mining_test

import (
	"context"
	"fmt"

	"github.com/blackwell-systems/basketmine/internal/mining"
)

func ExampleDefaultOrchestrator() {
	txns := mining.NewTransactions([][]string{
		{"bread", "milk"},
		{"bread", "milk", "eggs"},
		{"bread"},
		{"milk", "eggs"},
	})

	report := mining.DefaultOrchestrator().Run(context.Background(), mining.Request{
		Transactions:  txns,
		MinSupport:    0.5,
		MinConfidence: 0.6,
		Strategies:    []string{mining.StrategyApriori},
	})

	res, ok := report.Result(mining.StrategyApriori)
	if !ok {
		fmt.Println(report.Outcomes[mining.StrategyApriori].Err)
		return
	}
	for _, r := range res.Rules {
		fmt.Println(r)
	}
	// Output:
	// {bread} -> {milk} (support=0.500, confidence=0.667)
	// {milk} -> {bread} (support=0.500, confidence=0.667)
	// {eggs} -> {milk} (support=0.500, confidence=1.000)
	// {milk} -> {eggs} (support=0.500, confidence=0.667)
}

func ExampleDeriveRules() {
	txns := mining.NewTransactions([][]string{{"a", "b"}, {"a", "b", "c"}, {"a"}, {"b", "c"}})

	table, err := mining.FPGrowth{}.Mine(context.Background(), txns, 0.5)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, e := range table.Entries() {
		fmt.Printf("%s %d\n", e.Items, e.Count)
	}

	rules, _ := mining.DeriveRules(table, 0.9)
	fmt.Println(len(rules), rules[0])
	// Output:
	// {a} 3
	// {b} 3
	// {c} 2
	// {a, b} 2
	// {b, c} 2
	// 1 {c} -> {b} (support=0.500, confidence=1.000)
}

func ExampleNormalizeThreshold() {
	for _, v := range []float64{0.25, 25, 250} {
		f, err := mining.NormalizeThreshold(v)
		fmt.Println(f, err != nil)
	}
	// Output:
	// 0.25 false
	// 0.25 false
	// 0 true
}
