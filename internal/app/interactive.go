package app

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/blackwell-systems/basketmine/internal/config"
	"github.com/blackwell-systems/basketmine/internal/mining"
)

type mineAnswers struct {
	Dataset       string
	MinSupport    float64
	MinConfidence float64
	Strategies    []string
}

// algorithmChoices is the menu of the interactive prompt. Unknown input
// falls back to running everything.
var algorithmChoices = map[string][]string{
	"1": {mining.StrategyBrute},
	"2": {mining.StrategyApriori},
	"3": {mining.StrategyFPGrowth},
	"4": {mining.StrategyAll},
}

// promptMine asks for a dataset, both thresholds and the algorithms to run.
func promptMine(in *bufio.Reader, out io.Writer, c *config.Config) (*mineAnswers, error) {
	names := c.DatasetNames()

	fmt.Fprintln(out, "Available datasets:")
	for i, name := range names {
		path, _ := c.DatasetPath(name)
		fmt.Fprintf(out, "  %d. %s -> %s\n", i+1, name, path)
	}

	choice, err := ask(in, out, fmt.Sprintf("\nEnter dataset number (1-%d), name or CSV path: ", len(names)))
	if err != nil {
		return nil, err
	}
	answers := &mineAnswers{Dataset: choice}
	if n, err := strconv.Atoi(choice); err == nil {
		if n < 1 || n > len(names) {
			return nil, fmt.Errorf("invalid choice %q", choice)
		}
		answers.Dataset = names[n-1]
	}
	if answers.Dataset == "" {
		return nil, fmt.Errorf("invalid choice: no dataset given")
	}

	s, err := ask(in, out, "Enter minimum support (percent or fraction): ")
	if err != nil {
		return nil, err
	}
	if answers.MinSupport, err = mining.ParseThreshold(s); err != nil {
		return nil, err
	}

	s, err = ask(in, out, "Enter minimum confidence (percent or fraction): ")
	if err != nil {
		return nil, err
	}
	if answers.MinConfidence, err = mining.ParseThreshold(s); err != nil {
		return nil, err
	}

	fmt.Fprintln(out, "\nChoose algorithm(s) to run:")
	fmt.Fprintln(out, "  1. Brute-force")
	fmt.Fprintln(out, "  2. Apriori")
	fmt.Fprintln(out, "  3. FP-Growth")
	fmt.Fprintln(out, "  4. All")
	s, err = ask(in, out, "Enter choice (1-4): ")
	if err != nil {
		return nil, err
	}
	strategies, ok := algorithmChoices[s]
	if !ok {
		strategies = algorithmChoices["4"]
	}
	answers.Strategies = strategies

	return answers, nil
}

// ask prints prompt and returns the trimmed reply. A final line without a
// newline is accepted; EOF before any input is an error.
func ask(in *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("no answer to %q: %w", strings.TrimSpace(prompt), err)
	}
	return strings.TrimSpace(line), nil
}
