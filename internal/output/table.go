package output

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/blackwell-systems/basketmine/internal/analyzer"
	"github.com/blackwell-systems/basketmine/internal/dataset"
	"github.com/blackwell-systems/basketmine/internal/export"
	"github.com/blackwell-systems/basketmine/internal/store"
)

// RenderItemsetTable renders frequent itemsets as given. top > 0 limits the
// number of rows shown.
func RenderItemsetTable(rows []export.ItemsetRow, top int) string {
	if len(rows) == 0 {
		return "No frequent itemsets.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-40s %-6s %-8s %s\n", "Itemset", "Size", "Count", "Support"))
	sb.WriteString(strings.Repeat("─", 66))
	sb.WriteString("\n")

	shown := limit(rows, top)
	for _, r := range rows[:shown] {
		sb.WriteString(fmt.Sprintf("%-40s %-6d %-8s %s\n",
			truncate(strings.Join(r.ItemList(), ", "), 40),
			r.Size,
			humanize.Comma(int64(r.Count)),
			formatPercent(r.Support)))
	}
	writeMore(&sb, len(rows)-shown, "itemsets")

	return sb.String()
}

// RenderRuleTable renders association rules as given, coloring confidence
// and lift. top > 0 limits the number of rows shown.
func RenderRuleTable(rows []export.RuleRow, top int) string {
	if len(rows) == 0 {
		return "No rules met the confidence threshold.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-26s    %-26s %-8s %-10s %s\n",
		"Antecedent", "Consequent", "Support", "Confidence", "Lift"))
	sb.WriteString(strings.Repeat("─", 84))
	sb.WriteString("\n")

	shown := limit(rows, top)
	for _, r := range rows[:shown] {
		conf := fmt.Sprintf("%-10s", formatPercent(r.Confidence))
		if r.Confidence >= 0.9 {
			conf = colorize(colorGreen, conf)
		}
		lift := fmt.Sprintf("%.2f", r.Lift)
		if r.Lift < 1 {
			lift = colorize(colorGray, lift)
		}
		sb.WriteString(fmt.Sprintf("%-26s -> %-26s %-8s %s %s\n",
			truncate(displayItems(r.Antecedent), 26),
			truncate(displayItems(r.Consequent), 26),
			formatPercent(r.Support),
			conf,
			lift))
	}
	writeMore(&sb, len(rows)-shown, "rules")

	return sb.String()
}

// RenderComparisonTable renders one row per strategy followed by an
// agreement line and any differences.
func RenderComparisonTable(c *analyzer.Comparison) string {
	if len(c.Rows) == 0 {
		return "No strategies were run.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-10s %-9s %-7s %-11s %-10s %-10s %s\n",
		"Strategy", "Itemsets", "Rules", "Candidates", "Mining", "Rules", "Speedup"))
	sb.WriteString(strings.Repeat("─", 74))
	sb.WriteString("\n")

	for _, r := range c.Rows {
		if r.Err != "" {
			sb.WriteString(fmt.Sprintf("%-10s %s\n", r.Strategy, colorize(colorRed, "failed: "+r.Err)))
			continue
		}
		speedup := fmt.Sprintf("%.1fx", r.Speedup)
		if r.Strategy == c.Baseline {
			speedup = colorize(colorGray, "baseline")
		}
		sb.WriteString(fmt.Sprintf("%-10s %-9s %-7s %-11s %-10s %-10s %s\n",
			r.Strategy,
			humanize.Comma(int64(r.Itemsets)),
			humanize.Comma(int64(r.Rules)),
			humanize.Comma(int64(r.Candidates)),
			formatDuration(r.Elapsed),
			formatDuration(r.RulesElapsed),
			speedup))
	}

	sb.WriteString("\n")
	switch {
	case c.Succeeded() < 2:
		sb.WriteString("Agreement: fewer than two successful strategies, nothing to compare\n")
	case c.Agree:
		sb.WriteString(colorize(colorGreen, "✓ All strategies produced identical itemset tables") + "\n")
	default:
		sb.WriteString(colorize(colorRed, "✗ Strategies disagree with "+c.Reference) + "\n")
		for _, d := range c.Disagreements {
			sb.WriteString(fmt.Sprintf("  %s:\n", d.Strategy))
			for _, line := range d.Diffs {
				sb.WriteString("    " + line + "\n")
			}
		}
	}

	return sb.String()
}

// RenderLevelTable renders per-size candidate counts of a strategy against
// a baseline strategy.
func RenderLevelTable(baseline, other string, levels []analyzer.LevelReduction) string {
	if len(levels) == 0 {
		return "No candidate levels recorded.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-6s %-12s %-12s %-10s %s\n",
		"Size", truncate(baseline, 12), truncate(other, 12), "Frequent", "Saved"))
	sb.WriteString(strings.Repeat("─", 52))
	sb.WriteString("\n")

	for _, l := range levels {
		sb.WriteString(fmt.Sprintf("%-6d %-12s %-12s %-10s %s\n",
			l.Size,
			humanize.Comma(int64(l.Baseline)),
			humanize.Comma(int64(l.Candidates)),
			humanize.Comma(int64(l.Frequent)),
			formatPercent(l.Saved())))
	}
	return sb.String()
}

// RenderRunTable renders stored runs, newest first as given.
func RenderRunTable(runs []*store.Run) string {
	if len(runs) == 0 {
		return "No runs recorded.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-10s %-14s %-10s %-9s %-9s %-7s %-10s %s\n",
		"ID", "Dataset", "Strategy", "Support", "Itemsets", "Rules", "Elapsed", "When"))
	sb.WriteString(strings.Repeat("─", 88))
	sb.WriteString("\n")

	for _, r := range runs {
		itemsets, rules := humanize.Comma(int64(r.ItemsetCount)), humanize.Comma(int64(r.RuleCount))
		elapsed := formatDuration(r.Elapsed)
		if r.Failed() {
			itemsets, rules, elapsed = "-", "-", colorize(colorRed, "failed")
		}
		sb.WriteString(fmt.Sprintf("%-10s %-14s %-10s %-9s %-9s %-7s %-10s %s\n",
			ShortID(r.ID),
			truncate(r.Dataset, 14),
			r.Strategy,
			formatPercent(r.MinSupport),
			itemsets,
			rules,
			elapsed,
			formatRelativeTime(r.CreatedAt)))
	}
	return sb.String()
}

// RenderRunDetail renders the header block of a single run.
func RenderRunDetail(r *store.Run) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:            %s\n", r.ID))
	sb.WriteString(fmt.Sprintf("Batch:          %s\n", r.BatchID))
	sb.WriteString(fmt.Sprintf("Dataset:        %s\n", r.Dataset))
	sb.WriteString(fmt.Sprintf("Strategy:       %s\n", r.Strategy))
	sb.WriteString(fmt.Sprintf("Thresholds:     support %s (min count %d), confidence %s\n",
		formatPercent(r.MinSupport), r.MinCount, formatPercent(r.MinConfidence)))
	sb.WriteString(fmt.Sprintf("Transactions:   %s\n", humanize.Comma(int64(r.Transactions))))
	if r.Failed() {
		sb.WriteString(fmt.Sprintf("Status:         %s\n", colorize(colorRed, "failed: "+r.Error)))
	} else {
		sb.WriteString(fmt.Sprintf("Result:         %s itemsets, %s rules, %s candidates counted\n",
			humanize.Comma(int64(r.ItemsetCount)),
			humanize.Comma(int64(r.RuleCount)),
			humanize.Comma(int64(r.Candidates))))
		sb.WriteString(fmt.Sprintf("Elapsed:        %s mining, %s rules\n",
			formatDuration(r.Elapsed), formatDuration(r.RulesElapsed)))
	}
	sb.WriteString(fmt.Sprintf("Recorded:       %s (%s)\n",
		r.CreatedAt.Local().Format("2006-01-02 15:04:05"), formatRelativeTime(r.CreatedAt)))
	return sb.String()
}

// RenderHistoryTable renders per-strategy aggregates of recorded runs.
func RenderHistoryTable(stats []analyzer.StrategyStats) string {
	if len(stats) == 0 {
		return "No runs recorded.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-10s %-6s %-9s %-10s %-10s %s\n",
		"Strategy", "Runs", "Failures", "Mean", "Best", "Last Run"))
	sb.WriteString(strings.Repeat("─", 64))
	sb.WriteString("\n")

	for _, s := range stats {
		sb.WriteString(fmt.Sprintf("%-10s %-6d %-9d %-10s %-10s %s\n",
			s.Strategy, s.Runs, s.Failures,
			formatDuration(s.MeanElapsed),
			formatDuration(s.BestElapsed),
			formatRelativeTime(s.LastRun)))
	}
	return sb.String()
}

// RenderDatasetSummary renders the shape of a loaded dataset.
func RenderDatasetSummary(name string, s dataset.Summary, dropped int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Dataset:        %s\n", name))
	sb.WriteString(fmt.Sprintf("Transactions:   %s", humanize.Comma(int64(s.Transactions))))
	if dropped > 0 {
		sb.WriteString(colorize(colorYellow, fmt.Sprintf(" (%d empty rows dropped)", dropped)))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Distinct items: %s\n", humanize.Comma(int64(s.Items))))
	sb.WriteString(fmt.Sprintf("Basket size:    avg %.2f, max %d\n", s.AvgBasket, s.MaxBasket))

	if len(s.Top) > 0 {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%-30s %-8s %s\n", "Item", "Count", "Support"))
		sb.WriteString(strings.Repeat("─", 50))
		sb.WriteString("\n")
		for _, ic := range s.Top {
			sb.WriteString(fmt.Sprintf("%-30s %-8s %s\n",
				truncate(ic.Item, 30),
				humanize.Comma(int64(ic.Count)),
				formatPercent(float64(ic.Count)/float64(s.Transactions))))
		}
	}
	return sb.String()
}

// ShortID abbreviates a run id for tables; GetRun accepts the prefix.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func displayItems(joined string) string {
	return strings.ReplaceAll(joined, export.ItemSep, ", ")
}
