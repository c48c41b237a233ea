package app

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/basketmine/internal/config"
	"github.com/blackwell-systems/basketmine/internal/mining"
)

func TestThresholds(t *testing.T) {
	oldCfg := cfg
	defer func() { cfg = oldCfg }()
	cfg = config.Default()

	tests := []struct {
		name           string
		support        string
		confidence     string
		wantSupport    float64
		wantConfidence float64
		wantErr        bool
	}{
		{name: "config defaults", wantSupport: 0.2, wantConfidence: 0.6},
		{name: "percent number", support: "30", wantSupport: 0.3, wantConfidence: 0.6},
		{name: "percent sign", support: "5%", confidence: "75%", wantSupport: 0.05, wantConfidence: 0.75},
		{name: "fraction", confidence: "0.9", wantSupport: 0.2, wantConfidence: 0.9},
		{name: "not a number", support: "lots", wantErr: true},
		{name: "out of range", confidence: "250", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, c, err := thresholds(tt.support, tt.confidence)
			if tt.wantErr {
				if !errors.Is(err, mining.ErrInvalidThreshold) {
					t.Errorf("thresholds() error = %v, want ErrInvalidThreshold", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("thresholds() error = %v", err)
			}
			if s != tt.wantSupport || c != tt.wantConfidence {
				t.Errorf("thresholds() = (%g, %g), want (%g, %g)", s, c, tt.wantSupport, tt.wantConfidence)
			}
		})
	}
}

func TestBoolFlag(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		configured bool
		want       bool
	}{
		{"unset keeps config true", nil, true, true},
		{"unset keeps config false", nil, false, false},
		{"explicit false overrides config", []string{"--parallel=false"}, true, false},
		{"explicit true overrides config", []string{"--parallel"}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var parallel bool
			cmd := &cobra.Command{Use: "mine"}
			cmd.Flags().BoolVar(&parallel, "parallel", false, "")
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags(%v) error = %v", tt.args, err)
			}
			if got := boolFlag(cmd, "parallel", parallel, tt.configured); got != tt.want {
				t.Errorf("boolFlag() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"y", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}

	for _, tt := range tests {
		if got := confirm(strings.NewReader(tt.input), "Proceed?"); got != tt.want {
			t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestRunRequest(t *testing.T) {
	req := mining.Request{
		Transactions:  mining.NewTransactions([][]string{{"a", "b"}, {"a", "b", "c"}, {"a"}, {"b", "c"}}),
		MinSupport:    0.5,
		MinConfidence: 0.6,
		Strategies:    []string{mining.StrategyAll},
		Parallel:      true,
	}

	report := runRequest(req, 0)
	if len(report.Succeeded()) != 3 {
		t.Fatalf("expected 3 successful strategies, got %d", len(report.Succeeded()))
	}
	for _, res := range report.Succeeded() {
		if res.Table.Len() != 5 || len(res.Rules) != 4 {
			t.Errorf("%s: %d itemsets, %d rules, want 5 and 4", res.Strategy, res.Table.Len(), len(res.Rules))
		}
	}
}
