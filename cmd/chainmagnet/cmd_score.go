package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/chainmagnet/chainmagnet/internal/app"
	"github.com/chainmagnet/chainmagnet/internal/signals"
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score <token-id>",
		Short: "Compute the migration demand score for one token",
		Args:  cobra.ExactArgs(1),
		RunE:  runScore,
	}
	cmd.Flags().Bool("json", false, "Emit the raw score document instead of a table")
	return cmd
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	score, err := svc.GetScore(ctx, args[0])
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(score)
	}

	fmt.Printf("%s  score=%.1f  confidence=%.2f  trend=%s\n\n",
		score.TokenID, score.TotalScore, score.Confidence, score.Trend)

	kinds := make([]string, 0, len(score.Breakdown))
	for k := range score.Breakdown {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Signal", "Raw", "Normalized", "Weight", "Weighted", "Trend")
	for _, k := range kinds {
		sig := score.Breakdown[signals.Kind(k)]
		name := k
		if sig.Estimated {
			name += " (est)"
		}
		table.Append(
			name,
			fmt.Sprintf("%.2f", sig.Raw),
			fmt.Sprintf("%.1f", sig.Normalized),
			fmt.Sprintf("%.2f", sig.Weight),
			fmt.Sprintf("%.2f", sig.Weighted),
			string(sig.Trend),
		)
	}
	table.Render()
	return nil
}
