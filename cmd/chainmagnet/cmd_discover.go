package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/chainmagnet/chainmagnet/internal/app"
	"github.com/chainmagnet/chainmagnet/internal/discovery"
)

func newDiscoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Cross-reference top assets against the target chain",
		Long:  "List ranked migration candidates: top market-cap tokens absent from the target chain, with wrapped-presence flags.",
		RunE:  runDiscover,
	}
	cmd.Flags().Bool("json", false, "Emit the raw candidate list instead of a table")
	cmd.Flags().Int("limit", 0, "Show at most N candidates (0 = all)")
	return cmd
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 120*time.Second)
	defer cancel()

	tokens, err := svc.GetDiscoveryList(ctx)
	if err != nil {
		return err
	}
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && len(tokens) > limit {
		tokens = tokens[:limit]
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tokens)
	}

	fmt.Printf("%d candidates for %s\n\n", len(tokens), cfg.TargetChain)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Rank", "Symbol", "Name", "Market Cap", "Origin Chains", "Status")
	for _, t := range tokens {
		status := ""
		if t.PresenceStatus == discovery.StatusWrappedDetected {
			status = "wrapped?"
		}
		table.Append(
			fmt.Sprintf("%d", t.Rank),
			strings.ToUpper(t.Symbol),
			t.Name,
			fmt.Sprintf("$%.0fM", t.MarketCap/1e6),
			strings.Join(t.OriginChains, ","),
			status,
		)
	}
	table.Render()
	return nil
}
