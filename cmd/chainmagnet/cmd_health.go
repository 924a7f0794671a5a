package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/chainmagnet/chainmagnet/internal/app"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show provider health for a running process",
		Long:  "Print the in-process provider health snapshot. Providers start unknown until the first call is made.",
		RunE:  runHealth,
	}
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Provider", "Status", "Failures", "Last Error")
	for _, snap := range svc.HealthSnapshot() {
		table.Append(
			string(snap.Provider),
			string(snap.Status),
			fmt.Sprintf("%d", snap.ConsecutiveFailures),
			snap.LastError,
		)
	}
	table.Render()
	return nil
}
