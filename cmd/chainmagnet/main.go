package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/chainmagnet/chainmagnet/internal/config"
)

const (
	appName = "chainmagnet"
	version = "v0.4.0"
)

var configPath string

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Migration demand scoring for crypto assets",
		Version: version,
		Long: `ChainMagnet scores how much demand exists for migrating a crypto asset
onto a target chain. It blends bridge outflows, DEX search intent, community
traction, chain health and wallet overlap into a single 0-100 score, and
cross-references top market-cap assets to surface migration candidates.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config (defaults apply when omitted)")
	// Accept snake_case spellings of flags, matching the YAML keys.
	rootCmd.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newScoreCmd())
	rootCmd.AddCommand(newDiscoverCmd())
	rootCmd.AddCommand(newHealthCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging() {
	zerolog.TimeFieldFormat = time.RFC3339
	// Pretty console output on a terminal, JSON when piped.
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	return cfg, nil
}
