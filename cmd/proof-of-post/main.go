package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bonsol-collective/proof-of-post/pkg/logger"
	"github.com/bonsol-collective/proof-of-post/src/config"
	"github.com/bonsol-collective/proof-of-post/src/external"
	"github.com/bonsol-collective/proof-of-post/src/resolver"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "proof-of-post",
		Short:         "Client for the proof-of-post reward program",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional; env vars win either way.
			_ = godotenv.Load()
		},
	}

	rootCmd.AddCommand(
		newCreateConfigCmd(),
		newUpdateConfigCmd(),
		newReadConfigCmd(),
		newVerifyCmd(),
		newStatusCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		logger.Default().Error(err, "Command failed")
		os.Exit(1)
	}
}

// newClient wires the config, resolver, and Solana client the way every
// command needs them.
func newClient() (*config.ClientConfig, *external.SolanaClient, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	res := resolver.New(&http.Client{}, cfg.BskyAPIURL)
	return cfg, external.NewSolanaClient(cfg, res), nil
}
