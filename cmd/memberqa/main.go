// memberqa answers natural-language questions over the Aurora member
// message stream and scans the same stream for data-quality anomalies.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aurorahq/memberqa/internal/ai"
	"github.com/aurorahq/memberqa/internal/config"
	"github.com/aurorahq/memberqa/internal/pipeline"
	"github.com/aurorahq/memberqa/internal/source"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "memberqa",
	Short: "Question answering and anomaly detection over member messages",
	Long: `memberqa retrieves member messages from the Aurora message API and:

- answers natural-language questions over them (ask, repl, serve)
- scans them for data-quality anomalies (analyze, reports)

Answering and the underspecified-request check call a text-completion
service. Without a credential configured those features degrade
gracefully instead of failing.`,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "memberqa.yaml", "path to config file (optional)")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(reportsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves configuration for a command invocation.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// buildQA wires the fetcher and QA pipeline from configuration.
func buildQA(cfg *config.Config) (*source.Fetcher, *pipeline.Pipeline) {
	fetcher := source.NewFetcher(cfg.Source, nil)
	client := ai.NewClient(cfg.Completion)
	return fetcher, pipeline.New(ai.NewAnswerer(client))
}
