package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aurorahq/memberqa/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the question endpoint over HTTP",
	Long: `Start the HTTP wrapper around the QA pipeline.

  GET /ask?q=<question>  ->  {"answer": "..."}
  GET /healthz           ->  {"status": "ok"}

Each request independently fetches messages and recomputes the answer.`,
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("addr")

		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if addr != "" {
			cfg.Server.Addr = addr
		}

		fetcher, qa := buildQA(cfg)
		srv := server.New(fetcher, qa, cfg.Source.FetchLimit)

		if err := srv.ListenAndServe(cfg.Server.Addr); err != nil {
			fmt.Fprintf(os.Stderr, "Error: server failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config)")
}
