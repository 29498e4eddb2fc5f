package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question over the member messages",
	Long: `Fetch messages, retrieve the snippets most similar to the question,
and ask the completion service for an answer grounded in them.

Examples:
  memberqa ask "Who asked about dinner reservations in Paris?"
  memberqa ask --limit 500 "What did Layla order?"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		question := strings.Join(args, " ")

		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if limit > 0 {
			cfg.Source.FetchLimit = limit
		}

		fetcher, qa := buildQA(cfg)
		ctx := cmd.Context()

		msgs, err := fetcher.Fetch(ctx, cfg.Source.FetchLimit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: fetch canceled: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Fetched %d messages\n", len(msgs))

		answer, err := qa.Route(ctx, question, msgs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(answer)
	},
}

func init() {
	askCmd.Flags().Int("limit", 0, "max messages to fetch (default from config)")
}
