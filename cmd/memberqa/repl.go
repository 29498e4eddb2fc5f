package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Ask questions interactively",
	Long: `Fetch the message set once, then answer questions in a loop.
The fetched set is reused for the whole session; restart the REPL to
pick up new messages.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fetcher, qa := buildQA(cfg)
		ctx := cmd.Context()

		fmt.Println("Fetching messages...")
		msgs, err := fetcher.Fetch(ctx, cfg.Source.FetchLimit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: fetch canceled: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Loaded %d messages. Type a question, or 'exit' to quit.\n", len(msgs))

		cyan := color.New(color.FgCyan).SprintFunc()
		rl, err := readline.NewEx(&readline.Config{
			Prompt:            cyan("memberqa> "),
			InterruptPrompt:   "^C",
			EOFPrompt:         "exit",
			HistorySearchFold: true,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create readline: %v\n", err)
			os.Exit(1)
		}
		defer rl.Close()

		for {
			line, err := rl.Readline()
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				return
			}
			question := strings.TrimSpace(line)
			if question == "" {
				continue
			}
			if question == "exit" || question == "quit" {
				return
			}

			answer, err := qa.Route(ctx, question, msgs)
			if err != nil {
				color.New(color.FgRed).Printf("Error: %v\n", err)
				continue
			}
			fmt.Println(answer)
		}
	},
}
