package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aurorahq/memberqa/internal/storage"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List archived analysis runs",
	Long:  `Show summaries of past 'memberqa analyze' runs from the local archive.`,
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if cfg.Storage.Path == "" {
			fmt.Println("No archive configured")
			fmt.Println("Set MEMBERQA_DB_PATH or storage.path in memberqa.yaml to enable archiving")
			return
		}

		store, err := storage.New(cfg.Storage.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		runs, err := store.ListRuns(limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(runs) == 0 {
			fmt.Println("No archived runs yet")
			return
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		fmt.Printf("%s\n", cyan("=== Archived Analysis Runs ==="))
		for _, r := range runs {
			fmt.Printf("\n#%d  %s  (%d messages, %d users)\n",
				r.ID, r.RanAt.Format("2006-01-02 15:04:05"), r.TotalMessages, r.UniqueUsers)
			fmt.Printf("  duplicates=%d missing_name=%d missing_text=%d missing_ts=%d\n",
				r.DuplicateGroups, r.MissingMemberName, r.MissingText, r.MissingTimestamp)
			fmt.Printf("  short=%d impossible_ts=%d bursts=%d", r.ShortMessages, r.ImpossibleTimestamps, r.BurstCases)
			if r.ClassifierSkipped {
				fmt.Printf(" underspecified=skipped\n")
			} else {
				fmt.Printf(" underspecified=%d\n", r.Underspecified)
			}
		}
	},
}

func init() {
	reportsCmd.Flags().Int("limit", 20, "max runs to list")
}
