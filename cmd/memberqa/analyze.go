package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aurorahq/memberqa/internal/ai"
	"github.com/aurorahq/memberqa/internal/analysis"
	"github.com/aurorahq/memberqa/internal/source"
	"github.com/aurorahq/memberqa/internal/storage"
	"github.com/aurorahq/memberqa/internal/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Scan the message set for data-quality anomalies",
	Long: `Fetch messages and run every anomaly pass over them:

- missing fields (member name, text, timestamp)
- duplicate message texts
- very short / empty messages
- impossible future timestamps
- burst messaging (one user, many messages, seconds apart)
- underspecified action requests (judged by the completion service)

With a database path configured the run summary is archived; see
'memberqa reports'.`,
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if limit <= 0 {
			limit = 500
		}

		ctx := cmd.Context()
		fetcher := source.NewFetcher(cfg.Source, nil)

		fmt.Println("Fetching messages...")
		msgs, err := fetcher.Fetch(ctx, limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: fetch canceled: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Loaded %d messages\n\n", len(msgs))

		report := analysis.Scan(msgs)
		bursts := analysis.DetectBursts(msgs, analysis.DefaultBurstThreshold, analysis.DefaultBurstWindow)

		classifier := ai.NewClassifier(ai.NewClient(cfg.Completion))
		classified := classifier.Classify(ctx, msgs, ai.DefaultMaxExamples)

		printReport(report, bursts, classified)

		if cfg.Storage.Path != "" {
			if err := archiveRun(cfg.Storage.Path, report, bursts, classified); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to archive run: %v\n", err)
			}
		}
	},
}

func init() {
	analyzeCmd.Flags().Int("limit", 500, "max messages to fetch")
}

func printReport(r *analysis.Report, bursts []types.BurstRecord, classified ai.ClassifyResult) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Printf("%s\n", cyan("=== DATA STATISTICS ==="))
	fmt.Printf("Total messages: %d\n", r.Stats.TotalMessages)
	fmt.Printf("Unique users: %d\n", r.Stats.UniqueUsers)
	fmt.Printf("Average message length: %.2f characters\n\n", r.Stats.AvgTextLength)

	fmt.Printf("%s\n", cyan("=== ANOMALY REPORT ==="))
	printCount("Duplicate messages", len(r.Duplicates))
	printCount("Missing member name", len(r.MissingMemberName))
	printCount("Missing message text", len(r.MissingText))
	printCount("Missing timestamp", len(r.MissingTimestamp))
	printCount("Very short / empty messages (<5 chars)", len(r.ShortMessages))
	printCount("Impossible/future timestamps", len(r.ImpossibleTimestamps))
	printCount("Burst messaging cases", len(bursts))
	if classified.Skipped {
		fmt.Printf("- Underspecified intent requests: %s\n", yellow("skipped (no completion credential)"))
	} else {
		printCount("Underspecified intent requests", len(classified.Flagged))
	}

	fmt.Printf("\n%s\n", yellow("--- SAMPLE DETAILS ---"))
	for text, ids := range r.Duplicates {
		fmt.Println("\nExample duplicate message:")
		fmt.Printf("  Text: %s\n", text)
		fmt.Printf("  IDs: %v\n", ids)
		break
	}
	if len(bursts) > 0 {
		b := bursts[0]
		fmt.Println("\nExample burst case:")
		fmt.Printf("  %s sent %d messages between %s and %s\n", b.User, b.Count, b.Start, b.End)
	}
	if len(classified.Flagged) > 0 {
		fmt.Println("\nUnderspecified requests:")
		for _, m := range classified.Flagged {
			fmt.Printf("  %s: %s\n", m.MemberName, m.Text)
		}
	}
	fmt.Println()
}

func printCount(label string, n int) {
	line := fmt.Sprintf("- %s: %d", label, n)
	if n > 0 {
		color.New(color.FgRed).Println(line)
	} else {
		fmt.Println(line)
	}
}

func archiveRun(dbPath string, r *analysis.Report, bursts []types.BurstRecord, classified ai.ClassifyResult) error {
	store, err := storage.New(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.SaveRun(&storage.RunSummary{
		RanAt:                time.Now(),
		TotalMessages:        r.Stats.TotalMessages,
		UniqueUsers:          r.Stats.UniqueUsers,
		DuplicateGroups:      len(r.Duplicates),
		MissingMemberName:    len(r.MissingMemberName),
		MissingText:          len(r.MissingText),
		MissingTimestamp:     len(r.MissingTimestamp),
		ShortMessages:        len(r.ShortMessages),
		ImpossibleTimestamps: len(r.ImpossibleTimestamps),
		BurstCases:           len(bursts),
		Underspecified:       len(classified.Flagged),
		ClassifierSkipped:    classified.Skipped,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Archived run #%d to %s\n", id, dbPath)
	return nil
}
