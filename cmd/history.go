package cmd

import (
	"fmt"
	"time"

	"github.com/soumilsri/LinkedInAutoPoster/internal/config"
	"github.com/soumilsri/LinkedInAutoPoster/internal/history"
	"github.com/spf13/cobra"
)

var (
	flagHistoryLimit     int
	flagHistoryOlderThan string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently published posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := history.Open(config.HistoryPath())
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer db.Close()

		entries, err := db.Recent(flagHistoryLimit)
		if err != nil {
			return fmt.Errorf("reading history: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No posts recorded yet.")
			return nil
		}

		for _, e := range entries {
			fmt.Printf("%s  [%s]  %s\n", e.PostedAt.Format("2006-01-02 15:04"), e.Status, e.Topic)
			fmt.Printf("    %s\n", summarize(e.Content, 70))
			if e.Detail != "" {
				fmt.Printf("    %s\n", e.Detail)
			}
		}
		return nil
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old entries from the post archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := history.Open(config.HistoryPath())
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer db.Close()

		retention := 90 * 24 * time.Hour
		label := "90d"
		if flagHistoryOlderThan != "" {
			label = flagHistoryOlderThan
			d, err := parseRetention(flagHistoryOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			retention = d
		}

		deleted, err := db.Prune(retention)
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}
		if deleted == 0 {
			fmt.Println("Nothing to prune.")
		} else {
			fmt.Printf("Pruned %d entr(ies) older than %s.\n", deleted, label)
		}
		return nil
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show archive statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := config.HistoryPath()
		db, err := history.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer db.Close()

		count, size, err := db.Stats(dbPath)
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		fmt.Printf("Archive: %s\n", dbPath)
		fmt.Printf("Posts: %d\n", count)
		fmt.Printf("Size: %s\n", formatBytes(size))
		return nil
	},
}

// parseRetention accepts Go durations plus a day suffix (e.g. "30d").
func parseRetention(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "number of entries to show")
	historyPruneCmd.Flags().StringVar(&flagHistoryOlderThan, "older-than", "", "retention period (e.g. 30d, 720h), default 90d")

	historyCmd.AddCommand(historyPruneCmd)
	historyCmd.AddCommand(historyStatsCmd)
}
