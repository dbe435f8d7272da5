package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/soumilsri/LinkedInAutoPoster/internal/config"
	"github.com/soumilsri/LinkedInAutoPoster/internal/topics"
	"github.com/spf13/cobra"
)

var flagTrendingScores bool

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "List trending topics without drafting or posting",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if flagLimit > 0 {
			cfg.Trending.FetchLimit = flagLimit
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		result := topics.NewFinder(&cfg.Trending).Fetch(ctx)

		for _, e := range result.Errors {
			fmt.Printf("  [warn] %v\n", e)
		}
		if len(result.Topics) == 0 {
			return fmt.Errorf("no trending topics found")
		}

		for i, t := range result.Topics {
			fmt.Printf("%2d. %s\n", i+1, t.Title)
			fmt.Printf("    source: %s", t.Source)
			if t.Engagement > 0 {
				fmt.Printf("  ·  %d upvotes", t.Engagement)
			}
			if flagTrendingScores {
				b := topics.ScoreWithBreakdown(t)
				fmt.Printf("  ·  score %.2f (recency %.2f, source %.2f, engagement %.2f)",
					b.Final, b.Recency, b.Source, b.Engagement)
			}
			fmt.Println()
			if t.URL != "" {
				fmt.Printf("    %s\n", t.URL)
			}
		}
		return nil
	},
}

func init() {
	trendingCmd.Flags().IntVar(&flagLimit, "limit", 0, "max number of topics to list (default from config)")
	trendingCmd.Flags().BoolVar(&flagTrendingScores, "scores", false, "show ranking score breakdown")
}
