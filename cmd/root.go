package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/soumilsri/LinkedInAutoPoster/internal/compose"
	"github.com/soumilsri/LinkedInAutoPoster/internal/config"
	"github.com/soumilsri/LinkedInAutoPoster/internal/history"
	"github.com/soumilsri/LinkedInAutoPoster/internal/logging"
	"github.com/soumilsri/LinkedInAutoPoster/internal/publish"
	"github.com/soumilsri/LinkedInAutoPoster/internal/topics"
	"github.com/soumilsri/LinkedInAutoPoster/internal/tui"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig   string
	flagHeadless bool
	flagNoAI     bool
	flagLimit    int
)

var rootCmd = &cobra.Command{
	Use:   "autoposter",
	Short: "Automated LinkedIn posting from trending tech topics",
	Long: `autoposter discovers trending technology topics, drafts LinkedIn posts for
them, and publishes the one you pick through a real browser session.

Run without arguments for the interactive flow: fetch topics, review drafts
in the TUI, and post. Use the subcommands for one-shot or scheduled posting.`,
	RunE: runInteractive,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&flagHeadless, "headless", false, "run the browser without a window")
	rootCmd.Flags().BoolVar(&flagNoAI, "no-ai", false, "use template generation only, skip LLM providers")
	rootCmd.Flags().IntVar(&flagLimit, "limit", 0, "max number of trending topics to draft (default from config)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(trendingCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(historyCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("autoposter %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("headless") {
		cfg.Browser.Headless = flagHeadless
	}
	if flagLimit > 0 {
		cfg.Trending.FetchLimit = flagLimit
	}
	log := logging.New(cfg.LogLevel)

	fmt.Println("Fetching trending topics...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	result := topics.NewFinder(&cfg.Trending).Fetch(ctx)
	cancel()

	for _, e := range result.Errors {
		fmt.Printf("  [warn] %v\n", e)
	}
	if len(result.Topics) == 0 {
		return fmt.Errorf("no trending topics found; check sources in %s", config.DefaultConfigPath())
	}

	composer := compose.New(&cfg.Generation, !flagNoAI)
	fmt.Printf("Drafting %d post(s)...\n", len(result.Topics))
	ctx, cancel = context.WithTimeout(context.Background(), 2*time.Minute)
	drafts := composer.Drafts(ctx, result.Topics)
	cancel()

	workflow := publish.New(cfg.LinkedIn, cfg.Browser, log)

	db, err := history.Open(config.HistoryPath())
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer db.Close()

	return tui.Run(tui.RunOpts{
		Drafts:    drafts,
		Publisher: workflow,
		Refiner:   composer,
		Record: func(d compose.Draft, res publish.Result) {
			recordOutcome(db, d, res)
		},
	})
}

// recordOutcome archives a publish attempt; archival failures are not fatal
// to the posting flow.
func recordOutcome(db *history.History, d compose.Draft, res publish.Result) {
	status := res.Kind.String()
	switch {
	case res.Kind == publish.Published:
		status = "published"
	case res.Qualified():
		status = "published (unconfirmed)"
	}
	_ = db.Record(history.Entry{
		ID:       fmt.Sprintf("draft_%d_%d", d.ID, time.Now().Unix()),
		Topic:    d.Topic,
		Content:  d.Content,
		Source:   string(d.Source),
		Status:   status,
		Detail:   res.Detail,
		PostedAt: time.Now(),
	})
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
