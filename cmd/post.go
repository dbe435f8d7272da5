package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/soumilsri/LinkedInAutoPoster/internal/compose"
	"github.com/soumilsri/LinkedInAutoPoster/internal/config"
	"github.com/soumilsri/LinkedInAutoPoster/internal/history"
	"github.com/soumilsri/LinkedInAutoPoster/internal/logging"
	"github.com/soumilsri/LinkedInAutoPoster/internal/publish"
	"github.com/soumilsri/LinkedInAutoPoster/internal/topics"
	"github.com/spf13/cobra"
)

var (
	flagPostMessage string
	flagPostTopic   string
	flagPostAI      bool
	flagPostDryRun  bool
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Publish a single post without the interactive TUI",
	Long: `Publish one post immediately. Provide the full text with --message, or a
topic with --topic to have the content generated. --dry-run prints the post
instead of driving the browser.`,
	RunE: runPost,
}

func init() {
	postCmd.Flags().StringVarP(&flagPostMessage, "message", "m", "", "post text to publish as-is")
	postCmd.Flags().StringVarP(&flagPostTopic, "topic", "t", "", "topic to generate a post about")
	postCmd.Flags().BoolVar(&flagPostAI, "ai", true, "use LLM providers when generating (template fallback otherwise)")
	postCmd.Flags().BoolVar(&flagPostDryRun, "dry-run", false, "print the post instead of publishing")
}

func runPost(cmd *cobra.Command, args []string) error {
	if flagPostMessage == "" && flagPostTopic == "" {
		return fmt.Errorf("either --message or --topic is required")
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("headless") {
		cfg.Browser.Headless = flagHeadless
	}
	log := logging.New(cfg.LogLevel)

	content := flagPostMessage
	topicTitle := flagPostTopic
	if content == "" {
		composer := compose.New(&cfg.Generation, flagPostAI)
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		content = composer.Generate(ctx, topics.Manual(flagPostTopic))
		cancel()
	}

	if flagPostDryRun {
		fmt.Println(content)
		fmt.Printf("\n(%d characters, dry run, nothing published)\n", len([]rune(content)))
		return nil
	}

	workflow := publish.New(cfg.LinkedIn, cfg.Browser, log)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	res := workflow.Publish(ctx, content)

	if db, err := history.Open(config.HistoryPath()); err == nil {
		recordOutcome(db, compose.Draft{
			Topic:   topicTitle,
			Content: content,
			Source:  topics.SourceManual,
		}, res)
		db.Close()
	}

	switch {
	case res.Kind == publish.Published:
		fmt.Println("Posted to LinkedIn.")
	case res.Qualified():
		fmt.Printf("Posted, but could not confirm the post in the feed: %s\n", res.Detail)
	default:
		return fmt.Errorf("publish failed at %s: %s", res.Stage, res.Detail)
	}
	return nil
}
