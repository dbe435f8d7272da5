package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/soumilsri/LinkedInAutoPoster/internal/compose"
	"github.com/soumilsri/LinkedInAutoPoster/internal/config"
	"github.com/soumilsri/LinkedInAutoPoster/internal/logging"
	"github.com/soumilsri/LinkedInAutoPoster/internal/publish"
	"github.com/soumilsri/LinkedInAutoPoster/internal/schedule"
	"github.com/spf13/cobra"
)

var (
	flagSchedMessage  string
	flagSchedTopic    string
	flagSchedAt       string
	flagSchedGenerate bool
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage scheduled posts",
	Long: `Queue posts for later and run the scheduler that publishes them.

Times accept HH:MM (today, or tomorrow if already past) or a full
"2006-01-02 15:04" timestamp in local time.`,
}

var scheduleAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Queue a post for a future time",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagSchedAt == "" {
			return fmt.Errorf("--at is required")
		}
		if flagSchedMessage == "" && !flagSchedGenerate {
			return fmt.Errorf("provide --message, or --generate with --topic")
		}
		if flagSchedGenerate && flagSchedMessage == "" && flagSchedTopic == "" {
			return fmt.Errorf("--generate needs a --topic when no --message is given")
		}

		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		store := schedule.NewStore(cfg.Schedule.Path())
		id, err := store.Add(flagSchedMessage, flagSchedAt, flagSchedTopic, flagSchedGenerate)
		if err != nil {
			if errors.Is(err, schedule.ErrInvalidSchedule) {
				return fmt.Errorf("invalid schedule time %q: use HH:MM or \"2006-01-02 15:04\"", flagSchedAt)
			}
			return err
		}
		fmt.Printf("Scheduled %s for %s.\n", id, flagSchedAt)
		return nil
	},
}

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show queued posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		store := schedule.NewStore(cfg.Schedule.Path())
		jobs := store.ListActive()
		if len(jobs) == 0 {
			fmt.Println("No scheduled posts.")
			return nil
		}

		for _, j := range jobs {
			fmt.Printf("%-22s %s  [%s]\n", j.ID, j.ScheduledTime.Format("2006-01-02 15:04"), j.Status)
			if j.Topic != "" {
				fmt.Printf("    topic: %s\n", j.Topic)
			}
			if j.Content != "" {
				fmt.Printf("    %s\n", summarize(j.Content, 70))
			}
			if j.Error != "" {
				fmt.Printf("    error: %s\n", j.Error)
			}
		}
		return nil
	},
}

var scheduleRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a queued post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		store := schedule.NewStore(cfg.Schedule.Path())
		if store.Remove(args[0]) {
			fmt.Printf("Removed %s.\n", args[0])
		} else {
			fmt.Printf("No scheduled post with id %s.\n", args[0])
		}
		return nil
	},
}

var scheduleRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduler until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if cmd.Flags().Changed("headless") {
			cfg.Browser.Headless = flagHeadless
		}
		log := logging.New(cfg.LogLevel)

		store := schedule.NewStore(cfg.Schedule.Path())
		workflow := publish.New(cfg.LinkedIn, cfg.Browser, log)
		composer := compose.New(&cfg.Generation, true)
		runner := schedule.NewRunner(store, workflow, composer, cfg.Schedule.Interval(), log)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Scheduler running (poll every %s). Press Ctrl+C to stop.\n", cfg.Schedule.Interval())
		return runner.Run(ctx)
	},
}

func summarize(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

func init() {
	scheduleAddCmd.Flags().StringVarP(&flagSchedMessage, "message", "m", "", "post text to publish")
	scheduleAddCmd.Flags().StringVarP(&flagSchedTopic, "topic", "t", "", "topic for generated content")
	scheduleAddCmd.Flags().StringVar(&flagSchedAt, "at", "", "time to post (HH:MM or \"2006-01-02 15:04\")")
	scheduleAddCmd.Flags().BoolVar(&flagSchedGenerate, "generate", false, "generate the content at posting time")

	scheduleCmd.AddCommand(scheduleAddCmd)
	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleRemoveCmd)
	scheduleCmd.AddCommand(scheduleRunCmd)
}
