package schedule

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/soumilsri/LinkedInAutoPoster/internal/publish"
	"github.com/soumilsri/LinkedInAutoPoster/internal/topics"
)

const (
	// dueEarly lets a job start slightly ahead of its minute.
	dueEarly = time.Minute
	// graceWindow is how long past the scheduled moment the runner will
	// still attempt a job before marking it expired.
	graceWindow = 5 * time.Minute
)

// Publisher executes one publish attempt. The publish.Workflow satisfies
// this; tests substitute fakes.
type Publisher interface {
	Publish(ctx context.Context, content string) publish.Result
}

// Composer generates content on the fly for jobs scheduled with generation
// enabled and no precomputed text.
type Composer interface {
	Generate(ctx context.Context, topic topics.Topic) string
}

// Runner is the single-threaded polling loop. Due jobs execute one at a
// time within a tick; the browser resource is exclusive, so there is never
// more than one publish in flight.
type Runner struct {
	store     *Store
	publisher Publisher
	composer  Composer
	interval  time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

func NewRunner(store *Store, publisher Publisher, composer Composer, interval time.Duration, log zerolog.Logger) *Runner {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Runner{
		store:     store,
		publisher: publisher,
		composer:  composer,
		interval:  interval,
		log:       log.With().Str("component", "scheduler").Logger(),
		now:       time.Now,
	}
}

// Run polls until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.log.Info().Dur("interval", r.interval).Msg("scheduler started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// tick classifies every scheduled job as not-yet-due, due, or expired, and
// executes the due ones sequentially.
func (r *Runner) tick(ctx context.Context) {
	now := r.now()
	for _, job := range r.store.Pending() {
		at := job.ScheduledTime.Time
		switch {
		case now.Before(at.Add(-dueEarly)):
			// Not due yet.
		case now.After(at.Add(graceWindow)):
			r.log.Warn().Str("job", job.ID).Time("scheduled", at).Msg("job missed its grace window")
			r.store.MarkExpired(job.ID)
		default:
			r.execute(ctx, job)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// execute runs one job end to end and records its terminal state. A failed
// job is never auto-rescheduled.
func (r *Runner) execute(ctx context.Context, job Job) {
	log := r.log.With().Str("job", job.ID).Logger()
	log.Info().Msg("executing scheduled post")

	content := job.Content
	if content == "" && job.UseGeneration {
		if job.Topic == "" {
			log.Error().Msg("no topic to generate from")
			r.store.MarkFailed(job.ID, "generation requested but no topic provided")
			return
		}
		content = r.composer.Generate(ctx, topics.Manual(job.Topic))
	}
	if content == "" {
		r.store.MarkFailed(job.ID, "no post content available")
		return
	}

	res := r.publisher.Publish(ctx, content)
	if res.Succeeded() {
		r.store.MarkPosted(job.ID, r.now())
		if res.Qualified() {
			log.Warn().Str("detail", res.Detail).Msg("posted, unconfirmed")
		} else {
			log.Info().Msg("posted")
		}
		return
	}

	log.Error().Str("stage", res.Stage).Str("detail", res.Detail).Msg("publish failed")
	r.store.MarkFailed(job.ID, res.Stage+": "+res.Detail)
}
