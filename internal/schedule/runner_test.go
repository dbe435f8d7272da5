package schedule

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/soumilsri/LinkedInAutoPoster/internal/publish"
	"github.com/soumilsri/LinkedInAutoPoster/internal/topics"
)

type fakePublisher struct {
	result    publish.Result
	published []string
}

func (f *fakePublisher) Publish(ctx context.Context, content string) publish.Result {
	f.published = append(f.published, content)
	return f.result
}

type fakeComposer struct {
	generated []string
}

func (f *fakeComposer) Generate(ctx context.Context, topic topics.Topic) string {
	f.generated = append(f.generated, topic.Title)
	return "generated post about " + topic.Title
}

func testRunner(t *testing.T, now time.Time, pub *fakePublisher) (*Runner, *Store, *fakeComposer) {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "jobs.json"))
	store.now = func() time.Time { return now }
	comp := &fakeComposer{}
	r := NewRunner(store, pub, comp, time.Minute, zerolog.Nop())
	r.now = func() time.Time { return now }
	return r, store, comp
}

func TestTickPublishesDueJob(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 30, 0, time.Local)
	pub := &fakePublisher{result: publish.Result{Kind: publish.Published}}
	r, store, _ := testRunner(t, now, pub)

	store.Add("due post", "2025-03-10 14:00", "", false)
	r.tick(context.Background())

	if len(pub.published) != 1 || pub.published[0] != "due post" {
		t.Fatalf("expected one publish of the due post, got %v", pub.published)
	}
	j := store.All()[0]
	if j.Status != StatusPosted {
		t.Errorf("status = %s, want %s", j.Status, StatusPosted)
	}
	if j.PostedAt == nil || !j.PostedAt.Equal(now) {
		t.Errorf("posted_at = %v, want %v", j.PostedAt, now)
	}
}

func TestTickRunsSlightlyEarly(t *testing.T) {
	// 30 seconds ahead of schedule is inside the early window.
	now := time.Date(2025, 3, 10, 13, 59, 30, 0, time.Local)
	pub := &fakePublisher{result: publish.Result{Kind: publish.Published}}
	r, store, _ := testRunner(t, now, pub)

	store.Add("early", "2025-03-10 14:00", "", false)
	r.tick(context.Background())

	if len(pub.published) != 1 {
		t.Errorf("job within the early window should run, published %d", len(pub.published))
	}
}

func TestTickSkipsNotYetDue(t *testing.T) {
	now := time.Date(2025, 3, 10, 13, 0, 0, 0, time.Local)
	pub := &fakePublisher{result: publish.Result{Kind: publish.Published}}
	r, store, _ := testRunner(t, now, pub)

	store.Add("later", "2025-03-10 14:00", "", false)
	r.tick(context.Background())

	if len(pub.published) != 0 {
		t.Errorf("future job must not publish, got %v", pub.published)
	}
	if got := store.All()[0].Status; got != StatusScheduled {
		t.Errorf("status = %s, want %s", got, StatusScheduled)
	}
}

func TestTickExpiresMissedJob(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 10, 0, 0, time.Local)
	pub := &fakePublisher{result: publish.Result{Kind: publish.Published}}
	r, store, _ := testRunner(t, now, pub)

	store.Add("missed", "2025-03-10 14:00", "", false)
	r.tick(context.Background())

	if len(pub.published) != 0 {
		t.Errorf("expired job must not publish, got %v", pub.published)
	}
	if got := store.All()[0].Status; got != StatusExpired {
		t.Errorf("status = %s, want %s", got, StatusExpired)
	}
}

func TestTickGeneratesContentOnDemand(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)
	pub := &fakePublisher{result: publish.Result{Kind: publish.Published}}
	r, store, comp := testRunner(t, now, pub)

	store.Add("", "2025-03-10 14:00", "Go 1.25 released", true)
	r.tick(context.Background())

	if len(comp.generated) != 1 || comp.generated[0] != "Go 1.25 released" {
		t.Fatalf("expected generation from the stored topic, got %v", comp.generated)
	}
	if len(pub.published) != 1 || !strings.Contains(pub.published[0], "Go 1.25 released") {
		t.Errorf("published content should come from the composer, got %v", pub.published)
	}
}

func TestTickFailsGenerationWithoutTopic(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)
	pub := &fakePublisher{result: publish.Result{Kind: publish.Published}}
	r, store, _ := testRunner(t, now, pub)

	store.Add("", "2025-03-10 14:00", "", true)
	r.tick(context.Background())

	if len(pub.published) != 0 {
		t.Errorf("job without content or topic must not publish, got %v", pub.published)
	}
	j := store.All()[0]
	if j.Status != StatusFailed {
		t.Errorf("status = %s, want %s", j.Status, StatusFailed)
	}
	if !strings.Contains(j.Error, "no topic") {
		t.Errorf("error = %q, want topic explanation", j.Error)
	}
}

func TestTickRecordsFailureDetail(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)
	pub := &fakePublisher{result: publish.Result{
		Kind:   publish.LoginFailed,
		Stage:  publish.StageLogin,
		Detail: "username field never appeared",
	}}
	r, store, _ := testRunner(t, now, pub)

	store.Add("doomed", "2025-03-10 14:00", "", false)
	r.tick(context.Background())

	j := store.All()[0]
	if j.Status != StatusFailed {
		t.Fatalf("status = %s, want %s", j.Status, StatusFailed)
	}
	if !strings.Contains(j.Error, publish.StageLogin) || !strings.Contains(j.Error, "username field") {
		t.Errorf("error = %q, want stage and detail", j.Error)
	}
}

func TestQualifiedSuccessMarksPosted(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)
	pub := &fakePublisher{result: publish.Result{
		Kind:   publish.Uncertain,
		Stage:  publish.StageVerify,
		Detail: "left the compose screen but post not seen in feed",
	}}
	r, store, _ := testRunner(t, now, pub)

	store.Add("probably fine", "2025-03-10 14:00", "", false)
	r.tick(context.Background())

	if got := store.All()[0].Status; got != StatusPosted {
		t.Errorf("qualified success status = %s, want %s", got, StatusPosted)
	}
}

func TestTickOnlyTouchesDueJobs(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)
	pub := &fakePublisher{result: publish.Result{Kind: publish.Published}}
	r, store, _ := testRunner(t, now, pub)

	dueID, _ := store.Add("due", "2025-03-10 14:00", "", false)
	store.Add("later", "2025-03-10 18:00", "", false)

	r.tick(context.Background())

	if len(pub.published) != 1 {
		t.Fatalf("expected exactly one publish, got %d", len(pub.published))
	}
	for _, j := range store.All() {
		want := StatusScheduled
		if j.ID == dueID {
			want = StatusPosted
		}
		if j.Status != want {
			t.Errorf("job %s status = %s, want %s", j.ID, j.Status, want)
		}
	}
}
