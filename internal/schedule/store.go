// Package schedule persists publish jobs and runs the polling loop that
// promotes due jobs to publish attempts.
package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrInvalidSchedule rejects an unparseable schedule time before any
// resource is touched.
var ErrInvalidSchedule = errors.New("invalid schedule time")

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusPosted    Status = "posted"
	StatusFailed    Status = "failed"
	StatusExpired   Status = "expired"
)

// timeLayout keeps the persisted file human-inspectable.
const timeLayout = "2006-01-02 15:04:05"

// Time wraps time.Time with the store's flat text format.
type Time struct {
	time.Time
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(timeLayout))
}

func (t *Time) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.ParseInLocation(timeLayout, s, time.Local)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// Job is one pending or finished publish. It is created `scheduled` and
// moves to exactly one terminal state: posted, failed, or expired.
type Job struct {
	ID            string `json:"id"`
	Content       string `json:"content"`
	Topic         string `json:"topic"`
	ScheduledTime Time   `json:"scheduled_time"`
	Status        Status `json:"status"`
	UseGeneration bool   `json:"use_generation"`
	CreatedAt     Time   `json:"created_at"`
	PostedAt      *Time  `json:"posted_at,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Store is the durable job list. The file is rewritten in full on every
// mutation; a load failure reads as an empty store, never as a fatal error.
type Store struct {
	path string
	mu   sync.Mutex
	jobs []Job
	now  func() time.Time
}

func NewStore(path string) *Store {
	s := &Store{path: path, now: time.Now}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var jobs []Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		// Corrupt file: start empty rather than refuse to run.
		return
	}
	s.jobs = jobs
}

// persist rewrites the whole file. Caller holds the lock.
func (s *Store) persist() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.jobs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Add validates and schedules a new job, returning its id. The time is
// either bare "HH:MM" (next occurrence of that wall-clock time) or a full
// "2006-01-02 15:04".
func (s *Store) Add(content, scheduleTime, topic string, useGeneration bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	when, err := parseScheduleTime(scheduleTime, now)
	if err != nil {
		return "", err
	}

	id := s.nextID(now)
	s.jobs = append(s.jobs, Job{
		ID:            id,
		Content:       content,
		Topic:         topic,
		ScheduledTime: Time{when},
		Status:        StatusScheduled,
		UseGeneration: useGeneration,
		CreatedAt:     Time{now},
	})
	if err := s.persist(); err != nil {
		return "", fmt.Errorf("saving schedule: %w", err)
	}
	return id, nil
}

// nextID derives a time-based id, suffixed when two jobs land in the same
// second. Caller holds the lock.
func (s *Store) nextID(now time.Time) string {
	base := fmt.Sprintf("post_%d", now.Unix())
	id := base
	for n := 1; s.exists(id); n++ {
		id = fmt.Sprintf("%s_%d", base, n)
	}
	return id
}

func (s *Store) exists(id string) bool {
	for _, j := range s.jobs {
		if j.ID == id {
			return true
		}
	}
	return false
}

// Remove deletes a job by id. Idempotent; reports whether a record existed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, j := range s.jobs {
		if j.ID == id {
			s.jobs = append(s.jobs[:i], s.jobs[i+1:]...)
			_ = s.persist()
			return true
		}
	}
	return false
}

// ListActive returns jobs still scheduled for the future. As a side effect
// it reclassifies overdue `scheduled` jobs as expired and persists.
func (s *Store) ListActive() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var active []Job
	changed := false
	for i := range s.jobs {
		j := &s.jobs[i]
		if j.Status != StatusScheduled {
			continue
		}
		if j.ScheduledTime.After(now) {
			active = append(active, *j)
		} else {
			j.Status = StatusExpired
			changed = true
		}
	}
	if changed {
		_ = s.persist()
	}
	return active
}

// All returns every job, newest schedule first.
func (s *Store) All() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Job, len(s.jobs))
	copy(out, s.jobs)
	return out
}

// Pending returns jobs still in the scheduled state, regardless of time.
// The runner decides due/expired per tick.
func (s *Store) Pending() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Job
	for _, j := range s.jobs {
		if j.Status == StatusScheduled {
			out = append(out, j)
		}
	}
	return out
}

// MarkPosted moves a job to its posted terminal state.
func (s *Store) MarkPosted(id string, at time.Time) {
	s.transition(id, func(j *Job) {
		j.Status = StatusPosted
		j.PostedAt = &Time{at}
	})
}

// MarkFailed moves a job to its failed terminal state with the classified
// error detail.
func (s *Store) MarkFailed(id, detail string) {
	s.transition(id, func(j *Job) {
		j.Status = StatusFailed
		j.Error = detail
	})
}

// MarkExpired flags a job that missed its grace window.
func (s *Store) MarkExpired(id string) {
	s.transition(id, func(j *Job) {
		j.Status = StatusExpired
	})
}

func (s *Store) transition(id string, apply func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.jobs {
		if s.jobs[i].ID != id {
			continue
		}
		// Terminal states never revert.
		if s.jobs[i].Status != StatusScheduled {
			return
		}
		apply(&s.jobs[i])
		_ = s.persist()
		return
	}
}

// parseScheduleTime accepts "HH:MM" or "2006-01-02 15:04". A bare time
// means the next occurrence: today if still ahead, tomorrow otherwise.
func parseScheduleTime(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)

	if len(input) == 5 && strings.Contains(input, ":") {
		clock, err := time.Parse("15:04", input)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidSchedule, input)
		}
		when := time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location())
		if when.Before(now) {
			when = when.Add(24 * time.Hour)
		}
		return when, nil
	}

	when, err := time.ParseInLocation("2006-01-02 15:04", input, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q (use HH:MM or YYYY-MM-DD HH:MM)", ErrInvalidSchedule, input)
	}
	return when, nil
}
