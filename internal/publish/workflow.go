// Package publish drives the login → compose → submit → verify workflow
// against LinkedIn's web UI. The target markup is an uncontrolled moving
// target, so every step works through ordered locator fallbacks and the
// workflow distinguishes "definitely failed" from "could not confirm".
package publish

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/soumilsri/LinkedInAutoPoster/internal/config"
)

const (
	composeRetries  = 3
	minVerifyLength = 10
	verifyPrefix    = 80 // characters of the post scanned for in the feed
	minWordOverlap  = 3
)

// Workflow executes publish attempts one at a time. The browser resource is
// exclusive and non-shareable, so all entry points serialize on one mutex;
// the scheduler and the interactive flow can never interleave attempts.
type Workflow struct {
	creds    config.Credentials
	headless bool
	timeout  time.Duration
	log      zerolog.Logger

	start SessionStarter
	mu    sync.Mutex

	// Waits for the target's asynchronous rendering. There is no reliable
	// "done" signal, hence fixed settles plus polling. Shortened in tests.
	settleWait    time.Duration
	submitPoll    time.Duration
	verifyWait    time.Duration
	loginPollStep time.Duration
}

func New(creds config.Credentials, browser config.BrowserConfig, log zerolog.Logger) *Workflow {
	return &Workflow{
		creds:         creds,
		headless:      browser.Headless,
		timeout:       browser.TimeoutDuration(),
		log:           log.With().Str("component", "publish").Logger(),
		start:         StartSession,
		settleWait:    3 * time.Second,
		submitPoll:    10 * time.Second,
		verifyWait:    5 * time.Second,
		loginPollStep: time.Second,
	}
}

// Publish runs the full chain for one post. All browser errors are caught
// here and returned as a classified Result; the session is released exactly
// once on every exit path. Missing credentials short-circuit before a
// browser is ever launched.
func (w *Workflow) Publish(ctx context.Context, content string) Result {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.creds.Empty() {
		return failure(LoginFailed, StageLogin, "credentials not configured (set LINKEDIN_EMAIL and LINKEDIN_PASSWORD)")
	}

	sess, err := w.start(ctx, w.headless)
	if err != nil {
		return failure(ResourceUnavailable, StageSession, err.Error())
	}
	defer sess.Close()

	if r := w.login(ctx, sess); !r.Succeeded() {
		return r
	}
	if r := w.compose(ctx, sess, content); !r.Succeeded() {
		return r
	}
	if r := w.submit(ctx, sess); !r.Succeeded() {
		return r
	}
	return w.verify(ctx, sess, content)
}

// login submits credentials and waits for an authenticated URL.
func (w *Workflow) login(ctx context.Context, sess Session) Result {
	if err := sess.Navigate(ctx, loginURL); err != nil {
		return failure(LoginFailed, StageLogin, "opening login page: "+err.Error())
	}
	if err := sess.WaitVisible(ctx, usernameLocator, w.timeout); err != nil {
		return failure(LoginFailed, StageLogin, err.Error())
	}
	if err := sess.SendKeys(ctx, usernameLocator, w.creds.Email); err != nil {
		return failure(LoginFailed, StageLogin, "entering email: "+err.Error())
	}
	if err := sess.SendKeys(ctx, passwordLocator, w.creds.Password); err != nil {
		return failure(LoginFailed, StageLogin, "entering password: "+err.Error())
	}
	if err := sess.Click(ctx, signInLocator); err != nil {
		return failure(LoginFailed, StageLogin, err.Error())
	}

	deadline := time.Now().Add(w.timeout)
	for time.Now().Before(deadline) {
		loc, err := sess.Location(ctx)
		if err == nil && isAuthenticatedURL(loc) {
			w.log.Debug().Msg("logged in")
			return Result{Kind: Published, Stage: StageLogin}
		}
		if err := sleep(ctx, w.loginPollStep); err != nil {
			return failure(LoginFailed, StageLogin, "cancelled while waiting for login")
		}
	}
	return failure(LoginFailed, StageLogin, "authenticated page did not appear; check credentials or a verification challenge")
}

// compose opens the share box and injects the post text, re-reading the
// editor to confirm the assignment landed. Up to three attempts with
// short backoff.
func (w *Workflow) compose(ctx context.Context, sess Session, text string) Result {
	if err := sess.Navigate(ctx, feedURL); err != nil {
		return failure(ComposeFailed, StageCompose, "opening feed: "+err.Error())
	}
	_ = sleep(ctx, w.settleWait)

	// Open the compose surface. If no trigger is found the editor may
	// already be on screen; the editor wait below decides.
	for _, loc := range startPostLocators {
		if err := sess.WaitVisible(ctx, loc, 5*time.Second); err != nil {
			continue
		}
		if err := sess.Click(ctx, loc); err == nil {
			break
		}
	}
	_ = sleep(ctx, w.settleWait/2)

	editor, ok := w.findEditor(ctx, sess)
	if !ok {
		return failure(ComposeFailed, StageCompose, "compose editor not found; the share box markup may have changed")
	}

	for attempt := 1; attempt <= composeRetries; attempt++ {
		if err := sess.SetEditorText(ctx, editor, text); err != nil {
			w.log.Debug().Int("attempt", attempt).Str("err", err.Error()).Msg("content assignment failed")
		} else {
			_ = sleep(ctx, w.settleWait/2)
			got, err := sess.EditorText(ctx, editor)
			if err == nil && composeVerified(got) {
				return Result{Kind: Published, Stage: StageCompose}
			}
		}
		if err := sleep(ctx, time.Duration(attempt)*500*time.Millisecond); err != nil {
			break
		}
	}
	return failure(ComposeFailed, StageCompose, "editor never reflected the injected content")
}

func (w *Workflow) findEditor(ctx context.Context, sess Session) (Locator, bool) {
	for _, loc := range editorLocators {
		if err := sess.WaitVisible(ctx, loc, 3*time.Second); err == nil {
			return loc, true
		}
	}
	return Locator{}, false
}

// submit polls the submit-control locators until one reports enabled, then
// tries each activation strategy in turn: the direct path first, then the
// synthetic-event fallback.
func (w *Workflow) submit(ctx context.Context, sess Session) Result {
	var control Locator
	found := false

	deadline := time.Now().Add(w.submitPoll)
	for !found && time.Now().Before(deadline) {
		for _, loc := range submitLocators {
			enabled, err := sess.Enabled(ctx, loc)
			if err == nil && enabled {
				control = loc
				found = true
				break
			}
		}
		if !found {
			if err := sleep(ctx, 500*time.Millisecond); err != nil {
				break
			}
		}
	}
	if !found {
		return failure(SubmitFailed, StageSubmit, "no submit control became enabled; the post button markup may have changed")
	}

	activations := []struct {
		name string
		do   func(context.Context, Locator) error
	}{
		{"click", sess.Click},
		{"dispatch", sess.DispatchClick},
	}
	var lastErr error
	for _, a := range activations {
		if err := a.do(ctx, control); err == nil {
			w.log.Debug().Str("locator", control.Name).Str("activation", a.name).Msg("submit activated")
			return Result{Kind: Published, Stage: StageSubmit}
		} else {
			lastErr = err
		}
	}
	return failure(SubmitFailed, StageSubmit, "all activation strategies failed: "+lastErr.Error())
}

// verify checks the compose surface closed and the feed is showing, then
// scans recent feed cards for word overlap with the post. Overlap confirms
// the publish; its absence downgrades to a qualified success, never a
// failure, since render races make hard confirmation unreliable.
func (w *Workflow) verify(ctx context.Context, sess Session, original string) Result {
	_ = sleep(ctx, w.verifyWait)

	for _, loc := range editorLocators {
		if visible, err := sess.Visible(ctx, loc); err == nil && visible {
			return failure(SubmitFailed, StageVerify, "compose surface is still open; the post was not submitted")
		}
	}

	loc, err := sess.Location(ctx)
	if err != nil || !strings.Contains(loc, "/feed") {
		return Result{Kind: Uncertain, Stage: StageVerify, Detail: "left the feed after submit; confirm manually"}
	}

	feedText, err := sess.FeedText(ctx, feedPostLocator, 3)
	if err == nil && feedContains(feedText, original) {
		return Result{Kind: Published, Stage: StageVerify, Detail: "post confirmed in feed"}
	}
	return Result{Kind: Uncertain, Stage: StageVerify, Detail: "post submitted but not yet visible in feed; confirm manually"}
}

func composeVerified(got string) bool {
	return len(strings.TrimSpace(got)) >= minVerifyLength
}

// feedContains reports a word-level overlap between the first ~80 characters
// of the post and the rendered feed text.
func feedContains(feedText, original string) bool {
	prefix := []rune(original)
	if len(prefix) > verifyPrefix {
		prefix = prefix[:verifyPrefix]
	}
	haystack := strings.ToLower(feedText)

	matches := 0
	for _, word := range strings.Fields(strings.ToLower(string(prefix))) {
		if len(word) < 3 {
			continue
		}
		if strings.Contains(haystack, word) {
			matches++
			if matches >= minWordOverlap {
				return true
			}
		}
	}
	return false
}

func isAuthenticatedURL(url string) bool {
	for _, p := range authenticatedPaths {
		if strings.Contains(url, p) {
			return true
		}
	}
	return false
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
