package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Session owns one browser automation handle. The workflow only talks to
// this interface, so locator and activation strategies are testable against
// a fake surface.
type Session interface {
	Navigate(ctx context.Context, url string) error
	Location(ctx context.Context) (string, error)
	WaitVisible(ctx context.Context, loc Locator, timeout time.Duration) error
	Visible(ctx context.Context, loc Locator) (bool, error)
	SendKeys(ctx context.Context, loc Locator, text string) error
	Click(ctx context.Context, loc Locator) error
	DispatchClick(ctx context.Context, loc Locator) error
	SetEditorText(ctx context.Context, loc Locator, text string) error
	EditorText(ctx context.Context, loc Locator) (string, error)
	Enabled(ctx context.Context, loc Locator) (bool, error)
	FeedText(ctx context.Context, loc Locator, limit int) (string, error)
	Close() error
}

// SessionStarter acquires a browser resource. StartSession is the real one;
// tests substitute their own.
type SessionStarter func(ctx context.Context, headless bool) (Session, error)

type chromeSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

// StartSession launches a Chrome instance via chromedp. The flag set mirrors
// what LinkedIn tolerates: automation-controlled blink features disabled and
// no sandbox, same as the original driver profile.
func StartSession(ctx context.Context, headless bool) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1440, 900),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	taskCtx, cancel := chromedp.NewContext(allocCtx)

	// Force the browser to actually start so failure is reported here, not
	// on the first navigation.
	startCtx, startCancel := context.WithTimeout(taskCtx, 30*time.Second)
	defer startCancel()
	if err := chromedp.Run(startCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("starting chrome: %w", err)
	}

	return &chromeSession{ctx: taskCtx, cancel: cancel, allocCancel: allocCancel}, nil
}

func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx := s.ctx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(s.ctx, deadline)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

func (s *chromeSession) Location(ctx context.Context) (string, error) {
	var url string
	err := s.run(ctx, chromedp.Location(&url))
	return url, err
}

func (s *chromeSession) WaitVisible(ctx context.Context, loc Locator, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.run(waitCtx, chromedp.WaitVisible(loc.Query, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("%s not visible: %w", loc.Name, err)
	}
	return nil
}

func (s *chromeSession) Visible(ctx context.Context, loc Locator) (bool, error) {
	js := fmt.Sprintf(
		`(function(sel){ var el = document.querySelector(sel); return !!el && el.offsetParent !== null; })(%s)`,
		jsString(loc.Query))
	var visible bool
	err := s.run(ctx, chromedp.Evaluate(js, &visible))
	return visible, err
}

func (s *chromeSession) SendKeys(ctx context.Context, loc Locator, text string) error {
	return s.run(ctx, chromedp.SendKeys(loc.Query, text, chromedp.ByQuery))
}

func (s *chromeSession) Click(ctx context.Context, loc Locator) error {
	if err := s.run(ctx, chromedp.Click(loc.Query, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("clicking %s: %w", loc.Name, err)
	}
	return nil
}

// DispatchClick fires a synthetic click through the DOM event model. Some
// dynamically-enabled controls silently ignore the direct activation path.
func (s *chromeSession) DispatchClick(ctx context.Context, loc Locator) error {
	js := fmt.Sprintf(`(function(sel){
		var el = document.querySelector(sel);
		if (!el) return false;
		el.scrollIntoView(true);
		el.click();
		el.dispatchEvent(new MouseEvent('click', { bubbles: true, cancelable: true }));
		return true;
	})(%s)`, jsString(loc.Query))

	var ok bool
	if err := s.run(ctx, chromedp.Evaluate(js, &ok)); err != nil {
		return fmt.Errorf("dispatching click on %s: %w", loc.Name, err)
	}
	if !ok {
		return fmt.Errorf("dispatching click: %s not found", loc.Name)
	}
	return nil
}

// SetEditorText assigns content directly through the DOM instead of
// emulating keystrokes. Keystroke emulation drops characters outside
// Chrome's BMP input path (multi-codepoint emoji in particular); innerText
// assignment preserves Unicode and newlines. The input events afterwards
// make the editor framework acknowledge the change.
func (s *chromeSession) SetEditorText(ctx context.Context, loc Locator, text string) error {
	js := fmt.Sprintf(`(function(sel, text){
		var el = document.querySelector(sel);
		if (!el) return false;
		el.focus();
		el.innerHTML = '';
		el.innerText = text;
		el.dispatchEvent(new InputEvent('input', { bubbles: true, cancelable: true, inputType: 'insertText', data: text }));
		el.dispatchEvent(new Event('change', { bubbles: true, cancelable: true }));
		var range = document.createRange();
		var selection = window.getSelection();
		range.selectNodeContents(el);
		range.collapse(false);
		selection.removeAllRanges();
		selection.addRange(range);
		return true;
	})(%s, %s)`, jsString(loc.Query), jsString(text))

	var ok bool
	if err := s.run(ctx, chromedp.Evaluate(js, &ok)); err != nil {
		return fmt.Errorf("setting %s text: %w", loc.Name, err)
	}
	if !ok {
		return fmt.Errorf("setting text: %s not found", loc.Name)
	}
	return nil
}

func (s *chromeSession) EditorText(ctx context.Context, loc Locator) (string, error) {
	js := fmt.Sprintf(
		`(function(sel){ var el = document.querySelector(sel); return el ? el.innerText : ''; })(%s)`,
		jsString(loc.Query))
	var text string
	err := s.run(ctx, chromedp.Evaluate(js, &text))
	return text, err
}

func (s *chromeSession) Enabled(ctx context.Context, loc Locator) (bool, error) {
	js := fmt.Sprintf(`(function(sel){
		var el = document.querySelector(sel);
		return !!el && !el.disabled && !el.classList.contains('artdeco-button--disabled');
	})(%s)`, jsString(loc.Query))
	var enabled bool
	err := s.run(ctx, chromedp.Evaluate(js, &enabled))
	return enabled, err
}

// FeedText concatenates the rendered text of the first few feed cards.
func (s *chromeSession) FeedText(ctx context.Context, loc Locator, limit int) (string, error) {
	js := fmt.Sprintf(`(function(sel, n){
		var out = [];
		var cards = document.querySelectorAll(sel);
		for (var i = 0; i < cards.length && i < n; i++) out.push(cards[i].innerText);
		return out.join('\n');
	})(%s, %d)`, jsString(loc.Query), limit)

	var text string
	err := s.run(ctx, chromedp.Evaluate(js, &text))
	return text, err
}

// Close releases the browser. Safe to call from any state; never panics.
func (s *chromeSession) Close() error {
	s.cancel()
	s.allocCancel()
	return nil
}

// jsString embeds a Go string as a JS string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
