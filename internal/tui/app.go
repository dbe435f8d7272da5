// Package tui is the interactive draft review screen: browse generated
// drafts, edit or AI-refine them, and publish the chosen one.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/soumilsri/LinkedInAutoPoster/internal/browser"
	"github.com/soumilsri/LinkedInAutoPoster/internal/compose"
	"github.com/soumilsri/LinkedInAutoPoster/internal/publish"
)

type focusPane int

const (
	focusList focusPane = iota
	focusPreview
)

type mode int

const (
	modeNormal mode = iota
	modeEdit
	modeInstruct
	modeConfirm
	modePublishing
	modeResult
	modeHelp
)

// Publisher runs one publish attempt for the selected draft.
type Publisher interface {
	Publish(ctx context.Context, content string) publish.Result
}

// Refiner rewrites draft text per an operator instruction. A failed
// refinement keeps the prior text.
type Refiner interface {
	Refine(ctx context.Context, existing, instruction string) (string, error)
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Drafts    []compose.Draft
	Publisher Publisher
	Refiner   Refiner
	// Record is called after every publish attempt; nil disables archiving.
	Record func(d compose.Draft, res publish.Result)
}

type App struct {
	drafts    []compose.Draft
	publisher Publisher
	refiner   Refiner
	record    func(compose.Draft, publish.Result)

	cursor int
	focus  focusPane
	mode   mode

	width  int
	height int

	editArea      textarea.Model
	instructInput textinput.Model
	spinner       spinner.Model

	previewScroll int
	refining      bool
	lastResult    *publish.Result
	err           error
}

func NewApp(opts RunOpts) *App {
	ta := textarea.New()
	ta.CharLimit = 3000
	ta.ShowLineNumbers = false

	ti := textinput.New()
	ti.Placeholder = "e.g. make it shorter and more casual"
	ti.Prompt = promptStyle.Render("refine> ")
	ti.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	return &App{
		drafts:        opts.Drafts,
		publisher:     opts.Publisher,
		refiner:       opts.Refiner,
		record:        opts.Record,
		editArea:      ta,
		instructInput: ti,
		spinner:       sp,
	}
}

func (a *App) Init() tea.Cmd {
	return nil
}

func (a *App) selected() *compose.Draft {
	if len(a.drafts) == 0 || a.cursor >= len(a.drafts) {
		return nil
	}
	return &a.drafts[a.cursor]
}

func (a *App) publishCmd(d compose.Draft) tea.Cmd {
	pub := a.publisher
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		return publishDoneMsg{draftID: d.ID, result: pub.Publish(ctx, d.Content)}
	}
}

func (a *App) refineCmd(d compose.Draft, instruction string) tea.Cmd {
	ref := a.refiner
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		content, err := ref.Refine(ctx, d.Content, instruction)
		return refineDoneMsg{draftID: d.ID, content: content, err: err}
	}
}

func openBrowserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := browser.Open(url); err != nil {
			return browseErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		a.err = nil
		return a.handleKey(msg)

	case publishDoneMsg:
		a.mode = modeResult
		res := msg.result
		a.lastResult = &res
		if a.record != nil {
			if d := a.byID(msg.draftID); d != nil {
				a.record(*d, res)
			}
		}
		return a, nil

	case refineDoneMsg:
		a.refining = false
		if msg.err != nil {
			// Refinement failure keeps the prior text.
			a.err = fmt.Errorf("refine failed, keeping current text: %w", msg.err)
			return a, nil
		}
		if d := a.byID(msg.draftID); d != nil {
			d.SetContent(msg.content)
		}
		return a, nil

	case browseErrMsg:
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.mode == modePublishing || a.refining {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) byID(id int) *compose.Draft {
	for i := range a.drafts {
		if a.drafts[i].ID == id {
			return &a.drafts[i]
		}
	}
	return nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeEdit:
		return a.handleEditKey(msg)
	case modeInstruct:
		return a.handleInstructKey(msg)
	case modeConfirm:
		return a.handleConfirmKey(msg)
	case modePublishing:
		return a, nil // no interaction mid-publish
	case modeResult:
		if msg.String() == "q" {
			return a, tea.Quit
		}
		a.mode = modeNormal
		a.lastResult = nil
		return a, nil
	case modeHelp:
		if s := msg.String(); s == "?" || s == "esc" || s == "q" {
			a.mode = modeNormal
		}
		return a, nil
	}

	// Normal mode
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.focus == focusList && a.cursor < len(a.drafts)-1 {
			a.cursor++
			a.previewScroll = 0
		} else if a.focus == focusPreview {
			a.previewScroll++
		}
		return a, nil
	case "k", "up":
		if a.focus == focusList && a.cursor > 0 {
			a.cursor--
			a.previewScroll = 0
		} else if a.focus == focusPreview && a.previewScroll > 0 {
			a.previewScroll--
		}
		return a, nil
	case "tab":
		if a.focus == focusList {
			a.focus = focusPreview
		} else {
			a.focus = focusList
		}
		return a, nil
	case "e":
		if d := a.selected(); d != nil {
			a.mode = modeEdit
			a.editArea.SetValue(d.Content)
			a.editArea.SetWidth(max(40, a.width-8))
			a.editArea.SetHeight(max(8, a.height-8))
			a.editArea.Focus()
			return a, textarea.Blink
		}
		return a, nil
	case "i":
		if a.refiner != nil && a.selected() != nil {
			a.mode = modeInstruct
			a.instructInput.SetValue("")
			a.instructInput.Focus()
			return a, textinput.Blink
		}
		return a, nil
	case "o":
		if d := a.selected(); d != nil && d.URL != "" {
			return a, openBrowserCmd(d.URL)
		}
		return a, nil
	case "enter", "p":
		if a.selected() != nil {
			a.mode = modeConfirm
		}
		return a, nil
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

func (a *App) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.editArea.Blur()
		return a, nil
	case "ctrl+s":
		if d := a.selected(); d != nil {
			d.SetContent(a.editArea.Value())
		}
		a.mode = modeNormal
		a.editArea.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.editArea, cmd = a.editArea.Update(msg)
	return a, cmd
}

func (a *App) handleInstructKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.instructInput.Blur()
		return a, nil
	case "enter":
		instruction := strings.TrimSpace(a.instructInput.Value())
		a.mode = modeNormal
		a.instructInput.Blur()
		if instruction == "" {
			return a, nil
		}
		if d := a.selected(); d != nil {
			a.refining = true
			return a, tea.Batch(a.refineCmd(*d, instruction), a.spinner.Tick)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.instructInput, cmd = a.instructInput.Update(msg)
	return a, cmd
}

func (a *App) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		if d := a.selected(); d != nil {
			a.mode = modePublishing
			return a, tea.Batch(a.publishCmd(*d), a.spinner.Tick)
		}
		a.mode = modeNormal
		return a, nil
	default:
		a.mode = modeNormal
		return a, nil
	}
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  autoposter")
	}

	switch a.mode {
	case modeEdit:
		return headerStyle.Render("Edit draft") + "\n\n" + a.editArea.View() +
			"\n\n" + statusBarStyle.Render("ctrl+s save · esc cancel")
	case modeInstruct:
		return headerStyle.Render("Refine with AI") + "\n\n  " + a.instructInput.View() +
			"\n\n" + statusBarStyle.Render("enter refine · esc cancel")
	case modePublishing:
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
			a.spinner.View()+" Publishing to LinkedIn... this drives a real browser, hang tight")
	case modeResult:
		return a.renderResult()
	case modeHelp:
		return a.renderHelp()
	}

	return a.renderMain()
}

func (a *App) renderMain() string {
	headerLeft := headerStyle.Render("autoposter")
	headerRight := itemLengthStyle.Render(time.Now().Format("Jan 2"))
	gap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if gap < 0 {
		gap = 0
	}
	header := headerLeft + strings.Repeat(" ", gap) + headerRight

	contentHeight := a.height - 6
	if contentHeight < 3 {
		contentHeight = 3
	}
	listWidth := int(float64(a.width) * 0.35)
	previewWidth := a.width - listWidth - 1

	listContent := renderList(a.drafts, a.cursor, contentHeight, listWidth-4)
	listStyle := listPaneStyle
	if a.focus == focusList {
		listStyle = listPaneActiveStyle
	}
	listPane := listStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)

	var previewContent string
	if d := a.selected(); d != nil {
		body := wrap(d.Content, previewWidth-6)
		lines := strings.Split(body, "\n")
		if a.previewScroll > len(lines)-1 {
			a.previewScroll = max(0, len(lines)-1)
		}
		lines = lines[a.previewScroll:]
		if len(lines) > contentHeight {
			lines = lines[:contentHeight]
		}
		previewContent = previewBodyStyle.Render(strings.Join(lines, "\n"))
	} else {
		previewContent = "No draft selected"
	}
	prevStyle := previewPaneStyle
	if a.focus == focusPreview {
		prevStyle = previewPaneActiveStyle
	}
	previewPane := prevStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)

	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)

	status := fmt.Sprintf("%d draft(s) · enter post · e edit · i refine · o open · ? help · q quit", len(a.drafts))
	if a.refining {
		status = a.spinner.View() + " refining... · " + status
	}
	if a.mode == modeConfirm {
		status = promptStyle.Render("Post this draft to LinkedIn? y/n")
	}
	if a.err != nil {
		status = warnStyle.Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBarStyle.Width(a.width).Render(status))
}

func (a *App) renderResult() string {
	if a.lastResult == nil {
		return ""
	}
	res := *a.lastResult

	var headline, detail string
	switch {
	case res.Kind == publish.Published:
		headline = okStyle.Render("✓ Posted to LinkedIn")
		detail = res.Detail
	case res.Qualified():
		headline = okStyle.Render("✓ Posted (unconfirmed)")
		detail = res.Detail
	default:
		headline = warnStyle.Render("✗ Publish failed at " + res.Stage)
		detail = res.Detail
	}

	body := headline + "\n\n" + previewBodyStyle.Render(wrap(detail, max(40, a.width-10))) +
		"\n\n" + itemLengthStyle.Render("press any key to continue, q to quit")
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, body)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("autoposter")
	help := title + itemLengthStyle.Render(" — Keyboard Shortcuts") + "\n\n" +
		"  j/k, ↑/↓     Navigate drafts\n" +
		"  tab           Switch focus between list and preview\n" +
		"  e             Edit the selected draft\n" +
		"  i             Refine the draft with an AI instruction\n" +
		"  o             Open the topic's source article\n" +
		"  enter, p      Publish the selected draft\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, help)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
