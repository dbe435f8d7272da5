package tui

import (
	"fmt"
	"strings"

	"github.com/soumilsri/LinkedInAutoPoster/internal/compose"
)

func renderListItem(d compose.Draft, selected bool, width int) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + truncateStr(d.Topic, width-4))
	} else {
		title = itemTitleStyle.Render("  " + truncateStr(d.Topic, width-4))
	}

	meta := "  " + itemSourceStyle.Render(string(d.Source)) +
		" " + itemLengthStyle.Render(fmt.Sprintf("· %d chars", d.Length))

	return title + "\n" + meta
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func renderList(drafts []compose.Draft, cursor int, height int, width int) string {
	if len(drafts) == 0 {
		return "No drafts"
	}

	// Each item is 2 lines + 1 blank line = 3 lines
	itemHeight := 3
	visible := height / itemHeight
	if visible < 1 {
		visible = 1
	}

	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > len(drafts) {
		end = len(drafts)
		start = end - visible
		if start < 0 {
			start = 0
		}
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(drafts[i], i == cursor, width))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// wrap breaks text to the given width for the preview pane.
func wrap(s string, width int) string {
	if width < 10 {
		width = 40
	}
	var out []string
	for _, line := range strings.Split(s, "\n") {
		for len([]rune(line)) > width {
			runes := []rune(line)
			cut := width
			for i := width; i > width/2; i-- {
				if runes[i-1] == ' ' {
					cut = i
					break
				}
			}
			out = append(out, strings.TrimRight(string(runes[:cut]), " "))
			line = string(runes[cut:])
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
