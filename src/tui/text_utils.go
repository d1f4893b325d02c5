package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// VisualWidth returns the display width of text. Escape sequences take no space.
func VisualWidth(s string) int {
	return runewidth.StringWidth(ansi.Strip(s))
}

// StripANSI removes terminal escape sequences.
func StripANSI(s string) string {
	return ansi.Strip(s)
}

// Truncate cuts s to maxLen display columns, optionally ending in "...".
func Truncate(s string, maxLen int, ellipsis bool) string {
	s = strings.TrimSpace(s)
	if maxLen <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxLen {
		return s
	}
	if ellipsis && maxLen > 3 {
		return runewidth.Truncate(s, maxLen-3, "") + "..."
	}
	return runewidth.Truncate(s, maxLen, "")
}

// TruncateAndPad truncates s and pads it with spaces to exactly width columns.
func TruncateAndPad(s string, width int, ellipsis bool) string {
	s = Truncate(s, width, ellipsis)
	if w := runewidth.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// Wrap wraps each line of text to width columns on word boundaries. Words
// wider than width are split.
func Wrap(text string, width int) string {
	if width <= 0 || text == "" {
		return text
	}

	var out []string
	for _, line := range strings.Split(text, "\n") {
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapLine(line string, width int) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var cur strings.Builder
	curWidth := 0
	flush := func() {
		if curWidth > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
			curWidth = 0
		}
	}

	for _, word := range words {
		w := runewidth.StringWidth(word)
		if w > width {
			flush()
			chunks := breakWord(word, width)
			lines = append(lines, chunks[:len(chunks)-1]...)
			last := chunks[len(chunks)-1]
			cur.WriteString(last)
			curWidth = runewidth.StringWidth(last)
			continue
		}
		switch {
		case curWidth == 0:
			cur.WriteString(word)
			curWidth = w
		case curWidth+1+w <= width:
			cur.WriteString(" ")
			cur.WriteString(word)
			curWidth += 1 + w
		default:
			flush()
			cur.WriteString(word)
			curWidth = w
		}
	}
	flush()
	return lines
}

// breakWord splits word into chunks no wider than width.
func breakWord(word string, width int) []string {
	var chunks []string
	var cur strings.Builder
	curWidth := 0
	for _, r := range word {
		rw := runewidth.RuneWidth(r)
		if curWidth+rw > width && curWidth > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curWidth = 0
		}
		cur.WriteRune(r)
		curWidth += rw
	}
	if curWidth > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// SplitLines splits text by newlines, returning empty slice if text is empty
func SplitLines(text string) []string {
	if text == "" {
		return []string{}
	}
	return strings.Split(text, "\n")
}
