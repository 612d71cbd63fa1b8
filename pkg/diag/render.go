package diag

import (
	"strings"
	"unicode/utf8"

	"github.com/leapstack-labs/tally/pkg/token"
	"golang.org/x/text/width"
)

// Render returns an excerpt of text covering start..end with a caret line
// under each covered line. Spans crossing lines render every line they touch,
// each with its own underline segment. A zero-width span is shown as a single
// caret.
func Render(text string, start, end token.Position) string {
	if end.Offset < start.Offset {
		start, end = end, start
	}

	lineCount := end.Line - start.Line + 1
	if lineCount < 1 {
		lineCount = 1
	}

	lineStart := strings.LastIndexByte(text[:clamp(start.Offset, len(text))], '\n') + 1

	var b strings.Builder
	for i := 0; i < lineCount && lineStart <= len(text); i++ {
		lineEnd := strings.IndexByte(text[lineStart:], '\n')
		if lineEnd < 0 {
			lineEnd = len(text)
		} else {
			lineEnd += lineStart
		}
		line := strings.TrimSuffix(text[lineStart:lineEnd], "\r")
		runes := []rune(strings.ReplaceAll(line, "\t", " "))

		colStart := 0
		if i == 0 {
			colStart = start.Column
		}
		colEnd := len(runes)
		if i == lineCount-1 {
			colEnd = end.Column
		}
		if colEnd <= colStart {
			colEnd = colStart + 1
		}

		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(runes))
		b.WriteByte('\n')
		b.WriteString(strings.Repeat(" ", displayWidth(runes, 0, colStart)))
		b.WriteString(strings.Repeat("^", max(displayWidth(runes, colStart, colEnd), 1)))

		lineStart = lineEnd + 1
	}
	return b.String()
}

// displayWidth sums the terminal cell width of runes[from:to]. Columns past
// the end of the line count as one cell each.
func displayWidth(runes []rune, from, to int) int {
	w := 0
	for col := from; col < to; col++ {
		if col >= len(runes) {
			w++
			continue
		}
		w += runeWidth(runes[col])
	}
	return w
}

func runeWidth(r rune) int {
	if r == utf8.RuneError {
		return 1
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

func clamp(n, limit int) int {
	if n < 0 {
		return 0
	}
	if n > limit {
		return limit
	}
	return n
}
