package dump

import (
	"iter"
	"strings"
)

// Line is one trimmed, non-blank record of a tree dump.
type Line struct {
	Number int // 1-based position in the dump text
	Text   string
}

// Lines yields the trimmed non-blank lines of one tree dump. The sequence is
// lazy and can be ranged over any number of times.
func Lines(text string) iter.Seq[Line] {
	return func(yield func(Line) bool) {
		rest := text
		number := 0
		for len(rest) > 0 {
			number++
			var raw string
			if i := strings.IndexByte(rest, '\n'); i >= 0 {
				raw, rest = rest[:i], rest[i+1:]
			} else {
				raw, rest = rest, ""
			}
			trimmed := strings.TrimSpace(raw)
			if trimmed == "" {
				continue
			}
			if !yield(Line{Number: number, Text: trimmed}) {
				return
			}
		}
	}
}
