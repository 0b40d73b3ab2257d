// Package chunker splits document text into bounded, overlapping segments
// along natural boundaries. Splitting is a pure function of its inputs so
// that re-indexing an unchanged document is reproducible.
package chunker

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Default splitting parameters, in characters.
const (
	DefaultSize    = 1000
	DefaultOverlap = 200
)

// ErrBadParams reports an invalid size/overlap combination.
var ErrBadParams = errors.New("invalid chunk parameters")

// separators are tried largest-first: paragraph break, line break, space,
// then a hard character split as the last resort.
var separators = []string{"\n\n", "\n", " ", ""}

// Split divides text into chunks of at most size characters. Each chunk
// after the first carries up to overlap characters of the previous chunk's
// tail to preserve context across the boundary. Requires
// 0 <= overlap < size.
func Split(text string, size, overlap int) ([]string, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", ErrBadParams, size, overlap)
	}
	return split(text, size, overlap, separators), nil
}

// split recursively partitions text by the largest separator present, then
// merges the pieces back into size-bounded chunks. Pieces that are still
// too large descend to the next smaller separator.
func split(text string, size, overlap int, seps []string) []string {
	if len(text) <= size {
		if c := strings.TrimSpace(text); c != "" {
			return []string{c}
		}
		return nil
	}

	sep := ""
	var rest []string
	for i, s := range seps {
		if s == "" {
			break
		}
		if strings.Contains(text, s) {
			sep, rest = s, seps[i+1:]
			break
		}
	}
	if sep == "" {
		return hardSplit(text, size, overlap)
	}

	var out []string
	var fitting []string
	for _, part := range strings.Split(text, sep) {
		if len(part) <= size {
			fitting = append(fitting, part)
			continue
		}
		// Flush what fits so chunk order matches document order, then
		// descend into the oversized part with the smaller separators.
		out = append(out, merge(fitting, sep, size, overlap)...)
		fitting = nil
		out = append(out, split(part, size, overlap, rest)...)
	}
	return append(out, merge(fitting, sep, size, overlap)...)
}

// merge greedily joins parts into chunks of at most size characters,
// carrying at most overlap characters of trailing parts into the start of
// the next chunk.
func merge(parts []string, sep string, size, overlap int) []string {
	var chunks []string
	var window []string
	winLen := 0 // length of strings.Join(window, sep)

	pop := func() {
		winLen -= len(window[0])
		window = window[1:]
		if len(window) > 0 {
			winLen -= len(sep)
		}
	}
	emit := func() {
		if c := strings.TrimSpace(strings.Join(window, sep)); c != "" {
			chunks = append(chunks, c)
		}
	}

	for _, part := range parts {
		grow := len(part)
		if len(window) > 0 {
			grow += len(sep)
		}
		if winLen+grow > size && len(window) > 0 {
			emit()
			for len(window) > 0 && (winLen > overlap || winLen+grow > size) {
				pop()
				grow = len(part)
				if len(window) > 0 {
					grow += len(sep)
				}
			}
		}
		if len(window) > 0 {
			winLen += len(sep)
		}
		window = append(window, part)
		winLen += len(part)
	}
	emit()
	return chunks
}

// hardSplit slices text into windows of at most size bytes, stepping back
// overlap bytes between windows. Cut points are nudged to rune boundaries so
// multibyte characters are never split; the same byte unit as split and
// merge. Used when no separator is left to split on.
func hardSplit(text string, size, overlap int) []string {
	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			end = len(text)
		} else {
			for end > start && !utf8.RuneStart(text[end]) {
				end--
			}
		}
		if c := strings.TrimSpace(text[start:end]); c != "" {
			chunks = append(chunks, c)
		}
		if end == len(text) {
			break
		}
		next := end - overlap
		if next <= start {
			next = start + 1
		}
		for next < len(text) && !utf8.RuneStart(text[next]) {
			next++
		}
		start = next
	}
	return chunks
}
