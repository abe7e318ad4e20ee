// Package textfilter separates what the player reads from what the engine
// consumes in a generated reply.
package textfilter

import (
	"strings"

	"github.com/jwebster45206/turn-engine/pkg/turnerr"
)

// Markers delimiting the hidden directive segment of a reply.
const (
	MarkerOpen  = "<game_state>"
	MarkerClose = "</game_state>"
)

// storyEventPrefix is echoed by models that copy injected event prompts.
const storyEventPrefix = "STORY EVENT:"

// Extract splits a raw reply into narrative text and the hidden payload.
//
// With no markers the whole input is the narrative, returned unchanged, and
// ok is false. With one well-formed segment the narrative is the trimmed
// text before and after it joined by a single space, and payload is the
// trimmed content between the markers. Unterminated, unopened or repeated
// segments fail with a FormatError so that nothing is dropped silently.
func Extract(raw string) (narrative string, payload string, ok bool, err error) {
	open := strings.Index(raw, MarkerOpen)
	end := strings.Index(raw, MarkerClose)

	switch {
	case open < 0 && end < 0:
		return raw, "", false, nil
	case open < 0:
		return "", "", false, turnerr.Format("closing marker %s without opening marker", MarkerClose)
	case end < 0:
		return "", "", false, turnerr.Format("unterminated hidden segment: %s without %s", MarkerOpen, MarkerClose)
	case end < open:
		return "", "", false, turnerr.Format("closing marker precedes opening marker")
	}

	inner := raw[open+len(MarkerOpen) : end]
	if strings.Contains(inner, MarkerOpen) {
		return "", "", false, turnerr.Format("nested %s marker", MarkerOpen)
	}
	after := raw[end+len(MarkerClose):]
	if strings.Contains(after, MarkerOpen) || strings.Contains(after, MarkerClose) {
		return "", "", false, turnerr.Format("more than one hidden segment")
	}

	narrative = joinNonEmpty(strings.TrimSpace(raw[:open]), strings.TrimSpace(after))
	return narrative, strings.TrimSpace(inner), true, nil
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// CleanNarrative strips "STORY EVENT:" prefixes the model sometimes repeats
// back from injected event prompts, and trailing newlines.
func CleanNarrative(text string) string {
	text = strings.TrimRight(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) >= len(storyEventPrefix) &&
			strings.EqualFold(trimmed[:len(storyEventPrefix)], storyEventPrefix) {
			lines[i] = strings.TrimSpace(trimmed[len(storyEventPrefix):])
		}
	}
	return strings.Join(lines, "\n")
}
