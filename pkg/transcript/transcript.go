// Package transcript parses the side-channel protocol embedded in the text
// an interpreter prints after each command: <tag>…</tag> info blocks enabled
// with `tw-extra-infos TAG`, and bracketed action-trace markers enabled with
// `tw-trace-actions`.
package transcript

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// AvailableInfoTags is the registry of info-block tags the interpreter can be
// asked to print. Requesting any other tag is a configuration error.
var AvailableInfoTags = []string{"description", "inventory", "score", "moves"}

// ErrUnknownTag is returned when a tag outside AvailableInfoTags is requested.
var ErrUnknownTag = errors.New("unknown extra-info tag")

var eventMarkerRe = regexp.MustCompile(`\[[^]]+\]\n?`)

// blockRe matches one info block. The interpreter always prints a newline
// right after the opening tag.
func blockRe(tag string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)<` + regexp.QuoteMeta(tag) + `>\n(.*?)</` + regexp.QuoteMeta(tag) + `>`)
}

// ExtractInfoBlocks pulls the requested info blocks out of text. The returned
// map has an entry for every tracked tag; the value is nil when the block was
// not printed this turn. An opening tag with no matching closing tag counts as
// not printed. All matched spans are removed from the returned text.
func ExtractInfoBlocks(text string, trackedTags []string) (map[string]*string, string, error) {
	blocks := make(map[string]*string, len(trackedTags))
	for _, tag := range trackedTags {
		if !isRegisteredTag(tag) {
			return nil, text, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
		}

		re := blockRe(tag)
		m := re.FindStringSubmatch(text)
		if m == nil {
			blocks[tag] = nil
			continue
		}

		// The interpreter may emit trace markers inside a block;
		// they never belong to the block's value.
		_, content := ExtractEvents(m[1])
		content = strings.TrimSpace(content)
		blocks[tag] = &content
		text = re.ReplaceAllString(text, "")
	}
	return blocks, text, nil
}

// ExtractEvents finds every bracketed trace marker in text, in source order,
// and strips all of them from the returned text. A marker is kept as an event
// only when its descriptor ends in " - succeeded" (the suffix is stripped);
// descriptors containing a parenthesis are subrule traces and are dropped.
func ExtractEvents(text string) ([]string, string) {
	spans := eventMarkerRe.FindAllStringIndex(text, -1)
	if spans == nil {
		return nil, text
	}

	var events []string
	var clean strings.Builder
	prev := 0
	for _, span := range spans {
		clean.WriteString(text[prev:span[0]])
		prev = span[1]

		descriptor := strings.TrimSpace(text[span[0]:span[1]])
		descriptor = descriptor[1 : len(descriptor)-1]

		name, ok := strings.CutSuffix(descriptor, " - succeeded")
		if !ok {
			continue
		}
		// Parentheses mark subrule traces, which don't count as
		// game events. Kept as-is even though an action name could
		// in principle contain them.
		if strings.ContainsAny(name, "()") {
			continue
		}
		events = append(events, name)
	}
	clean.WriteString(text[prev:])
	return events, clean.String()
}

func isRegisteredTag(tag string) bool {
	for _, t := range AvailableInfoTags {
		if t == tag {
			return true
		}
	}
	return false
}
