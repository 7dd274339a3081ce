package domain

import (
	"regexp"
	"strings"
)

const (
	// Message length bounds, enforced client-side before any network call.
	// The backend remains the authority: its verdict always overrides the
	// local check.
	MessageMinLen = 5
	MessageMaxLen = 140
)

var hashtagRe = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// DeriveTags extracts hashtag tokens from message text, lowercased and
// deduplicated. When the backend supplies its own theme tags those win and
// the message is not scanned at all.
func DeriveTags(message MsgText, themeTags []string) []string {
	if len(themeTags) > 0 {
		return dedupeLower(themeTags)
	}
	matches := hashtagRe.FindAllStringSubmatch(message, -1)
	if len(matches) == 0 {
		return nil
	}
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return dedupeLower(tags)
}

func dedupeLower(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
