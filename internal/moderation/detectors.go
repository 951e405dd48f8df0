// internal/moderation/detectors.go
package moderation

import (
	"regexp"
	"strings"
)

var (
	urlRegex = regexp.MustCompile(`https?://[^\s]+`)
	// Covers the common emoji blocks: misc symbols, dingbats, emoticons,
	// transport, supplemental symbols and extended pictographs.
	emojiRegex = regexp.MustCompile(`[\x{2600}-\x{27BF}\x{1F300}-\x{1F5FF}\x{1F600}-\x{1F64F}\x{1F680}-\x{1F6FF}\x{1F900}-\x{1F9FF}\x{1FA70}-\x{1FAFF}]`)
	// Three or more consecutive punctuation symbols ("!!!", "???", "$$$").
	punctuationRunRegex = regexp.MustCompile(`[!?.,;:*#@$%^&+=~\-_]{3,}`)
)

// containsAnyFold reports whether text contains any bank entry,
// case-insensitively. The text is lowered once by the caller.
func containsAnyFold(loweredText string, bank []string) (string, bool) {
	for _, entry := range bank {
		if strings.Contains(loweredText, strings.ToLower(entry)) {
			return entry, true
		}
	}
	return "", false
}

// containsAnyExact reports whether text contains any bank entry as an exact,
// case-sensitive substring.
func containsAnyExact(text string, bank []string) (string, bool) {
	for _, entry := range bank {
		if strings.Contains(text, entry) {
			return entry, true
		}
	}
	return "", false
}

// inSetFold reports whether value equals any set entry, case-insensitively.
func inSetFold(value string, set []string) bool {
	for _, entry := range set {
		if strings.EqualFold(strings.TrimSpace(value), entry) {
			return true
		}
	}
	return false
}

func containsURL(text string) bool {
	return urlRegex.MatchString(text)
}

func containsEmoji(text string) bool {
	return emojiRegex.MatchString(text)
}

func containsPunctuationRun(text string) bool {
	return punctuationRunRegex.MatchString(text)
}
