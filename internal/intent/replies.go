package intent

import "strings"

// ParseClarificationReply reads a reply to a "did you mean the song or
// the person?" question. The returned kind is "song" or "person"; ok is
// false when the reply picks neither, which the dialogue layer treats
// as a topic change.
func ParseClarificationReply(text string) (string, bool) {
	msg := normalize(text)
	if containsAny(msg, []string{"song", "track", "tune"}) {
		return "song", true
	}
	if containsAny(msg, []string{"person", "volunteer", "someone", "somebody"}) {
		return "person", true
	}
	return "", false
}

// DetectServiceType matches a configured service-type alias in the
// message. Longer aliases win so "high school ministry" is not
// shadowed by a shorter overlapping alias.
func DetectServiceType(text string, aliases map[string]string) string {
	msg := normalize(text)
	best, bestLen := "", 0
	for alias, name := range aliases {
		if strings.Contains(msg, alias) && len(alias) > bestLen {
			best, bestLen = name, len(alias)
		}
	}
	return best
}

// ShouldStartNewConversation reports whether a message opens a fresh
// work item rather than continuing the current thread. Logging a new
// interaction always starts fresh.
func ShouldStartNewConversation(text string) bool {
	return isLogCommand(normalize(text))
}
