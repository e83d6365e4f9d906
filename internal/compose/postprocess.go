package compose

import (
	"regexp"
	"strings"
)

var (
	boldRe    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	headingRe = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	blanksRe  = regexp.MustCompile(`\n{3,}`)
)

// CleanReply strips formatting the chat surface cannot render. Only
// markup is removed; wording is never touched.
func CleanReply(reply string) string {
	reply = boldRe.ReplaceAllString(reply, "$1")
	reply = headingRe.ReplaceAllString(reply, "")
	reply = blanksRe.ReplaceAllString(reply, "\n\n")
	return strings.TrimSpace(reply)
}
