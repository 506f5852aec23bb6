package advisor

import (
	"regexp"
	"strings"
)

var (
	boldRe      = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe    = regexp.MustCompile(`\*([^*]+)\*`)
	headingRe   = regexp.MustCompile(`(?m)^#+\s*`)
	linkRe      = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	codeBlockRe = regexp.MustCompile("(?s)```[a-zA-Z]*\n?(.*?)```")
	inlineRe    = regexp.MustCompile("`([^`]+)`")
	bulletRe    = regexp.MustCompile(`(?m)^\s*[-*]\s+`)
	newlinesRe  = regexp.MustCompile(`\n{3,}`)
)

// stripMarkdown removes the formatting the model emits despite being told not
// to. Bullets become "•" so lists stay readable as plain text.
func stripMarkdown(s string) string {
	s = codeBlockRe.ReplaceAllString(s, "$1")
	s = boldRe.ReplaceAllString(s, "$1")
	s = italicRe.ReplaceAllString(s, "$1")
	s = headingRe.ReplaceAllString(s, "")
	s = linkRe.ReplaceAllString(s, "$1")
	s = inlineRe.ReplaceAllString(s, "$1")
	s = bulletRe.ReplaceAllString(s, "• ")
	s = newlinesRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
