package llm

import (
	"regexp"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	// "**NGL:** 580.5", "`FGL=12`"
	reEmphasis = regexp.MustCompile("\\*{1,3}|_{2,3}|`+")
)

// NormalizeReply strips markdown emphasis and collapses noisy whitespace in a model
// reply so level annotations read as plain "NGL: 580.5". Line breaks are kept; runs of
// blank lines collapse to one.
func NormalizeReply(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reEmphasis.ReplaceAllString(s, "")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")

	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
