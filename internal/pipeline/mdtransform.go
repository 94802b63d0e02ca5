package pipeline

import "regexp"

var (
	lineBreaks     = regexp.MustCompile(`\r\n?`)
	blankLineRuns  = regexp.MustCompile(`\n{3,}`)
	trailingSpaces = regexp.MustCompile(`[ \t]+\n`)
)

// Preprocess normalizes text pasted from editors and extracted from
// uploads before it reaches goldmark: CRLF and CR become LF, trailing
// blanks are dropped, and runs of blank lines collapse to one.
//
// Trailing blanks matter because two spaces before a newline would
// otherwise be read as an explicit line break on top of hard wraps.
func Preprocess(content string) string {
	content = lineBreaks.ReplaceAllString(content, "\n")
	content = trailingSpaces.ReplaceAllString(content, "\n")
	return blankLineRuns.ReplaceAllString(content, "\n\n")
}
