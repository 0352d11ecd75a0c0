package chat

import "regexp"

// Generated replies are relayed as plain text; half-closed Markdown from
// the model makes Telegram reject the whole send, so the risky
// constructs are stripped before relay.
var (
	boldRe      = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe    = regexp.MustCompile(`\*([^*]+)\*`)
	codeBlockRe = regexp.MustCompile("```[^`]*```")
	inlineRe    = regexp.MustCompile("`([^`]+)`")
	linkRe      = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
)

// CleanMarkdown strips formatting likely to break Telegram parsing.
// Bold and italic markers are dropped, code blocks collapse to a
// placeholder, inline code becomes quoted text, links keep their label.
func CleanMarkdown(s string) string {
	s = boldRe.ReplaceAllString(s, "$1")
	s = italicRe.ReplaceAllString(s, "$1")
	s = codeBlockRe.ReplaceAllString(s, "[code block]")
	s = inlineRe.ReplaceAllString(s, `"$1"`)
	s = linkRe.ReplaceAllString(s, "$1")
	return s
}
