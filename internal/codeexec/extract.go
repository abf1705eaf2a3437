package codeexec

import (
	"regexp"
	"strings"
)

// LangUnknown is the sentinel language tag for text with no fenced code.
const LangUnknown = "unknown"

var codeBlockPattern = regexp.MustCompile("(?s)```(\\w*)\\n(.*?)\\n```")

// Block is one fenced span of source text with its language tag. An empty
// tag means the fence carried no language and the language must be inferred.
type Block struct {
	Lang string
	Code string
}

// Extract pulls fenced code blocks out of message text. When the text
// contains no fences at all it returns a single block tagged LangUnknown
// carrying the whole text, so callers can tell "no code" apart from "empty
// code".
func Extract(text string) []Block {
	matches := codeBlockPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return []Block{{Lang: LangUnknown, Code: text}}
	}
	blocks := make([]Block, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, Block{Lang: strings.ToLower(m[1]), Code: m[2]})
	}
	return blocks
}

// InferLang guesses the language of an untagged block: sources that look
// like commands run as shell, everything else as python.
func InferLang(code string) string {
	if strings.HasPrefix(code, "python ") || strings.HasPrefix(code, "pip") {
		return "sh"
	}
	return "python"
}
