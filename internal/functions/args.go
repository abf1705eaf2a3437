package functions

import (
	"encoding/json"
	"strings"
)

// FormatJSONString repairs a JSON-like argument string as produced by a
// language model. Literal newlines and tabs inside string literals become
// their two-character escape sequences; newlines between tokens are
// formatting whitespace and are dropped. A quote only toggles the
// inside-a-literal state when the preceding character is not a backslash.
func FormatJSONString(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	insideQuotes := false
	last := byte(' ')
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if last != '\\' && ch == '"' {
			insideQuotes = !insideQuotes
		}
		last = ch
		switch {
		case !insideQuotes && ch == '\n':
			// whitespace between tokens, drop it
		case insideQuotes && ch == '\n':
			b.WriteString(`\n`)
		case insideQuotes && ch == '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// ParseArguments decodes a loosely formatted argument string into a map.
// Malformed input degrades to an empty map; callers cannot tell "no
// arguments supplied" apart from "arguments unparseable".
func ParseArguments(raw string) map[string]any {
	var args map[string]any
	if err := json.Unmarshal([]byte(FormatJSONString(raw)), &args); err != nil || args == nil {
		return map[string]any{}
	}
	return args
}
