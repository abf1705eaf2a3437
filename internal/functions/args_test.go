package functions

import (
	"reflect"
	"testing"
)

func TestFormatJSONString_DropsNewlinesBetweenTokens(t *testing.T) {
	in := "{\n  \"location\": \"Boston, MA\"\n}"
	want := "{  \"location\": \"Boston, MA\"}"

	if got := FormatJSONString(in); got != want {
		t.Errorf("FormatJSONString(%q) = %q, want %q", in, got, want)
	}
}

func TestFormatJSONString_EscapesInsideLiterals(t *testing.T) {
	in := "{\"args\": \"a\na\ta\"}"
	want := "{\"args\": \"a\\na\\ta\"}"

	if got := FormatJSONString(in); got != want {
		t.Errorf("FormatJSONString(%q) = %q, want %q", in, got, want)
	}
}

func TestFormatJSONString_IdempotentOnValidJSON(t *testing.T) {
	in := `{"tool": "python", "n": 5}`

	once := FormatJSONString(in)
	twice := FormatJSONString(once)
	if once != in {
		t.Errorf("valid single-line JSON should pass through unchanged, got %q", once)
	}
	if twice != once {
		t.Errorf("FormatJSONString is not idempotent: %q != %q", twice, once)
	}
}

func TestParseArguments_RoundTrip(t *testing.T) {
	in := "{\n\"tool\": \"python\",\n\"query\": \"print(1)\nprint(2)\"\n}"

	got := ParseArguments(in)
	want := map[string]any{
		"tool":  "python",
		"query": "print(1)\nprint(2)",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseArguments(%q) = %#v, want %#v", in, got, want)
	}
}

func TestParseArguments_MalformedDegradesToEmpty(t *testing.T) {
	cases := []string{
		"",
		"not json at all",
		`{"unterminated": `,
		"null",
		"[1, 2, 3]",
	}
	for _, in := range cases {
		got := ParseArguments(in)
		if got == nil || len(got) != 0 {
			t.Errorf("ParseArguments(%q) = %#v, want empty map", in, got)
		}
	}
}

func TestParseArguments_EscapedQuoteStaysInsideLiteral(t *testing.T) {
	in := "{\"quote\": \"she said \\\"hi\nthere\\\"\"}"

	got := ParseArguments(in)
	if got["quote"] != "she said \"hi\nthere\"" {
		t.Errorf("embedded newline after escaped quote mishandled: %#v", got)
	}
}
