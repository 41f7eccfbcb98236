package bridge

import (
	"encoding/json"
	"strings"
)

// InvalidJSONMessage is surfaced whenever a JSON-bearing field cannot be
// decoded.
const InvalidJSONMessage = "Invalid JSON. Please check formatting."

// ParseResult carries the outcome of SafeParseJSON. Err is empty on success.
type ParseResult struct {
	Value any
	Err   string
}

// OK reports whether parsing succeeded (including the empty input case).
func (p ParseResult) OK() bool {
	return p.Err == ""
}

// SafeParseJSON decodes text without ever failing past this boundary. Blank
// input is treated as absent and yields a nil value with no error.
func SafeParseJSON(text string) ParseResult {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ParseResult{}
	}

	var value any
	if err := json.Unmarshal([]byte(trimmed), &value); err != nil {
		return ParseResult{Err: InvalidJSONMessage}
	}
	return ParseResult{Value: value}
}

// decodeBody mirrors SafeParseJSON for response bodies: valid JSON is decoded,
// anything else is returned verbatim as text.
func decodeBody(raw []byte) any {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return string(raw)
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return string(raw)
	}
	return value
}
