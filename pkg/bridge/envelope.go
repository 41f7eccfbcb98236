package bridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// ErrTransport wraps network level failures so callers can tell them apart
// from HTTP level failures.
var ErrTransport = errors.New("bridge: transport failure")

// Envelope is the {status, data} pair produced for every request.
type Envelope struct {
	Status int `json:"status"`
	Data   any `json:"data"`
}

// Outcome classifies how an invocation ended.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeHTTPError      Outcome = "http_error"
	OutcomeTransportError Outcome = "transport_error"
	OutcomeInvalidInput   Outcome = "invalid_input"
	OutcomeSkipped        Outcome = "skipped"
)

// Result is returned by Client.FetchJSON. Envelope is only meaningful when
// Outcome is OutcomeSuccess or OutcomeHTTPError. Raw keeps the unparsed body
// for correlation lookups.
type Result struct {
	Outcome   Outcome
	Envelope  Envelope
	Raw       []byte
	RequestID string
	Err       error
}

// Sent reports whether a request reached the backend and produced a status.
func (r Result) Sent() bool {
	return r.Outcome == OutcomeSuccess || r.Outcome == OutcomeHTTPError
}

// Display returns the payload a view should render for this result.
func (r Result) Display() any {
	switch r.Outcome {
	case OutcomeSuccess, OutcomeHTTPError:
		return r.Envelope
	case OutcomeInvalidInput:
		return map[string]any{"error": InvalidJSONMessage}
	case OutcomeTransportError:
		out := map[string]any{"error": TransportErrorMessage}
		if r.Err != nil {
			out["detail"] = r.Err.Error()
		}
		return out
	default:
		return nil
	}
}

// TransportErrorMessage is rendered when the backend could not be reached.
const TransportErrorMessage = "Network request failed."

// Pretty serializes payload as indented JSON text. Markup characters are left
// unescaped so raw bodies read the same as they arrived.
func Pretty(payload any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return ""
	}
	return strings.TrimRight(buf.String(), "\n")
}

func outcomeForStatus(status int) Outcome {
	if status >= 200 && status < 300 {
		return OutcomeSuccess
	}
	return OutcomeHTTPError
}
