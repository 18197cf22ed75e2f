package upstream

import (
	"encoding/json"
	"net/http"
	"strings"
)

// PayloadKind tells how much of the response body could be interpreted
type PayloadKind int

const (
	// PayloadNone means no response body was received
	PayloadNone PayloadKind = iota
	// PayloadJSON means the body parsed as JSON
	PayloadJSON
	// PayloadText means the body was kept as raw text because it was not JSON
	PayloadText
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadJSON:
		return "json"
	case PayloadText:
		return "text"
	default:
		return "none"
	}
}

// Payload is a best-effort parse of a response body
type Payload struct {
	Kind  PayloadKind
	Value interface{}
}

// parsePayload never fails: text that is not JSON (or is JSON null) stays raw
func parsePayload(text string) Payload {
	if strings.TrimSpace(text) == "" {
		return Payload{Kind: PayloadNone}
	}
	var v interface{}
	if err := json.Unmarshal([]byte(text), &v); err != nil || v == nil {
		return Payload{Kind: PayloadText}
	}
	return Payload{Kind: PayloadJSON, Value: v}
}

// Outcome is the result of one upstream attempt.
// StatusCode is zero when no HTTP response was received.
type Outcome struct {
	URL        string
	StatusCode int
	Text       string
	Body       Payload
	Err        error
}

// Responded reports whether an HTTP response was received at all
func (o Outcome) Responded() bool {
	return o.StatusCode != 0
}

// OK reports a 2xx response
func (o Outcome) OK() bool {
	return o.StatusCode >= 200 && o.StatusCode < 300
}

// GatewayFailure is true for network failures, timeouts and 502/503/504
func (o Outcome) GatewayFailure() bool {
	if !o.Responded() {
		return true
	}
	switch o.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// ErrorBody returns the parsed JSON body, else the raw text
func (o Outcome) ErrorBody() interface{} {
	if o.Body.Kind == PayloadJSON {
		return o.Body.Value
	}
	return o.Text
}

// JSONObject returns the parsed body when it is a JSON object
func (o Outcome) JSONObject() (map[string]interface{}, bool) {
	if o.Body.Kind != PayloadJSON {
		return nil, false
	}
	obj, ok := o.Body.Value.(map[string]interface{})
	return obj, ok
}

func failedOutcome(url string, err error) Outcome {
	return Outcome{
		URL:  url,
		Text: err.Error(),
		Body: Payload{Kind: PayloadNone},
		Err:  err,
	}
}
