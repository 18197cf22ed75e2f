package models

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// UpstreamErrorResponse is returned when the upstream service (and any fallback) failed
type UpstreamErrorResponse struct {
	Error  string      `json:"error"`
	Tried  []string    `json:"tried"`
	Status int         `json:"status"`
	Body   interface{} `json:"body"`
}

// Error messages surfaced to clients
const (
	MsgInvalidQuestion = "Invalid request: 'question' is required"
	MsgNotConfigured   = "Server not configured. Set QA_API_URL and QA_API_BEARER environment variables."
	MsgUpstreamError   = "Upstream error"
	MsgUnexpectedError = "Unexpected server error"
)
