// Package types holds the JSON envelopes shared by every API response.
package types

// SuccessEnvelope wraps controller payloads. Success is always true here;
// clients branch on it without inspecting status codes.
type SuccessEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// APIError is the public error shape. Details is only populated for codes
// that allow echoing request specifics back to the caller.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps APIError for failed requests.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
