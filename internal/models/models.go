package models

// SendMessageRequest represents the request payload for sending messages.
// Exactly one of Number or GroupTitle must be set.
type SendMessageRequest struct {
	Number     string `json:"number,omitempty"`
	GroupTitle string `json:"groupTitle,omitempty"`
	Message    string `json:"message"`
}

// SendMessageResponse represents the response after a message is accepted
// for dispatch
type SendMessageResponse struct {
	Status    string `json:"status"`
	To        string `json:"to"`
	Timestamp int64  `json:"timestamp"`
}

// StatusResponse reflects the session state cache
type StatusResponse struct {
	Ready       bool   `json:"ready"`
	GroupCached bool   `json:"groupCached"`
	Info        string `json:"info"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
