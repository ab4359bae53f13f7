package model

// WebSocket message types
const (
	WSMessageTypeStatus   = "status"
	WSMessageTypeComplete = "complete"
	WSMessageTypeError    = "error"
	WSMessageTypePing     = "ping"
	WSMessageTypePong     = "pong"
)

// WSMessage represents a generic WebSocket message
type WSMessage struct {
	Type string `json:"type"`
}

// WSStatusMessage is sent on every lifecycle transition
type WSStatusMessage struct {
	Type   string    `json:"type"`
	JobID  string    `json:"job_id"`
	Status JobStatus `json:"status"`
}

// WSCompleteMessage represents job completion
type WSCompleteMessage struct {
	Type      string `json:"type"`
	JobID     string `json:"job_id"`
	OutputURL string `json:"output_url"`
}

// WSErrorMessage represents a failed job
type WSErrorMessage struct {
	Type  string  `json:"type"`
	JobID string  `json:"job_id"`
	Error WSError `json:"error"`
}

// WSError represents error details
type WSError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
