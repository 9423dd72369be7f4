package api

// TaskTextRequest is the HTTP request body for creating a task or
// replacing its text.
type TaskTextRequest struct {
	Text string `json:"text"`
}

// HealthResponse is the HTTP response for health check.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}
