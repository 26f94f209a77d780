package dtos

import "fmt"

// BatchDTO struct mapping the payload of one delivery attempt
type BatchDTO struct {
	ProjectID string     `json:"projectId"`
	BatchID   string     `json:"batchId"`
	SentAt    int64      `json:"sentAt"`
	Events    []EventDTO `json:"events"`
}

// BatchReplyDTO maps the backend response to a bulk post. An empty body means
// every event in the batch was accepted.
type BatchReplyDTO struct {
	Rejected []int `json:"rejected,omitempty"`
}

// HTTPError represents a non-2xx response from the backend, keeping the status
// code available so the caller can decide whether the failure is retryable.
type HTTPError struct {
	Code    int
	Message string
}

// Error implements the error interface
func (h *HTTPError) Error() string {
	return fmt.Sprintf("http error: Status Code: %d - %s", h.Code, h.Message)
}
