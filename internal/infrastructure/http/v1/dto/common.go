// Package dto defines request/response shapes for API v1.
package dto

// IDResponse returns a created entity ID.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse is a generic success acknowledgement.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// DateFormat is the wire format for calendar days.
const DateFormat = "2006-01-02"
