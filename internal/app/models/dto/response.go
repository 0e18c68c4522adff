package dto

import "time"

// APIResponse is the envelope of every JSON response
type APIResponse struct {
	Success    bool            `json:"success" example:"true"`
	Message    string          `json:"message,omitempty" example:"Item approved"`
	Data       interface{}     `json:"data,omitempty"`
	Warnings   []string        `json:"warnings,omitempty"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
	Error      *ErrorDetail    `json:"error,omitempty"`
	Timestamp  time.Time       `json:"timestamp" example:"2026-03-02T12:01:05Z"`
}

// PaginationInfo represents pagination metadata
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage" example:"1"`
	TotalPages  int   `json:"totalPages" example:"3"`
	PageSize    int   `json:"pageSize" example:"10"`
	TotalItems  int64 `json:"totalItems" example:"27"`
}

// NewSuccessResponse wraps data in a successful envelope
func NewSuccessResponse(data interface{}, message string) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// NewPagedResponse wraps one page of a listing
func NewPagedResponse(data interface{}, pagination PaginationInfo) APIResponse {
	resp := NewSuccessResponse(data, "")
	resp.Pagination = &pagination
	return resp
}

// WithWarnings attaches side effect warnings to a response
func (r APIResponse) WithWarnings(warnings []string) APIResponse {
	if len(warnings) > 0 {
		r.Warnings = warnings
	}
	return r
}
