package dto

// ErrorResponse is the standard error envelope
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse wraps list payloads
type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}
