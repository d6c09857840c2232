package handlers

const (
	ErrInvalidRequestBody  = "Invalid request body"
	ErrInvalidCredentials  = "Invalid credentials"
	ErrInvalidToken        = "Invalid token"
	ErrInternalServerError = "Internal server error"
	ErrNotFound            = "Not found"
	ErrTooManyRequests     = "Too many requests"
)
