package models

// ErrorResponse is the JSON body returned for API errors.
type ErrorResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}
