package api

// ErrorResponse is the body of every failed API call.
// swagger:model api.ErrorResponse
type ErrorResponse struct {
	Message string `json:"message" example:"expense not found"`
}

// swagger:model api.ValidationErrorResponse
type ValidationErrorResponse struct {
	Message string            `json:"message" example:"The given data was invalid."`
	Errors  map[string]string `json:"errors"`
}
