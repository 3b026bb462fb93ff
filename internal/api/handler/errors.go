package handler

// ErrorBody is the error envelope rendered for every failed request.
type ErrorBody struct {
	Message string `json:"message"`
}
