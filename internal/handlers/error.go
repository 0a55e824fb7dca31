package handlers

// ErrorResponse is the standard API error body (message only).
type ErrorResponse struct {
	Message string `json:"message"`
}

// URLResponse carries the public URL of a stored image.
type URLResponse struct {
	URL string `json:"url"`
}
