package models

// ErrorResponse is the body of every failed HTTP request. Fields is only
// set for input validation failures and maps a JSON field name to its
// message.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// VerifyTokenResponse carries the user a valid token belongs to.
type VerifyTokenResponse struct {
	User User `json:"user"`
}
