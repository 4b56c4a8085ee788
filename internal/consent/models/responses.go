package models

// LogsResponse is the consent log view with user ids namespaced.
type LogsResponse struct {
	Records []Record `json:"records"`
}

type RevokeResponse struct {
	UserID  string `json:"user_id"`
	Revoked bool   `json:"revoked"`
	Message string `json:"message"`
}
