package models

// Session is the record cached under a session id after login.
type Session struct {
	Username      string `json:"username"`
	Authenticated bool   `json:"authenticated"`
}
