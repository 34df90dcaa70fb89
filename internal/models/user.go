package models

import "time"

// User represents a row in the PostgreSQL users table.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"` // bcrypt hash, never serialize
	CreatedAt time.Time `json:"created_at"`
}

// Credentials is the JSON body shared by POST /api/register and POST /api/login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// MessageResponse is the success body of POST /api/register.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginResponse is the success body of POST /api/login.
type LoginResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}
