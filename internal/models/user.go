package models

// User represents a row in the PostgreSQL users table.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"-"` // bcrypt hash, never serialize
}

// SignupForm holds the fields posted to /signup.
type SignupForm struct {
	Username string
	Email    string
	Password string
}

// LoginForm holds the fields posted to /login.
type LoginForm struct {
	Username string
	Password string
}
