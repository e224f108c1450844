package models

import "time"

// User is a staff account able to manage plans, enrollments and answers.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// JWTClaims is the token payload stored in the request context.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// LoginRequest carries session creation credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the authenticated user and the issued token.
type LoginResponse struct {
	User  UserSummary `json:"user"`
	Token string      `json:"token"`
}

// UserSummary is the safe projection of a staff account.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Summary returns the response projection of the user.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}
