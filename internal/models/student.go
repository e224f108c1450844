package models

import "time"

// Student represents a gym member. Identity is immutable once created and
// no two students may share an email.
type Student struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Age       int       `db:"age" json:"age"`
	Weight    float64   `db:"weight" json:"weight"`
	Height    float64   `db:"height" json:"height"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StudentSummary is the projection attached to joined responses.
type StudentSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Summary returns the response projection of the student.
func (s Student) Summary() StudentSummary {
	return StudentSummary{ID: s.ID, Name: s.Name, Email: s.Email}
}

// StudentFilter encapsulates search parameters for listing students.
type StudentFilter struct {
	Search   string
	Page     int
	PageSize int
}
