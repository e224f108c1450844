package models

import "time"

// HelpOrder is a question submitted by a student, answered once by staff.
type HelpOrder struct {
	ID        string     `db:"id" json:"id"`
	StudentID string     `db:"student_id" json:"student_id"`
	Question  string     `db:"question" json:"question"`
	Answer    *string    `db:"answer" json:"answer"`
	AnswerAt  *time.Time `db:"answer_at" json:"answer_at"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Answered reports whether staff has already replied.
func (h HelpOrder) Answered() bool {
	return h.Answer != nil
}

// HelpOrderDetail joins a help order with its student projection.
type HelpOrderDetail struct {
	HelpOrder
	Student StudentSummary `json:"student"`
}

// HelpOrderRow is the flat join row scanned from help-order queries.
type HelpOrderRow struct {
	HelpOrder
	StudentName  string `db:"student_name" json:"-"`
	StudentEmail string `db:"student_email" json:"-"`
}

// Detail reshapes the flat row into the nested response projection.
func (r HelpOrderRow) Detail() HelpOrderDetail {
	return HelpOrderDetail{
		HelpOrder: r.HelpOrder,
		Student:   StudentSummary{ID: r.StudentID, Name: r.StudentName, Email: r.StudentEmail},
	}
}

// HelpOrderFilter selects help orders for listing.
type HelpOrderFilter struct {
	StudentID      string
	UnansweredOnly bool
	Page           int
	PageSize       int
}
