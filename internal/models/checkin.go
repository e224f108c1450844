package models

import "time"

// Checkin is an append-only gym attendance record.
type Checkin struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CheckinRecord joins a checkin with its student projection.
type CheckinRecord struct {
	Checkin
	StudentName  string `db:"student_name" json:"-"`
	StudentEmail string `db:"student_email" json:"-"`
}

// Item reshapes the flat record into the nested response projection.
func (r CheckinRecord) Item() CheckinItem {
	return CheckinItem{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Student:   StudentSummary{ID: r.StudentID, Name: r.StudentName, Email: r.StudentEmail},
	}
}

// CheckinPage is the response shape of the checkin history listing.
type CheckinPage struct {
	Offset     int           `json:"offset"`
	TotalPages int           `json:"totalPages"`
	Rows       []CheckinItem `json:"rows"`
}

// CheckinItem is a single row of the checkin history response.
type CheckinItem struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Student   StudentSummary `json:"student"`
}
