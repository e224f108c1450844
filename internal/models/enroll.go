package models

import "time"

// Enroll binds a student to a plan for a computed validity period with the
// plan price frozen at creation time. Null dates mean the enrollment was
// revoked; the row is retained for audit.
type Enroll struct {
	ID        string     `db:"id" json:"id"`
	StudentID string     `db:"student_id" json:"student_id"`
	PlanID    string     `db:"plan_id" json:"plan_id"`
	StartDate *time.Time `db:"start_date" json:"start_date"`
	EndDate   *time.Time `db:"end_date" json:"end_date"`
	Price     float64    `db:"price" json:"price"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// ActiveAt reports whether the enrollment covers the given instant.
func (e Enroll) ActiveAt(now time.Time) bool {
	if e.StartDate == nil || e.EndDate == nil {
		return false
	}
	return !now.Before(*e.StartDate) && !now.After(*e.EndDate)
}

// EnrollDetail enriches Enroll with student and plan projections assembled
// read-side from the related rows.
type EnrollDetail struct {
	Enroll
	Student StudentSummary `json:"student"`
	Plan    PlanSummary    `json:"plan"`
}

// EnrollRow is the flat join row scanned from the enrollment listing query.
type EnrollRow struct {
	Enroll
	StudentName  string  `db:"student_name" json:"-"`
	StudentEmail string  `db:"student_email" json:"-"`
	PlanTitle    string  `db:"plan_title" json:"-"`
	PlanDuration int     `db:"plan_duration" json:"-"`
	PlanPrice    float64 `db:"plan_price" json:"-"`
}

// Detail reshapes the flat row into the nested response projection.
func (r EnrollRow) Detail() EnrollDetail {
	return EnrollDetail{
		Enroll:  r.Enroll,
		Student: StudentSummary{ID: r.StudentID, Name: r.StudentName, Email: r.StudentEmail},
		Plan:    PlanSummary{ID: r.PlanID, Title: r.PlanTitle, Duration: r.PlanDuration, Price: r.PlanPrice},
	}
}
