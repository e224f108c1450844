package models

import "time"

// Plan is membership reference data. Enrollments snapshot duration and
// price at creation time, so editing a plan never alters existing enrolls.
type Plan struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Duration  int       `db:"duration" json:"duration"`
	Price     float64   `db:"price" json:"price"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// PlanSummary is the projection attached to joined responses.
type PlanSummary struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Duration int     `json:"duration"`
	Price    float64 `json:"price"`
}

// Summary returns the response projection of the plan.
func (p Plan) Summary() PlanSummary {
	return PlanSummary{ID: p.ID, Title: p.Title, Duration: p.Duration, Price: p.Price}
}
