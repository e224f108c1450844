package notification

import "time"

// Job kinds understood by the mail queue.
const (
	KindEnrollStudentMail = "EnrollStudentMail"
	KindAnswerHelpOrder   = "AnswerHelpOrder"
)

// EnrollmentMail carries the joined enrollment record for the
// confirmation email.
type EnrollmentMail struct {
	StudentName  string    `json:"student_name"`
	StudentEmail string    `json:"student_email"`
	PlanTitle    string    `json:"plan_title"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Price        float64   `json:"price"`
}

// HelpOrderMail carries the answered help order plus student contact info.
type HelpOrderMail struct {
	StudentName  string    `json:"student_name"`
	StudentEmail string    `json:"student_email"`
	Question     string    `json:"question"`
	Answer       string    `json:"answer"`
	AnswerAt     time.Time `json:"answer_at"`
}
