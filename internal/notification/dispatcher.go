package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gympoint/gympoint-api/pkg/config"
	"github.com/gympoint/gympoint-api/pkg/jobs"
)

// Dispatcher enqueues notification jobs onto the in-process mail queue.
// Submission is fire-and-forget: the triggering business operation never
// fails because a notification could not be queued or delivered.
type Dispatcher struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewDispatcher wires a mail queue consuming with the provided mailer.
func NewDispatcher(mailer Mailer, cfg config.QueueConfig, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{logger: logger}
	d.queue = jobs.NewQueue("mail", d.handle(mailer), jobs.Config{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return d
}

// Start begins queue consumption.
func (d *Dispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains the workers.
func (d *Dispatcher) Stop() {
	d.queue.Stop()
}

// Depth reports the number of queued jobs, for metrics.
func (d *Dispatcher) Depth() int {
	return d.queue.Depth()
}

// NotifyEnrollment queues the enrollment-confirmation email.
func (d *Dispatcher) NotifyEnrollment(payload EnrollmentMail) {
	d.enqueue(KindEnrollStudentMail, payload)
}

// NotifyHelpOrderAnswered queues the help-order-answered email.
func (d *Dispatcher) NotifyHelpOrderAnswered(payload HelpOrderMail) {
	d.enqueue(KindAnswerHelpOrder, payload)
}

func (d *Dispatcher) enqueue(kind string, payload interface{}) {
	err := d.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Kind:    kind,
		Payload: payload,
	})
	if err != nil {
		// Best-effort side effect: the primary write already committed.
		d.logger.Warn("notification enqueue failed", zap.String("kind", kind), zap.Error(err))
	}
}

func (d *Dispatcher) handle(mailer Mailer) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		switch job.Kind {
		case KindEnrollStudentMail:
			payload, ok := job.Payload.(EnrollmentMail)
			if !ok {
				return fmt.Errorf("unexpected payload %T for %s", job.Payload, job.Kind)
			}
			return mailer.Send(ctx, enrollmentMessage(payload))
		case KindAnswerHelpOrder:
			payload, ok := job.Payload.(HelpOrderMail)
			if !ok {
				return fmt.Errorf("unexpected payload %T for %s", job.Payload, job.Kind)
			}
			return mailer.Send(ctx, helpOrderMessage(payload))
		default:
			return fmt.Errorf("unknown job kind %s", job.Kind)
		}
	}
}

func enrollmentMessage(p EnrollmentMail) Message {
	body := fmt.Sprintf(
		"Hello %s,\n\nYour enrollment in the %s plan is confirmed.\n\nStart: %s\nEnd: %s\nMonthly price: %.2f\n\nSee you at the gym!",
		p.StudentName,
		p.PlanTitle,
		p.StartDate.Format("2006-01-02"),
		p.EndDate.Format("2006-01-02"),
		p.Price,
	)
	return Message{To: p.StudentEmail, Subject: "Enrollment confirmed", Body: body}
}

func helpOrderMessage(p HelpOrderMail) Message {
	body := fmt.Sprintf(
		"Hello %s,\n\nYour question was answered.\n\nQuestion: %s\n\nAnswer: %s\n\nAnswered at: %s",
		p.StudentName,
		p.Question,
		p.Answer,
		p.AnswerAt.Format("2006-01-02T15:04:05-07:00"),
	)
	return Message{To: p.StudentEmail, Subject: "Your question was answered", Body: body}
}
