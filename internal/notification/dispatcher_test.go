package notification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gympoint/gympoint-api/pkg/config"
)

type mailerStub struct {
	sent chan Message
}

func (m *mailerStub) Send(ctx context.Context, msg Message) error {
	m.sent <- msg
	return nil
}

func TestDispatcherDeliversEnrollmentMail(t *testing.T) {
	mailer := &mailerStub{sent: make(chan Message, 1)}
	dispatcher := NewDispatcher(mailer, config.QueueConfig{Workers: 1, BufferSize: 4}, nil)
	dispatcher.Start(context.Background())
	defer dispatcher.Stop()

	dispatcher.NotifyEnrollment(EnrollmentMail{
		StudentName:  "Ana",
		StudentEmail: "ana@example.com",
		PlanTitle:    "Gold",
		StartDate:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, 4, 15, 23, 59, 59, 0, time.UTC),
		Price:        109,
	})

	select {
	case msg := <-mailer.sent:
		assert.Equal(t, "ana@example.com", msg.To)
		assert.Equal(t, "Enrollment confirmed", msg.Subject)
		assert.Contains(t, msg.Body, "Gold")
		assert.Contains(t, msg.Body, "2024-01-15")
		assert.Contains(t, msg.Body, "109.00")
	case <-time.After(time.Second):
		t.Fatal("enrollment mail not delivered")
	}
}

func TestDispatcherDeliversHelpOrderMail(t *testing.T) {
	mailer := &mailerStub{sent: make(chan Message, 1)}
	dispatcher := NewDispatcher(mailer, config.QueueConfig{Workers: 1, BufferSize: 4}, nil)
	dispatcher.Start(context.Background())
	defer dispatcher.Stop()

	dispatcher.NotifyHelpOrderAnswered(HelpOrderMail{
		StudentName:  "Ana",
		StudentEmail: "ana@example.com",
		Question:     "Leg day tips?",
		Answer:       "Squats.",
		AnswerAt:     time.Now(),
	})

	select {
	case msg := <-mailer.sent:
		assert.Equal(t, "ana@example.com", msg.To)
		assert.Contains(t, msg.Body, "Leg day tips?")
		assert.Contains(t, msg.Body, "Squats.")
	case <-time.After(time.Second):
		t.Fatal("help order mail not delivered")
	}
}

func TestDispatcherEnqueueBeforeStartDoesNotPanic(t *testing.T) {
	mailer := &mailerStub{sent: make(chan Message, 1)}
	dispatcher := NewDispatcher(mailer, config.QueueConfig{}, nil)

	// Queue not started: enqueue fails, the notify call swallows it.
	require.NotPanics(t, func() {
		dispatcher.NotifyEnrollment(EnrollmentMail{StudentEmail: "ana@example.com"})
	})
}
