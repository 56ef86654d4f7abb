package notify

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/require"
)

type sent struct {
	to, subject, body string
}

type recordingMailer struct {
	mu    sync.Mutex
	sent  []sent
	err   error
	block chan struct{}
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sent{to, subject, body})
	return m.err
}

func (m *recordingMailer) all() []sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sent(nil), m.sent...)
}

var snap = Snapshot{
	AppointmentID:  "appt-1",
	Date:           "2099-01-10",
	TimeSlot:       "09:00-09:30",
	VisitType:      "clinic",
	PatientName:    "Pat",
	PatientEmail:   "pat@example.com",
	DoctorName:     "House",
	DoctorEmail:    "house@example.com",
	DoctorLocation: "Princeton",
}

func drain(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))
}

func TestCreatedNotifiesPatientAndDoctor(t *testing.T) {
	m := &recordingMailer{}
	d := NewDispatcher(m, time.Second)

	d.Notify(EventCreated, snap)
	drain(t, d)

	got := m.all()
	require.Len(t, got, 2)
	recipients := []string{got[0].to, got[1].to}
	require.ElementsMatch(t, []string{"pat@example.com", "house@example.com"}, recipients)
	for _, s := range got {
		require.Contains(t, s.body, "Symptoms: Not specified")
	}
}

func TestStatusEventsNotifyPatient(t *testing.T) {
	for event, subject := range map[Event]string{
		EventConfirmed: "Appointment Confirmed",
		EventCancelled: "Appointment Cancelled",
		EventCompleted: "Appointment Completed",
	} {
		t.Run(string(event), func(t *testing.T) {
			m := &recordingMailer{}
			d := NewDispatcher(m, time.Second)

			d.Notify(event, snap)
			drain(t, d)

			got := m.all()
			require.Len(t, got, 1)
			require.Equal(t, "pat@example.com", got[0].to)
			require.Equal(t, subject, got[0].subject)
			require.Contains(t, got[0].body, "09:00-09:30")
		})
	}
}

func TestUnknownEventAndMissingRecipientAreSkipped(t *testing.T) {
	m := &recordingMailer{}
	d := NewDispatcher(m, time.Second)

	d.Notify(Event("pending"), snap)
	noEmail := snap
	noEmail.PatientEmail = ""
	d.Notify(EventConfirmed, noEmail)
	drain(t, d)

	require.Empty(t, m.all())
}

func TestNotifyDoesNotWaitForSlowMailer(t *testing.T) {
	m := &recordingMailer{block: make(chan struct{})}
	d := NewDispatcher(m, time.Second)

	returned := make(chan struct{})
	go func() {
		d.Notify(EventConfirmed, snap)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Notify blocked on the mailer")
	}

	close(m.block)
	drain(t, d)
	require.Len(t, m.all(), 1)
}

func TestMailerFailureIsSwallowed(t *testing.T) {
	m := &recordingMailer{err: errors.New("smtp down")}
	d := NewDispatcher(m, time.Second)

	d.Notify(EventCancelled, snap)
	d.SendPasswordReset("pat@example.com", "Pat", "tok")
	drain(t, d)

	require.Len(t, m.all(), 2)
}

func TestCloseHonorsContext(t *testing.T) {
	m := &recordingMailer{block: make(chan struct{})}
	d := NewDispatcher(m, time.Minute)
	d.Notify(EventConfirmed, snap)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)

	close(m.block)
	drain(t, d)
}

func TestLogMailerKeepsBodyOutOfInfoLog(t *testing.T) {
	var buf bytes.Buffer
	out, lvl := log.Output(), log.Level()
	log.SetOutput(&buf)
	t.Cleanup(func() {
		log.SetOutput(out)
		log.SetLevel(lvl)
	})

	log.SetLevel(log.INFO)
	require.NoError(t, LogMailer{}.Send(context.Background(), "pat@example.com", "Reset", "token=abc123"))
	require.Contains(t, buf.String(), "pat@example.com")
	require.NotContains(t, buf.String(), "abc123")

	buf.Reset()
	log.SetLevel(log.DEBUG)
	require.NoError(t, LogMailer{}.Send(context.Background(), "pat@example.com", "Reset", "token=abc123"))
	require.Contains(t, buf.String(), "abc123")
}
