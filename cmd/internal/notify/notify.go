package notify

import (
	"context"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
)

type Event string

const (
	EventCreated   Event = "created"
	EventConfirmed Event = "confirmed"
	EventCancelled Event = "cancelled"
	EventCompleted Event = "completed"
)

// Mailer delivers one plain-text email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Snapshot is the appointment as it was when the event happened.
type Snapshot struct {
	AppointmentID  string
	Date           string
	TimeSlot       string
	VisitType      string
	Status         string
	Symptoms       string
	PatientName    string
	PatientEmail   string
	DoctorName     string
	DoctorEmail    string
	DoctorLocation string
}

// Dispatcher sends notifications in the background. Nothing it does can fail
// the operation that triggered it.
type Dispatcher struct {
	mailer  Mailer
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(mailer Mailer, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{mailer: mailer, timeout: timeout}
}

func (d *Dispatcher) Notify(event Event, snap Snapshot) {
	msgs := render(event, snap)
	if len(msgs) == 0 {
		log.Warnf("no email template for event %q (appointment %s)", event, snap.AppointmentID)
		return
	}
	for _, m := range msgs {
		d.deliver(string(event), snap.AppointmentID, m)
	}
}

func (d *Dispatcher) SendPasswordReset(to, name, token string) {
	d.deliver("password-reset", to, passwordReset(to, name, token))
}

// Close waits for in-flight deliveries or until ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) deliver(what, ref string, m message) {
	if m.to == "" {
		log.Warnf("skipping %s email for %s: no recipient", what, ref)
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("panic while sending %s email for %s: %v", what, ref, r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.mailer.Send(ctx, m.to, m.subject, m.body); err != nil {
			log.Warnf("failed to send %s email for %s to %s: %v", what, ref, m.to, err)
			return
		}
		log.Debugf("sent %s email for %s to %s", what, ref, m.to)
	}()
}

// LogMailer writes emails to the log instead of sending them.
type LogMailer struct{}

// Bodies may carry reset tokens, so they only appear at DEBUG.
func (LogMailer) Send(_ context.Context, to, subject, body string) error {
	log.Infof("email to=%s subject=%q", to, subject)
	log.Debugf("email body to=%s\n%s", to, body)
	return nil
}
