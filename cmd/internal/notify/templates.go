package notify

import "fmt"

type message struct {
	to      string
	subject string
	body    string
}

const signature = "\n\nBest regards,\nMedical Team"

func orUnspecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}

func render(event Event, a Snapshot) []message {
	switch event {
	case EventCreated:
		return []message{
			{
				to:      a.PatientEmail,
				subject: "New Appointment Request",
				body: fmt.Sprintf("Dear %s,\n\nYour appointment request with Dr. %s has been received for %s at %s.\n\n"+
					"Type: %s\nLocation: %s\nSymptoms: %s\n\n"+
					"Your appointment is currently pending confirmation. We will notify you once it is confirmed."+signature,
					a.PatientName, a.DoctorName, a.Date, a.TimeSlot, a.VisitType, a.DoctorLocation, orUnspecified(a.Symptoms)),
			},
			{
				to:      a.DoctorEmail,
				subject: "New Appointment Request",
				body: fmt.Sprintf("Dear Dr. %s,\n\nA new appointment has been requested:\n\n"+
					"Patient: %s\nDate: %s\nTime: %s\nType: %s\nSymptoms: %s\n\n"+
					"Please review and confirm the appointment through the system."+signature,
					a.DoctorName, a.PatientName, a.Date, a.TimeSlot, a.VisitType, orUnspecified(a.Symptoms)),
			},
		}
	case EventConfirmed:
		return []message{{
			to:      a.PatientEmail,
			subject: "Appointment Confirmed",
			body: fmt.Sprintf("Dear %s,\n\nYour appointment with Dr. %s has been confirmed for %s at %s.\n\n"+
				"Type: %s\nLocation: %s\n\nPlease arrive 10 minutes before your scheduled time."+signature,
				a.PatientName, a.DoctorName, a.Date, a.TimeSlot, a.VisitType, a.DoctorLocation),
		}}
	case EventCancelled:
		return []message{{
			to:      a.PatientEmail,
			subject: "Appointment Cancelled",
			body: fmt.Sprintf("Dear %s,\n\nYour appointment with Dr. %s scheduled for %s at %s has been cancelled.\n\n"+
				"If you would like to reschedule, please book a new appointment through our system."+signature,
				a.PatientName, a.DoctorName, a.Date, a.TimeSlot),
		}}
	case EventCompleted:
		return []message{{
			to:      a.PatientEmail,
			subject: "Appointment Completed",
			body: fmt.Sprintf("Dear %s,\n\nThank you for visiting Dr. %s. Your appointment on %s at %s has been marked as completed.\n\n"+
				"If you need any follow-up appointments, please feel free to book through our system."+signature,
				a.PatientName, a.DoctorName, a.Date, a.TimeSlot),
		}}
	}
	return nil
}

func passwordReset(to, name, token string) message {
	return message{
		to:      to,
		subject: "Password Reset",
		body: fmt.Sprintf("Dear %s,\n\nUse the following token to reset your password. It expires in 10 minutes.\n\n%s\n\n"+
			"If you did not request a password reset, you can ignore this email."+signature, name, token),
	}
}
