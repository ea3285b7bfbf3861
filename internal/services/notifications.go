package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/harentsoaR/physiocare-api/internal/models"
)

// Notifier tells a patient about a newly booked appointment. Implementations
// must not block the caller.
type Notifier interface {
	AppointmentBooked(ctx context.Context, patient models.Patient, physio models.Physio, apt models.Appointment)
}

type SMTPSettings struct {
	Host     string
	Port     int
	User     string
	Password string
}

// NotificationService mails appointment confirmations over SMTP. Without a
// host it only logs what it would have sent.
type NotificationService struct {
	settings SMTPSettings
	send     func(*gomail.Message) error
}

func NewNotificationService(settings SMTPSettings) *NotificationService {
	s := &NotificationService{settings: settings}
	if settings.Host != "" {
		d := gomail.NewDialer(settings.Host, settings.Port, settings.User, settings.Password)
		s.send = func(m *gomail.Message) error { return d.DialAndSend(m) }
	}
	return s
}

func (s *NotificationService) AppointmentBooked(ctx context.Context, patient models.Patient, physio models.Physio, apt models.Appointment) {
	logger := zerolog.Ctx(ctx).With().
		Str("appointment_id", apt.AppointmentID.Hex()).
		Str("patient_id", patient.ID.Hex()).
		Logger()

	if patient.Email == "" {
		logger.Info().Msg("confirmation not sent: patient has no email")
		return
	}
	m := confirmationMessage(s.settings.User, patient, physio, apt)
	if s.send == nil {
		logger.Info().Str("to", patient.Email).Msg("SMTP not configured, confirmation not sent")
		return
	}

	// Mail delivery must not hold up the response.
	go func() {
		if err := s.send(m); err != nil {
			logger.Error().Err(err).Str("to", patient.Email).Msg("failed to send appointment confirmation")
			return
		}
		logger.Info().Str("to", patient.Email).Msg("appointment confirmation sent")
	}()
}

func confirmationMessage(from string, patient models.Patient, physio models.Physio, apt models.Appointment) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", patient.Email)
	m.SetHeader("Subject", "PhysioCare appointment confirmed")
	m.SetBody("text/html", fmt.Sprintf(
		"<p>Hello %s,</p><p>Your appointment with %s on %s is confirmed.</p><p>Treatment: %s</p>",
		patient.FullName(),
		physio.FullName(),
		apt.Date.Format("Jan 2, 2006 at 15:04"),
		apt.Treatment,
	))
	return m
}

type noopNotifier struct{}

func (noopNotifier) AppointmentBooked(context.Context, models.Patient, models.Physio, models.Appointment) {
}
