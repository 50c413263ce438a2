package services

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/BradenHooton/frontdesk/pkg/dto"
	pkglogger "github.com/BradenHooton/frontdesk/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// EmailService sends the booking emails.
type EmailService interface {
	SendAppointmentConfirmation(ctx context.Context, a *dto.Appointment) error
	SendAppointmentReminder(ctx context.Context, a *dto.Appointment) error
}

// SESClient is the part of the SES API the mailer uses.
type SESClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// AWSSESEmailService sends booking emails through AWS SES.
type AWSSESEmailService struct {
	client       SESClient
	fromAddress  string
	businessName string
	logger       *slog.Logger
}

func NewAWSSESEmailService(ctx context.Context, region, fromAddress, businessName string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewSESEmailServiceWithClient(ses.NewFromConfig(cfg), fromAddress, businessName, logger), nil
}

func NewSESEmailServiceWithClient(client SESClient, fromAddress, businessName string, logger *slog.Logger) *AWSSESEmailService {
	return &AWSSESEmailService{
		client:       client,
		fromAddress:  fromAddress,
		businessName: businessName,
		logger:       logger,
	}
}

func (s *AWSSESEmailService) SendAppointmentConfirmation(ctx context.Context, a *dto.Appointment) error {
	subject := fmt.Sprintf("Confirmación de tu cita - %s", s.businessName)
	intro := "Tu cita ha sido registrada correctamente. Estos son los detalles:"
	outro := "Recibirás un recordatorio 24 horas antes de la cita."
	return s.send(ctx, a, "appointment_confirmation", subject, intro, outro)
}

func (s *AWSSESEmailService) SendAppointmentReminder(ctx context.Context, a *dto.Appointment) error {
	subject := fmt.Sprintf("Recordatorio: tu cita de mañana - %s", s.businessName)
	intro := "Te recordamos que tienes una cita programada:"
	outro := "Si necesitas cambiarla, responde a este correo."
	return s.send(ctx, a, "appointment_reminder", subject, intro, outro)
}

func (s *AWSSESEmailService) send(ctx context.Context, a *dto.Appointment, kind, subject, intro, outro string) error {
	details := [][2]string{
		{"Servicio", a.Service},
		{"Fecha", FormatSpanishDate(a.Date)},
		{"Hora", a.Time},
	}

	var text, rows strings.Builder
	fmt.Fprintf(&text, "Hola %s,\n\n%s\n\n", a.Name, intro)
	for _, d := range details {
		fmt.Fprintf(&text, "%s: %s\n", d[0], d[1])
		fmt.Fprintf(&rows, "<li><strong>%s:</strong> %s</li>", d[0], html.EscapeString(d[1]))
	}
	fmt.Fprintf(&text, "\n%s\n\n%s\n", outro, s.businessName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <p>Hola %s,</p>
    <p>%s</p>
    <ul>%s</ul>
    <p>%s</p>
    <p style="color: #666; font-size: 12px;">%s</p>
</body>
</html>`, html.EscapeString(a.Name), intro, rows.String(), outro, html.EscapeString(s.businessName))

	input := &ses.SendEmailInput{
		Source:      aws.String(s.fromAddress),
		Destination: &types.Destination{ToAddresses: []string{a.Email}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(htmlBody), Charset: aws.String("UTF-8")},
				Text: &types.Content{Data: aws.String(text.String()), Charset: aws.String("UTF-8")},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send email via SES",
			slog.String("kind", kind),
			slog.String("email", pkglogger.SanitizedEmail(a.Email)),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent",
		slog.String("kind", kind),
		slog.Int64("appointment_id", a.ID),
		slog.String("message_id", aws.ToString(result.MessageId)))
	return nil
}

// LogEmailService stands in when email delivery is disabled.
type LogEmailService struct {
	logger *slog.Logger
}

func NewLogEmailService(logger *slog.Logger) *LogEmailService {
	return &LogEmailService{logger: logger}
}

func (s *LogEmailService) SendAppointmentConfirmation(ctx context.Context, a *dto.Appointment) error {
	s.logger.Info("email disabled, skipping confirmation", slog.Int64("appointment_id", a.ID))
	return nil
}

func (s *LogEmailService) SendAppointmentReminder(ctx context.Context, a *dto.Appointment) error {
	s.logger.Info("email disabled, skipping reminder", slog.Int64("appointment_id", a.ID))
	return nil
}
