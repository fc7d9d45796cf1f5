package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/frontandrew/rental/internal/pkg/config"
	"github.com/frontandrew/rental/internal/pkg/logger"
)

//go:embed templates/*.html
var templatesFS embed.FS

// BookingMail - данные для писем о брони
type BookingMail struct {
	To           string
	DriverName   string
	CompanyName  string
	VehicleModel string
	VehiclePlate string
	PickUp       string
	DropOff      string
	Amount       string
	CancelURL    string
	Refunded     bool
}

// Sender отправляет письма клиентам. Отправка не должна блокировать
// бизнес-операцию: ошибки доставки логируются, но не возвращаются.
type Sender interface {
	// SendBookingConfirmation отправляет подтверждение брони
	// со ссылкой отмены
	SendBookingConfirmation(ctx context.Context, mail BookingMail)

	// SendBookingCancelled отправляет уведомление об отмене брони
	SendBookingCancelled(ctx context.Context, mail BookingMail)
}

type smtpSender struct {
	cfg       config.MailerConfig
	log       logger.Logger
	templates *template.Template
}

// NewSMTPSender создает SMTP отправитель с embedded шаблонами
func NewSMTPSender(cfg config.MailerConfig, log logger.Logger) (Sender, error) {
	templates, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}

	return &smtpSender{
		cfg:       cfg,
		log:       log,
		templates: templates,
	}, nil
}

// SendBookingConfirmation отправляет подтверждение брони
func (s *smtpSender) SendBookingConfirmation(ctx context.Context, mail BookingMail) {
	s.sendAsync("booking_confirmation.html", "Booking confirmation", mail)
}

// SendBookingCancelled отправляет уведомление об отмене
func (s *smtpSender) SendBookingCancelled(ctx context.Context, mail BookingMail) {
	s.sendAsync("booking_cancelled.html", "Booking cancelled", mail)
}

// sendAsync рендерит и отправляет письмо в отдельной горутине
func (s *smtpSender) sendAsync(templateName, subject string, mail BookingMail) {
	go func() {
		if err := s.send(templateName, subject, mail); err != nil {
			s.log.Error("Failed to send email", map[string]interface{}{
				"template": templateName,
				"to":       mail.To,
				"error":    err.Error(),
			})
			return
		}

		s.log.Info("Email sent", map[string]interface{}{
			"template": templateName,
			"to":       mail.To,
		})
	}()
}

func (s *smtpSender) send(templateName, subject string, mail BookingMail) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, mail); err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	msg := bytes.Buffer{}
	fmt.Fprintf(&msg, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", mail.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	return smtp.SendMail(s.cfg.Address(), auth, s.cfg.From, []string{mail.To}, msg.Bytes())
}
