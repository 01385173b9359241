package services

import (
	"fmt"
	"html"
	"strings"

	"github.com/princeprakhar/game-reviews-backend/internal/config"
	"github.com/princeprakhar/game-reviews-backend/internal/models"
	"gopkg.in/gomail.v2"
)

// Mailer sends a prepared message. gomail.Dialer satisfies it.
type Mailer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailService struct {
	from       string
	recipients []string
	baseURL    string
	mailer     Mailer
}

func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	return NewEmailServiceWithMailer(cfg, dialer)
}

func NewEmailServiceWithMailer(cfg *config.Config, mailer Mailer) *EmailService {
	return &EmailService{
		from:       cfg.FromEmail,
		recipients: cfg.AdminEmails,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		mailer:     mailer,
	}
}

func (s *EmailService) SendEmail(to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	return s.mailer.DialAndSend(m)
}

// NotifyReviewCreated tells the administrators that a review was posted.
func (s *EmailService) NotifyReviewCreated(review *models.Review) error {
	subject := fmt.Sprintf("New review: %s", review.GameTitle)
	link := fmt.Sprintf("%s/game/%s", s.baseURL, review.GameSlug)
	body := fmt.Sprintf(`
		<h2>New review submitted</h2>
		<p><strong>%s</strong> reviewed <strong>%s</strong>.</p>
		<p>Final score: %.1f &middot; Hours played: %.1f</p>
		<p><a href="%s">Open the game page</a></p>
	`, html.EscapeString(review.UserName), html.EscapeString(review.GameTitle),
		review.NotaFinal, review.HorasJogadas, html.EscapeString(link))

	return s.SendEmail(s.recipients, subject, body)
}
