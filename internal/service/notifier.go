package service

import (
	"context"
	"fmt"
	"html"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"alugaai-backend/internal/domain"
	"alugaai-backend/internal/logger"
	"alugaai-backend/internal/repository"
)

// Notifier tells the people involved in a rental that something happened.
// Delivery failures are logged by the implementation, never returned.
type Notifier interface {
	RentalRequested(ctx context.Context, rental domain.Rental)
	RentalStatusChanged(ctx context.Context, rental domain.Rental)
}

// Mailer sends a single rendered message.
type Mailer interface {
	Send(ctx context.Context, toEmail, toName, subject, plainText, htmlContent string) error
}

type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type sendGridMailer struct {
	client    mailSender
	fromEmail string
	fromName  string
}

func NewSendGridMailer(apiKey, fromEmail, fromName string) Mailer {
	return &sendGridMailer{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (m *sendGridMailer) Send(ctx context.Context, toEmail, toName, subject, plainText, htmlContent string) error {
	logger.ExternalServiceCall("sendgrid", "Send", "to", toEmail, "subject", subject)

	from := mail.NewEmail(m.fromName, m.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)

	response, err := m.client.SendWithContext(ctx, message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "Send", err)
	return err
}

type logMailer struct{}

// NewLogMailer returns a Mailer that only logs, used when no API key is configured.
func NewLogMailer() Mailer { return logMailer{} }

func (logMailer) Send(ctx context.Context, toEmail, toName, subject, plainText, htmlContent string) error {
	logger.InfoContext(ctx, "E-mail not sent, no provider configured", "to", toEmail, "subject", subject)
	return nil
}

type emailNotifier struct {
	mailer   Mailer
	userRepo repository.UserRepository
}

// NewEmailNotifier resolves recipients through userRepo. Users unknown to the
// local store (e.g. Firebase accounts) are skipped.
func NewEmailNotifier(mailer Mailer, userRepo repository.UserRepository) Notifier {
	return &emailNotifier{mailer: mailer, userRepo: userRepo}
}

func (n *emailNotifier) RentalRequested(ctx context.Context, r domain.Rental) {
	subject := fmt.Sprintf("Novo pedido de aluguel: %s", r.ItemTitle)
	body := fmt.Sprintf("%s quer alugar \"%s\" por %d dia(s), a partir de %s. Total: R$ %s.",
		r.RequesterName, r.ItemTitle, r.TotalDays, r.StartDate.Format("02/01/2006"), r.TotalPrice.StringFixed(2))
	n.send(ctx, r.OwnerID, subject, body)
}

func (n *emailNotifier) RentalStatusChanged(ctx context.Context, r domain.Rental) {
	var recipient, subject, body string
	switch r.Status {
	case domain.RentalStatusApproved:
		recipient = r.RequesterID
		subject = fmt.Sprintf("Aluguel aprovado: %s", r.ItemTitle)
		body = fmt.Sprintf("%s aprovou seu pedido para \"%s\".", r.OwnerName, r.ItemTitle)
	case domain.RentalStatusRejected:
		recipient = r.RequesterID
		subject = fmt.Sprintf("Aluguel recusado: %s", r.ItemTitle)
		body = fmt.Sprintf("%s recusou seu pedido para \"%s\".", r.OwnerName, r.ItemTitle)
	case domain.RentalStatusCancelled:
		recipient = r.OwnerID
		subject = fmt.Sprintf("Pedido cancelado: %s", r.ItemTitle)
		body = fmt.Sprintf("%s cancelou o pedido para \"%s\".", r.RequesterName, r.ItemTitle)
	default:
		return
	}
	n.send(ctx, recipient, subject, body)
}

func (n *emailNotifier) send(ctx context.Context, userID, subject, body string) {
	user, err := n.userRepo.GetByID(ctx, userID)
	if err != nil {
		logger.Debug("Skipping notification, recipient not found", "userID", userID, "error", err)
		return
	}
	content := "<p>" + html.EscapeString(body) + "</p>"
	if err := n.mailer.Send(ctx, user.Email, user.Name, subject, body, content); err != nil {
		logger.Warn("Failed to send notification", "userID", userID, "subject", subject, "error", err)
	}
}
