package service

import (
	"context"
	"fmt"
	"strconv"

	"gopkg.in/gomail.v2"

	"driverent-backend/internal/logger"
)

type emailService struct {
	host     string
	port     int
	username string
	password string
	from     string
	send     func(m *gomail.Message) error
}

// NewEmailService returns a gomail backed EmailService. With an empty host
// messages are only logged.
func NewEmailService(host, port, username, password, from string) EmailService {
	p, _ := strconv.Atoi(port)
	s := &emailService{
		host:     host,
		port:     p,
		username: username,
		password: password,
		from:     from,
	}
	s.send = s.dialAndSend
	return s
}

func (s *emailService) dialAndSend(m *gomail.Message) error {
	d := gomail.NewDialer(s.host, s.port, s.username, s.password)
	return d.DialAndSend(m)
}

func (s *emailService) deliver(ctx context.Context, to, subject, body string) error {
	if s.host == "" {
		logger.FromContext(ctx).Info("SMTP not configured, skipping e-mail", "to", to, "subject", subject)
		return nil
	}
	if to == "" {
		return fmt.Errorf("missing recipient for %q", subject)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body+"\n\nAtenciosamente,\nEquipe DriveRent")

	logger.ExternalServiceCall("smtp", "send", "to", to)
	err := s.send(m)
	logger.ExternalServiceResult("smtp", "send", err, "to", to)
	if err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	return nil
}

func (s *emailService) SendRentalRequestNotification(ctx context.Context, ownerEmail, driverName, vehicle string) error {
	subject := fmt.Sprintf("Nova solicitacao de aluguel - %s", vehicle)
	body := fmt.Sprintf("Ola,\n\n%s solicitou o aluguel do seu veiculo %s. Acesse a plataforma para aprovar ou recusar.", driverName, vehicle)
	return s.deliver(ctx, ownerEmail, subject, body)
}

func (s *emailService) SendRequestDecisionNotification(ctx context.Context, driverEmail, vehicle string, approved bool, reason string) error {
	if approved {
		subject := fmt.Sprintf("Solicitacao aprovada - %s", vehicle)
		body := fmt.Sprintf("Ola,\n\nSua solicitacao para o veiculo %s foi aprovada. O contrato esta em negociacao com o proprietario.", vehicle)
		return s.deliver(ctx, driverEmail, subject, body)
	}

	subject := fmt.Sprintf("Solicitacao recusada - %s", vehicle)
	body := fmt.Sprintf("Ola,\n\nSua solicitacao para o veiculo %s foi recusada.", vehicle)
	if reason != "" {
		body += fmt.Sprintf("\n\nMotivo: %s", reason)
	}
	return s.deliver(ctx, driverEmail, subject, body)
}

func (s *emailService) SendContractPublishedNotification(ctx context.Context, driverEmail, vehicle string, contractID int32) error {
	subject := fmt.Sprintf("Contrato #%d pronto para assinatura", contractID)
	body := fmt.Sprintf("Ola,\n\nO contrato de aluguel do veiculo %s foi publicado e aguarda sua assinatura.", vehicle)
	return s.deliver(ctx, driverEmail, subject, body)
}

func (s *emailService) SendContractSignedNotification(ctx context.Context, ownerEmail, driverName, vehicle string, contractID int32) error {
	subject := fmt.Sprintf("Contrato #%d assinado", contractID)
	body := fmt.Sprintf("Ola,\n\n%s assinou o contrato de aluguel do veiculo %s.", driverName, vehicle)
	return s.deliver(ctx, ownerEmail, subject, body)
}
