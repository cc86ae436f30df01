// internal/app/system/mailer/sendgrid.go
package mailer

import (
	"fmt"
	"net/mail"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendGridSender struct {
	client *sendgrid.Client
}

func newSendGridSender(apiKey string) *sendGridSender {
	return &sendGridSender{client: sendgrid.NewSendClient(apiKey)}
}

func (s *sendGridSender) send(from string, e Email) error {
	fromAddr, err := mail.ParseAddress(from)
	if err != nil {
		return fmt.Errorf("parse from: %w", err)
	}
	msg := sgmail.NewSingleEmail(
		sgmail.NewEmail(fromAddr.Name, fromAddr.Address),
		e.Subject,
		sgmail.NewEmail("", e.To),
		e.TextBody,
		e.HTMLBody,
	)
	res, err := s.client.Send(msg)
	if err != nil {
		return err
	}
	if res.StatusCode >= 300 {
		return fmt.Errorf("sendgrid status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}
