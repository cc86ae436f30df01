// internal/app/system/mailer/postmark.go
package mailer

import (
	"fmt"

	"github.com/keighl/postmark"
)

type postmarkSender struct {
	client *postmark.Client
}

func newPostmarkSender(serverToken string) *postmarkSender {
	return &postmarkSender{client: postmark.NewClient(serverToken, "")}
}

func (p *postmarkSender) send(from string, e Email) error {
	res, err := p.client.SendEmail(postmark.Email{
		From:     from,
		To:       e.To,
		Subject:  e.Subject,
		HtmlBody: e.HTMLBody,
		TextBody: e.TextBody,
	})
	if err != nil {
		return err
	}
	if res.ErrorCode != 0 {
		return fmt.Errorf("postmark error %d: %s", res.ErrorCode, res.Message)
	}
	return nil
}
