package mailer

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNew_Backends(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{"default is log", Config{}, "log", false},
		{"smtp", Config{Backend: "SMTP", SMTPHost: "localhost", SMTPPort: 1025}, "smtp", false},
		{"smtp without host", Config{Backend: "smtp"}, "", true},
		{"postmark", Config{Backend: "postmark", PostmarkServerToken: "tok"}, "postmark", false},
		{"postmark without token", Config{Backend: "postmark"}, "", true},
		{"sendgrid", Config{Backend: "sendgrid", SendGridAPIKey: "key"}, "sendgrid", false},
		{"sendgrid without key", Config{Backend: "sendgrid"}, "", true},
		{"unknown", Config{Backend: "pigeon"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.cfg, zap.NewNop())
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if m.Backend() != tt.want {
				t.Errorf("Backend() = %q, want %q", m.Backend(), tt.want)
			}
		})
	}
}

type recordingSender struct {
	from string
	got  []Email
	err  error
}

func (r *recordingSender) send(from string, e Email) error {
	r.from = from
	r.got = append(r.got, e)
	return r.err
}

func TestMailer_Send(t *testing.T) {
	rec := &recordingSender{}
	m := &Mailer{backend: "test", from: formatFrom("shop@example.com", "SlothStore"), s: rec, log: zap.NewNop()}

	if err := m.Send(Email{Subject: "hi"}); !errors.Is(err, ErrNoRecipient) {
		t.Errorf("missing recipient: got %v", err)
	}
	if err := m.Send(Email{To: "a@example.com", Subject: "hi"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if rec.from != "SlothStore <shop@example.com>" {
		t.Errorf("from = %q", rec.from)
	}

	rec.err = errors.New("boom")
	if err := m.Send(Email{To: "a@example.com"}); err == nil || !strings.Contains(err.Error(), "mailer(test)") {
		t.Errorf("expected wrapped backend error, got %v", err)
	}
}

func TestBuildMIME(t *testing.T) {
	msg, err := buildMIME("SlothStore <shop@example.com>", Email{
		To: "a@example.com", Subject: "Hello", TextBody: "plain", HTMLBody: "<p>html</p>",
	})
	if err != nil {
		t.Fatalf("buildMIME: %v", err)
	}
	s := string(msg)
	for _, want := range []string{"To: a@example.com", "multipart/alternative", "text/plain", "text/html", "plain", "<p>html</p>"} {
		if !strings.Contains(s, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestBuildPasswordResetEmail(t *testing.T) {
	e := BuildPasswordResetEmail(PasswordResetData{SiteName: "SlothStore", Username: "sloth", Code: "123456", ExpiresIn: "10 minutes"})
	if !strings.Contains(e.Subject, "SlothStore") {
		t.Errorf("subject = %q", e.Subject)
	}
	for _, body := range []string{e.TextBody, e.HTMLBody} {
		if !strings.Contains(body, "123456") || !strings.Contains(body, "10 minutes") {
			t.Errorf("body missing code or expiry: %q", body)
		}
	}
}

func TestBuildOrderConfirmationEmail(t *testing.T) {
	e := BuildOrderConfirmationEmail(OrderConfirmationData{
		SiteName: "SlothStore", Username: "sloth", OrderID: "abc",
		Lines: []OrderLineData{{Name: "Tee", Size: "M", Color: "red", Quantity: 2, Subtotal: "20.00"}},
		Total: "20.00", Address: "1 Sloth Lane",
	})
	if !strings.Contains(e.TextBody, "2 x Tee (M, red)") {
		t.Errorf("text body = %q", e.TextBody)
	}
	if !strings.Contains(e.HTMLBody, "1 Sloth Lane") || !strings.Contains(e.HTMLBody, "20.00") {
		t.Error("html body missing address or total")
	}
}
