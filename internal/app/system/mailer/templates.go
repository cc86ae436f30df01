// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// PasswordResetData holds data for the password reset OTP email.
type PasswordResetData struct {
	SiteName  string
	Username  string
	Code      string
	ExpiresIn string // e.g., "10 minutes"
}

// BuildPasswordResetEmail creates the OTP email with both HTML and text bodies.
func BuildPasswordResetEmail(data PasswordResetData) Email {
	return Email{
		To:       "", // Set by caller
		Subject:  fmt.Sprintf("Your %s password reset code", data.SiteName),
		TextBody: buildPasswordResetText(data),
		HTMLBody: render(passwordResetTmpl, data),
	}
}

func buildPasswordResetText(data PasswordResetData) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Hi %s,\n\n", data.Username)
	fmt.Fprintf(&buf, "Your %s password reset code is: %s\n\n", data.SiteName, data.Code)
	fmt.Fprintf(&buf, "This code expires in %s.\n\n", data.ExpiresIn)
	buf.WriteString("If you did not ask to reset your password, you can safely ignore this email.\n")
	return buf.String()
}

// OrderLineData is one row of the order confirmation email.
type OrderLineData struct {
	Name     string
	Size     string
	Color    string
	Quantity int
	Subtotal string
}

// OrderConfirmationData holds data for the order placed email.
type OrderConfirmationData struct {
	SiteName string
	Username string
	OrderID  string
	Lines    []OrderLineData
	Total    string
	Address  string
}

// BuildOrderConfirmationEmail creates the order placed email.
func BuildOrderConfirmationEmail(data OrderConfirmationData) Email {
	return Email{
		Subject:  fmt.Sprintf("%s order %s confirmed", data.SiteName, data.OrderID),
		TextBody: buildOrderConfirmationText(data),
		HTMLBody: render(orderConfirmationTmpl, data),
	}
}

func buildOrderConfirmationText(data OrderConfirmationData) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Hi %s,\n\n", data.Username)
	fmt.Fprintf(&buf, "Thanks for your order %s.\n\n", data.OrderID)
	for _, l := range data.Lines {
		fmt.Fprintf(&buf, "  %d x %s (%s, %s)  %s\n", l.Quantity, l.Name, l.Size, l.Color, l.Subtotal)
	}
	fmt.Fprintf(&buf, "\nTotal: %s\n", data.Total)
	if data.Address != "" {
		fmt.Fprintf(&buf, "Ship to: %s\n", data.Address)
	}
	return buf.String()
}

var (
	passwordResetTmpl     = template.Must(template.New("password_reset").Parse(passwordResetHTMLTemplate))
	orderConfirmationTmpl = template.Must(template.New("order_confirmation").Parse(orderConfirmationHTMLTemplate))
)

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	_ = t.Execute(&buf, data)
	return buf.String()
}

const passwordResetHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Password Reset Code</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #7c5c3b;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151;">Hi {{.Username}}, your password reset code is:</p>
              <div style="background-color: #f3f4f6; border-radius: 8px; padding: 24px; text-align: center; margin-bottom: 24px;">
                <span style="font-size: 32px; font-weight: 700; letter-spacing: 8px; color: #1f2937; font-family: 'Courier New', monospace;">{{.Code}}</span>
              </div>
              <p style="margin: 0; font-size: 13px; color: #9ca3af; text-align: center;">This code expires in {{.ExpiresIn}}.</p>
            </td>
          </tr>
          <tr>
            <td style="padding: 24px 32px; background-color: #f9fafb; border-top: 1px solid #e5e7eb;">
              <p style="margin: 0; font-size: 12px; color: #9ca3af; text-align: center;">
                If you did not ask to reset your password, you can safely ignore this email.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`

const orderConfirmationHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Order Confirmation</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 560px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px 32px 16px;">
              <h1 style="margin: 0 0 8px; font-size: 22px; color: #7c5c3b;">{{.SiteName}}</h1>
              <p style="margin: 0; font-size: 15px; color: #374151;">Hi {{.Username}}, thanks for your order <strong>{{.OrderID}}</strong>.</p>
            </td>
          </tr>
          <tr>
            <td style="padding: 0 32px;">
              <table role="presentation" width="100%" cellspacing="0" cellpadding="6" style="font-size: 14px; color: #374151;">
                {{range .Lines}}
                <tr>
                  <td>{{.Quantity}} &times; {{.Name}} ({{.Size}}, {{.Color}})</td>
                  <td align="right">{{.Subtotal}}</td>
                </tr>
                {{end}}
                <tr>
                  <td style="border-top: 1px solid #e5e7eb;"><strong>Total</strong></td>
                  <td align="right" style="border-top: 1px solid #e5e7eb;"><strong>{{.Total}}</strong></td>
                </tr>
              </table>
            </td>
          </tr>
          {{if .Address}}
          <tr>
            <td style="padding: 16px 32px 32px; font-size: 13px; color: #6b7280;">Ship to: {{.Address}}</td>
          </tr>
          {{end}}
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
