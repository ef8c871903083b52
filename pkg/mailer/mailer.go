// Package mailer delivers the login verification code by SMTP.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"finscope/pkg/utils"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Sender dispatches verification codes. Implementations must respect ctx.
type Sender interface {
	SendVerificationCode(ctx context.Context, msg CodeMessage) error
}

type CodeMessage struct {
	To        string
	Name      string
	Code      string
	ExpiresIn time.Duration
}

// Email represents an email message.
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends through an SMTP relay.
type Mailer struct {
	dialer  dialer
	from    string
	appName string
	timeout time.Duration
}

func NewMailer(cfg utils.EmailConfig, appName string) *Mailer {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Mailer{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:    cfg.From,
		appName: appName,
		timeout: timeout,
	}
}

// Send delivers a single email, giving up when ctx or the configured timeout expires.
func (m *Mailer) Send(ctx context.Context, email Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)
	if email.HTMLBody != "" {
		msg.SetBody("text/html", email.HTMLBody)
		if email.Body != "" {
			msg.AddAlternative("text/plain", email.Body)
		}
	} else {
		msg.SetBody("text/plain", email.Body)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("send email: %w", ctx.Err())
	}
}

func (m *Mailer) SendVerificationCode(ctx context.Context, msg CodeMessage) error {
	html, err := renderCode(m.appName, msg)
	if err != nil {
		return err
	}

	return m.Send(ctx, Email{
		To:       []string{msg.To},
		Subject:  fmt.Sprintf("%s verification code", m.appName),
		Body:     fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", msg.Code, int(msg.ExpiresIn.Minutes())),
		HTMLBody: html,
	})
}

var codeTemplate = template.Must(template.New("code").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1F2937;">
  <h2>{{.App}}</h2>
  <p>Hello {{.Name}},</p>
  <p>Use this code to finish signing in:</p>
  <p style="font-size: 32px; letter-spacing: 8px; font-weight: bold;">{{.Code}}</p>
  <p>The code expires in {{.Minutes}} minutes and can be used once.</p>
  <p>If you did not try to sign in, you can ignore this email.</p>
</body>
</html>`))

func renderCode(appName string, msg CodeMessage) (string, error) {
	var buf bytes.Buffer
	err := codeTemplate.Execute(&buf, map[string]any{
		"App":     appName,
		"Name":    msg.Name,
		"Code":    msg.Code,
		"Minutes": int(msg.ExpiresIn.Minutes()),
	})
	if err != nil {
		return "", fmt.Errorf("render code email: %w", err)
	}
	return buf.String(), nil
}

// LogSender writes the code to the log instead of sending it. Development only.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log.With(zap.String("mailer", "log"))}
}

func (s *LogSender) SendVerificationCode(ctx context.Context, msg CodeMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.log.Warn("SMTP not configured, verification code written to log",
		zap.String("to", msg.To),
		zap.String("code", msg.Code),
		zap.Duration("expires_in", msg.ExpiresIn),
	)
	return nil
}

// NewSender picks SMTP when configured. Production refuses to fall back to the log sender.
func NewSender(cfg *utils.Config, log *zap.Logger) (Sender, error) {
	if cfg.Email.Configured() {
		return NewMailer(cfg.Email, cfg.App.Name), nil
	}
	if cfg.App.IsProduction() {
		return nil, errors.New("SMTP is not configured")
	}
	return NewLogSender(log), nil
}
