package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

type Logger interface {
	Infof(format string, args ...interface{})
}

// SMTPでパスワード再設定メールを送る
type SMTPMailer struct {
	host string
	port string
	from string
	auth smtp.Auth
}

// userが空なら認証なし（ローカルのmailhogなど）
func NewSMTPMailer(host, port, user, password, from string) *SMTPMailer {
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, password, host)
	}
	return &SMTPMailer{host: host, port: port, from: from, auth: auth}
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to string, resetURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := buildResetMessage(m.from, to, resetURL)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	return smtp.SendMail(addr, m.auth, m.from, []string{to}, msg)
}

func buildResetMessage(from, to, resetURL string) []byte {
	body := strings.Join([]string{
		"<p>You requested a password reset.</p>",
		fmt.Sprintf(`<p><a href="%s">Reset your password</a></p>`, resetURL),
		"<p>This link expires in 15 minutes. If you did not request it, ignore this email.</p>",
	}, "\r\n")

	return []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Password Reset\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		from, to, body,
	))
}

// SMTP_HOST未設定の開発環境用。リンクをログに出すだけ
type LogMailer struct {
	logger Logger
}

func NewLogMailer(logger Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to string, resetURL string) error {
	m.logger.Infof("password reset for %s: %s", to, resetURL)
	return nil
}
