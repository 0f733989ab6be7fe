package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/smallbiznis/faktur/internal/config"
	reminderdomain "github.com/smallbiznis/faktur/internal/reminder/domain"
	"go.uber.org/zap"
)

// SMTPSender delivers reminder messages over plain SMTP with optional
// AUTH. It builds a minimal text/plain RFC 5322 message; attachments are
// not supported over this transport.
type SMTPSender struct {
	cfg config.Config
	log *zap.Logger
}

func NewSMTPSender(cfg config.Config, log *zap.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, log: log.Named("reminder.smtp")}
}

func (s *SMTPSender) Send(ctx context.Context, msg reminderdomain.Message) error {
	if s.cfg.SMTP.Host == "" {
		return reminderdomain.ErrSenderUnavailable
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from := s.cfg.Company.Email
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTP.Host, s.cfg.SMTP.Port)

	var auth smtp.Auth
	if s.cfg.SMTP.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTP.Username, s.cfg.SMTP.Password, s.cfg.SMTP.Host)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.cfg.Company.Name, from)
	fmt.Fprintf(&b, "To: %s <%s>\r\n", msg.ToName, msg.ToEmail)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))

	return smtp.SendMail(addr, auth, from, []string{msg.ToEmail}, []byte(b.String()))
}
