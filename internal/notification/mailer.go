package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/certwatch/certwatch-api/internal/config"
	"gopkg.in/gomail.v2"
)

// Mailer delivers one HTML email to a batch of recipients. Any non-nil error
// is treated uniformly as a failed delivery by the dispatcher; provider
// specifics are never interpreted.
type Mailer interface {
	Send(to []string, subject, htmlBody string, cc []string) error
}

// SMTPMailer sends mail through an SMTP server using gomail.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	timeout  time.Duration
}

func NewSMTPMailer(cfg config.EmailConfig) (*SMTPMailer, error) {
	host := strings.TrimSpace(cfg.SMTPHost)
	from := strings.TrimSpace(cfg.From)
	if host == "" {
		return nil, fmt.Errorf("smtp_host is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from address is required")
	}
	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: strings.TrimSpace(cfg.Username),
		password: cfg.Password,
		from:     from,
		timeout:  timeout,
	}, nil
}

func (m *SMTPMailer) Send(to []string, subject, htmlBody string, cc []string) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	if len(cc) > 0 {
		msg.SetHeader("Cc", cc...)
	}
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)

	// gomail has no deadline support, so the send runs in its own goroutine
	// and we give up after the configured timeout. A timed-out send is a
	// failure outcome; the next run retries it.
	done := make(chan error, 1)
	go func() {
		done <- dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(m.timeout):
		return fmt.Errorf("smtp send to %s timed out after %s", m.host, m.timeout)
	}
}

// NormalizeAddress completes a bare username with the configured domain
// suffix. Gateway callers store and pass fully-qualified addresses only.
func NormalizeAddress(raw, domainSuffix string) string {
	addr := strings.TrimSpace(strings.ToLower(raw))
	if addr == "" {
		return ""
	}
	if !strings.Contains(addr, "@") && domainSuffix != "" {
		return addr + "@" + strings.TrimPrefix(domainSuffix, "@")
	}
	return addr
}
