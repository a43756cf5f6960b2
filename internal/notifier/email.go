package notifier

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/smtp"
	"strconv"
	"time"

	"github.com/emersion/go-message/mail"
)

// sendMailFunc matches smtp.SendMail.
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailSender delivers plain-text mail over SMTP with PLAIN auth. The server
// connection is upgraded with STARTTLS when offered.
type EmailSender struct {
	Host       string
	Port       int
	User       string
	Pass       string
	Recipients func() []string // re-read on every send

	sendMail sendMailFunc
	now      func() time.Time
}

// NewEmailSender returns a sender authenticating as user, which is also the
// From address.
func NewEmailSender(host string, port int, user, pass string, recipients func() []string) *EmailSender {
	return &EmailSender{
		Host:       host,
		Port:       port,
		User:       user,
		Pass:       pass,
		Recipients: recipients,
		sendMail:   smtp.SendMail,
		now:        time.Now,
	}
}

func (e *EmailSender) Name() string { return "email" }

// Send mails title and body to the current recipient list. An empty list is a
// no-op.
func (e *EmailSender) Send(ctx context.Context, title, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var to []string
	if e.Recipients != nil {
		to = e.Recipients()
	}
	if len(to) == 0 {
		return nil
	}

	msg, err := e.compose(to, title, body)
	if err != nil {
		return fmt.Errorf("email: compose: %w", err)
	}
	addr := e.Host + ":" + strconv.Itoa(e.Port)
	auth := smtp.PlainAuth("", e.User, e.Pass, e.Host)
	if err := e.sendMail(addr, auth, e.User, to, msg); err != nil {
		return fmt.Errorf("email: send: %w", err)
	}
	return nil
}

func (e *EmailSender) compose(to []string, subject, body string) ([]byte, error) {
	var h mail.Header
	h.SetDate(e.now())
	h.SetSubject(subject)
	h.SetAddressList("From", []*mail.Address{{Address: e.User}})
	rcpts := make([]*mail.Address, len(to))
	for i, addr := range to {
		rcpts[i] = &mail.Address{Address: addr}
	}
	h.SetAddressList("To", rcpts)
	if err := h.GenerateMessageID(); err != nil {
		return nil, err
	}
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, body); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
