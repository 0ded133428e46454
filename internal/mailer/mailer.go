package mailer

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"

	"workforce/internal/config"
)

var ErrNoRecipient = errors.New("no recipient specified")

// Attachment is a file sent from memory; nothing touches the disk.
type Attachment struct {
	Name     string
	MimeType string
	Data     []byte
}

type Message struct {
	To          string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Mailer sends messages over SMTP.
type Mailer struct {
	from   string
	dialer *gomail.Dialer
}

func New(cfg config.MailConfig) *Mailer {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &Mailer{
		from:   from,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (m *Mailer) Send(msg Message) error {
	built, err := build(m.from, msg)
	if err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(built); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func build(from string, msg Message) (*gomail.Message, error) {
	if msg.To == "" {
		return nil, ErrNoRecipient
	}

	out := gomail.NewMessage()
	out.SetHeader("From", from)
	out.SetHeader("To", msg.To)
	out.SetHeader("Subject", msg.Subject)

	if msg.HTML != "" {
		out.SetBody("text/html", msg.HTML)
		if msg.Text != "" {
			out.AddAlternative("text/plain", msg.Text)
		}
	} else {
		out.SetBody("text/plain", msg.Text)
	}

	for _, a := range msg.Attachments {
		data := a.Data
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		}
		if a.MimeType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{
				"Content-Type": {a.MimeType},
			}))
		}
		out.Attach(a.Name, settings...)
	}
	return out, nil
}
