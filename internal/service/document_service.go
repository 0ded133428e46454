package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"workforce/internal/documents"
	"workforce/internal/ids"
	"workforce/internal/mailer"
	"workforce/internal/metrics"
	"workforce/internal/models"
)

type EmailKind int

const (
	StoreLetterEmail EmailKind = iota
	IDCardEmail
)

type emailContent struct {
	subject string
	text    string
	html    string
}

var emailContents = map[EmailKind]emailContent{
	StoreLetterEmail: {
		subject: "Store Intro Letter from VertexPro",
		text:    "This is the store intro letter that you requested. Please find the attached document for more details.",
		html:    "<p>This is the store intro letter that you requested. Please find the attached document for more details.</p>",
	},
	IDCardEmail: {
		subject: "ID Card from VertexPro",
		text:    "This is the ID card that you requested. Please find the attached document for more details.",
		html: "<p>This is the ID card that you requested. Please find the attached document for more details.</p><br/>" +
			"<p>Please have your ID printed as size CR80 2.125' x 3.375'. Ensure to insert your 1 x 1 photo and have it laminated.</p>",
	},
}

// DocumentService fills letter and ID templates and mails them, keeping an audit row per message.
type DocumentService struct {
	users          UserStore
	emails         EmailStore
	mail           MailSender
	filler         TemplateFiller
	loadIDTemplate func() ([]byte, error)
	idValidity     int
	metrics        *metrics.Metrics
	log            zerolog.Logger
	now            func() time.Time
}

func NewDocumentService(
	users UserStore,
	emails EmailStore,
	mail MailSender,
	filler TemplateFiller,
	idTemplatePath string,
	idValidityYears int,
	m *metrics.Metrics,
	log zerolog.Logger,
) *DocumentService {
	return &DocumentService{
		users:  users,
		emails: emails,
		mail:   mail,
		filler: filler,
		loadIDTemplate: func() ([]byte, error) {
			return documents.LoadIDTemplate(idTemplatePath)
		},
		idValidity: idValidityYears,
		metrics:    m,
		log:        log,
		now:        time.Now,
	}
}

// SendEmail records a pending audit row, sends the message and marks the row
// sent or failed. The send is not tied to the caller's cancellation.
func (s *DocumentService) SendEmail(ctx context.Context, kind EmailKind, to string, attachment *models.Attachment) (models.EmailLog, error) {
	content, ok := emailContents[kind]
	if !ok {
		return models.EmailLog{}, fmt.Errorf("unknown email kind %d", kind)
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return models.EmailLog{}, invalid("to", "is required")
	}
	if _, err := mail.ParseAddress(to); err != nil {
		return models.EmailLog{}, invalid("to", "must be a valid email address")
	}

	ctx = context.WithoutCancel(ctx)

	entry, err := s.emails.Create(ctx, models.EmailLog{
		ID:         ids.New(),
		To:         to,
		Subject:    content.subject,
		Text:       content.text,
		HTML:       content.html,
		Attachment: attachment,
		Status:     models.EmailStatusPending,
	})
	if err != nil {
		return models.EmailLog{}, fmt.Errorf("record email: %w", err)
	}

	msg := mailer.Message{
		To:      to,
		Subject: content.subject,
		Text:    content.text,
		HTML:    content.html,
	}
	if attachment != nil {
		msg.Attachments = []mailer.Attachment{{
			Name:     attachment.Name,
			MimeType: attachment.MimeType,
			Data:     attachment.Data,
		}}
	}

	if sendErr := s.mail.Send(msg); sendErr != nil {
		entry.Status = models.EmailStatusFailed
		entry.Error = sendErr.Error()
		if err := s.emails.UpdateStatus(ctx, entry.ID, entry.Status, entry.Error); err != nil {
			s.log.Error().Err(err).Str("email_id", entry.ID).Msg("mark email failed")
		}
		s.metrics.EmailFinished(string(models.EmailStatusFailed))
		s.log.Error().Err(sendErr).Str("email_id", entry.ID).Str("to", to).Msg("email send failed")
		return entry, fmt.Errorf("send email: %w", sendErr)
	}

	entry.Status = models.EmailStatusSent
	if err := s.emails.UpdateStatus(ctx, entry.ID, entry.Status, ""); err != nil {
		s.log.Error().Err(err).Str("email_id", entry.ID).Msg("mark email sent")
	}
	s.metrics.EmailFinished(string(models.EmailStatusSent))
	return entry, nil
}

// SendLetter fills an uploaded letter template for the user and mails it to them.
func (s *DocumentService) SendLetter(ctx context.Context, userID string, template []byte, role string) (models.EmailLog, error) {
	if len(template) == 0 {
		return models.EmailLog{}, invalid("template", "file is required")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.EmailLog{}, err
	}

	doc, err := s.filler.Fill(template, documents.LetterValues(user, strings.TrimSpace(role)))
	if err != nil {
		return models.EmailLog{}, invalid("template", "%s", err)
	}

	entry, err := s.SendEmail(ctx, StoreLetterEmail, user.Email, &models.Attachment{
		Name:     documents.LetterFilename(user),
		MimeType: documents.DocxMIME,
		Data:     doc,
	})
	if err != nil {
		return entry, err
	}
	s.clearRequest(ctx, user.ID, models.RequestLetter)
	return entry, nil
}

// SendIDCard fills the company ID template for the user and mails it to them.
func (s *DocumentService) SendIDCard(ctx context.Context, userID string) (models.EmailLog, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.EmailLog{}, err
	}

	template, err := s.loadIDTemplate()
	if err != nil {
		return models.EmailLog{}, err
	}
	doc, err := s.filler.Fill(template, documents.IDCardValues(user, s.now(), s.idValidity))
	if err != nil {
		return models.EmailLog{}, fmt.Errorf("fill id template: %w", err)
	}

	entry, err := s.SendEmail(ctx, IDCardEmail, user.Email, &models.Attachment{
		Name:     documents.IDCardFilename(user),
		MimeType: documents.DocxMIME,
		Data:     doc,
	})
	if err != nil {
		return entry, err
	}
	s.clearRequest(ctx, user.ID, models.RequestID)
	return entry, nil
}

func (s *DocumentService) clearRequest(ctx context.Context, userID string, kind models.RequestKind) {
	if _, err := s.users.SetRequest(context.WithoutCancel(ctx), userID, kind, nil); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Str("kind", string(kind)).Msg("clear request flag failed")
	}
}
