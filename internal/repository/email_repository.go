package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"workforce/internal/models"
)

type EmailRepository struct {
	pool *pgxpool.Pool
}

func NewEmailRepository(pool *pgxpool.Pool) *EmailRepository {
	return &EmailRepository{pool: pool}
}

func (r *EmailRepository) Create(ctx context.Context, entry models.EmailLog) (models.EmailLog, error) {
	const query = `
		INSERT INTO email_logs (
			id, recipient, subject, body_text, body_html,
			attachment_name, attachment_type, attachment, status, error, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW()
		)
		RETURNING created_at
	`

	var name, mimeType *string
	var data []byte
	if entry.Attachment != nil {
		name = &entry.Attachment.Name
		mimeType = &entry.Attachment.MimeType
		data = entry.Attachment.Data
	}

	if err := r.pool.QueryRow(ctx, query,
		entry.ID,
		entry.To,
		entry.Subject,
		entry.Text,
		entry.HTML,
		name,
		mimeType,
		data,
		entry.Status,
		entry.Error,
	).Scan(&entry.CreatedAt); err != nil {
		return models.EmailLog{}, err
	}
	return entry, nil
}

func (r *EmailRepository) UpdateStatus(ctx context.Context, id string, status models.EmailStatus, errText string) error {
	const query = `UPDATE email_logs SET status = $2, error = $3 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, status, errText)
	return err
}

// DeleteOlderThan purges audit rows created before cutoff.
func (r *EmailRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM email_logs WHERE created_at <= $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
