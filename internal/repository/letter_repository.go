package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workforce/internal/models"
)

var ErrLetterNotFound = errors.New("letter not found")

type LetterRepository struct {
	pool *pgxpool.Pool
}

func NewLetterRepository(pool *pgxpool.Pool) *LetterRepository {
	return &LetterRepository{pool: pool}
}

func (r *LetterRepository) Create(ctx context.Context, letter models.Letter) (models.Letter, error) {
	const query = `
		INSERT INTO letters (id, user_id, type, status, admin_note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, user_id, type, status, admin_note, created_at, updated_at
	`
	row := r.pool.QueryRow(ctx, query, letter.ID, letter.UserID, letter.Type, letter.Status, letter.AdminNote)
	var created models.Letter
	if err := row.Scan(
		&created.ID,
		&created.UserID,
		&created.Type,
		&created.Status,
		&created.AdminNote,
		&created.CreatedAt,
		&created.UpdatedAt,
	); err != nil {
		return models.Letter{}, err
	}
	return created, nil
}

// List returns every letter with the requesting user's email and name attached.
func (r *LetterRepository) List(ctx context.Context) ([]models.Letter, error) {
	const query = `
		SELECT l.id, l.user_id, l.type, l.status, l.admin_note, l.created_at, l.updated_at,
		       u.email, concat_ws(' ', u.first_name, NULLIF(u.middle_name, ''), u.last_name)
		FROM letters l
		JOIN users u ON u.id = l.user_id
		ORDER BY l.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	letters := make([]models.Letter, 0)
	for rows.Next() {
		var letter models.Letter
		if err := rows.Scan(
			&letter.ID,
			&letter.UserID,
			&letter.Type,
			&letter.Status,
			&letter.AdminNote,
			&letter.CreatedAt,
			&letter.UpdatedAt,
			&letter.UserEmail,
			&letter.UserName,
		); err != nil {
			return nil, err
		}
		letters = append(letters, letter)
	}
	return letters, rows.Err()
}

func (r *LetterRepository) UpdateStatus(ctx context.Context, id string, status models.LetterStatus, adminNote string) (models.Letter, error) {
	const query = `
		UPDATE letters SET status = $2, admin_note = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING id, user_id, type, status, admin_note, created_at, updated_at
	`
	row := r.pool.QueryRow(ctx, query, id, status, adminNote)
	var letter models.Letter
	if err := row.Scan(
		&letter.ID,
		&letter.UserID,
		&letter.Type,
		&letter.Status,
		&letter.AdminNote,
		&letter.CreatedAt,
		&letter.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Letter{}, ErrLetterNotFound
		}
		return models.Letter{}, err
	}
	return letter, nil
}
