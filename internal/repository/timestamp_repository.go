package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workforce/internal/models"
)

var (
	ErrTimestampNotFound = errors.New("timestamp not found")
	ErrPictureNotFound   = errors.New("picture not found in timestamp")
)

const timestampColumns = `id, user_id, direction, pictures, created_at, expires_at`

type TimestampRepository struct {
	pool *pgxpool.Pool
}

func NewTimestampRepository(pool *pgxpool.Pool) *TimestampRepository {
	return &TimestampRepository{pool: pool}
}

func (r *TimestampRepository) Create(ctx context.Context, ts models.Timestamp) (models.Timestamp, error) {
	query := `
		INSERT INTO timestamps (id, user_id, direction, pictures, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + timestampColumns

	return scanTimestamp(r.pool.QueryRow(ctx, query,
		ts.ID,
		ts.UserID,
		ts.Direction,
		ts.Pictures,
		ts.CreatedAt,
		ts.ExpiresAt,
	))
}

func (r *TimestampRepository) GetByID(ctx context.Context, id string) (models.Timestamp, error) {
	query := `SELECT ` + timestampColumns + ` FROM timestamps WHERE id = $1`
	return scanTimestamp(r.pool.QueryRow(ctx, query, id))
}

func (r *TimestampRepository) ListByDirection(ctx context.Context, direction models.Direction) ([]models.Timestamp, error) {
	query := `SELECT ` + timestampColumns + ` FROM timestamps WHERE direction = $1 ORDER BY created_at DESC`
	return r.query(ctx, query, direction)
}

func (r *TimestampRepository) ListByUser(ctx context.Context, userID string) ([]models.Timestamp, error) {
	query := `SELECT ` + timestampColumns + ` FROM timestamps WHERE user_id = $1 ORDER BY created_at DESC`
	return r.query(ctx, query, userID)
}

// ListExpired returns every record whose expiry is at or before now.
func (r *TimestampRepository) ListExpired(ctx context.Context, now time.Time) ([]models.Timestamp, error) {
	query := `SELECT ` + timestampColumns + ` FROM timestamps WHERE expires_at <= $1 ORDER BY expires_at ASC`
	return r.query(ctx, query, now)
}

// RemovePicture drops one URL from the pictures array, keeping the order of the rest.
// A URL that is not present leaves the row untouched and yields ErrPictureNotFound.
func (r *TimestampRepository) RemovePicture(ctx context.Context, id, pictureURL string) (models.Timestamp, error) {
	query := `
		UPDATE timestamps SET pictures = array_remove(pictures, $2)
		WHERE id = $1 AND $2 = ANY(pictures)
		RETURNING ` + timestampColumns

	ts, err := scanTimestamp(r.pool.QueryRow(ctx, query, id, pictureURL))
	if errors.Is(err, ErrTimestampNotFound) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return models.Timestamp{}, getErr
		}
		return models.Timestamp{}, ErrPictureNotFound
	}
	return ts, err
}

func (r *TimestampRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM timestamps WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTimestampNotFound
	}
	return nil
}

func (r *TimestampRepository) query(ctx context.Context, query string, args ...any) ([]models.Timestamp, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	timestamps := make([]models.Timestamp, 0)
	for rows.Next() {
		ts, err := scanTimestamp(rows)
		if err != nil {
			return nil, err
		}
		timestamps = append(timestamps, ts)
	}
	return timestamps, rows.Err()
}

func scanTimestamp(row pgx.Row) (models.Timestamp, error) {
	var ts models.Timestamp
	if err := row.Scan(
		&ts.ID,
		&ts.UserID,
		&ts.Direction,
		&ts.Pictures,
		&ts.CreatedAt,
		&ts.ExpiresAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Timestamp{}, ErrTimestampNotFound
		}
		return models.Timestamp{}, err
	}
	return ts, nil
}
