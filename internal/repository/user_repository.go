package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"workforce/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

const (
	uniqueViolation       = "23505"
	emailUniqueConstraint = "users_email_key"
)

const userColumns = `
	id, company_id, email, password_hash, role, verified,
	first_name, middle_name, last_name, gender, position, complete_address, birthdate, profile_image,
	nbi_clearance, nbi_registration_date, nbi_expiration_date, fit_to_work, fit_to_work_expiration_date,
	government_id, government_id_type, gcash_number, gcash_name,
	request_letter_until, request_id_until, created_at, updated_at
`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts the user and returns it with the database assigned company ID and timestamps.
func (r *UserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (
			id, email, password_hash, role, verified,
			first_name, middle_name, last_name, gender, position, complete_address, birthdate, profile_image,
			nbi_clearance, nbi_registration_date, nbi_expiration_date, fit_to_work, fit_to_work_expiration_date,
			government_id, government_id_type, gcash_number, gcash_name, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18,
			$19, $20, $21, $22, NOW(), NOW()
		)
		RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Verified,
		user.FirstName,
		user.MiddleName,
		user.LastName,
		user.Gender,
		user.Position,
		user.CompleteAddress,
		user.Birthdate,
		user.ProfileImage,
		user.NBIClearance,
		user.NBIRegistrationDate,
		user.NBIExpirationDate,
		user.FitToWork,
		user.FitToWorkExpirationDate,
		user.GovernmentID,
		user.GovernmentIDType,
		user.GCashNumber,
		user.GCashName,
	)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && isEmailConflict(pgErr) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, err
	}
	return created, nil
}

func isEmailConflict(pgErr *pgconn.PgError) bool {
	return pgErr.Code == uniqueViolation && pgErr.ConstraintName == emailUniqueConstraint
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC`
	return r.query(ctx, query)
}

func (r *UserRepository) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY created_at ASC`
	return r.query(ctx, query, role)
}

func (r *UserRepository) SetVerified(ctx context.Context, id string, verified bool) (models.User, error) {
	query := `UPDATE users SET verified = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, query, id, verified))
}

func (r *UserRepository) SetRole(ctx context.Context, id string, role models.UserRole) (models.User, error) {
	query := `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, query, id, role))
}

// SetRequest raises the request flag of the given kind until the deadline, or lowers it when until is nil.
func (r *UserRepository) SetRequest(ctx context.Context, id string, kind models.RequestKind, until *time.Time) (models.User, error) {
	column := "request_letter_until"
	if kind == models.RequestID {
		column = "request_id_until"
	}
	query := `UPDATE users SET ` + column + ` = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, query, id, until))
}

// UpdateProfile overwrites the editable profile fields. Role, verification and credentials are left alone.
func (r *UserRepository) UpdateProfile(ctx context.Context, user models.User) (models.User, error) {
	query := `
		UPDATE users SET
			first_name = $2,
			middle_name = $3,
			last_name = $4,
			gender = $5,
			position = $6,
			complete_address = $7,
			birthdate = $8,
			profile_image = $9,
			nbi_registration_date = $10,
			nbi_expiration_date = $11,
			fit_to_work_expiration_date = $12,
			government_id_type = $13,
			gcash_number = $14,
			gcash_name = $15,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	return scanUser(r.pool.QueryRow(ctx, query,
		user.ID,
		user.FirstName,
		user.MiddleName,
		user.LastName,
		user.Gender,
		user.Position,
		user.CompleteAddress,
		user.Birthdate,
		user.ProfileImage,
		user.NBIRegistrationDate,
		user.NBIExpirationDate,
		user.FitToWorkExpirationDate,
		user.GovernmentIDType,
		user.GCashNumber,
		user.GCashName,
	))
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ClearExpiredRequests lowers every request flag whose deadline is at or before now.
func (r *UserRepository) ClearExpiredRequests(ctx context.Context, now time.Time) (int64, error) {
	const query = `
		UPDATE users SET
			request_letter_until = CASE WHEN request_letter_until <= $1 THEN NULL ELSE request_letter_until END,
			request_id_until = CASE WHEN request_id_until <= $1 THEN NULL ELSE request_id_until END,
			updated_at = NOW()
		WHERE request_letter_until <= $1 OR request_id_until <= $1
	`
	cmd, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *UserRepository) query(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.CompanyID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Verified,
		&user.FirstName,
		&user.MiddleName,
		&user.LastName,
		&user.Gender,
		&user.Position,
		&user.CompleteAddress,
		&user.Birthdate,
		&user.ProfileImage,
		&user.NBIClearance,
		&user.NBIRegistrationDate,
		&user.NBIExpirationDate,
		&user.FitToWork,
		&user.FitToWorkExpirationDate,
		&user.GovernmentID,
		&user.GovernmentIDType,
		&user.GCashNumber,
		&user.GCashName,
		&user.RequestLetterUntil,
		&user.RequestIDUntil,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
