package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsEmailConflict(t *testing.T) {
	cases := []struct {
		name string
		err  *pgconn.PgError
		want bool
	}{
		{"email unique", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}, true},
		{"company id unique", &pgconn.PgError{Code: "23505", ConstraintName: "users_company_id_key"}, false},
		{"primary key", &pgconn.PgError{Code: "23505", ConstraintName: "users_pkey"}, false},
		{"other error", &pgconn.PgError{Code: "23502", ConstraintName: "users_email_key"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isEmailConflict(tc.err))
		})
	}
}
