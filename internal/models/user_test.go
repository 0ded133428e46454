package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUserFullName(t *testing.T) {
	u := User{FirstName: "Juan", MiddleName: " ", LastName: "Dela Cruz"}
	require.Equal(t, "Juan Dela Cruz", u.FullName())

	u.MiddleName = "Santos"
	require.Equal(t, "Juan Santos Dela Cruz", u.FullName())
}

func TestUserRequestActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	u := User{RequestLetterUntil: &future, RequestIDUntil: &past}

	require.True(t, u.RequestActive(RequestLetter, now))
	require.False(t, u.RequestActive(RequestID, now))
	require.False(t, u.RequestActive(RequestLetter, future))
	require.False(t, User{}.RequestActive(RequestLetter, now))
}

func TestTimestampExpired(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ts := Timestamp{CreatedAt: created, ExpiresAt: created.Add(7 * 24 * time.Hour)}

	require.False(t, ts.Expired(created.Add(6*24*time.Hour)))
	require.True(t, ts.Expired(ts.ExpiresAt))
	require.True(t, ts.Expired(created.Add(8*24*time.Hour)))
}
