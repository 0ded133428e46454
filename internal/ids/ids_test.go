package ids

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewIsUniqueAndValid(t *testing.T) {
	a := New()
	b := New()

	require.NotEqual(t, a, b)
	require.Len(t, a, 27)
	require.True(t, Valid(a))
	require.False(t, Valid("not-an-id"))
}
