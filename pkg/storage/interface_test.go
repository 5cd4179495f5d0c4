package storage_test

import (
	"encoding/base64"
	"radiomirchi/pkg/domain"
	"radiomirchi/pkg/storage"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCursor(t *testing.T) {
	c := storage.Cursor{
		CreatedAt: time.Date(2025, 5, 1, 10, 0, 0, 123000000, time.UTC),
		ID:        domain.NewMissionID(),
	}
	require.False(t, c.IsZero())
	require.True(t, storage.Cursor{}.IsZero())

	parsed, err := storage.ParseCursor(c.String())
	require.NoError(t, err)
	require.True(t, c.CreatedAt.Equal(parsed.CreatedAt))
	require.Equal(t, c.ID, parsed.ID)

	for _, bad := range []string{
		"yesterday",
		base64.RawURLEncoding.EncodeToString([]byte("no separator")),
		base64.RawURLEncoding.EncodeToString([]byte("noon|" + c.ID.String())),
		base64.RawURLEncoding.EncodeToString([]byte("2025-05-01T10:00:00Z|not-a-uuid")),
	} {
		_, err := storage.ParseCursor(bad)
		require.Error(t, err, bad)
	}
}
