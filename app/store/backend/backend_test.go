package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "radio.db")

	s, err := Open(context.Background(), Options{Backend: SQLite, SQLitePath: path})
	require.NoError(t, err)
	defer s.Close()

	n, err := s.Count(context.Background(), "blogPosts")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "mongo"})
	assert.ErrorContains(t, err, `unknown store backend "mongo"`)
}

func TestOpenFirestoreRequiresProject(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: Firestore})
	assert.ErrorContains(t, err, "firestore project is required")
}
