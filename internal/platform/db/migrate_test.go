package db

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@localhost:5432/tripdesk?sslmode=disable", "pgx5://u:p@localhost:5432/tripdesk?sslmode=disable"},
		{"postgresql://u@db/tripdesk", "pgx5://u@db/tripdesk"},
		{"pgx5://u@db/tripdesk", "pgx5://u@db/tripdesk"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MigrationURL(tt.in))
	}
}

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	assert.Equal(t, ups, downs)

	schema, err := fs.ReadFile(migrationsFS, "migrations/0001_documents.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(schema), "documents_collection_key_uq")
}
