package migrations

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionsSortedAndFiltered(t *testing.T) {
	files := fstest.MapFS{
		"002_claims.sql": {Data: []byte("SELECT 2;")},
		"001_init.sql":   {Data: []byte("SELECT 1;")},
		"README.md":      {Data: []byte("notes")},
	}

	versions, names, err := Versions(files)
	require.NoError(t, err)
	assert.Equal(t, []string{"001", "002"}, versions)
	assert.Equal(t, "002_claims.sql", names["002"])
}

func TestVersionsRejectsDuplicates(t *testing.T) {
	files := fstest.MapFS{
		"001_init.sql":  {Data: []byte("SELECT 1;")},
		"001_other.sql": {Data: []byte("SELECT 1;")},
	}
	_, _, err := Versions(files)
	assert.Error(t, err)
}

func TestEmbeddedSchemaCreatesEveryTable(t *testing.T) {
	sub, err := fs.Sub(embedded, "sql")
	require.NoError(t, err)
	versions, names, err := Versions(sub)
	require.NoError(t, err)
	require.NotEmpty(t, versions)

	content, err := fs.ReadFile(sub, names[versions[0]])
	require.NoError(t, err)
	for _, table := range []string{"users", "user_roles", "lost_items", "found_items", "claims", "activity_logs", "notifications"} {
		assert.Contains(t, string(content), "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
	assert.Contains(t, string(content), "CONSTRAINT users_email_key UNIQUE")
	assert.NotContains(t, string(content), "REFERENCES found_items", "claims must survive item deletion")
}
