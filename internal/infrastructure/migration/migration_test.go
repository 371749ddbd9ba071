package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add receipts bucket", "add_receipts_bucket"},
		{"Add-Order-Columns", "add_order_columns"},
		{"index__due__date", "index_due_date"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000003_existing.up.sql"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), nil, 0o644))

	mf, err := CreateMigration(dir, "Add receipt index", "Speeds up receipt lookups")
	require.NoError(t, err)
	assert.Equal(t, "000004", mf.Version)
	assert.Equal(t, filepath.Join(dir, "000004_add_receipt_index.up.sql"), mf.UpPath)
	assert.Equal(t, filepath.Join(dir, "000004_add_receipt_index.down.sql"), mf.DownPath)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "Speeds up receipt lookups")
	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback")

	next, err := CreateMigration(dir, "second", "")
	require.NoError(t, err)
	assert.Equal(t, "000005", next.Version)

	_, err = CreateMigration(dir, "!!!", "")
	assert.Error(t, err)
}

func TestAvailable(t *testing.T) {
	names, err := Available()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "000001_init_schema", names[0])

	for _, name := range names {
		_, err := schemaFS.ReadFile("sql/" + name + ".down.sql")
		assert.NoError(t, err, "%s has no down migration", name)
	}
}

func TestMigrateLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &migrateLogger{logger: zap.New(core)}

	l.Printf("1/u init_schema (%dms)\n", 12)
	assert.True(t, l.Verbose())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "1/u init_schema (12ms)", logs.All()[0].Message)

	quiet := &migrateLogger{logger: zap.NewNop()}
	assert.False(t, quiet.Verbose())
}
