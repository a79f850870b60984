package migrate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func writeMigration(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

const validBody = `-- +goose Up
CREATE TABLE t (id TEXT);

-- +goose Down
DROP TABLE t;
`

func TestValidateDirAcceptsWellFormedMigrations(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "20250901120000_create_t.sql", validBody)
	writeMigration(t, dir, "20250901120100_alter_t.sql", validBody)

	require.NoError(t, ValidateDir(dir))
}

func TestValidateDirReportsAllProblems(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "bad-name.sql", validBody)
	writeMigration(t, dir, "20250901120000_first.sql", validBody)
	writeMigration(t, dir, "20250901120000_second.sql", validBody)
	writeMigration(t, dir, "20250901120200_no_down.sql", "-- +goose Up\nSELECT 1;\n")

	err := ValidateDir(dir)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 3)
	assert.Contains(t, err.Error(), "invalid migration filename")
	assert.Contains(t, err.Error(), "duplicate migration version")
	assert.Contains(t, err.Error(), "missing \"-- +goose Down\"")
}

func TestValidateDirIgnoresNonSQLFiles(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "README.md", "notes")

	require.NoError(t, ValidateDir(dir))
}

func TestValidateShippedMigrations(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestCreateSQLMigrationWritesGooseTemplate(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Audit Log")
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), "_add_audit_log.sql")

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "-- +goose Up")
	assert.Contains(t, string(body), "-- +goose Down")

	require.NoError(t, ValidateDir(dir))
}
