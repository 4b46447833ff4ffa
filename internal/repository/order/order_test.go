package orderRepo

import (
	"log/slog"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const migrationPath = "../../adapters/secondary/storage/pg/migrations/0001_init.sql"

// ddlColumns extracts the column names of one CREATE TABLE block
func ddlColumns(t *testing.T, ddl, table string) map[string]bool {
	t.Helper()

	re := regexp.MustCompile(`(?s)CREATE TABLE IF NOT EXISTS ` + table + `\s*\((.*?)\n\);`)
	m := re.FindStringSubmatch(ddl)
	require.NotNil(t, m, "table %s not found in migration", table)

	cols := make(map[string]bool)
	for _, line := range strings.Split(m[1], "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || strings.EqualFold(fields[0], "PRIMARY") {
			continue
		}
		cols[fields[0]] = true
	}
	return cols
}

// The repository assembles its SQL from the column struct; every name there
// must exist in the deployed schema or inserts fail at runtime.
func TestColumnsMatchMigration(t *testing.T) {
	t.Parallel()

	ddl, err := os.ReadFile(migrationPath)
	require.NoError(t, err)

	repo := New(nil, slog.New(slog.DiscardHandler)).(*Repository)

	t.Run("orders", func(t *testing.T) {
		cols := ddlColumns(t, string(ddl), repo.columns.TableName)
		for _, name := range strings.Split(repo.allColumns(), ", ") {
			require.True(t, cols[name], "column %s missing from %s schema", name, repo.columns.TableName)
		}
	})

	t.Run("payment events", func(t *testing.T) {
		cols := ddlColumns(t, string(ddl), repo.columns.EventsTableName)
		for _, name := range strings.Split(repo.eventColumns(), ", ") {
			require.True(t, cols[name], "column %s missing from %s schema", name, repo.columns.EventsTableName)
		}
	})
}
