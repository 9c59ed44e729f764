package input

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vms.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadParsesHeaderAndRows(t *testing.T) {
	path := writeCSV(t, "Server Name,Env,Owner\nvm1,prod,platform\nvm2,dev,\n")

	table, err := Load(path, "Server Name")
	require.NoError(t, err)

	require.Equal(t, []string{"Env", "Owner"}, table.Attributes)
	require.Len(t, table.Rows, 2)
	require.Equal(t, "vm1", table.Key(table.Rows[0]))
	require.Equal(t, "prod", table.Rows[0]["Env"])
	require.Equal(t, "", table.Rows[1]["Owner"])
}

func TestLoadKeepsAttributeHeaderOrder(t *testing.T) {
	path := writeCSV(t, "Zone,Server Name,App,Owner\nus-east,vm1,web,ops\n")

	table, err := Load(path, "Server Name")
	require.NoError(t, err)
	require.Equal(t, []string{"Zone", "App", "Owner"}, table.Attributes)
}

func TestLoadRejectsMissingKeyColumn(t *testing.T) {
	path := writeCSV(t, "Name,Env\nvm1,prod\n")

	_, err := Load(path, "Server Name")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Server Name")
}

func TestLoadRejectsEmptyColumnName(t *testing.T) {
	path := writeCSV(t, "Server Name,,Env\nvm1,x,prod\n")

	_, err := Load(path, "Server Name")
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty column name")
}

func TestLoadRejectsDuplicateColumns(t *testing.T) {
	path := writeCSV(t, "Server Name,Env,Env\nvm1,prod,dev\n")

	_, err := Load(path, "Server Name")
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate column 'Env'")
}

func TestLoadRejectsRaggedRows(t *testing.T) {
	path := writeCSV(t, "Server Name,Env\nvm1,prod,extra\n")

	_, err := Load(path, "Server Name")
	require.Error(t, err)
}

func TestLoadRejectsEmptyFile(t *testing.T) {
	path := writeCSV(t, "")

	_, err := Load(path, "Server Name")
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), "Server Name")
	require.Error(t, err)
}
