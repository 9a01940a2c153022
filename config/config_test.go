package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LEADS_SPREADSHEET_ID", "sheet-123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, SourceSheets, cfg.SourceKind)
	assert.Equal(t, []string{"Leads_Todos_Imoveis", "Leads_Lancamentos", "Sheet1"}, cfg.WorksheetNames)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, "America/Sao_Paulo", cfg.Location().String())
	assert.False(t, cfg.ArchiveEnabled())
}

func TestLoadRequiresSpreadsheetID(t *testing.T) {
	t.Setenv("LEADS_SOURCE", "sheets")
	t.Setenv("LEADS_SPREADSHEET_ID", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadFileSourceRequiresPath(t *testing.T) {
	t.Setenv("LEADS_SOURCE", "xlsx")
	t.Setenv("LEADS_SOURCE_PATH", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("LEADS_SOURCE_PATH", "./leads.xlsx")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "./leads.xlsx", cfg.SourcePath)
}

func TestLoadRejectsUnknownSource(t *testing.T) {
	t.Setenv("LEADS_SOURCE", "ftp")
	_, err := Load()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost:     "db",
		PostgresPort:     "5432",
		PostgresUser:     "u",
		PostgresPassword: "p",
		PostgresDB:       "leads",
		PostgresSSLMode:  "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=leads sslmode=disable", cfg.DSN())
	assert.True(t, cfg.ArchiveEnabled())
}
