package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"leads-dashboard/models"
)

func sampleTable() *models.Table {
	return &models.Table{
		Header: []string{"Data/Hora", "Nome", "Imóvel/Referência"},
		Rows: [][]string{
			{"01/01/2024 10:00", "Ana", "CA01"},
			{"", "Bia, filha", "AP02"},
		},
	}
}

func TestCSVWriterWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSVWriter{}.WriteTable(&buf, sampleTable()))

	want := "Data/Hora,Nome,Imóvel/Referência\n" +
		"01/01/2024 10:00,Ana,CA01\n" +
		",\"Bia, filha\",AP02\n"
	assert.Equal(t, want, buf.String())
}

func TestXLSXWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, XLSXWriter{}.WriteTable(&buf, sampleTable()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ExportSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Data/Hora", "Nome", "Imóvel/Referência"}, rows[0])
	assert.Equal(t, "Bia, filha", rows[2][1])
}

func TestWriteFileCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "leads.csv")
	require.NoError(t, WriteFile(path, CSVWriter{}, sampleTable()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Data/Hora,"))
}

func TestWriterFor(t *testing.T) {
	w, err := WriterFor(".csv")
	require.NoError(t, err)
	assert.Equal(t, "csv", w.Ext())

	w, err = WriterFor("xlsx")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", w.Ext())

	_, err = WriterFor("pdf")
	assert.Error(t, err)
}

func TestInsertBatchPlaceholders(t *testing.T) {
	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	leads := []*models.Lead{
		{Timestamp: &ts, Name: "Ana", PropertyType: models.Casa, Status: "Novo"},
		{Name: "Bia", PropertyType: models.Outros, Status: "Novo"},
	}

	query, args := insertBatch("run-1", 50, leads)

	assert.Contains(t, query, "($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)")
	assert.Contains(t, query, "($12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)")
	require.Len(t, args, 2*leadColumns)
	assert.Equal(t, 50, args[1])
	assert.Equal(t, ts, args[2])
	assert.Equal(t, 51, args[leadColumns+1])
	assert.Nil(t, args[leadColumns+2], "null timestamps are stored as NULL")
	assert.Equal(t, "Outros", args[leadColumns+8])
}
