package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leads-dashboard/models"
)

func TestExportTableColumnsAndFormat(t *testing.T) {
	ts := time.Date(2024, 1, 5, 9, 7, 30, 0, time.UTC)
	ds := &models.Dataset{Columns: fullHeader}
	leads := []*models.Lead{
		{Timestamp: &ts, Name: "Ana", Phone: "111", Reference: "CA01", InterestRaw: "Sim", Interest: true,
			PropertyType: models.Casa, Status: "Novo"},
		{Name: "Bia", Reference: "x", PropertyType: models.Outros, Status: "Novo"},
	}

	table := ExportTable(ds, leads, time.UTC)

	assert.Equal(t, fullHeader, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"05/01/2024 09:07", "Ana", "111", "CA01", "Sim", "Casa", "Novo"}, table.Rows[0])
	assert.Equal(t, "", table.Rows[1][0], "null timestamp exports as empty")
	assert.Equal(t, "", table.Rows[1][4], "empty interest cell exports as written")
}

func TestExportTableInterestWithoutDataset(t *testing.T) {
	leads := []*models.Lead{
		{Name: "Ana", Interest: true, PropertyType: models.Casa, Status: "Novo"},
		{Name: "Bia", InterestRaw: "não", PropertyType: models.Casa, Status: "Novo"},
	}

	table := ExportTable(nil, leads, time.UTC)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, "true", table.Rows[0][4])
	assert.Equal(t, "não", table.Rows[1][4])
}

func TestExportTableSkipsMissingSourceColumns(t *testing.T) {
	ds := &models.Dataset{Columns: []string{models.ColTimestamp, models.ColName, models.ColPhone}}
	table := ExportTable(ds, nil, time.UTC)
	assert.Equal(t, []string{
		models.ColTimestamp, models.ColName, models.ColPhone, models.ColPropertyType, models.ColStatus,
	}, table.Header)
	assert.Empty(t, table.Rows)
}

func TestExportFileName(t *testing.T) {
	now := time.Date(2024, 7, 3, 14, 5, 59, 0, time.UTC)
	assert.Equal(t, "leads_luis_imoveis_20240703_1405.csv", ExportFileName(now, "csv"))
}
