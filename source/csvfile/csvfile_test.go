package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leads-dashboard/utils"
)

func TestFetchRaggedRowsAndBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.csv")
	content := "\ufeffData/Hora,Nome,Telefone\n01/01/2024 10:00:00,Ana,111\n02/01/2024 11:00:00,Bia\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	sheet, err := New(path, utils.NopLogger()).Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "leads", sheet.Worksheet)
	require.Len(t, sheet.Values, 3)
	assert.Equal(t, "Data/Hora", sheet.Values[0][0])
	assert.Len(t, sheet.Values[2], 2)
}

func TestFetchMissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope.csv"), utils.NopLogger()).Fetch(context.Background())
	assert.Error(t, err)
}
