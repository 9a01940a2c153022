package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"leads-dashboard/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		ref  string
		want models.PropertyType
	}{
		{"", models.Indefinido},
		{"xyz123", models.Outros},
		{"CA01", models.Casa},
		{"ca-12 jardim", models.Casa},
		{"  AP202", models.Apartamento},
		{"TR7", models.Terreno},
		{"CO5", models.Comercial},
		{"Wind Oceanica", models.Lancamento},
		{"wind oceanica ", models.Lancamento},
		// Starts with TR, so the prefix rule wins over the launch allowlist.
		{"Tresor Camboinhas", models.Terreno},
		{"Linda casa na praia", models.Casa},
		{"Apt 302 Icaraí", models.Apartamento},
		{"Cobertura apartamento", models.Comercial},
		{"Lote terreno 20", models.Terreno},
		{"Loja centro", models.Comercial},
		{"Sala 1001", models.Comercial},
		{"Novo lançamento Itaipu", models.Lancamento},
		{"Novo lancamento Itaipu", models.Lancamento},
		{"Fazenda", models.Outros},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.ref))
		})
	}
}

func TestClassifyPrefixBeatsKeywords(t *testing.T) {
	refs := []string{"CA apartamento", "CAterreno", "Casa comercial loja", "CA LANÇAMENTO"}
	for _, ref := range refs {
		assert.Equal(t, models.Casa, Classify(ref), ref)
	}
}

func TestClassifyWhitespaceOnly(t *testing.T) {
	// Only the empty string is undefined; blanks are trimmed after that check.
	assert.Equal(t, models.Outros, Classify("   "))
}

func TestLaunchProject(t *testing.T) {
	assert.Equal(t, "Wind Oceanica", launchProject(" WIND oceanica"))
	assert.Equal(t, "Tresor Camboinhas", launchProject("Tresor Camboinhas"))
	assert.Equal(t, "", launchProject("Wind"))
}
