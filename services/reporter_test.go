package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"leads-dashboard/utils"
)

func TestPrinterPlainOutput(t *testing.T) {
	p := NewPipeline(&fakeSource{sheet: endToEndSheet()}, utils.NopLogger(), time.UTC, nil)
	res := p.Run(context.Background(), Filter{})

	var buf bytes.Buffer
	NewPrinter(&buf, time.UTC).Print(res)
	out := buf.String()

	assert.NotContains(t, out, "\033[", "no colours when not writing to a terminal")
	assert.Contains(t, out, "Total de leads      : 2")
	assert.Contains(t, out, "Pico: 1 leads às 10h")
	assert.Contains(t, out, "CA01")
	assert.Contains(t, out, "Mostrando 2 de 2 leads")
}

func TestPrinterFailedRun(t *testing.T) {
	p := NewPipeline(&fakeSource{err: errors.New("offline")}, utils.NopLogger(), time.UTC, nil)
	res := p.Run(context.Background(), Filter{})

	var buf bytes.Buffer
	NewPrinter(&buf, time.UTC).Print(res)
	assert.Contains(t, buf.String(), "Erro ao carregar dados: offline")
	assert.NotContains(t, buf.String(), "Resumo")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Lançamento", truncate("Lançamento", 10))
	assert.Equal(t, "Lanç...", truncate("Lançamentos", 7))
}
