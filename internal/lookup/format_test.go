package lookup

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool { return &b }

func fullRecord() Record {
	return Record{
		BankName:    "Test Bank",
		BankURL:     "www.testbank.com",
		BankPhone:   "+1 555 0100",
		CountryName: "United States of America",
		CountryFlag: "🇺🇸",
		CardType:    "debit",
		Scheme:      "visa",
		Category:    "Visa Classic",
		Level:       "CLASSIC",
		Currency:    "USD",
		Prepaid:     boolPtr(false),
		LuhnValid:   boolPtr(true),
	}
}

func TestFormatRecord_FullRecordInOrder(t *testing.T) {
	text := FormatRecord("424242", fullRecord(), "binlist")

	expected := []string{
		"BIN: 424242",
		"Banco: Test Bank",
		"Web: www.testbank.com",
		"Teléfono: +1 555 0100",
		"País: United States of America",
		"Bandera: 🇺🇸",
		"Tipo: debit",
		"Marca: visa",
		"Categoría: Visa Classic",
		"Nivel: CLASSIC",
		"Moneda: USD",
		"Prepago: No",
		"Luhn: Sí",
		"Fuente: binlist",
	}

	last := -1
	for _, want := range expected {
		idx := strings.Index(text, want)
		if assert.GreaterOrEqual(t, idx, 0, "missing %q", want) {
			assert.Greater(t, idx, last, "%q out of order", want)
			last = idx
		}
	}
	assert.NotContains(t, text, Placeholder)
}

func TestFormatRecord_MissingFieldsUsePlaceholder(t *testing.T) {
	text := FormatRecord("424242", Record{BankName: "Test Bank"}, "apilayer")

	assert.Contains(t, text, "Banco: Test Bank")
	assert.Contains(t, text, "Web: "+Placeholder)
	assert.Contains(t, text, "País: "+Placeholder)
	assert.Contains(t, text, "Prepago: "+Placeholder)
	assert.Contains(t, text, "Luhn: "+Placeholder)
	assert.Equal(t, len(recordLayout)-1, strings.Count(text, Placeholder))
}

func TestFormatRecord_Idempotent(t *testing.T) {
	record := fullRecord()
	record.BankPhone = ""

	first := FormatRecord("555555", record, "handyapi")
	second := FormatRecord("555555", record, "handyapi")

	assert.Equal(t, first, second)
}

func TestFormatRecord_EscapesHTML(t *testing.T) {
	text := FormatRecord("424242", Record{BankName: "<b>Evil & Co</b>"}, "binlist")

	assert.Contains(t, text, "Banco: &lt;b&gt;Evil &amp; Co&lt;/b&gt;")
	assert.NotContains(t, text, "<b>Evil")
}

func TestFormatFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "invalid identifier",
			err:      InvalidIdentifierError{Input: "42424"},
			contains: []string{"BIN inválido", "6 dígitos", "/bin 424242"},
		},
		{
			name:     "not found",
			err:      NotFoundError{BIN: "999999", Provider: "binlist"},
			contains: []string{"No se encontró información para el BIN 999999", "/bin 555555"},
		},
		{
			name:     "all providers failed",
			err:      AllProvidersFailedError{BIN: "424242", Errors: []error{errors.New("boom")}},
			contains: []string{"No se pudo consultar el BIN 424242", "/bin 378282"},
		},
		{
			name:     "unexpected",
			err:      errors.New("boom"),
			contains: []string{"error inesperado"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := FormatFailure(tt.err)
			for _, want := range tt.contains {
				assert.Contains(t, text, want)
			}
			assert.NotContains(t, text, "boom")
		})
	}
}
