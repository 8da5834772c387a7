package lookup

import (
	"fmt"
	"html"
	"strings"
)

// Placeholder replaces every field the answering provider did not supply.
const Placeholder = "No disponible"

type field struct {
	label string
	value func(r Record) string
}

// recordLayout fixes the order and labels of a rendered record.
var recordLayout = []field{
	{"🏦 Banco", func(r Record) string { return r.BankName }},
	{"🌐 Web", func(r Record) string { return r.BankURL }},
	{"📞 Teléfono", func(r Record) string { return r.BankPhone }},
	{"🌍 País", func(r Record) string { return r.CountryName }},
	{"🏳️ Bandera", func(r Record) string { return r.CountryFlag }},
	{"💠 Tipo", func(r Record) string { return r.CardType }},
	{"🏷️ Marca", func(r Record) string { return r.Scheme }},
	{"📂 Categoría", func(r Record) string { return r.Category }},
	{"⭐ Nivel", func(r Record) string { return r.Level }},
	{"💱 Moneda", func(r Record) string { return r.Currency }},
	{"💰 Prepago", func(r Record) string { return yesNo(r.Prepaid) }},
	{"✅ Luhn", func(r Record) string { return yesNo(r.LuhnValid) }},
}

func yesNo(b *bool) string {
	if b == nil {
		return ""
	}
	if *b {
		return "Sí"
	}
	return "No"
}

// FormatRecord renders a record as Telegram HTML. Every label is always
// present, in a fixed order; values are escaped.
func FormatRecord(bin BIN, record Record, source string) string {
	var b strings.Builder

	b.WriteString("💳 <b>Información del BIN</b>\n\n")
	fmt.Fprintf(&b, "🔢 BIN: %s\n", html.EscapeString(bin.String()))

	for _, f := range recordLayout {
		value := f.value(record)
		if value == "" {
			value = Placeholder
		}
		fmt.Fprintf(&b, "%s: %s\n", f.label, html.EscapeString(value))
	}

	if source == "" {
		source = Placeholder
	}
	fmt.Fprintf(&b, "\n🔎 Fuente: %s", html.EscapeString(source))

	return b.String()
}

// FormatResult renders a successful lookup
func FormatResult(result *Result) string {
	return FormatRecord(result.BIN, result.Record, result.Source)
}

// FormatFailure renders a terminal lookup error for the end user, with
// example inputs where another attempt makes sense.
func FormatFailure(err error) string {
	switch e := err.(type) {
	case InvalidIdentifierError:
		return "❌ <b>BIN inválido.</b>\n\n" + e.Message() + "\nEjemplo: /bin 424242"
	case NotFoundError:
		return "❌ " + e.Message() + "\n\n" + suggestions()
	case AllProvidersFailedError:
		return "⚠️ " + e.Message() + "\n\n" + suggestions()
	default:
		return "⚠️ Ocurrió un error inesperado al consultar el BIN.\n\n" + suggestions()
	}
}

func suggestions() string {
	var b strings.Builder
	b.WriteString("💡 Prueba con alguno de estos ejemplos:")
	for _, bin := range SuggestedBINs {
		b.WriteString("\n/bin ")
		b.WriteString(bin)
	}
	return b.String()
}
