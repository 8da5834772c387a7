package subscription

import (
	"fmt"
	"html"
	"strings"
)

// NewslettersHelp is the reply to /newsletters
const NewslettersHelp = `📋 <b>Sistema de Suscripción Ética</b>

🤖 <b>Comandos disponibles:</b>
/subs [email] - Proceso automático (si está disponible)
/suscribir [email] - Links directos para suscripción manual
/newsletters - Esta ayuda

⚠️ <b>¿Por qué suscripción manual?</b>
- Respetamos tu consentimiento explícito
- Cumplimos con leyes de protección de datos
- Evitamos spam y prácticas no éticas

✅ <b>Recomendación:</b> Usa /suscribir para links directos`

// FormatProgress is shown while a /subs request is being processed
func FormatProgress(email string) string {
	return fmt.Sprintf("📧 Procesando suscripción para: %s\n\n⏳ Verificando opciones...", html.EscapeString(email))
}

// FormatInvalidEmail tells the user the expected input for command
func FormatInvalidEmail(command string) string {
	return fmt.Sprintf("❌ Email no válido. Ejemplo: /%s tuemail@gmail.com", command)
}

func link(url, text string) string {
	return fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(url), text)
}

// FormatResult renders the outcome of Subscribe
func FormatResult(r *Result) string {
	email := html.EscapeString(r.Email)
	name := html.EscapeString(r.Newsletter.Name)

	switch r.Status {
	case StatusSubscribed:
		return "✅ <b>¡Suscripción enviada!</b>\n\n" +
			"📧 <b>Email:</b> " + email + "\n" +
			"📰 <b>Newsletter:</b> " + name + "\n\n" +
			"📬 Revisa tu bandeja de entrada para confirmar la suscripción.\n" +
			"🔗 <b>Enlace directo:</b> " + link(r.ManualURL, "Haz click aquí")
	case StatusManual:
		return "✅ <b>¡Procesado correctamente!</b>\n\n" +
			"📧 <b>Email:</b> " + email + "\n" +
			"📰 <b>Newsletter:</b> " + name + "\n\n" +
			"🔗 <b>Para completar:</b> " + link(r.ManualURL, "Haz click aquí") + "\n\n" +
			"💡 <b>Nota:</b> Algunos newsletters requieren confirmación manual para verificar tu consentimiento."
	default:
		return "❌ <b>No se pudo automatizar</b>\n\n" +
			"📧 Email: " + email + "\n" +
			"📰 " + name + "\n\n" +
			"🔗 <b>Suscripción manual:</b> " + link(r.ManualURL, "Haz click aquí") + "\n\n" +
			"⚠️ Algunos servicios requieren suscripción manual por seguridad."
	}
}

// FormatCatalog renders the numbered newsletter list for /suscribir
func FormatCatalog(email string, catalog Catalog) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📧 <b>Suscripciones disponibles para:</b> %s\n\n", html.EscapeString(email))

	for i, n := range catalog {
		fmt.Fprintf(&b, "%d. <b>%s</b>\n", i+1, html.EscapeString(n.Name))
		fmt.Fprintf(&b, "   📖 %s\n", html.EscapeString(n.Description))
		fmt.Fprintf(&b, "   🔗 %s\n\n", link(n.URL, "Suscribirse"))
	}

	b.WriteString("💡 <b>Instrucciones:</b>\n")
	b.WriteString("1. Haz click en los links\n")
	fmt.Fprintf(&b, "2. Ingresa tu email: %s\n", html.EscapeString(email))
	b.WriteString("3. Confirma la suscripción\n\n")
	b.WriteString("✅ <b>Suscripción ética con consentimiento</b>")

	return b.String()
}
