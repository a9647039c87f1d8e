package mail

import "html/template"

// packageNames maps wire package values to their customer-facing labels.
var packageNames = map[string]string{
	"basic":    "Basic-Package",
	"premium":  "Premium-Package",
	"luxus":    "Luxus-Package",
	"beratung": "Individuelle Beratung",
}

// PackageDisplayName returns the customer-facing label for a package value,
// falling back to the raw value for anything unknown.
func PackageDisplayName(pkg string) string {
	if name, ok := packageNames[pkg]; ok {
		return name
	}
	return pkg
}

// leadMailData is the template context for both notification mails.
type leadMailData struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	PackageName string
	Message     string
	CreatedAt   string
}

var customerTemplate = template.Must(template.New("customer").Parse(`<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: 'Arial', sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #000; color: white; padding: 30px; text-align: center; }
    .content { padding: 30px; background: #f9f9f9; }
    .footer { background: #000; color: white; padding: 20px; text-align: center; font-size: 12px; }
    .info-box { background: white; padding: 20px; margin: 20px 0; border-left: 4px solid #000; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>JALUD Premium Autopflege</h1>
    </div>
    <div class="content">
      <h2>Vielen Dank für Ihre Anfrage!</h2>
      <p>Hallo {{.FirstName}} {{.LastName}},</p>
      <p>vielen Dank für Ihr Interesse an unseren Premium-Autopflege-Leistungen. Wir haben Ihre Anfrage erhalten und werden uns in Kürze bei Ihnen melden.</p>

      <div class="info-box">
        <h3>Ihre Anfrage im Überblick:</h3>
        <p><strong>Paket:</strong> {{.PackageName}}</p>
        <p><strong>Name:</strong> {{.FirstName}} {{.LastName}}</p>
        <p><strong>E-Mail:</strong> {{.Email}}</p>
        <p><strong>Telefon:</strong> {{.Phone}}</p>
        {{if .Message}}<p><strong>Ihre Nachricht:</strong><br>{{.Message}}</p>{{end}}
      </div>

      <p>Unser Team wird Ihre Anfrage prüfen und sich innerhalb von 24 Stunden bei Ihnen melden.</p>

      <p>Bei dringenden Fragen erreichen Sie uns unter:</p>
      <p><strong>📞 +49 155 636 538 36</strong><br>
         <strong>📧 info@jalud.de</strong></p>

      <p>Wir freuen uns darauf, Ihr Fahrzeug zum Strahlen zu bringen!</p>

      <p>Mit freundlichen Grüßen,<br>
         Ihr JALUD-Team</p>
    </div>
    <div class="footer">
      <p>JALUD Premium Autopflege<br>
         Auf dem Haidchen 45, 45527 Hattingen<br>
         Tel: +49 155 636 538 36 | E-Mail: info@jalud.de</p>
    </div>
  </div>
</body>
</html>
`))

var adminTemplate = template.Must(template.New("admin").Parse(`<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: 'Arial', sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #000; color: white; padding: 20px; }
    .content { padding: 20px; background: #f9f9f9; }
    .lead-info { background: white; padding: 15px; margin: 10px 0; border-left: 4px solid #000; }
    .status-badge { display: inline-block; padding: 5px 15px; background: #4CAF50; color: white; border-radius: 3px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h2>🔔 Neue Lead-Anfrage</h2>
    </div>
    <div class="content">
      <p><span class="status-badge">NEU</span></p>

      <div class="lead-info">
        <h3>Kontaktdaten:</h3>
        <p><strong>Name:</strong> {{.FirstName}} {{.LastName}}</p>
        <p><strong>E-Mail:</strong> <a href="mailto:{{.Email}}">{{.Email}}</a></p>
        <p><strong>Telefon:</strong> <a href="tel:{{.Phone}}">{{.Phone}}</a></p>
        <p><strong>Gewünschtes Paket:</strong> {{.PackageName}}</p>
        {{if .Message}}<p><strong>Nachricht:</strong><br>{{.Message}}</p>{{else}}<p><em>Keine Nachricht hinterlassen</em></p>{{end}}
        <p><strong>Eingegangen am:</strong> {{.CreatedAt}}</p>
      </div>

      <p><strong>Nächste Schritte:</strong></p>
      <ul>
        <li>Kunde innerhalb von 24 Stunden kontaktieren</li>
        <li>Lead im Admin-Dashboard bearbeiten</li>
        <li>Termin vereinbaren</li>
      </ul>
    </div>
  </div>
</body>
</html>
`))
