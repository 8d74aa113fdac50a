package mail

import "html/template"

type Message struct {
	From     string
	To       string
	ReplyTo  string
	Subject  string
	HTMLBody string
}

type LeadEmailData struct {
	CompanyName string
	FleetSize   string
	FuelType    string
	Email       string
	Phone       string
	LeadID      string
}

var leadTemplate = template.Must(template.New("lead").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #ED6A21;">New Quote Request</h2>
  <table style="width: 100%; border-collapse: collapse;">
    <tr><td style="padding: 8px; border-bottom: 1px solid #eee;"><strong>Company</strong></td><td style="padding: 8px; border-bottom: 1px solid #eee;">{{.CompanyName}}</td></tr>
    <tr><td style="padding: 8px; border-bottom: 1px solid #eee;"><strong>Fleet Size</strong></td><td style="padding: 8px; border-bottom: 1px solid #eee;">{{.FleetSize}}</td></tr>
    <tr><td style="padding: 8px; border-bottom: 1px solid #eee;"><strong>Fuel Type</strong></td><td style="padding: 8px; border-bottom: 1px solid #eee;">{{.FuelType}}</td></tr>
    <tr><td style="padding: 8px; border-bottom: 1px solid #eee;"><strong>Email</strong></td><td style="padding: 8px; border-bottom: 1px solid #eee;"><a href="mailto:{{.Email}}">{{.Email}}</a></td></tr>
    <tr><td style="padding: 8px;"><strong>Phone</strong></td><td style="padding: 8px;"><a href="tel:{{.Phone}}">{{.Phone}}</a></td></tr>
  </table>
  <p style="color: #666; font-size: 12px; margin-top: 20px;">Lead {{.LeadID}} &middot; Sent via GoGo Imperial Energy Lead System</p>
</div>
`))
