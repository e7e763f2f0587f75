package mailer

import "html/template"

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background:#050505; color:#e5e5e5; padding:24px;">
  <h1 style="color:#fdd458;">Welcome aboard{{if .Name}}, {{.Name}}{{end}}!</h1>
  <div style="font-size:16px; line-height:1.6;">{{.IntroHTML}}</div>
  <p style="font-size:16px; line-height:1.6;">Here is what you can do right now:</p>
  <ul style="font-size:16px; line-height:1.6;">
    <li>Add stocks to your watchlist to follow the companies you care about.</li>
    <li>Check market news scoped to your watchlist, refreshed every day.</li>
    <li>Receive a daily digest of the headlines that matter to you.</li>
  </ul>
  <p style="font-size:13px; color:#9ca3af;">You are receiving this email because you signed up for Tickerwire.</p>
</body>
</html>
`))

var newsSummaryTemplate = template.Must(template.New("news").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background:#050505; color:#e5e5e5; padding:24px;">
  <h1 style="color:#fdd458;">Market news for {{.Date}}</h1>
  {{if .IntroHTML}}<div style="font-size:16px; line-height:1.6;">{{.IntroHTML}}</div>{{end}}
  {{range .Articles}}
  <div style="border-top:1px solid #30333a; padding:12px 0;">
    {{if .RelatedSymbol}}<span style="color:#fdd458; font-weight:bold;">{{.RelatedSymbol}}</span>{{end}}
    <h3 style="margin:4px 0;"><a href="{{.URL}}" style="color:#ffffff;">{{.Headline}}</a></h3>
    {{if .Source}}<p style="font-size:13px; color:#9ca3af; margin:0;">{{.Source}}</p>{{end}}
    {{if .Summary}}<p style="font-size:15px; line-height:1.5;">{{.Summary}}</p>{{end}}
  </div>
  {{else}}
  <p>No market news was available today. Check back tomorrow.</p>
  {{end}}
</body>
</html>
`))
