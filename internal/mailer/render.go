package mailer

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"morfi-plan/internal/planner"
)

var digestTmpl = template.Must(template.New("digest").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #16a34a; margin-bottom: 20px;">🍽️ Menú Semanal - {{.Label}}</h1>
{{- if .Plan}}
  <h2 style="color: #374151; margin-top: 30px;">Planificación</h2>
  <table style="width: 100%; border-collapse: collapse; margin-bottom: 30px;">
    <thead>
      <tr style="background-color: #f3f4f6;">
        <th style="padding: 10px; border: 1px solid #e5e7eb; text-align: left;">Día</th>
        <th style="padding: 10px; border: 1px solid #e5e7eb; text-align: left;">Comida</th>
        <th style="padding: 10px; border: 1px solid #e5e7eb; text-align: left;">Menú</th>
      </tr>
    </thead>
    <tbody>
{{- range .Plan}}
      <tr>
        <td style="padding: 10px; border: 1px solid #e5e7eb;">{{.Day.FullLabel}}</td>
        <td style="padding: 10px; border: 1px solid #e5e7eb;">{{.MealType.Label}}</td>
        <td style="padding: 10px; border: 1px solid #e5e7eb; font-weight: bold;">{{.MenuName}}</td>
      </tr>
{{- end}}
    </tbody>
  </table>
{{- end}}
  <h2 style="color: #374151;">🛒 Lista de Compras</h2>
  <ul style="list-style: none; padding: 0;">
{{- range $i, $item := .Items}}
    <li style="padding: 5px 0;">{{inc $i}}. {{$item}}</li>
{{- end}}
  </ul>
  <p style="margin-top: 40px; padding-top: 20px; border-top: 1px solid #e5e7eb; color: #6b7280; font-size: 14px;">
    Generado automáticamente por Morfi-Plan 🍳
  </p>
</div>`))

func renderHTML(label string, plan []planner.PlanRow, items []string) (string, error) {
	var buf bytes.Buffer
	err := digestTmpl.Execute(&buf, struct {
		Label string
		Plan  []planner.PlanRow
		Items []string
	}{label, plan, items})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// plainText flattens the rendered digest for clients that do not show
// HTML.
func plainText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(doc.Find("h1").First().Text()))
	b.WriteString("\n")

	rows := doc.Find("tbody tr")
	if rows.Length() > 0 {
		b.WriteString("\nPlanificación\n")
		rows.Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td").Map(func(_ int, td *goquery.Selection) string {
				return strings.TrimSpace(td.Text())
			})
			b.WriteString(strings.Join(cells, " - "))
			b.WriteString("\n")
		})
	}

	b.WriteString("\nLista de Compras\n")
	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		b.WriteString(strings.TrimSpace(li.Text()))
		b.WriteString("\n")
	})

	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(doc.Find("p").Last().Text()))
	b.WriteString("\n")
	return b.String(), nil
}
