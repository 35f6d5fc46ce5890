package report

import (
	"embed"
	"html/template"
	"io"
)

// TemplateName is the name the report page is registered under
const TemplateName = "report.html.tmpl"

//go:embed templates/*.tmpl
var templateFS embed.FS

var reportTemplate = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Template returns the parsed report templates, for gin's SetHTMLTemplate.
func Template() *template.Template {
	return reportTemplate
}

func RenderHTML(w io.Writer, v View) error {
	return reportTemplate.ExecuteTemplate(w, TemplateName, v)
}
