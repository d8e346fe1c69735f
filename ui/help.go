package ui

import (
	"html/template"
	"net/http"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// renderHelp converts the embedded help page from Markdown once at startup
func renderHelp() (template.HTML, error) {
	md, err := embeddedFiles.ReadFile("templates/help.md")
	if err != nil {
		return "", err
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return template.HTML(markdown.ToHTML(md, p, r)), nil
}

func (a *App) handleHelp(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, "help.html", map[string]any{"Body": a.help})
}
