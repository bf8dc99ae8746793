package web

import (
	"bytes"
	"html/template"
	"net/http"
	"time"

	"github.com/yuin/goldmark"

	"github.com/wanyview/capsuled/internal/capsule"
)

// viewPageData is the template data for the capsule detail view.
type viewPageData struct {
	Capsule      *capsule.Capsule
	RenderedHTML template.HTML
	Source       string
	CreatedAt    string
	UpdatedAt    string
}

var viewTemplate = template.Must(template.New("view").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Capsule.Title}} - capsuled</title>
  <style>
    body { max-width: 48rem; margin: 2rem auto; padding: 0 1rem; font-family: system-ui, sans-serif; line-height: 1.5; }
    .meta { color: #666; font-size: 0.875rem; margin-bottom: 1.5rem; }
    .tag { display: inline-block; background: #eee; border-radius: 3px; padding: 0.1rem 0.4rem; margin-right: 0.3rem; font-size: 0.8rem; }
    pre { background: #f6f6f6; padding: 0.75rem; overflow-x: auto; }
  </style>
</head>
<body>
  <h1>{{.Capsule.Title}}</h1>
  <div class="meta">
    <div>{{.Capsule.Domain}} &middot; score {{printf "%.2f" .Capsule.QualityScore}} &middot; by {{.Capsule.Author}}</div>
    <div>created {{.CreatedAt}} &middot; updated {{.UpdatedAt}}</div>
    {{if .Source}}<div>source: {{.Source}}</div>{{end}}
    <div>{{range .Capsule.Tags}}<span class="tag">{{.}}</span>{{end}}</div>
  </div>
  <article>{{.RenderedHTML}}</article>
</body>
</html>`))

// HandleView handles GET /capsules/{id}/view — an HTML detail page with
// the capsule content rendered as markdown.
func (h *Handlers) HandleView(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	data := viewPageData{
		Capsule:      c,
		RenderedHTML: renderMarkdown(c.Content),
		CreatedAt:    formatTime(c.CreatedAt),
		UpdatedAt:    formatTime(c.UpdatedAt),
	}
	if c.Source != nil {
		data.Source = *c.Source
	}

	var buf bytes.Buffer
	if err := viewTemplate.Execute(&buf, data); err != nil {
		h.logger.Error("template execution failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// renderMarkdown converts markdown text to HTML using goldmark. On
// conversion failure the raw text is HTML-escaped instead.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// formatTime formats a Unix timestamp as "2006-01-02 15:04" UTC.
func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}
