package internal

import (
	"embed"
	"html/template"
	"net/http"
	"talky/repositories"
	"time"
)

//go:embed inspect.html
var templatesFS embed.FS

type SummaryLister interface {
	ListSummaries() ([]repositories.CachedSummary, error)
}

type InspectRow struct {
	Hash      string
	Summary   string
	ExpiresIn string
}

type PageData struct {
	Items []InspectRow
	Error string
}

// InspectHandler renders the summary cache as an HTML table.
func InspectHandler(lister SummaryLister) http.Handler {
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		var data PageData
		summaries, err := lister.ListSummaries()
		if err != nil {
			data.Error = err.Error()
		}
		now := time.Now()
		for _, s := range summaries {
			data.Items = append(data.Items, toInspectRow(s, now))
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})
}

func toInspectRow(s repositories.CachedSummary, now time.Time) InspectRow {
	row := InspectRow{Hash: s.TextHash, Summary: s.Summary, ExpiresIn: "never"}
	if len(row.Hash) > 12 {
		row.Hash = row.Hash[:12]
	}
	if !s.ExpiresAt.IsZero() {
		row.ExpiresIn = s.ExpiresAt.Sub(now).Round(time.Second).String()
	}
	return row
}
