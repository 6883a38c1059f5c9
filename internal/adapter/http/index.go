package http

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/couchcryptid/collision-dashboard/internal/dashboard"
	"github.com/couchcryptid/collision-dashboard/internal/domain"
)

var (
	//go:embed templates/index.html
	templateFS embed.FS

	//go:embed static
	staticFS embed.FS
)

var indexTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
}).ParseFS(templateFS, "templates/index.html"))

type option struct {
	Value string
	Label string
}

type indexData struct {
	Summary      dashboard.Summary
	Perspectives []option
	Classes      []option
	Categories   []option
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	summary, err := s.dashboard.Summary(r.Context(), 0)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	data := indexData{
		Summary: summary,
		Perspectives: []option{
			{string(domain.Killed), "Number of people killed"},
			{string(domain.Injured), "Number of people injured"},
		},
		Classes: []option{
			{string(domain.Pedestrians), "Pedestrians"},
			{string(domain.Cyclists), "Cyclists"},
			{string(domain.Motorists), "Motorists"},
		},
	}
	for _, c := range []domain.Category{domain.VehicleTypes, domain.ContributingFactors, domain.StreetNames} {
		data.Categories = append(data.Categories, option{string(c), c.Label()})
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		s.internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck // client may have gone away
}
