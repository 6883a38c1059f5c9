package http

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/couchcryptid/collision-dashboard/internal/chart"
	"github.com/couchcryptid/collision-dashboard/internal/domain"
	"github.com/couchcryptid/collision-dashboard/internal/rawdata"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// query parses and validates the request parameters, answering 400 on failure.
func (s *Server) query(w http.ResponseWriter, r *http.Request) (panelQuery, bool) {
	q, err := parseQuery(r.URL.Query())
	if err == nil {
		err = s.validate.Struct(q)
	}
	if err == nil && q.Rows > s.dashboard.DefaultRows() {
		err = fmt.Errorf("invalid rows %d: must be at most %d", q.Rows, s.dashboard.DefaultRows())
	}
	if err != nil {
		s.logger.Debug("rejected query",
			"request_id", RequestID(r.Context()),
			"query", r.URL.RawQuery,
			"error", err,
		)
		writeError(w, http.StatusBadRequest, err.Error())
		return q, false
	}
	return q, true
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	q, ok := s.query(w, r)
	if !ok {
		return
	}
	summary, err := s.dashboard.Summary(r.Context(), q.Rows)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, summary)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	q, ok := s.query(w, r)
	if !ok {
		return
	}
	p, _ := domain.ParsePerspective(q.Perspective)
	panel, err := s.dashboard.Map(r.Context(), q.Rows, p, q.Min)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, panel)
}

func (s *Server) handleHour(w http.ResponseWriter, r *http.Request) {
	q, ok := s.query(w, r)
	if !ok {
		return
	}
	panel, err := s.dashboard.Hour(r.Context(), q.Rows, q.Hour)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, panel)
}

func (s *Server) handleMinutes(w http.ResponseWriter, r *http.Request) {
	q, ok := s.query(w, r)
	if !ok {
		return
	}
	panel, err := s.dashboard.Minutes(r.Context(), q.Rows, q.Hour)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, panel)
}

func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	q, ok := s.query(w, r)
	if !ok {
		return
	}
	format, _ := rawdata.ParseFormat(q.Format)
	records, err := s.dashboard.Raw(r.Context(), q.Rows, q.Hour)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := rawdata.Write(&buf, format, records); err != nil {
		s.internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	if format != rawdata.JSON {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename(q.Hour)))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck // client may have gone away
}

func (s *Server) handleStreets(w http.ResponseWriter, r *http.Request) {
	q, ok := s.query(w, r)
	if !ok {
		return
	}
	class, _ := domain.ParseClass(q.Class)
	p, _ := domain.ParsePerspective(q.Perspective)
	panel, err := s.dashboard.Streets(r.Context(), q.Rows, class, p, q.hour())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, panel)
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	q, ok := s.query(w, r)
	if !ok {
		return
	}
	cat, _ := domain.ParseCategory(q.Category)
	panel, err := s.dashboard.Top(r.Context(), q.Rows, cat)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, panel)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	q, ok := s.query(w, r)
	if !ok {
		return
	}
	panel, err := s.dashboard.Trend(r.Context(), q.Rows, q.Years)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, panel)
}

func (s *Server) handleMinutesChart(w http.ResponseWriter, r *http.Request) {
	q, ok := s.query(w, r)
	if !ok {
		return
	}
	panel, err := s.dashboard.Minutes(r.Context(), q.Rows, q.Hour)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := chart.MinuteHistogram(&buf, panel.Hour, panel.Buckets); err != nil {
		s.internalError(w, r, err)
		return
	}
	writePNG(w, &buf)
}

func (s *Server) handleTopChart(w http.ResponseWriter, r *http.Request) {
	q, ok := s.query(w, r)
	if !ok {
		return
	}
	cat, _ := domain.ParseCategory(q.Category)
	panel, err := s.dashboard.Top(r.Context(), q.Rows, cat)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := chart.TopCategories(&buf, panel.Category, panel.Counts); err != nil {
		s.internalError(w, r, err)
		return
	}
	writePNG(w, &buf)
}

func (s *Server) handleTrendChart(w http.ResponseWriter, r *http.Request) {
	q, ok := s.query(w, r)
	if !ok {
		return
	}
	panel, err := s.dashboard.Trend(r.Context(), q.Rows, q.Years)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := chart.Trend(&buf, panel.Series); err != nil {
		s.internalError(w, r, err)
		return
	}
	writePNG(w, &buf)
}

func writePNG(w http.ResponseWriter, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck // client may have gone away
}
