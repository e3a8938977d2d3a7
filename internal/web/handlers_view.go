package web

import (
	"net/http"

	"github.com/JonMunkholm/productview/internal/core"
	"github.com/JonMunkholm/productview/internal/logging"
)

// columnResponse describes one catalogue column.
type columnResponse struct {
	ID     core.ColumnID `json:"id"`
	Header string        `json:"header"`
	Kind   string        `json:"kind"`
}

// handleHealth reports liveness. An empty store is still healthy.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":  "ok",
		"records": s.service.Store().Len(),
	})
}

// handleColumns lists the column catalogue in display order.
func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	cols := core.Columns()
	resp := make([]columnResponse, len(cols))
	for i, c := range cols {
		resp[i] = columnResponse{ID: c.ID, Header: c.Header, Kind: c.Kind.String()}
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// handleFacets returns filter options for the loaded records.
func (s *Server) handleFacets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.Facets())
}

// handleStatus returns store, session and export limiter state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Records:  s.service.Store().Len(),
		Sessions: s.service.SessionCount(),
		Exports:  s.service.ExportLimiterStatus(),
	}
	if at := s.service.Store().LoadedAt(); !at.IsZero() {
		resp.LoadedAt = &at
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// handleView derives a view from query-string criteria.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	criteria, err := core.ParseCriteriaParams(r.URL.Query())
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	view := s.service.View(criteria)
	writeJSON(w, r, http.StatusOK, toViewResponse(view))
}

// handleExport streams the CSV rendering of a query-string view.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	criteria, err := core.ParseCriteriaParams(r.URL.Query())
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	s.streamExport(w, r, func(tw *trackingWriter) (int, error) {
		return s.service.Export(r.Context(), tw, criteria)
	})
}

// streamExport sets download headers and runs export. Errors before the
// first byte become JSON error responses; later ones can only be logged.
func (s *Server) streamExport(w http.ResponseWriter, r *http.Request, export func(*trackingWriter) (int, error)) {
	setExportHeaders(w)
	tw := &trackingWriter{ResponseWriter: w}

	rows, err := export(tw)
	if err != nil {
		if !tw.wrote {
			respondError(w, r, err, statusFor(err))
			return
		}
		logging.FromContext(r.Context()).Error("export interrupted",
			"rows", rows,
			"error", err,
		)
		return
	}

	logging.FromContext(r.Context()).Debug("export complete", "rows", rows)
}
