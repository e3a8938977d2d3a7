package web

// handlers_common.go contains response shapes and helpers shared by the
// view and session handlers.

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/JonMunkholm/productview/internal/core"
	"github.com/JonMunkholm/productview/internal/logging"
)

// maxPatchBody bounds criteria patch documents.
const maxPatchBody = 64 * 1024

// groupResponse locates one group inside viewResponse.Rows.
type groupResponse struct {
	Key    []string `json:"key"`
	Offset int      `json:"offset"`
	Count  int      `json:"count"`
}

// viewResponse is the JSON rendering of a derived view.
type viewResponse struct {
	Columns       []core.ColumnState `json:"columns"`
	Rows          []core.Record      `json:"rows"`
	Groups        []groupResponse    `json:"groups"`
	GroupBy       []core.ColumnID    `json:"groupBy"`
	SortKey       core.ColumnID      `json:"sortKey,omitempty"`
	SortAscending bool               `json:"sortAscending"`
	Total         int                `json:"total"`
	Matched       int                `json:"matched"`
}

// sessionResponse is a session together with its current view.
type sessionResponse struct {
	ID        string           `json:"id"`
	Version   uint64           `json:"version"`
	Criteria  core.CriteriaSet `json:"criteria"`
	CreatedAt time.Time        `json:"createdAt"`
	View      viewResponse     `json:"view"`
}

// statusResponse reports store and limiter state.
type statusResponse struct {
	Records  int                      `json:"records"`
	LoadedAt *time.Time               `json:"loadedAt,omitempty"`
	Sessions int                      `json:"sessions"`
	Exports  core.ExportLimiterStatus `json:"exports"`
}

func toViewResponse(v core.DerivedView) viewResponse {
	resp := viewResponse{
		Columns:       v.Columns,
		Rows:          v.Rows,
		Groups:        make([]groupResponse, 0, len(v.Groups)),
		GroupBy:       v.GroupBy,
		SortKey:       v.SortKey,
		SortAscending: v.SortAscending,
		Total:         v.Total,
		Matched:       v.Matched,
	}
	if resp.Rows == nil {
		resp.Rows = []core.Record{}
	}
	if resp.GroupBy == nil {
		resp.GroupBy = []core.ColumnID{}
	}

	offset := 0
	for _, g := range v.Groups {
		resp.Groups = append(resp.Groups, groupResponse{
			Key:    g.Key,
			Offset: offset,
			Count:  len(g.Rows),
		})
		offset += len(g.Rows)
	}
	return resp
}

func toSessionResponse(sv core.SessionView) sessionResponse {
	return sessionResponse{
		ID:        sv.ID,
		Version:   sv.Version,
		Criteria:  sv.Criteria,
		CreatedAt: sv.CreatedAt,
		View:      toViewResponse(sv.View),
	}
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}

// readBody reads a bounded request body.
func readBody(r *http.Request, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: request body exceeds %d bytes", core.ErrInvalidCriteria, limit)
	}
	return data, nil
}

// setExportHeaders marks the response as a CSV download.
func setExportHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", core.ExportContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, core.ExportFileName))
}

// trackingWriter records whether any byte reached the client, so a failed
// export can still be answered with a JSON error if nothing was sent.
type trackingWriter struct {
	http.ResponseWriter
	wrote bool
}

func (w *trackingWriter) Write(b []byte) (int, error) {
	w.wrote = true
	return w.ResponseWriter.Write(b)
}

func (w *trackingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
