package web

// handlers_sessions.go exposes server-side view sessions. Each mutation
// re-derives the view before responding, so the returned version always
// matches the returned rows.

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/productview/internal/core"
	"github.com/JonMunkholm/productview/internal/logging"
)

// handleCreateSession starts a session. Query-string criteria, if any,
// become its initial state.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	initial, err := core.ParseCriteriaParams(r.URL.Query())
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	sv := s.service.CreateSession(initial)
	logging.WithFields(r.Context(), "session_id", sv.ID).Info("session created")

	w.Header().Set("Location", "/api/sessions/"+sv.ID)
	writeJSON(w, r, http.StatusCreated, toSessionResponse(sv))
}

// handleGetSession returns a session's current view.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sv, err := s.service.Session(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, http.StatusOK, toSessionResponse(sv))
}

// handleDeleteSession discards a session.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.service.DeleteSession(id); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	logging.WithFields(r.Context(), "session_id", id).Info("session deleted")
	w.WriteHeader(http.StatusNoContent)
}

// handlePatchCriteria applies a partial criteria document.
func (s *Server) handlePatchCriteria(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r, maxPatchBody)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	patch, err := core.DecodeCriteriaPatch(body)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	s.updateSession(w, r, patch.Apply)
}

// handleToggleColumn flips one column's visibility.
func (s *Server) handleToggleColumn(w http.ResponseWriter, r *http.Request) {
	col, ok := core.ParseColumnID(chi.URLParam(r, "column"))
	if !ok {
		err := fmt.Errorf("%w: unknown column %q", core.ErrInvalidCriteria, chi.URLParam(r, "column"))
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	s.updateSession(w, r, func(c core.CriteriaSet) (core.CriteriaSet, error) {
		return c.ToggleColumn(col), nil
	})
}

// handleResetSession restores the neutral criteria.
func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	s.updateSession(w, r, func(c core.CriteriaSet) (core.CriteriaSet, error) {
		return c.Reset(), nil
	})
}

// handleSessionExport streams the session's current rows as CSV.
func (s *Server) handleSessionExport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.streamExport(w, r, func(tw *trackingWriter) (int, error) {
		return s.service.ExportSession(r.Context(), tw, id)
	})
}

// updateSession applies fn to the session and writes the result.
// A validation error from fn leaves the session untouched.
func (s *Server) updateSession(w http.ResponseWriter, r *http.Request, fn func(core.CriteriaSet) (core.CriteriaSet, error)) {
	id := chi.URLParam(r, "id")

	sv, err := s.service.TryUpdateSession(id, fn)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	logging.WithFields(r.Context(), "session_id", id).Debug("session updated",
		"version", sv.Version,
		"matched", sv.View.Matched,
	)
	writeJSON(w, r, http.StatusOK, toSessionResponse(sv))
}
