package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a session ID is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// RecordSource supplies the raw record collection. It is called once per load.
type RecordSource interface {
	Name() string
	Fetch(ctx context.Context) ([]RecordInput, error)
}

// Recorder receives operational measurements from the service.
// A nil Recorder disables measurement.
type Recorder interface {
	ObserveLoad(report LoadReport, err error)
	ObserveDerive(elapsed time.Duration, matched, total int)
	ObserveExport(rows int, bytes int64, err error)
	SetSessions(n int)
}

// ServiceConfig holds the tunables of a Service. Zero values select defaults.
type ServiceConfig struct {
	Exporter             Exporter
	MaxConcurrentExports int
	ExportWaitTime       time.Duration
	Recorder             Recorder
}

// Service is the controller wiring criteria changes to view derivation.
// It owns the record store and the set of live view sessions.
type Service struct {
	store    *RecordStore
	exporter Exporter
	limiter  *ExportLimiter
	recorder Recorder

	mu       sync.RWMutex
	sessions map[string]*session
}

// session is one client's evolving criteria set.
type session struct {
	mu        sync.Mutex
	id        string
	criteria  CriteriaSet
	version   uint64
	createdAt time.Time
	lastSeen  time.Time
}

// SessionView is the state of a session after its latest derivation.
type SessionView struct {
	ID        string      `json:"id"`
	Version   uint64      `json:"version"`
	Criteria  CriteriaSet `json:"criteria"`
	View      DerivedView `json:"-"`
	CreatedAt time.Time   `json:"createdAt"`
}

// NewService creates a Service with an empty record store.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		store:    NewRecordStore(nil),
		exporter: cfg.Exporter,
		limiter:  NewExportLimiter(cfg.MaxConcurrentExports, cfg.ExportWaitTime),
		recorder: cfg.Recorder,
		sessions: make(map[string]*session),
	}
}

// Store returns the service's record store.
func (s *Service) Store() *RecordStore {
	return s.store
}

// Load fetches the record collection from src and replaces the store.
// On failure the store keeps its current contents and the error is
// returned: empty before the first successful load, the previous dataset
// after it.
func (s *Service) Load(ctx context.Context, src RecordSource) (LoadReport, error) {
	start := time.Now()
	report := LoadReport{Source: src.Name()}

	inputs, err := src.Fetch(ctx)
	if err != nil {
		report.Duration = time.Since(start)
		s.observeLoad(report, err)
		slog.Error("record load failed",
			"source", src.Name(),
			"error", err,
		)
		return report, fmt.Errorf("load records from %s: %w", src.Name(), err)
	}

	records, skipped := BuildRecords(inputs)
	s.store.Replace(records)

	report.Received = len(inputs)
	report.Loaded = len(records)
	report.Skipped = skipped
	report.Duration = time.Since(start)
	s.observeLoad(report, nil)

	for _, sk := range skipped {
		slog.Debug("skipped malformed record", "index", sk.Index, "reason", sk.Reason)
	}
	if len(skipped) > 0 {
		slog.Warn("malformed records skipped",
			"source", src.Name(),
			"skipped", len(skipped),
		)
	}
	slog.Info("records loaded",
		"source", src.Name(),
		"loaded", report.Loaded,
		"duration_ms", report.Duration.Milliseconds(),
	)

	return report, nil
}

// Facets returns filter options for the current record set.
func (s *Service) Facets() Facets {
	return ComputeFacets(s.store.Snapshot())
}

// View derives the view for c against the current record set.
func (s *Service) View(c CriteriaSet) DerivedView {
	records := s.store.Snapshot()
	start := time.Now()
	view := Derive(records, c)
	if s.recorder != nil {
		s.recorder.ObserveDerive(time.Since(start), view.Matched, view.Total)
	}
	return view
}

// Export derives the view for c and writes its rows to w.
// Concurrent exports are bounded; ErrTooManyExports is returned when no
// slot frees up in time.
func (s *Service) Export(ctx context.Context, w io.Writer, c CriteriaSet) (int, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return 0, err
	}
	defer s.limiter.Release()

	view := s.View(c)
	n, err := s.exporter.Stream(w, view.Rows)
	if s.recorder != nil {
		s.recorder.ObserveExport(len(view.Rows), n, err)
	}
	if err != nil {
		return len(view.Rows), fmt.Errorf("write export: %w", err)
	}
	return len(view.Rows), nil
}

// ExportLimiterStatus returns the current state of the export limiter.
func (s *Service) ExportLimiterStatus() ExportLimiterStatus {
	return s.limiter.Status()
}

// WaitForExports blocks until in-flight exports finish or ctx is done.
func (s *Service) WaitForExports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// CreateSession starts a new session with the given initial criteria.
func (s *Service) CreateSession(initial CriteriaSet) SessionView {
	now := time.Now()
	sess := &session{
		id:        uuid.New().String(),
		criteria:  initial,
		version:   1,
		createdAt: now,
		lastSeen:  now,
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	count := len(s.sessions)
	s.mu.Unlock()

	if s.recorder != nil {
		s.recorder.SetSessions(count)
	}
	slog.Debug("session created", "session_id", sess.id)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.derive(sess)
}

// Session returns the current view of a session.
func (s *Service) Session(id string) (SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return SessionView{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastSeen = time.Now()
	return s.derive(sess), nil
}

// UpdateSession applies fn to the session's criteria and re-derives.
// Updates to one session are serialized, so the returned view always
// reflects the latest criteria at the time it was computed.
func (s *Service) UpdateSession(id string, fn func(CriteriaSet) CriteriaSet) (SessionView, error) {
	return s.TryUpdateSession(id, func(c CriteriaSet) (CriteriaSet, error) {
		return fn(c), nil
	})
}

// TryUpdateSession is UpdateSession for changes that can be rejected.
// When fn fails the session keeps its criteria and version.
func (s *Service) TryUpdateSession(id string, fn func(CriteriaSet) (CriteriaSet, error)) (SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return SessionView{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastSeen = time.Now()

	next, err := fn(sess.criteria)
	if err != nil {
		return SessionView{}, err
	}
	sess.criteria = next
	sess.version++
	return s.derive(sess), nil
}

// ExportSession writes the session's current rows to w.
func (s *Service) ExportSession(ctx context.Context, w io.Writer, id string) (int, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return 0, err
	}

	sess.mu.Lock()
	criteria := sess.criteria
	sess.lastSeen = time.Now()
	sess.mu.Unlock()

	return s.Export(ctx, w, criteria)
}

// DeleteSession discards a session.
func (s *Service) DeleteSession(id string) error {
	s.mu.Lock()
	if _, ok := s.sessions[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	count := len(s.sessions)
	s.mu.Unlock()

	if s.recorder != nil {
		s.recorder.SetSessions(count)
	}
	return nil
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// lookup finds a session by ID.
func (s *Service) lookup(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// derive computes the session's view. Caller must hold sess.mu.
func (s *Service) derive(sess *session) SessionView {
	return SessionView{
		ID:        sess.id,
		Version:   sess.version,
		Criteria:  sess.criteria,
		View:      s.View(sess.criteria),
		CreatedAt: sess.createdAt,
	}
}

// evictIdle removes sessions not seen within ttl and returns how many were removed.
func (s *Service) evictIdle(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	s.mu.Lock()
	var evicted int
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.lastSeen.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			evicted++
		}
	}
	count := len(s.sessions)
	s.mu.Unlock()

	if evicted > 0 && s.recorder != nil {
		s.recorder.SetSessions(count)
	}
	return evicted
}

func (s *Service) observeLoad(report LoadReport, err error) {
	if s.recorder != nil {
		s.recorder.ObserveLoad(report, err)
	}
}
