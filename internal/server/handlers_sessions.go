package server

import (
	"log"
	"net/http"
	"time"

	"github.com/jonathan/screeniq/internal/media"
	"github.com/jonathan/screeniq/internal/types"
)

// pingInterval keeps idle event streams open through proxies.
const pingInterval = 15 * time.Second

// CameraRequest reports the outcome of the browser's permission prompt.
type CameraRequest struct {
	Granted bool `json:"granted"`
}

// AnswerRequest records an answer for the current question.
type AnswerRequest struct {
	Value      string                `json:"value"`
	Confidence types.ConfidenceLevel `json:"confidence,omitempty"`
}

// VisibilityRequest reports a page-visibility change.
type VisibilityRequest struct {
	State media.Visibility `json:"state"`
}

// session looks up the path's session, writing a 404 when it is unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session, bool) {
	id := r.PathValue("id")
	sess, ok := s.sessions.get(id)
	if !ok {
		s.handleError(w, &ErrNotFound{Kind: "session", ID: id})
		return nil, false
	}
	return sess, true
}

// respondView writes the session's current view, or err when it is non-nil.
func (s *Server) respondView(w http.ResponseWriter, sess *session, err error) {
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.ctrl.Snapshot())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.ctrl.Snapshot())
}

func (s *Server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	events, cancel := sess.hub.subscribe()
	defer cancel()

	// The first frame is the current view, so late subscribers start in sync.
	view := sess.ctrl.Snapshot()
	if err := sse.WriteEvent(EventState, stateEvent{From: view.State, To: view.State, View: view}); err != nil {
		return
	}
	if view.Outcome != nil {
		sse.WriteEvent(EventComplete, view.Outcome) //nolint:errcheck
		return
	}

	ping := s.clock.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case ev, open := <-events:
			if !open {
				sse.WriteEvent(EventClosed, map[string]string{"session_id": sess.ctrl.ID()}) //nolint:errcheck
				return
			}
			if err := sse.WriteEvent(ev.Name, ev.Data); err != nil {
				log.Printf("[server] session %s: event stream write failed: %v", sess.ctrl.ID(), err)
				return
			}
		case <-ping.Chan():
			if err := sse.WritePing(); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) handleSystemCheck(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.respondView(w, sess, sess.ctrl.StartSystemCheck())
}

func (s *Server) handleCamera(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req CameraRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, err)
		return
	}
	sess.camera.Report(req.Granted)
	s.respondView(w, sess, sess.ctrl.RequestCamera(r.Context()))
}

func (s *Server) handleBegin(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.respondView(w, sess, sess.ctrl.BeginTest())
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req AnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, err)
		return
	}
	if !req.Confidence.Valid() {
		s.handleError(w, &ErrValidation{Field: "confidence", Message: "unknown confidence level"})
		return
	}
	s.respondView(w, sess, sess.ctrl.RecordAnswer(req.Value, req.Confidence))
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.respondView(w, sess, sess.ctrl.Next())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	outcome, err := sess.ctrl.Submit(r.Context())
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, outcome)
}

func (s *Server) handleVisibility(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req VisibilityRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, err)
		return
	}
	if req.State != media.Visible && req.State != media.Hidden {
		s.handleError(w, &ErrValidation{Field: "state", Message: "must be visible or hidden"})
		return
	}
	sess.visibility.Publish(req.State)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.sessions.remove(id) {
		s.handleError(w, &ErrNotFound{Kind: "session", ID: id})
		return
	}
	log.Printf("[server] session %s closed", id)
	w.WriteHeader(http.StatusNoContent)
}
