package server

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/jonathan/screeniq/internal/events"
	"github.com/jonathan/screeniq/internal/flow"
	"github.com/jonathan/screeniq/internal/media"
	"github.com/jonathan/screeniq/internal/types"
)

// abandonFactor multiplies the TTL to get the age at which an unfinished session is
// treated as abandoned.
const abandonFactor = 4

// session is one running assessment and the client-driven devices behind it.
type session struct {
	ctrl       *flow.Controller
	camera     *media.ReportedCamera
	visibility *media.VisibilityBus
	hub        *hub

	mu         sync.Mutex
	createdAt  time.Time
	finishedAt time.Time
}

func (s *session) finish(at time.Time) {
	s.mu.Lock()
	s.finishedAt = at
	s.mu.Unlock()
}

func (s *session) expired(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finishedAt.IsZero() {
		return now.Sub(s.finishedAt) > ttl
	}
	return now.Sub(s.createdAt) > abandonFactor*ttl
}

func (s *session) close() {
	s.ctrl.Close()
	s.hub.close()
}

// registry tracks live sessions by id.
type registry struct {
	clock clockwork.Clock
	ttl   time.Duration

	mu       sync.RWMutex
	sessions map[string]*session
}

func newRegistry(clock clockwork.Clock, ttl time.Duration) *registry {
	return &registry{clock: clock, ttl: ttl, sessions: make(map[string]*session)}
}

func (r *registry) add(s *session) {
	r.mu.Lock()
	r.sessions[s.ctrl.ID()] = s
	r.mu.Unlock()
}

func (r *registry) get(id string) (*session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// remove closes and forgets the session. It reports whether it existed.
func (r *registry) remove(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.close()
	}
	return ok
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// sweep closes sessions that finished more than ttl ago, or were abandoned, and
// returns how many it removed.
func (r *registry) sweep() int {
	now := r.clock.Now()
	var stale []*session

	r.mu.Lock()
	for id, s := range r.sessions {
		if s.expired(now, r.ttl) {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.close()
	}
	return len(stale)
}

func (r *registry) closeAll() {
	r.mu.Lock()
	all := make([]*session, 0, len(r.sessions))
	for id, s := range r.sessions {
		all = append(all, s)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, s := range all {
		s.close()
	}
}

// stateEvent is streamed to subscribers on every transition.
type stateEvent struct {
	From flow.State `json:"from"`
	To   flow.State `json:"to"`
	View flow.View  `json:"view"`
}

// newSession builds a controller for job whose camera and visibility are reported
// by the client, and wires its observers to SSE, the store and the event publisher.
func (s *Server) newSession(job types.Job) (*session, error) {
	sess := &session{
		camera:     &media.ReportedCamera{},
		visibility: media.NewVisibilityBus(),
		hub:        newHub(),
		createdAt:  s.clock.Now(),
	}

	opts := s.opts
	opts.OnStateChange = func(from, to flow.State) {
		sess.hub.broadcast(EventState, stateEvent{From: from, To: to, View: sess.ctrl.Snapshot()})
		s.publish(context.Background(), events.Update{
			Type:      events.TypeStateChanged,
			SessionID: sess.ctrl.ID(),
			JobID:     job.ID,
			From:      string(from),
			To:        string(to),
			At:        s.clock.Now(),
		})
	}
	opts.OnComplete = func(outcome types.SessionOutcome) {
		s.store.MergeOutcome(context.Background(), outcome)
		sess.finish(s.clock.Now())
		sess.hub.broadcast(EventComplete, outcome)
		s.publish(context.Background(), events.Update{
			Type:      events.TypeCompleted,
			SessionID: outcome.SessionID,
			JobID:     outcome.JobID,
			Outcome:   &outcome,
			At:        s.clock.Now(),
		})
		sess.hub.close()
	}

	ctrl, err := flow.New(job, flow.Deps{
		Generator:  s.assessor,
		Camera:     sess.camera,
		Visibility: sess.visibility,
		Resume:     s.resume,
		Clock:      s.clock,
	}, opts)
	if err != nil {
		return nil, err
	}
	sess.ctrl = ctrl
	s.sessions.add(sess)
	return sess, nil
}
