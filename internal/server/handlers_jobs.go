package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/jonathan/screeniq/internal/flow"
	"github.com/jonathan/screeniq/internal/report"
	"github.com/jonathan/screeniq/internal/types"
)

// CreateJobRequest is the body of POST /jobs.
type CreateJobRequest struct {
	types.Job
	// Optimize rewrites the description with the AI service before storing it.
	Optimize bool `json:"optimize,omitempty"`
}

// CreateJobResponse is returned by POST /jobs.
type CreateJobResponse struct {
	Job     types.Job `json:"job"`
	Warning string    `json:"warning,omitempty"`
}

// StartSessionResponse is returned by POST /jobs/{id}/sessions.
type StartSessionResponse struct {
	SessionID string    `json:"session_id"`
	View      flow.View `json:"view"`
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.store.Jobs(r.Context())
	if status := r.URL.Query().Get("status"); status != "" {
		filtered := jobs[:0]
		for _, j := range jobs {
			if string(j.Status) == status {
				filtered = append(filtered, j)
			}
		}
		jobs = filtered
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"jobs": jobs, "count": len(jobs)})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job := s.store.Job(r.Context(), id)
	if job == nil {
		s.handleError(w, &ErrNotFound{Kind: "job", ID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, err)
		return
	}
	job := req.Job
	if job.ID != "" && s.store.Job(r.Context(), job.ID) != nil {
		s.handleError(w, &ErrConflict{Kind: "job", ID: job.ID})
		return
	}
	if len(job.Skills) == 0 {
		s.handleError(w, &ErrValidation{Field: "skills", Message: "at least one skill is required"})
		return
	}

	resp := CreateJobResponse{}
	if req.Optimize {
		optimized, err := s.assessor.OptimizeJobDescription(r.Context(), &job)
		switch {
		case err != nil:
			log.Printf("[server] optimizing job description failed, keeping original: %v", err)
			resp.Warning = "description optimization failed; original kept"
		case strings.TrimSpace(optimized) != "":
			job.Description = strings.TrimSpace(optimized)
		}
	}

	stored, err := s.store.AddJob(r.Context(), job)
	if err != nil {
		s.handleError(w, err)
		return
	}
	resp.Job = stored
	s.jsonResponse(w, http.StatusCreated, resp)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if s.store.Job(r.Context(), id) == nil {
		s.handleError(w, &ErrNotFound{Kind: "job", ID: id})
		return
	}
	entries := s.store.Leaderboard(r.Context(), id)
	s.jsonResponse(w, http.StatusOK, map[string]any{"job_id": id, "entries": entries})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job := s.store.Job(r.Context(), id)
	if job == nil {
		s.handleError(w, &ErrNotFound{Kind: "job", ID: id})
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-report.xlsx"`, job.ID))
	if err := report.Write(w, *job, s.store.Candidates(r.Context())); err != nil {
		// Headers may already be sent; log only.
		log.Printf("[server] writing report for job %s: %v", job.ID, err)
	}
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job := s.store.Job(r.Context(), id)
	if job == nil {
		s.handleError(w, &ErrNotFound{Kind: "job", ID: id})
		return
	}
	if !job.IsOpen() {
		s.handleError(w, &ErrJobClosed{JobID: id})
		return
	}

	var intake types.CandidateIntake
	if err := decodeJSON(r, &intake); err != nil {
		s.handleError(w, err)
		return
	}

	sess, err := s.newSession(*job)
	if err != nil {
		s.handleError(w, err)
		return
	}
	if err := sess.ctrl.SubmitIntake(r.Context(), intake); err != nil {
		s.sessions.remove(sess.ctrl.ID())
		s.handleError(w, err)
		return
	}

	log.Printf("[server] session %s started for job %s", sess.ctrl.ID(), job.ID)
	s.jsonResponse(w, http.StatusAccepted, StartSessionResponse{
		SessionID: sess.ctrl.ID(),
		View:      sess.ctrl.Snapshot(),
	})
}
