package server

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/jonathan/screeniq/internal/store"
	"github.com/jonathan/screeniq/internal/types"
)

// StatusRequest is the body of PUT /candidates/{id}/applications/{job_id}/status.
type StatusRequest struct {
	Status types.CandidateStatus `json:"status"`
}

// InterviewScriptRequest optionally narrows the skills an interview script targets.
type InterviewScriptRequest struct {
	Skills []string `json:"skills,omitempty"`
}

// InterviewScriptResponse is returned by the interview-script endpoint.
type InterviewScriptResponse struct {
	CandidateID string `json:"candidate_id"`
	JobID       string `json:"job_id"`
	Script      string `json:"script"`
}

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates := s.store.Candidates(r.Context())
	if jobID := r.URL.Query().Get("job_id"); jobID != "" {
		filtered := candidates[:0]
		for _, c := range candidates {
			if c.Application(jobID) != nil {
				filtered = append(filtered, c)
			}
		}
		candidates = filtered
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"candidates": candidates, "count": len(candidates)})
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	c := s.store.Candidate(r.Context(), id)
	if c == nil {
		s.handleError(w, &ErrNotFound{Kind: "candidate", ID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, c)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	candidateID, jobID := r.PathValue("id"), r.PathValue("job_id")

	var req StatusRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, err)
		return
	}
	if !req.Status.Valid() {
		s.handleError(w, &ErrValidation{Field: "status", Message: "unknown status " + string(req.Status)})
		return
	}

	app, err := s.store.UpdateStatus(r.Context(), candidateID, jobID, req.Status)
	if errors.Is(err, store.ErrNotFound) {
		s.handleError(w, &ErrNotFound{Kind: "application", ID: candidateID + "/" + jobID})
		return
	}
	if err != nil {
		s.handleError(w, err)
		return
	}
	log.Printf("[server] candidate %s on job %s moved to %s", candidateID, jobID, req.Status)
	s.jsonResponse(w, http.StatusOK, app)
}

func (s *Server) handleInterviewScript(w http.ResponseWriter, r *http.Request) {
	candidateID, jobID := r.PathValue("id"), r.PathValue("job_id")

	var req InterviewScriptRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			s.handleError(w, err)
			return
		}
	}

	job := s.store.Job(r.Context(), jobID)
	if job == nil {
		s.handleError(w, &ErrNotFound{Kind: "job", ID: jobID})
		return
	}
	c := s.store.Candidate(r.Context(), candidateID)
	if c == nil {
		s.handleError(w, &ErrNotFound{Kind: "candidate", ID: candidateID})
		return
	}
	app := c.Application(jobID)
	if app == nil {
		s.handleError(w, &ErrNotFound{Kind: "application", ID: candidateID + "/" + jobID})
		return
	}

	skills := req.Skills
	if len(skills) == 0 {
		skills = job.Skills
	}
	script, err := s.assessor.GenerateInterviewScript(r.Context(), job, app.Feedback, skills)
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, "interview script generation failed: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, InterviewScriptResponse{
		CandidateID: c.ID,
		JobID:       jobID,
		Script:      strings.TrimSpace(script),
	})
}
