package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/cv-tailor/internal/pipeline"
	"github.com/jonathan/cv-tailor/internal/store"
	"github.com/jonathan/cv-tailor/internal/types"
)

// generateRequest is the request body for the generation endpoints.
// Exactly one of JobText and JobURL must be set.
type generateRequest struct {
	JobText    string `json:"job_text,omitempty"`
	JobURL     string `json:"job_url,omitempty"`
	MaxBullets int    `json:"max_bullets,omitempty"`
	// Kind is only read by the streaming endpoint; the REST endpoints
	// carry the kind in the path.
	Kind string `json:"kind,omitempty"`
}

func (req *generateRequest) jobInput() (string, error) {
	switch {
	case req.JobText != "" && req.JobURL != "":
		return "", fmt.Errorf("job_text and job_url are mutually exclusive")
	case req.JobText != "":
		return req.JobText, nil
	case req.JobURL != "":
		return req.JobURL, nil
	default:
		return "", fmt.Errorf("one of job_text or job_url is required")
	}
}

func (s *Server) handleGenerateCV(w http.ResponseWriter, r *http.Request) {
	s.handleGenerate(w, r, types.KindCV)
}

func (s *Server) handleGenerateCoverLetter(w http.ResponseWriter, r *http.Request) {
	s.handleGenerate(w, r, types.KindCoverLetter)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, kind types.DocumentKind) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	input, err := req.jobInput()
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := s.pipeline.Run(r.Context(), pipeline.Options{
		JobInput:   input,
		Kind:       kind,
		MaxBullets: s.effectiveMaxBullets(req.MaxBullets),
	})
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, doc)
}

// handleGenerateStream runs a generation and streams progress events over SSE,
// finishing with the composed document.
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	kind := types.DocumentKind(req.Kind)
	if !kind.Valid() {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("unknown kind: %q", req.Kind))
		return
	}

	input, err := req.jobInput()
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	doc, err := s.pipeline.Run(r.Context(), pipeline.Options{
		JobInput:   input,
		Kind:       kind,
		MaxBullets: s.effectiveMaxBullets(req.MaxBullets),
		OnProgress: func(event pipeline.ProgressEvent) {
			sse.WriteEvent("progress", event) //nolint:errcheck
		},
	})
	if err != nil {
		sse.WriteError(err.Error())
		return
	}

	sse.WriteEvent("document", doc) //nolint:errcheck
	sse.WriteComplete(string(kind), "completed")
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "persistence is not configured")
		return
	}

	filters := store.RunFilters{
		Company: r.URL.Query().Get("company"),
		Status:  r.URL.Query().Get("status"),
	}
	runs, err := s.store.ListRuns(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	s.jsonResponse(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "persistence is not configured")
		return
	}

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid run ID")
		return
	}

	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		s.errorResponse(w, http.StatusNotFound, "run not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, run)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "persistence is not configured")
		return
	}

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid run ID")
		return
	}

	kind := types.DocumentKind(strings.TrimSpace(r.URL.Query().Get("kind")))
	if kind == "" {
		kind = types.KindCV
	}
	if !kind.Valid() {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("unknown kind: %q", kind))
		return
	}

	doc, err := s.store.GetDocument(r.Context(), runID, kind)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if doc == nil {
		s.errorResponse(w, http.StatusNotFound, "document not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, doc)
}

func (s *Server) effectiveMaxBullets(requested int) int {
	if requested > 0 {
		return requested
	}
	return s.maxBullets
}
