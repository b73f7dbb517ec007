// internal/api/content.go
package api

import (
	"encoding/json"
	"net/http"

	"idea-lab/internal/common/genai"
	"idea-lab/internal/models"
)

type ideaRequest struct {
	Idea     models.BusinessIdea `json:"idea"`
	Language string              `json:"language"`
}

func (s *Server) generateCanvas(w http.ResponseWriter, r *http.Request, userID string) {
	var req ideaRequest
	if err := decode(r, ideaRequestSchema, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	req.Idea.EnsureID()
	rec, err := s.deps.Canvas.Generate(r.Context(), &req.Idea, s.language(req.Language))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if rec == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) latestCanvas(w http.ResponseWriter, r *http.Request, userID string) {
	var req ideaRequest
	if err := decode(r, ideaRequestSchema, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	req.Idea.EnsureID()
	rec, err := s.deps.Canvas.Latest(r.Context(), &req.Idea)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) generateFunding(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		ideaRequest
		Amount float64 `json:"amount"`
	}
	if err := decode(r, fundingSchema, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	req.Idea.EnsureID()
	plan, err := s.deps.Funding.Generate(r.Context(), &req.Idea, req.Amount, s.language(req.Language))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if plan == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) fundingPlan(w http.ResponseWriter, r *http.Request, userID string) {
	var req ideaRequest
	if err := decode(r, ideaRequestSchema, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	req.Idea.EnsureID()
	plan, err := s.deps.Funding.Plan(r.Context(), &req.Idea)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) fundingStatus(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		Idea   models.BusinessIdea    `json:"idea"`
		Index  int                    `json:"index"`
		Status models.MilestoneStatus `json:"status"`
	}
	if err := decode(r, fundingStatusSchema, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	req.Idea.EnsureID()
	plan, err := s.deps.Funding.UpdateStatus(r.Context(), &req.Idea, req.Index, req.Status)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

type chatFrame struct {
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// chat streams newline-delimited JSON frames: {"text": ...} per fragment and
// a final {"error": ...} if the stream fails after it started.
func (s *Server) chat(w http.ResponseWriter, r *http.Request, userID string) {
	var req genai.ChatRequest
	if err := decode(r, chatSchema, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	req.Language = s.language(req.Language)

	rc := http.NewResponseController(w)
	enc := json.NewEncoder(w)
	started := false
	for chunk, err := range s.deps.Ideas.StreamChat(r.Context(), req) {
		if err != nil {
			if !started {
				writeError(w, s.logger, err)
				return
			}
			s.logger.Warn("chat stream failed", map[string]interface{}{"userId": userID, "error": err})
			_ = enc.Encode(chatFrame{Error: err.Error()})
			_ = rc.Flush()
			return
		}
		if !started {
			w.Header().Set("Content-Type", "application/x-ndjson")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		if err := enc.Encode(chatFrame{Text: chunk}); err != nil {
			return
		}
		_ = rc.Flush()
	}
	if !started {
		w.Header().Set("Content-Type", "application/x-ndjson")
		w.WriteHeader(http.StatusOK)
	}
}
