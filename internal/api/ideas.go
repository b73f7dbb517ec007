// internal/api/ideas.go
package api

import (
	"errors"
	"net/http"
	"strconv"

	"idea-lab/internal/models"
	"idea-lab/internal/repository"
	"idea-lab/internal/search"
)

type ideasResponse struct {
	Ideas []models.BusinessIdea `json:"ideas"`
}

func (s *Server) language(lang string) string {
	if lang == "" {
		return s.deps.DefaultLanguage
	}
	return lang
}

func (s *Server) generateIdeas(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		Industry string `json:"industry"`
		Language string `json:"language"`
	}
	if err := decode(r, generateIdeasSchema, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	ideas, err := s.deps.Ideas.GenerateIdeas(r.Context(), req.Industry, s.language(req.Language))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.index(r, ideas)
	writeJSON(w, http.StatusOK, ideasResponse{Ideas: nonNilIdeas(ideas)})
}

// personalizedIdeas uses the stored profile. A missing profile falls back
// to an empty one so the caller still gets suggestions.
func (s *Server) personalizedIdeas(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		Language string `json:"language"`
	}
	if r.ContentLength != 0 {
		if err := decode(r, nil, &req); err != nil {
			writeError(w, s.logger, err)
			return
		}
	}
	profile, err := s.deps.Profiles.Get(r.Context(), userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("profile read failed", map[string]interface{}{"userId": userID, "error": err})
		}
		profile = &models.UserProfile{UserID: userID}
	}
	lang := req.Language
	if lang == "" {
		lang = s.language(profile.Language)
	}
	ideas, err := s.deps.Ideas.GeneratePersonalizedIdeas(r.Context(), profile, lang)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.index(r, ideas)
	writeJSON(w, http.StatusOK, ideasResponse{Ideas: nonNilIdeas(ideas)})
}

// listIdeas never fails the request; a backend read failure yields an empty list.
func (s *Server) listIdeas(w http.ResponseWriter, r *http.Request, userID string) {
	opts := repository.ListOptions{SavedOnly: r.URL.Query().Get("saved") == "true"}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		opts.Limit = limit
	}
	ideas, err := s.deps.Store.List(r.Context(), userID, opts)
	if err != nil {
		s.logger.Warn("idea list failed, returning empty list", map[string]interface{}{
			"userId": userID,
			"error":  err,
		})
		ideas = nil
	}
	writeJSON(w, http.StatusOK, ideasResponse{Ideas: nonNilIdeas(ideas)})
}

func (s *Server) saveIdea(w http.ResponseWriter, r *http.Request, userID string) {
	var idea models.BusinessIdea
	if err := decode(r, ideaBodySchema, &idea); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := s.deps.Store.Save(r.Context(), userID, &idea); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, idea)
}

func (s *Server) deleteIdea(w http.ResponseWriter, r *http.Request, userID string) {
	if err := s.deps.Store.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) upvoteIdea(w http.ResponseWriter, r *http.Request, userID string) {
	n, voted, err := s.deps.Store.Upvote(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"upvotes": n, "isUpvoted": voted})
}

func (s *Server) searchIdeas(w http.ResponseWriter, r *http.Request, userID string) {
	if s.deps.Search == nil {
		writeError(w, s.logger, errUnavailable)
		return
	}
	q := search.Query{
		Text:     r.URL.Query().Get("q"),
		Industry: r.URL.Query().Get("industry"),
	}
	q.Size, _ = strconv.Atoi(r.URL.Query().Get("size"))
	q.From, _ = strconv.Atoi(r.URL.Query().Get("from"))

	res, err := s.deps.Search.Search(r.Context(), q)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	res.Ideas = nonNilIdeas(res.Ideas)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request, userID string) {
	p, err := s.deps.Profiles.Get(r.Context(), userID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) putProfile(w http.ResponseWriter, r *http.Request, userID string) {
	var p models.UserProfile
	if err := decode(r, profileSchema, &p); err != nil {
		writeError(w, s.logger, err)
		return
	}
	p.UserID = userID
	if err := s.deps.Profiles.Upsert(r.Context(), &p); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) index(r *http.Request, ideas []models.BusinessIdea) {
	if s.deps.Search != nil && len(ideas) > 0 {
		s.deps.Search.IndexAsync(r.Context(), ideas...)
	}
}

func nonNilIdeas(ideas []models.BusinessIdea) []models.BusinessIdea {
	if ideas == nil {
		return []models.BusinessIdea{}
	}
	return ideas
}
