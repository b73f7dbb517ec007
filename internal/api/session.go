// internal/api/session.go
package api

import (
	"context"
	"net/http"

	"idea-lab/internal/models"
	"idea-lab/internal/session"
)

// detached keeps a fetch running when the client goes away, so the result
// still lands in the session.
func detached(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func (s *Server) sessionSnapshot(w http.ResponseWriter, r *http.Request, userID string) {
	writeJSON(w, http.StatusOK, s.deps.Sessions.For(userID).Snapshot())
}

func (s *Server) sessionOpen(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		Idea     models.BusinessIdea `json:"idea"`
		Language string              `json:"language"`
	}
	if err := decode(r, openSchema, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	req.Idea.EnsureID()

	ctrl := s.deps.Sessions.For(userID)
	if req.Language != "" {
		ctrl.SetLanguage(req.Language)
	}
	if err := ctrl.Open(detached(r), &req.Idea); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (s *Server) sessionTab(w http.ResponseWriter, r *http.Request, userID string) {
	s.tabAction(w, r, userID, (*session.Controller).SwitchTab)
}

func (s *Server) sessionRetry(w http.ResponseWriter, r *http.Request, userID string) {
	s.tabAction(w, r, userID, (*session.Controller).Retry)
}

func (s *Server) tabAction(w http.ResponseWriter, r *http.Request, userID string,
	action func(*session.Controller, context.Context, session.Tab) error) {
	var req struct {
		Tab string `json:"tab"`
	}
	if err := decode(r, tabSchema, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	tab, err := session.ParseTab(req.Tab)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	ctrl := s.deps.Sessions.For(userID)
	if err := action(ctrl, detached(r), tab); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (s *Server) sessionClose(w http.ResponseWriter, r *http.Request, userID string) {
	s.deps.Sessions.For(userID).Close()
	w.WriteHeader(http.StatusNoContent)
}

// sessionFinancials applies a partial update; absent fields keep their values.
func (s *Server) sessionFinancials(w http.ResponseWriter, r *http.Request, userID string) {
	var patch struct {
		InitialInvestment     *float64 `json:"initialInvestment"`
		MonthlyFixedCosts     *float64 `json:"monthlyFixedCosts"`
		CostPerUnit           *float64 `json:"costPerUnit"`
		PricePerUnit          *float64 `json:"pricePerUnit"`
		EstimatedMonthlySales *float64 `json:"estimatedMonthlySales"`
		Currency              *string  `json:"currency"`
	}
	if err := decode(r, financialsSchema, &patch); err != nil {
		writeError(w, s.logger, err)
		return
	}
	ctrl := s.deps.Sessions.For(userID)
	est, err := ctrl.UpdateFinancials(func(f *models.FinancialEstimates) {
		setIf(&f.InitialInvestment, patch.InitialInvestment)
		setIf(&f.MonthlyFixedCosts, patch.MonthlyFixedCosts)
		setIf(&f.CostPerUnit, patch.CostPerUnit)
		setIf(&f.PricePerUnit, patch.PricePerUnit)
		setIf(&f.EstimatedMonthlySales, patch.EstimatedMonthlySales)
		setIf(&f.Currency, patch.Currency)
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	m, err := ctrl.Metrics()
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"financials": est,
		"metrics":    m.JSONSafe(),
	})
}

func (s *Server) sessionLandedCost(w http.ResponseWriter, r *http.Request, userID string) {
	var lc models.LandedCost
	if err := decode(r, landedCostSchema, &lc); err != nil {
		writeError(w, s.logger, err)
		return
	}
	ctrl := s.deps.Sessions.For(userID)
	if err := ctrl.SetLandedCost(lc); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ctrl.LandedCost())
}

func (s *Server) sessionMetrics(w http.ResponseWriter, r *http.Request, userID string) {
	m, err := s.deps.Sessions.For(userID).Metrics()
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, m.JSONSafe())
}

func (s *Server) sessionToggleStep(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		Phase int `json:"phase"`
		Step  int `json:"step"`
	}
	if err := decode(r, toggleSchema, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	percent, err := s.deps.Sessions.For(userID).ToggleStep(r.Context(), req.Phase, req.Step)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"progress": percent})
}

func (s *Server) sessionEmailDeck(w http.ResponseWriter, r *http.Request, userID string) {
	if s.deps.Mailer == nil {
		writeError(w, s.logger, errUnavailable)
		return
	}
	var req struct {
		To string `json:"to"`
	}
	if err := decode(r, emailSchema, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	ctrl := s.deps.Sessions.For(userID)
	idea := ctrl.Idea()
	if idea == nil {
		writeError(w, s.logger, session.ErrNoIdea)
		return
	}
	deck, ok := ctrl.PitchDeck()
	if !ok {
		writeError(w, s.logger, session.ErrNotLoaded)
		return
	}
	if err := s.deps.Mailer.SendPitchDeck(r.Context(), req.To, idea, deck); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
