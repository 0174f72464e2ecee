package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"support-insights-go/internal/charts"
	"support-insights-go/internal/dashboard"
	"support-insights-go/internal/export"
	"support-insights-go/internal/gateway"
	"support-insights-go/internal/insight"
	"support-insights-go/internal/logger"
	"support-insights-go/internal/session"
	"support-insights-go/internal/types"
)

func (s *Server) handleInteractions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := atoiOr(q.Get("page"), 1)
	size := atoiOr(q.Get("page_size"), 20)
	if size > 200 {
		size = 200
	}
	res, err := s.svc.Interactions(r.Context(), gateway.ListFilters{
		Search:        strings.TrimSpace(q.Get("search")),
		Agent:         q.Get("agent"),
		ClosureReason: q.Get("reason"),
	}, page, size)
	if err != nil {
		logger.New().WithRequest(r).WithError(err).Error("list interactions failed")
		writeError(w, http.StatusInternalServerError, "could not load interactions")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleInteraction(w http.ResponseWriter, r *http.Request) {
	it, err := s.svc.Interaction(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "interaction not found")
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.svc.Transcript(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "interaction not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Catalog(r.Context()))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	f, ok := filterState(w, r)
	if !ok {
		return
	}
	ov, err := s.svc.Overview(r.Context(), f)
	if err != nil {
		logger.New().WithRequest(r).WithError(err).Error("dashboard load failed")
		writeError(w, http.StatusInternalServerError, "could not load dashboard")
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f, ok := filterState(w, r)
	if !ok {
		return
	}
	items, err := s.svc.Subset(r.Context(), f)
	if err != nil {
		logger.New().WithRequest(r).WithError(err).Error("export load failed")
		writeError(w, http.StatusInternalServerError, "could not load interactions")
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, items); err != nil {
		logger.New().WithRequest(r).WithError(err).Error("export failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(format, s.svc.Now())+`"`)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	if kind != charts.KindEvolution && kind != charts.KindDistribution {
		writeError(w, http.StatusNotFound, "unknown chart")
		return
	}
	f, ok := filterState(w, r)
	if !ok {
		return
	}
	ov, err := s.svc.Overview(r.Context(), f)
	if err != nil {
		logger.New().WithRequest(r).WithError(err).Error("chart data load failed")
		writeError(w, http.StatusInternalServerError, "could not load dashboard")
		return
	}

	var png []byte
	if kind == charts.KindEvolution {
		png, err = charts.RenderEvolution(ov.Evolution)
	} else {
		png, err = charts.RenderDistribution(ov.Distribution)
	}
	if errors.Is(err, charts.ErrNotEnoughData) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		logger.New().WithRequest(r).WithError(err).Error("chart render failed")
		writeError(w, http.StatusInternalServerError, "chart render failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

type insightRequest struct {
	ContextType string `json:"context_type"`
	Value       string `json:"value"`
}

func (s *Server) handleGenerateInsight(w http.ResponseWriter, r *http.Request) {
	var req insightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ct, err := types.ParseContextType(req.ContextType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Value) == "" {
		writeError(w, http.StatusBadRequest, "value is required")
		return
	}
	sess, _ := session.Current(r.Context())

	res, err := s.svc.GenerateInsight(r.Context(), sess.Subject(), ct, req.Value)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, insight.ErrNoConversations):
		writeError(w, http.StatusNotFound, "no recent interactions for this selection")
	case errors.Is(err, dashboard.ErrSuperseded):
		writeError(w, http.StatusConflict, "a newer insight request replaced this one")
	default:
		logger.New().WithRequest(r).WithError(err).Warn("insight generation failed")
		writeError(w, http.StatusBadGateway, "insight generation failed, please try again")
	}
}

func (s *Server) handleLatestInsight(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.Current(r.Context())
	res, ok := s.svc.LatestInsight(sess.Subject())
	if !ok {
		if s.svc.InsightPending(sess.Subject()) {
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "pending"})
			return
		}
		writeError(w, http.StatusNotFound, "no insight generated yet")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// filterState reads agent, reason and period; missing values mean "all".
func filterState(w http.ResponseWriter, r *http.Request) (types.FilterState, bool) {
	q := r.URL.Query()
	f := types.DefaultFilters()
	if v := q.Get("agent"); v != "" {
		f.Agent = v
	}
	if v := q.Get("reason"); v != "" {
		f.Reason = v
	}
	if v := q.Get("period"); v != "" {
		if !types.ValidPeriod(v) {
			writeError(w, http.StatusBadRequest, "unknown period "+strconv.Quote(v))
			return f, false
		}
		f.Period = v
	}
	return f, true
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
