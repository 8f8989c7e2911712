package httpapi

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"sim-dashboard/internal/dashboard"
	"sim-dashboard/internal/reporting"
)

//go:embed templates/index.html
var indexHTML []byte

// ErrorBody is the JSON shape of a failed request, shared with the
// websocket error message.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	ExeID   string `json:"exeId,omitempty"`
	Field   string `json:"field,omitempty"`
}

func errorBody(err error, exeID string) (ErrorBody, int) {
	out := dashboard.Classify(err)
	return ErrorBody{
		Kind:    out.Kind,
		Message: err.Error(),
		ExeID:   exeID,
		Field:   out.Field,
	}, out.Status
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, exeID string) {
	if isClientGone(err) {
		s.logger.Debug().Str("request_id", RequestID(r.Context())).Msg("client went away")
		return
	}
	body, status := errorBody(err, exeID)
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("request_id", RequestID(r.Context())).Str("exe_id", exeID).Msg("request failed")
	}
	s.writeJSON(w, status, map[string]ErrorBody{"error": body})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusNotFound, map[string]ErrorBody{"error": {
		Kind:    "not_found",
		Message: "no route for " + r.URL.Path,
	}})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	strategies, err := s.service.Strategies(r.Context())
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	s.writeJSON(w, http.StatusOK, strategies)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.Runs(r.Context(), mux.Vars(r)["strategy"])
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	s.writeJSON(w, http.StatusOK, runs)
}

// handleRun serves both the plain read and the refresh trigger; each call
// recomputes the run from the store.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	exeID := mux.Vars(r)["exeId"]
	rv, err := s.service.Load(r.Context(), exeID)
	if err != nil {
		s.writeError(w, r, err, exeID)
		return
	}
	s.writeJSON(w, http.StatusOK, rv)
}

func (s *Server) handleWalletCSV(w http.ResponseWriter, r *http.Request) {
	s.serveExport(w, r, "wallet.csv", "text/csv; charset=utf-8", func(rv *dashboard.RunView) string {
		return reporting.RenderWalletCSV(rv.Wallet)
	})
}

func (s *Server) handleOperationsCSV(w http.ResponseWriter, r *http.Request) {
	s.serveExport(w, r, "operations.csv", "text/csv; charset=utf-8", func(rv *dashboard.RunView) string {
		return reporting.RenderOperationsCSV(rv.OperationSet)
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	s.serveExport(w, r, "report.md", "text/markdown; charset=utf-8", func(rv *dashboard.RunView) string {
		return reporting.RenderMarkdown(s.reports.FromView(rv))
	})
}

func (s *Server) serveExport(w http.ResponseWriter, r *http.Request, name, contentType string, render func(*dashboard.RunView) string) {
	exeID := mux.Vars(r)["exeId"]
	rv, err := s.service.Load(r.Context(), exeID)
	if err != nil {
		s.writeError(w, r, err, exeID)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exeID+"-"+name+`"`)
	_, _ = w.Write([]byte(render(rv)))
}

// isClientGone reports whether err is the caller hanging up.
func isClientGone(err error) bool {
	return errors.Is(err, context.Canceled)
}
