package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/haskel/pitwall/internal/dataset"
	"github.com/haskel/pitwall/internal/engine"
	"github.com/haskel/pitwall/internal/monitor"
	"github.com/haskel/pitwall/internal/predictor"
	"github.com/haskel/pitwall/internal/server/middleware"
	"github.com/haskel/pitwall/internal/storage"
	"github.com/haskel/pitwall/internal/strategy"
)

type InfoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type StatusResponse struct {
	Version        string         `json:"version"`
	DataDir        string         `json:"data_dir"`
	CachedCircuits []string       `json:"cached_circuits"`
	Resources      *monitor.State `json:"resources,omitempty"`
}

type CircuitsResponse struct {
	Circuits []engine.CircuitSummary `json:"circuits"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Circuit   string `json:"circuit,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, InfoResponse{
		Name:    "pitwall",
		Version: s.version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Version:        s.version,
		DataDir:        s.engine.Registry().DataDir(),
		CachedCircuits: s.engine.Registry().CachedCircuits(),
	}
	if s.aggregator != nil {
		state := s.aggregator.State()
		resp.Resources = &state
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCircuits(w http.ResponseWriter, r *http.Request) {
	circuits, err := s.engine.ListCircuits()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, CircuitsResponse{Circuits: circuits})
}

func (s *Server) handleCircuit(w http.ResponseWriter, r *http.Request) {
	detail, err := s.engine.Circuit(r.PathValue("circuit"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := s.engine.Analysis(r.PathValue("circuit"), r.URL.Query().Get("car"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req engine.PredictRequest
	if !s.decode(w, r, &req) {
		return
	}
	resp, err := s.engine.Predict(r.PathValue("circuit"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCaution(w http.ResponseWriter, r *http.Request) {
	var req engine.CautionRequest
	if !s.decode(w, r, &req) {
		return
	}
	resp, err := s.engine.Caution(r.PathValue("circuit"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBattle(w http.ResponseWriter, r *http.Request) {
	var req engine.BattleRequest
	if !s.decode(w, r, &req) {
		return
	}
	resp, err := s.engine.Battle(r.PathValue("circuit"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	resp, err := s.engine.Reload(r.PathValue("circuit"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// decode reads a JSON body, rejecting unknown fields. An empty body
// decodes to the zero request.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength == 0 {
		return true
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErrorCode(w, r, http.StatusRequestEntityTooLarge, "body_too_large", err)
			return false
		}
		s.writeErrorCode(w, r, http.StatusBadRequest, "invalid_body", err)
		return false
	}
	return true
}

// statusOf maps engine errors to HTTP status codes.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, strategy.ErrInvalidParams):
		return http.StatusBadRequest, "invalid_params"
	case errors.Is(err, storage.ErrInvalidCircuit):
		return http.StatusBadRequest, "invalid_circuit"
	case errors.Is(err, engine.ErrUnknownCircuit):
		return http.StatusNotFound, "unknown_circuit"
	case errors.Is(err, predictor.ErrUnavailable):
		return http.StatusServiceUnavailable, "model_unavailable"
	case errors.Is(err, dataset.ErrNotFound):
		return http.StatusServiceUnavailable, "dataset_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusOf(err)
	s.writeErrorCode(w, r, status, code, err)
}

func (s *Server) writeErrorCode(w http.ResponseWriter, r *http.Request, status int, code string, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	s.writeJSON(w, status, ErrorResponse{
		Error:     err.Error(),
		Code:      code,
		Circuit:   r.PathValue("circuit"),
		RequestID: middleware.GetRequestID(r.Context()),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response",
			"error", err,
			"status", status,
		)
	}
}
