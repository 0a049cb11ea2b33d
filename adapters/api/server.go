// Package api exposes power estimation over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"powersim/adapters/rng"
	"powersim/app"
	"powersim/domain/core"
	"powersim/domain/power"
	"powersim/internal"
	"powersim/internal/config"
	"powersim/internal/report"
	"powersim/ports"
)

// Server wires the estimation endpoints onto a chi router
type Server struct {
	router *chi.Mux
	repo   ports.CurveRepository
	sim    config.SimulationConfig
	log    *internal.Logger
}

// NewServer creates the HTTP surface. repo may be nil; runs are then
// returned to the caller but not stored.
func NewServer(repo ports.CurveRepository, sim config.SimulationConfig, log *internal.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		repo:   repo,
		sim:    sim,
		log:    log,
	}
	s.setupRoutes()
	return s
}

// Handler returns the root http handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	s.router.Route("/api/v1/power", func(r chi.Router) {
		r.Post("/estimate", s.handleEstimate)
		r.Post("/minimum-size", s.handleMinimumSize)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Get("/runs/{id}/report", s.handleRunReport)
	})
}

// runSweep executes one request's sweep and assembles the run record
func (s *Server) runSweep(r *http.Request, req EstimateRequest) (power.Run, error) {
	gen, err := buildGenerator(req.Design)
	if err != nil {
		return power.Run{}, err
	}
	test, err := buildTest(req.Test)
	if err != nil {
		return power.Run{}, err
	}

	seed := s.sim.Seed
	if req.Seed != nil {
		seed = *req.Seed
	}

	est := app.NewEstimator(rng.NewDerivedStreams(seed), s.log)
	est.Replications = s.sim.Replications
	if req.Replications > 0 {
		est.Replications = req.Replications
	}
	est.Alpha = s.sim.Alpha
	if req.Alpha > 0 {
		est.Alpha = req.Alpha
	}
	if s.sim.Workers > 0 {
		est.Workers = s.sim.Workers
	}

	curve, err := est.Sweep(r.Context(), gen, test, req.Grid)
	if err != nil {
		return power.Run{}, err
	}

	run := power.Run{
		ID:           core.NewRunID(),
		Name:         req.Name,
		Design:       gen.Name(),
		Test:         test.Name(),
		Seed:         seed,
		Replications: est.Replications,
		Curve:        curve,
		CreatedAt:    time.Now().UTC(),
	}
	if s.repo != nil {
		if err := s.repo.Save(r.Context(), run); err != nil {
			return power.Run{}, err
		}
	}
	return run, nil
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	run, err := s.runSweep(r, req)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, EstimateResponse{Run: run})
}

func (s *Server) handleMinimumSize(w http.ResponseWriter, r *http.Request) {
	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	target := req.Target
	if target == 0 {
		target = app.DefaultTargetPower
	}

	run, err := s.runSweep(r, req)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	size, err := run.Curve.MinimumSize(target)
	if err != nil {
		// The curve is still useful to the caller: it shows how close the
		// grid came to the target.
		s.writeJSON(w, http.StatusUnprocessableEntity, struct {
			ErrorResponse
			Target float64   `json:"target"`
			Run    power.Run `json:"run"`
		}{ErrorResponse{Error: err.Error()}, target, run})
		return
	}
	s.writeJSON(w, http.StatusOK, MinimumSizeResponse{Size: size, Target: target, Run: run})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		s.writeError(w, http.StatusNotFound, errors.New("run storage not configured"))
		return
	}
	runs, err := s.repo.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(report.HTML(run))
}

func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (power.Run, bool) {
	if s.repo == nil {
		s.writeError(w, http.StatusNotFound, errors.New("run storage not configured"))
		return power.Run{}, false
	}
	id := core.RunID(chi.URLParam(r, "id"))
	run, err := s.repo.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return power.Run{}, false
	}
	return run, true
}

func statusFor(err error) int {
	switch {
	case core.IsInvalidParameter(err):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrRunNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encoding response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed: %v", err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
