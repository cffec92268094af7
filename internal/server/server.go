// Package server exposes contact LQR synthesis over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/contactlqr/internal/config"
	"github.com/san-kum/contactlqr/internal/contact"
	"github.com/san-kum/contactlqr/internal/dynamo"
	"github.com/san-kum/contactlqr/internal/linalg"
	"github.com/san-kum/contactlqr/internal/logging"
	"github.com/san-kum/contactlqr/internal/metrics"
	"github.com/san-kum/contactlqr/internal/models"
	"github.com/san-kum/contactlqr/internal/storage"
)

// Server serves the synthesis pipeline.
type Server struct {
	registry  *models.Registry
	store     *storage.Store
	collector *metrics.Collector
	gatherer  prometheus.Gatherer
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithStore persists every successful synthesis in st.
func WithStore(st *storage.Store) Option {
	return func(s *Server) {
		s.store = st
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// New returns a server over the mechanisms of reg with its own metrics
// registry.
func New(reg *models.Registry, opts ...Option) (*Server, error) {
	promReg := prometheus.NewRegistry()
	collector := metrics.NewCollector()
	if err := collector.Register(promReg); err != nil {
		return nil, err
	}
	s := &Server{
		registry:  reg,
		collector: collector,
		gatherer:  promReg,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handler returns the routes:
//
//	GET  /mechanisms
//	GET  /presets/{mechanism}
//	POST /lqr
//	POST /jacobian
//	GET  /metrics
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/mechanisms", s.listMechanisms)
	r.Get("/presets/{mechanism}", s.listPresets)
	r.Post("/lqr", s.lqr)
	r.Post("/jacobian", s.jacobian)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

type mechanismInfo struct {
	Name   string   `json:"name"`
	NQ     int      `json:"nq"`
	NV     int      `json:"nv"`
	NA     int      `json:"na"`
	Bodies []string `json:"bodies"`
}

func (s *Server) listMechanisms(w http.ResponseWriter, r *http.Request) {
	names := s.registry.ListMechanisms()
	out := make([]mechanismInfo, 0, len(names))
	for _, name := range names {
		m, err := s.registry.GetMechanism(name)
		if err != nil {
			s.fail(w, err)
			return
		}
		info := mechanismInfo{Name: name, NQ: m.Dims.NQ, NV: m.Dims.NV, NA: m.Dims.NA}
		for _, b := range m.Bodies {
			info.Bodies = append(info.Bodies, b.Name)
		}
		out = append(out, info)
	}
	s.respond(w, out)
}

func (s *Server) listPresets(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "mechanism")
	if _, err := s.registry.GetMechanism(name); err != nil {
		s.fail(w, err)
		return
	}
	presets := config.ListPresets(name)
	if presets == nil {
		presets = []string{}
	}
	s.respond(w, presets)
}

// Request is a scenario, or a named preset of Model when Preset is set.
type Request struct {
	Preset string `json:"preset,omitempty"`
	config.Config
}

type LQRResponse struct {
	ID          string               `json:"id,omitempty"`
	Gain        [][]float64          `json:"gain"`
	Jacobian    [][]float64          `json:"jacobian"`
	Input       []float64            `json:"input"`
	Abscissa    float64              `json:"spectral_abscissa"`
	Stable      bool                 `json:"stable"`
	Eigenvalues []storage.Eigenvalue `json:"eigenvalues"`
}

type JacobianResponse struct {
	Jacobian [][]float64 `json:"jacobian"`
}

func (s *Server) lqr(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.decode(w, r)
	if !ok {
		return
	}
	sc, err := cfg.Resolve(s.registry)
	if err != nil {
		s.fail(w, err)
		return
	}

	opts := append(cfg.Options(), contact.WithLogger(s.logger), contact.WithRecorder(s.collector))
	syn, err := contact.Synthesize(sc.State, sc.Input, sc.Q, sc.R, sc.Contacts, opts...)
	if err != nil {
		s.fail(w, err)
		return
	}
	stab := metrics.NewStability(0)
	if err := stab.Observe(syn.ClosedLoop()); err != nil {
		s.fail(w, err)
		return
	}

	input := sc.Input
	if input == nil {
		if input, err = contact.GravityCompensation(sc.State); err != nil {
			s.fail(w, err)
			return
		}
	}
	report := storage.NewReport(sc.Mechanism.Name, sc.State.Configuration(), input, len(sc.Contacts), syn, stab)
	report.Preset = cfg.preset
	if s.store != nil {
		if _, err := s.store.Save(report, syn.K); err != nil {
			s.fail(w, err)
			return
		}
	}

	s.respond(w, LQRResponse{
		ID:          report.ID,
		Gain:        linalg.Rows(syn.K),
		Jacobian:    linalg.Rows(syn.Jc),
		Input:       input,
		Abscissa:    report.Abscissa,
		Stable:      report.Stable,
		Eigenvalues: report.Eigenvalues,
	})
}

func (s *Server) jacobian(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.decode(w, r)
	if !ok {
		return
	}
	sc, err := cfg.Resolve(s.registry)
	if err != nil {
		s.fail(w, err)
		return
	}
	jc, err := contact.Jacobian(sc.State, sc.Contacts, contact.WithLogger(s.logger))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, JacobianResponse{Jacobian: linalg.Rows(jc)})
}

type resolved struct {
	*config.Config
	preset string
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (resolved, bool) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		s.logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
		return resolved{}, false
	}
	if req.Preset == "" {
		return resolved{Config: &req.Config}, true
	}
	cfg := config.GetPreset(req.Model, req.Preset)
	if cfg == nil {
		http.Error(w, "unknown preset "+req.Preset, http.StatusNotFound)
		return resolved{}, false
	}
	return resolved{Config: cfg, preset: req.Preset}, true
}

func (s *Server) respond(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	} else {
		s.logger.Debug("request rejected", "status", status, "error", err)
	}
	http.Error(w, err.Error(), status)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, dynamo.ErrUnknownMechanism), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, dynamo.ErrDimension), errors.Is(err, dynamo.ErrPrecondition), errors.Is(err, config.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, dynamo.ErrSingularMatrix), errors.Is(err, dynamo.ErrNoStabilizingSolution):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
