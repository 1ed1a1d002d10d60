// Package api is the HTTP surface of the validation service: model-to-Cypher
// conversion, store-backed validation runs, and catalog lookups.
package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/archval/pkg/auth"
	"github.com/dd0wney/archval/pkg/catalog"
	"github.com/dd0wney/archval/pkg/checker"
	"github.com/dd0wney/archval/pkg/logging"
	"github.com/dd0wney/archval/pkg/metrics"
	"github.com/dd0wney/archval/pkg/store"
)

// maxRequestBody bounds request bodies. Architecture models are small; one
// megabyte leaves generous headroom.
const maxRequestBody = 1 << 20

// Server represents the HTTP API server
type Server struct {
	cfg        Config
	registry   *checker.Registry
	store      *store.Client
	catalog    *catalog.Catalog
	metricsReg *metrics.Registry
	jwtManager *auth.JWTManager
	log        logging.Logger
	startTime  time.Time
	version    string
}

// NewServer creates a new API server. jwtManager may be nil, in which case
// the API runs without authentication.
func NewServer(cfg Config, registry *checker.Registry, st *store.Client, cat *catalog.Catalog, metricsReg *metrics.Registry, jwtManager *auth.JWTManager, log logging.Logger) *Server {
	if log == nil {
		log = logging.NopLogger{}
	}
	if metricsReg == nil {
		metricsReg = metrics.NewRegistry()
	}
	if cat == nil {
		cat = new(catalog.Catalog)
	}
	if registry == nil {
		registry = checker.NewRegistry()
	}
	return &Server{
		cfg:        cfg,
		registry:   registry,
		store:      st,
		catalog:    cat,
		metricsReg: metricsReg,
		jwtManager: jwtManager,
		log:        log.With(logging.Component("api")),
		startTime:  time.Now(),
		version:    "1.0.0",
	}
}

// Handler builds the full route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health and metrics
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(s.metricsReg.GetPrometheusRegistry(), promhttp.HandlerOpts{}))

	// Compiler endpoints
	mux.HandleFunc("/api/cypher/convert", s.requireAuth(s.handleConvert))
	mux.HandleFunc("/api/cypher/convert/nodes", s.requireAuth(s.handleConvertNodes))
	mux.HandleFunc("/api/cypher/convert/relationships", s.requireAuth(s.handleConvertRelationships))
	mux.HandleFunc("/api/cypher/validate", s.requireAuth(s.handleValidateModel))

	// Checker endpoints
	mux.HandleFunc("/api/checkers/database", s.requireAuth(s.handleCheckerRun(checker.TriggerCheckerName)))
	mux.HandleFunc("/api/checkers/rules", s.requireAuth(s.handleCheckerRun(checker.RuleScanCheckerName)))
	mux.HandleFunc("/api/checkers/database/test-connection", s.requireAuth(s.handleTestConnection))

	// Catalog endpoints
	mux.HandleFunc("/api/catalogs/labels/assign", s.requireAuth(s.handleAssignLabels))
	mux.HandleFunc("/api/catalogs/asset-types", s.requireAuth(s.handleAssetTypes))
	mux.HandleFunc("/api/catalogs/protocols", s.requireAuth(s.handleProtocols))
	mux.HandleFunc("/api/catalogs/relationships", s.requireAuth(s.handleRelationshipTypes))
	mux.HandleFunc("/api/catalogs/patterns", s.requireAuth(s.handlePatterns))

	var handler http.Handler = mux
	handler = s.bodySizeLimitMiddleware(handler, maxRequestBody)
	handler = s.metricsMiddleware(handler)
	handler = s.loggingMiddleware(handler)
	handler = s.corsMiddleware(handler)
	handler = s.panicRecoveryMiddleware(handler)
	return handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   s.version,
		Checkers:  s.registry.Names(),
		Uptime:    time.Since(s.startTime).String(),
	}
	s.respondJSON(w, http.StatusOK, response)
}
