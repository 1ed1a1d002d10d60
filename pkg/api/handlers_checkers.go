package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/dd0wney/archval/pkg/checker"
	"github.com/dd0wney/archval/pkg/logging"
)

// handleCheckerRun builds the handler for one named validation strategy.
func (s *Server) handleCheckerRun(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.requirePost(w, r) {
			return
		}

		c, err := s.registry.Get(name)
		if err != nil {
			if errors.Is(err, checker.ErrNotConfigured) {
				s.respondError(w, http.StatusNotImplemented, err.Error())
				return
			}
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		var req ModelRequest
		if !s.decodeRequest(w, r, &req) {
			return
		}
		if !s.prepareModel(w, &req.Model) {
			return
		}

		if claims, ok := claimsFromContext(r.Context()); ok {
			s.log.Info("Validation requested",
				logging.Strategy(name), logging.String("subject", claims.Subject))
		}

		start := time.Now()
		result := c.Validate(r.Context(), &req.Model)
		s.metricsReg.RecordValidation(name, result.Valid, len(result.Errors), time.Since(start))

		s.respondJSON(w, http.StatusOK, result)
	}
}

// handleTestConnection probes the graph store without writing anything.
func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}

	start := time.Now()
	err := s.store.VerifyConnectivity(r.Context())
	s.metricsReg.RecordStoreOperation("verify", statusLabel(err), time.Since(start))
	if err != nil {
		s.respondJSON(w, http.StatusServiceUnavailable, ConnectionTestResponse{
			Status:  "error",
			Message: "Failed to connect to Neo4j database",
		})
		return
	}

	s.respondJSON(w, http.StatusOK, ConnectionTestResponse{
		Status:  "success",
		Message: "Successfully connected to Neo4j database",
		Config: map[string]string{
			"uri":      s.cfg.Store.URI,
			"user":     s.cfg.Store.Username,
			"database": s.cfg.Store.Database,
		},
	})
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
