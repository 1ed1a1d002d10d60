package api

import (
	"encoding/json"
	"net/http"

	"github.com/dd0wney/archval/pkg/logging"
	"github.com/dd0wney/archval/pkg/model"
	"github.com/dd0wney/archval/pkg/validation"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Error encoding JSON response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	s.respondJSON(w, status, response)
}

// decodeRequest decodes and tag-validates a request body. It writes the
// error response itself; callers just bail out on false.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := validation.ValidateRequest(v); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// prepareModel normalizes a decoded model and assigns catalog labels,
// responding with 400 on identity violations (duplicate ids or names, empty
// names).
func (s *Server) prepareModel(w http.ResponseWriter, m *model.ArchitectureModel) bool {
	if err := m.Normalize(); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid model: "+err.Error())
		return false
	}
	s.catalog.AssignAllLabels(m)
	return true
}

func (s *Server) requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

func (s *Server) requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}
