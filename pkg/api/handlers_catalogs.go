package api

import (
	"fmt"
	"net/http"

	"github.com/dd0wney/archval/pkg/model"
)

// handleAssignLabels labels a batch of nodes from the asset-type catalog.
// Unknown types still get fallback labels, with a warning per node.
func (s *Server) handleAssignLabels(w http.ResponseWriter, r *http.Request) {
	if !s.requirePost(w, r) {
		return
	}

	var req LabelAssignmentRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	resp := LabelAssignmentResponse{
		Success:      true,
		LabeledNodes: make([]model.Node, 0, len(req.Nodes)),
		Errors:       []string{},
		Warnings:     []string{},
	}
	for _, node := range req.Nodes {
		labeled := node
		s.catalog.AssignLabels(&labeled)
		if _, ok := s.catalog.LookupAssetType(node.Type); !ok {
			resp.Warnings = append(resp.Warnings,
				fmt.Sprintf("Node %d: type %q not found in catalog", node.ComponentID, node.Type))
		}
		resp.LabeledNodes = append(resp.LabeledNodes, labeled)
	}

	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssetTypes(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	s.respondJSON(w, http.StatusOK, s.catalog.AssetTypes())
}

func (s *Server) handleProtocols(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	if layer := r.URL.Query().Get("layer"); layer != "" {
		s.respondJSON(w, http.StatusOK, s.catalog.ProtocolsByLayer(layer))
		return
	}
	s.respondJSON(w, http.StatusOK, s.catalog.Protocols())
}

func (s *Server) handleRelationshipTypes(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	s.respondJSON(w, http.StatusOK, s.catalog.RelationshipTypes())
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	s.respondJSON(w, http.StatusOK, s.catalog.Patterns())
}
