package api

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/dd0wney/archval/pkg/cypher"
	"github.com/dd0wney/archval/pkg/model"
	"github.com/dd0wney/archval/pkg/validation"
)

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if !s.requirePost(w, r) {
		return
	}

	var req ConvertRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	req.FormatStyle = validation.DefaultOr(req.FormatStyle, s.cfg.FormatStyle)
	if !s.prepareModel(w, &req.Model) {
		return
	}

	style := cypher.Style(req.FormatStyle)
	statement := cypher.Compile(&req.Model, style)
	s.metricsReg.RecordCompilation(req.FormatStyle, len(req.Model.Nodes), len(req.Model.Relationships))

	s.respondJSON(w, http.StatusOK, ConvertResponse{
		Success: true,
		Cypher:  statement,
		Format:  req.FormatStyle,
		Summary: modelSummary(&req.Model),
	})
}

func (s *Server) handleConvertNodes(w http.ResponseWriter, r *http.Request) {
	if !s.requirePost(w, r) {
		return
	}

	var req ModelRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	if len(req.Model.Nodes) == 0 {
		s.respondJSON(w, http.StatusOK, ConvertResponse{
			Success: true,
			Cypher:  cypher.EmptyModelMarker,
			Summary: map[string]any{"nodes_count": 0},
		})
		return
	}
	if !s.prepareModel(w, &req.Model) {
		return
	}

	statement := cypher.CompileNodes(req.Model.Nodes, cypher.Style(s.cfg.FormatStyle))
	s.metricsReg.RecordCompilation(s.cfg.FormatStyle, len(req.Model.Nodes), 0)

	s.respondJSON(w, http.StatusOK, ConvertResponse{
		Success: true,
		Cypher:  statement,
		Summary: map[string]any{
			"nodes_count": len(req.Model.Nodes),
			"node_types":  countDistinctNodeTypes(req.Model.Nodes),
		},
	})
}

func (s *Server) handleConvertRelationships(w http.ResponseWriter, r *http.Request) {
	if !s.requirePost(w, r) {
		return
	}

	var req ModelRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	if len(req.Model.Relationships) == 0 {
		s.respondJSON(w, http.StatusOK, ConvertResponse{
			Success: true,
			Cypher:  "// No relationships to create",
			Summary: map[string]any{"relationships_count": 0},
		})
		return
	}
	if !s.prepareModel(w, &req.Model) {
		return
	}

	vars := make(map[string]string, len(req.Model.Nodes))
	for _, n := range req.Model.Nodes {
		vars[n.Name] = cypher.SanitizeName(n.Name)
	}
	statement := cypher.CompileRelationships(req.Model.Relationships, vars, cypher.Style(s.cfg.FormatStyle))
	s.metricsReg.RecordCompilation(s.cfg.FormatStyle, 0, len(req.Model.Relationships))

	s.respondJSON(w, http.StatusOK, ConvertResponse{
		Success: true,
		Cypher:  statement,
		Summary: map[string]any{
			"relationships_count": len(req.Model.Relationships),
			"relationship_types":  countDistinctRelationshipTypes(req.Model.Relationships),
		},
	})
}

// handleValidateModel checks a model for compilation compatibility without
// touching a graph store. Unlike the conversion endpoints it accepts models
// that violate identity invariants, because reporting those violations is
// its whole purpose.
func (s *Server) handleValidateModel(w http.ResponseWriter, r *http.Request) {
	if !s.requirePost(w, r) {
		return
	}

	var req ModelRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	m := &req.Model

	var issues, warnings []string

	if len(m.Nodes) == 0 {
		issues = append(issues, "Model has no nodes")
	}

	if dup := duplicateNames(m.Nodes); len(dup) > 0 {
		issues = append(issues, "Duplicate node names found: "+strings.Join(dup, ", "))
	}
	if dup := duplicateIDs(m.Nodes); len(dup) > 0 {
		issues = append(issues, "Duplicate component IDs found: "+strings.Join(dup, ", "))
	}

	// Endpoints may reference nodes by name or by numeric component_id.
	known := m.NodeNames()
	byID := make(map[string]bool, len(m.Nodes))
	for _, n := range m.Nodes {
		byID[fmt.Sprintf("%d", n.ComponentID)] = true
	}
	for _, rel := range m.Relationships {
		if !known[rel.Source] && !byID[rel.Source] {
			issues = append(issues, fmt.Sprintf("Relationship source %q does not exist as a node", rel.Source))
		}
		if !known[rel.Target] && !byID[rel.Target] {
			issues = append(issues, fmt.Sprintf("Relationship target %q does not exist as a node", rel.Target))
		}
	}

	var unlabeled, sanitized []string
	for _, n := range m.Nodes {
		labeled := n
		s.catalog.AssignLabels(&labeled)
		if labeled.PrimaryLabel == "" {
			unlabeled = append(unlabeled, n.Name)
		}
		plain := strings.NewReplacer(" ", "_", "-", "_").Replace(n.Name)
		if cypher.SanitizeName(n.Name) != plain {
			sanitized = append(sanitized, n.Name)
		}
	}
	if len(unlabeled) > 0 {
		warnings = append(warnings, "Nodes without primary labels: "+strings.Join(unlabeled, ", "))
	}
	if len(sanitized) > 0 {
		warnings = append(warnings, "Node names will be sanitized: "+strings.Join(sanitized, ", "))
	}

	s.respondJSON(w, http.StatusOK, ValidateModelResponse{
		Valid:    len(issues) == 0,
		Issues:   issues,
		Warnings: warnings,
		Summary: map[string]any{
			"nodes_count":         len(m.Nodes),
			"relationships_count": len(m.Relationships),
			"issues_count":        len(issues),
			"warnings_count":      len(warnings),
		},
	})
}

func modelSummary(m *model.ArchitectureModel) map[string]any {
	names := make(map[string]bool, len(m.Nodes))
	for _, n := range m.Nodes {
		names[n.Name] = true
	}
	protocols := make(map[string]bool)
	for _, rel := range m.Relationships {
		if rel.Protocol != nil {
			protocols[rel.Protocol.String()] = true
		}
	}
	return map[string]any{
		"nodes_count":         len(m.Nodes),
		"relationships_count": len(m.Relationships),
		"node_types":          countDistinctNodeTypes(m.Nodes),
		"relationship_types":  countDistinctRelationshipTypes(m.Relationships),
		"unique_node_names":   len(names),
		"protocols_used":      len(protocols),
	}
}

func countDistinctNodeTypes(nodes []model.Node) int {
	types := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		types[n.Type] = true
	}
	return len(types)
}

func countDistinctRelationshipTypes(rels []model.Relationship) int {
	types := make(map[string]bool, len(rels))
	for _, r := range rels {
		types[r.Type] = true
	}
	return len(types)
}

func duplicateNames(nodes []model.Node) []string {
	seen := make(map[string]int, len(nodes))
	for _, n := range nodes {
		seen[n.Name]++
	}
	var dup []string
	for name, count := range seen {
		if count > 1 {
			dup = append(dup, name)
		}
	}
	sort.Strings(dup)
	return dup
}

func duplicateIDs(nodes []model.Node) []string {
	seen := make(map[int]int, len(nodes))
	for _, n := range nodes {
		seen[n.ComponentID]++
	}
	var dup []string
	for id, count := range seen {
		if count > 1 {
			dup = append(dup, fmt.Sprintf("%d", id))
		}
	}
	sort.Strings(dup)
	return dup
}
