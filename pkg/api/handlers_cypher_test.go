package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dd0wney/archval/pkg/auth"
	"github.com/dd0wney/archval/pkg/checker"
	"github.com/dd0wney/archval/pkg/metrics"
	"github.com/dd0wney/archval/pkg/model"
	"github.com/dd0wney/archval/pkg/store"
)

// stubChecker plays back a canned result.
type stubChecker struct {
	name   string
	result *checker.Result
	calls  int
}

func (c *stubChecker) Name() string { return c.name }

func (c *stubChecker) Validate(ctx context.Context, m *model.ArchitectureModel) *checker.Result {
	c.calls++
	return c.result
}

func newTestServer(t *testing.T, reg *checker.Registry, st *store.Client, secret string) *Server {
	t.Helper()
	if reg == nil {
		reg = checker.NewRegistry()
	}
	cfg := Config{
		Port:        8080,
		FormatStyle: "multiline",
		Store: store.Config{
			URI:      "http://localhost:7474",
			Username: "neo4j",
			Password: "secret",
		}.WithDefaults(),
	}
	var jm *auth.JWTManager
	if secret != "" {
		var err error
		jm, err = auth.NewJWTManager(secret, time.Hour)
		if err != nil {
			t.Fatal(err)
		}
	}
	return NewServer(cfg, reg, st, nil, metrics.NewRegistry(), jm, nil)
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func sampleModel() map[string]any {
	return map[string]any{
		"nodes": []map[string]any{
			{"component_id": 1, "name": "WebServer", "type": "HW.Server"},
			{"component_id": 2, "name": "AppOS", "type": "SystemLayer.OS"},
		},
		"relationships": []map[string]any{
			{"source": "WebServer", "target": "AppOS", "type": "hosts"},
		},
	}
}

func TestHandleConvert(t *testing.T) {
	s := newTestServer(t, nil, nil, "")
	rec := postJSON(t, s.Handler(), "/api/cypher/convert", map[string]any{
		"model": sampleModel(),
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp ConvertResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Format != "multiline" {
		t.Errorf("Unexpected response: %+v", resp)
	}
	if !strings.HasPrefix(resp.Cypher, "CREATE") {
		t.Errorf("Expected a CREATE statement, got %q", resp.Cypher)
	}
	if !strings.Contains(resp.Cypher, "[:hosts") {
		t.Errorf("Relationship missing from statement: %q", resp.Cypher)
	}
	if resp.Summary["nodes_count"] != float64(2) || resp.Summary["relationships_count"] != float64(1) {
		t.Errorf("Unexpected summary: %v", resp.Summary)
	}
}

func TestHandleConvert_InvalidStyle(t *testing.T) {
	s := newTestServer(t, nil, nil, "")
	rec := postJSON(t, s.Handler(), "/api/cypher/convert", map[string]any{
		"model":        sampleModel(),
		"format_style": "sideways",
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", rec.Code)
	}
}

func TestHandleConvert_DuplicateNamesRejected(t *testing.T) {
	s := newTestServer(t, nil, nil, "")
	rec := postJSON(t, s.Handler(), "/api/cypher/convert", map[string]any{
		"model": map[string]any{
			"nodes": []map[string]any{
				{"component_id": 1, "name": "Dup", "type": "HW.Server"},
				{"component_id": 2, "name": "Dup", "type": "HW.Server"},
			},
		},
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "duplicate") {
		t.Errorf("Expected duplicate-name message, got %s", rec.Body.String())
	}
}

func TestHandleConvertNodes_EmptyModel(t *testing.T) {
	s := newTestServer(t, nil, nil, "")
	rec := postJSON(t, s.Handler(), "/api/cypher/convert/nodes", map[string]any{
		"model": map[string]any{"nodes": []any{}},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	var resp ConvertResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Cypher != "// No nodes to create" {
		t.Errorf("Expected empty-model marker, got %q", resp.Cypher)
	}
}

func TestHandleValidateModel(t *testing.T) {
	s := newTestServer(t, nil, nil, "")
	rec := postJSON(t, s.Handler(), "/api/cypher/validate", map[string]any{
		"model": map[string]any{
			"nodes": []map[string]any{
				{"component_id": 1, "name": "Dup", "type": "HW.Server"},
				{"component_id": 1, "name": "Dup", "type": "HW.Server"},
				{"component_id": 3, "name": "web/api", "type": "Service.Web"},
			},
			"relationships": []map[string]any{
				{"source": "Dup", "target": "Ghost", "type": "uses"},
			},
		},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp ValidateModelResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Valid {
		t.Error("Model with duplicates and dangling endpoints should be invalid")
	}

	wantIssues := []string{
		"Duplicate node names found: Dup",
		"Duplicate component IDs found: 1",
		`Relationship target "Ghost" does not exist as a node`,
	}
	for _, want := range wantIssues {
		found := false
		for _, issue := range resp.Issues {
			if strings.Contains(issue, want) {
				found = true
			}
		}
		if !found {
			t.Errorf("Missing issue %q in %v", want, resp.Issues)
		}
	}

	foundSanitize := false
	for _, warning := range resp.Warnings {
		if strings.Contains(warning, "web/api") {
			foundSanitize = true
		}
	}
	if !foundSanitize {
		t.Errorf("Expected sanitization warning for web/api, got %v", resp.Warnings)
	}
}

func TestHandleValidateModel_NumericEndpointAccepted(t *testing.T) {
	s := newTestServer(t, nil, nil, "")
	rec := postJSON(t, s.Handler(), "/api/cypher/validate", map[string]any{
		"model": map[string]any{
			"nodes": []map[string]any{
				{"component_id": 1, "name": "WebServer", "type": "HW.Server"},
				{"component_id": 2, "name": "AppOS", "type": "SystemLayer.OS"},
			},
			"relationships": []map[string]any{
				{"source": "1", "target": "2", "type": "hosts"},
			},
		},
	})

	var resp ValidateModelResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Valid {
		t.Errorf("Numeric endpoints referencing real ids should be valid, issues: %v", resp.Issues)
	}
}

func TestHandleHealth(t *testing.T) {
	reg := checker.NewRegistry()
	reg.Register(&stubChecker{name: "database", result: &checker.Result{Valid: true}})
	s := newTestServer(t, reg, nil, "")

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "healthy" || len(resp.Checkers) != 1 {
		t.Errorf("Unexpected health response: %+v", resp)
	}
}
