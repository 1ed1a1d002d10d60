package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dd0wney/archval/pkg/checker"
	"github.com/dd0wney/archval/pkg/store"
)

func TestHandleCheckerRun(t *testing.T) {
	stub := &stubChecker{
		name: checker.TriggerCheckerName,
		result: &checker.Result{
			Valid:    false,
			Errors:   []string{"Asset type validation failed (from trigger: 01_check_asset_type_labels)"},
			Warnings: []string{},
			Summary:  map[string]any{"nodes_tested": 2},
		},
	}
	reg := checker.NewRegistry()
	reg.Register(stub)
	s := newTestServer(t, reg, nil, "")

	rec := postJSON(t, s.Handler(), "/api/checkers/database", map[string]any{
		"model": sampleModel(),
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, body %s", rec.Code, rec.Body.String())
	}
	if stub.calls != 1 {
		t.Errorf("Checker invoked %d times, want 1", stub.calls)
	}

	var result checker.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.Valid || len(result.Errors) != 1 {
		t.Errorf("Unexpected result: %+v", result)
	}
	if !strings.Contains(result.Errors[0], "from trigger") {
		t.Errorf("Trigger attribution lost: %q", result.Errors[0])
	}
}

func TestHandleCheckerRun_NotConfigured(t *testing.T) {
	s := newTestServer(t, checker.NewRegistry(), nil, "")

	rec := postJSON(t, s.Handler(), "/api/checkers/rules", map[string]any{
		"model": sampleModel(),
	})

	if rec.Code != http.StatusNotImplemented {
		t.Errorf("Status = %d, want 501", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "checker not configured") {
		t.Errorf("Unexpected body: %s", rec.Body.String())
	}
}

func TestHandleCheckerRun_InvalidModel(t *testing.T) {
	stub := &stubChecker{name: checker.TriggerCheckerName, result: &checker.Result{Valid: true}}
	reg := checker.NewRegistry()
	reg.Register(stub)
	s := newTestServer(t, reg, nil, "")

	rec := postJSON(t, s.Handler(), "/api/checkers/database", map[string]any{
		"model": map[string]any{
			"nodes": []map[string]any{
				{"component_id": 0, "name": "Zero", "type": "HW.Server"},
			},
		},
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", rec.Code)
	}
	if stub.calls != 0 {
		t.Error("Checker should not run on an invalid model")
	}
}

// fakeStoreHandler mimics the transactional endpoint of the graph store.
func fakeStoreHandler(fail bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if fail {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"results": []any{},
				"errors": []map[string]string{
					{"code": "Neo.ClientError.Security.Unauthorized", "message": "invalid credentials"},
				},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"columns": []string{"ok"}, "data": []map[string]any{{"row": []any{1}}}},
			},
			"errors": []any{},
		})
	})
}

func newStoreClient(t *testing.T, baseURL string) *store.Client {
	t.Helper()
	client, err := store.NewClient(store.Config{
		URI:      baseURL,
		Username: "neo4j",
		Password: "secret",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func TestHandleTestConnection(t *testing.T) {
	backend := httptest.NewServer(fakeStoreHandler(false))
	defer backend.Close()

	s := newTestServer(t, nil, newStoreClient(t, backend.URL), "")

	req := httptest.NewRequest(http.MethodGet, "/api/checkers/database/test-connection", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp ConnectionTestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "success" {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestHandleTestConnection_Unreachable(t *testing.T) {
	backend := httptest.NewServer(fakeStoreHandler(true))
	defer backend.Close()

	s := newTestServer(t, nil, newStoreClient(t, backend.URL), "")

	req := httptest.NewRequest(http.MethodGet, "/api/checkers/database/test-connection", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want 503", rec.Code)
	}
}
