package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hushlane/central/internal/config"
	"github.com/hushlane/central/internal/registry/database"
	"github.com/hushlane/central/internal/registry/model"
	"github.com/hushlane/central/internal/registry/service"
)

func newTestRouter(t *testing.T, store database.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := config.LoadFrom("")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.Admin.User = "admin"
	cfg.Admin.Pass = "secret"
	cfg.Catalog.Version = "1.2.3"
	cfg.Catalog.Released = "2026-01-18"
	cfg.Catalog.ChangelogURL = "https://hushlane.app/changelog"

	latest := model.VersionInfo{
		Version:      cfg.Catalog.Version,
		Released:     cfg.Catalog.Released,
		ChangelogURL: cfg.Catalog.ChangelogURL,
		Critical:     cfg.Catalog.Critical,
	}

	router := gin.New()
	NewApi(router, cfg, Deps{
		Processor: service.NewProcessor(store, nil),
		Reporting: service.NewReporting(store, latest, cfg.Registry.StaleAfterDuration()),
		Store:     store,
	})
	return router
}

func postHeartbeat(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/instances/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterInstanceOK(t *testing.T) {
	router := newTestRouter(t, database.NewMemStore())

	w := postHeartbeat(router, `{"customer_id":"acme","version":"1.0.0","url":"https://acme.example.com","health":"healthy","total_users":12,"total_messages":345}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Status   string                `json:"status"`
		Instance *model.InstanceRecord `json:"instance"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("status = %q", resp.Status)
	}
	if resp.Instance == nil || resp.Instance.CustomerID != "acme" || resp.Instance.TotalUsers != 12 {
		t.Errorf("unexpected instance: %+v", resp.Instance)
	}
	if resp.Instance.FirstSeen.IsZero() || resp.Instance.LastHeartbeat.IsZero() {
		t.Errorf("timestamps not set: %+v", resp.Instance)
	}
}

func TestRegisterInstanceValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing customer_id", `{"version":"1.0.0"}`},
		{"missing version", `{"customer_id":"acme"}`},
		{"negative users", `{"customer_id":"acme","version":"1.0.0","total_users":-1}`},
		{"malformed json", `{"customer_id":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := database.NewMemStore()
			router := newTestRouter(t, store)

			w := postHeartbeat(router, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body = %s", w.Code, w.Body.String())
			}

			records, _ := store.ListInstances(context.Background())
			if len(records) != 0 {
				t.Errorf("rejected heartbeat created a record: %+v", records)
			}
		})
	}
}

func TestRegisterInstanceStorageFailure(t *testing.T) {
	router := newTestRouter(t, downStore{})

	w := postHeartbeat(router, `{"customer_id":"acme","version":"1.0.0"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503; body = %s", w.Code, w.Body.String())
	}
}

func TestRegisterInstanceUnknownHealthAccepted(t *testing.T) {
	router := newTestRouter(t, database.NewMemStore())

	w := postHeartbeat(router, `{"customer_id":"acme","version":"1.0.0","health":"on-fire"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Instance *model.InstanceRecord `json:"instance"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Instance.HealthStatus != model.HealthUnknown {
		t.Errorf("health = %q, want unknown", resp.Instance.HealthStatus)
	}
}

func TestGetLatestVersion(t *testing.T) {
	router := newTestRouter(t, database.NewMemStore())

	req := httptest.NewRequest(http.MethodGet, "/latest-version", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var info model.VersionInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Version != "1.2.3" || info.ChangelogURL != "https://hushlane.app/changelog" {
		t.Errorf("unexpected catalog record: %+v", info)
	}
	if info.Critical {
		t.Error("critical should default to false")
	}
}

func TestHealthAlways200(t *testing.T) {
	for _, store := range []database.Store{database.NewMemStore(), downStore{}} {
		router := newTestRouter(t, store)
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("health status = %d, want 200 regardless of storage", w.Code)
		}
	}
}

func TestAdminRequiresAuth(t *testing.T) {
	router := newTestRouter(t, database.NewMemStore())

	paths := []string{"/admin/summary", "/admin/instances", "/admin/updates"}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s without creds: status = %d, want 401", path, w.Code)
		}

		req = httptest.NewRequest(http.MethodGet, path, nil)
		req.SetBasicAuth("admin", "wrong")
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s with bad creds: status = %d, want 401", path, w.Code)
		}
	}
}

func TestAdminSummary(t *testing.T) {
	store := database.NewMemStore()
	router := newTestRouter(t, store)

	for i, health := range []string{"healthy", "healthy", "unhealthy"} {
		body := fmt.Sprintf(`{"customer_id":"c%d","version":"1.2.3","health":%q}`, i, health)
		if w := postHeartbeat(router, body); w.Code != http.StatusOK {
			t.Fatalf("seed heartbeat %d: status %d", i, w.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/summary", nil)
	req.SetBasicAuth("admin", "secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		LatestVersion string         `json:"latest_version"`
		Summary       *model.Summary `json:"summary"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.LatestVersion != "1.2.3" {
		t.Errorf("latest_version = %q", resp.LatestVersion)
	}
	if resp.Summary.TotalInstances != 3 {
		t.Errorf("total = %d, want 3", resp.Summary.TotalInstances)
	}
	if resp.Summary.ByHealth[model.HealthHealthy] != 2 || resp.Summary.ByHealth[model.HealthUnhealthy] != 1 {
		t.Errorf("by_health = %v", resp.Summary.ByHealth)
	}
}

func TestAdminInstanceLookup(t *testing.T) {
	router := newTestRouter(t, database.NewMemStore())

	if w := postHeartbeat(router, `{"customer_id":"acme","version":"1.0.0"}`); w.Code != http.StatusOK {
		t.Fatalf("seed: status %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/instances/acme", nil)
	req.SetBasicAuth("admin", "secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("known instance: status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/instances/ghost", nil)
	req.SetBasicAuth("admin", "secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown instance: status = %d, want 404", w.Code)
	}
}

func TestAdminInstanceHistory(t *testing.T) {
	router := newTestRouter(t, database.NewMemStore())

	for _, v := range []string{"v1", "v2"} {
		body := fmt.Sprintf(`{"customer_id":"acme","version":%q}`, v)
		if w := postHeartbeat(router, body); w.Code != http.StatusOK {
			t.Fatalf("seed %s: status %d", v, w.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/instances/acme/history", nil)
	req.SetBasicAuth("admin", "secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		History []*model.HistoryEntry `json:"history"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(resp.History))
	}
	if resp.History[0].OldVersion != "" || resp.History[1].OldVersion != "v1" {
		t.Errorf("history chain wrong: %+v", resp.History)
	}

	// history for a never-seen customer is an empty list, not an error
	req = httptest.NewRequest(http.MethodGet, "/admin/instances/ghost/history", nil)
	req.SetBasicAuth("admin", "secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("ghost history status = %d, want 200", w.Code)
	}
}

// downStore simulates an unreachable Postgres.
type downStore struct{}

var errDown = fmt.Errorf("dial tcp: connection refused")

func (downStore) ApplyHeartbeat(ctx context.Context, up *model.InstanceRecord) (*database.HeartbeatResult, error) {
	return nil, model.NewStorageError("apply heartbeat", errDown)
}

func (downStore) GetInstance(ctx context.Context, customerID string) (*model.InstanceRecord, error) {
	return nil, model.NewStorageError("get instance", errDown)
}

func (downStore) ListInstances(ctx context.Context) ([]*model.InstanceRecord, error) {
	return nil, model.NewStorageError("list instances", errDown)
}

func (downStore) HistoryFor(ctx context.Context, customerID string) ([]*model.HistoryEntry, error) {
	return nil, model.NewStorageError("history", errDown)
}

func (downStore) RecentHistory(ctx context.Context, limit int) ([]*model.HistoryEntry, error) {
	return nil, model.NewStorageError("recent history", errDown)
}

func (downStore) Ping(ctx context.Context) error { return errDown }
