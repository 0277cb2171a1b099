package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Imanalii/yitiflow-dashboard/internal/auth"
	"github.com/Imanalii/yitiflow-dashboard/internal/config"
	internalhttp "github.com/Imanalii/yitiflow-dashboard/internal/http"
	"github.com/Imanalii/yitiflow-dashboard/internal/store"
)

// newDegradedApp spins up the full router over a store with no database,
// the documented local-development mode.
func newDegradedApp(t *testing.T) (*httptest.Server, config.Config) {
	t.Helper()
	cfg := config.Config{
		HTTPAddr:      ":0",
		DatabaseURL:   "",
		JWTSecret:     "test-secret",
		JWTIssuer:     "test-issuer",
		SessionCookie: "yitiflow_session",
		SessionTTL:    time.Hour,
	}
	st := store.New(cfg.DatabaseURL, cfg.OwnerOpenID, zap.NewNop())
	server := internalhttp.NewServer(cfg, st, auth.NewSessionRevoker(nil, cfg.SessionTTL), zap.NewNop())
	app := httptest.NewServer(server.Router())
	t.Cleanup(app.Close)
	t.Cleanup(st.Close)
	return app, cfg
}

func doJSON(t *testing.T, method, url string, body string, cookies []*http.Cookie) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http error: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode error: %v", err)
	}
}

func TestDegradedListsReturnEmpty(t *testing.T) {
	app, _ := newDegradedApp(t)

	for _, path := range []string{"/api/vehicles.list", "/api/trips.list", "/api/rewards.list"} {
		resp := doJSON(t, http.MethodGet, app.URL+path, "", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.StatusCode)
		}
		var rows []json.RawMessage
		decodeBody(t, resp, &rows)
		if len(rows) != 0 {
			t.Fatalf("%s: expected empty list, got %d rows", path, len(rows))
		}
	}
}

func TestDegradedSensorSaveFails(t *testing.T) {
	app, _ := newDegradedApp(t)

	body := `{"vehicleId": 1, "deviceId": "dev-1", "timestamp": "2026-08-20T10:00:00Z"}`
	resp := doJSON(t, http.MethodPost, app.URL+"/api/sensors.save", body, nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
	var payload map[string]string
	decodeBody(t, resp, &payload)
	if payload["error"] != "store_unavailable" {
		t.Fatalf("expected store_unavailable, got %q", payload["error"])
	}
}

func TestValidationRejectedBeforeStore(t *testing.T) {
	app, _ := newDegradedApp(t)

	for _, body := range []string{`{}`, `{"id": "1"}`, `null`, `[]`} {
		resp := doJSON(t, http.MethodPost, app.URL+"/api/vehicles.getById", body, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, resp.StatusCode)
		}
		var payload map[string]string
		decodeBody(t, resp, &payload)
		if payload["error"] != "invalid input: expected { id: number }" {
			t.Fatalf("body %s: expected shape in error, got %q", body, payload["error"])
		}
	}
}

// Absent store and absent row produce the same "not found" signal; the
// conflation is documented behavior, not an accident.
func TestGetByIDAbsenceIsNull(t *testing.T) {
	app, _ := newDegradedApp(t)

	for _, path := range []string{"/api/vehicles.getById", "/api/trips.getById"} {
		resp := doJSON(t, http.MethodPost, app.URL+path, `{"id": 999}`, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.StatusCode)
		}
		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("read error: %v", err)
		}
		if string(bytes.TrimSpace(raw)) != "null" {
			t.Fatalf("%s: expected null, got %s", path, raw)
		}
	}

	resp := doJSON(t, http.MethodPost, app.URL+"/api/sensors.getLatestByVehicle", `{"vehicleId": 7}`, nil)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(bytes.TrimSpace(raw)) != "null" {
		t.Fatalf("expected null reading, got %s", raw)
	}
}

func TestDegradedBalanceIsZero(t *testing.T) {
	app, _ := newDegradedApp(t)

	resp := doJSON(t, http.MethodPost, app.URL+"/api/rewards.getTotalBalance", `{"userId": 3}`, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var balance map[string]int64
	decodeBody(t, resp, &balance)
	if balance["totalEarned"] != 0 || balance["totalRedeemed"] != 0 || balance["balance"] != 0 {
		t.Fatalf("expected zero balance, got %+v", balance)
	}
}

func TestAuthMeWithoutSession(t *testing.T) {
	app, _ := newDegradedApp(t)

	resp := doJSON(t, http.MethodGet, app.URL+"/api/auth.me", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(bytes.TrimSpace(raw)) != "null" {
		t.Fatalf("expected null identity, got %s", raw)
	}
}

func TestAuthSessionSetsCookieAndLogoutClearsIt(t *testing.T) {
	app, cfg := newDegradedApp(t)

	resp := doJSON(t, http.MethodPost, app.URL+"/api/auth.session", `{"openId": "visitor-1"}`, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var session *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == cfg.SessionCookie {
			session = cookie
		}
	}
	resp.Body.Close()
	if session == nil || session.Value == "" {
		t.Fatalf("expected session cookie to be set")
	}

	resp = doJSON(t, http.MethodPost, app.URL+"/api/auth.logout", "", []*http.Cookie{session})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var payload map[string]bool
	decodeBody(t, resp, &payload)
	if !payload["success"] {
		t.Fatalf("expected logout success")
	}
	cleared := false
	for _, cookie := range resp.Cookies() {
		if cookie.Name == cfg.SessionCookie && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("expected session cookie to be cleared")
	}
}

func TestAuthSessionRequiresOpenID(t *testing.T) {
	app, _ := newDegradedApp(t)

	for _, body := range []string{`{}`, `{"openId": 5}`, `{"openId": null}`} {
		resp := doJSON(t, http.MethodPost, app.URL+"/api/auth.session", body, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestAdminProceduresRequireSession(t *testing.T) {
	app, _ := newDegradedApp(t)

	adminCalls := map[string]string{
		"/api/vehicles.create":         `{"providerId": 1, "type": "boat", "licensePlate": "YT-B-009", "capacity": 12, "fuelType": "diesel"}`,
		"/api/vehicles.updateLocation": `{"id": 1, "latitude": "23.6", "longitude": "58.5"}`,
		"/api/trips.updateStatus":      `{"id": 1, "status": "completed"}`,
		"/api/rewards.create":          `{"userId": 1, "type": "loyalty", "amount": 10}`,
	}
	for path, body := range adminCalls {
		resp := doJSON(t, http.MethodPost, app.URL+path, body, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 without session, got %d", path, resp.StatusCode)
		}
		resp.Body.Close()
	}
}
