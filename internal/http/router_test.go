package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"supportdesk/internal/config"
	"supportdesk/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() config.Config {
	return config.Config{
		APIBasePath:     "/api",
		RateRPS:         1000,
		RateBurst:       1000,
		WebhookDedupTTL: time.Minute,
		WebAppBaseURL:   "http://127.0.0.1:1", // unused unless proxied
	}
}

func newTestEngine(t *testing.T, cfg config.Config) *gin.Engine {
	t.Helper()

	path := filepath.Join(t.TempDir(), "router.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Request{}, &domain.Message{}, &domain.Log{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	r := gin.New()
	RegisterRoutes(r, db, nil, nil, cfg)
	return r
}

func TestRouter_Health(t *testing.T) {
	r := newTestEngine(t, testConfig())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}

func TestRouter_APIEndToEnd(t *testing.T) {
	r := newTestEngine(t, testConfig())

	payload := strings.NewReader(`{"user_id": 777, "issue": "cannot log in"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/support-request", payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("X-Request-ID missing")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/chat/1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("thread status = %d body = %s", w.Code, w.Body.String())
	}
}

func TestRouter_WebhookAcksAndValidates(t *testing.T) {
	r := newTestEngine(t, testConfig())

	// nil bot still ACKs valid updates so Telegram stops retrying
	body := strings.NewReader(`{"update_id": 1001}`)
	req := httptest.NewRequest(http.MethodPost, "/webhook", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("webhook status = %d", w.Code)
	}

	// malformed payload is rejected
	req = httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed webhook status = %d", w.Code)
	}
}

func TestUpdateDedup(t *testing.T) {
	d := newUpdateDedup(50 * time.Millisecond)

	if d.Seen(1) {
		t.Fatalf("first delivery reported as duplicate")
	}
	if !d.Seen(1) {
		t.Fatalf("second delivery not deduplicated")
	}
	if d.Seen(2) {
		t.Fatalf("distinct id reported as duplicate")
	}

	time.Sleep(60 * time.Millisecond)
	if d.Seen(1) {
		t.Fatalf("expired id still deduplicated")
	}
}

func TestRouter_SwaggerServesSpecWhenEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.SwaggerEnabled = true
	r := newTestEngine(t, cfg)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("doc.json status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Support Desk API") {
		t.Fatalf("doc.json body = %q", w.Body.String()[:min(200, w.Body.Len())])
	}

	// disabled by default
	w = httptest.NewRecorder()
	newTestEngine(t, testConfig()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	if w.Code == http.StatusOK {
		t.Fatalf("swagger served despite being disabled")
	}
}

// closeNotifyRecorder adds the http.CloseNotifier interface that a real
// http.Server ResponseWriter provides; httputil.ReverseProxy requires it and
// gin's writer panics when the underlying httptest recorder lacks it.
type closeNotifyRecorder struct{ *httptest.ResponseRecorder }

func (closeNotifyRecorder) CloseNotify() <-chan bool { return make(chan bool) }

func TestRouter_ProxyForwardsNonAPIPaths(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>webapp:" + r.URL.Path + "</html>"))
	}))
	defer upstream.Close()

	cfg := testConfig()
	cfg.WebAppBaseURL = upstream.URL
	r := newTestEngine(t, cfg)

	w := httptest.NewRecorder()
	r.ServeHTTP(closeNotifyRecorder{w}, httptest.NewRequest(http.MethodGet, "/chat/42?user_id=777", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("proxied status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "webapp:/chat/42") {
		t.Fatalf("proxied body = %q", w.Body.String())
	}

	// unknown API paths are never proxied
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("api 404 status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "not_found") {
		t.Fatalf("api 404 body = %q", w.Body.String())
	}
}

func TestIsBackendPath(t *testing.T) {
	cases := map[string]bool{
		"/api":           true,
		"/api/requests":  true,
		"/webhook":       true,
		"/health":        true,
		"/metrics":       true,
		"/swagger/index": true,
		"/":              false,
		"/chat/42":       false,
		"/apifoo":        false,
	}
	for path, want := range cases {
		if got := isBackendPath(path, "/api"); got != want {
			t.Errorf("isBackendPath(%q) = %v; want %v", path, got, want)
		}
	}
}
