package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestUnconfiguredDatabase(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := SetupRouter(Handlers{})

	for _, path := range []string{"/api/v1/auth", "/api/v1/online", "/api/v1/messenger?action=online", "/api/v1/tracks"} {
		method := http.MethodGet
		if path == "/api/v1/auth" {
			method = http.MethodPost
		}
		req := httptest.NewRequest(method, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		mustError(t, w, http.StatusInternalServerError, "Database not configured")
	}

	// 预检不依赖数据库
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/online", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	mustStatus(t, w, http.StatusOK)
}

func TestUnknownRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := SetupRouter(Handlers{})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/playlists", nil))
	mustError(t, w, http.StatusNotFound, "Endpoint not found")
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/health", nil, nil)
	mustStatus(t, w, http.StatusOK)
	var body map[string]string
	decode(t, w, &body)
	if body["status"] != "ok" || body["redis"] != "disabled" {
		t.Fatalf("unexpected health: %v", body)
	}

	gin.SetMode(gin.TestMode)
	down := SetupRouter(Handlers{Health: NewHealthHandler(
		func(context.Context) error { return errors.New("down") },
		func(context.Context) error { return errors.New("redis down") },
	)})
	w = httptest.NewRecorder()
	down.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	mustStatus(t, w, http.StatusServiceUnavailable)
	decode(t, w, &body)
	if body["status"] != "db-down" || body["redis"] != "redis down" {
		t.Fatalf("unexpected health: %v", body)
	}
}

func TestHealthReportsPresenceMirror(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ok := func(context.Context) error { return nil }

	router := SetupRouter(Handlers{Health: NewHealthHandler(ok, ok).
		WithPresenceMirror(func(context.Context) (int64, error) { return 3, nil })})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	mustStatus(t, w, http.StatusOK)
	var body map[string]interface{}
	decode(t, w, &body)
	if body["redis"] != "ok" || body["presenceMirror"] != float64(3) {
		t.Fatalf("unexpected health: %v", body)
	}

	router = SetupRouter(Handlers{Health: NewHealthHandler(ok, ok).
		WithPresenceMirror(func(context.Context) (int64, error) { return 0, errors.New("mirror down") })})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	mustStatus(t, w, http.StatusOK)
	body = nil
	decode(t, w, &body)
	if body["presenceMirror"] != "mirror down" {
		t.Fatalf("unexpected health: %v", body)
	}

	// 未启用镜像时不报告
	router = SetupRouter(Handlers{Health: NewHealthHandler(ok, nil)})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	body = nil
	decode(t, w, &body)
	if _, found := body["presenceMirror"]; found {
		t.Fatalf("presenceMirror must be absent without redis: %v", body)
	}
}
