package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"tsound-server/config"
	"tsound-server/internal/model"
	"tsound-server/internal/repository"
	"tsound-server/internal/service"
	dbPkg "tsound-server/pkg/db"
	"tsound-server/pkg/jwt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	tokens *jwt.JWTService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := dbPkg.Open(config.DatabaseConfig{
		Driver:   "sqlite",
		Database: filepath.Join(t.TempDir(), "handler.db"),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := dbPkg.AutoMigrate(gdb, model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := config.Default()
	tokens := jwt.NewJWTService(config.JWTConfig{Secret: "handler-secret", ExpireTime: time.Hour, Issuer: "test"})
	users := repository.NewUserRepository(gdb, "")
	presence := service.NewPresenceService(users, cfg.Presence.Window, nil)

	router := SetupRouter(Handlers{
		Auth:     NewAuthHandler(service.NewAuthService(users, tokens, cfg.Auth, nil)),
		Presence: NewPresenceHandler(presence),
		Messenger: NewMessengerHandler(service.NewMessengerService(
			repository.NewMessageRepository(gdb),
			repository.NewChatRepository(gdb),
			users,
			presence,
			nil,
		)),
		Tracks: NewTrackHandler(service.NewTrackService(repository.NewTrackRepository(gdb))),
		Health: NewHealthHandler(func(ctx context.Context) error { return dbPkg.HealthCheck(ctx, gdb) }, nil),
		Tokens: tokens,
	})
	return &testEnv{router: router, db: gdb, tokens: tokens}
}

func (e *testEnv) do(t *testing.T, method, target string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d, body = %s", w.Code, want, w.Body.String())
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func mustError(t *testing.T, w *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	mustStatus(t, w, status)
	var body struct {
		Error string `json:"error"`
	}
	decode(t, w, &body)
	if body.Error != message {
		t.Fatalf("error = %q, want %q", body.Error, message)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("missing CORS header on error response: %q", got)
	}
}
