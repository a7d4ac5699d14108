package handler

import (
	"net/http"
	"testing"

	"tsound-server/internal/model"
)

func TestAuthRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/auth", map[string]string{
		"action": "register", "username": "alice", "password": "pw",
	}, nil)
	mustStatus(t, w, http.StatusOK)
	var reg struct {
		SessionID   string `json:"sessionId"`
		Username    string `json:"username"`
		UserID      uint   `json:"userId"`
		AvatarURL   string `json:"avatarUrl"`
		AccessToken string `json:"accessToken"`
	}
	decode(t, w, &reg)
	if reg.SessionID == "" || reg.Username != "alice" || reg.UserID == 0 || reg.AvatarURL == "" || reg.AccessToken == "" {
		t.Fatalf("unexpected register response: %+v", reg)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}

	w = env.do(t, http.MethodPost, "/api/v1/auth", map[string]string{
		"action": "register", "username": "alice", "password": "other",
	}, nil)
	mustError(t, w, http.StatusBadRequest, "Username already exists")

	w = env.do(t, http.MethodPost, "/api/v1/auth", map[string]string{
		"action": "login", "username": "alice", "password": "wrong",
	}, nil)
	mustError(t, w, http.StatusUnauthorized, "Invalid credentials")

	var user model.User
	env.db.Model(&model.User{}).Where("username = ?", "alice").Update("status", model.StatusOffline)

	// action 缺省为 login
	w = env.do(t, http.MethodPost, "/api/v1/auth", map[string]string{
		"username": "alice", "password": "pw",
	}, nil)
	mustStatus(t, w, http.StatusOK)

	if err := env.db.Where("username = ?", "alice").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.Status != model.StatusOnline {
		t.Fatalf("expected online after login, got %s", user.Status)
	}
}

func TestAuthValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/auth", map[string]string{"action": "register", "username": "bob"}, nil)
	mustError(t, w, http.StatusBadRequest, "Username and password required")

	w = env.do(t, http.MethodPost, "/api/v1/auth", map[string]string{"action": "reset"}, nil)
	mustError(t, w, http.StatusNotFound, "Endpoint not found")

	w = env.do(t, http.MethodPost, "/api/v1/auth", "{not json", nil)
	mustError(t, w, http.StatusBadRequest, "Invalid JSON")

	w = env.do(t, http.MethodGet, "/api/v1/auth", nil, nil)
	mustError(t, w, http.StatusMethodNotAllowed, "Method not allowed")
}

func TestAuthLogout(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/auth", map[string]string{
		"action": "register", "username": "carol", "password": "pw",
	}, nil)
	mustStatus(t, w, http.StatusOK)
	var reg struct {
		SessionID string `json:"sessionId"`
	}
	decode(t, w, &reg)

	w = env.do(t, http.MethodPost, "/api/v1/auth", map[string]string{"action": "logout", "sessionId": reg.SessionID}, nil)
	mustStatus(t, w, http.StatusOK)

	w = env.do(t, http.MethodPost, "/api/v1/auth", map[string]string{"action": "logout", "sessionId": "missing"}, nil)
	mustError(t, w, http.StatusNotFound, "Session not found")
}

func TestAuthPreflight(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodOptions, "/api/v1/auth", nil, nil)
	mustStatus(t, w, http.StatusOK)
	if w.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", w.Body.String())
	}
	h := w.Header()
	if h.Get("Access-Control-Allow-Origin") != "*" ||
		h.Get("Access-Control-Allow-Methods") != authMethods ||
		h.Get("Access-Control-Allow-Headers") != authHeaders ||
		h.Get("Access-Control-Max-Age") != "86400" {
		t.Fatalf("unexpected preflight headers: %v", h)
	}
}

func TestBrowserPreflightHandledByCORS(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodOptions, "/api/v1/tracks", nil, map[string]string{
		"Origin":                        "http://example.com",
		"Access-Control-Request-Method": http.MethodPut,
	})
	mustStatus(t, w, http.StatusOK)
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("unexpected allow origin %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if w.Header().Get("Access-Control-Max-Age") != "86400" {
		t.Fatalf("unexpected max age %q", w.Header().Get("Access-Control-Max-Age"))
	}
}
