package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tsound-server/config"

	"github.com/gin-gonic/gin"
)

func newTestService() *JWTService {
	return NewJWTService(config.JWTConfig{Secret: "test-secret-key-1234567890", ExpireTime: time.Hour, Issuer: "tsound"})
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestService()
	token, err := svc.GenerateToken("42", "sess-1", "alice")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Subject != "42" || claims.SessionID != "sess-1" || claims.Username != "alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateRejectsExpiredAndForeignTokens(t *testing.T) {
	svc := newTestService()
	token, err := svc.GenerateToken("42", "sess-1", "alice")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatalf("expected expired token to fail")
	}

	other := NewJWTService(config.JWTConfig{Secret: "another-secret-abcdefghij", ExpireTime: time.Hour, Issuer: "tsound"})
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatalf("expected token signed with another key to fail")
	}
	if _, err := svc.GenerateToken("", "s", "u"); err == nil {
		t.Fatalf("expected empty user id to fail")
	}
}

func TestOptionalAuthSetsContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestService()
	token, _ := svc.GenerateToken("7", "sess-7", "bob")

	router := gin.New()
	router.Use(svc.OptionalAuth())
	router.GET("/who", func(c *gin.Context) {
		c.String(http.StatusOK, GetUserID(c)+"|"+GetSessionID(c))
	})

	cases := map[string]string{
		"Bearer " + token: "7|sess-7",
		"":                "|",
		"Bearer garbage":  "|",
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/who", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK || resp.Body.String() != want {
			t.Fatalf("header %q: expected %q, got %d %q", header, want, resp.Code, resp.Body.String())
		}
	}
}
