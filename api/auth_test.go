package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testTokens() *adminTokens {
	return &adminTokens{
		secret:     []byte("test-secret"),
		cookieName: defaultCookieName,
		ttl:        time.Hour,
	}
}

func TestAdminTokenRoundtrip(t *testing.T) {
	tokens := testTokens()

	signed, err := tokens.sign("studio@example.com")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	email, err := tokens.verify(signed)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if email != "studio@example.com" {
		t.Errorf("email = %q", email)
	}
}

func TestNewAdminTokensSecureFlag(t *testing.T) {
	cases := []struct {
		name string
		cfg  map[string]string
		want bool
	}{
		{"default is insecure", map[string]string{"ADMIN_JWT_SECRET": "s"}, false},
		{"production implies secure", map[string]string{"ADMIN_JWT_SECRET": "s", "GO_ENV": "production"}, true},
		{"explicit override wins", map[string]string{"ADMIN_JWT_SECRET": "s", "GO_ENV": "production", "ADMIN_COOKIE_SECURE": "false"}, false},
		{"explicit enable", map[string]string{"ADMIN_JWT_SECRET": "s", "ADMIN_COOKIE_SECURE": "true"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tokens, err := newAdminTokens(tc.cfg)
			if err != nil {
				t.Fatalf("newAdminTokens: %v", err)
			}
			if tokens.secure != tc.want {
				t.Errorf("secure = %v, want %v", tokens.secure, tc.want)
			}
			if got := tokens.sessionCookie("tok", 60).Secure; got != tc.want {
				t.Errorf("cookie secure = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAdminTokenExpired(t *testing.T) {
	tokens := testTokens()
	tokens.ttl = -time.Minute

	signed, err := tokens.sign("studio@example.com")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := tokens.verify(signed); err == nil {
		t.Fatal("expired token must not verify")
	}
}

func TestAdminTokenWrongSecret(t *testing.T) {
	tokens := testTokens()
	signed, err := tokens.sign("studio@example.com")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	other := testTokens()
	other.secret = []byte("different-secret")
	if _, err := other.verify(signed); err == nil {
		t.Fatal("token signed with another secret must not verify")
	}
}

func TestAuthenticateMiddleware(t *testing.T) {
	tokens := testTokens()
	middleware := newAuthMiddleware(tokens)

	var seenEmail string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenEmail, _ = adminEmailFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := middleware.authenticate(next)

	// No cookie
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status without cookie = %d, want 401", rec.Code)
	}

	// Garbage cookie
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.AddCookie(&http.Cookie{Name: tokens.cookieName, Value: "not-a-jwt"})
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status with garbage cookie = %d, want 401", rec.Code)
	}

	// Valid cookie
	signed, err := tokens.sign("studio@example.com")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.AddCookie(&http.Cookie{Name: tokens.cookieName, Value: signed})
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status with valid cookie = %d, want 200", rec.Code)
	}
	if seenEmail != "studio@example.com" {
		t.Errorf("context email = %q", seenEmail)
	}

	// Bearer token works without the cookie
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status with bearer token = %d, want 200", rec.Code)
	}
}

func TestLoginHandler(t *testing.T) {
	tokens := testTokens()
	handler := newAuthHandler(tokens, map[string]string{
		"ADMIN_EMAIL":    "studio@example.com",
		"ADMIN_PASSWORD": "open-sesame",
	})

	t.Run("valid credentials set the session cookie", func(t *testing.T) {
		body := `{"email":"studio@example.com","password":"open-sesame"}`
		rec := httptest.NewRecorder()
		handler.login()(rec, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(body)))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}

		var cookie *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == tokens.cookieName {
				cookie = c
			}
		}
		if cookie == nil {
			t.Fatal("session cookie not set")
		}
		if !cookie.HttpOnly || cookie.SameSite != http.SameSiteStrictMode {
			t.Errorf("cookie flags = %+v", cookie)
		}
		if email, err := tokens.verify(cookie.Value); err != nil || email != "studio@example.com" {
			t.Errorf("cookie token email = %q, err = %v", email, err)
		}
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		body := `{"email":"studio@example.com","password":"guess"}`
		rec := httptest.NewRecorder()
		handler.login()(rec, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(body)))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		if len(rec.Result().Cookies()) != 0 {
			t.Error("no cookie should be set on rejected login")
		}
	})
}

func TestMeHandlerNeverErrors(t *testing.T) {
	tokens := testTokens()
	handler := newAuthHandler(tokens, map[string]string{})

	rec := httptest.NewRecorder()
	handler.me()(rec, httptest.NewRequest(http.MethodGet, "/api/admin/me", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if authed, _ := resp["authenticated"].(bool); authed {
		t.Error("unauthenticated caller reported as authenticated")
	}
}
