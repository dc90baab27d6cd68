package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"notevi/internal/auth"
	"notevi/internal/config"
	"notevi/internal/entity"
	"notevi/internal/mailer"
	"notevi/internal/model"
	"notevi/internal/storage"
)

func newTestHandler(t *testing.T) *HTTPHandler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	cfg := config.Config{
		DBType:               "sqlite",
		DBPath:               filepath.Join(dir, "test.db"),
		RoleDefault:          "user",
		PasswordMinLen:       8,
		PasswordMaxLen:       128,
		AllowedImageExts:     []string{"png", "jpg"},
		AllowedDocumentExts:  []string{"md", "txt"},
		JWTSecret:            "test-secret",
		JWTIssuer:            "notevi-test",
		JWTExpirationMinutes: 60,
	}

	repo, err := model.InitRepository(&cfg)
	if err != nil {
		t.Fatalf("InitRepository: %v", err)
	}
	if err := model.SeedDefaultRoles(context.Background(), repo); err != nil {
		t.Fatalf("SeedDefaultRoles: %v", err)
	}
	store, err := storage.NewLocalStorage(filepath.Join(dir, "static"))
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	h, err := NewHTTPHandler(cfg, repo, store, mailer.NewPublisher(cfg))
	if err != nil {
		t.Fatalf("NewHTTPHandler: %v", err)
	}
	return h
}

func (h *HTTPHandler) registerTestUser(t *testing.T, email, username string) *entity.DbUser {
	t.Helper()
	user, err := h.userService.Register(context.Background(), &entity.RegisterRequest{
		Email:    email,
		Username: username,
		Password: "correct-horse-battery",
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	return user
}

func (h *HTTPHandler) sessionTokenFor(t *testing.T, user *entity.DbUser) string {
	t.Helper()
	token, _, err := h.authManager.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

func TestAuthMiddlewareRejectsAnonymous(t *testing.T) {
	h := newTestHandler(t)
	r := gin.New()
	r.GET("/ping", h.AuthMiddleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthMiddlewareAcceptsCookieAndBearer(t *testing.T) {
	h := newTestHandler(t)
	user := h.registerTestUser(t, "alice@example.com", "alice")
	token := h.sessionTokenFor(t, user)

	var seen *RequestUser
	r := gin.New()
	r.GET("/ping", h.AuthMiddleware(), func(c *gin.Context) {
		seen = CurrentUser(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("cookie auth: expected 200, got %d", w.Code)
	}
	if seen == nil || seen.ID != user.ID || seen.Username != "alice" {
		t.Fatalf("cookie auth: unexpected request user %+v", seen)
	}
	if seen.Permission != entity.PermissionUser {
		t.Fatalf("expected default permission %q, got %q", entity.PermissionUser, seen.Permission)
	}

	seen = nil
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("bearer auth: expected 200, got %d", w.Code)
	}
	if seen == nil || seen.ID != user.ID {
		t.Fatalf("bearer auth: unexpected request user %+v", seen)
	}
}

func TestAuthMiddlewareRejectsDisabledAccount(t *testing.T) {
	h := newTestHandler(t)
	user := h.registerTestUser(t, "alice@example.com", "alice")
	token := h.sessionTokenFor(t, user)

	inactive := false
	if err := h.repo.UpdateUser(context.Background(), user.ID, entity.UserUpdates{IsActive: &inactive}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	r := gin.New()
	r.GET("/ping", h.AuthMiddleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for disabled account, got %d", w.Code)
	}
}

func TestOptionalAuthAllowsAnonymous(t *testing.T) {
	h := newTestHandler(t)

	var seen *RequestUser
	called := false
	r := gin.New()
	r.GET("/ping", h.OptionalAuthMiddleware(), func(c *gin.Context) {
		called = true
		seen = CurrentUser(c)
		c.Status(http.StatusOK)
	})

	for _, header := range []string{"", "Bearer garbage"} {
		called = false
		seen = &RequestUser{}
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK || !called {
			t.Fatalf("header %q: expected anonymous passthrough, got %d", header, w.Code)
		}
		if seen != nil {
			t.Fatalf("header %q: expected no request user, got %+v", header, seen)
		}
	}
}

func TestOptionalAuthResolvesUser(t *testing.T) {
	h := newTestHandler(t)
	user := h.registerTestUser(t, "alice@example.com", "alice")
	token := h.sessionTokenFor(t, user)

	var seen *RequestUser
	r := gin.New()
	r.GET("/ping", h.OptionalAuthMiddleware(), func(c *gin.Context) {
		seen = CurrentUser(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if seen == nil || seen.ID != user.ID {
		t.Fatalf("expected resolved request user, got %+v", seen)
	}
}

func TestOptionalAuthRejectsDisabledAccount(t *testing.T) {
	h := newTestHandler(t)
	user := h.registerTestUser(t, "alice@example.com", "alice")
	token := h.sessionTokenFor(t, user)

	inactive := false
	if err := h.repo.UpdateUser(context.Background(), user.ID, entity.UserUpdates{IsActive: &inactive}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	r := gin.New()
	r.GET("/ping", h.OptionalAuthMiddleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for disabled account, got %d", w.Code)
	}
}

func TestRequireVerifiedGate(t *testing.T) {
	h := newTestHandler(t)
	user := h.registerTestUser(t, "alice@example.com", "alice")
	token := h.sessionTokenFor(t, user)

	r := gin.New()
	r.POST("/ping", h.AuthMiddleware(), h.RequireVerified(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("unverified user: expected 403, got %d", w.Code)
	}

	verified := true
	if err := h.repo.UpdateUser(context.Background(), user.ID, entity.UserUpdates{IsVerified: &verified}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("verified user: expected 200, got %d", w.Code)
	}
}

func TestRequireAdminGate(t *testing.T) {
	h := newTestHandler(t)
	user := h.registerTestUser(t, "alice@example.com", "alice")
	token := h.sessionTokenFor(t, user)

	r := gin.New()
	r.GET("/ping", h.AuthMiddleware(), h.RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("plain user: expected 403, got %d", w.Code)
	}

	ctx := context.Background()
	role, err := h.repo.GetRoleByName(ctx, "admin")
	if err != nil {
		t.Fatalf("GetRoleByName(admin): %v", err)
	}
	if err := h.repo.UpdateUser(ctx, user.ID, entity.UserUpdates{RoleID: &role.ID}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("admin user: expected 200, got %d", w.Code)
	}
}
