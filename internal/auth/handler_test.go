package auth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/examplanner/examplanner/internal/rbac"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(t *testing.T, repo *mockRepository) (chi.Router, *Service) {
	t.Helper()
	svc := newTestService(t, repo, nil)
	handler := NewHandler(discardLogger(), svc, rbac.Middleware{Logger: discardLogger(), Current: CurrentActor}, false)
	r := chi.NewRouter()
	r.Route("/api/v0/auth", handler.MountRoutes)
	return r, svc
}

func postJSON(t *testing.T, router http.Handler, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestRegisterEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, newMockRepository())

	res := postJSON(t, router, "/api/v0/auth/register",
		`{"userName":"alice","email":"alice@example.com","password":"Password@1","name":"Alice"}`, "")
	if res.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", res.Code, res.Body.String())
	}

	var payload struct {
		Message string `json:"message"`
		Token   string `json:"token"`
		User    struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Token == "" {
		t.Error("expected a session token in the response")
	}
	if payload.User.Role != "user" {
		t.Errorf("role = %q, want user", payload.User.Role)
	}

	cookies := res.Result().Cookies()
	var found bool
	for _, c := range cookies {
		if c.Name == CookieName {
			found = true
			if !c.HttpOnly {
				t.Error("session cookie must be HttpOnly")
			}
		}
	}
	if !found {
		t.Error("session cookie was not set")
	}
}

func TestRegisterEndpointValidation(t *testing.T) {
	router, _ := newTestRouter(t, newMockRepository())

	res := postJSON(t, router, "/api/v0/auth/register", `{"userName":"al"}`, "")
	if res.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.Code)
	}
}

func TestRegisterEndpointDuplicate(t *testing.T) {
	router, _ := newTestRouter(t, newMockRepository())
	body := `{"userName":"alice","email":"alice@example.com","password":"Password@1","name":"Alice"}`

	if res := postJSON(t, router, "/api/v0/auth/register", body, ""); res.Code != http.StatusCreated {
		t.Fatalf("first register: %d", res.Code)
	}
	res := postJSON(t, router, "/api/v0/auth/register", body, "")
	if res.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", res.Code, res.Body.String())
	}
}

func TestLoginEndpoint(t *testing.T) {
	repo := newMockRepository()
	router, svc := newTestRouter(t, repo)
	_, _, err := svc.Register(context.Background(), RegisterInput{
		UserName: "alice", Email: "alice@example.com", Password: "Password@1", Name: "Alice",
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}

	res := postJSON(t, router, "/api/v0/auth/login", `{"email":"alice@example.com","password":"Password@1"}`, "")
	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", res.Code, res.Body.String())
	}

	res = postJSON(t, router, "/api/v0/auth/login", `{"email":"alice@example.com","password":"Wrong@pass1"}`, "")
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", res.Code)
	}

	res = postJSON(t, router, "/api/v0/auth/login", `{"email":"alice@example.com"}`, "")
	if res.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.Code)
	}
}

func TestAdminRegisterRequiresSuperadmin(t *testing.T) {
	repo := newMockRepository()
	router, svc := newTestRouter(t, repo)

	_, userToken, err := svc.Register(context.Background(), RegisterInput{
		UserName: "alice", Email: "alice@example.com", Password: "Password@1", Name: "Alice",
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}

	body := `{"userName":"helper","email":"helper@example.com","password":"Password@1","name":"Helper"}`

	// No token at all.
	if res := postJSON(t, router, "/api/v0/auth/admin/register", body, ""); res.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: status = %d, want 401", res.Code)
	}

	// Authenticated, but not a superadmin.
	if res := postJSON(t, router, "/api/v0/auth/admin/register", body, userToken); res.Code != http.StatusForbidden {
		t.Fatalf("user: status = %d, want 403", res.Code)
	}

	// Promote to superadmin directly in the store; the next resolve sees it.
	account, err := repo.GetByLogin(context.Background(), "alice")
	if err != nil {
		t.Fatalf("load account: %v", err)
	}
	account.Role = rbac.RoleSuperAdmin
	if err := repo.Update(context.Background(), account); err != nil {
		t.Fatalf("promote account: %v", err)
	}

	res := postJSON(t, router, "/api/v0/auth/admin/register", body, userToken)
	if res.Code != http.StatusCreated {
		t.Fatalf("superadmin: status = %d, want 201: %s", res.Code, res.Body.String())
	}
}

func TestImpersonateEndpoint(t *testing.T) {
	repo := newMockRepository()
	router, svc := newTestRouter(t, repo)

	target, _, err := svc.Register(context.Background(), RegisterInput{
		UserName: "alice", Email: "alice@example.com", Password: "Password@1", Name: "Alice",
	})
	if err != nil {
		t.Fatalf("seed target: %v", err)
	}
	adminAccount, adminToken, err := svc.Register(context.Background(), RegisterInput{
		UserName: "boss", Email: "boss@example.com", Password: "Password@1", Name: "Boss",
	})
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	adminAccount.Role = rbac.RoleAdmin
	if err := repo.Update(context.Background(), adminAccount); err != nil {
		t.Fatalf("promote admin: %v", err)
	}

	res := postJSON(t, router, "/api/v0/auth/impersonate", `{"userName":"alice"}`, adminToken)
	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", res.Code, res.Body.String())
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	claims, err := svc.Codec().Decode(payload.Token)
	if err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if claims.Subject != target.ID {
		t.Errorf("subject = %q, want %q", claims.Subject, target.ID)
	}
	if claims.ImpersonatedBy != adminAccount.ID {
		t.Errorf("impersonated_by = %q, want %q", claims.ImpersonatedBy, adminAccount.ID)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	router, _ := newTestRouter(t, newMockRepository())

	res := postJSON(t, router, "/api/v0/auth/logout", ``, "")
	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
	var cleared bool
	for _, c := range res.Result().Cookies() {
		if c.Name == CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected the session cookie to be expired")
	}
}
