package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/telcocrm/crm-system/internal/api/middleware"
	"github.com/telcocrm/crm-system/internal/core/domain"
	"github.com/telcocrm/crm-system/internal/core/ports"
)

type stubAuthService struct {
	result     *ports.LoginResult
	loginErr   error
	clearedIDs []string
}

func (s *stubAuthService) Login(_ context.Context, _, _ string) (*ports.LoginResult, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.result, nil
}

func (s *stubAuthService) Register(_ context.Context, email, _, firstName, lastName, phone string) (*domain.User, error) {
	return &domain.User{ID: "u1", Email: email, FirstName: firstName, LastName: lastName, PhoneNumber: phone, Role: domain.RoleUser}, nil
}

func (s *stubAuthService) Logout(_ context.Context, sessionID string) error {
	s.clearedIDs = append(s.clearedIDs, sessionID)
	return nil
}

func (s *stubAuthService) ForgotPassword(_ context.Context, _ string) error   { return nil }
func (s *stubAuthService) ResetPassword(_ context.Context, _, _ string) error { return nil }

type stubProvisioner struct {
	customerID string
	err        error
	calls      int
}

func (p *stubProvisioner) EnsureCustomerExists(_ context.Context, _ string) (string, error) {
	p.calls++
	return p.customerID, p.err
}

type stubSink struct {
	events []domain.AuditEvent
}

func (s *stubSink) Enqueue(e domain.AuditEvent) { s.events = append(s.events, e) }

func newAuthHandler(svc *stubAuthService, prov *stubProvisioner) (*AuthHandler, *stubSink) {
	sink := &stubSink{}
	return NewAuthHandler(svc, prov, sink, time.Hour, zerolog.Nop()), sink
}

func TestAuthHandler_Login_SetsSessionCookie(t *testing.T) {
	svc := &stubAuthService{result: &ports.LoginResult{
		Token:   "jwt-token",
		User:    &domain.User{ID: "u1", Email: "ana@example.com"},
		Session: &domain.Session{ID: "sess-1", IsLoggedIn: true, Role: "admin", UserID: "u1"},
	}}
	prov := &stubProvisioner{customerID: "cust-1"}
	h, sink := newAuthHandler(svc, prov)

	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"ana@example.com","password":"pass1234"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var sessionCookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.SessionCookieName {
			sessionCookie = ck
		}
	}
	if sessionCookie == nil || sessionCookie.Value != "sess-1" {
		t.Fatalf("session cookie not set: %+v", sessionCookie)
	}
	if !sessionCookie.HttpOnly {
		t.Fatalf("session cookie must be HttpOnly")
	}
	if prov.calls != 1 {
		t.Fatalf("provisioning not attempted")
	}
	if len(sink.events) != 1 || sink.events[0].Action != "user.login" {
		t.Fatalf("login audit event missing: %+v", sink.events)
	}
	if !strings.Contains(rec.Body.String(), `"customerId":"cust-1"`) {
		t.Fatalf("customer id not returned: %s", rec.Body.String())
	}
}

func TestAuthHandler_Login_ProvisioningFailureIsNonFatal(t *testing.T) {
	svc := &stubAuthService{result: &ports.LoginResult{
		Token:   "jwt-token",
		User:    &domain.User{ID: "u1", Email: "ana@example.com"},
		Session: &domain.Session{ID: "sess-1", IsLoggedIn: true, Role: "user", UserID: "u1"},
	}}
	prov := &stubProvisioner{err: context.DeadlineExceeded}
	h, _ := newAuthHandler(svc, prov)

	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"ana@example.com","password":"pass1234"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("login must survive provisioning failure, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	svc := &stubAuthService{loginErr: domain.ErrInvalidCredentials}
	h, _ := newAuthHandler(svc, &stubProvisioner{})

	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"ana@example.com","password":"wrong123"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("failed login must not set a cookie")
	}
}

func TestAuthHandler_Logout_ClearsSessionAndRedirects(t *testing.T) {
	svc := &stubAuthService{}
	h, _ := newAuthHandler(svc, &stubProvisioner{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "sess-1"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Logout(c); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("redirect = %q, want /login", loc)
	}
	if len(svc.clearedIDs) != 1 || svc.clearedIDs[0] != "sess-1" {
		t.Fatalf("server session not cleared: %v", svc.clearedIDs)
	}

	var expired *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.SessionCookieName {
			expired = ck
		}
	}
	if expired == nil || expired.MaxAge != -1 {
		t.Fatalf("cookie not expired: %+v", expired)
	}
}

func TestAuthHandler_Logout_WithoutCookieStillRedirects(t *testing.T) {
	svc := &stubAuthService{}
	h, _ := newAuthHandler(svc, &stubProvisioner{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Logout(c); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if len(svc.clearedIDs) != 0 {
		t.Fatalf("no session to clear, but Clear was called")
	}
}

func TestAuthHandler_Register_RejectsShortPassword(t *testing.T) {
	h, _ := newAuthHandler(&stubAuthService{}, &stubProvisioner{})

	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(`{"email":"b@example.com","password":"short","firstName":"B","lastName":"C"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
