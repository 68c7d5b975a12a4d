package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/telcocrm/crm-system/internal/core/domain"
)

type recordedRequest struct {
	method string
	path   string
	token  string
}

// newBackend starts a test server that answers each verb with the configured
// status, echoing the customer body back on success.
func newBackend(t *testing.T, statusFor map[string]int) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			token:  r.Header.Get("Token"),
		})
		status, ok := statusFor[r.Method]
		if !ok {
			status = http.StatusOK
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		var c domain.Customer
		_ = json.NewDecoder(r.Body).Decode(&c)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(c)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestUpdateCustomer_FirstVerbSucceeds(t *testing.T) {
	srv, requests := newBackend(t, nil)
	c := New(srv.URL, "test-token", time.Second, zerolog.Nop())

	updated, err := c.UpdateCustomer(context.Background(), "42", &domain.Customer{ID: "42", FirstName: "Ana"})
	if err != nil {
		t.Fatalf("UpdateCustomer returned error: %v", err)
	}
	if updated.FirstName != "Ana" {
		t.Fatalf("response not decoded: %+v", updated)
	}
	if len(*requests) != 1 {
		t.Fatalf("expected exactly one request, got %d", len(*requests))
	}
	got := (*requests)[0]
	if got.method != http.MethodPut || got.path != "/customers/42/" {
		t.Fatalf("first attempt = %s %s, want PUT /customers/42/", got.method, got.path)
	}
	if got.token != "test-token" {
		t.Fatalf("Token header = %q", got.token)
	}
}

func TestUpdateCustomer_WalksVerbSequenceOn405(t *testing.T) {
	srv, requests := newBackend(t, map[string]int{
		http.MethodPut:   http.StatusMethodNotAllowed,
		http.MethodPatch: http.StatusMethodNotAllowed,
	})
	c := New(srv.URL, "test-token", time.Second, zerolog.Nop())

	updated, err := c.UpdateCustomer(context.Background(), "42", &domain.Customer{ID: "42"})
	if err != nil {
		t.Fatalf("UpdateCustomer returned error: %v", err)
	}
	if updated == nil {
		t.Fatalf("expected decoded customer")
	}

	want := []recordedRequest{
		{method: http.MethodPut, path: "/customers/42/", token: "test-token"},
		{method: http.MethodPatch, path: "/customers/42/", token: "test-token"},
		{method: http.MethodPost, path: "/customers/42/update/", token: "test-token"},
	}
	if len(*requests) != len(want) {
		t.Fatalf("expected %d requests, got %d", len(want), len(*requests))
	}
	for i, w := range want {
		if (*requests)[i] != w {
			t.Fatalf("attempt %d = %+v, want %+v", i, (*requests)[i], w)
		}
	}
}

func TestUpdateCustomer_NonMethodErrorSurfacesImmediately(t *testing.T) {
	srv, requests := newBackend(t, map[string]int{
		http.MethodPut: http.StatusInternalServerError,
	})
	c := New(srv.URL, "test-token", time.Second, zerolog.Nop())

	_, err := c.UpdateCustomer(context.Background(), "42", &domain.Customer{ID: "42"})
	if err == nil {
		t.Fatalf("expected error")
	}
	var ue *Error
	if !errors.As(err, &ue) || ue.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 upstream error, got %v", err)
	}
	if len(*requests) != 1 {
		t.Fatalf("a non-405 failure must stop the sequence, got %d requests", len(*requests))
	}
}

func TestUpdateCustomer_AllVerbsRejectedSurfacesLastError(t *testing.T) {
	srv, requests := newBackend(t, map[string]int{
		http.MethodPut:   http.StatusMethodNotAllowed,
		http.MethodPatch: http.StatusMethodNotAllowed,
		http.MethodPost:  http.StatusMethodNotAllowed,
	})
	c := New(srv.URL, "test-token", time.Second, zerolog.Nop())

	_, err := c.UpdateCustomer(context.Background(), "42", &domain.Customer{ID: "42"})
	var ue *Error
	if !errors.As(err, &ue) || ue.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected final 405 to surface, got %v", err)
	}
	if len(*requests) != 3 {
		t.Fatalf("expected the full sequence, got %d requests", len(*requests))
	}
}

func TestUpdateCustomer_TransportErrorSurfaces(t *testing.T) {
	c := New("http://127.0.0.1:1", "test-token", 200*time.Millisecond, zerolog.Nop())

	if _, err := c.UpdateCustomer(context.Background(), "42", &domain.Customer{ID: "42"}); err == nil {
		t.Fatalf("expected transport error")
	}
}
