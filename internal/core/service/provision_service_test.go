package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/telcocrm/crm-system/internal/core/domain"
	"github.com/telcocrm/crm-system/internal/core/ports"
)

type stubCustomerRepo struct {
	customers  map[string]*domain.Customer
	creates    int
	nextID     int
	lastFilter ports.ListFilter
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{customers: make(map[string]*domain.Customer)}
}

func cloneCustomer(c *domain.Customer) *domain.Customer {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

func (r *stubCustomerRepo) Create(_ context.Context, c *domain.Customer) (*domain.Customer, error) {
	r.creates++
	r.nextID++
	copy := cloneCustomer(c)
	copy.ID = "cust-" + string(rune('0'+r.nextID))
	r.customers[copy.ID] = cloneCustomer(copy)
	return copy, nil
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id string) (*domain.Customer, error) {
	if c, ok := r.customers[id]; ok {
		return cloneCustomer(c), nil
	}
	return nil, domain.ErrCustomerNotFound
}

func (r *stubCustomerRepo) FindByUserID(_ context.Context, userID string) (*domain.Customer, error) {
	for _, c := range r.customers {
		if c.UserID == userID {
			return cloneCustomer(c), nil
		}
	}
	return nil, domain.ErrCustomerNotFound
}

func (r *stubCustomerRepo) List(_ context.Context, filter ports.ListFilter) ([]*domain.Customer, int64, error) {
	r.lastFilter = filter
	out := make([]*domain.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		out = append(out, cloneCustomer(c))
	}
	return out, int64(len(out)), nil
}

func (r *stubCustomerRepo) Update(_ context.Context, c *domain.Customer) error {
	if _, ok := r.customers[c.ID]; !ok {
		return domain.ErrCustomerNotFound
	}
	r.customers[c.ID] = cloneCustomer(c)
	return nil
}

func (r *stubCustomerRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.customers[id]; !ok {
		return domain.ErrCustomerNotFound
	}
	delete(r.customers, id)
	return nil
}

func (r *stubCustomerRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	var n int64
	for _, c := range r.customers {
		if status == "" || c.Status == status {
			n++
		}
	}
	return n, nil
}

type stubGuard struct {
	acquired bool
	err      error
	calls    int
}

func (g *stubGuard) Acquire(_ context.Context, _ string) (bool, error) {
	g.calls++
	return g.acquired, g.err
}

type stubAuditSink struct {
	events []domain.AuditEvent
}

func (s *stubAuditSink) Enqueue(e domain.AuditEvent) {
	s.events = append(s.events, e)
}

func provisionFixture() (*stubSessionStore, *stubUserRepo, *stubCustomerRepo, *stubGuard, *stubAuditSink, *ProvisionService) {
	sessions := newStubSessionStore()
	users := newStubUserRepo()
	customers := newStubCustomerRepo()
	guard := &stubGuard{acquired: true}
	audit := &stubAuditSink{}
	svc := NewProvisionService(sessions, users, customers, guard, audit, zerolog.Nop())
	return sessions, users, customers, guard, audit, svc
}

func TestProvision_FastPathSkipsRepositories(t *testing.T) {
	sessions, _, customers, guard, _, svc := provisionFixture()
	sessions.sessions["s1"] = &domain.Session{
		ID: "s1", IsLoggedIn: true, UserID: "u1",
		HasCustomer: true, CustomerID: "cust-9",
	}

	for i := 0; i < 2; i++ {
		id, err := svc.EnsureCustomerExists(context.Background(), "s1")
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if id != "cust-9" {
			t.Fatalf("call %d: id = %q, want cust-9", i, id)
		}
	}
	if customers.creates != 0 {
		t.Fatalf("fast path created %d customers", customers.creates)
	}
	if guard.calls != 0 {
		t.Fatalf("fast path touched the guard %d times", guard.calls)
	}
}

func TestProvision_CreatesCustomerAndUpdatesSession(t *testing.T) {
	sessions, users, customers, _, audit, svc := provisionFixture()
	user, _ := users.Create(context.Background(), &domain.User{
		Email: "ana@example.com", FirstName: "Ana", LastName: "Lopez",
	})
	sessions.sessions["s1"] = &domain.Session{
		ID: "s1", IsLoggedIn: true, UserID: user.ID, Email: user.Email,
	}

	id, err := svc.EnsureCustomerExists(context.Background(), "s1")
	if err != nil {
		t.Fatalf("EnsureCustomerExists: %v", err)
	}
	if customers.creates != 1 {
		t.Fatalf("expected one create, got %d", customers.creates)
	}

	created, err := customers.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("created customer not found: %v", err)
	}
	if created.UserID != user.ID {
		t.Fatalf("customer user link = %q, want %q", created.UserID, user.ID)
	}
	if created.PhoneNumber != placeholderPhone {
		t.Fatalf("phone = %q, want placeholder %q", created.PhoneNumber, placeholderPhone)
	}

	sess := sessions.sessions["s1"]
	if !sess.HasCustomer || sess.CustomerID != id {
		t.Fatalf("session not updated: %+v", sess)
	}
	if len(audit.events) != 1 || audit.events[0].Action != "provision" {
		t.Fatalf("expected one provision audit event, got %+v", audit.events)
	}
}

func TestProvision_LookupFallsBackToEmail(t *testing.T) {
	sessions, users, customers, _, _, svc := provisionFixture()
	user, _ := users.Create(context.Background(), &domain.User{Email: "ana@example.com"})
	// The session carries a user id that no longer resolves.
	sessions.sessions["s1"] = &domain.Session{
		ID: "s1", IsLoggedIn: true, UserID: "stale", Email: "ana@example.com",
	}

	id, err := svc.EnsureCustomerExists(context.Background(), "s1")
	if err != nil {
		t.Fatalf("EnsureCustomerExists: %v", err)
	}
	created, _ := customers.FindByID(context.Background(), id)
	if created.UserID != user.ID {
		t.Fatalf("customer linked to %q, want %q", created.UserID, user.ID)
	}
}

func TestProvision_LookupFallsBackToFirstUser(t *testing.T) {
	sessions, users, customers, _, _, svc := provisionFixture()
	older, _ := users.Create(context.Background(), &domain.User{
		Email: "first@example.com", CreatedAt: time.Now().Add(-time.Hour),
	})
	_, _ = users.Create(context.Background(), &domain.User{
		Email: "second@example.com", CreatedAt: time.Now(),
	})
	sessions.sessions["s1"] = &domain.Session{
		ID: "s1", IsLoggedIn: true, UserID: "stale", Email: "ghost@example.com",
	}

	id, err := svc.EnsureCustomerExists(context.Background(), "s1")
	if err != nil {
		t.Fatalf("EnsureCustomerExists: %v", err)
	}
	created, _ := customers.FindByID(context.Background(), id)
	if created.UserID != older.ID {
		t.Fatalf("customer linked to %q, want oldest user %q", created.UserID, older.ID)
	}
}

func TestProvision_GuardLostReusesExistingCustomer(t *testing.T) {
	sessions, users, customers, guard, _, svc := provisionFixture()
	guard.acquired = false
	user, _ := users.Create(context.Background(), &domain.User{Email: "ana@example.com"})
	existing, _ := customers.Create(context.Background(), &domain.Customer{UserID: user.ID})
	customers.creates = 0
	sessions.sessions["s1"] = &domain.Session{
		ID: "s1", IsLoggedIn: true, UserID: user.ID, Email: user.Email,
	}

	id, err := svc.EnsureCustomerExists(context.Background(), "s1")
	if err != nil {
		t.Fatalf("EnsureCustomerExists: %v", err)
	}
	if id != existing.ID {
		t.Fatalf("id = %q, want existing %q", id, existing.ID)
	}
	if customers.creates != 0 {
		t.Fatalf("created a duplicate customer")
	}
}

func TestProvision_MissingSessionFails(t *testing.T) {
	_, _, _, _, _, svc := provisionFixture()

	if _, err := svc.EnsureCustomerExists(context.Background(), "nope"); err == nil {
		t.Fatalf("expected error for missing session")
	}
}
