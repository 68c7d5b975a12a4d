package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/telcocrm/crm-system/internal/core/domain"
	"github.com/telcocrm/crm-system/internal/core/ports"
)

type stubSync struct {
	calls int
	err   error
}

func (s *stubSync) UpdateCustomer(_ context.Context, _ string, c *domain.Customer) (*domain.Customer, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return c, nil
}

func TestCustomerService_Update_MirrorsUpstream(t *testing.T) {
	repo := newStubCustomerRepo()
	sync := &stubSync{}
	svc := NewCustomerService(repo, sync, zerolog.Nop())
	created, _ := repo.Create(context.Background(), &domain.Customer{
		FirstName: "Ana", Email: "ana@example.com", UserID: "u1", Status: "active",
	})

	updated, err := svc.Update(context.Background(), created.ID, ports.CustomerInput{
		FirstName: "Ana", LastName: "Lopez", Email: "ana@example.com",
		UserID: "attacker-controlled",
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if sync.calls != 1 {
		t.Fatalf("expected one upstream sync, got %d", sync.calls)
	}
	if updated.LastName != "Lopez" {
		t.Fatalf("update not applied: %+v", updated)
	}
	// Ownership link never changes through update.
	if updated.UserID != "u1" {
		t.Fatalf("UserID overwritten to %q", updated.UserID)
	}
}

func TestCustomerService_Update_SyncFailureIsNonFatal(t *testing.T) {
	repo := newStubCustomerRepo()
	sync := &stubSync{err: errors.New("upstream down")}
	svc := NewCustomerService(repo, sync, zerolog.Nop())
	created, _ := repo.Create(context.Background(), &domain.Customer{FirstName: "Ana", UserID: "u1"})

	updated, err := svc.Update(context.Background(), created.ID, ports.CustomerInput{
		FirstName: "Ana", LastName: "Lopez",
	})
	if err != nil {
		t.Fatalf("local update must survive a failed mirror, got %v", err)
	}

	stored, _ := repo.FindByID(context.Background(), updated.ID)
	if stored.LastName != "Lopez" {
		t.Fatalf("local write lost: %+v", stored)
	}
}

func TestCustomerService_Update_NotFound(t *testing.T) {
	svc := NewCustomerService(newStubCustomerRepo(), &stubSync{}, zerolog.Nop())

	if _, err := svc.Update(context.Background(), "nope", ports.CustomerInput{}); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestCustomerService_List_ClampsLimit(t *testing.T) {
	repo := newStubCustomerRepo()
	svc := NewCustomerService(repo, &stubSync{}, zerolog.Nop())

	if _, _, err := svc.List(context.Background(), ports.ListFilter{Page: 0, Limit: 10_000}); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if repo.lastFilter.Page != 1 {
		t.Fatalf("page not defaulted: %d", repo.lastFilter.Page)
	}
	if repo.lastFilter.Limit != maxPageLimit {
		t.Fatalf("limit not clamped: %d", repo.lastFilter.Limit)
	}
}
