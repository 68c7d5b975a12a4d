package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/telcocrm/crm-system/internal/core/domain"
	"github.com/telcocrm/crm-system/internal/core/ports"
)

const maxPageLimit = 100

// CustomerService implements subscriber CRUD. The local store is
// authoritative; updates are additionally mirrored to the legacy billing
// backend, and a failed mirror is logged but does not fail the operation.
type CustomerService struct {
	repo ports.CustomerRepository
	sync ports.CustomerSync
	log  zerolog.Logger
}

func NewCustomerService(repo ports.CustomerRepository, sync ports.CustomerSync, log zerolog.Logger) *CustomerService {
	return &CustomerService{repo: repo, sync: sync, log: log}
}

func (s *CustomerService) Create(ctx context.Context, in ports.CustomerInput) (*domain.Customer, error) {
	now := time.Now().UTC()
	status := in.Status
	if status == "" {
		status = "active"
	}

	customer := &domain.Customer{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		UserID:      in.UserID,
		Address:     in.Address,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Create(ctx, customer)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create customer")
		return nil, err
	}

	s.log.Info().Str("customer_id", created.ID).Msg("customer created")
	return created, nil
}

func (s *CustomerService) Get(ctx context.Context, id string) (*domain.Customer, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CustomerService) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Customer, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}
	return s.repo.List(ctx, filter)
}

// Update replaces the writable fields of a customer, persists locally, then
// mirrors the record upstream. The ownership link (UserID) is immutable after
// creation and is deliberately not taken from the input.
func (s *CustomerService) Update(ctx context.Context, id string, in ports.CustomerInput) (*domain.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	customer.FirstName = in.FirstName
	customer.LastName = in.LastName
	customer.Email = in.Email
	customer.PhoneNumber = in.PhoneNumber
	customer.Address = in.Address
	if in.Status != "" {
		customer.Status = in.Status
	}
	customer.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, err
	}

	if _, syncErr := s.sync.UpdateCustomer(ctx, id, customer); syncErr != nil {
		s.log.Warn().Err(syncErr).Str("customer_id", id).Msg("upstream customer sync failed")
	}

	return customer, nil
}

func (s *CustomerService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
