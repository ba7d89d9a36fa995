package customer

import (
	"context"
	"fmt"
	"time"

	"laluna/internal/core/apperror"
	"laluna/internal/core/id"
	"laluna/pkg/logger"
)

// CreateInput holds the fields accepted on registration.
type CreateInput struct {
	Name    string
	Address string
	Phone   string
	Email   *string
	Notes   *string
	State   State
}

// UpdateInput holds a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	Name    *string
	Address *string
	Phone   *string
	Email   *string
	Notes   *string
	State   *State
}

// Service implements the customer ledger.
type Service struct {
	repo Repository
}

// NewService creates a new customer service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register validates and stores a new customer with zeroed aggregates.
func (s *Service) Register(ctx context.Context, in CreateInput) (*Customer, error) {
	now := time.Now().UTC()
	c := &Customer{
		ID:           id.New(),
		Name:         in.Name,
		Address:      in.Address,
		Phone:        in.Phone,
		Email:        in.Email,
		Notes:        in.Notes,
		State:        in.State,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
	if c.State == "" {
		c.State = StateActive
	}
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}

	logger.Info(ctx, "customer registered", logger.CustomerID(c.ID), "name", c.Name)
	return c, nil
}

// Get returns a customer that is not soft-deleted.
func (s *Service) Get(ctx context.Context, customerID id.ID) (*Customer, error) {
	c, err := s.repo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if c.IsDeleted {
		return nil, apperror.NewNotFound("customer", customerID)
	}
	return c, nil
}

// List returns non-deleted customers ordered by name.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Customer, error) {
	if filter.State != nil && !filter.State.IsValid() {
		return nil, apperror.NewInvalidInput("state", "state must be active or inactive")
	}
	return s.repo.List(ctx, filter)
}

// Update merges the provided fields onto the stored customer.
func (s *Service) Update(ctx context.Context, customerID id.ID, in UpdateInput) (*Customer, error) {
	c, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Address != nil {
		c.Address = *in.Address
	}
	if in.Phone != nil {
		c.Phone = *in.Phone
	}
	if in.Email != nil {
		c.Email = in.Email
	}
	if in.Notes != nil {
		c.Notes = in.Notes
	}
	if in.State != nil {
		c.State = *in.State
	}
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return c, nil
}

// SoftDelete hides the customer from default views. Orders are kept.
func (s *Service) SoftDelete(ctx context.Context, customerID id.ID) error {
	if _, err := s.Get(ctx, customerID); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, customerID, time.Now().UTC()); err != nil {
		return fmt.Errorf("soft delete customer: %w", err)
	}
	logger.Info(ctx, "customer soft-deleted", logger.CustomerID(customerID))
	return nil
}

// RecomputeStatistics rebuilds the cached aggregates over every order of the
// customer. Idempotent; callers run it inside the transaction of the order write.
func (s *Service) RecomputeStatistics(ctx context.Context, customerID id.ID) error {
	stats, err := s.repo.RecomputeStatistics(ctx, customerID)
	if err != nil {
		return fmt.Errorf("recompute customer statistics: %w", err)
	}
	logger.Debug(ctx, "customer statistics recomputed",
		logger.CustomerID(customerID),
		logger.Money("total_billed", stats.TotalBilled),
		"order_count", stats.OrderCount,
	)
	return nil
}
