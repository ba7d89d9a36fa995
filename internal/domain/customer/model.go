// Package customer implements the customer ledger: registration, soft deletion
// and the cached billing aggregates kept in sync by the order ledger.
package customer

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"laluna/internal/core/apperror"
	"laluna/internal/core/id"
	"laluna/internal/core/types"
)

// State is the lifecycle state of a customer.
type State string

const (
	StateActive   State = "active"
	StateInactive State = "inactive"
)

// IsValid reports whether s is a known state.
func (s State) IsValid() bool {
	return s == StateActive || s == StateInactive
}

const (
	nameMinLen = 2
	nameMaxLen = 150
)

var (
	// Digits, spaces, +, - and parentheses, with at least one digit.
	phonePattern = regexp.MustCompile(`^[\s\-\+\(\)]*[0-9][0-9\s\-\+\(\)]*$`)
	validate     = validator.New()
)

// Customer is a registered buyer. TotalBilled, OrderCount and LastOrderDate are
// materialized from the customer's orders and are written only by RecomputeStatistics.
type Customer struct {
	ID      id.ID   `db:"id"`
	Name    string  `db:"name"`
	Address string  `db:"address"`
	Phone   string  `db:"phone"`
	Email   *string `db:"email"`
	Notes   *string `db:"notes"`
	State   State   `db:"state"`

	TotalBilled   types.Money `db:"total_billed"`
	OrderCount    int         `db:"order_count"`
	LastOrderDate *time.Time  `db:"last_order_date"`

	RegisteredAt time.Time  `db:"registered_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	IsDeleted    bool       `db:"is_deleted"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

// Statistics is the aggregate recomputed over all orders of a customer.
type Statistics struct {
	TotalBilled   types.Money
	OrderCount    int
	LastOrderDate *time.Time
}

// Normalize trims user-provided text fields and drops blank optionals.
func (c *Customer) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Address = strings.TrimSpace(c.Address)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = trimOptional(c.Email)
	c.Notes = trimOptional(c.Notes)
}

// Validate checks the contact fields.
func (c *Customer) Validate() error {
	if n := utf8.RuneCountInString(c.Name); n < nameMinLen || n > nameMaxLen {
		return apperror.NewInvalidInput("name", "name must be between 2 and 150 characters")
	}
	if c.Address == "" {
		return apperror.NewInvalidInput("address", "address is required")
	}
	if c.Phone == "" || !phonePattern.MatchString(c.Phone) {
		return apperror.NewInvalidInput("phone", "phone must contain digits and only spaces, +, - or parentheses besides them").
			WithDetail("value", c.Phone)
	}
	if c.Email != nil {
		if err := validate.Var(*c.Email, "email"); err != nil {
			return apperror.NewInvalidInput("email", "email is not valid").WithDetail("value", *c.Email)
		}
	}
	if !c.State.IsValid() {
		return apperror.NewInvalidInput("state", "state must be active or inactive")
	}
	return nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
