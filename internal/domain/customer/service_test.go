package customer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laluna/internal/core/apperror"
	"laluna/internal/domain/customer"
	"laluna/internal/infrastructure/storage/memory"
)

func strPtr(s string) *string { return &s }

func newService() *customer.Service {
	return customer.NewService(memory.New().Customers())
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name  string
		in    customer.CreateInput
		field string
	}{
		{"short name", customer.CreateInput{Name: "A", Address: "x", Phone: "1155"}, "name"},
		{"missing address", customer.CreateInput{Name: "Ana", Address: "  ", Phone: "1155"}, "address"},
		{"bad phone", customer.CreateInput{Name: "Ana", Address: "x", Phone: "11-abc"}, "phone"},
		{"phone without digits", customer.CreateInput{Name: "Ana", Address: "x", Phone: "---"}, "phone"},
		{"phone of parentheses", customer.CreateInput{Name: "Ana", Address: "x", Phone: "()"}, "phone"},
		{"blank phone", customer.CreateInput{Name: "Ana", Address: "x", Phone: "   "}, "phone"},
		{"bad email", customer.CreateInput{Name: "Ana", Address: "x", Phone: "1155", Email: strPtr("nope")}, "email"},
		{"bad state", customer.CreateInput{Name: "Ana", Address: "x", Phone: "1155", State: "vip"}, "state"},
	}

	svc := newService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)
			assert.Equal(t, tt.field, appErr.Details["field"])
		})
	}
}

func TestRegister_DefaultsAndNormalizes(t *testing.T) {
	svc := newService()
	c, err := svc.Register(context.Background(), customer.CreateInput{
		Name:    "  María Gómez ",
		Address: "Av. Siempre Viva 742",
		Phone:   "+54 (11) 5555-1234",
		Email:   strPtr("  "),
	})
	require.NoError(t, err)

	assert.Equal(t, "María Gómez", c.Name)
	assert.Equal(t, customer.StateActive, c.State)
	assert.Nil(t, c.Email)
	assert.True(t, c.TotalBilled.IsZero())
	assert.Zero(t, c.OrderCount)
	assert.Nil(t, c.LastOrderDate)
}

func TestSoftDelete_HidesCustomer(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	c, err := svc.Register(ctx, customer.CreateInput{Name: "Ana", Address: "x", Phone: "1155"})
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(ctx, c.ID))

	_, err = svc.Get(ctx, c.ID)
	assert.True(t, apperror.IsNotFound(err))

	list, err := svc.List(ctx, customer.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.True(t, apperror.IsNotFound(svc.SoftDelete(ctx, c.ID)))
}

func TestUpdate_Partial(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	c, err := svc.Register(ctx, customer.CreateInput{Name: "Ana", Address: "x", Phone: "1155", Notes: strPtr("timbre 2")})
	require.NoError(t, err)

	inactive := customer.StateInactive
	updated, err := svc.Update(ctx, c.ID, customer.UpdateInput{Phone: strPtr("1166"), State: &inactive})
	require.NoError(t, err)

	assert.Equal(t, "Ana", updated.Name)
	assert.Equal(t, "1166", updated.Phone)
	assert.Equal(t, customer.StateInactive, updated.State)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "timbre 2", *updated.Notes)

	_, err = svc.Update(ctx, c.ID, customer.UpdateInput{Name: strPtr("")})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))
}

func TestList_SearchAndState(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	for _, name := range []string{"Zulema", "ana", "Bruno"} {
		_, err := svc.Register(ctx, customer.CreateInput{Name: name, Address: "x", Phone: "1155"})
		require.NoError(t, err)
	}
	inactive := customer.StateInactive
	_, err := svc.Register(ctx, customer.CreateInput{Name: "Anabel", Address: "x", Phone: "1177", State: inactive})
	require.NoError(t, err)

	found, err := svc.List(ctx, customer.ListFilter{Search: "AN"})
	require.NoError(t, err)
	require.Len(t, found, 2)

	onlyInactive, err := svc.List(ctx, customer.ListFilter{State: &inactive})
	require.NoError(t, err)
	require.Len(t, onlyInactive, 1)
	assert.Equal(t, "Anabel", onlyInactive[0].Name)

	byPhone, err := svc.List(ctx, customer.ListFilter{Search: "1177"})
	require.NoError(t, err)
	assert.Len(t, byPhone, 1)

	bad := customer.State("vip")
	_, err = svc.List(ctx, customer.ListFilter{State: &bad})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))
}
