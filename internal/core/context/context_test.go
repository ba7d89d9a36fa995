package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetUser(ctx))
	assert.Equal(t, "", GetUserID(ctx))
	assert.False(t, HasRole(ctx, RoleAdmin))

	ctx = WithUser(ctx, &UserContext{UserID: "u-1", Username: "ana", Role: RoleSalesperson})
	assert.Equal(t, "u-1", GetUserID(ctx))
	assert.True(t, HasRole(ctx, RoleAdmin, RoleSalesperson))
	assert.False(t, HasRole(ctx, RoleAdmin))
	assert.False(t, GetUser(ctx).IsAdmin())
}

func TestTraceContext(t *testing.T) {
	ctx := WithTrace(context.Background(), &TraceContext{TraceID: "t", RequestID: "r"})
	assert.Equal(t, "r", GetRequestID(ctx))
	assert.Equal(t, "", GetRequestID(context.Background()))
}
