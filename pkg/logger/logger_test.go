package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appctx "laluna/internal/core/context"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{zap.New(core).Sugar()}, logs
}

func TestInfo_EnrichesFromContext(t *testing.T) {
	l, logs := observed()
	ctx := WithLogger(context.Background(), l)
	ctx = appctx.WithTrace(ctx, &appctx.TraceContext{TraceID: "t-1", RequestID: "r-1"})

	orderID := uuid.New()
	Info(ctx, "order placed", OrderID(orderID), Money("price", decimal.RequireFromString("15000.5")), BranchID(2))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "t-1", fields["trace_id"])
	assert.Equal(t, "r-1", fields["request_id"])
	assert.Equal(t, orderID.String(), fields["order_id"])
	assert.Equal(t, "15000.50", fields["price"])
	assert.EqualValues(t, 2, fields["branch_id"])
}

func TestWithContext_NoIdentityKeepsLogger(t *testing.T) {
	l, _ := observed()
	assert.Same(t, l, l.WithContext(context.Background()))
}

func TestFields(t *testing.T) {
	l, logs := observed()
	l.WithComponent("worker").Warnw("failed", Err(errors.New("boom")), Quantity("after", decimal.NewFromInt(5)))

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "worker", fields["component"])
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, "5.000", fields["after"])
}
