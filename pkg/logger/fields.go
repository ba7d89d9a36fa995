package logger

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Typed fields keep key names and value formats identical across services,
// so log queries can rely on them.

func TraceID(v string) zap.Field   { return zap.String("trace_id", v) }
func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func UserID(v string) zap.Field    { return zap.String("user_id", v) }

func OrderID(v fmt.Stringer) zap.Field    { return zap.Stringer("order_id", v) }
func CustomerID(v fmt.Stringer) zap.Field { return zap.Stringer("customer_id", v) }
func ProductID(v fmt.Stringer) zap.Field  { return zap.Stringer("product_id", v) }
func BranchID(v int) zap.Field            { return zap.Int("branch_id", v) }

// Money renders an amount with two decimals, e.g. "15000.50".
func Money(key string, v decimal.Decimal) zap.Field {
	return zap.String(key, v.StringFixed(2))
}

// Quantity renders a stock quantity with three decimals.
func Quantity(key string, v decimal.Decimal) zap.Field {
	return zap.String(key, v.StringFixed(3))
}

// Err is zap.Error under the usual "error" key.
func Err(err error) zap.Field { return zap.Error(err) }
