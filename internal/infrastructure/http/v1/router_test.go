package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laluna/internal/core/idempotency"
	"laluna/internal/domain/auth"
	"laluna/internal/domain/customer"
	"laluna/internal/domain/inventory"
	"laluna/internal/domain/notify"
	"laluna/internal/domain/order"
	"laluna/internal/domain/reports"
	v1 "laluna/internal/infrastructure/http/v1"
	"laluna/internal/infrastructure/realtime"
	"laluna/internal/infrastructure/storage/memory"
)

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	store  *memory.Store
	auth   *auth.Service
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := memory.New()
	jwtSvc := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))
	authSvc := auth.NewService(store.Users(), store, jwtSvc)
	customers := customer.NewService(store.Customers())
	orders := order.NewService(store.Orders(), customers, store, store,
		notify.NewFormatter(notify.Config{BusinessName: "VERDULERIA LA LUNA"}))
	hub := realtime.NewHub(nil)
	t.Cleanup(hub.Close)

	router := v1.NewRouter(v1.RouterConfig{
		Storage:          "memory",
		Version:          "test",
		Store:            store,
		JWTValidator:     jwtSvc,
		Idempotency:      memory.NewIdempotencyStore(idempotency.DefaultTTL),
		AuthService:      authSvc,
		CustomerService:  customers,
		OrderService:     orders,
		InventoryService: inventory.NewService(store.Inventory(), store, store, hub),
		ReportsService:   reports.NewService(orders, "Verduleria La Luna"),
		Hub:              hub,
	})
	return &testAPI{t: t, router: router, store: store, auth: authSvc}
}

// token seeds a user with the given role and logs in.
func (a *testAPI) token(username string, role auth.Role) string {
	a.t.Helper()
	ctx := context.Background()
	_, err := a.auth.SeedAdmins(ctx, []auth.SeedUser{{Username: username, Password: "secreto1", Name: username, Role: role}})
	require.NoError(a.t, err)
	res, err := a.auth.Login(ctx, auth.Credentials{Username: username, Password: "secreto1"})
	require.NoError(a.t, err)
	return res.Token
}

func (a *testAPI) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Message string         `json:"message"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

type orderBody struct {
	ID           string          `json:"id"`
	Price        decimal.Decimal `json:"price"`
	AmountPaid   decimal.Decimal `json:"amountPaid"`
	Outstanding  decimal.Decimal `json:"outstanding"`
	PaymentState string          `json:"paymentState"`
	Version      int             `json:"version"`
	Customer     *struct {
		Name string `json:"name"`
	} `json:"customer"`
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{"/health/live", "/health/ready", "/health/info"} {
		t.Run(path, func(t *testing.T) {
			w := api.do(http.MethodGet, path, "", nil)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header"},
		{name: "wrong scheme", header: "Basic abc"},
		{name: "bad token", header: "Bearer not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			api.router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			env := decode[any](t, w)
			assert.False(t, env.Success)
			assert.Equal(t, "UNAUTHORIZED", env.Code)
		})
	}
}

func TestLoginAndVerify(t *testing.T) {
	api := newTestAPI(t)
	api.token("admin", auth.RoleAdmin)

	w := api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "admin", "password": "secreto1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
	}](t, w)
	assert.Equal(t, "admin", login.Data.User.Username)
	assert.NotContains(t, w.Body.String(), "password")

	w = api.do(http.MethodGet, "/api/v1/auth/verify", login.Data.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)
}

func TestUsers_AdminOnly(t *testing.T) {
	api := newTestAPI(t)
	admin := api.token("admin", auth.RoleAdmin)
	seller := api.token("vendedora", auth.RoleSalesperson)

	w := api.do(http.MethodGet, "/api/v1/users", seller, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPost, "/api/v1/users", admin, map[string]string{"username": "nuevo", "password": "secreto1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(http.MethodPost, "/api/v1/users", admin, map[string]string{"username": "nuevo", "password": "secreto1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(http.MethodGet, "/api/v1/users", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := decode[[]map[string]any](t, w)
	assert.Len(t, users.Data, 3)
}

func TestOrderFlow(t *testing.T) {
	api := newTestAPI(t)
	tok := api.token("vendedora", auth.RoleSalesperson)

	w := api.do(http.MethodPost, "/api/v1/customers", tok, map[string]string{
		"name": "Ana", "address": "Calle 7 1234", "phone": "011 5555-1234",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	cust := decode[struct {
		ID string `json:"id"`
	}](t, w)

	w = api.do(http.MethodPost, "/api/v1/orders", tok, map[string]any{
		"customerId":  cust.Data.ID,
		"description": "Cajon de tomates",
		"price":       "15000.50",
		"amountPaid":  "5000",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[struct {
		Order        orderBody `json:"order"`
		WhatsAppLink string    `json:"whatsappLink"`
	}](t, w)
	assert.Equal(t, "unpaid", created.Data.Order.PaymentState)
	assert.Equal(t, "10000.50", created.Data.Order.Outstanding.StringFixed(2))
	assert.Contains(t, created.Data.WhatsAppLink, "https://wa.me/5491155551234?text=")
	orderPath := "/api/v1/orders/" + created.Data.Order.ID

	w = api.do(http.MethodPatch, orderPath+"/payments", tok, map[string]any{"amount": 20000})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	paid := decode[orderBody](t, w)
	assert.Equal(t, "paid", paid.Data.PaymentState)
	assert.True(t, paid.Data.AmountPaid.Equal(paid.Data.Price), "payment is capped at the price")

	w = api.do(http.MethodPatch, orderPath+"/amount-paid", tok, map[string]any{"amountPaid": "100"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "unpaid", decode[orderBody](t, w).Data.PaymentState)

	w = api.do(http.MethodGet, "/api/v1/orders?paymentState=unpaid&pageSize=10", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Success    bool        `json:"success"`
		Data       []orderBody `json:"data"`
		Total      int64       `json:"total"`
		Page       int         `json:"page"`
		PageSize   int         `json:"pageSize"`
		TotalPages int         `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.True(t, page.Success)
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, 10, page.PageSize)
	require.Len(t, page.Data, 1)
	require.NotNil(t, page.Data[0].Customer)
	assert.Equal(t, "Ana", page.Data[0].Customer.Name)

	w = api.do(http.MethodGet, "/api/v1/orders/statistics", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"countUnpaid":1`)

	w = api.do(http.MethodGet, "/api/v1/orders/reports?months=3", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"monthsBack":3`)

	w = api.do(http.MethodGet, "/api/v1/orders/reports/pdf", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = api.do(http.MethodDelete, orderPath, tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "order deleted", decode[any](t, w).Message)

	w = api.do(http.MethodGet, orderPath, tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderErrors(t *testing.T) {
	api := newTestAPI(t)
	tok := api.token("vendedora", auth.RoleSalesperson)

	tests := []struct {
		name     string
		method   string
		path     string
		body     any
		wantCode int
		wantErr  string
	}{
		{
			name:     "malformed id",
			method:   http.MethodGet,
			path:     "/api/v1/orders/not-a-uuid",
			wantCode: http.StatusBadRequest,
			wantErr:  "INVALID_INPUT",
		},
		{
			name:     "unknown order",
			method:   http.MethodGet,
			path:     "/api/v1/orders/0190a5c4-0000-7000-8000-000000000000",
			wantCode: http.StatusNotFound,
			wantErr:  "NOT_FOUND",
		},
		{
			name:     "missing description",
			method:   http.MethodPost,
			path:     "/api/v1/orders",
			body:     map[string]any{"customerId": "0190a5c4-0000-7000-8000-000000000000", "price": 10},
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION_ERROR",
		},
		{
			name:     "bad payment state filter",
			method:   http.MethodGet,
			path:     "/api/v1/orders?paymentState=partial",
			wantCode: http.StatusBadRequest,
			wantErr:  "INVALID_INPUT",
		},
		{
			name:     "months out of range",
			method:   http.MethodGet,
			path:     "/api/v1/orders/reports?months=99",
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(tt.method, tt.path, tok, tt.body)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			assert.Equal(t, tt.wantErr, decode[any](t, w).Code)
		})
	}
}

func TestIdempotentOrderPlacement(t *testing.T) {
	api := newTestAPI(t)
	tok := api.token("vendedora", auth.RoleSalesperson)

	w := api.do(http.MethodPost, "/api/v1/customers", tok, map[string]string{
		"name": "Beto", "address": "Av. Siempre Viva 742", "phone": "+54 11 4444-0000",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	custID := decode[struct {
		ID string `json:"id"`
	}](t, w).Data.ID

	body := map[string]any{"customerId": custID, "description": "Papas 5kg", "price": "4500"}

	first := api.do(http.MethodPost, "/api/v1/orders", tok, body, "X-Idempotency-Key", "order-1")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	second := api.do(http.MethodPost, "/api/v1/orders", tok, body, "X-Idempotency-Key", "order-1")
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	w = api.do(http.MethodGet, "/api/v1/orders", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	body["price"] = "9999"
	conflict := api.do(http.MethodPost, "/api/v1/orders", tok, body, "X-Idempotency-Key", "order-1")
	assert.Equal(t, http.StatusConflict, conflict.Code)
	assert.Equal(t, "IDEMPOTENCY_CONFLICT", decode[any](t, conflict).Code)
}

func TestIdempotencyKeyReleasedOnFailure(t *testing.T) {
	api := newTestAPI(t)
	tok := api.token("vendedora", auth.RoleSalesperson)

	body := map[string]any{"customerId": "0190a5c4-0000-7000-8000-000000000000", "description": "Lechuga", "price": "800"}

	w := api.do(http.MethodPost, "/api/v1/orders", tok, body, "X-Idempotency-Key", "retry-me")
	require.Equal(t, http.StatusNotFound, w.Code)

	// Same key and body: the failed attempt did not pin the key.
	w = api.do(http.MethodPost, "/api/v1/orders", tok, body, "X-Idempotency-Key", "retry-me")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Header().Get("Idempotent-Replayed"))
}

func TestInventoryRoutes(t *testing.T) {
	api := newTestAPI(t)
	admin := api.token("admin", auth.RoleAdmin)
	seller := api.token("vendedora", auth.RoleSalesperson)

	w := api.do(http.MethodPost, "/api/v1/inventory/seed", seller, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPost, "/api/v1/inventory/seed", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	seeded := decode[struct {
		Inserted int `json:"inserted"`
	}](t, w)
	assert.Positive(t, seeded.Data.Inserted)

	w = api.do(http.MethodGet, "/api/v1/inventory/branches/1/stock", seller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stock := decode[[]struct {
		ID       string          `json:"id"`
		Quantity decimal.Decimal `json:"quantity"`
	}](t, w)
	require.Len(t, stock.Data, seeded.Data.Inserted)
	productID := stock.Data[0].ID
	assert.True(t, stock.Data[0].Quantity.IsZero())

	w = api.do(http.MethodPatch, "/api/v1/inventory/branches/1/stock/"+productID, seller,
		map[string]any{"quantity": "12.5", "mode": "set"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(http.MethodPatch, "/api/v1/inventory/branches/1/stock/"+productID, seller,
		map[string]any{"quantity": "-20", "mode": "delta"})
	require.Equal(t, http.StatusOK, w.Code)
	adjusted := decode[struct {
		Quantity decimal.Decimal `json:"quantity"`
	}](t, w)
	assert.True(t, adjusted.Data.Quantity.IsZero(), "stock is floored at zero")

	w = api.do(http.MethodGet, "/api/v1/inventory/branches/1/history?limit=10", seller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[[]map[string]any](t, w)
	assert.Len(t, history.Data, 2)

	w = api.do(http.MethodGet, "/api/v1/inventory/branches/0/stock", seller, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
