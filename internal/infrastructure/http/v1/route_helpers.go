package v1

import (
	"github.com/gin-gonic/gin"

	appctx "laluna/internal/core/context"
	"laluna/internal/infrastructure/http/v1/handlers"
	"laluna/internal/infrastructure/http/v1/middleware"
)

var adminOnly = middleware.RequireRole(appctx.RoleAdmin)

func registerAuthRoutes(group *gin.RouterGroup, h *handlers.AuthHandler) {
	group.GET("/auth/verify", h.Verify)

	users := group.Group("/users", adminOnly)
	users.GET("", h.ListUsers)
	users.POST("", h.CreateUser)
}

func registerCustomerRoutes(group *gin.RouterGroup, h *handlers.CustomerHandler) {
	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.PATCH("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
}

// registerOrderRoutes registers the order ledger. Static paths are declared
// before /:id so they are never read as an id.
func registerOrderRoutes(group *gin.RouterGroup, h *handlers.OrderHandler, r *handlers.ReportsHandler) {
	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/statistics", h.Statistics)
	group.GET("/reports", r.Reports)
	group.GET("/reports/pdf", r.ReportsPDF)

	group.GET("/:id", h.Get)
	group.GET("/:id/whatsapp-link", h.WhatsAppLink)
	group.PATCH("/:id/whatsapp-sent", h.MarkWhatsAppSent)
	group.PATCH("/:id/mark-paid", h.MarkPaid)
	group.PATCH("/:id/payments", h.RecordPayment)
	group.PATCH("/:id/amount-paid", h.SetAmountPaid)
	group.DELETE("/:id", h.Delete)
}

func registerInventoryRoutes(group *gin.RouterGroup, h *handlers.InventoryHandler) {
	group.GET("/products", h.ListProducts)
	group.POST("/products", adminOnly, h.CreateProduct)
	group.PATCH("/products/:id", adminOnly, h.UpdateProduct)
	group.POST("/seed", adminOnly, h.Seed)

	branch := group.Group("/branches/:branchId")
	branch.GET("/stock", h.Stock)
	branch.PATCH("/stock/:productId", h.AdjustStock)
	branch.GET("/history", h.History)
	branch.GET("/live", h.Live)
}
