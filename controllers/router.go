package controllers

import (
	"backoffice/middleware"
	"backoffice/models"
	"backoffice/utils"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Handlers - набор контроллеров API
type Handlers struct {
	Auth          *AuthController
	Users         *UserController
	Customers     *CustomerController
	Deposits      *DepositController
	EMI           *EMIController
	Policies      *PolicyController
	Laundry       *LaundryController
	Reports       *ReportController
	Notifications *NotificationController
}

// RouterOptions - настройки маршрутизатора
type RouterOptions struct {
	CORSOrigin string
	// LoginLimit - число попыток входа с одного IP за LoginWindow
	LoginLimit  int
	LoginWindow time.Duration
}

// NewRouter собирает gin-маршруты API
func NewRouter(h Handlers, parser middleware.TokenParser, opts RouterOptions) *gin.Engine {
	if opts.LoginLimit <= 0 {
		opts.LoginLimit = 10
	}
	if opts.LoginWindow <= 0 {
		opts.LoginWindow = time.Minute
	}

	router := gin.New()
	router.Use(middleware.Recovery(), middleware.Logger(), middleware.CORSMiddleware(opts.CORSOrigin))

	api := router.Group("")

	// Публичные маршруты
	loginLimiter := utils.NewRateLimiter(opts.LoginLimit, opts.LoginWindow)
	api.POST("/auth/login", middleware.RateLimit(loginLimiter), h.Auth.Login)

	// Защищенные маршруты
	authed := api.Group("")
	authed.Use(middleware.Auth(parser))

	authed.POST("/auth/logout", h.Auth.Logout)
	authed.GET("/auth/me", h.Auth.Me)

	// Пользователи
	users := authed.Group("/users", middleware.RequireRole(models.RoleAdmin))
	users.GET("", h.Users.List)
	users.POST("", h.Users.Create)
	users.PUT("/:id", h.Users.Update)
	users.DELETE("/:id", h.Users.Delete)

	// Займы: клиенты, взносы, EMI, дашборд и отчеты
	loans := authed.Group("", middleware.RequireRole(models.RoleUser))

	loans.GET("/customers", h.Customers.List)
	loans.POST("/customers", h.Customers.Create)
	loans.POST("/customers/import", h.Customers.Import)
	loans.GET("/customers/export", h.Customers.Export)
	loans.GET("/customers/:id", h.Customers.Get)
	loans.PUT("/customers/:id", h.Customers.Update)
	loans.DELETE("/customers/:id", h.Customers.Delete)
	loans.POST("/customers/:id/files", h.Customers.UploadFiles)
	loans.GET("/customers/:id/files/:kind", h.Customers.File)

	loans.GET("/deposits", h.Deposits.List)
	loans.POST("/deposits", h.Deposits.Create)
	loans.POST("/deposits/import", h.Deposits.Import)
	loans.GET("/deposits/:id", h.Deposits.Get)
	loans.PUT("/deposits/:id", h.Deposits.Update)
	loans.DELETE("/deposits/:id", h.Deposits.Delete)

	loans.GET("/emi/calculate", h.EMI.Calculate)
	loans.GET("/emi/customers/:code", h.EMI.Customer)

	loans.GET("/dashboard/stats", h.Reports.Summary)
	loans.GET("/reports/summary", h.Reports.Summary)
	loans.GET("/reports/customers", h.Reports.Customers)
	loans.GET("/reports/deposits/export", h.Reports.ExportDeposits)

	// Полисы LIC
	policies := authed.Group("/policies", middleware.RequireRole(models.RoleLIC))
	policies.GET("", h.Policies.List)
	policies.POST("", h.Policies.Create)
	policies.GET("/due", h.Policies.Due)
	policies.GET("/:id", h.Policies.Get)
	policies.PUT("/:id", h.Policies.Update)
	policies.DELETE("/:id", h.Policies.Delete)
	policies.PATCH("/:id/payment-status", h.Policies.SetPaymentStatus)

	// Прачечная ClothAura
	laundry := authed.Group("/laundry", middleware.RequireRole(models.RoleClothAura))
	laundry.GET("/orders", h.Laundry.List)
	laundry.POST("/orders", h.Laundry.Create)
	laundry.GET("/orders/:id", h.Laundry.Get)
	laundry.PUT("/orders/:id", h.Laundry.Update)
	laundry.PATCH("/orders/:id/status", h.Laundry.SetStatus)
	laundry.DELETE("/orders/:id", h.Laundry.Delete)
	laundry.GET("/summary", h.Laundry.Summary)

	// Уведомления
	notifications := authed.Group("/notifications", middleware.RequireRole(models.RoleUser, models.RoleLIC))
	notifications.GET("/due", h.Notifications.Due)
	notifications.POST("/send", h.Notifications.Send)
	notifications.GET("/logs", h.Notifications.Logs)

	settings := notifications.Group("", middleware.RequireRole(models.RoleAdmin))
	settings.GET("/templates", h.Notifications.Templates)
	settings.POST("/templates", h.Notifications.CreateTemplate)
	settings.DELETE("/templates/:id", h.Notifications.DeleteTemplate)
	settings.GET("/senders", h.Notifications.Senders)
	settings.POST("/senders", h.Notifications.CreateSender)
	settings.DELETE("/senders/:id", h.Notifications.DeleteSender)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	return router
}
