package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/orderdesk/order-management/internal/api/handler"
	"github.com/orderdesk/order-management/internal/api/middleware"
	"github.com/orderdesk/order-management/internal/core/domain"
	"github.com/orderdesk/order-management/internal/core/feed"
	"github.com/orderdesk/order-management/internal/core/ports"
	"github.com/orderdesk/order-management/internal/infrastructure/queue"
)

// Deps carries the constructed application pieces into the router.
type Deps struct {
	Mongo      *mongo.Database
	Redis      *redis.Client
	JWTSecret  string
	Auth       ports.AuthService
	Roles      ports.RoleResolver
	Commands   ports.CommandService
	Users      ports.UserRepository
	Orders     ports.OrderRepository
	Audit      ports.AuditRepository
	Feeds      *feed.Manager
	Dispatcher *queue.Dispatcher
	Sessions   middleware.SessionChecker
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("orderdesk"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Roles)
	orderHandler := handler.NewOrderHandler(d.Commands, d.Orders, d.Dispatcher)
	adminHandler := handler.NewAdminHandler(d.Commands, d.Users, d.Orders, d.Audit, d.Dispatcher)
	streamHandler := handler.NewStreamHandler(d.Feeds)

	authMW := middleware.Auth(d.JWTSecret, d.Sessions)
	userMW := middleware.RBAC(d.Roles, domain.RoleUser, domain.RoleAdmin)
	adminMW := middleware.RBAC(d.Roles, domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/session", authHandler.Session)

	// --- User routes ---
	orders := e.Group("/orders", authMW, userMW)
	orders.GET("/mine", orderHandler.List)
	orders.POST("", orderHandler.Create)
	orders.PUT("/:id", orderHandler.Edit)
	orders.DELETE("/:id", orderHandler.Delete)

	e.GET("/stream/orders", streamHandler.MyOrders, authMW, userMW)

	// --- Admin routes ---
	admin := e.Group("/admin", authMW, adminMW)
	admin.GET("/users", adminHandler.ListUsers)
	admin.PUT("/users/:uid", adminHandler.EditUser)
	admin.DELETE("/users/:uid", adminHandler.DeleteUser)
	admin.GET("/orders", adminHandler.ListOrders)
	admin.POST("/orders/:id/advance", adminHandler.AdvanceOrder)
	admin.GET("/audit-logs", adminHandler.ListAuditLogs)
	admin.GET("/stream/orders", streamHandler.AllOrders)
	admin.GET("/stream/users", streamHandler.Users)
	admin.GET("/stream/audit-logs", streamHandler.AuditLogs)

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	return e
}
