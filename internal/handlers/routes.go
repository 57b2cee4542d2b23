package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/noteduco342/om-receipts/internal/middleware"
	"github.com/noteduco342/om-receipts/internal/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Auth        *AuthHandler
	User        *UserHandler
	Group       *GroupHandler
	Message     *MessageHandler
	ReadReceipt *ReadReceiptHandler
}

type RouteConfig struct {
	JWTSecret      string
	AllowedOrigins []string
	CSRFMode       string
	AccountLookup  middleware.AccountLookup
	// AuthRateLimit caps auth requests per client per minute; zero disables it.
	AuthRateLimit int
}

func SetupRoutes(app *fiber.App, h Handlers, cfg RouteConfig) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "OM receipts is running",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Public routes
	api := app.Group("/api", middleware.OriginAllowed(cfg.AllowedOrigins))
	authHandlers := []fiber.Handler{}
	if cfg.AuthRateLimit > 0 {
		authHandlers = append(authHandlers, limiter.New(limiter.Config{
			Max:        cfg.AuthRateLimit,
			Expiration: time.Minute,
		}))
	}
	auth := api.Group("/auth", authHandlers...)
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)

	// Protected routes
	protected := api.Group("/",
		middleware.AuthRequired(cfg.JWTSecret),
		middleware.ActiveAccountRequired(cfg.AccountLookup, h.User.logger),
		middleware.CSRFRequired(cfg.CSRFMode, cfg.AllowedOrigins),
	)
	protected.Get("/users/me", h.User.GetCurrentUser)
	protected.Patch("/users/me/settings", h.User.UpdateSettings)
	protected.Get("/users/search", h.User.SearchUsers)
	protected.Post("/users/:id/deactivate", middleware.RequireRole(models.AccountRoleAdmin), h.User.Deactivate)
	protected.Post("/users/:id/reactivate", middleware.RequireRole(models.AccountRoleAdmin), h.User.Reactivate)

	protected.Post("/messages", h.Message.SendMessage)
	protected.Post("/messages/flags", h.Message.UpdateFlags)
	protected.Get("/messages/:message_id", h.Message.GetMessage)
	protected.Get("/messages/:message_id/read_receipts", h.ReadReceipt.GetReadReceipts)
	protected.Post("/conversations/:peer_id/read", h.Message.MarkConversationRead)

	// Group routes
	protected.Post("/groups", h.Group.CreateGroup)
	protected.Get("/groups", h.Group.GetMyGroups)
	protected.Post("/groups/:id/join", h.Group.JoinGroup)
	protected.Post("/groups/:id/leave", h.Group.LeaveGroup)
	protected.Get("/groups/:id/members", h.Group.GetGroupMembers)
	protected.Post("/groups/:id/members", h.Group.AddMember)
	protected.Post("/groups/:id/messages", h.Message.SendGroupMessage)
	protected.Post("/groups/:id/read", h.Message.MarkGroupRead)
	protected.Get("/groups/:id/read-state", h.Message.GetGroupReadState)
}
