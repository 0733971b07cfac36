package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/creatorly/identity-service/internal/service"
)

type ErrorResponse struct {
	Reason string `json:"reason"`
}

type Controller struct {
	zapLogger *zap.SugaredLogger
	auth      *service.AuthService
	sessions  *service.SessionService
	profiles  *service.ProfileService
	kyc       *service.KYCService
}

func NewController(
	logger *zap.SugaredLogger,
	auth *service.AuthService,
	sessions *service.SessionService,
	profiles *service.ProfileService,
	kyc *service.KYCService,
) *Controller {
	return &Controller{
		zapLogger: logger,
		auth:      auth,
		sessions:  sessions,
		profiles:  profiles,
		kyc:       kyc,
	}
}

// RegisterRoutes wires the HTTP surface under base.
func (c *Controller) RegisterRoutes(e *echo.Echo, base string, requireAuth, requireAdmin, loginRateLimit echo.MiddlewareFunc) {
	g := e.Group(base)

	g.GET("/ping", c.CheckServer)
	g.GET("/roles", c.ListRoles)

	g.POST("/auth/register", c.Register, loginRateLimit)
	g.POST("/auth/login", c.Login, loginRateLimit)
	g.POST("/auth/refresh", c.Refresh)
	g.POST("/auth/password-reset", c.RequestPasswordReset, loginRateLimit)
	g.POST("/auth/password-reset/confirm", c.ConfirmPasswordReset)

	auth := g.Group("", requireAuth)
	auth.POST("/auth/logout", c.Logout)
	auth.POST("/auth/logout-all", c.LogoutAll)
	auth.PUT("/auth/password", c.ChangePassword)

	auth.GET("/sessions", c.ListSessions)
	auth.DELETE("/sessions/:id", c.DeleteSession)

	auth.DELETE("/account", c.DeleteAccount)

	auth.GET("/profile", c.GetProfile)
	auth.PUT("/profile", c.UpdateProfile)

	auth.POST("/kyc", c.SubmitKYC)
	auth.GET("/kyc", c.ListMyKYC)

	admin := auth.Group("", requireAdmin)
	admin.GET("/kyc/pending", c.ListPendingKYC)
	admin.POST("/kyc/review", c.ReviewKYC)
}

// (GET /api/ping).
func (c *Controller) CheckServer(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, "ok")
}

// (GET /api/roles).
func (c *Controller) ListRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.profiles.ListRoles())
}
