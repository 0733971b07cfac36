package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/creatorly/identity-service/internal/models"
)

// (POST /api/auth/register).
func (c *Controller) Register(ctx echo.Context) error {
	var req models.RegisterRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, pair, err := c.auth.Register(ctx.Request().Context(), req, ctx.RealIP(), ctx.Request().UserAgent())
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, map[string]interface{}{
		"user":   user,
		"tokens": pair,
	})
}

// (POST /api/auth/login).
func (c *Controller) Login(ctx echo.Context) error {
	var req models.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, pair, err := c.auth.Login(ctx.Request().Context(), req, ctx.RealIP(), ctx.Request().UserAgent())
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"user":   user,
		"tokens": pair,
	})
}

// (POST /api/auth/refresh).
func (c *Controller) Refresh(ctx echo.Context) error {
	var req models.TokenRefreshRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	accessToken, err := c.auth.Refresh(ctx.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, map[string]string{"access_token": accessToken})
}

// (POST /api/auth/logout).
func (c *Controller) Logout(ctx echo.Context) error {
	var req models.LogoutRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	accessToken, _ := ctx.Get(models.MwTokenKey).(string)
	if err := c.auth.Logout(ctx.Request().Context(), req.RefreshToken, accessToken); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// (POST /api/auth/logout-all).
func (c *Controller) LogoutAll(ctx echo.Context) error {
	userID, _ := ctx.Get(models.MwUserIDKey).(string)
	accessToken, _ := ctx.Get(models.MwTokenKey).(string)

	if err := c.auth.LogoutAll(ctx.Request().Context(), userID, accessToken); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// (PUT /api/auth/password).
func (c *Controller) ChangePassword(ctx echo.Context) error {
	var req models.ChangePasswordRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	userID, _ := ctx.Get(models.MwUserIDKey).(string)
	if err := c.auth.ChangePassword(ctx.Request().Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// (DELETE /api/account).
func (c *Controller) DeleteAccount(ctx echo.Context) error {
	var req models.DeleteAccountRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	userID, _ := ctx.Get(models.MwUserIDKey).(string)
	accessToken, _ := ctx.Get(models.MwTokenKey).(string)
	if err := c.auth.DeleteAccount(ctx.Request().Context(), userID, req.Password, accessToken); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// (POST /api/auth/password-reset).
// Always 204: the response must not reveal whether the email exists.
func (c *Controller) RequestPasswordReset(ctx echo.Context) error {
	var req models.PasswordResetRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	token, err := c.auth.RequestPasswordReset(ctx.Request().Context(), req.Email)
	if err != nil {
		return err
	}
	if token != "" {
		// Delivery (mail) is outside this service; hand off via log for now.
		// TODO: publish to the notification service once its queue is up.
		c.zapLogger.Infow("password reset token issued", "email", req.Email)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// (POST /api/auth/password-reset/confirm).
func (c *Controller) ConfirmPasswordReset(ctx echo.Context) error {
	var req models.PasswordResetConfirm
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.auth.ResetPassword(ctx.Request().Context(), req.ResetToken, req.NewPassword); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
