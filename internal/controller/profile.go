package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/creatorly/identity-service/internal/models"
)

// (GET /api/profile).
func (c *Controller) GetProfile(ctx echo.Context) error {
	userID, _ := ctx.Get(models.MwUserIDKey).(string)

	profile, err := c.profiles.GetProfile(ctx.Request().Context(), userID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, profile)
}

// (PUT /api/profile).
func (c *Controller) UpdateProfile(ctx echo.Context) error {
	var req models.UpdateProfileRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	userID, _ := ctx.Get(models.MwUserIDKey).(string)
	profile, err := c.profiles.UpdateProfile(ctx.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, profile)
}
