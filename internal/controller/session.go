package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/creatorly/identity-service/internal/models"
)

// (GET /api/sessions).
func (c *Controller) ListSessions(ctx echo.Context) error {
	userID, _ := ctx.Get(models.MwUserIDKey).(string)

	sessions, err := c.sessions.GetActiveSessions(ctx.Request().Context(), userID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sessions)
}

// (DELETE /api/sessions/:id).
// Deleting a session that is gone, or that belongs to someone else, is a
// no-op: the endpoint is idempotent and does not leak session existence.
func (c *Controller) DeleteSession(ctx echo.Context) error {
	userID, _ := ctx.Get(models.MwUserIDKey).(string)
	sessionID := ctx.Param("id")

	sessions, err := c.sessions.GetActiveSessions(ctx.Request().Context(), userID)
	if err != nil {
		return err
	}
	for _, s := range sessions {
		if s.ID == sessionID {
			if err := c.sessions.DeleteSession(ctx.Request().Context(), sessionID); err != nil {
				return err
			}
			break
		}
	}
	return ctx.NoContent(http.StatusNoContent)
}
