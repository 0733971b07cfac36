package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/creatorly/identity-service/internal/service"
	"github.com/creatorly/identity-service/internal/storage"
	"github.com/creatorly/identity-service/internal/util"
)

func ErrorHandler(log *zap.SugaredLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if status, ok := statusForError(err); ok {
			writeJSON(c, log, status, err.Error())
			return
		}

		var customErr util.ResponseError
		if errors.As(err, &customErr) {
			writeJSON(c, log, customErr.Status, customErr.Msg)
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			if he.Code == http.StatusInternalServerError {
				log.Errorw("HTTP error", "error", err, "uri", c.Request().RequestURI)
			}
			msg, ok := he.Message.(string)
			if !ok {
				msg = http.StatusText(he.Code)
			}
			writeJSON(c, log, he.Code, msg)
			return
		}

		log.Errorw("unhandled error", "error", err, "uri", c.Request().RequestURI)
		writeJSON(c, log, http.StatusInternalServerError, "internal server error")
	}
}

func statusForError(err error) (int, bool) {
	switch {
	case errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrTokenInvalid),
		errors.Is(err, service.ErrTokenRevoked),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, true
	case errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidRole):
		return http.StatusBadRequest, true
	case errors.Is(err, storage.ErrUserNotFound),
		errors.Is(err, storage.ErrDocumentNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, storage.ErrEmailTaken),
		errors.Is(err, service.ErrKYCNotPending):
		return http.StatusConflict, true
	case errors.Is(err, storage.ErrConcurrencyConflict):
		return http.StatusServiceUnavailable, true
	}
	return 0, false
}

func writeJSON(c echo.Context, log *zap.SugaredLogger, status int, reason string) {
	if err := c.JSON(status, map[string]string{"reason": reason}); err != nil {
		log.Errorw("failed to write json response", "error", err)
	}
}
