package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/creatorly/identity-service/internal/models"
)

// (POST /api/kyc).
func (c *Controller) SubmitKYC(ctx echo.Context) error {
	var req models.SubmitKYCRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.DocType == "" || req.FileRef == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "doc_type and file_ref are required")
	}

	userID, _ := ctx.Get(models.MwUserIDKey).(string)
	doc, err := c.kyc.Submit(ctx.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, doc)
}

// (GET /api/kyc).
func (c *Controller) ListMyKYC(ctx echo.Context) error {
	userID, _ := ctx.Get(models.MwUserIDKey).(string)

	docs, err := c.kyc.ListForUser(ctx.Request().Context(), userID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, docs)
}

// (GET /api/kyc/pending).
func (c *Controller) ListPendingKYC(ctx echo.Context) error {
	docs, err := c.kyc.ListPending(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, docs)
}

// (POST /api/kyc/review).
func (c *Controller) ReviewKYC(ctx echo.Context) error {
	var req models.ReviewKYCRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.DocumentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "document_id is required")
	}

	reviewerID, _ := ctx.Get(models.MwUserIDKey).(string)
	doc, err := c.kyc.Review(ctx.Request().Context(), reviewerID, req)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, doc)
}
