package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"kvops-api/internal/router"
	"kvops-api/pkg/lambda"
)

// OperationHandler handles operation-envelope HTTP requests
type OperationHandler struct {
	router *router.Router
}

// NewOperationHandler creates a new operation handler
func NewOperationHandler(r *router.Router) *OperationHandler {
	return &OperationHandler{router: r}
}

// @Summary Execute a key-value operation
// @Description Dispatch a JSON envelope to one of the fixed key-value actions
// @Tags operations
// @Accept json
// @Produce json
// @Param request body router.Request true "Operation envelope"
// @Success 200 {object} object
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /operations [post]
func (h *OperationHandler) Execute(c *gin.Context) {
	var req router.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	result, err := h.router.Handle(c.Request.Context(), &req)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"operation": req.Operation,
			"table":     req.TableName,
			"error":     err.Error(),
		}).Warn("Operation failed")

		c.JSON(statusForError(err), newErrorResponse(err))
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleExecute serves the same contract behind API Gateway
func (h *OperationHandler) HandleExecute(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	var envelope router.Request
	if err := json.Unmarshal(req.Body, &envelope); err != nil {
		return lambda.JSONResponse(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
	}

	result, err := h.router.Handle(ctx, &envelope)
	if err != nil {
		return lambda.JSONResponse(statusForError(err), newErrorResponse(err))
	}

	return lambda.JSONResponse(http.StatusOK, result)
}
