package http

import (
	"context"
	"net/http"

	"github.com/MikeRez0/tutorpay/internal/core/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errorStatusMap = map[error]int{
	domain.ErrInternal:            http.StatusInternalServerError,
	domain.ErrDataNotFound:        http.StatusNotFound,
	domain.ErrConflictingData:     http.StatusConflict,
	domain.ErrConcurrencyConflict: http.StatusConflict,
	context.DeadlineExceeded:      http.StatusServiceUnavailable,

	domain.ErrUnauthorized:               http.StatusUnauthorized,
	domain.ErrEmptyAuthorizationHeader:   http.StatusUnauthorized,
	domain.ErrInvalidAuthorizationHeader: http.StatusUnauthorized,
	domain.ErrInvalidAuthorizationType:   http.StatusUnauthorized,
	domain.ErrInvalidToken:               http.StatusUnauthorized,
	domain.ErrExpiredToken:               http.StatusUnauthorized,
	domain.ErrForbidden:                  http.StatusForbidden,

	domain.ErrNoUpdatedData: http.StatusBadRequest,
	domain.ErrBadRequest:    http.StatusBadRequest,

	domain.ErrDuplicateOrder:     http.StatusConflict,
	domain.ErrUntrustedCallback:  http.StatusBadRequest,
	domain.ErrInvalidAmount:      http.StatusUnprocessableEntity,
	domain.ErrInsufficientFunds:  http.StatusPaymentRequired,
	domain.ErrUnknownModule:      http.StatusNotFound,
	domain.ErrInvalidDestination: http.StatusUnprocessableEntity,

	domain.ErrAlreadyFinalized:      http.StatusConflict,
	domain.ErrInvalidDecision:       http.StatusBadRequest,
	domain.ErrWithdrawalNotApproved: http.StatusConflict,
	domain.ErrDisbursement:          http.StatusBadGateway,
}

type Handler struct {
	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

type errorResponse struct {
	Error string `json:"error"`
}

func statusOf(err error) (int, bool) {
	statusCode, ok := errorStatusMap[err]
	if !ok {
		return http.StatusInternalServerError, false
	}
	return statusCode, true
}

// handleValidationError sends an error response for some specific request validation error
func (h *Handler) handleValidationError(ctx *gin.Context, err error) {
	h.logger.Debug("request validation failed", zap.Error(err))
	ctx.JSON(http.StatusBadRequest, errorResponse{Error: domain.ErrBadRequest.Error()})
}

// handleAbort sends an error response and aborts the request with the specified status code and error message
func (h *Handler) handleAbort(ctx *gin.Context, err error) {
	statusCode, ok := statusOf(err)
	if !ok {
		h.logger.Error("aborting request", zap.Error(err))
		err = domain.ErrInternal
	}
	ctx.AbortWithStatusJSON(statusCode, errorResponse{Error: err.Error()})
}

func (h *Handler) handleError(ctx *gin.Context, err error) {
	statusCode, ok := statusOf(err)
	if !ok {
		h.logger.Error("error processing request", zap.Error(err))
		err = domain.ErrInternal
	}
	ctx.JSON(statusCode, errorResponse{Error: err.Error()})
}

// handleSuccessWithStatus sends a success response with the specified status code and optional data
func (h *Handler) handleSuccessWithStatus(ctx *gin.Context, data any, status int) {
	if data != nil {
		ctx.JSON(status, data)
	} else {
		ctx.Status(status)
	}
}

func (h *Handler) handleSuccess(ctx *gin.Context, data any) {
	h.handleSuccessWithStatus(ctx, data, http.StatusOK)
}
