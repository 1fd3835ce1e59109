package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MikeRez0/tutorpay/internal/core/domain"
	"github.com/MikeRez0/tutorpay/internal/core/port"
	"github.com/gin-gonic/gin"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	Handler
	service port.PaymentService
}

func NewPaymentHandler(service port.PaymentService, logger *zap.Logger) (*PaymentHandler, error) {
	return &PaymentHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

type checkoutRequest struct {
	OrderID  string      `json:"order_id" binding:"required"`
	ModuleID uint64      `json:"module_id" binding:"required"`
	Amount   json.Number `json:"amount" binding:"required"`
}

func (ph *PaymentHandler) Checkout(ctx *gin.Context) {
	req := checkoutRequest{}
	err := ctx.ShouldBindJSON(&req)
	if err != nil {
		ph.handleValidationError(ctx, err)
		return
	}

	amount, err := decimal.Parse(req.Amount.String())
	if err != nil {
		ph.handleValidationError(ctx, err)
		return
	}

	payerID := getAuthPayload(ctx).UserID
	checkout, err := ph.service.InitiateCheckout(ctx, req.OrderID, req.ModuleID, amount, payerID)
	if err != nil {
		ph.handleError(ctx, err)
		return
	}

	ph.handleSuccessWithStatus(ctx, newCheckoutResponse(checkout), http.StatusCreated)
}

type notifyForm struct {
	MerchantID      string `form:"merchant_id"`
	OrderID         string `form:"order_id"`
	PayhereAmount   string `form:"payhere_amount"`
	PayhereCurrency string `form:"payhere_currency"`
	StatusCode      string `form:"status_code"`
	MD5Sig          string `form:"md5sig"`
}

// Notify receives the gateway's server-to-server callback. The gateway only
// learns whether to redeliver: every settled outcome, untrusted callbacks
// included, answers 200, and only transient failures answer 500.
func (ph *PaymentHandler) Notify(ctx *gin.Context) {
	form := notifyForm{}
	if err := ctx.ShouldBind(&form); err != nil {
		ph.logger.Warn("Malformed notify callback", zap.Error(err))
		ctx.Status(http.StatusOK)
		return
	}

	result, err := ph.service.HandleNotify(ctx, domain.NotifyPayload{
		MerchantID:      form.MerchantID,
		OrderID:         form.OrderID,
		PayhereAmount:   form.PayhereAmount,
		PayhereCurrency: form.PayhereCurrency,
		StatusCode:      form.StatusCode,
		MD5Sig:          form.MD5Sig,
	})
	if err != nil {
		if transient(err) {
			ph.logger.Error("Notify failed, gateway will redeliver", zap.String("order", form.OrderID), zap.Error(err))
			ctx.Status(http.StatusInternalServerError)
			return
		}
		ctx.Status(http.StatusOK)
		return
	}

	ph.logger.Debug("Notify handled", zap.String("order", result.OrderID), zap.String("action", string(result.Action)))
	ctx.Status(http.StatusOK)
}

func transient(err error) bool {
	return errors.Is(err, domain.ErrInternal) ||
		errors.Is(err, domain.ErrConcurrencyConflict) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}
