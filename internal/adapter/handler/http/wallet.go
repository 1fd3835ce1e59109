package http

import (
	"encoding/json"
	"net/http"

	"github.com/MikeRez0/tutorpay/internal/core/domain"
	"github.com/MikeRez0/tutorpay/internal/core/port"
	"github.com/MikeRez0/tutorpay/internal/core/utils"
	"github.com/gin-gonic/gin"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

type WalletHandler struct {
	Handler
	service port.WalletService
}

func NewWalletHandler(service port.WalletService, logger *zap.Logger) (*WalletHandler, error) {
	return &WalletHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

func (wh *WalletHandler) Balance(ctx *gin.Context) {
	tutorID := getAuthPayload(ctx).UserID

	available, err := wh.service.GetAvailableBalance(ctx, tutorID)
	if err != nil {
		wh.handleError(ctx, err)
		return
	}

	wh.handleSuccess(ctx, walletResponse{
		PayeeID:   tutorID,
		Available: utils.FormatAmount(available),
	})
}

type withdrawalRequest struct {
	Amount        json.Number `json:"amount" binding:"required"`
	Method        string      `json:"method" binding:"required"`
	BankName      string      `json:"bank_name"`
	Branch        string      `json:"branch"`
	AccountNumber string      `json:"account_number"`
	AccountHolder string      `json:"account_holder"`
}

func (wh *WalletHandler) RequestWithdrawal(ctx *gin.Context) {
	req := withdrawalRequest{}
	err := ctx.ShouldBindJSON(&req)
	if err != nil {
		wh.handleValidationError(ctx, err)
		return
	}

	amount, err := decimal.Parse(req.Amount.String())
	if err != nil {
		wh.handleValidationError(ctx, err)
		return
	}

	tutorID := getAuthPayload(ctx).UserID
	withdrawal, err := wh.service.AdmitWithdrawal(ctx, tutorID, amount,
		domain.WithdrawalMethod(req.Method),
		domain.PayoutDestination{
			BankName:      req.BankName,
			Branch:        req.Branch,
			AccountNumber: req.AccountNumber,
			AccountHolder: req.AccountHolder,
		})
	if err != nil {
		wh.handleError(ctx, err)
		return
	}

	wh.handleSuccessWithStatus(ctx, newWithdrawalResponse(withdrawal), http.StatusCreated)
}

type pageQuery struct {
	Page int `form:"page"`
	Size int `form:"size"`
}

func bindPage(ctx *gin.Context) (domain.Page, error) {
	q := pageQuery{}
	if err := ctx.ShouldBindQuery(&q); err != nil {
		return domain.Page{}, err
	}
	return domain.Page{Number: q.Page, Size: q.Size}, nil
}

func (wh *WalletHandler) ListWithdrawals(ctx *gin.Context) {
	page, err := bindPage(ctx)
	if err != nil {
		wh.handleValidationError(ctx, err)
		return
	}

	tutorID := getAuthPayload(ctx).UserID
	list, err := wh.service.ListTutorWithdrawals(ctx, tutorID, page)
	if err != nil {
		wh.handleError(ctx, err)
		return
	}

	wh.handleSuccess(ctx, newWithdrawalPageResponse(list))
}
