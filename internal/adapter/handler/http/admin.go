package http

import (
	"net/http"

	"github.com/MikeRez0/tutorpay/internal/core/domain"
	"github.com/MikeRez0/tutorpay/internal/core/port"
	"github.com/MikeRez0/tutorpay/internal/core/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdminHandler serves the approval queue and the platform figures.
type AdminHandler struct {
	Handler
	wallet   port.WalletService
	approval port.ApprovalService
	payment  port.PaymentService
}

func NewAdminHandler(wallet port.WalletService,
	approval port.ApprovalService,
	payment port.PaymentService,
	logger *zap.Logger,
) (*AdminHandler, error) {
	return &AdminHandler{
		Handler:  *NewHandler(logger),
		wallet:   wallet,
		approval: approval,
		payment:  payment,
	}, nil
}

func (ah *AdminHandler) ListWithdrawals(ctx *gin.Context) {
	page, err := bindPage(ctx)
	if err != nil {
		ah.handleValidationError(ctx, err)
		return
	}

	list, err := ah.wallet.ListWithdrawals(ctx, page)
	if err != nil {
		ah.handleError(ctx, err)
		return
	}

	ah.handleSuccess(ctx, newWithdrawalPageResponse(list))
}

func (ah *AdminHandler) WithdrawalSummary(ctx *gin.Context) {
	summary, err := ah.wallet.WithdrawalSummary(ctx)
	if err != nil {
		ah.handleError(ctx, err)
		return
	}

	ah.handleSuccess(ctx, summaryResponse{
		PendingTotal:  utils.FormatAmount(summary.PendingTotal),
		ApprovedTotal: utils.FormatAmount(summary.ApprovedTotal),
		PendingCount:  summary.PendingCount,
	})
}

type decisionRequest struct {
	Decision string `json:"decision" binding:"required"`
}

func (ah *AdminHandler) Decide(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ah.handleValidationError(ctx, err)
		return
	}

	req := decisionRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ah.handleValidationError(ctx, err)
		return
	}

	decision, err := domain.ParseDecision(req.Decision)
	if err != nil {
		ah.handleError(ctx, err)
		return
	}

	adminID := getAuthPayload(ctx).UserID
	withdrawal, err := ah.approval.Decide(ctx, id, decision, adminID)
	if err != nil {
		ah.handleError(ctx, err)
		return
	}

	ah.handleSuccess(ctx, newWithdrawalResponse(withdrawal))
}

func (ah *AdminHandler) Payout(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ah.handleValidationError(ctx, err)
		return
	}

	withdrawal, err := ah.approval.Payout(ctx, id)
	if err != nil {
		ah.handleError(ctx, err)
		return
	}

	ah.handleSuccess(ctx, newWithdrawalResponse(withdrawal))
}

func (ah *AdminHandler) Revenue(ctx *gin.Context) {
	revenue, err := ah.payment.PlatformRevenue(ctx)
	if err != nil {
		ah.handleError(ctx, err)
		return
	}

	ah.handleSuccess(ctx, revenueResponse{
		GrossSuccess: utils.FormatAmount(revenue.GrossSuccess),
		FeePercent:   revenue.FeePercent.String(),
		Revenue:      utils.FormatAmount(revenue.Revenue),
	})
}

type moduleRequest struct {
	ID      uint64 `json:"id" binding:"required"`
	TutorID uint64 `json:"tutor_id" binding:"required"`
	Title   string `json:"title" binding:"required"`
}

func (ah *AdminHandler) RegisterModule(ctx *gin.Context) {
	req := moduleRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ah.handleValidationError(ctx, err)
		return
	}

	module, err := ah.payment.RegisterModule(ctx, &domain.Module{ID: req.ID, TutorID: req.TutorID, Title: req.Title})
	if err != nil {
		ah.handleError(ctx, err)
		return
	}

	ah.handleSuccessWithStatus(ctx, moduleResponse{ID: module.ID, TutorID: module.TutorID, Title: module.Title},
		http.StatusCreated)
}
