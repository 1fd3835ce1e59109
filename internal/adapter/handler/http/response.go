package http

import (
	"time"

	"github.com/MikeRez0/tutorpay/internal/core/domain"
	"github.com/MikeRez0/tutorpay/internal/core/utils"
)

// Amounts leave the API as fixed two-decimal strings.

type walletResponse struct {
	PayeeID   uint64 `json:"payee_id"`
	Available string `json:"available"`
}

type withdrawalResponse struct {
	ID              string     `json:"id"`
	TutorID         uint64     `json:"tutor_id"`
	Amount          string     `json:"amount"`
	Method          string     `json:"method"`
	BankName        string     `json:"bank_name,omitempty"`
	Branch          string     `json:"branch,omitempty"`
	AccountNumber   string     `json:"account_number"`
	AccountHolder   string     `json:"account_holder"`
	Status          string     `json:"status"`
	AdminID         *uint64    `json:"admin_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	PayoutReference string     `json:"payout_reference,omitempty"`
	PaidOutAt       *time.Time `json:"paid_out_at,omitempty"`
}

func newWithdrawalResponse(w *domain.Withdrawal) withdrawalResponse {
	return withdrawalResponse{
		ID:              w.ID.String(),
		TutorID:         w.TutorID,
		Amount:          utils.FormatAmount(w.Amount),
		Method:          string(w.Method),
		BankName:        w.Destination.BankName,
		Branch:          w.Destination.Branch,
		AccountNumber:   w.Destination.AccountNumber,
		AccountHolder:   w.Destination.AccountHolder,
		Status:          string(w.Status),
		AdminID:         w.AdminID,
		CreatedAt:       w.CreatedAt,
		DecidedAt:       w.DecidedAt,
		PayoutReference: w.PayoutReference,
		PaidOutAt:       w.PaidOutAt,
	}
}

type withdrawalPageResponse struct {
	Items []withdrawalResponse `json:"items"`
	Total int                  `json:"total"`
	Page  int                  `json:"page"`
	Size  int                  `json:"size"`
}

func newWithdrawalPageResponse(p *domain.WithdrawalPage) withdrawalPageResponse {
	items := make([]withdrawalResponse, 0, len(p.Items))
	for _, w := range p.Items {
		items = append(items, newWithdrawalResponse(w))
	}
	return withdrawalPageResponse{
		Items: items,
		Total: p.Total,
		Page:  p.Page.Number,
		Size:  p.Page.Size,
	}
}

type summaryResponse struct {
	PendingTotal  string `json:"pending_total"`
	ApprovedTotal string `json:"approved_total"`
	PendingCount  int    `json:"pending_count"`
}

type revenueResponse struct {
	GrossSuccess string `json:"gross_success"`
	FeePercent   string `json:"fee_percent"`
	Revenue      string `json:"revenue"`
}

type checkoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
	MerchantID  string `json:"merchant_id"`
	OrderID     string `json:"order_id"`
	Items       string `json:"items"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Hash        string `json:"hash"`
	ReturnURL   string `json:"return_url,omitempty"`
	CancelURL   string `json:"cancel_url,omitempty"`
	NotifyURL   string `json:"notify_url,omitempty"`
}

func newCheckoutResponse(c *domain.Checkout) checkoutResponse {
	return checkoutResponse{
		CheckoutURL: c.CheckoutURL,
		MerchantID:  c.MerchantID,
		OrderID:     c.OrderID,
		Items:       c.Items,
		Amount:      c.Amount,
		Currency:    c.Currency,
		Hash:        c.Hash,
		ReturnURL:   c.ReturnURL,
		CancelURL:   c.CancelURL,
		NotifyURL:   c.NotifyURL,
	}
}

type moduleResponse struct {
	ID      uint64 `json:"id"`
	TutorID uint64 `json:"tutor_id"`
	Title   string `json:"title"`
}
