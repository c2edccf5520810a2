// Package ledgerdelivery manages delivery layer of account balances.
package ledgerdelivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/streampot/streampot/internal/domain"
	"github.com/streampot/streampot/pkg/amountpkg"
	"github.com/streampot/streampot/pkg/errorspkg"
	"github.com/streampot/streampot/pkg/web"
)

// Service provides service layer interface needed by ledger delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package ledgerdelivery
type Service interface {
	Balance(ctx context.Context, accountID, currency string) amountpkg.Amount
	Debit(ctx context.Context, accountID, currency string, amount amountpkg.Amount) (amountpkg.Amount, error)
	Credit(ctx context.Context, accountID, currency string, amount amountpkg.Amount) (amountpkg.Amount, error)
	Lock(ctx context.Context, accountID string, duration time.Duration) error
	Transfer(ctx context.Context, fromID, toID, currency string, amount amountpkg.Amount) error
}

// Handler facilitates ledger delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns ledger handler.
func NewHandler(s Service) Handler {
	return Handler{service: s}
}

func bindError(gctx *gin.Context, err error) {
	l := zerolog.Ctx(gctx)

	var (
		ve     validator.ValidationErrors
		errMsg string
	)

	if errors.As(err, &ve) {
		field := ve[0]
		errMsg = field.Field() + web.GetErrorMsg(field)
	} else {
		errMsg = err.Error()
	}

	l.Info().Err(err).Send()
	gctx.JSON(http.StatusBadRequest, web.Response{Error: errMsg})
}

func statusFromErr(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrAccountLocked):
		return http.StatusLocked
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(gctx *gin.Context, err error) {
	code := statusFromErr(err)
	if code == http.StatusInternalServerError {
		err = errorspkg.ErrInternal
	}

	gctx.JSON(code, web.Response{Error: err.Error()})
}

type balanceURI struct {
	ID string `uri:"id" binding:"required"`
}

type balanceQuery struct {
	Currency string `form:"currency" binding:"required"`
}

type balanceData struct {
	AccountID string `json:"accountId"`
	Currency  string `json:"currency"`
	Balance   string `json:"balance"`
}

// Balance handles http request to get an account balance.
func (h *Handler) Balance(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri balanceURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	var q balanceQuery
	if err := gctx.ShouldBindQuery(&q); err != nil {
		bindError(gctx, err)
		return
	}

	balance := h.service.Balance(ctx, uri.ID, q.Currency)

	gctx.JSON(http.StatusOK, web.Response{Data: balanceData{
		AccountID: uri.ID,
		Currency:  q.Currency,
		Balance:   balance.String(),
	}})
}

type mutateRequest struct {
	Currency string `json:"currency" binding:"required"`
	Amount   string `json:"amount" binding:"required"`
}

func (h *Handler) mutate(gctx *gin.Context, op func(ctx context.Context, accountID, currency string, amount amountpkg.Amount) (amountpkg.Amount, error)) {
	ctx := gctx.Request.Context()

	var uri balanceURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	var req mutateRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	amount, err := amountpkg.Parse(req.Amount)
	if err != nil {
		gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrInvalidAmount))
		return
	}

	newBalance, err := op(ctx, uri.ID, req.Currency, amount)
	if err != nil {
		writeErr(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: balanceData{
		AccountID: uri.ID,
		Currency:  req.Currency,
		Balance:   newBalance.String(),
	}})
}

// Debit handles http request to debit an account.
func (h *Handler) Debit(gctx *gin.Context) {
	h.mutate(gctx, h.service.Debit)
}

// Credit handles http request to credit an account.
func (h *Handler) Credit(gctx *gin.Context) {
	h.mutate(gctx, h.service.Credit)
}

type transferRequest struct {
	FromAccountID string `json:"fromAccountId" binding:"required"`
	ToAccountID   string `json:"toAccountId" binding:"required"`
	Currency      string `json:"currency" binding:"required"`
	Amount        string `json:"amount" binding:"required"`
}

// Transfer handles http request to move funds between accounts.
func (h *Handler) Transfer(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req transferRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	amount, err := amountpkg.Parse(req.Amount)
	if err != nil {
		gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrInvalidAmount))
		return
	}

	if err := h.service.Transfer(ctx, req.FromAccountID, req.ToAccountID, req.Currency, amount); err != nil {
		writeErr(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: gin.H{"transferred": true}})
}

type lockRequest struct {
	Duration string `json:"duration" binding:"required"`
}

// Lock handles http request to place an administrative hold on an account.
func (h *Handler) Lock(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri balanceURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	var req lockRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	duration, err := time.ParseDuration(req.Duration)
	if err != nil || duration <= 0 {
		gctx.JSON(http.StatusBadRequest, web.Response{Error: "duration field is invalid"})
		return
	}

	if err := h.service.Lock(ctx, uri.ID, duration); err != nil {
		writeErr(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: gin.H{"locked": true}})
}
