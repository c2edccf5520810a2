// Package lotterydelivery manages delivery layer of jackpot pools.
package lotterydelivery

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

// Service provides service layer interface needed by lottery delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package lotterydelivery
type Service interface {
	CreatePool(ctx context.Context, currency string, minEntry amountpkg.Amount, drawTime time.Time, creator string) (domain.Pool, error)
	Enter(ctx context.Context, poolID, entrant, displayName string, amount amountpkg.Amount) (domain.Pool, error)
	CancelPool(ctx context.Context, poolID, requester string) (domain.Pool, error)
	Draw(ctx context.Context, poolID string) (domain.Pool, error)
	Pool(ctx context.Context, poolID string) (domain.Pool, error)
	ListOpenPools(ctx context.Context) []domain.Pool
	EntrantTickets(ctx context.Context, poolID, entrant string) (int64, error)
	EntrantWinChance(ctx context.Context, poolID, entrant string) (float64, error)
	PurgeResolved(ctx context.Context, before time.Time) (int, error)
}

// Handler facilitates lottery delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns lottery handler.
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
	case errors.Is(err, domain.ErrPoolNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPoolClosed),
		errors.Is(err, domain.ErrPoolNotOpen):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotPoolCreator):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountBelowMinimum),
		errors.Is(err, domain.ErrDrawTimeNotFuture),
		errors.Is(err, domain.ErrPoolDurationOutOfRange),
		errors.Is(err, domain.ErrUnsupportedCurrency):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrAccountLocked):
		return http.StatusLocked
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

type poolData struct {
	Pool domain.Pool `json:"pool"`
}

type createRequest struct {
	Currency       string    `json:"currency" binding:"required,currency"`
	MinEntryAmount string    `json:"minEntryAmount" binding:"required"`
	DrawTime       time.Time `json:"drawTime" binding:"required"`
	Creator        string    `json:"creator" binding:"required"`
}

// Create handles http request to create a pool.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	minEntry, err := amountpkg.Parse(req.MinEntryAmount)
	if err != nil {
		gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrInvalidAmount))
		return
	}

	pool, err := h.service.CreatePool(ctx, req.Currency, minEntry, req.DrawTime, req.Creator)
	if err != nil {
		writeErr(gctx, err)
		return
	}

	gctx.JSON(http.StatusCreated, web.Response{Data: poolData{pool}})
}

type poolURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// Get handles http request to get a pool.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri poolURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	pool, err := h.service.Pool(ctx, uri.ID)
	if err != nil {
		writeErr(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: poolData{pool}})
}

type poolsData struct {
	Pools []domain.Pool `json:"pools"`
}

// List handles http request to list open pools.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	pools := h.service.ListOpenPools(ctx)

	gctx.JSON(http.StatusOK, web.Response{Data: poolsData{pools}})
}

type enterRequest struct {
	AccountID   string `json:"accountId" binding:"required"`
	DisplayName string `json:"displayName" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
}

// Enter handles http request to enter a pool.
func (h *Handler) Enter(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri poolURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	var req enterRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	amount, err := amountpkg.Parse(req.Amount)
	if err != nil {
		gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrInvalidAmount))
		return
	}

	pool, err := h.service.Enter(ctx, uri.ID, req.AccountID, req.DisplayName, amount)
	if err != nil {
		writeErr(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: poolData{pool}})
}

type cancelRequest struct {
	Requester string `json:"requester" binding:"required"`
}

// Cancel handles http request to cancel a pool.
func (h *Handler) Cancel(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri poolURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	var req cancelRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	pool, err := h.service.CancelPool(ctx, uri.ID, req.Requester)
	if err != nil {
		writeErr(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: poolData{pool}})
}

// Draw handles http request to manually draw an overdue pool.
func (h *Handler) Draw(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri poolURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	pool, err := h.service.Draw(ctx, uri.ID)
	if err != nil {
		writeErr(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: poolData{pool}})
}

type entrantURI struct {
	ID      string `uri:"id" binding:"required,uuid"`
	Account string `uri:"account" binding:"required"`
}

type entrantData struct {
	AccountID string  `json:"accountId"`
	Tickets   int64   `json:"tickets"`
	WinChance float64 `json:"winChance"`
}

// Entrant handles http request to get an entrant's tickets and win chance.
func (h *Handler) Entrant(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri entrantURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	tickets, err := h.service.EntrantTickets(ctx, uri.ID, uri.Account)
	if err != nil {
		writeErr(gctx, err)
		return
	}

	chance, err := h.service.EntrantWinChance(ctx, uri.ID, uri.Account)
	if err != nil {
		writeErr(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: entrantData{
		AccountID: uri.Account,
		Tickets:   tickets,
		WinChance: chance,
	}})
}

type purgeRequest struct {
	Before time.Time `json:"before" binding:"required"`
}

// Purge handles http request to drop resolved pools older than a cutoff.
func (h *Handler) Purge(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req purgeRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	purged, err := h.service.PurgeResolved(ctx, req.Before)
	if err != nil {
		writeErr(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: gin.H{"purged": purged}})
}
