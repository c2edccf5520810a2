package ledgerdelivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/streampot/streampot/internal/domain"
	"github.com/streampot/streampot/pkg/amountpkg"
	"github.com/streampot/streampot/pkg/currencypkg"
	"github.com/streampot/streampot/pkg/errorspkg"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newRouter(h Handler) *gin.Engine {
	router := gin.New()

	router.GET("/accounts/:id/balance", h.Balance)
	router.POST("/accounts/:id/debit", h.Debit)
	router.POST("/accounts/:id/credit", h.Credit)
	router.POST("/accounts/:id/lock", h.Lock)
	router.POST("/transfers", h.Transfer)

	return router
}

func mustAmount(t *testing.T, s string) amountpkg.Amount {
	t.Helper()

	a, err := amountpkg.Parse(s)
	require.NoError(t, err)

	return a
}

func performJSON(t *testing.T, router *gin.Engine, method, url string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := NewMockService(ctrl)
	service.EXPECT().
		Balance(gomock.Any(), "viewer", currencypkg.Coin).
		Times(1).
		Return(mustAmount(t, "750"))

	router := newRouter(NewHandler(service))

	rec := performJSON(t, router, http.MethodGet, "/accounts/viewer/balance?currency=COIN", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Data balanceData `json:"data"`
	}

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, "viewer", res.Data.AccountID)
	require.Equal(t, "750", res.Data.Balance)

	rec = performJSON(t, router, http.MethodGet, "/accounts/viewer/balance", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDebit(t *testing.T) {
	testCases := []struct {
		name           string
		body           gin.H
		buildStubs     func(service *MockService)
		wantStatusCode int
	}{
		{
			name: "OK",
			body: gin.H{"currency": currencypkg.Coin, "amount": "100"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Debit(gomock.Any(), "viewer", currencypkg.Coin, mustAmount(t, "100")).
					Times(1).
					Return(mustAmount(t, "900"), nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "MalformedAmount",
			body: gin.H{"currency": currencypkg.Coin, "amount": "lots"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Debit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "MissingCurrency",
			body: gin.H{"amount": "100"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Debit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "InsufficientBalance",
			body: gin.H{"currency": currencypkg.Coin, "amount": "100"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Debit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(amountpkg.Amount{}, domain.ErrInsufficientBalance)
			},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name: "AccountLocked",
			body: gin.H{"currency": currencypkg.Coin, "amount": "100"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Debit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(amountpkg.Amount{}, domain.ErrAccountLocked)
			},
			wantStatusCode: http.StatusLocked,
		},
		{
			name: "InternalError",
			body: gin.H{"currency": currencypkg.Coin, "amount": "100"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Debit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(amountpkg.Amount{}, errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			router := newRouter(NewHandler(service))

			rec := performJSON(t, router, http.MethodPost, "/accounts/viewer/debit", tc.body)
			require.Equal(t, tc.wantStatusCode, rec.Code)
		})
	}
}

func TestCredit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := NewMockService(ctrl)
	service.EXPECT().
		Credit(gomock.Any(), "viewer", currencypkg.Gem, mustAmount(t, "50")).
		Times(1).
		Return(mustAmount(t, "50"), nil)

	router := newRouter(NewHandler(service))

	rec := performJSON(t, router, http.MethodPost, "/accounts/viewer/credit", gin.H{
		"currency": currencypkg.Gem,
		"amount":   "50",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Data balanceData `json:"data"`
	}

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, "50", res.Data.Balance)
}

func TestTransfer(t *testing.T) {
	testCases := []struct {
		name           string
		body           gin.H
		buildStubs     func(service *MockService)
		wantStatusCode int
	}{
		{
			name: "OK",
			body: gin.H{
				"fromAccountId": "a",
				"toAccountId":   "b",
				"currency":      currencypkg.Coin,
				"amount":        "25",
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Transfer(gomock.Any(), "a", "b", currencypkg.Coin, mustAmount(t, "25")).
					Times(1).
					Return(nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "MissingRecipient",
			body: gin.H{
				"fromAccountId": "a",
				"currency":      currencypkg.Coin,
				"amount":        "25",
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "InsufficientBalance",
			body: gin.H{
				"fromAccountId": "a",
				"toAccountId":   "b",
				"currency":      currencypkg.Coin,
				"amount":        "25",
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.ErrInsufficientBalance)
			},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			router := newRouter(NewHandler(service))

			rec := performJSON(t, router, http.MethodPost, "/transfers", tc.body)
			require.Equal(t, tc.wantStatusCode, rec.Code)
		})
	}
}

func TestLock(t *testing.T) {
	testCases := []struct {
		name           string
		body           gin.H
		buildStubs     func(service *MockService)
		wantStatusCode int
	}{
		{
			name: "OK",
			body: gin.H{"duration": "10m"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Lock(gomock.Any(), "viewer", 10*time.Minute).
					Times(1).
					Return(nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "MalformedDuration",
			body: gin.H{"duration": "soon"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Lock(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "NegativeDuration",
			body: gin.H{"duration": "-1m"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Lock(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			router := newRouter(NewHandler(service))

			rec := performJSON(t, router, http.MethodPost, "/accounts/viewer/lock", tc.body)
			require.Equal(t, tc.wantStatusCode, rec.Code)
		})
	}
}
