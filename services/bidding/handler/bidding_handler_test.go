package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	bidding "auction-market/internal/biddingService"
	"auction-market/internal/biddingerrors"
	model "auction-market/internal/models"
	"auction-market/services/bidding/helpers"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// decimalEq matches decimals by value, so 150 and 150.00 are the same amount
type decimalEq struct{ want decimal.Decimal }

func (m decimalEq) Matches(x interface{}) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalEq) String() string { return "is equal to " + m.want.String() }

func amountOf(s string) gomock.Matcher { return decimalEq{want: decimal.RequireFromString(s)} }

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func setupRouter(t *testing.T) (*MockBiddingServiceInterface, *gin.Engine) {
	ctrl := gomock.NewController(t)
	mockService := NewMockBiddingServiceInterface(ctrl)
	h := NewBiddingHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/bids", h.RecordBidHandler)
	router.DELETE("/bids/:bid_id", h.CancelBidHandler)
	router.GET("/products/:product_id/bids", h.GetBidsByProductHandler)
	router.GET("/products/:product_id/winning", h.GetWinningBidHandler)
	router.GET("/products/:product_id/stats", h.GetStatsHandler)
	router.GET("/users/me/bids", h.GetMyBidsHandler)
	return mockService, router
}

func do(t *testing.T, router *gin.Engine, method, path, user string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(helpers.UserIDHeader, user)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w.Code, env
}

func TestRecordBidHandler(t *testing.T) {
	mockService, router := setupRouter(t)
	now := time.Now().UTC()

	tests := []struct {
		name           string
		user           string
		requestBody    any
		mockSetup      func()
		expectedStatus int
		expectedMsg    string
		validateData   func(t *testing.T, data json.RawMessage)
	}{
		{
			name:        "success_valid_bid",
			user:        "1",
			requestBody: `{"product_id": 10, "amount": 150, "note": "first"}`,
			mockSetup: func() {
				mockService.EXPECT().
					PlaceBid(gomock.Any(), int64(1), int64(10), amountOf("150"), "first").
					Return(bidding.PlaceBidResult{
						Bid:          model.Bid{ID: 5, AuctionID: 10, BidderID: 1, Amount: decimal.NewFromInt(150), IsWinning: true, Note: "first", CreatedAt: now},
						IsWinningBid: true,
					}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "bid recorded successfully",
			validateData: func(t *testing.T, data json.RawMessage) {
				var resp helpers.PlaceBidResponse
				require.NoError(t, json.Unmarshal(data, &resp))
				require.True(t, resp.IsWinningBid)
				require.Equal(t, int64(5), resp.Bid.BidID)
				require.Equal(t, "150.00", resp.Bid.Amount)
				require.True(t, resp.Bid.IsWinning)
			},
		},
		{
			name:        "string_amount_is_accepted",
			user:        "1",
			requestBody: `{"product_id": 10, "amount": "99.95"}`,
			mockSetup: func() {
				mockService.EXPECT().
					PlaceBid(gomock.Any(), int64(1), int64(10), amountOf("99.95"), "").
					Return(bidding.PlaceBidResult{Bid: model.Bid{ID: 6, AuctionID: 10, BidderID: 1, Amount: decimal.RequireFromString("99.95")}, IsWinningBid: true}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "bid recorded successfully",
		},
		{
			name:           "missing_caller",
			requestBody:    `{"product_id": 10, "amount": 150}`,
			mockSetup:      func() {},
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "unauthenticated",
		},
		{
			name:           "invalid_json",
			user:           "1",
			requestBody:    `{invalid json}`,
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:           "missing_product_id",
			user:           "1",
			requestBody:    `{"amount": 150}`,
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:           "zero_amount",
			user:           "1",
			requestBody:    `{"product_id": 10, "amount": 0}`,
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:           "negative_amount",
			user:           "1",
			requestBody:    `{"product_id": 10, "amount": -5}`,
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:        "bid_too_low",
			user:        "2",
			requestBody: `{"product_id": 10, "amount": 120}`,
			mockSetup: func() {
				mockService.EXPECT().
					PlaceBid(gomock.Any(), int64(2), int64(10), amountOf("120"), "").
					Return(bidding.PlaceBidResult{}, fmt.Errorf("service: %w - bid must be greater than 150.00", biddingerrors.ErrBidTooLow))
			},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "bid amount too low",
		},
		{
			name:        "auction_not_found",
			user:        "2",
			requestBody: `{"product_id": 99, "amount": 120}`,
			mockSetup: func() {
				mockService.EXPECT().
					PlaceBid(gomock.Any(), int64(2), int64(99), amountOf("120"), "").
					Return(bidding.PlaceBidResult{}, biddingerrors.ErrAuctionNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "auction not found",
		},
		{
			name:        "auction_ended",
			user:        "2",
			requestBody: `{"product_id": 10, "amount": 500}`,
			mockSetup: func() {
				mockService.EXPECT().
					PlaceBid(gomock.Any(), int64(2), int64(10), amountOf("500"), "").
					Return(bidding.PlaceBidResult{}, biddingerrors.ErrAuctionEnded)
			},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "auction has ended",
		},
		{
			name:        "internal_error",
			user:        "2",
			requestBody: `{"product_id": 10, "amount": 500}`,
			mockSetup: func() {
				mockService.EXPECT().
					PlaceBid(gomock.Any(), int64(2), int64(10), amountOf("500"), "").
					Return(bidding.PlaceBidResult{}, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "internal server error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()
			status, env := do(t, router, http.MethodPost, "/bids", tc.user, tc.requestBody)
			require.Equal(t, tc.expectedStatus, status)
			require.Equal(t, tc.expectedMsg, env.Message)
			if tc.validateData != nil {
				tc.validateData(t, env.Data)
			}
		})
	}
}

func TestCancelBidHandler(t *testing.T) {
	mockService, router := setupRouter(t)

	tests := []struct {
		name           string
		path           string
		mockSetup      func()
		expectedStatus int
		expectedMsg    string
	}{
		{
			name: "promotes_runner_up",
			path: "/bids/7",
			mockSetup: func() {
				mockService.EXPECT().CancelBid(gomock.Any(), int64(3), int64(7)).Return(bidding.CancelBidResult{
					CancelledBidID:    7,
					NewWinningBid:     &model.Bid{ID: 6, AuctionID: 10, BidderID: 2, Amount: decimal.NewFromInt(180), IsWinning: true},
					CurrentHighestBid: decimal.NewFromInt(180),
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "bid cancelled successfully",
		},
		{
			name: "not_winning",
			path: "/bids/8",
			mockSetup: func() {
				mockService.EXPECT().CancelBid(gomock.Any(), int64(3), int64(8)).Return(bidding.CancelBidResult{}, biddingerrors.ErrNotWinningBid)
			},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "not winning bid",
		},
		{
			name:           "bad_id",
			path:           "/bids/abc",
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid bid_id",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()
			status, env := do(t, router, http.MethodDelete, tc.path, "3", nil)
			require.Equal(t, tc.expectedStatus, status)
			require.Equal(t, tc.expectedMsg, env.Message)
		})
	}
}

func TestProductQueryHandlers(t *testing.T) {
	mockService, router := setupRouter(t)
	bids := []model.Bid{
		{ID: 2, AuctionID: 10, BidderID: 2, Amount: decimal.NewFromInt(200), IsWinning: true},
		{ID: 1, AuctionID: 10, BidderID: 1, Amount: decimal.NewFromInt(150)},
	}

	t.Run("bids", func(t *testing.T) {
		mockService.EXPECT().GetProductBids(gomock.Any(), int64(10)).Return(bids, nil)
		status, env := do(t, router, http.MethodGet, "/products/10/bids", "", nil)
		require.Equal(t, http.StatusOK, status)
		var got []helpers.BidResponse
		require.NoError(t, json.Unmarshal(env.Data, &got))
		require.Len(t, got, 2)
		require.Equal(t, "200.00", got[0].Amount)
	})

	t.Run("bids_empty_is_array", func(t *testing.T) {
		mockService.EXPECT().GetProductBids(gomock.Any(), int64(11)).Return(nil, nil)
		status, env := do(t, router, http.MethodGet, "/products/11/bids", "", nil)
		require.Equal(t, http.StatusOK, status)
		require.JSONEq(t, `[]`, string(env.Data))
	})

	t.Run("winning", func(t *testing.T) {
		mockService.EXPECT().GetWinningBid(gomock.Any(), int64(10)).Return(bids[0], nil)
		status, env := do(t, router, http.MethodGet, "/products/10/winning", "", nil)
		require.Equal(t, http.StatusOK, status)
		var got helpers.BidResponse
		require.NoError(t, json.Unmarshal(env.Data, &got))
		require.Equal(t, int64(2), got.BidID)
	})

	t.Run("winning_none", func(t *testing.T) {
		mockService.EXPECT().GetWinningBid(gomock.Any(), int64(12)).Return(model.Bid{}, fmt.Errorf("service: %w", biddingerrors.ErrNoBids))
		status, env := do(t, router, http.MethodGet, "/products/12/winning", "", nil)
		require.Equal(t, http.StatusNotFound, status)
		require.Equal(t, "no winning bid found", env.Message)
	})

	t.Run("stats", func(t *testing.T) {
		mockService.EXPECT().GetAuctionStats(gomock.Any(), int64(10)).Return(bidding.AuctionStats{
			AuctionID:     10,
			TotalBids:     2,
			HighestBid:    decimal.NewFromInt(200),
			LowestBid:     decimal.NewFromInt(150),
			AverageBid:    decimal.NewFromInt(175),
			UniqueBidders: 2,
		}, nil)
		status, env := do(t, router, http.MethodGet, "/products/10/stats", "", nil)
		require.Equal(t, http.StatusOK, status)
		var got helpers.StatsResponse
		require.NoError(t, json.Unmarshal(env.Data, &got))
		require.Equal(t, "175.00", got.AverageBid)
		require.Equal(t, 2, got.UniqueBidders)
	})

	t.Run("stats_not_auction", func(t *testing.T) {
		mockService.EXPECT().GetAuctionStats(gomock.Any(), int64(13)).Return(bidding.AuctionStats{}, biddingerrors.ErrNotAuction)
		status, _ := do(t, router, http.MethodGet, "/products/13/stats", "", nil)
		require.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("my_bids", func(t *testing.T) {
		mockService.EXPECT().GetUserBids(gomock.Any(), int64(1)).Return(bids[1:], nil)
		status, env := do(t, router, http.MethodGet, "/users/me/bids", "1", nil)
		require.Equal(t, http.StatusOK, status)
		var got []helpers.BidResponse
		require.NoError(t, json.Unmarshal(env.Data, &got))
		require.Len(t, got, 1)
	})

	t.Run("my_bids_requires_caller", func(t *testing.T) {
		status, _ := do(t, router, http.MethodGet, "/users/me/bids", "", nil)
		require.Equal(t, http.StatusUnauthorized, status)
	})
}
