package handler

import (
	"context"
	"errors"
	"net/http"

	bidding "auction-market/internal/biddingService"
	"auction-market/internal/biddingerrors"
	model "auction-market/internal/models"
	"auction-market/services/bidding/helpers"
	"auction-market/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=bidding_handler.go -destination=mock_bidding_service.go -package=handler

type BiddingServiceInterface interface {
	PlaceBid(ctx context.Context, bidderID, auctionID int64, amount decimal.Decimal, note string) (bidding.PlaceBidResult, error)
	CancelBid(ctx context.Context, bidderID, bidID int64) (bidding.CancelBidResult, error)
	GetProductBids(ctx context.Context, auctionID int64) ([]model.Bid, error)
	GetWinningBid(ctx context.Context, auctionID int64) (model.Bid, error)
	GetUserBids(ctx context.Context, bidderID int64) ([]model.Bid, error)
	GetAuctionStats(ctx context.Context, auctionID int64) (bidding.AuctionStats, error)
}

type BiddingHandler struct {
	service BiddingServiceInterface
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// RecordBidHandler handles POST /bids
func (h *BiddingHandler) RecordBidHandler(c *gin.Context) {
	userID, ok := helpers.CallerID(c, "RecordBidHandler")
	if !ok {
		return
	}

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RecordBidHandler", err)
		return
	}
	if !req.Amount.IsPositive() {
		helpers.HandleBindError(c, "RecordBidHandler", errors.New("amount must be greater than zero"))
		return
	}

	res, err := h.service.PlaceBid(c.Request.Context(), userID, req.ProductID, req.Amount, req.Note)
	if err != nil {
		helpers.RespondError(c, "RecordBidHandler", err, map[string]any{
			"product_id": req.ProductID,
			"user_id":    userID,
			"amount":     req.Amount.String(),
		})
		return
	}

	resp := helpers.PlaceBidResponse{
		Bid:          helpers.ToBidResponse(res.Bid),
		IsWinningBid: res.IsWinningBid,
	}
	utils.JSONResponse(c, http.StatusCreated, resp, "bid recorded successfully")
	helpers.LogSuccess("RecordBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":     res.Bid.ID,
		"product_id": res.Bid.AuctionID,
		"user_id":    userID,
		"amount":     res.Bid.Amount.String(),
	})
}

// CancelBidHandler handles DELETE /bids/:bid_id
func (h *BiddingHandler) CancelBidHandler(c *gin.Context) {
	userID, ok := helpers.CallerID(c, "CancelBidHandler")
	if !ok {
		return
	}
	bidID, ok := helpers.PathID(c, "CancelBidHandler", "bid_id")
	if !ok {
		return
	}

	res, err := h.service.CancelBid(c.Request.Context(), userID, bidID)
	if err != nil {
		helpers.RespondError(c, "CancelBidHandler", err, map[string]any{"bid_id": bidID, "user_id": userID})
		return
	}

	resp := helpers.CancelBidResponse{
		CancelledBidID:    res.CancelledBidID,
		CurrentHighestBid: res.CurrentHighestBid.StringFixed(2),
	}
	if res.NewWinningBid != nil {
		winning := helpers.ToBidResponse(*res.NewWinningBid)
		resp.NewWinningBid = &winning
	}
	utils.JSONResponse(c, http.StatusOK, resp, "bid cancelled successfully")
	helpers.LogSuccess("CancelBidHandler", "bid cancelled successfully", map[string]any{
		"bid_id":  bidID,
		"user_id": userID,
	})
}

// GetBidsByProductHandler handles GET /products/:product_id/bids
func (h *BiddingHandler) GetBidsByProductHandler(c *gin.Context) {
	productID, ok := helpers.PathID(c, "GetBidsByProductHandler", "product_id")
	if !ok {
		return
	}

	bids, err := h.service.GetProductBids(c.Request.Context(), productID)
	if err != nil {
		helpers.RespondError(c, "GetBidsByProductHandler", err, map[string]any{"product_id": productID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToBidResponses(bids), "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByProductHandler", "bids retrieved successfully", map[string]any{
		"product_id": productID,
		"count":      len(bids),
	})
}

// GetWinningBidHandler handles GET /products/:product_id/winning
func (h *BiddingHandler) GetWinningBidHandler(c *gin.Context) {
	productID, ok := helpers.PathID(c, "GetWinningBidHandler", "product_id")
	if !ok {
		return
	}

	bid, err := h.service.GetWinningBid(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, biddingerrors.ErrNoBids) {
			utils.JSONError(c, http.StatusNotFound, err, "no winning bid found")
			utils.Info("GetWinningBidHandler: no winning bid found", map[string]any{"product_id": productID})
			return
		}
		helpers.RespondError(c, "GetWinningBidHandler", err, map[string]any{"product_id": productID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToBidResponse(bid), "winning bid retrieved successfully")
	helpers.LogSuccess("GetWinningBidHandler", "winning bid retrieved successfully", map[string]any{
		"bid_id":     bid.ID,
		"product_id": productID,
		"user_id":    bid.BidderID,
		"amount":     bid.Amount.String(),
	})
}

// GetStatsHandler handles GET /products/:product_id/stats
func (h *BiddingHandler) GetStatsHandler(c *gin.Context) {
	productID, ok := helpers.PathID(c, "GetStatsHandler", "product_id")
	if !ok {
		return
	}

	stats, err := h.service.GetAuctionStats(c.Request.Context(), productID)
	if err != nil {
		helpers.RespondError(c, "GetStatsHandler", err, map[string]any{"product_id": productID})
		return
	}

	resp := helpers.StatsResponse{
		ProductID:     productID,
		TotalBids:     stats.TotalBids,
		HighestBid:    stats.HighestBid.StringFixed(2),
		LowestBid:     stats.LowestBid.StringFixed(2),
		AverageBid:    stats.AverageBid.StringFixed(2),
		UniqueBidders: stats.UniqueBidders,
	}
	utils.JSONResponse(c, http.StatusOK, resp, "bid statistics retrieved successfully")
}

// GetMyBidsHandler handles GET /users/me/bids
func (h *BiddingHandler) GetMyBidsHandler(c *gin.Context) {
	userID, ok := helpers.CallerID(c, "GetMyBidsHandler")
	if !ok {
		return
	}

	bids, err := h.service.GetUserBids(c.Request.Context(), userID)
	if err != nil {
		helpers.RespondError(c, "GetMyBidsHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToBidResponses(bids), "bids retrieved successfully")
	helpers.LogSuccess("GetMyBidsHandler", "bids retrieved successfully", map[string]any{
		"user_id": userID,
		"count":   len(bids),
	})
}
