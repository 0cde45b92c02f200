package helpers

import (
	"time"

	model "auction-market/internal/models"

	"github.com/shopspring/decimal"
)

// Request/Response DTOs
type PlaceBidRequest struct {
	ProductID int64           `json:"product_id" binding:"required,gt=0"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note" binding:"max=500"`
}

type BidResponse struct {
	BidID     int64  `json:"bid_id"`
	ProductID int64  `json:"product_id"`
	UserID    int64  `json:"user_id"`
	Amount    string `json:"amount"`
	IsWinning bool   `json:"is_winning"`
	Note      string `json:"note,omitempty"`
	CreatedAt string `json:"created_at"`
}

type PlaceBidResponse struct {
	Bid          BidResponse `json:"bid"`
	IsWinningBid bool        `json:"is_winning_bid"`
}

type CancelBidResponse struct {
	CancelledBidID    int64        `json:"cancelled_bid_id"`
	NewWinningBid     *BidResponse `json:"new_winning_bid"`
	CurrentHighestBid string       `json:"current_highest_bid"`
}

type StatsResponse struct {
	ProductID     int64  `json:"product_id"`
	TotalBids     int    `json:"total_bids"`
	HighestBid    string `json:"highest_bid"`
	LowestBid     string `json:"lowest_bid"`
	AverageBid    string `json:"average_bid"`
	UniqueBidders int    `json:"unique_bidders"`
}

// ToBidResponse converts a stored bid to its wire form
func ToBidResponse(bid model.Bid) BidResponse {
	return BidResponse{
		BidID:     bid.ID,
		ProductID: bid.AuctionID,
		UserID:    bid.BidderID,
		Amount:    bid.Amount.StringFixed(2),
		IsWinning: bid.IsWinning,
		Note:      bid.Note,
		CreatedAt: bid.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToBidResponses converts a list of bids, never returning nil
func ToBidResponses(bids []model.Bid) []BidResponse {
	resp := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		resp = append(resp, ToBidResponse(b))
	}
	return resp
}
