package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-market/internal/biddingerrors"
	"auction-market/internal/clock"
	model "auction-market/internal/models"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Winner is the contact view of the winning bidder
type Winner struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// AuctionStatus is a point-in-time view of an auction. Nothing in it is stored.
type AuctionStatus struct {
	AuctionID         int64            `json:"auction_id"`
	Name              string           `json:"name"`
	IsActive          bool             `json:"is_active"`
	IsEnded           bool             `json:"is_ended"`
	EndTime           time.Time        `json:"end_time"`
	CurrentHighestBid decimal.Decimal  `json:"current_highest_bid"`
	HasWinner         bool             `json:"has_winner"`
	Winner            *Winner          `json:"winner,omitempty"`
	WinningAmount     *decimal.Decimal `json:"winning_amount,omitempty"`
	OrderID           *int64           `json:"order_id,omitempty"`
}

func (p *AuctionProcessor) getAuction(ctx context.Context, auctionID int64) (model.Auction, error) {
	auction, err := p.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("processor: failed to get auction %d: %w", auctionID, err)
	}
	if !auction.IsAuction() {
		return model.Auction{}, fmt.Errorf("processor: %w - product %d", biddingerrors.ErrNotAuction, auctionID)
	}
	return auction, nil
}

// GetAuctionStatus composes the clock view, the stored flag and,
// for an ended auction, the winner and any pending order found for them
func (p *AuctionProcessor) GetAuctionStatus(ctx context.Context, auctionID int64) (AuctionStatus, error) {
	auction, err := p.getAuction(ctx, auctionID)
	if err != nil {
		return AuctionStatus{}, err
	}

	status := AuctionStatus{
		AuctionID:         auction.ID,
		Name:              auction.Name,
		IsActive:          auction.IsActive,
		IsEnded:           clock.IsEnded(auction, p.clock.Now()),
		EndTime:           auction.AuctionEndTime,
		CurrentHighestBid: auction.CurrentHighestBid,
	}
	if !status.IsEnded {
		return status, nil
	}

	winning, err := p.ledger.Winning(ctx, auctionID)
	if errors.Is(err, biddingerrors.ErrNoBids) {
		return status, nil
	}
	if err != nil {
		return AuctionStatus{}, fmt.Errorf("processor: failed to get winning bid for auction %d: %w", auctionID, err)
	}

	status.HasWinner = true
	status.WinningAmount = lo.ToPtr(winning.Amount)
	status.Winner = &Winner{ID: winning.BidderID}
	if user, err := p.repo.GetUser(ctx, winning.BidderID); err == nil {
		status.Winner.Name = user.FullName()
		status.Winner.Email = user.Email
		status.Winner.PhoneNumber = user.PhoneNumber
	}
	if order, err := p.repo.FindPendingAuctionOrder(ctx, winning.BidderID, auctionID); err == nil {
		status.OrderID = lo.ToPtr(order.ID)
	}
	return status, nil
}

// GetAuctionOrders returns the auction orders whose items reference the auction
func (p *AuctionProcessor) GetAuctionOrders(ctx context.Context, auctionID int64) ([]model.Order, error) {
	if _, err := p.getAuction(ctx, auctionID); err != nil {
		return nil, err
	}
	orders, err := p.repo.GetAuctionOrdersByProduct(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("processor: failed to get orders for auction %d: %w", auctionID, err)
	}
	return orders, nil
}
