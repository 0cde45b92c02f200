// Package orders turns a resolved auction into the payable order for its winner.
package orders

import (
	"fmt"
	"time"

	model "auction-market/internal/models"
	"auction-market/utils"

	"github.com/shopspring/decimal"
)

// Factory builds auction orders. The random suffix keeps order numbers unique
// when two auctions resolve in the same millisecond.
type Factory struct {
	suffix func() string
}

// NewFactory creates a Factory with random 8 character suffixes
func NewFactory() *Factory {
	return &Factory{suffix: func() string { return utils.ShortID(8) }}
}

// OrderNumber formats AUCTION-<auction id>-<unix millis>-<suffix>
func (f *Factory) OrderNumber(auctionID int64, at time.Time) string {
	return fmt.Sprintf("%s-%d-%d-%s", model.AuctionOrderPrefix, auctionID, at.UnixMilli(), f.suffix())
}

// FromWinningBid builds the order and its single item from the winning bid,
// freezing the auction's presentation fields into the item snapshot
func (f *Factory) FromWinningBid(auction model.Auction, bid model.Bid, winner model.User, at time.Time) model.Order {
	amount := bid.Amount
	images := append([]string(nil), auction.Images...)

	return model.Order{
		OrderNumber:    f.OrderNumber(auction.ID, at),
		BidderID:       bid.BidderID,
		OrderType:      model.OrderTypeAuction,
		Status:         model.OrderStatusPending,
		PaymentStatus:  model.PaymentStatusPendingPayment,
		Subtotal:       amount,
		TaxAmount:      decimal.Zero,
		ShippingAmount: decimal.Zero,
		TotalAmount:    amount,
		FirstName:      winner.FirstName,
		LastName:       winner.LastName,
		Email:          winner.Email,
		PhoneNumber:    winner.PhoneNumber,
		Note:           fmt.Sprintf("Auction win: %s", auction.Name),
		Items: []model.OrderItem{{
			ProductID:   auction.ID,
			ProductName: auction.Name,
			Quantity:    1,
			UnitPrice:   amount,
			TotalPrice:  amount,
			ProductData: model.ProductSnapshot{
				ID:          auction.ID,
				Name:        auction.Name,
				Description: auction.Description,
				Price:       amount,
				Images:      images,
			},
		}},
	}
}
