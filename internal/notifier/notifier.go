// Package notifier delivers user notifications produced by the bidding core.
// Delivery is best effort: callers never roll back ledger changes because a notification failed.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	model "auction-market/internal/models"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=notifier.go -destination=mock_notifier.go -package=notifier
//go:generate mockgen -source=nats.go -destination=mock_publisher.go -package=notifier

// Kind identifies the event a notification reports
type Kind string

const (
	KindOutbid     Kind = "OUTBID"
	KindAuctionWon Kind = "AUCTION_WON"
)

// Payload is the user-facing content of a notification
type Payload struct {
	AuctionID   int64  `json:"auction_id" msgpack:"auction_id"`
	AuctionName string `json:"auction_name" msgpack:"auction_name"`
	Amount      string `json:"amount" msgpack:"amount"`
	OrderID     int64  `json:"order_id,omitempty" msgpack:"order_id,omitempty"`
	Title       string `json:"title" msgpack:"title"`
	Body        string `json:"body" msgpack:"body"`
}

// Message is what backends put on the wire
type Message struct {
	UserID  int64     `json:"user_id" msgpack:"user_id"`
	Kind    Kind      `json:"kind" msgpack:"kind"`
	Payload Payload   `json:"payload" msgpack:"payload"`
	SentAt  time.Time `json:"sent_at" msgpack:"sent_at"`
}

// Notifier sends a notification to a single user
type Notifier interface {
	Notify(ctx context.Context, userID int64, kind Kind, payload Payload) error
}

func formatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// OutbidPayload builds the notification sent to a bidder who lost the lead
func OutbidPayload(auction model.Auction, currentHighest decimal.Decimal) Payload {
	return Payload{
		AuctionID:   auction.ID,
		AuctionName: auction.Name,
		Amount:      formatAmount(currentHighest),
		Title:       "You have been outbid!",
		Body:        fmt.Sprintf("Someone has placed a higher bid on %s. Current highest bid: $%s", auction.Name, formatAmount(currentHighest)),
	}
}

// AuctionWonPayload builds the notification sent to the winner once the order exists
func AuctionWonPayload(auction model.Auction, amount decimal.Decimal, orderID int64) Payload {
	return Payload{
		AuctionID:   auction.ID,
		AuctionName: auction.Name,
		Amount:      formatAmount(amount),
		OrderID:     orderID,
		Title:       "Congratulations! You won the auction!",
		Body:        fmt.Sprintf("You won the auction for %s with a bid of $%s. Please complete your payment.", auction.Name, formatAmount(amount)),
	}
}

// Fanout sends every notification to all of its backends
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, userID int64, kind Kind, payload Payload) error {
	var errs []error
	for _, n := range f {
		if err := n.Notify(ctx, userID, kind, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
