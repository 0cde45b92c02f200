package notifier

import (
	"context"

	"auction-market/utils"
)

// LogNotifier writes notifications to the structured log
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, userID int64, kind Kind, payload Payload) error {
	utils.Info("Notification", map[string]any{
		"user_id":    userID,
		"kind":       kind,
		"auction_id": payload.AuctionID,
		"amount":     payload.Amount,
		"order_id":   payload.OrderID,
		"title":      payload.Title,
	})
	return nil
}
