package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Publisher is the part of *nats.Conn the notifier needs
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes each notification as JSON on <prefix>.<kind>.<user id>
type NATSNotifier struct {
	conn   Publisher
	prefix string
	now    func() time.Time
}

// NewNATSNotifier creates a publisher-backed notifier. An empty prefix defaults to "notifications".
func NewNATSNotifier(conn Publisher, prefix string) *NATSNotifier {
	if prefix == "" {
		prefix = "notifications"
	}
	return &NATSNotifier{
		conn:   conn,
		prefix: prefix,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Subject returns the subject a notification for userID and kind is published on
func (n *NATSNotifier) Subject(userID int64, kind Kind) string {
	return fmt.Sprintf("%s.%s.%d", n.prefix, strings.ToLower(string(kind)), userID)
}

func (n *NATSNotifier) Notify(ctx context.Context, userID int64, kind Kind, payload Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(Message{UserID: userID, Kind: kind, Payload: payload, SentAt: n.now()})
	if err != nil {
		return fmt.Errorf("nats notifier: marshal: %w", err)
	}
	if err := n.conn.Publish(n.Subject(userID, kind), body); err != nil {
		return fmt.Errorf("nats notifier: publish: %w", err)
	}
	return nil
}
