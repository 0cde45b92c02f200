// Package processor resolves ended auctions into orders and answers status queries.
package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"auction-market/internal/biddingerrors"
	"auction-market/internal/clock"
	"auction-market/internal/ledger"
	"auction-market/internal/lock"
	model "auction-market/internal/models"
	"auction-market/internal/notifier"
	"auction-market/internal/orders"
	"auction-market/internal/repository"
	"auction-market/utils"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Result identifies the order an auction was converted into
type Result struct {
	AuctionID   int64           `json:"auction_id"`
	WinnerID    int64           `json:"winner_id"`
	Amount      decimal.Decimal `json:"amount"`
	OrderID     int64           `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	// Existing is set when the order had already been created by an earlier sweep
	Existing bool `json:"existing"`
}

// Summary reports one sweep
type Summary struct {
	Processed  int       `json:"processed"`
	Results    []Result  `json:"results"`
	Errors     []string  `json:"errors"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// AuctionProcessor converts ended auctions into orders exactly once
type AuctionProcessor struct {
	ledger   *ledger.Ledger
	repo     repository.AuctionDB
	clock    clock.Clock
	notifier notifier.Notifier
	factory  *orders.Factory
	runLock  lock.RunLock
	workers  int

	mu      sync.RWMutex
	lastRun *Summary
}

// Option configures an AuctionProcessor
type Option func(*AuctionProcessor)

// WithClock replaces the wall clock used to find ended auctions
func WithClock(c clock.Clock) Option {
	return func(p *AuctionProcessor) {
		p.clock = c
	}
}

// WithNotifier sets where auction-won notifications are sent
func WithNotifier(n notifier.Notifier) Option {
	return func(p *AuctionProcessor) {
		p.notifier = n
	}
}

// WithRunLock replaces the process-local run lock, e.g. with a Redis-backed one
func WithRunLock(l lock.RunLock) Option {
	return func(p *AuctionProcessor) {
		p.runLock = l
	}
}

// WithWorkers bounds how many auctions one sweep resolves concurrently
func WithWorkers(n int) Option {
	return func(p *AuctionProcessor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithOrderFactory replaces how winning bids are turned into orders
func WithOrderFactory(f *orders.Factory) Option {
	return func(p *AuctionProcessor) {
		p.factory = f
	}
}

// NewAuctionProcessor creates a processor sharing the ledger used for bidding
func NewAuctionProcessor(l *ledger.Ledger, opts ...Option) *AuctionProcessor {
	p := &AuctionProcessor{
		ledger:   l,
		repo:     l.Repo(),
		clock:    clock.System{},
		notifier: notifier.LogNotifier{},
		factory:  orders.NewFactory(),
		runLock:  lock.NewLocalRunLock(),
		workers:  4,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type outcome struct {
	attempted bool
	result    *Result
	err       error
}

// ProcessEndedAuctions runs one sweep. A sweep already in progress makes it return ErrSweepInProgress.
// Failures are reported per auction in Summary.Errors and never stop the rest of the batch.
func (p *AuctionProcessor) ProcessEndedAuctions(ctx context.Context) (Summary, error) {
	release, ok, err := p.runLock.TryLock(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("processor: failed to acquire run lock: %w", err)
	}
	if !ok {
		return Summary{}, fmt.Errorf("processor: %w", biddingerrors.ErrSweepInProgress)
	}
	defer release()

	now := p.clock.Now()
	summary := Summary{
		Results:   []Result{},
		Errors:    []string{},
		StartedAt: now,
	}

	auctions, err := p.repo.FindEndedActiveAuctions(ctx, now)
	if err != nil {
		return Summary{}, fmt.Errorf("processor: failed to find ended auctions: %w", err)
	}

	outcomes := make([]outcome, len(auctions))
	g := new(errgroup.Group)
	g.SetLimit(p.workers)
	for i, a := range auctions {
		i, a := i, a
		g.Go(func() error {
			outcomes[i] = p.processAuction(ctx, a, now)
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range outcomes {
		if !o.attempted {
			continue
		}
		summary.Processed++
		if o.err != nil {
			summary.Errors = append(summary.Errors, o.err.Error())
			continue
		}
		if o.result != nil {
			summary.Results = append(summary.Results, *o.result)
		}
	}
	summary.FinishedAt = p.clock.Now()

	p.mu.Lock()
	p.lastRun = &summary
	p.mu.Unlock()

	utils.Info("processor: sweep finished", map[string]any{
		"candidates": len(auctions),
		"processed":  summary.Processed,
		"orders":     len(summary.Results),
		"errors":     len(summary.Errors),
	})
	return summary, nil
}

func (p *AuctionProcessor) processAuction(ctx context.Context, candidate model.Auction, now time.Time) outcome {
	if !clock.IsEnded(candidate, now) {
		utils.Warn("processor: auction selected but not ended, skipping", map[string]any{
			"auction_id": candidate.ID,
			"end_time":   candidate.AuctionEndTime,
		})
		return outcome{}
	}

	var (
		result   *Result
		auction  model.Auction
		inactive bool
		created  bool
	)
	err := p.ledger.WithAuction(ctx, candidate.ID, func(tx repository.AuctionDB, a model.Auction) error {
		auction = a
		if !a.IsActive {
			inactive = true
			return nil
		}

		winning, err := tx.GetWinningBid(ctx, a.ID)
		if errors.Is(err, biddingerrors.ErrNoBids) {
			return tx.UpdateAuctionState(ctx, a.ID, a.CurrentHighestBid, false)
		}
		if err != nil {
			return err
		}

		existing, err := tx.FindPendingAuctionOrder(ctx, winning.BidderID, a.ID)
		switch {
		case err == nil:
			result = resultFor(a.ID, winning, existing)
			result.Existing = true
			return tx.UpdateAuctionState(ctx, a.ID, winning.Amount, false)
		case !errors.Is(err, biddingerrors.ErrOrderNotFound):
			return err
		}

		winner, err := tx.GetUser(ctx, winning.BidderID)
		if err != nil {
			return err
		}
		order := p.factory.FromWinningBid(a, winning, winner, now)
		if err := tx.CreateOrder(ctx, &order); err != nil {
			return err
		}
		if err := tx.UpdateAuctionState(ctx, a.ID, winning.Amount, false); err != nil {
			return err
		}
		result = resultFor(a.ID, winning, order)
		created = true
		return nil
	})
	if err != nil {
		utils.Error("processor: failed to resolve auction", map[string]any{
			"auction_id": candidate.ID,
			"error":      err.Error(),
		})
		return outcome{attempted: true, err: fmt.Errorf("auction %d: %w", candidate.ID, err)}
	}
	if inactive {
		return outcome{}
	}

	if created {
		payload := notifier.AuctionWonPayload(auction, result.Amount, result.OrderID)
		if err := p.notifier.Notify(ctx, result.WinnerID, notifier.KindAuctionWon, payload); err != nil {
			utils.Warn("processor: failed to enqueue notification", map[string]any{
				"auction_id": auction.ID,
				"user_id":    result.WinnerID,
				"error":      err.Error(),
			})
		}
		utils.Info("processor: auction converted to order", map[string]any{
			"auction_id":   auction.ID,
			"winner_id":    result.WinnerID,
			"amount":       result.Amount.StringFixed(2),
			"order_number": result.OrderNumber,
		})
	}
	return outcome{attempted: true, result: result}
}

func resultFor(auctionID int64, winning model.Bid, order model.Order) *Result {
	return &Result{
		AuctionID:   auctionID,
		WinnerID:    winning.BidderID,
		Amount:      winning.Amount,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
	}
}

// LastRun returns the summary of the most recent completed sweep
func (p *AuctionProcessor) LastRun() (Summary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.lastRun == nil {
		return Summary{}, false
	}
	return *p.lastRun, true
}
