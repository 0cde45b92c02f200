package bidding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"auction-market/internal/biddingerrors"
	"auction-market/internal/clock"
	"auction-market/internal/ledger"
	"auction-market/internal/models"
	"auction-market/internal/notifier"
	"auction-market/internal/repository"
	"auction-market/utils"

	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// BiddingService defines the business logic for auction bidding
type BiddingService struct {
	ledger   *ledger.Ledger
	repo     repository.AuctionDB
	clock    clock.Clock
	notifier notifier.Notifier
	policy   *bluemonday.Policy
}

// Option configures a BiddingService
type Option func(*BiddingService)

// WithClock replaces the wall clock
func WithClock(c clock.Clock) Option {
	return func(s *BiddingService) {
		s.clock = c
	}
}

// WithNotifier sets where outbid notifications go
func WithNotifier(n notifier.Notifier) Option {
	return func(s *BiddingService) {
		s.notifier = n
	}
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(l *ledger.Ledger, opts ...Option) *BiddingService {
	s := &BiddingService{
		ledger:   l,
		repo:     l.Repo(),
		clock:    clock.System{},
		notifier: notifier.LogNotifier{},
		policy:   bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceBidResult is the accepted bid. Every accepted bid is immediately the winner.
type PlaceBidResult struct {
	Bid          models.Bid `json:"bid"`
	IsWinningBid bool       `json:"is_winning_bid"`
}

// CancelBidResult describes the auction after a winning bid was withdrawn
type CancelBidResult struct {
	CancelledBidID    int64           `json:"cancelled_bid_id"`
	NewWinningBid     *models.Bid     `json:"new_winning_bid"`
	CurrentHighestBid decimal.Decimal `json:"current_highest_bid"`
}

// AuctionStats aggregates the bids of one auction
type AuctionStats struct {
	AuctionID     int64           `json:"auction_id"`
	TotalBids     int             `json:"total_bids"`
	HighestBid    decimal.Decimal `json:"highest_bid"`
	LowestBid     decimal.Decimal `json:"lowest_bid"`
	AverageBid    decimal.Decimal `json:"average_bid"`
	UniqueBidders int             `json:"unique_bidders"`
}

// PlaceBid validates and records a user's bid for an auction.
// The checks and the write happen under the auction's lock, so a rejected bid changes nothing.
func (s *BiddingService) PlaceBid(ctx context.Context, bidderID, auctionID int64, amount decimal.Decimal, note string) (PlaceBidResult, error) {
	var (
		bid      models.Bid
		previous *models.Bid
		auction  models.Auction
	)

	err := s.ledger.WithAuction(ctx, auctionID, func(tx repository.AuctionDB, a models.Auction) error {
		auction = a
		if err := s.validateBid(ctx, tx, a, bidderID, amount); err != nil {
			return err
		}

		bid = models.Bid{
			AuctionID: auctionID,
			BidderID:  bidderID,
			Amount:    amount,
			Note:      s.sanitizeNote(note),
			CreatedAt: s.clock.Now(),
		}
		var err error
		previous, err = ledger.InsertWinning(ctx, tx, a, &bid)
		if err != nil {
			return fmt.Errorf("service: failed to record bid for auction %d by user %d: %w", auctionID, bidderID, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, biddingerrors.ErrAuctionNotFound) {
			return PlaceBidResult{}, fmt.Errorf("service: %w - auction %d", biddingerrors.ErrAuctionNotFound, auctionID)
		}
		return PlaceBidResult{}, err
	}

	if previous != nil && previous.BidderID != bidderID {
		s.notify(ctx, previous.BidderID, notifier.KindOutbid, notifier.OutbidPayload(auction, amount))
	}

	return PlaceBidResult{Bid: bid, IsWinningBid: true}, nil
}

// validateBid checks business rules for bidding in a fixed order:
// type, open, positive and storable amount, above the minimum, known bidder
func (s *BiddingService) validateBid(ctx context.Context, tx repository.AuctionDB, auction models.Auction, bidderID int64, amount decimal.Decimal) error {
	if !auction.IsAuction() {
		return fmt.Errorf("service: %w - product %d", biddingerrors.ErrNotAuction, auction.ID)
	}
	if !auction.IsActive || !clock.IsActive(auction, s.clock.Now()) {
		return fmt.Errorf("service: %w - auction %d", biddingerrors.ErrAuctionEnded, auction.ID)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("service: %w - non-positive bid amount", biddingerrors.ErrInvalidBid)
	}
	if !models.ValidAmount(amount) {
		return fmt.Errorf("service: %w - bid amount must have at most %d decimal places and be below %s", biddingerrors.ErrInvalidBid, models.AmountScale, models.MaxAmount.String())
	}
	if minimum := auction.MinimumBid(); amount.LessThanOrEqual(minimum) {
		return fmt.Errorf("service: %w - bid must be greater than %s", biddingerrors.ErrBidTooLow, minimum.StringFixed(2))
	}
	if _, err := tx.GetUser(ctx, bidderID); err != nil {
		return fmt.Errorf("service: failed to check bidder %d: %w", bidderID, err)
	}
	return nil
}

func (s *BiddingService) sanitizeNote(note string) string {
	return strings.TrimSpace(s.policy.Sanitize(note))
}

func (s *BiddingService) notify(ctx context.Context, userID int64, kind notifier.Kind, payload notifier.Payload) {
	if err := s.notifier.Notify(ctx, userID, kind, payload); err != nil {
		utils.Warn("service: failed to enqueue notification", map[string]any{
			"user_id":    userID,
			"kind":       kind,
			"auction_id": payload.AuctionID,
			"error":      err.Error(),
		})
	}
}

// CancelBid withdraws the bidder's winning bid while the auction is still open
func (s *BiddingService) CancelBid(ctx context.Context, bidderID, bidID int64) (CancelBidResult, error) {
	bid, err := s.repo.GetBid(ctx, bidID)
	if err != nil || bid.BidderID != bidderID {
		return CancelBidResult{}, fmt.Errorf("service: %w - bid %d for user %d", biddingerrors.ErrBidNotFound, bidID, bidderID)
	}

	var result CancelBidResult
	err = s.ledger.WithAuction(ctx, bid.AuctionID, func(tx repository.AuctionDB, auction models.Auction) error {
		current, err := tx.GetBid(ctx, bidID)
		if err != nil || current.BidderID != bidderID {
			return fmt.Errorf("service: %w - bid %d for user %d", biddingerrors.ErrBidNotFound, bidID, bidderID)
		}
		if !auction.IsActive || !clock.IsActive(auction, s.clock.Now()) {
			return fmt.Errorf("service: %w - auction %d", biddingerrors.ErrAuctionEnded, auction.ID)
		}
		if !current.IsWinning {
			return fmt.Errorf("service: %w - bid %d", biddingerrors.ErrNotWinningBid, bidID)
		}

		leader, err := ledger.RemoveAndRecompute(ctx, tx, auction, current)
		if err != nil {
			return fmt.Errorf("service: failed to cancel bid %d: %w", bidID, err)
		}
		result = CancelBidResult{
			CancelledBidID:    bidID,
			NewWinningBid:     leader,
			CurrentHighestBid: auction.StartingPrice,
		}
		if leader != nil {
			result.CurrentHighestBid = leader.Amount
		}
		return nil
	})
	if err != nil {
		return CancelBidResult{}, err
	}
	return result, nil
}

func (s *BiddingService) getAuction(ctx context.Context, auctionID int64) (models.Auction, error) {
	auction, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to get auction %d: %w", auctionID, err)
	}
	if !auction.IsAuction() {
		return models.Auction{}, fmt.Errorf("service: %w - product %d", biddingerrors.ErrNotAuction, auctionID)
	}
	return auction, nil
}

// GetProductBids returns all bids for an auction, highest first
func (s *BiddingService) GetProductBids(ctx context.Context, auctionID int64) ([]models.Bid, error) {
	if _, err := s.getAuction(ctx, auctionID); err != nil {
		return nil, err
	}

	bids, err := s.ledger.Bids(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %d: %w", auctionID, err)
	}
	return bids, nil
}

// GetWinningBid returns the current winning bid for an auction
func (s *BiddingService) GetWinningBid(ctx context.Context, auctionID int64) (models.Bid, error) {
	if _, err := s.getAuction(ctx, auctionID); err != nil {
		return models.Bid{}, err
	}

	winningBid, err := s.ledger.Winning(ctx, auctionID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get winning bid for auction %d: %w", auctionID, err)
	}
	return winningBid, nil
}

// GetUserBids returns every bid the user has placed, newest first
func (s *BiddingService) GetUserBids(ctx context.Context, bidderID int64) ([]models.Bid, error) {
	bids, err := s.repo.GetBidsByUser(ctx, bidderID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for user %d: %w", bidderID, err)
	}
	return bids, nil
}

// GetAuctionStats computes count, extremes, mean and distinct bidders. All zero without bids.
func (s *BiddingService) GetAuctionStats(ctx context.Context, auctionID int64) (AuctionStats, error) {
	bids, err := s.GetProductBids(ctx, auctionID)
	if err != nil {
		return AuctionStats{}, err
	}

	stats := AuctionStats{AuctionID: auctionID}
	if len(bids) == 0 {
		return stats, nil
	}

	amounts := lo.Map(bids, func(b models.Bid, _ int) decimal.Decimal { return b.Amount })
	stats.TotalBids = len(bids)
	stats.HighestBid = decimal.Max(amounts[0], amounts[1:]...)
	stats.LowestBid = decimal.Min(amounts[0], amounts[1:]...)
	stats.AverageBid = decimal.Avg(amounts[0], amounts[1:]...).Round(2)
	stats.UniqueBidders = len(lo.Uniq(lo.Map(bids, func(b models.Bid, _ int) int64 { return b.BidderID })))
	return stats, nil
}
