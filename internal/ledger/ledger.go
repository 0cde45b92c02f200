// Package ledger owns the winning-bid bookkeeping of an auction.
// All writes for one auction are serialized and run in a single transaction.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"auction-market/internal/biddingerrors"
	"auction-market/internal/lock"
	model "auction-market/internal/models"
	"auction-market/internal/repository"
)

// Ledger serializes mutations per auction on top of the persistence collaborator
type Ledger struct {
	repo  repository.AuctionDB
	locks *lock.KeyedMutex
}

// New creates a Ledger backed by repo
func New(repo repository.AuctionDB) *Ledger {
	return &Ledger{
		repo:  repo,
		locks: lock.NewKeyedMutex(),
	}
}

// Repo returns the underlying persistence collaborator for read-only queries
func (l *Ledger) Repo() repository.AuctionDB {
	return l.repo
}

// WithAuction runs fn while holding the auction's lock, inside one transaction,
// with the auction freshly read from that transaction. Returning an error rolls everything back.
func (l *Ledger) WithAuction(ctx context.Context, auctionID int64, fn func(tx repository.AuctionDB, auction model.Auction) error) error {
	unlock := l.locks.Lock(auctionID)
	defer unlock()

	return l.repo.Transact(ctx, func(tx repository.AuctionDB) error {
		auction, err := tx.GetAuctionForUpdate(ctx, auctionID)
		if err != nil {
			return err
		}
		return fn(tx, auction)
	})
}

// InsertWinning records bid as the auction's new winner: the bid is stored with IsWinning set,
// every other bid is demoted and CurrentHighestBid follows the new amount.
// It returns the bid that was winning before, or nil.
func InsertWinning(ctx context.Context, tx repository.AuctionDB, auction model.Auction, bid *model.Bid) (*model.Bid, error) {
	previous, err := currentWinner(ctx, tx, auction.ID)
	if err != nil {
		return nil, err
	}

	bid.AuctionID = auction.ID
	bid.IsWinning = true
	if err := tx.CreateBid(ctx, bid); err != nil {
		return nil, err
	}
	if err := tx.DemoteBids(ctx, auction.ID, bid.ID); err != nil {
		return nil, err
	}
	if err := tx.UpdateAuctionState(ctx, auction.ID, bid.Amount, auction.IsActive); err != nil {
		return nil, err
	}
	return previous, nil
}

// RemoveAndRecompute deletes bid and, when it was the winner, promotes the highest remaining bid
// (earliest first on equal amounts). With no bids left CurrentHighestBid reverts to the starting price.
// It returns the new winner, or nil when the auction has no bids.
func RemoveAndRecompute(ctx context.Context, tx repository.AuctionDB, auction model.Auction, bid model.Bid) (*model.Bid, error) {
	if bid.AuctionID != auction.ID {
		return nil, fmt.Errorf("bid %d does not belong to auction %d: %w", bid.ID, auction.ID, biddingerrors.ErrBidNotFound)
	}
	if err := tx.DeleteBid(ctx, bid.ID); err != nil {
		return nil, err
	}
	if !bid.IsWinning {
		return currentWinner(ctx, tx, auction.ID)
	}

	remaining, err := tx.GetBidsByAuction(ctx, auction.ID)
	if err != nil {
		return nil, err
	}
	if len(remaining) == 0 {
		if err := tx.UpdateAuctionState(ctx, auction.ID, auction.StartingPrice, auction.IsActive); err != nil {
			return nil, err
		}
		return nil, nil
	}

	top := remaining[0]
	if err := tx.DemoteBids(ctx, auction.ID, top.ID); err != nil {
		return nil, err
	}
	if err := tx.MarkWinningBid(ctx, top.ID); err != nil {
		return nil, err
	}
	if err := tx.UpdateAuctionState(ctx, auction.ID, top.Amount, auction.IsActive); err != nil {
		return nil, err
	}
	top.IsWinning = true
	return &top, nil
}

func currentWinner(ctx context.Context, tx repository.AuctionDB, auctionID int64) (*model.Bid, error) {
	winning, err := tx.GetWinningBid(ctx, auctionID)
	if errors.Is(err, biddingerrors.ErrNoBids) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &winning, nil
}

// Winning returns the auction's winning bid or ErrNoBids
func (l *Ledger) Winning(ctx context.Context, auctionID int64) (model.Bid, error) {
	return l.repo.GetWinningBid(ctx, auctionID)
}

// Bids returns the auction's bids, highest amount first
func (l *Ledger) Bids(ctx context.Context, auctionID int64) ([]model.Bid, error) {
	return l.repo.GetBidsByAuction(ctx, auctionID)
}
