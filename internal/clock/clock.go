// Package clock decides whether an auction is open from its end time and the
// current instant. Nothing here is cached: every caller recomputes.
package clock

import (
	"sync"
	"time"

	"auction-market/internal/models"
)

// Clock provides the current instant
type Clock interface {
	Now() time.Time
}

// System is the wall clock in UTC
type System struct{}

// Now returns the current UTC time
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fake is a settable clock for tests and scripted runs
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake creates a Fake clock stopped at now
func NewFake(now time.Time) *Fake {
	return &Fake{now: now}
}

// Now returns the instant the clock is stopped at
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set moves the clock to t
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

// Advance moves the clock forward by d
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// IsActive reports whether bidding is open at now. The end instant itself is not active.
func IsActive(auction models.Auction, now time.Time) bool {
	if !auction.IsAuction() || auction.AuctionEndTime.IsZero() {
		return false
	}
	return now.Before(auction.AuctionEndTime)
}

// IsEnded reports whether the auction end time has been reached at now
func IsEnded(auction models.Auction, now time.Time) bool {
	if !auction.IsAuction() || auction.AuctionEndTime.IsZero() {
		return false
	}
	return !now.Before(auction.AuctionEndTime)
}
