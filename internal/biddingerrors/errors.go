package biddingerrors

import "errors"

// Repository-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrBidNotFound     = errors.New("bid not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrNoBids          = errors.New("no bids found for auction")
)

// business logic errors
var (
	ErrNotAuction    = errors.New("product is not an auction")
	ErrAuctionEnded  = errors.New("auction has ended")
	ErrInvalidBid    = errors.New("invalid bid")
	ErrBidTooLow     = errors.New("bid amount too low")
	ErrNotWinningBid = errors.New("only the winning bid can be cancelled")
)

// processing errors
var (
	ErrSweepInProgress = errors.New("auction sweep already in progress")
)

// IsNotFound reports whether err means a referenced auction, bid, user or order does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAuctionNotFound) ||
		errors.Is(err, ErrBidNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrNoBids)
}

// IsBadRequest reports whether err is a rejected request that left state unchanged.
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrNotAuction) ||
		errors.Is(err, ErrAuctionEnded) ||
		errors.Is(err, ErrInvalidBid) ||
		errors.Is(err, ErrBidTooLow) ||
		errors.Is(err, ErrNotWinningBid)
}
