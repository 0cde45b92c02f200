package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"auction-market/internal/biddingerrors"
	model "auction-market/internal/models"

	"github.com/shopspring/decimal"
)

// AuctionDB defines the persistence collaborator for auctions, bids and orders.
// Every mutation of ledger state runs inside Transact so a failed step leaves nothing behind.
type AuctionDB interface {
	Transact(ctx context.Context, fn func(tx AuctionDB) error) error

	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, userID int64) (model.User, error)

	CreateAuction(ctx context.Context, auction *model.Auction) error
	GetAuction(ctx context.Context, auctionID int64) (model.Auction, error)
	GetAuctionForUpdate(ctx context.Context, auctionID int64) (model.Auction, error)
	UpdateAuctionState(ctx context.Context, auctionID int64, currentHighestBid decimal.Decimal, isActive bool) error
	FindEndedActiveAuctions(ctx context.Context, now time.Time) ([]model.Auction, error)

	CreateBid(ctx context.Context, bid *model.Bid) error
	GetBid(ctx context.Context, bidID int64) (model.Bid, error)
	DeleteBid(ctx context.Context, bidID int64) error
	GetWinningBid(ctx context.Context, auctionID int64) (model.Bid, error)
	GetBidsByAuction(ctx context.Context, auctionID int64) ([]model.Bid, error)
	GetBidsByUser(ctx context.Context, userID int64) ([]model.Bid, error)
	DemoteBids(ctx context.Context, auctionID, exceptBidID int64) error
	MarkWinningBid(ctx context.Context, bidID int64) error

	CreateOrder(ctx context.Context, order *model.Order) error
	FindPendingAuctionOrder(ctx context.Context, bidderID, productID int64) (model.Order, error)
	GetAuctionOrdersByProduct(ctx context.Context, productID int64) ([]model.Order, error)
}

type rwLocker interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

// noopLocker is used inside a transaction, where the root repo already holds the write lock
type noopLocker struct{}

func (noopLocker) Lock()    {}
func (noopLocker) Unlock()  {}
func (noopLocker) RLock()   {}
func (noopLocker) RUnlock() {}

type idSet map[int64]struct{}

func addToIndex(index map[int64]idSet, key, id int64) {
	set, ok := index[key]
	if !ok {
		set = make(idSet)
		index[key] = set
	}
	set[id] = struct{}{}
}

func removeFromIndex(index map[int64]idSet, key, id int64) {
	set, ok := index[key]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(index, key)
	}
}

// memoryState holds the rows plus the indexes that keep per-auction work proportional to that auction
type memoryState struct {
	users    map[int64]model.User
	auctions map[int64]model.Auction
	bids     map[int64]model.Bid
	orders   map[int64]model.Order

	bidsByAuction   map[int64]idSet
	bidsByUser      map[int64]idSet
	winners         map[int64]idSet
	ordersByProduct map[int64]idSet
	orderNumbers    map[string]int64
	seq             int64
}

func newMemoryState() *memoryState {
	return &memoryState{
		users:           make(map[int64]model.User),
		auctions:        make(map[int64]model.Auction),
		bids:            make(map[int64]model.Bid),
		orders:          make(map[int64]model.Order),
		bidsByAuction:   make(map[int64]idSet),
		bidsByUser:      make(map[int64]idSet),
		winners:         make(map[int64]idSet),
		ordersByProduct: make(map[int64]idSet),
		orderNumbers:    make(map[string]int64),
	}
}

func (s *memoryState) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *memoryState) putBid(b model.Bid) {
	s.bids[b.ID] = b
	addToIndex(s.bidsByAuction, b.AuctionID, b.ID)
	addToIndex(s.bidsByUser, b.BidderID, b.ID)
	if b.IsWinning {
		addToIndex(s.winners, b.AuctionID, b.ID)
	} else {
		removeFromIndex(s.winners, b.AuctionID, b.ID)
	}
}

func (s *memoryState) removeBid(id int64) {
	b, ok := s.bids[id]
	if !ok {
		return
	}
	delete(s.bids, id)
	removeFromIndex(s.bidsByAuction, b.AuctionID, id)
	removeFromIndex(s.bidsByUser, b.BidderID, id)
	removeFromIndex(s.winners, b.AuctionID, id)
}

func (s *memoryState) putOrder(o model.Order) {
	s.orders[o.ID] = o
	s.orderNumbers[o.OrderNumber] = o.ID
	for _, item := range o.Items {
		addToIndex(s.ordersByProduct, item.ProductID, o.ID)
	}
}

func (s *memoryState) removeOrder(id int64) {
	o, ok := s.orders[id]
	if !ok {
		return
	}
	delete(s.orders, id)
	delete(s.orderNumbers, o.OrderNumber)
	for _, item := range o.Items {
		removeFromIndex(s.ordersByProduct, item.ProductID, id)
	}
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB
type MemoryRepo struct {
	mu      rwLocker
	state   *memoryState
	inTx    bool
	journal *[]func()
	now     func() time.Time
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		mu:    &sync.RWMutex{},
		state: newMemoryState(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// record keeps the undo step of a write made inside a transaction
func (r *MemoryRepo) record(undo func()) {
	if r.journal != nil {
		*r.journal = append(*r.journal, undo)
	}
}

// Transact runs fn under the write lock. Writes go straight to the store and
// are undone in reverse order when fn fails or panics. Nested calls join the outer transaction.
func (r *MemoryRepo) Transact(ctx context.Context, fn func(tx AuctionDB) error) error {
	if r.inTx {
		return fn(r)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var journal []func()
	committed := false
	defer func() {
		if committed {
			return
		}
		for i := len(journal) - 1; i >= 0; i-- {
			journal[i]()
		}
	}()

	tx := &MemoryRepo{mu: noopLocker{}, state: r.state, inTx: true, journal: &journal, now: r.now}
	if err := fn(tx); err != nil {
		return err
	}
	committed = true
	return nil
}

// CreateUser stores a user and assigns its ID
func (r *MemoryRepo) CreateUser(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == 0 {
		user.ID = r.state.nextID()
	}
	prev, had := r.state.users[user.ID]
	r.state.users[user.ID] = *user
	id := user.ID
	r.record(func() {
		if had {
			r.state.users[id] = prev
			return
		}
		delete(r.state.users, id)
	})
	return nil
}

// GetUser returns a user by ID
func (r *MemoryRepo) GetUser(ctx context.Context, userID int64) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.state.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("get user %d: %w", userID, biddingerrors.ErrUserNotFound)
	}
	return user, nil
}

func (r *MemoryRepo) putAuction(auction model.Auction) {
	prev, had := r.state.auctions[auction.ID]
	r.state.auctions[auction.ID] = auction
	id := auction.ID
	r.record(func() {
		if had {
			r.state.auctions[id] = prev
			return
		}
		delete(r.state.auctions, id)
	})
}

// CreateAuction stores a product and assigns its ID
func (r *MemoryRepo) CreateAuction(ctx context.Context, auction *model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if auction.ID == 0 {
		auction.ID = r.state.nextID()
	}
	now := r.now()
	if auction.CreatedAt.IsZero() {
		auction.CreatedAt = now
	}
	auction.UpdatedAt = now
	r.putAuction(*auction)
	return nil
}

// GetAuction returns a product by ID
func (r *MemoryRepo) GetAuction(ctx context.Context, auctionID int64) (model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auction, ok := r.state.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %d: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	return auction, nil
}

// GetAuctionForUpdate is GetAuction; the transaction already serializes access
func (r *MemoryRepo) GetAuctionForUpdate(ctx context.Context, auctionID int64) (model.Auction, error) {
	return r.GetAuction(ctx, auctionID)
}

// UpdateAuctionState writes the mutable auction fields
func (r *MemoryRepo) UpdateAuctionState(ctx context.Context, auctionID int64, currentHighestBid decimal.Decimal, isActive bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	auction, ok := r.state.auctions[auctionID]
	if !ok {
		return fmt.Errorf("update auction %d: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	auction.CurrentHighestBid = currentHighestBid
	auction.IsActive = isActive
	auction.UpdatedAt = r.now()
	r.putAuction(auction)
	return nil
}

// FindEndedActiveAuctions returns active auctions whose end time is at or before now
func (r *MemoryRepo) FindEndedActiveAuctions(ctx context.Context, now time.Time) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auctions := make([]model.Auction, 0)
	for _, a := range r.state.auctions {
		if !a.IsAuction() || !a.IsActive || a.AuctionEndTime.IsZero() {
			continue
		}
		if a.AuctionEndTime.After(now) {
			continue
		}
		auctions = append(auctions, a)
	}
	sort.Slice(auctions, func(i, j int) bool { return auctions[i].ID < auctions[j].ID })
	return auctions, nil
}

// saveBid writes b and records how to restore the previous row
func (r *MemoryRepo) saveBid(b model.Bid) {
	prev, had := r.state.bids[b.ID]
	r.state.putBid(b)
	id := b.ID
	r.record(func() {
		if had {
			r.state.putBid(prev)
			return
		}
		r.state.removeBid(id)
	})
}

// CreateBid records a bid and assigns its ID
func (r *MemoryRepo) CreateBid(ctx context.Context, bid *model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.state.auctions[bid.AuctionID]; !ok {
		return fmt.Errorf("record bid for auction %d: %w", bid.AuctionID, biddingerrors.ErrAuctionNotFound)
	}
	if bid.ID == 0 {
		bid.ID = r.state.nextID()
	}
	if bid.CreatedAt.IsZero() {
		bid.CreatedAt = r.now()
	}
	r.saveBid(*bid)
	return nil
}

// GetBid returns a bid by ID
func (r *MemoryRepo) GetBid(ctx context.Context, bidID int64) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bid, ok := r.state.bids[bidID]
	if !ok {
		return model.Bid{}, fmt.Errorf("get bid %d: %w", bidID, biddingerrors.ErrBidNotFound)
	}
	return bid, nil
}

// DeleteBid removes a bid
func (r *MemoryRepo) DeleteBid(ctx context.Context, bidID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.state.bids[bidID]
	if !ok {
		return fmt.Errorf("delete bid %d: %w", bidID, biddingerrors.ErrBidNotFound)
	}
	r.state.removeBid(bidID)
	r.record(func() { r.state.putBid(prev) })
	return nil
}

// GetWinningBid returns the bid flagged as winning for an auction.
// Should more than one carry the flag, the most recent one is returned.
func (r *MemoryRepo) GetWinningBid(ctx context.Context, auctionID int64) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var winner int64
	for id := range r.state.winners[auctionID] {
		if id > winner {
			winner = id
		}
	}
	if winner == 0 {
		return model.Bid{}, fmt.Errorf("get winning bid for auction %d: %w", auctionID, biddingerrors.ErrNoBids)
	}
	return r.state.bids[winner], nil
}

func (r *MemoryRepo) collectBids(ids idSet) []model.Bid {
	bids := make([]model.Bid, 0, len(ids))
	for id := range ids {
		bids = append(bids, r.state.bids[id])
	}
	return bids
}

// GetBidsByAuction returns all bids for an auction, highest amount first
func (r *MemoryRepo) GetBidsByAuction(ctx context.Context, auctionID int64) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bids := r.collectBids(r.state.bidsByAuction[auctionID])
	sort.Slice(bids, func(i, j int) bool {
		if c := bids[i].Amount.Cmp(bids[j].Amount); c != 0 {
			return c > 0
		}
		if !bids[i].CreatedAt.Equal(bids[j].CreatedAt) {
			return bids[i].CreatedAt.Before(bids[j].CreatedAt)
		}
		return bids[i].ID < bids[j].ID
	})
	return bids, nil
}

// GetBidsByUser returns all bids a user has placed, newest first
func (r *MemoryRepo) GetBidsByUser(ctx context.Context, userID int64) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bids := r.collectBids(r.state.bidsByUser[userID])
	sort.Slice(bids, func(i, j int) bool {
		if !bids[i].CreatedAt.Equal(bids[j].CreatedAt) {
			return bids[i].CreatedAt.After(bids[j].CreatedAt)
		}
		return bids[i].ID > bids[j].ID
	})
	return bids, nil
}

// DemoteBids clears the winning flag on every bid of the auction except exceptBidID
func (r *MemoryRepo) DemoteBids(ctx context.Context, auctionID, exceptBidID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var demote []int64
	for id := range r.state.winners[auctionID] {
		if id != exceptBidID {
			demote = append(demote, id)
		}
	}
	for _, id := range demote {
		b := r.state.bids[id]
		b.IsWinning = false
		r.saveBid(b)
	}
	return nil
}

// MarkWinningBid flags a bid as the winner
func (r *MemoryRepo) MarkWinningBid(ctx context.Context, bidID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bid, ok := r.state.bids[bidID]
	if !ok {
		return fmt.Errorf("mark winning bid %d: %w", bidID, biddingerrors.ErrBidNotFound)
	}
	bid.IsWinning = true
	r.saveBid(bid)
	return nil
}

// CreateOrder stores an order together with its items
func (r *MemoryRepo) CreateOrder(ctx context.Context, order *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.state.orderNumbers[order.OrderNumber]; dup {
		return fmt.Errorf("create order %s: duplicate order number", order.OrderNumber)
	}
	now := r.now()
	if order.ID == 0 {
		order.ID = r.state.nextID()
	}
	order.CreatedAt, order.UpdatedAt = now, now
	items := make([]model.OrderItem, len(order.Items))
	for i, item := range order.Items {
		if item.ID == 0 {
			item.ID = r.state.nextID()
		}
		item.OrderID = order.ID
		item.CreatedAt = now
		items[i] = item
	}
	order.Items = items
	r.state.putOrder(*order)
	id := order.ID
	r.record(func() { r.state.removeOrder(id) })
	return nil
}

func (r *MemoryRepo) ordersWithProduct(productID int64) []model.Order {
	orders := make([]model.Order, 0)
	for id := range r.state.ordersByProduct[productID] {
		if o := r.state.orders[id]; o.OrderType == model.OrderTypeAuction {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders
}

// FindPendingAuctionOrder returns the bidder's unpaid auction order that contains productID
func (r *MemoryRepo) FindPendingAuctionOrder(ctx context.Context, bidderID, productID int64) (model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.ordersWithProduct(productID) {
		if o.BidderID == bidderID && o.PaymentStatus == model.PaymentStatusPendingPayment {
			return o, nil
		}
	}
	return model.Order{}, fmt.Errorf("find pending order for user %d and product %d: %w", bidderID, productID, biddingerrors.ErrOrderNotFound)
}

// GetAuctionOrdersByProduct returns auction orders whose items reference productID
func (r *MemoryRepo) GetAuctionOrdersByProduct(ctx context.Context, productID int64) ([]model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.ordersWithProduct(productID), nil
}
