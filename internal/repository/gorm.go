package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-market/internal/biddingerrors"
	model "auction-market/internal/models"
	"auction-market/utils"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// GormRepo implements AuctionDB on top of a relational database
type GormRepo struct {
	db *gorm.DB
}

var _ AuctionDB = (*GormRepo)(nil)

// NewGormRepo wraps an open gorm connection
func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{db: db}
}

// gormLogWriter sends gorm's slow-query and error lines to the JSON logger
type gormLogWriter struct{}

func (gormLogWriter) Printf(format string, args ...any) {
	utils.Warn("gorm", map[string]any{"detail": fmt.Sprintf(format, args...)})
}

func newGormLogger() logger.Interface {
	return logger.New(gormLogWriter{}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// OpenGorm opens a connection with the settings every dialect shares
func OpenGorm(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// OpenPostgres opens a PostgreSQL connection from a DSN
func OpenPostgres(dsn string) (*gorm.DB, error) {
	return OpenGorm(postgres.Open(dsn))
}

// PostgresDSN builds a connection URL from its parts
func PostgresDSN(host string, port int, user, password, database, sslMode string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", user, password, host, port, database, sslMode)
}

// Migrate creates or updates the tables used by the bidding core
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Product{}, &model.Bid{}, &model.Order{}, &model.OrderItem{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func notFound(err error, sentinel error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel)
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Transact runs fn inside a database transaction
func (r *GormRepo) Transact(ctx context.Context, fn func(tx AuctionDB) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{db: tx})
	})
}

func (r *GormRepo) CreateUser(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *GormRepo) GetUser(ctx context.Context, userID int64) (model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return model.User{}, notFound(err, biddingerrors.ErrUserNotFound, "get user %d", userID)
	}
	return user, nil
}

func (r *GormRepo) CreateAuction(ctx context.Context, auction *model.Auction) error {
	if err := r.db.WithContext(ctx).Create(auction).Error; err != nil {
		return fmt.Errorf("create auction: %w", err)
	}
	return nil
}

func (r *GormRepo) GetAuction(ctx context.Context, auctionID int64) (model.Auction, error) {
	var auction model.Auction
	if err := r.db.WithContext(ctx).First(&auction, auctionID).Error; err != nil {
		return model.Auction{}, notFound(err, biddingerrors.ErrAuctionNotFound, "get auction %d", auctionID)
	}
	return auction, nil
}

// GetAuctionForUpdate reads the auction row with a row lock where the dialect supports it
func (r *GormRepo) GetAuctionForUpdate(ctx context.Context, auctionID int64) (model.Auction, error) {
	q := r.db.WithContext(ctx)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var auction model.Auction
	if err := q.First(&auction, auctionID).Error; err != nil {
		return model.Auction{}, notFound(err, biddingerrors.ErrAuctionNotFound, "lock auction %d", auctionID)
	}
	return auction, nil
}

func (r *GormRepo) UpdateAuctionState(ctx context.Context, auctionID int64, currentHighestBid decimal.Decimal, isActive bool) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", auctionID).Updates(map[string]any{
		"current_highest_bid": currentHighestBid,
		"is_active":           isActive,
	})
	if res.Error != nil {
		return fmt.Errorf("update auction %d: %w", auctionID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update auction %d: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	return nil
}

func (r *GormRepo) FindEndedActiveAuctions(ctx context.Context, now time.Time) ([]model.Auction, error) {
	var auctions []model.Auction
	err := r.db.WithContext(ctx).
		Where("type = ? AND is_active = ? AND auction_end_time <= ?", model.ProductTypeAuction, true, now).
		Order("id").
		Find(&auctions).Error
	if err != nil {
		return nil, fmt.Errorf("find ended auctions: %w", err)
	}
	return lo.Filter(auctions, func(a model.Auction, _ int) bool { return !a.AuctionEndTime.IsZero() }), nil
}

func (r *GormRepo) CreateBid(ctx context.Context, bid *model.Bid) error {
	if err := r.db.WithContext(ctx).Create(bid).Error; err != nil {
		return fmt.Errorf("record bid for auction %d: %w", bid.AuctionID, err)
	}
	return nil
}

func (r *GormRepo) GetBid(ctx context.Context, bidID int64) (model.Bid, error) {
	var bid model.Bid
	if err := r.db.WithContext(ctx).First(&bid, bidID).Error; err != nil {
		return model.Bid{}, notFound(err, biddingerrors.ErrBidNotFound, "get bid %d", bidID)
	}
	return bid, nil
}

func (r *GormRepo) DeleteBid(ctx context.Context, bidID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Bid{}, bidID)
	if res.Error != nil {
		return fmt.Errorf("delete bid %d: %w", bidID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete bid %d: %w", bidID, biddingerrors.ErrBidNotFound)
	}
	return nil
}

func (r *GormRepo) GetWinningBid(ctx context.Context, auctionID int64) (model.Bid, error) {
	var bid model.Bid
	err := r.db.WithContext(ctx).Where("product_id = ? AND is_winning = ?", auctionID, true).First(&bid).Error
	if err != nil {
		return model.Bid{}, notFound(err, biddingerrors.ErrNoBids, "get winning bid for auction %d", auctionID)
	}
	return bid, nil
}

func (r *GormRepo) GetBidsByAuction(ctx context.Context, auctionID int64) ([]model.Bid, error) {
	bids := make([]model.Bid, 0)
	err := r.db.WithContext(ctx).
		Where("product_id = ?", auctionID).
		Order("amount DESC, created_at ASC, id ASC").
		Find(&bids).Error
	if err != nil {
		return nil, fmt.Errorf("list bids for auction %d: %w", auctionID, err)
	}
	return bids, nil
}

func (r *GormRepo) GetBidsByUser(ctx context.Context, userID int64) ([]model.Bid, error) {
	bids := make([]model.Bid, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&bids).Error
	if err != nil {
		return nil, fmt.Errorf("list bids for user %d: %w", userID, err)
	}
	return bids, nil
}

func (r *GormRepo) DemoteBids(ctx context.Context, auctionID, exceptBidID int64) error {
	err := r.db.WithContext(ctx).Model(&model.Bid{}).
		Where("product_id = ? AND id <> ? AND is_winning = ?", auctionID, exceptBidID, true).
		Update("is_winning", false).Error
	if err != nil {
		return fmt.Errorf("demote bids for auction %d: %w", auctionID, err)
	}
	return nil
}

func (r *GormRepo) MarkWinningBid(ctx context.Context, bidID int64) error {
	res := r.db.WithContext(ctx).Model(&model.Bid{}).Where("id = ?", bidID).Update("is_winning", true)
	if res.Error != nil {
		return fmt.Errorf("mark winning bid %d: %w", bidID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("mark winning bid %d: %w", bidID, biddingerrors.ErrBidNotFound)
	}
	return nil
}

// CreateOrder inserts the order and its items in one statement batch
func (r *GormRepo) CreateOrder(ctx context.Context, order *model.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("create order %s: %w", order.OrderNumber, err)
	}
	return nil
}

func (r *GormRepo) ordersWithProduct(ctx context.Context, productID int64) *gorm.DB {
	items := r.db.WithContext(ctx).Model(&model.OrderItem{}).Select("order_id").Where("product_id = ?", productID)
	return r.db.WithContext(ctx).
		Preload("Items").
		Where("order_type = ? AND id IN (?)", model.OrderTypeAuction, items).
		Order("id")
}

func (r *GormRepo) FindPendingAuctionOrder(ctx context.Context, bidderID, productID int64) (model.Order, error) {
	var order model.Order
	err := r.ordersWithProduct(ctx, productID).
		Where("user_id = ? AND payment_status = ?", bidderID, model.PaymentStatusPendingPayment).
		First(&order).Error
	if err != nil {
		return model.Order{}, notFound(err, biddingerrors.ErrOrderNotFound, "find pending order for user %d and product %d", bidderID, productID)
	}
	return order, nil
}

func (r *GormRepo) GetAuctionOrdersByProduct(ctx context.Context, productID int64) ([]model.Order, error) {
	orders := make([]model.Order, 0)
	if err := r.ordersWithProduct(ctx, productID).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders for product %d: %w", productID, err)
	}
	return orders, nil
}
