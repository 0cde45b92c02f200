package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductType distinguishes fixed-price listings from auctions
type ProductType string

const (
	ProductTypeFixedPrice ProductType = "fixed_price"
	ProductTypeAuction    ProductType = "auction"
)

// User represents a buyer or bidder in the marketplace
type User struct {
	ID          int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	FirstName   string `json:"first_name" gorm:"type:varchar(255);not null"`
	LastName    string `json:"last_name" gorm:"type:varchar(255);not null"`
	Email       string `json:"email" gorm:"type:varchar(255);not null"`
	PhoneNumber string `json:"phone_number" gorm:"type:varchar(64)"`
}

// FullName returns the display name used on orders and notifications
func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Product represents a marketplace listing. Auctions are products with Type == ProductTypeAuction.
type Product struct {
	ID                int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	Name              string          `json:"name" gorm:"type:varchar(255);not null"`
	Description       string          `json:"description" gorm:"type:text"`
	Images            []string        `json:"images" gorm:"serializer:json"`
	Type              ProductType     `json:"type" gorm:"type:varchar(32);not null;index"`
	StartingPrice     decimal.Decimal `json:"starting_price" gorm:"type:numeric(10,2)"`
	CurrentHighestBid decimal.Decimal `json:"current_highest_bid" gorm:"type:numeric(10,2)"`
	AuctionEndTime    time.Time       `json:"auction_end_time" gorm:"index;<-:create"`
	IsActive          bool            `json:"is_active" gorm:"not null;index"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Auction is the product view the bidding core works with
type Auction = Product

// IsAuction reports whether the product is sold by auction
func (p Product) IsAuction() bool {
	return p.Type == ProductTypeAuction
}

// Money columns are numeric(10,2): two decimal places, below MaxAmount
const AmountScale = 2

// MaxAmount is the first amount a numeric(10,2) column cannot hold
var MaxAmount = decimal.New(1, 8)

// ValidAmount reports whether amount fits the money columns without rounding
func ValidAmount(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(AmountScale)) && amount.LessThan(MaxAmount)
}

// MinimumBid returns the amount a new bid has to exceed
func (p Product) MinimumBid() decimal.Decimal {
	return decimal.Max(p.CurrentHighestBid, p.StartingPrice)
}

// Bid represents a user's bid on an auction
type Bid struct {
	ID        int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	AuctionID int64           `json:"auction_id" gorm:"column:product_id;not null;index"`
	BidderID  int64           `json:"bidder_id" gorm:"column:user_id;not null;index"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:numeric(10,2);not null"`
	IsWinning bool            `json:"is_winning" gorm:"not null;default:false;index"`
	Note      string          `json:"note,omitempty" gorm:"type:text"`
	CreatedAt time.Time       `json:"created_at"`
}

// OrderType records which sales flow produced an order
type OrderType string

const (
	OrderTypeFixedPrice OrderType = "fixed_price"
	OrderTypeAuction    OrderType = "auction"
)

// OrderStatus is the fulfilment state of an order. Only pending is produced here.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus is the payment state of an order
type PaymentStatus string

const (
	PaymentStatusPendingPayment PaymentStatus = "pending_payment"
	PaymentStatusPaid           PaymentStatus = "paid"
	PaymentStatusFailed         PaymentStatus = "failed"
)

// AuctionOrderPrefix marks order numbers created by auction resolution
const AuctionOrderPrefix = "AUCTION"

// Order is a payable order created for a buyer
type Order struct {
	ID             int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderNumber    string          `json:"order_number" gorm:"type:varchar(128);not null;uniqueIndex"`
	BidderID       int64           `json:"user_id" gorm:"column:user_id;not null;index"`
	OrderType      OrderType       `json:"order_type" gorm:"type:varchar(32);not null"`
	Status         OrderStatus     `json:"status" gorm:"type:varchar(32);not null"`
	PaymentStatus  PaymentStatus   `json:"payment_status" gorm:"type:varchar(32);not null"`
	Subtotal       decimal.Decimal `json:"subtotal" gorm:"type:numeric(10,2);not null"`
	TaxAmount      decimal.Decimal `json:"tax_amount" gorm:"type:numeric(10,2);not null"`
	ShippingAmount decimal.Decimal `json:"shipping_amount" gorm:"type:numeric(10,2);not null"`
	TotalAmount    decimal.Decimal `json:"total_amount" gorm:"type:numeric(10,2);not null"`
	FirstName      string          `json:"first_name" gorm:"type:varchar(255)"`
	LastName       string          `json:"last_name" gorm:"type:varchar(255)"`
	Email          string          `json:"email" gorm:"type:varchar(255)"`
	PhoneNumber    string          `json:"phone_number" gorm:"type:varchar(64)"`
	Note           string          `json:"note,omitempty" gorm:"type:text"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// ProductSnapshot freezes the auction as it looked when the order was created
type ProductSnapshot struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Images      []string        `json:"images"`
}

// OrderItem is a single line of an order
type OrderItem struct {
	ID          int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID     int64           `json:"order_id" gorm:"not null;index"`
	ProductID   int64           `json:"product_id" gorm:"not null;index"`
	ProductName string          `json:"product_name" gorm:"type:varchar(255)"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:numeric(10,2);not null"`
	TotalPrice  decimal.Decimal `json:"total_price" gorm:"type:numeric(10,2);not null"`
	ProductData ProductSnapshot `json:"product_data" gorm:"serializer:json"`
	CreatedAt   time.Time       `json:"created_at"`
}
