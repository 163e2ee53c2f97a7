package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ashish5180/vibe-bites/pricing"
)

type OrderStatus string
type PaymentStatus string
type PaymentMethod string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusReturned   OrderStatus = "returned"

	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"

	PaymentMethodCard       PaymentMethod = "card"
	PaymentMethodCOD        PaymentMethod = "cod"
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodNetBanking PaymentMethod = "netbanking"
)

type Order struct {
	ID              uint                `gorm:"primaryKey" json:"id"`
	OrderNumber     string              `gorm:"size:40;uniqueIndex;not null" json:"orderNumber"`
	UserID          uint                `gorm:"index;not null" json:"userId"`
	User            *User               `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	ShippingAddress ShippingAddress     `gorm:"embedded;embeddedPrefix:ship_" json:"shippingAddress"`
	PaymentMethod   PaymentMethod       `gorm:"type:VARCHAR(20);not null" json:"paymentMethod"`
	PaymentStatus   PaymentStatus       `gorm:"type:VARCHAR(20);not null;default:'pending'" json:"paymentStatus"`
	PaymentIntentID string              `gorm:"size:64;index" json:"paymentIntentId,omitempty"`
	Subtotal        decimal.Decimal     `gorm:"type:numeric(10,2);not null" json:"subtotal"`
	ShippingCost    decimal.Decimal     `gorm:"type:numeric(10,2);not null" json:"shippingCost"`
	Discount        decimal.Decimal     `gorm:"type:numeric(10,2);not null" json:"discount"`
	Total           decimal.Decimal     `gorm:"type:numeric(10,2);not null" json:"total"`
	CouponCode      string              `gorm:"size:20" json:"couponCode,omitempty"`
	Status          OrderStatus         `gorm:"type:VARCHAR(20);not null;default:'pending';index" json:"orderStatus"`
	StatusHistory   []OrderStatusChange `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"statusHistory"`
	ShippingDetails ShippingDetails     `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingDetails"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// OrderItem is the immutable snapshot of a purchased line.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"index;not null" json:"-"`
	ProductID uint            `gorm:"index;not null" json:"productId"`
	Name      string          `gorm:"not null" json:"name"`
	Size      string          `gorm:"size:20;not null" json:"size"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Image     string          `json:"image"`
	Category  string          `gorm:"size:20" json:"category"`
}

func (i OrderItem) PricingItem() pricing.Item {
	return pricing.Item{Category: i.Category, Price: i.Price, Quantity: i.Quantity}
}

type ShippingAddress struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Pincode   string `gorm:"size:6" json:"pincode"`
	Phone     string `gorm:"size:10" json:"phone"`
}

type ShippingDetails struct {
	TrackingNumber    string     `json:"trackingNumber,omitempty"`
	Carrier           string     `json:"carrier,omitempty"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
}

type OrderStatusChange struct {
	ID        uint        `gorm:"primaryKey" json:"-"`
	OrderID   uint        `gorm:"index;not null" json:"-"`
	Status    OrderStatus `gorm:"type:VARCHAR(20);not null" json:"status"`
	Note      string      `gorm:"size:500" json:"note,omitempty"`
	CreatedAt time.Time   `json:"timestamp"`
}
