package models

import "time"

// CartSnapshot is the server copy of a shopper's cart, used when no redis
// is configured. State holds the cart JSON as the client sent it.
type CartSnapshot struct {
	UserID    uint   `gorm:"primaryKey;autoIncrement:false"`
	State     []byte `gorm:"not null"`
	UpdatedAt time.Time
}
