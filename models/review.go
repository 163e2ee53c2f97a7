package models

import "time"

// Review is unique per (product, user) by an existence check at insert time,
// not by a constraint, so the rule lives with the review handlers.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"index;not null" json:"productId"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID" json:"-"`
	Rating    int       `gorm:"not null" json:"rating"`
	Title     string    `gorm:"size:100;not null" json:"title"`
	Comment   string    `gorm:"size:500;not null" json:"comment"`
	IsActive  bool      `gorm:"not null;index" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
