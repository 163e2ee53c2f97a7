package models

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Email           string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash    string     `gorm:"not null" json:"-"`
	FirstName       string     `gorm:"size:50;not null" json:"firstName"`
	LastName        string     `gorm:"size:50;not null" json:"lastName"`
	Phone           string     `gorm:"size:10" json:"phone"`
	Role            Role       `gorm:"type:VARCHAR(10);not null" json:"role"`
	IsActive        bool       `gorm:"not null" json:"isActive"`
	IsEmailVerified bool       `gorm:"not null" json:"isEmailVerified"`
	LastLogin       *time.Time `json:"lastLogin,omitempty"`

	EmailVerificationToken   string     `gorm:"size:64;index" json:"-"`
	EmailVerificationExpires *time.Time `json:"-"`
	PasswordResetToken       string     `gorm:"size:64;index" json:"-"`
	PasswordResetExpires     *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FullName is "First Last".
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
