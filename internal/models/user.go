package models

import (
	"time"
)

// User represents a platform user
type User struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Username          string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email             *string   `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	WalletAddress     string    `gorm:"size:255;uniqueIndex;not null" json:"wallet_address"`
	AvatarURL         *string   `gorm:"size:500" json:"avatar_url,omitempty"`
	Bio               *string   `gorm:"type:text" json:"bio,omitempty"`
	Country           *string   `gorm:"size:100" json:"country,omitempty"`
	PreferredLanguage *string   `gorm:"size:10" json:"preferred_language,omitempty"`
	ReputationScore   int       `gorm:"default:0" json:"reputation_score"`
	IsActive          bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
