package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ArenaStatus is the lifecycle state of an arena listing
type ArenaStatus string

const (
	ArenaStatusPending  ArenaStatus = "pending"
	ArenaStatusActive   ArenaStatus = "active"
	ArenaStatusInactive ArenaStatus = "inactive"
)

// Arena is a physical gaming venue listed on the marketplace
type Arena struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Name            string          `gorm:"size:255;not null;index" json:"name"`
	Description     string          `gorm:"type:text" json:"description"`
	GameType        string          `gorm:"size:50;not null;index" json:"game_type"`
	LocationAddress string          `gorm:"size:500" json:"location_address"`
	Latitude        *float64        `json:"latitude,omitempty"`
	Longitude       *float64        `json:"longitude,omitempty"`
	Country         string          `gorm:"size:100;index" json:"country"`
	City            string          `gorm:"size:100;index" json:"city"`
	OperatorID      uint            `gorm:"not null;index" json:"operator_id"`
	Operator        *User           `gorm:"foreignKey:OperatorID" json:"operator,omitempty"`
	Status          ArenaStatus     `gorm:"size:20;not null;default:pending;index" json:"status"`
	PricingModel    string          `gorm:"size:20;not null;default:hourly" json:"pricing_model"`
	HourlyRate      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"hourly_rate"`
	TotalSessions   int             `gorm:"not null;default:0" json:"total_sessions"`
	Rating          float64         `gorm:"not null;default:0" json:"rating"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Arena model
func (Arena) TableName() string {
	return "arenas"
}

// ArenaStats is the aggregate activity projection for one arena
type ArenaStats struct {
	TotalSessions     int     `json:"total_sessions"`
	Rating            float64 `json:"rating"`
	CompletedSessions int64   `json:"completed_sessions"`
	ActiveSessions    int64   `json:"active_sessions"`
	AverageScore      float64 `json:"average_score"`
	TournamentsHosted int64   `json:"tournaments_hosted"`
}
