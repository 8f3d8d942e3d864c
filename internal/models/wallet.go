package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenType identifies one of the two platform tokens
type TokenType string

const (
	TokenGAC TokenType = "GAC"
	TokenPAC TokenType = "PAC"
)

// Valid reports whether the token type is one of the closed set
func (t TokenType) Valid() bool {
	return t == TokenGAC || t == TokenPAC
}

// StakingTier is the denormalized tier label computed at stake time
type StakingTier string

const (
	TierBronze   StakingTier = "bronze"
	TierSilver   StakingTier = "silver"
	TierGold     StakingTier = "gold"
	TierPlatinum StakingTier = "platinum"
)

// TierForAmount computes the staking tier from the staked increment.
// Thresholds are fixed: >=100000 platinum, >=50000 gold, >=10000 silver.
func TierForAmount(amount decimal.Decimal) StakingTier {
	switch {
	case amount.GreaterThanOrEqual(decimal.NewFromInt(100000)):
		return TierPlatinum
	case amount.GreaterThanOrEqual(decimal.NewFromInt(50000)):
		return TierGold
	case amount.GreaterThanOrEqual(decimal.NewFromInt(10000)):
		return TierSilver
	default:
		return TierBronze
	}
}

// ValidStakingDuration reports whether durationDays is an allowed lock period
func ValidStakingDuration(durationDays int) bool {
	switch durationDays {
	case 30, 90, 180, 365:
		return true
	}
	return false
}

// Wallet holds a user's token balances and staking state.
// Invariant: StakedAmount == 0 <=> StakingTier == nil <=> StakeUnlockDate == nil.
type Wallet struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	User            *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	GACBalance      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"gac_balance"`
	PACBalance      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"pac_balance"`
	StakedAmount    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"staked_amount"`
	StakingTier     *StakingTier    `gorm:"size:20" json:"staking_tier,omitempty"`
	StakeUnlockDate *time.Time      `json:"stake_unlock_date,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Wallet model
func (Wallet) TableName() string {
	return "wallets"
}

// Balance returns the balance for the given token type
func (w *Wallet) Balance(token TokenType) decimal.Decimal {
	if token == TokenGAC {
		return w.GACBalance
	}
	return w.PACBalance
}

// SetBalance assigns the balance for the given token type
func (w *Wallet) SetBalance(token TokenType, amount decimal.Decimal) {
	if token == TokenGAC {
		w.GACBalance = amount
		return
	}
	w.PACBalance = amount
}

// StakingInfo is the read-only staking projection returned to clients
type StakingInfo struct {
	IsStaking     bool            `json:"is_staking"`
	StakedAmount  decimal.Decimal `json:"staked_amount"`
	StakingTier   *StakingTier    `json:"staking_tier"`
	UnlockDate    *time.Time      `json:"unlock_date"`
	DaysRemaining int             `json:"days_remaining"`
}
