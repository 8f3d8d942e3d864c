package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketStatus is the lifecycle state of a betting market
type MarketStatus string

const (
	MarketStatusOpen   MarketStatus = "open"
	MarketStatusClosed MarketStatus = "closed"
)

// CanTransition reports whether the market status change is allowed.
// The only legal transition is open -> closed.
func (s MarketStatus) CanTransition(to MarketStatus) bool {
	return s == MarketStatusOpen && to == MarketStatusClosed
}

// BetOutcome is one of the three possible market outcomes
type BetOutcome string

const (
	OutcomeA BetOutcome = "A"
	OutcomeB BetOutcome = "B"
	OutcomeC BetOutcome = "C"
)

// Valid reports whether the outcome is one of the closed set
func (o BetOutcome) Valid() bool {
	return o == OutcomeA || o == OutcomeB || o == OutcomeC
}

// BetStatus is the lifecycle state of a bet
type BetStatus string

const (
	BetStatusPending   BetStatus = "pending"
	BetStatusWon       BetStatus = "won"
	BetStatusLost      BetStatus = "lost"
	BetStatusCancelled BetStatus = "cancelled"
)

// CanTransition reports whether the bet status change is allowed.
// pending -> {won, lost, cancelled}; settled bets are terminal.
func (s BetStatus) CanTransition(to BetStatus) bool {
	if s != BetStatusPending {
		return false
	}
	return to == BetStatusWon || to == BetStatusLost || to == BetStatusCancelled
}

// BettingMarket is a pari-mutuel style market with three fixed outcomes.
// TotalVolume tracks the sum of non-cancelled bet amounts.
type BettingMarket struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	EventType   string          `gorm:"size:50;not null;index" json:"event_type"` // tournament, session
	EventID     *uint           `gorm:"index" json:"event_id,omitempty"`
	MarketType  string          `gorm:"size:50;not null" json:"market_type"`
	Description string          `gorm:"type:text" json:"description"`
	Status      MarketStatus    `gorm:"size:20;not null;default:open;index" json:"status"`
	ClosingDate time.Time       `gorm:"not null" json:"closing_date"`
	OutcomeA    string          `gorm:"size:255;not null" json:"outcome_a"`
	OutcomeB    string          `gorm:"size:255;not null" json:"outcome_b"`
	OutcomeC    *string         `gorm:"size:255" json:"outcome_c,omitempty"`
	OddsA       decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"odds_a"`
	OddsB       decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"odds_b"`
	OddsC       decimal.Decimal `gorm:"type:decimal(8,2);not null;default:0" json:"odds_c"`
	TotalVolume decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"total_volume"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for BettingMarket model
func (BettingMarket) TableName() string {
	return "betting_markets"
}

// Odds returns the market odds for the given outcome
func (m *BettingMarket) Odds(outcome BetOutcome) decimal.Decimal {
	switch outcome {
	case OutcomeA:
		return m.OddsA
	case OutcomeB:
		return m.OddsB
	default:
		return m.OddsC
	}
}

// Bet is a wager against one market outcome. Odds are copied from the
// market at placement time, locking in the price.
type Bet struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	UserID          uint             `gorm:"not null;index" json:"user_id"`
	User            *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	MarketID        uint             `gorm:"not null;index" json:"market_id"`
	Market          *BettingMarket   `gorm:"foreignKey:MarketID" json:"market,omitempty"`
	Outcome         BetOutcome       `gorm:"size:5;not null" json:"outcome"`
	Amount          decimal.Decimal  `gorm:"type:decimal(15,2);not null" json:"amount"`
	Odds            decimal.Decimal  `gorm:"type:decimal(8,2);not null" json:"odds"`
	PotentialPayout decimal.Decimal  `gorm:"type:decimal(15,2);not null" json:"potential_payout"`
	Status          BetStatus        `gorm:"size:20;not null;default:pending;index" json:"status"`
	Payout          *decimal.Decimal `gorm:"type:decimal(15,2)" json:"payout,omitempty"`
	CreatedAt       time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// TableName specifies the table name for Bet model
func (Bet) TableName() string {
	return "bets"
}

// BettingStats is the aggregate betting projection for one user
type BettingStats struct {
	TotalWins     int64           `json:"total_wins"`
	TotalLosses   int64           `json:"total_losses"`
	PendingBets   int64           `json:"pending_bets"`
	TotalWagered  decimal.Decimal `json:"total_wagered"`
	TotalWinnings decimal.Decimal `json:"total_winnings"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	WinRate       float64         `json:"win_rate"`
}
