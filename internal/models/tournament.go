package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TournamentStatus is the lifecycle state of a tournament
type TournamentStatus string

const (
	TournamentStatusUpcoming  TournamentStatus = "upcoming"
	TournamentStatusActive    TournamentStatus = "active"
	TournamentStatusCompleted TournamentStatus = "completed"
	TournamentStatusCancelled TournamentStatus = "cancelled"
)

// CanTransition reports whether the tournament status change is allowed.
// upcoming -> {active, cancelled}; active -> {completed, cancelled}.
func (s TournamentStatus) CanTransition(to TournamentStatus) bool {
	switch s {
	case TournamentStatusUpcoming:
		return to == TournamentStatusActive || to == TournamentStatusCancelled
	case TournamentStatusActive:
		return to == TournamentStatusCompleted || to == TournamentStatusCancelled
	}
	return false
}

// Tournament represents a competitive event hosted at an arena.
// BracketData is an opaque JSON blob maintained by the bracket editor.
type Tournament struct {
	ID                  uint             `gorm:"primaryKey" json:"id"`
	Name                string           `gorm:"size:255;not null" json:"name"`
	Description         string           `gorm:"type:text" json:"description"`
	ArenaID             *uint            `gorm:"index" json:"arena_id,omitempty"`
	Arena               *Arena           `gorm:"foreignKey:ArenaID" json:"arena,omitempty"`
	OrganizerID         uint             `gorm:"not null;index" json:"organizer_id"`
	Organizer           *User            `gorm:"foreignKey:OrganizerID" json:"organizer,omitempty"`
	TournamentType      string           `gorm:"size:50;not null" json:"tournament_type"` // single_elimination, round_robin
	Status              TournamentStatus `gorm:"size:20;not null;default:upcoming;index" json:"status"`
	StartDate           time.Time        `gorm:"not null;index" json:"start_date"`
	EndDate             *time.Time       `json:"end_date,omitempty"`
	ActualStartDate     *time.Time       `json:"actual_start_date,omitempty"`
	ActualEndDate       *time.Time       `json:"actual_end_date,omitempty"`
	MaxParticipants     int              `gorm:"not null;default:16" json:"max_participants"`
	CurrentParticipants int              `gorm:"not null;default:0" json:"current_participants"`
	PrizePool           decimal.Decimal  `gorm:"type:decimal(15,2);not null;default:0" json:"prize_pool"`
	EntryFee            decimal.Decimal  `gorm:"type:decimal(15,2);not null;default:0" json:"entry_fee"`
	WinnerID            *uint            `json:"winner_id,omitempty"`
	BracketData         JSONB            `gorm:"type:jsonb" json:"bracket_data,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// TableName specifies the table name for Tournament model
func (Tournament) TableName() string {
	return "tournaments"
}

// TournamentParticipant is a user's registration in one tournament
type TournamentParticipant struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	TournamentID     uint       `gorm:"not null;index;uniqueIndex:idx_tournament_user" json:"tournament_id"`
	UserID           uint       `gorm:"not null;index;uniqueIndex:idx_tournament_user" json:"user_id"`
	User             *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	RegistrationDate time.Time  `gorm:"not null" json:"registration_date"`
	Seed             *int       `json:"seed,omitempty"`
	CurrentRound     int        `gorm:"default:0" json:"current_round"`
	EliminatedAt     *time.Time `json:"eliminated_at,omitempty"`
}

// TableName specifies the table name for TournamentParticipant model
func (TournamentParticipant) TableName() string {
	return "tournament_participants"
}
