package models

import (
	"time"
)

// SessionStatus is the lifecycle state of a game session
type SessionStatus string

const (
	SessionStatusWaiting   SessionStatus = "waiting"
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// CanTransition reports whether the session status change is allowed.
// waiting -> {active, cancelled}; active -> {completed, cancelled}.
func (s SessionStatus) CanTransition(to SessionStatus) bool {
	switch s {
	case SessionStatusWaiting:
		return to == SessionStatusActive || to == SessionStatusCancelled
	case SessionStatusActive:
		return to == SessionStatusCompleted || to == SessionStatusCancelled
	}
	return false
}

// GameSession is one play session by a player at an arena
type GameSession struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	ArenaID         uint          `gorm:"not null;index" json:"arena_id"`
	Arena           *Arena        `gorm:"foreignKey:ArenaID" json:"arena,omitempty"`
	PlayerID        uint          `gorm:"not null;index" json:"player_id"`
	Player          *User         `gorm:"foreignKey:PlayerID" json:"player,omitempty"`
	Status          SessionStatus `gorm:"size:20;not null;default:waiting;index" json:"status"`
	Score           *int          `json:"score,omitempty"`
	DurationSeconds *int          `json:"duration_seconds,omitempty"`
	ReplayURL       *string       `gorm:"size:500" json:"replay_url,omitempty"`
	StartedAt       *time.Time    `json:"started_at,omitempty"`
	EndedAt         *time.Time    `json:"ended_at,omitempty"`
	CreatedAt       time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// TableName specifies the table name for GameSession model
func (GameSession) TableName() string {
	return "game_sessions"
}
