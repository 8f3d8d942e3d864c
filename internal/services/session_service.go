package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"giperarena/internal/cache"
	"giperarena/internal/models"
)

// SessionService handles game session lifecycle and history
type SessionService struct {
	db    *gorm.DB
	store cache.Store
}

// NewSessionService creates a new SessionService
func NewSessionService(db *gorm.DB, store cache.Store) *SessionService {
	return &SessionService{db: db, store: store}
}

// SessionFilters narrows the session listing
type SessionFilters struct {
	ArenaID  *uint
	PlayerID *uint
	Status   string
}

// GetSessions returns sessions matching the filters, newest first
func (s *SessionService) GetSessions(ctx context.Context, filters SessionFilters, limit, offset int) ([]models.GameSession, error) {
	if limit <= 0 {
		limit = 20
	}

	query := s.db.WithContext(ctx).Model(&models.GameSession{}).Preload("Arena").Preload("Player")
	if filters.ArenaID != nil {
		query = query.Where("arena_id = ?", *filters.ArenaID)
	}
	if filters.PlayerID != nil {
		query = query.Where("player_id = ?", *filters.PlayerID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	var sessions []models.GameSession
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetSessionByID returns one session, served cache-aside
func (s *SessionService) GetSessionByID(ctx context.Context, sessionID uint) (*models.GameSession, error) {
	var session models.GameSession
	if cache.GetJSON(ctx, s.store, cache.SessionKey(sessionID), &session) {
		return &session, nil
	}

	err := s.db.WithContext(ctx).Preload("Arena").Preload("Player").First(&session, sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("session: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	cache.SetJSON(ctx, s.store, cache.SessionKey(sessionID), &session, cache.TTLFast)
	return &session, nil
}

// CreateSession creates a waiting session at an arena
func (s *SessionService) CreateSession(ctx context.Context, arenaID, playerID uint) (*models.GameSession, error) {
	var arena models.Arena
	err := s.db.WithContext(ctx).First(&arena, arenaID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("arena: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	session := models.GameSession{
		ArenaID:  arenaID,
		PlayerID: playerID,
		Status:   models.SessionStatusWaiting,
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &session, nil
}

// StartSession transitions a waiting session to active
func (s *SessionService) StartSession(ctx context.Context, sessionID uint) (*models.GameSession, error) {
	return s.transition(ctx, sessionID, models.SessionStatusActive, func(session *models.GameSession) {
		now := time.Now()
		session.StartedAt = &now
	})
}

// EndSession completes an active session, recording score, replay and
// duration, and bumps the arena's session counter
func (s *SessionService) EndSession(ctx context.Context, sessionID uint, score *int, replayURL *string) (*models.GameSession, error) {
	session, err := s.transition(ctx, sessionID, models.SessionStatusCompleted, func(session *models.GameSession) {
		now := time.Now()
		session.EndedAt = &now
		if session.StartedAt != nil {
			duration := int(now.Sub(*session.StartedAt).Seconds())
			session.DurationSeconds = &duration
		}
		if score != nil {
			session.Score = score
		}
		if replayURL != nil {
			session.ReplayURL = replayURL
		}
	})
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(&models.Arena{}).
		Where("id = ?", session.ArenaID).
		UpdateColumn("total_sessions", gorm.Expr("total_sessions + 1")).Error
	if err != nil {
		return nil, err
	}
	s.store.Invalidate(ctx, cache.ArenaKey(session.ArenaID), cache.ArenaStatsKey(session.ArenaID))

	return session, nil
}

// CancelSession cancels a waiting or active session
func (s *SessionService) CancelSession(ctx context.Context, sessionID uint) (*models.GameSession, error) {
	return s.transition(ctx, sessionID, models.SessionStatusCancelled, func(session *models.GameSession) {
		now := time.Now()
		session.EndedAt = &now
	})
}

// GetUserGameHistory returns a player's finished sessions, cached
func (s *SessionService) GetUserGameHistory(ctx context.Context, userID uint, limit, offset int) ([]models.GameSession, error) {
	if limit <= 0 {
		limit = 20
	}

	key := fmt.Sprintf("user:history:%d:%d:%d", userID, limit, offset)

	var sessions []models.GameSession
	if cache.GetJSON(ctx, s.store, key, &sessions) {
		return sessions, nil
	}

	err := s.db.WithContext(ctx).
		Where("player_id = ? AND status IN ?", userID,
			[]models.SessionStatus{models.SessionStatusCompleted, models.SessionStatusCancelled}).
		Preload("Arena").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	cache.SetJSON(ctx, s.store, key, sessions, cache.TTLMedium)
	return sessions, nil
}

func (s *SessionService) transition(ctx context.Context, sessionID uint, to models.SessionStatus, apply func(*models.GameSession)) (*models.GameSession, error) {
	var session models.GameSession

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&session, sessionID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("session: %w", ErrNotFound)
		}
		if err != nil {
			return err
		}

		if !session.Status.CanTransition(to) {
			return ErrInvalidTransition
		}

		session.Status = to
		apply(&session)
		return tx.Save(&session).Error
	})

	if err != nil {
		return nil, err
	}

	s.store.Invalidate(ctx, cache.SessionKey(sessionID))
	return &session, nil
}
