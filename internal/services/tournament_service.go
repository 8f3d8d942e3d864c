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

// TournamentService handles tournaments, registration and bracket reads
type TournamentService struct {
	db    *gorm.DB
	store cache.Store
}

// NewTournamentService creates a new TournamentService
func NewTournamentService(db *gorm.DB, store cache.Store) *TournamentService {
	return &TournamentService{db: db, store: store}
}

// TournamentFilters narrows the tournament listing
type TournamentFilters struct {
	Status         string
	ArenaID        *uint
	TournamentType string
}

// GetTournaments returns tournaments matching the filters, latest start first
func (s *TournamentService) GetTournaments(ctx context.Context, filters TournamentFilters, limit, offset int) ([]models.Tournament, error) {
	if limit <= 0 {
		limit = 20
	}

	query := s.db.WithContext(ctx).Model(&models.Tournament{}).Preload("Arena")
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.ArenaID != nil {
		query = query.Where("arena_id = ?", *filters.ArenaID)
	}
	if filters.TournamentType != "" {
		query = query.Where("tournament_type = ?", filters.TournamentType)
	}

	var tournaments []models.Tournament
	err := query.Order("start_date DESC").Limit(limit).Offset(offset).Find(&tournaments).Error
	if err != nil {
		return nil, err
	}
	return tournaments, nil
}

// GetTournamentByID returns one tournament, served cache-aside
func (s *TournamentService) GetTournamentByID(ctx context.Context, tournamentID uint) (*models.Tournament, error) {
	var tournament models.Tournament
	if cache.GetJSON(ctx, s.store, cache.TournamentKey(tournamentID), &tournament) {
		return &tournament, nil
	}

	err := s.db.WithContext(ctx).Preload("Arena").Preload("Organizer").First(&tournament, tournamentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("tournament: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	cache.SetJSON(ctx, s.store, cache.TournamentKey(tournamentID), &tournament, cache.TTLMedium)
	return &tournament, nil
}

// CreateTournament creates an upcoming tournament
func (s *TournamentService) CreateTournament(ctx context.Context, tournament *models.Tournament) error {
	if tournament.MaxParticipants <= 0 {
		tournament.MaxParticipants = 16
	}
	tournament.Status = models.TournamentStatusUpcoming
	tournament.CurrentParticipants = 0

	return s.db.WithContext(ctx).Create(tournament).Error
}

// RegisterParticipant adds a user to a tournament. Capacity and duplicate
// checks run with the tournament row locked so the counter stays accurate.
func (s *TournamentService) RegisterParticipant(ctx context.Context, tournamentID, userID uint) (*models.TournamentParticipant, error) {
	var registration models.TournamentParticipant

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tournament models.Tournament
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&tournament, tournamentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("tournament: %w", ErrNotFound)
		}
		if err != nil {
			return err
		}

		if tournament.CurrentParticipants >= tournament.MaxParticipants {
			return ErrTournamentFull
		}

		var existing models.TournamentParticipant
		err = tx.Where("tournament_id = ? AND user_id = ?", tournamentID, userID).First(&existing).Error
		if err == nil {
			return ErrAlreadyRegistered
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		registration = models.TournamentParticipant{
			TournamentID:     tournamentID,
			UserID:           userID,
			RegistrationDate: time.Now(),
		}
		if err := tx.Create(&registration).Error; err != nil {
			return fmt.Errorf("failed to register participant: %w", err)
		}

		return tx.Model(&tournament).
			UpdateColumn("current_participants", gorm.Expr("current_participants + 1")).Error
	})

	if err != nil {
		return nil, err
	}

	s.store.Invalidate(ctx, cache.TournamentKey(tournamentID))
	return &registration, nil
}

// UnregisterParticipant removes a registration while the tournament is
// still upcoming
func (s *TournamentService) UnregisterParticipant(ctx context.Context, tournamentID, userID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tournament models.Tournament
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&tournament, tournamentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("tournament: %w", ErrNotFound)
		}
		if err != nil {
			return err
		}

		if tournament.Status != models.TournamentStatusUpcoming {
			return ErrTournamentStarted
		}

		result := tx.Where("tournament_id = ? AND user_id = ?", tournamentID, userID).
			Delete(&models.TournamentParticipant{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("registration: %w", ErrNotFound)
		}

		return tx.Model(&tournament).
			UpdateColumn("current_participants", gorm.Expr("current_participants - 1")).Error
	})

	if err != nil {
		return err
	}

	s.store.Invalidate(ctx, cache.TournamentKey(tournamentID))
	return nil
}

// GetTournamentParticipants lists registrations ordered by seed
func (s *TournamentService) GetTournamentParticipants(ctx context.Context, tournamentID uint) ([]models.TournamentParticipant, error) {
	var participants []models.TournamentParticipant
	err := s.db.WithContext(ctx).
		Where("tournament_id = ?", tournamentID).
		Preload("User").
		Order("seed ASC").
		Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

// GetTournamentBracket returns the opaque bracket blob, served cache-aside
func (s *TournamentService) GetTournamentBracket(ctx context.Context, tournamentID uint) (models.JSONB, error) {
	var bracket models.JSONB
	if cache.GetJSON(ctx, s.store, cache.BracketKey(tournamentID), &bracket) {
		return bracket, nil
	}

	var tournament models.Tournament
	err := s.db.WithContext(ctx).Select("id", "bracket_data").First(&tournament, tournamentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("tournament: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if tournament.BracketData != nil {
		cache.SetJSON(ctx, s.store, cache.BracketKey(tournamentID), tournament.BracketData, cache.TTLFast)
	}
	return tournament.BracketData, nil
}

// UpdateBracket replaces the bracket blob
func (s *TournamentService) UpdateBracket(ctx context.Context, tournamentID uint, bracket models.JSONB) error {
	result := s.db.WithContext(ctx).Model(&models.Tournament{}).
		Where("id = ?", tournamentID).
		Update("bracket_data", bracket)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("tournament: %w", ErrNotFound)
	}

	s.store.Invalidate(ctx, cache.BracketKey(tournamentID), cache.TournamentKey(tournamentID))
	return nil
}

// StartTournament transitions an upcoming tournament to active
func (s *TournamentService) StartTournament(ctx context.Context, tournamentID uint) (*models.Tournament, error) {
	return s.transition(ctx, tournamentID, models.TournamentStatusActive, func(t *models.Tournament) {
		now := time.Now()
		t.ActualStartDate = &now
	})
}

// CompleteTournament transitions an active tournament to completed
func (s *TournamentService) CompleteTournament(ctx context.Context, tournamentID uint, winnerID *uint) (*models.Tournament, error) {
	return s.transition(ctx, tournamentID, models.TournamentStatusCompleted, func(t *models.Tournament) {
		now := time.Now()
		t.ActualEndDate = &now
		if winnerID != nil {
			t.WinnerID = winnerID
		}
	})
}

func (s *TournamentService) transition(ctx context.Context, tournamentID uint, to models.TournamentStatus, apply func(*models.Tournament)) (*models.Tournament, error) {
	var tournament models.Tournament

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&tournament, tournamentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("tournament: %w", ErrNotFound)
		}
		if err != nil {
			return err
		}

		if !tournament.Status.CanTransition(to) {
			return ErrInvalidTransition
		}

		tournament.Status = to
		apply(&tournament)
		return tx.Save(&tournament).Error
	})

	if err != nil {
		return nil, err
	}

	s.store.Invalidate(ctx, cache.TournamentKey(tournamentID))
	return &tournament, nil
}
