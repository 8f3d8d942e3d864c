package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"giperarena/internal/cache"
	"giperarena/internal/models"
)

// ArenaService handles arena listings, search and stats
type ArenaService struct {
	db    *gorm.DB
	store cache.Store
}

// NewArenaService creates a new ArenaService
func NewArenaService(db *gorm.DB, store cache.Store) *ArenaService {
	return &ArenaService{db: db, store: store}
}

// ArenaFilters narrows the arena listing
type ArenaFilters struct {
	Status   string
	GameType string
	Country  string
	City     string
}

// GetArenas returns arenas matching the filters, newest first. Listing
// pages are cached per filter combination.
func (s *ArenaService) GetArenas(ctx context.Context, filters ArenaFilters, limit, offset int) ([]models.Arena, error) {
	if limit <= 0 {
		limit = 20
	}

	key := fmt.Sprintf("arenas:%s:%s:%s:%s:%d:%d",
		filters.Status, filters.GameType, filters.Country, filters.City, limit, offset)

	var arenas []models.Arena
	if cache.GetJSON(ctx, s.store, key, &arenas) {
		return arenas, nil
	}

	query := s.db.WithContext(ctx).Model(&models.Arena{})
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.GameType != "" {
		query = query.Where("game_type = ?", filters.GameType)
	}
	if filters.Country != "" {
		query = query.Where("country = ?", filters.Country)
	}
	if filters.City != "" {
		query = query.Where("city = ?", filters.City)
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&arenas).Error
	if err != nil {
		return nil, err
	}

	cache.SetJSON(ctx, s.store, key, arenas, cache.TTLSlow)
	return arenas, nil
}

// GetArenaByID returns one arena, served cache-aside
func (s *ArenaService) GetArenaByID(ctx context.Context, arenaID uint) (*models.Arena, error) {
	var arena models.Arena
	if cache.GetJSON(ctx, s.store, cache.ArenaKey(arenaID), &arena) {
		return &arena, nil
	}

	err := s.db.WithContext(ctx).First(&arena, arenaID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("arena: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	cache.SetJSON(ctx, s.store, cache.ArenaKey(arenaID), &arena, cache.TTLSlow)
	return &arena, nil
}

// CreateArena creates a new arena listing
func (s *ArenaService) CreateArena(ctx context.Context, arena *models.Arena) error {
	if arena.Status == "" {
		arena.Status = models.ArenaStatusPending
	}
	if arena.PricingModel == "" {
		arena.PricingModel = "hourly"
	}
	return s.db.WithContext(ctx).Create(arena).Error
}

// UpdateArena applies updates to an arena
func (s *ArenaService) UpdateArena(ctx context.Context, arenaID uint, updates map[string]interface{}) (*models.Arena, error) {
	result := s.db.WithContext(ctx).Model(&models.Arena{}).Where("id = ?", arenaID).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("arena: %w", ErrNotFound)
	}

	s.store.Invalidate(ctx, cache.ArenaKey(arenaID))

	var arena models.Arena
	if err := s.db.WithContext(ctx).First(&arena, arenaID).Error; err != nil {
		return nil, err
	}
	return &arena, nil
}

// DeleteArena removes an arena listing
func (s *ArenaService) DeleteArena(ctx context.Context, arenaID uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Arena{}, arenaID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("arena: %w", ErrNotFound)
	}

	s.store.Invalidate(ctx, cache.ArenaKey(arenaID))
	return nil
}

// SearchArenas finds arenas by name or description, best rated first
func (s *ArenaService) SearchArenas(ctx context.Context, query string, limit, offset int) ([]models.Arena, error) {
	if limit <= 0 {
		limit = 20
	}

	pattern := "%" + strings.ToLower(query) + "%"

	var arenas []models.Arena
	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Order("rating DESC").
		Limit(limit).Offset(offset).
		Find(&arenas).Error
	if err != nil {
		return nil, err
	}
	return arenas, nil
}

// GetArenaStats returns the aggregate activity projection, cached
func (s *ArenaService) GetArenaStats(ctx context.Context, arenaID uint) (*models.ArenaStats, error) {
	var stats models.ArenaStats
	if cache.GetJSON(ctx, s.store, cache.ArenaStatsKey(arenaID), &stats) {
		return &stats, nil
	}

	arena, err := s.GetArenaByID(ctx, arenaID)
	if err != nil {
		return nil, err
	}

	var sessionRow struct {
		CompletedSessions int64
		ActiveSessions    int64
		AverageScore      float64
	}
	err = s.db.WithContext(ctx).Model(&models.GameSession{}).
		Select(`COUNT(CASE WHEN status = 'completed' THEN 1 END) AS completed_sessions,
			COUNT(CASE WHEN status = 'active' THEN 1 END) AS active_sessions,
			COALESCE(AVG(score), 0) AS average_score`).
		Where("arena_id = ?", arenaID).
		Scan(&sessionRow).Error
	if err != nil {
		return nil, err
	}

	var tournamentsHosted int64
	err = s.db.WithContext(ctx).Model(&models.Tournament{}).
		Where("arena_id = ?", arenaID).
		Count(&tournamentsHosted).Error
	if err != nil {
		return nil, err
	}

	stats = models.ArenaStats{
		TotalSessions:     arena.TotalSessions,
		Rating:            arena.Rating,
		CompletedSessions: sessionRow.CompletedSessions,
		ActiveSessions:    sessionRow.ActiveSessions,
		AverageScore:      sessionRow.AverageScore,
		TournamentsHosted: tournamentsHosted,
	}

	cache.SetJSON(ctx, s.store, cache.ArenaStatsKey(arenaID), &stats, cache.TTLMedium)
	return &stats, nil
}
