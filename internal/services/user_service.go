package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"giperarena/internal/cache"
	"giperarena/internal/models"
)

// userUpdateAllowed are the profile fields a user may change themselves
var userUpdateAllowed = map[string]bool{
	"username":           true,
	"avatar_url":         true,
	"bio":                true,
	"country":            true,
	"preferred_language": true,
}

// UserService handles user profiles, stats and search
type UserService struct {
	db    *gorm.DB
	store cache.Store
}

// NewUserService creates a new UserService
func NewUserService(db *gorm.DB, store cache.Store) *UserService {
	return &UserService{db: db, store: store}
}

// GetUserByID returns one active user, served cache-aside
func (s *UserService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if cache.GetJSON(ctx, s.store, cache.UserKey(userID), &user) {
		return &user, nil
	}

	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", userID, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	cache.SetJSON(ctx, s.store, cache.UserKey(userID), &user, cache.TTLSlow)
	return &user, nil
}

// UpdateUser applies allow-listed profile updates
func (s *UserService) UpdateUser(ctx context.Context, userID uint, updates map[string]interface{}) (*models.User, error) {
	filtered := make(map[string]interface{})
	for key, value := range updates {
		if userUpdateAllowed[key] {
			filtered[key] = value
		}
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("no updatable fields provided")
	}

	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(filtered)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("user: %w", ErrNotFound)
	}

	s.store.Invalidate(ctx, cache.UserKey(userID))

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UserStats is the aggregate activity projection for one user
type UserStats struct {
	TotalGames              int64          `json:"total_games"`
	TournamentsParticipated int64          `json:"tournaments_participated"`
	TotalScore              int64          `json:"total_score"`
	AverageScore            float64        `json:"average_score"`
	Wallet                  *models.Wallet `json:"wallet,omitempty"`
}

// GetUserStats returns the aggregate activity projection, cached
func (s *UserService) GetUserStats(ctx context.Context, userID uint) (*UserStats, error) {
	var stats UserStats
	if cache.GetJSON(ctx, s.store, cache.UserStatsKey(userID), &stats) {
		return &stats, nil
	}

	var sessionRow struct {
		TotalGames   int64
		TotalScore   int64
		AverageScore float64
	}
	err := s.db.WithContext(ctx).Model(&models.GameSession{}).
		Select(`COUNT(CASE WHEN status = 'completed' THEN 1 END) AS total_games,
			COALESCE(SUM(score), 0) AS total_score,
			COALESCE(AVG(score), 0) AS average_score`).
		Where("player_id = ?", userID).
		Scan(&sessionRow).Error
	if err != nil {
		return nil, err
	}

	var tournaments int64
	err = s.db.WithContext(ctx).Model(&models.TournamentParticipant{}).
		Where("user_id = ?", userID).
		Count(&tournaments).Error
	if err != nil {
		return nil, err
	}

	var wallet models.Wallet
	err = s.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	stats = UserStats{
		TotalGames:              sessionRow.TotalGames,
		TournamentsParticipated: tournaments,
		TotalScore:              sessionRow.TotalScore,
		AverageScore:            sessionRow.AverageScore,
	}
	if err == nil {
		stats.Wallet = &wallet
	}

	cache.SetJSON(ctx, s.store, cache.UserStatsKey(userID), &stats, cache.TTLMedium)
	return &stats, nil
}

// SearchUsers finds active users by username or email, best reputation first
func (s *UserService) SearchUsers(ctx context.Context, query string, limit, offset int) ([]models.User, error) {
	if limit <= 0 {
		limit = 20
	}

	pattern := "%" + query + "%"

	var users []models.User
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("username LIKE ? OR email LIKE ?", pattern, pattern).
		Order("reputation_score DESC").
		Limit(limit).Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// DeactivateUser soft-disables a user account
func (s *UserService) DeactivateUser(ctx context.Context, userID uint) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user: %w", ErrNotFound)
	}

	s.store.Invalidate(ctx, cache.UserKey(userID))
	return nil
}
