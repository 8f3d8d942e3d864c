package services

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"

	"giperarena/internal/models"
)

// AuthService handles authentication business logic
type AuthService struct {
	db *gorm.DB
}

// NewAuthService creates a new AuthService
func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// ProcessWalletLogin finds or creates a user by wallet address
func (s *AuthService) ProcessWalletLogin(ctx context.Context, walletAddress, username string) (*models.User, error) {
	var user models.User

	result := s.db.WithContext(ctx).Where("wallet_address = ?", walletAddress).First(&user)

	if result.Error == gorm.ErrRecordNotFound {
		// New user, create account
		if username == "" {
			suffix := walletAddress
			if len(suffix) > 8 {
				suffix = suffix[:8]
			}
			username = "player_" + suffix
		}

		user = models.User{
			Username:      username,
			WalletAddress: walletAddress,
			IsActive:      true,
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		log.Printf("New user created: wallet=%s (ID: %d)", walletAddress, user.ID)
	} else if result.Error != nil {
		return nil, fmt.Errorf("database error: %w", result.Error)
	} else if !user.IsActive {
		return nil, fmt.Errorf("user: %w", ErrNotFound)
	}

	return &user, nil
}
