package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"giperarena/internal/cache"
	"giperarena/internal/models"
)

// WalletService handles token balances, staking and the transaction ledger.
// Every mutation runs in a single database transaction with the wallet row
// locked, so concurrent operations on one wallet serialize at the store.
type WalletService struct {
	db    *gorm.DB
	store cache.Store
}

// NewWalletService creates a new WalletService
func NewWalletService(db *gorm.DB, store cache.Store) *WalletService {
	return &WalletService{db: db, store: store}
}

// GetWallet returns the user's wallet, creating an empty one on first read
func (s *WalletService) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if cache.GetJSON(ctx, s.store, cache.WalletKey(userID), &wallet) {
		return &wallet, nil
	}

	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		wallet = models.Wallet{
			UserID:       userID,
			GACBalance:   decimal.Zero,
			PACBalance:   decimal.Zero,
			StakedAmount: decimal.Zero,
		}
		if err := s.db.WithContext(ctx).Create(&wallet).Error; err != nil {
			return nil, fmt.Errorf("failed to create wallet: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	cache.SetJSON(ctx, s.store, cache.WalletKey(userID), &wallet, cache.TTLFast)
	return &wallet, nil
}

// GetTransactions returns the user's ledger history, newest first
func (s *WalletService) GetTransactions(ctx context.Context, userID uint, txType string, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}

	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if txType != "" {
		query = query.Where("type = ?", txType)
	}

	var transactions []models.Transaction
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&transactions).Error
	if err != nil {
		return nil, err
	}
	return transactions, nil
}

// Deposit credits amount to the matching balance and appends a completed
// ledger entry. Replaying the same transaction hash is a no-op: the
// original ledger entry is returned and nothing is credited again.
func (s *WalletService) Deposit(ctx context.Context, userID uint, amount decimal.Decimal, tokenType models.TokenType, transactionHash string) (*models.Transaction, error) {
	if !tokenType.Valid() {
		return nil, ErrInvalidTokenType
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("deposit amount must be positive")
	}

	var entry models.Transaction

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Replay guard: same (user, hash) returns the original entry
		err := tx.Where("user_id = ? AND transaction_hash = ? AND type = ?",
			userID, transactionHash, models.TxDeposit).First(&entry).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		wallet, err := lockOrCreateWallet(tx, userID)
		if err != nil {
			return err
		}

		wallet.SetBalance(tokenType, wallet.Balance(tokenType).Add(amount))
		if err := tx.Save(wallet).Error; err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}

		entry = models.Transaction{
			UserID:          userID,
			Type:            models.TxDeposit,
			Amount:          amount,
			TokenType:       tokenType,
			Status:          models.TxStatusCompleted,
			TransactionHash: &transactionHash,
		}
		return tx.Create(&entry).Error
	})

	if err != nil {
		return nil, err
	}

	s.store.Invalidate(ctx, cache.WalletKey(userID))
	return &entry, nil
}

// Withdraw debits amount and appends a pending ledger entry. The pending
// withdrawal is resolved by an external settlement process, not here.
func (s *WalletService) Withdraw(ctx context.Context, userID uint, amount decimal.Decimal, tokenType models.TokenType, recipientAddress string) (*models.Transaction, error) {
	if !tokenType.Valid() {
		return nil, ErrInvalidTokenType
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("withdrawal amount must be positive")
	}

	var entry models.Transaction

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wallet, err := lockWallet(tx, userID)
		if err != nil {
			return err
		}

		if wallet.Balance(tokenType).LessThan(amount) {
			return ErrInsufficientBalance
		}

		wallet.SetBalance(tokenType, wallet.Balance(tokenType).Sub(amount))
		if err := tx.Save(wallet).Error; err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}

		entry = models.Transaction{
			UserID:           userID,
			Type:             models.TxWithdrawal,
			Amount:           amount,
			TokenType:        tokenType,
			Status:           models.TxStatusPending,
			RecipientAddress: &recipientAddress,
		}
		return tx.Create(&entry).Error
	})

	if err != nil {
		return nil, err
	}

	s.store.Invalidate(ctx, cache.WalletKey(userID))
	return &entry, nil
}

// Stake moves amount from the PAC balance into the staked amount and locks
// it for durationDays. Tier and unlock date are computed from this
// increment alone; staking on top of an existing stake keeps adding to
// staked_amount while overwriting both.
func (s *WalletService) Stake(ctx context.Context, userID uint, amount decimal.Decimal, durationDays int) (*models.Transaction, error) {
	if !models.ValidStakingDuration(durationDays) {
		return nil, ErrInvalidDuration
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("stake amount must be positive")
	}

	var entry models.Transaction

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wallet, err := lockWallet(tx, userID)
		if err != nil {
			return err
		}

		if wallet.PACBalance.LessThan(amount) {
			return ErrInsufficientBalance
		}

		tier := models.TierForAmount(amount)
		unlockDate := time.Now().AddDate(0, 0, durationDays)

		wallet.PACBalance = wallet.PACBalance.Sub(amount)
		wallet.StakedAmount = wallet.StakedAmount.Add(amount)
		wallet.StakingTier = &tier
		wallet.StakeUnlockDate = &unlockDate
		if err := tx.Save(wallet).Error; err != nil {
			return fmt.Errorf("failed to update stake: %w", err)
		}

		entry = models.Transaction{
			UserID:    userID,
			Type:      models.TxStake,
			Amount:    amount,
			TokenType: models.TokenPAC,
			Status:    models.TxStatusCompleted,
		}
		return tx.Create(&entry).Error
	})

	if err != nil {
		return nil, err
	}

	s.store.Invalidate(ctx, cache.WalletKey(userID))
	return &entry, nil
}

// Unstake releases the staked amount plus rewards back to the PAC balance
// once the unlock date has passed. Rewards accrue at 10% APY over the
// wallet's age in days, measured from the wallet's creation date.
func (s *WalletService) Unstake(ctx context.Context, userID uint) (*models.Transaction, error) {
	var entry models.Transaction

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wallet, err := lockWallet(tx, userID)
		if err != nil {
			return err
		}

		if wallet.StakedAmount.LessThanOrEqual(decimal.Zero) {
			return ErrNoActiveStake
		}

		now := time.Now()
		if wallet.StakeUnlockDate != nil && now.Before(*wallet.StakeUnlockDate) {
			return ErrStakePeriodNotCompleted
		}

		ageDays := int64(math.Floor(now.Sub(wallet.CreatedAt).Hours() / 24))
		rewards := wallet.StakedAmount.
			Mul(decimal.NewFromFloat(0.10)).
			Mul(decimal.NewFromInt(ageDays)).
			Div(decimal.NewFromInt(365)).
			Round(2)
		released := wallet.StakedAmount.Add(rewards)

		wallet.PACBalance = wallet.PACBalance.Add(released)
		wallet.StakedAmount = decimal.Zero
		wallet.StakingTier = nil
		wallet.StakeUnlockDate = nil
		if err := tx.Model(wallet).Select("pac_balance", "staked_amount", "staking_tier", "stake_unlock_date").Updates(wallet).Error; err != nil {
			return fmt.Errorf("failed to release stake: %w", err)
		}

		entry = models.Transaction{
			UserID:    userID,
			Type:      models.TxUnstake,
			Amount:    released,
			TokenType: models.TokenPAC,
			Status:    models.TxStatusCompleted,
		}
		return tx.Create(&entry).Error
	})

	if err != nil {
		return nil, err
	}

	s.store.Invalidate(ctx, cache.WalletKey(userID))
	return &entry, nil
}

// GetStakingInfo returns the read-only staking projection
func (s *WalletService) GetStakingInfo(ctx context.Context, userID uint) (*models.StakingInfo, error) {
	wallet, err := s.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	if wallet.StakedAmount.LessThanOrEqual(decimal.Zero) {
		return &models.StakingInfo{
			IsStaking:    false,
			StakedAmount: decimal.Zero,
		}, nil
	}

	daysRemaining := 0
	if wallet.StakeUnlockDate != nil {
		remaining := time.Until(*wallet.StakeUnlockDate)
		if remaining > 0 {
			daysRemaining = int(math.Ceil(remaining.Hours() / 24))
		}
	}

	return &models.StakingInfo{
		IsStaking:     true,
		StakedAmount:  wallet.StakedAmount,
		StakingTier:   wallet.StakingTier,
		UnlockDate:    wallet.StakeUnlockDate,
		DaysRemaining: daysRemaining,
	}, nil
}

// lockWallet reads the wallet row FOR UPDATE inside tx
func lockWallet(tx *gorm.DB, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("wallet: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// lockOrCreateWallet is lockWallet with lazy creation for first deposits
func lockOrCreateWallet(tx *gorm.DB, userID uint) (*models.Wallet, error) {
	wallet, err := lockWallet(tx, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	created := models.Wallet{
		UserID:       userID,
		GACBalance:   decimal.Zero,
		PACBalance:   decimal.Zero,
		StakedAmount: decimal.Zero,
	}
	if err := tx.Create(&created).Error; err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	return &created, nil
}
