package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"giperarena/internal/cache"
	"giperarena/internal/models"
)

// BetService handles betting market reads and the place/cancel operations.
// Settlement (won/lost) belongs to an external process; nothing here
// transitions a bet out of pending except cancellation.
type BetService struct {
	db    *gorm.DB
	store cache.Store
}

// NewBetService creates a new BetService
func NewBetService(db *gorm.DB, store cache.Store) *BetService {
	return &BetService{db: db, store: store}
}

// MarketFilters narrows the market listing
type MarketFilters struct {
	Status    string
	EventType string
	EventID   *uint
}

// GetBettingMarkets returns markets matching the filters, newest first
func (s *BetService) GetBettingMarkets(ctx context.Context, filters MarketFilters, limit, offset int) ([]models.BettingMarket, error) {
	if limit <= 0 {
		limit = 20
	}

	query := s.db.WithContext(ctx).Model(&models.BettingMarket{})
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.EventType != "" {
		query = query.Where("event_type = ?", filters.EventType)
	}
	if filters.EventID != nil {
		query = query.Where("event_id = ?", *filters.EventID)
	}

	var markets []models.BettingMarket
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&markets).Error
	if err != nil {
		return nil, err
	}
	return markets, nil
}

// GetBettingMarketByID returns one market, served cache-aside
func (s *BetService) GetBettingMarketByID(ctx context.Context, marketID uint) (*models.BettingMarket, error) {
	var market models.BettingMarket
	if cache.GetJSON(ctx, s.store, cache.MarketKey(marketID), &market) {
		return &market, nil
	}

	err := s.db.WithContext(ctx).First(&market, marketID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("market: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	cache.SetJSON(ctx, s.store, cache.MarketKey(marketID), &market, cache.TTLFast)
	return &market, nil
}

// PlaceBet debits the wallet, creates a pending bet at the market's current
// odds and adds the amount to the market volume, all in one transaction.
func (s *BetService) PlaceBet(ctx context.Context, userID, marketID uint, outcome models.BetOutcome, amount decimal.Decimal) (*models.Bet, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("bet amount must be positive")
	}

	var bet models.Bet

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var market models.BettingMarket
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&market, marketID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("market: %w", ErrNotFound)
		}
		if err != nil {
			return err
		}

		// A past closing date closes the market regardless of its stored status
		if market.Status != models.MarketStatusOpen {
			return ErrMarketClosed
		}
		if !market.ClosingDate.After(time.Now()) {
			return ErrMarketClosed
		}

		wallet, err := lockWallet(tx, userID)
		if err != nil {
			return err
		}
		if wallet.PACBalance.LessThan(amount) {
			return ErrInsufficientBalance
		}
		if !outcome.Valid() {
			return ErrInvalidOutcome
		}

		odds := market.Odds(outcome)
		potentialPayout := amount.Mul(odds)

		wallet.PACBalance = wallet.PACBalance.Sub(amount)
		if err := tx.Save(wallet).Error; err != nil {
			return fmt.Errorf("failed to debit wallet: %w", err)
		}

		bet = models.Bet{
			UserID:          userID,
			MarketID:        marketID,
			Outcome:         outcome,
			Amount:          amount,
			Odds:            odds,
			PotentialPayout: potentialPayout,
			Status:          models.BetStatusPending,
		}
		if err := tx.Create(&bet).Error; err != nil {
			return fmt.Errorf("failed to create bet: %w", err)
		}

		market.TotalVolume = market.TotalVolume.Add(amount)
		if err := tx.Save(&market).Error; err != nil {
			return fmt.Errorf("failed to update market volume: %w", err)
		}

		entry := models.Transaction{
			UserID:      userID,
			Type:        models.TxBet,
			Amount:      amount,
			TokenType:   models.TokenPAC,
			Status:      models.TxStatusCompleted,
			ReferenceID: &bet.ID,
		}
		return tx.Create(&entry).Error
	})

	if err != nil {
		return nil, err
	}

	s.store.Invalidate(ctx,
		cache.WalletKey(userID),
		cache.MarketKey(marketID),
		cache.BettingStatsKey(userID),
	)
	return &bet, nil
}

// CancelBet refunds a pending bet while its market is still open.
// Ownership is checked by the calling layer.
func (s *BetService) CancelBet(ctx context.Context, betID, userID uint) error {
	var marketID uint

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bet models.Bet
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&bet, betID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("bet: %w", ErrNotFound)
		}
		if err != nil {
			return err
		}
		marketID = bet.MarketID

		if !bet.Status.CanTransition(models.BetStatusCancelled) {
			return ErrInvalidTransition
		}

		var market models.BettingMarket
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&market, bet.MarketID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("market: %w", ErrNotFound)
		}
		if err != nil {
			return err
		}

		if !market.ClosingDate.After(time.Now()) {
			return ErrEventHasStarted
		}

		wallet, err := lockWallet(tx, userID)
		if err != nil {
			return err
		}
		wallet.PACBalance = wallet.PACBalance.Add(bet.Amount)
		if err := tx.Save(wallet).Error; err != nil {
			return fmt.Errorf("failed to refund wallet: %w", err)
		}

		bet.Status = models.BetStatusCancelled
		if err := tx.Save(&bet).Error; err != nil {
			return fmt.Errorf("failed to cancel bet: %w", err)
		}

		market.TotalVolume = market.TotalVolume.Sub(bet.Amount)
		if err := tx.Save(&market).Error; err != nil {
			return fmt.Errorf("failed to update market volume: %w", err)
		}

		entry := models.Transaction{
			UserID:      userID,
			Type:        models.TxRefund,
			Amount:      bet.Amount,
			TokenType:   models.TokenPAC,
			Status:      models.TxStatusCompleted,
			ReferenceID: &bet.ID,
		}
		return tx.Create(&entry).Error
	})

	if err != nil {
		return err
	}

	s.store.Invalidate(ctx,
		cache.WalletKey(userID),
		cache.MarketKey(marketID),
		cache.BettingStatsKey(userID),
	)
	return nil
}

// GetUserBets returns the user's bets, newest first
func (s *BetService) GetUserBets(ctx context.Context, userID uint, status string, limit, offset int) ([]models.Bet, error) {
	if limit <= 0 {
		limit = 20
	}

	query := s.db.WithContext(ctx).Where("user_id = ?", userID).Preload("Market")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var bets []models.Bet
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&bets).Error
	if err != nil {
		return nil, err
	}
	return bets, nil
}

// GetBetByID returns one bet with its market preloaded
func (s *BetService) GetBetByID(ctx context.Context, betID uint) (*models.Bet, error) {
	var bet models.Bet
	err := s.db.WithContext(ctx).Preload("Market").First(&bet, betID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("bet: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

// GetUserBettingStats returns the aggregate betting projection, cached
func (s *BetService) GetUserBettingStats(ctx context.Context, userID uint) (*models.BettingStats, error) {
	var stats models.BettingStats
	if cache.GetJSON(ctx, s.store, cache.BettingStatsKey(userID), &stats) {
		return &stats, nil
	}

	var row struct {
		TotalWins     int64
		TotalLosses   int64
		PendingBets   int64
		TotalWagered  decimal.Decimal
		TotalWinnings decimal.Decimal
	}

	err := s.db.WithContext(ctx).Model(&models.Bet{}).
		Select(`COUNT(CASE WHEN status = 'won' THEN 1 END) AS total_wins,
			COUNT(CASE WHEN status = 'lost' THEN 1 END) AS total_losses,
			COUNT(CASE WHEN status = 'pending' THEN 1 END) AS pending_bets,
			COALESCE(SUM(amount), 0) AS total_wagered,
			COALESCE(SUM(payout), 0) AS total_winnings`).
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	stats = models.BettingStats{
		TotalWins:     row.TotalWins,
		TotalLosses:   row.TotalLosses,
		PendingBets:   row.PendingBets,
		TotalWagered:  row.TotalWagered,
		TotalWinnings: row.TotalWinnings,
		NetProfit:     row.TotalWinnings.Sub(row.TotalWagered),
	}
	if settled := row.TotalWins + row.TotalLosses; settled > 0 {
		stats.WinRate = float64(row.TotalWins) / float64(settled) * 100
	}

	cache.SetJSON(ctx, s.store, cache.BettingStatsKey(userID), &stats, cache.TTLMedium)
	return &stats, nil
}
