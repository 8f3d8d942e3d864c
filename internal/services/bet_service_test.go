package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"giperarena/internal/cache"
	"giperarena/internal/models"
)

func createTestMarket(t *testing.T, db *gorm.DB, status models.MarketStatus, closingDate time.Time) *models.BettingMarket {
	market := models.BettingMarket{
		EventType:   "tournament",
		MarketType:  "match_winner",
		Description: "A vs B",
		Status:      status,
		ClosingDate: closingDate,
		OutcomeA:    "Team A",
		OutcomeB:    "Team B",
		OddsA:       mustDecimal(t, "2.50"),
		OddsB:       mustDecimal(t, "1.60"),
		OddsC:       decimal.Zero,
		TotalVolume: decimal.Zero,
	}
	if err := db.Create(&market).Error; err != nil {
		t.Fatalf("failed to create market: %v", err)
	}
	return &market
}

func TestPlaceBetLocksInOdds(t *testing.T) {
	db := setupTestDB(t)
	service := NewBetService(db, cache.NewNop())
	ctx := context.Background()

	user := createTestUser(t, db, "bettor")
	createTestWallet(t, db, user.ID, "1000.00")
	market := createTestMarket(t, db, models.MarketStatusOpen, time.Now().Add(24*time.Hour))

	bet, err := service.PlaceBet(ctx, user.ID, market.ID, models.OutcomeA, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("PlaceBet failed: %v", err)
	}

	if !bet.Odds.Equal(mustDecimal(t, "2.50")) {
		t.Errorf("expected odds 2.50 copied onto the bet, got %s", bet.Odds)
	}
	if !bet.PotentialPayout.Equal(mustDecimal(t, "250.00")) {
		t.Errorf("expected potential payout 250.00, got %s", bet.PotentialPayout)
	}
	if bet.Status != models.BetStatusPending {
		t.Errorf("expected pending bet, got %s", bet.Status)
	}

	var wallet models.Wallet
	db.Where("user_id = ?", user.ID).First(&wallet)
	if !wallet.PACBalance.Equal(decimal.NewFromInt(900)) {
		t.Errorf("expected balance 900 after bet, got %s", wallet.PACBalance)
	}

	var reloaded models.BettingMarket
	db.First(&reloaded, market.ID)
	if !reloaded.TotalVolume.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected market volume 100, got %s", reloaded.TotalVolume)
	}

	var entry models.Transaction
	if err := db.Where("user_id = ? AND type = ?", user.ID, models.TxBet).First(&entry).Error; err != nil {
		t.Fatalf("expected a bet ledger entry: %v", err)
	}
	if entry.ReferenceID == nil || *entry.ReferenceID != bet.ID {
		t.Errorf("expected ledger entry referencing the bet")
	}
}

func TestPlaceBetInsufficientBalance(t *testing.T) {
	db := setupTestDB(t)
	service := NewBetService(db, cache.NewNop())

	user := createTestUser(t, db, "poor-bettor")
	createTestWallet(t, db, user.ID, "10.00")
	market := createTestMarket(t, db, models.MarketStatusOpen, time.Now().Add(24*time.Hour))

	_, err := service.PlaceBet(context.Background(), user.ID, market.ID, models.OutcomeA, decimal.NewFromInt(100))
	if err != ErrInsufficientBalance {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}

	var reloaded models.BettingMarket
	db.First(&reloaded, market.ID)
	if !reloaded.TotalVolume.IsZero() {
		t.Errorf("failed bet must not change volume, got %s", reloaded.TotalVolume)
	}
}

func TestPlaceBetCheckOrder(t *testing.T) {
	db := setupTestDB(t)
	service := NewBetService(db, cache.NewNop())
	ctx := context.Background()

	user := createTestUser(t, db, "order-bettor")
	createTestWallet(t, db, user.ID, "10.00")
	market := createTestMarket(t, db, models.MarketStatusOpen, time.Now().Add(24*time.Hour))

	// Balance is checked before outcome validity, so a broke bettor with a
	// bogus outcome sees the balance error.
	_, err := service.PlaceBet(ctx, user.ID, market.ID, models.BetOutcome("Z"), decimal.NewFromInt(100))
	if err != ErrInsufficientBalance {
		t.Errorf("expected ErrInsufficientBalance first, got %v", err)
	}

	// With funds, the bogus outcome surfaces.
	_, err = service.PlaceBet(ctx, user.ID, market.ID, models.BetOutcome("Z"), decimal.NewFromInt(5))
	if err != ErrInvalidOutcome {
		t.Errorf("expected ErrInvalidOutcome, got %v", err)
	}
}

func TestPlaceBetClosedMarket(t *testing.T) {
	db := setupTestDB(t)
	service := NewBetService(db, cache.NewNop())

	user := createTestUser(t, db, "late-bettor")
	createTestWallet(t, db, user.ID, "1000.00")
	market := createTestMarket(t, db, models.MarketStatusClosed, time.Now().Add(24*time.Hour))

	_, err := service.PlaceBet(context.Background(), user.ID, market.ID, models.OutcomeA, decimal.NewFromInt(100))
	if err != ErrMarketClosed {
		t.Errorf("expected ErrMarketClosed, got %v", err)
	}
}

func TestPlaceBetPastClosingDate(t *testing.T) {
	db := setupTestDB(t)
	service := NewBetService(db, cache.NewNop())

	user := createTestUser(t, db, "expired-bettor")
	createTestWallet(t, db, user.ID, "1000.00")

	// Status still says open, but the closing date has passed.
	market := createTestMarket(t, db, models.MarketStatusOpen, time.Now().Add(-time.Hour))

	_, err := service.PlaceBet(context.Background(), user.ID, market.ID, models.OutcomeA, decimal.NewFromInt(100))
	if err != ErrMarketClosed {
		t.Errorf("expected ErrMarketClosed for past closing date, got %v", err)
	}
}

func TestCancelBetRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	service := NewBetService(db, cache.NewNop())
	ctx := context.Background()

	user := createTestUser(t, db, "canceller")
	createTestWallet(t, db, user.ID, "1000.00")
	market := createTestMarket(t, db, models.MarketStatusOpen, time.Now().Add(24*time.Hour))

	bet, err := service.PlaceBet(ctx, user.ID, market.ID, models.OutcomeB, decimal.NewFromInt(300))
	if err != nil {
		t.Fatalf("PlaceBet failed: %v", err)
	}

	if err := service.CancelBet(ctx, bet.ID, user.ID); err != nil {
		t.Fatalf("CancelBet failed: %v", err)
	}

	var wallet models.Wallet
	db.Where("user_id = ?", user.ID).First(&wallet)
	if !wallet.PACBalance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected full refund to 1000, got %s", wallet.PACBalance)
	}

	var reloadedMarket models.BettingMarket
	db.First(&reloadedMarket, market.ID)
	if !reloadedMarket.TotalVolume.IsZero() {
		t.Errorf("expected volume back to zero, got %s", reloadedMarket.TotalVolume)
	}

	var reloadedBet models.Bet
	db.First(&reloadedBet, bet.ID)
	if reloadedBet.Status != models.BetStatusCancelled {
		t.Errorf("expected cancelled bet, got %s", reloadedBet.Status)
	}

	var refund models.Transaction
	if err := db.Where("user_id = ? AND type = ?", user.ID, models.TxRefund).First(&refund).Error; err != nil {
		t.Fatalf("expected a refund ledger entry: %v", err)
	}
}

func TestCancelBetAfterClosingDate(t *testing.T) {
	db := setupTestDB(t)
	service := NewBetService(db, cache.NewNop())
	ctx := context.Background()

	user := createTestUser(t, db, "too-late")
	createTestWallet(t, db, user.ID, "1000.00")
	market := createTestMarket(t, db, models.MarketStatusOpen, time.Now().Add(time.Minute))

	bet, err := service.PlaceBet(ctx, user.ID, market.ID, models.OutcomeA, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("PlaceBet failed: %v", err)
	}

	db.Model(&models.BettingMarket{}).Where("id = ?", market.ID).
		Update("closing_date", time.Now().Add(-time.Minute))

	err = service.CancelBet(ctx, bet.ID, user.ID)
	if err != ErrEventHasStarted {
		t.Errorf("expected ErrEventHasStarted, got %v", err)
	}

	var wallet models.Wallet
	db.Where("user_id = ?", user.ID).First(&wallet)
	if !wallet.PACBalance.Equal(decimal.NewFromInt(900)) {
		t.Errorf("failed cancel must not refund: expected 900, got %s", wallet.PACBalance)
	}
}

func TestCancelBetTwice(t *testing.T) {
	db := setupTestDB(t)
	service := NewBetService(db, cache.NewNop())
	ctx := context.Background()

	user := createTestUser(t, db, "double-cancel")
	createTestWallet(t, db, user.ID, "1000.00")
	market := createTestMarket(t, db, models.MarketStatusOpen, time.Now().Add(24*time.Hour))

	bet, err := service.PlaceBet(ctx, user.ID, market.ID, models.OutcomeA, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("PlaceBet failed: %v", err)
	}

	if err := service.CancelBet(ctx, bet.ID, user.ID); err != nil {
		t.Fatalf("first CancelBet failed: %v", err)
	}

	err = service.CancelBet(ctx, bet.ID, user.ID)
	if err != ErrInvalidTransition {
		t.Errorf("expected ErrInvalidTransition on second cancel, got %v", err)
	}

	var wallet models.Wallet
	db.Where("user_id = ?", user.ID).First(&wallet)
	if !wallet.PACBalance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("double cancel must not refund twice: expected 1000, got %s", wallet.PACBalance)
	}
}

func TestGetUserBettingStats(t *testing.T) {
	db := setupTestDB(t)
	service := NewBetService(db, cache.NewNop())
	ctx := context.Background()

	user := createTestUser(t, db, "stats-bettor")
	createTestWallet(t, db, user.ID, "1000.00")
	market := createTestMarket(t, db, models.MarketStatusOpen, time.Now().Add(24*time.Hour))

	if _, err := service.PlaceBet(ctx, user.ID, market.ID, models.OutcomeA, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("PlaceBet failed: %v", err)
	}

	payout := mustDecimal(t, "160.00")
	won := models.Bet{
		UserID:          user.ID,
		MarketID:        market.ID,
		Outcome:         models.OutcomeB,
		Amount:          decimal.NewFromInt(100),
		Odds:            mustDecimal(t, "1.60"),
		PotentialPayout: payout,
		Status:          models.BetStatusWon,
		Payout:          &payout,
	}
	if err := db.Create(&won).Error; err != nil {
		t.Fatalf("failed to create settled bet: %v", err)
	}

	stats, err := service.GetUserBettingStats(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserBettingStats failed: %v", err)
	}

	if stats.TotalWins != 1 || stats.PendingBets != 1 {
		t.Errorf("expected 1 win and 1 pending, got %d/%d", stats.TotalWins, stats.PendingBets)
	}
	if !stats.TotalWagered.Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected total wagered 200, got %s", stats.TotalWagered)
	}
	if stats.WinRate != 100 {
		t.Errorf("expected 100%% win rate over settled bets, got %.1f", stats.WinRate)
	}
}
