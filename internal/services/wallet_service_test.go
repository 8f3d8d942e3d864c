package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"giperarena/internal/cache"
	"giperarena/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Each test gets its own named in-memory database so state never
	// leaks between tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Wallet{},
		&models.Transaction{},
		&models.Arena{},
		&models.GameSession{},
		&models.Tournament{},
		&models.TournamentParticipant{},
		&models.NFT{},
		&models.BettingMarket{},
		&models.Bet{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	user := models.User{
		Username:      username,
		WalletAddress: "wallet-" + username,
		IsActive:      true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return &user
}

func createTestWallet(t *testing.T, db *gorm.DB, userID uint, pacBalance string) *models.Wallet {
	wallet := models.Wallet{
		UserID:       userID,
		GACBalance:   decimal.Zero,
		PACBalance:   mustDecimal(t, pacBalance),
		StakedAmount: decimal.Zero,
	}
	if err := db.Create(&wallet).Error; err != nil {
		t.Fatalf("failed to create wallet: %v", err)
	}
	return &wallet
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func TestDepositCreditsBalance(t *testing.T) {
	db := setupTestDB(t)
	service := NewWalletService(db, cache.NewNop())
	ctx := context.Background()

	user := createTestUser(t, db, "depositor")

	entry, err := service.Deposit(ctx, user.ID, mustDecimal(t, "250.50"), models.TokenGAC, "hash-1")
	if err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	if entry.Status != models.TxStatusCompleted {
		t.Errorf("expected completed entry, got %s", entry.Status)
	}

	wallet, err := service.GetWallet(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetWallet failed: %v", err)
	}
	if !wallet.GACBalance.Equal(mustDecimal(t, "250.50")) {
		t.Errorf("expected GAC balance 250.50, got %s", wallet.GACBalance)
	}
	if !wallet.PACBalance.IsZero() {
		t.Errorf("expected PAC balance untouched, got %s", wallet.PACBalance)
	}
}

func TestDepositInvalidTokenType(t *testing.T) {
	db := setupTestDB(t)
	service := NewWalletService(db, cache.NewNop())

	user := createTestUser(t, db, "badtoken")

	_, err := service.Deposit(context.Background(), user.ID, decimal.NewFromInt(10), models.TokenType("DOGE"), "hash-x")
	if err != ErrInvalidTokenType {
		t.Errorf("expected ErrInvalidTokenType, got %v", err)
	}
}

func TestDepositReplayIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	service := NewWalletService(db, cache.NewNop())
	ctx := context.Background()

	user := createTestUser(t, db, "replayer")

	first, err := service.Deposit(ctx, user.ID, decimal.NewFromInt(100), models.TokenPAC, "hash-dup")
	if err != nil {
		t.Fatalf("first Deposit failed: %v", err)
	}

	second, err := service.Deposit(ctx, user.ID, decimal.NewFromInt(100), models.TokenPAC, "hash-dup")
	if err != nil {
		t.Fatalf("replayed Deposit failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected the original ledger entry back, got id %d vs %d", second.ID, first.ID)
	}

	wallet, err := service.GetWallet(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetWallet failed: %v", err)
	}
	if !wallet.PACBalance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("replay must not credit twice: expected 100, got %s", wallet.PACBalance)
	}

	var count int64
	db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected a single ledger entry, got %d", count)
	}
}

func TestWithdrawInsufficientBalance(t *testing.T) {
	db := setupTestDB(t)
	service := NewWalletService(db, cache.NewNop())

	user := createTestUser(t, db, "broke")
	createTestWallet(t, db, user.ID, "50.00")

	_, err := service.Withdraw(context.Background(), user.ID, decimal.NewFromInt(100), models.TokenPAC, "addr")
	if err != ErrInsufficientBalance {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}

	var wallet models.Wallet
	db.Where("user_id = ?", user.ID).First(&wallet)
	if !wallet.PACBalance.Equal(mustDecimal(t, "50.00")) {
		t.Errorf("failed withdrawal must not change balance: got %s", wallet.PACBalance)
	}
}

func TestWithdrawLeavesPendingEntry(t *testing.T) {
	db := setupTestDB(t)
	service := NewWalletService(db, cache.NewNop())

	user := createTestUser(t, db, "withdrawer")
	createTestWallet(t, db, user.ID, "500.00")

	entry, err := service.Withdraw(context.Background(), user.ID, decimal.NewFromInt(200), models.TokenPAC, "dest-addr")
	if err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}

	// Settlement happens off-platform; the entry stays pending here.
	if entry.Status != models.TxStatusPending {
		t.Errorf("expected pending entry, got %s", entry.Status)
	}
	if entry.RecipientAddress == nil || *entry.RecipientAddress != "dest-addr" {
		t.Errorf("expected recipient address recorded")
	}

	var wallet models.Wallet
	db.Where("user_id = ?", user.ID).First(&wallet)
	if !wallet.PACBalance.Equal(mustDecimal(t, "300.00")) {
		t.Errorf("expected balance 300.00, got %s", wallet.PACBalance)
	}
}

func TestStakeInvalidDuration(t *testing.T) {
	db := setupTestDB(t)
	service := NewWalletService(db, cache.NewNop())

	user := createTestUser(t, db, "staker-bad")
	createTestWallet(t, db, user.ID, "1000.00")

	_, err := service.Stake(context.Background(), user.ID, decimal.NewFromInt(100), 45)
	if err != ErrInvalidDuration {
		t.Errorf("expected ErrInvalidDuration, got %v", err)
	}
}

func TestStakeMovesBalanceAndSetsTier(t *testing.T) {
	db := setupTestDB(t)
	service := NewWalletService(db, cache.NewNop())
	ctx := context.Background()

	user := createTestUser(t, db, "staker")
	createTestWallet(t, db, user.ID, "60000.00")

	_, err := service.Stake(ctx, user.ID, decimal.NewFromInt(50000), 90)
	if err != nil {
		t.Fatalf("Stake failed: %v", err)
	}

	var wallet models.Wallet
	db.Where("user_id = ?", user.ID).First(&wallet)

	if !wallet.PACBalance.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("expected PAC balance 10000, got %s", wallet.PACBalance)
	}
	if !wallet.StakedAmount.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("expected staked amount 50000, got %s", wallet.StakedAmount)
	}
	if wallet.StakingTier == nil || *wallet.StakingTier != models.TierGold {
		t.Errorf("expected gold tier for 50000, got %v", wallet.StakingTier)
	}
	if wallet.StakeUnlockDate == nil {
		t.Fatalf("expected unlock date set")
	}
	days := time.Until(*wallet.StakeUnlockDate).Hours() / 24
	if days < 89 || days > 91 {
		t.Errorf("expected unlock roughly 90 days out, got %.1f", days)
	}
}

func TestRestakeAddsAmountButOverwritesTier(t *testing.T) {
	db := setupTestDB(t)
	service := NewWalletService(db, cache.NewNop())
	ctx := context.Background()

	user := createTestUser(t, db, "restaker")
	createTestWallet(t, db, user.ID, "60000.00")

	if _, err := service.Stake(ctx, user.ID, decimal.NewFromInt(50000), 365); err != nil {
		t.Fatalf("first Stake failed: %v", err)
	}
	if _, err := service.Stake(ctx, user.ID, decimal.NewFromInt(100), 30); err != nil {
		t.Fatalf("second Stake failed: %v", err)
	}

	var wallet models.Wallet
	db.Where("user_id = ?", user.ID).First(&wallet)

	// Amounts accumulate, but tier and unlock date come from the latest
	// increment alone: a tiny re-stake downgrades the position.
	if !wallet.StakedAmount.Equal(decimal.NewFromInt(50100)) {
		t.Errorf("expected staked amount 50100, got %s", wallet.StakedAmount)
	}
	if wallet.StakingTier == nil || *wallet.StakingTier != models.TierBronze {
		t.Errorf("expected bronze tier from the 100 increment, got %v", wallet.StakingTier)
	}
	days := time.Until(*wallet.StakeUnlockDate).Hours() / 24
	if days < 29 || days > 31 {
		t.Errorf("expected unlock roughly 30 days out, got %.1f", days)
	}
}

func TestUnstakeWithoutStake(t *testing.T) {
	db := setupTestDB(t)
	service := NewWalletService(db, cache.NewNop())

	user := createTestUser(t, db, "nostake")
	createTestWallet(t, db, user.ID, "100.00")

	_, err := service.Unstake(context.Background(), user.ID)
	if err != ErrNoActiveStake {
		t.Errorf("expected ErrNoActiveStake, got %v", err)
	}
}

func TestUnstakeBeforeUnlockDate(t *testing.T) {
	db := setupTestDB(t)
	service := NewWalletService(db, cache.NewNop())
	ctx := context.Background()

	user := createTestUser(t, db, "early")
	createTestWallet(t, db, user.ID, "1000.00")

	if _, err := service.Stake(ctx, user.ID, decimal.NewFromInt(500), 30); err != nil {
		t.Fatalf("Stake failed: %v", err)
	}

	_, err := service.Unstake(ctx, user.ID)
	if err != ErrStakePeriodNotCompleted {
		t.Errorf("expected ErrStakePeriodNotCompleted, got %v", err)
	}
}

func TestUnstakeRewardsAccrueFromWalletAge(t *testing.T) {
	db := setupTestDB(t)
	service := NewWalletService(db, cache.NewNop())
	ctx := context.Background()

	user := createTestUser(t, db, "veteran")

	// Wallet opened 365 days ago with an already-unlocked stake. Rewards
	// are computed over the wallet's age, not the stake's.
	createdAt := time.Now().Add(-365 * 24 * time.Hour)
	unlocked := time.Now().Add(-time.Hour)
	tier := models.TierBronze
	wallet := models.Wallet{
		UserID:          user.ID,
		GACBalance:      decimal.Zero,
		PACBalance:      decimal.Zero,
		StakedAmount:    decimal.NewFromInt(1000),
		StakingTier:     &tier,
		StakeUnlockDate: &unlocked,
		CreatedAt:       createdAt,
	}
	if err := db.Create(&wallet).Error; err != nil {
		t.Fatalf("failed to create wallet: %v", err)
	}

	entry, err := service.Unstake(ctx, user.ID)
	if err != nil {
		t.Fatalf("Unstake failed: %v", err)
	}

	// 1000 * 0.10 * 365/365 = 100.00 rewards, 1100.00 released
	if !entry.Amount.Equal(mustDecimal(t, "1100.00")) {
		t.Errorf("expected released amount 1100.00, got %s", entry.Amount)
	}

	var reloaded models.Wallet
	db.Where("user_id = ?", user.ID).First(&reloaded)
	if !reloaded.PACBalance.Equal(mustDecimal(t, "1100.00")) {
		t.Errorf("expected PAC balance 1100.00, got %s", reloaded.PACBalance)
	}
	if !reloaded.StakedAmount.IsZero() {
		t.Errorf("expected staked amount cleared, got %s", reloaded.StakedAmount)
	}
	if reloaded.StakingTier != nil {
		t.Errorf("expected staking tier cleared, got %v", *reloaded.StakingTier)
	}
	if reloaded.StakeUnlockDate != nil {
		t.Errorf("expected unlock date cleared")
	}
}

func TestGetStakingInfo(t *testing.T) {
	db := setupTestDB(t)
	service := NewWalletService(db, cache.NewNop())
	ctx := context.Background()

	user := createTestUser(t, db, "info")
	createTestWallet(t, db, user.ID, "1000.00")

	info, err := service.GetStakingInfo(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetStakingInfo failed: %v", err)
	}
	if info.IsStaking {
		t.Errorf("expected no active stake")
	}

	if _, err := service.Stake(ctx, user.ID, decimal.NewFromInt(500), 90); err != nil {
		t.Fatalf("Stake failed: %v", err)
	}

	info, err = service.GetStakingInfo(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetStakingInfo failed: %v", err)
	}
	if !info.IsStaking {
		t.Fatalf("expected active stake")
	}
	if info.DaysRemaining < 89 || info.DaysRemaining > 90 {
		t.Errorf("expected roughly 90 days remaining, got %d", info.DaysRemaining)
	}
}

func TestConcurrentDepositAndWithdraw(t *testing.T) {
	db := setupTestDB(t)

	// Force a single connection so the two transactions serialize the way
	// row locks serialize them in production.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	service := NewWalletService(db, cache.NewNop())
	ctx := context.Background()

	user := createTestUser(t, db, "racer")
	createTestWallet(t, db, user.ID, "100.00")

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		_, _ = service.Deposit(ctx, user.ID, decimal.NewFromInt(50), models.TokenPAC, "hash-race")
	}()
	go func() {
		defer wg.Done()
		_, _ = service.Withdraw(ctx, user.ID, decimal.NewFromInt(120), models.TokenPAC, "addr")
	}()

	wg.Wait()

	var wallet models.Wallet
	db.Where("user_id = ?", user.ID).First(&wallet)

	// Deposit-then-withdraw leaves 30; withdraw-first fails on funds and
	// the deposit lands, leaving 150. Anything else is a lost update.
	got := wallet.PACBalance
	if !got.Equal(decimal.NewFromInt(30)) && !got.Equal(decimal.NewFromInt(150)) {
		t.Errorf("balance %s is not a serializable outcome (want 30 or 150)", got)
	}
}

func TestGetWalletCreatesLazily(t *testing.T) {
	db := setupTestDB(t)
	service := NewWalletService(db, cache.NewNop())

	user := createTestUser(t, db, "fresh")

	wallet, err := service.GetWallet(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetWallet failed: %v", err)
	}
	if !wallet.GACBalance.IsZero() || !wallet.PACBalance.IsZero() {
		t.Errorf("expected zero balances on a fresh wallet")
	}

	var count int64
	db.Model(&models.Wallet{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one wallet row, got %d", count)
	}
}
