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

func createTestTournament(t *testing.T, db *gorm.DB, organizerID uint, maxParticipants int) *models.Tournament {
	tournament := models.Tournament{
		Name:            "Test Cup",
		OrganizerID:     organizerID,
		TournamentType:  "single_elimination",
		Status:          models.TournamentStatusUpcoming,
		StartDate:       time.Now().Add(7 * 24 * time.Hour),
		MaxParticipants: maxParticipants,
		PrizePool:       decimal.NewFromInt(1000),
		EntryFee:        decimal.NewFromInt(50),
	}
	if err := db.Create(&tournament).Error; err != nil {
		t.Fatalf("failed to create tournament: %v", err)
	}
	return &tournament
}

func TestRegisterParticipantCountsUp(t *testing.T) {
	db := setupTestDB(t)
	service := NewTournamentService(db, cache.NewNop())
	ctx := context.Background()

	organizer := createTestUser(t, db, "org")
	player := createTestUser(t, db, "player1")
	tournament := createTestTournament(t, db, organizer.ID, 8)

	if _, err := service.RegisterParticipant(ctx, tournament.ID, player.ID); err != nil {
		t.Fatalf("RegisterParticipant failed: %v", err)
	}

	var reloaded models.Tournament
	db.First(&reloaded, tournament.ID)
	if reloaded.CurrentParticipants != 1 {
		t.Errorf("expected 1 participant, got %d", reloaded.CurrentParticipants)
	}
}

func TestRegisterParticipantDuplicate(t *testing.T) {
	db := setupTestDB(t)
	service := NewTournamentService(db, cache.NewNop())
	ctx := context.Background()

	organizer := createTestUser(t, db, "org2")
	player := createTestUser(t, db, "player2")
	tournament := createTestTournament(t, db, organizer.ID, 8)

	if _, err := service.RegisterParticipant(ctx, tournament.ID, player.ID); err != nil {
		t.Fatalf("RegisterParticipant failed: %v", err)
	}

	_, err := service.RegisterParticipant(ctx, tournament.ID, player.ID)
	if err != ErrAlreadyRegistered {
		t.Errorf("expected ErrAlreadyRegistered, got %v", err)
	}

	var reloaded models.Tournament
	db.First(&reloaded, tournament.ID)
	if reloaded.CurrentParticipants != 1 {
		t.Errorf("duplicate must not bump the counter, got %d", reloaded.CurrentParticipants)
	}
}

func TestRegisterParticipantFull(t *testing.T) {
	db := setupTestDB(t)
	service := NewTournamentService(db, cache.NewNop())
	ctx := context.Background()

	organizer := createTestUser(t, db, "org3")
	tournament := createTestTournament(t, db, organizer.ID, 2)

	for i := 0; i < 2; i++ {
		player := createTestUser(t, db, "filler"+string(rune('a'+i)))
		if _, err := service.RegisterParticipant(ctx, tournament.ID, player.ID); err != nil {
			t.Fatalf("RegisterParticipant %d failed: %v", i, err)
		}
	}

	extra := createTestUser(t, db, "latecomer")
	_, err := service.RegisterParticipant(ctx, tournament.ID, extra.ID)
	if err != ErrTournamentFull {
		t.Errorf("expected ErrTournamentFull, got %v", err)
	}
}

func TestUnregisterParticipant(t *testing.T) {
	db := setupTestDB(t)
	service := NewTournamentService(db, cache.NewNop())
	ctx := context.Background()

	organizer := createTestUser(t, db, "org4")
	player := createTestUser(t, db, "player4")
	tournament := createTestTournament(t, db, organizer.ID, 8)

	if _, err := service.RegisterParticipant(ctx, tournament.ID, player.ID); err != nil {
		t.Fatalf("RegisterParticipant failed: %v", err)
	}
	if err := service.UnregisterParticipant(ctx, tournament.ID, player.ID); err != nil {
		t.Fatalf("UnregisterParticipant failed: %v", err)
	}

	var reloaded models.Tournament
	db.First(&reloaded, tournament.ID)
	if reloaded.CurrentParticipants != 0 {
		t.Errorf("expected counter back to 0, got %d", reloaded.CurrentParticipants)
	}
}

func TestUnregisterAfterStart(t *testing.T) {
	db := setupTestDB(t)
	service := NewTournamentService(db, cache.NewNop())
	ctx := context.Background()

	organizer := createTestUser(t, db, "org5")
	player := createTestUser(t, db, "player5")
	tournament := createTestTournament(t, db, organizer.ID, 8)

	if _, err := service.RegisterParticipant(ctx, tournament.ID, player.ID); err != nil {
		t.Fatalf("RegisterParticipant failed: %v", err)
	}
	if _, err := service.StartTournament(ctx, tournament.ID); err != nil {
		t.Fatalf("StartTournament failed: %v", err)
	}

	err := service.UnregisterParticipant(ctx, tournament.ID, player.ID)
	if err != ErrTournamentStarted {
		t.Errorf("expected ErrTournamentStarted, got %v", err)
	}
}

func TestTournamentLifecycle(t *testing.T) {
	db := setupTestDB(t)
	service := NewTournamentService(db, cache.NewNop())
	ctx := context.Background()

	organizer := createTestUser(t, db, "org6")
	winner := createTestUser(t, db, "champ")
	tournament := createTestTournament(t, db, organizer.ID, 8)

	// Completing an upcoming tournament skips a state.
	_, err := service.CompleteTournament(ctx, tournament.ID, nil)
	if err != ErrInvalidTransition {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}

	started, err := service.StartTournament(ctx, tournament.ID)
	if err != nil {
		t.Fatalf("StartTournament failed: %v", err)
	}
	if started.Status != models.TournamentStatusActive || started.ActualStartDate == nil {
		t.Errorf("expected active tournament with actual start date")
	}

	completed, err := service.CompleteTournament(ctx, tournament.ID, &winner.ID)
	if err != nil {
		t.Fatalf("CompleteTournament failed: %v", err)
	}
	if completed.Status != models.TournamentStatusCompleted {
		t.Errorf("expected completed status, got %s", completed.Status)
	}
	if completed.WinnerID == nil || *completed.WinnerID != winner.ID {
		t.Errorf("expected winner recorded")
	}

	_, err = service.StartTournament(ctx, tournament.ID)
	if err != ErrInvalidTransition {
		t.Errorf("completed tournaments are terminal, got %v", err)
	}
}

func TestBracketRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	service := NewTournamentService(db, cache.NewNop())
	ctx := context.Background()

	organizer := createTestUser(t, db, "org7")
	tournament := createTestTournament(t, db, organizer.ID, 8)

	bracket := models.JSONB{
		"rounds": []interface{}{
			map[string]interface{}{"match": "semifinal-1"},
		},
	}
	if err := service.UpdateBracket(ctx, tournament.ID, bracket); err != nil {
		t.Fatalf("UpdateBracket failed: %v", err)
	}

	loaded, err := service.GetTournamentBracket(ctx, tournament.ID)
	if err != nil {
		t.Fatalf("GetTournamentBracket failed: %v", err)
	}
	if loaded == nil {
		t.Fatalf("expected bracket data back")
	}
	if _, ok := loaded["rounds"]; !ok {
		t.Errorf("expected rounds key preserved, got %v", loaded)
	}
}
