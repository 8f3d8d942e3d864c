package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Seeds demo data for local development: a few users with funded wallets,
// an arena, an open betting market and an upcoming tournament.
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Build connection string
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPassword, dbName)

	// Connect to database
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	log.Println("Connected to database successfully")

	seedSQL := `
		INSERT INTO users (username, wallet_address, is_active, created_at, updated_at)
		VALUES
			('alice', 'So1anaDemoWa11etAddressA1111111111111111111', true, NOW(), NOW()),
			('bob',   'So1anaDemoWa11etAddressB2222222222222222222', true, NOW(), NOW()),
			('carol', 'So1anaDemoWa11etAddressC3333333333333333333', true, NOW(), NOW())
		ON CONFLICT (wallet_address) DO NOTHING;

		INSERT INTO wallets (user_id, gac_balance, pac_balance, staked_amount, created_at, updated_at)
		SELECT id, 1000.00, 5000.00, 0.00, NOW(), NOW() FROM users
		WHERE username IN ('alice', 'bob', 'carol')
		ON CONFLICT (user_id) DO NOTHING;

		INSERT INTO arenas (name, description, game_type, country, city, operator_id, status, pricing_model, hourly_rate, total_sessions, rating, created_at, updated_at)
		SELECT 'Neon Dome', 'Flagship esports arena', 'fps', 'DE', 'Berlin', id, 'active', 'hourly', 25.00, 0, 4.8, NOW(), NOW()
		FROM users WHERE username = 'alice'
		ON CONFLICT DO NOTHING;

		INSERT INTO betting_markets (event_type, market_type, description, status, closing_date, outcome_a, outcome_b, odds_a, odds_b, odds_c, total_volume, created_at, updated_at)
		VALUES ('tournament', 'match_winner', 'Grand Final: Team A vs Team B', 'open', NOW() + INTERVAL '7 days', 'Team A', 'Team B', 1.85, 2.10, 0.00, 0.00, NOW(), NOW())
		ON CONFLICT DO NOTHING;

		INSERT INTO tournaments (name, tournament_type, status, max_participants, current_participants, entry_fee, prize_pool, organizer_id, start_date, created_at, updated_at)
		SELECT 'Autumn Open', 'single_elimination', 'upcoming', 16, 0, 50.00, 1000.00, id, NOW() + INTERVAL '14 days', NOW(), NOW()
		FROM users WHERE username = 'alice'
		ON CONFLICT DO NOTHING;
	`

	log.Println("Seeding demo data...")
	if _, err := db.Exec(seedSQL); err != nil {
		log.Fatalf("Failed to seed data: %v", err)
	}

	log.Println("✅ Seed completed successfully!")
}
