package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"giperarena/internal/auth"
	"giperarena/internal/cache"
	"giperarena/internal/config"
	"giperarena/internal/database"
	"giperarena/internal/handlers"
	"giperarena/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Connect to Redis. The API keeps working without it: caching degrades
	// to pass-through and the rate limiter fails open.
	var rdb *redis.Client
	var store cache.Store
	rdb, err = cache.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("Redis unavailable, running without cache: %v", err)
		store = cache.NewNop()
		rdb = nil
	} else {
		store = cache.NewRedisStore(rdb)
	}

	// Initialize services
	authService := services.NewAuthService(database.GetDB())
	userService := services.NewUserService(database.GetDB(), store)
	walletService := services.NewWalletService(database.GetDB(), store)
	betService := services.NewBetService(database.GetDB(), store)
	nftService := services.NewNFTService(database.GetDB(), store)
	tournamentService := services.NewTournamentService(database.GetDB(), store)
	arenaService := services.NewArenaService(database.GetDB(), store)
	sessionService := services.NewSessionService(database.GetDB(), store)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, userService)
	userHandler := handlers.NewUserHandler(userService)
	walletHandler := handlers.NewWalletHandler(walletService)
	betHandler := handlers.NewBetHandler(betService)
	nftHandler := handlers.NewNFTHandler(nftService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	arenaHandler := handlers.NewArenaHandler(arenaService)
	sessionHandler := handlers.NewSessionHandler(sessionService)

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173", // Vite dev server
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if cfg.App.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.App.FrontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	v1 := router.Group("/api/v1")
	v1.Use(auth.RateLimit(rdb, time.Minute, 300))

	// Authentication routes (public)
	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/wallet", auth.RateLimit(rdb, time.Minute, 10), authHandler.WalletLogin)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	// Authenticated /auth/me route
	authProtected := v1.Group("/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", authHandler.GetMe)
	}

	// Public read routes
	v1.GET("/betting/markets", betHandler.GetMarkets)
	v1.GET("/betting/markets/:id", betHandler.GetMarket)
	v1.GET("/nfts", nftHandler.GetNFTs)
	v1.GET("/tournaments", tournamentHandler.GetTournaments)
	v1.GET("/tournaments/:id", tournamentHandler.GetTournament)
	v1.GET("/tournaments/:id/participants", tournamentHandler.GetParticipants)
	v1.GET("/tournaments/:id/bracket", tournamentHandler.GetBracket)
	v1.GET("/arenas", arenaHandler.GetArenas)
	v1.GET("/arenas/search", arenaHandler.SearchArenas)
	v1.GET("/arenas/:id", arenaHandler.GetArena)
	v1.GET("/arenas/:id/stats", arenaHandler.GetArenaStats)
	v1.GET("/users/search", userHandler.SearchUsers)
	v1.GET("/users/:id", userHandler.GetUser)
	v1.GET("/users/:id/stats", userHandler.GetUserStats)

	// Protected routes
	api := v1.Group("")
	api.Use(auth.AuthMiddleware())
	{
		// Wallet endpoints
		api.GET("/wallet", walletHandler.GetWallet)
		api.GET("/wallet/transactions", walletHandler.GetTransactions)
		api.GET("/wallet/staking", walletHandler.GetStakingInfo)
		api.POST("/wallet/deposit", walletHandler.Deposit)
		api.POST("/wallet/withdraw", walletHandler.Withdraw)
		api.POST("/wallet/stake", walletHandler.Stake)
		api.POST("/wallet/unstake", walletHandler.Unstake)

		// Betting endpoints
		api.GET("/betting/bets", betHandler.GetUserBets)
		api.GET("/betting/stats", betHandler.GetBettingStats)
		api.POST("/betting/bets", betHandler.PlaceBet)
		api.POST("/betting/bets/:id/cancel", betHandler.CancelBet)

		// NFT endpoints
		api.GET("/nfts/my", nftHandler.GetMyNFTs)
		api.GET("/nfts/:id", nftHandler.GetNFT)
		api.POST("/nfts", nftHandler.MintNFT)
		api.POST("/nfts/:id/list", nftHandler.ListNFT)
		api.POST("/nfts/:id/unlist", nftHandler.UnlistNFT)
		api.POST("/nfts/:id/buy", nftHandler.BuyNFT)
		api.POST("/nfts/:id/transfer", nftHandler.TransferNFT)

		// Tournament endpoints
		api.POST("/tournaments", tournamentHandler.CreateTournament)
		api.POST("/tournaments/:id/register", tournamentHandler.Register)
		api.POST("/tournaments/:id/unregister", tournamentHandler.Unregister)
		api.PUT("/tournaments/:id/bracket", tournamentHandler.UpdateBracket)
		api.POST("/tournaments/:id/start", tournamentHandler.StartTournament)
		api.POST("/tournaments/:id/complete", tournamentHandler.CompleteTournament)

		// Arena management
		api.POST("/arenas", arenaHandler.CreateArena)
		api.PUT("/arenas/:id", arenaHandler.UpdateArena)
		api.DELETE("/arenas/:id", arenaHandler.DeleteArena)

		// Game session endpoints
		api.GET("/sessions", sessionHandler.GetSessions)
		api.GET("/sessions/history", sessionHandler.GetMyHistory)
		api.GET("/sessions/:id", sessionHandler.GetSession)
		api.POST("/sessions", sessionHandler.CreateSession)
		api.POST("/sessions/:id/start", sessionHandler.StartSession)
		api.POST("/sessions/:id/end", sessionHandler.EndSession)
		api.POST("/sessions/:id/cancel", sessionHandler.CancelSession)

		// User account endpoints
		api.PUT("/users/me", userHandler.UpdateProfile)
		api.DELETE("/users/me", userHandler.DeactivateAccount)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if rdb != nil {
		_ = rdb.Close()
	}

	log.Println("Server exited")
}
