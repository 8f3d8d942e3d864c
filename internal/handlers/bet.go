package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"giperarena/internal/auth"
	"giperarena/internal/models"
	"giperarena/internal/services"
)

// BetHandler handles betting market and bet endpoints
type BetHandler struct {
	betService *services.BetService
}

// NewBetHandler creates a new BetHandler
func NewBetHandler(betService *services.BetService) *BetHandler {
	return &BetHandler{
		betService: betService,
	}
}

// GetMarkets lists betting markets
// GET /api/v1/betting/markets
func (h *BetHandler) GetMarkets(c *gin.Context) {
	limit, offset := parsePagination(c)

	filters := services.MarketFilters{
		Status:    c.Query("status"),
		EventType: c.Query("event_type"),
	}
	if eventIDStr := c.Query("event_id"); eventIDStr != "" {
		if id, err := strconv.ParseUint(eventIDStr, 10, 64); err == nil {
			eventID := uint(id)
			filters.EventID = &eventID
		}
	}

	markets, err := h.betService.GetBettingMarkets(c.Request.Context(), filters, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"markets": markets,
		"total":   len(markets),
	})
}

// GetMarket returns one betting market
// GET /api/v1/betting/markets/:id
func (h *BetHandler) GetMarket(c *gin.Context) {
	marketID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	market, err := h.betService.GetBettingMarketByID(c.Request.Context(), marketID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, market)
}

// PlaceBet places a bet on a market outcome
// POST /api/v1/betting/bets
func (h *BetHandler) PlaceBet(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		MarketID uint            `json:"market_id" binding:"required"`
		Outcome  string          `json:"outcome" binding:"required"`
		Amount   decimal.Decimal `json:"amount" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bet, err := h.betService.PlaceBet(c.Request.Context(), userID, req.MarketID,
		models.BetOutcome(req.Outcome), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bet)
}

// CancelBet cancels a pending bet while the market is still open
// POST /api/v1/betting/bets/:id/cancel
func (h *BetHandler) CancelBet(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	betID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	bet, err := h.betService.GetBetByID(c.Request.Context(), betID)
	if err != nil {
		respondError(c, err)
		return
	}
	if bet.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your bet"})
		return
	}

	if err := h.betService.CancelBet(c.Request.Context(), betID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "bet cancelled"})
}

// GetUserBets lists the current user's bets
// GET /api/v1/betting/bets
func (h *BetHandler) GetUserBets(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := parsePagination(c)

	bets, err := h.betService.GetUserBets(c.Request.Context(), userID, c.Query("status"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bets":  bets,
		"total": len(bets),
	})
}

// GetBettingStats returns the current user's betting aggregates
// GET /api/v1/betting/stats
func (h *BetHandler) GetBettingStats(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	stats, err := h.betService.GetUserBettingStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
