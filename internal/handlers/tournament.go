package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"giperarena/internal/auth"
	"giperarena/internal/models"
	"giperarena/internal/services"
)

// TournamentHandler handles tournament endpoints
type TournamentHandler struct {
	tournamentService *services.TournamentService
}

// NewTournamentHandler creates a new TournamentHandler
func NewTournamentHandler(tournamentService *services.TournamentService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: tournamentService,
	}
}

// GetTournaments lists tournaments
// GET /api/v1/tournaments
func (h *TournamentHandler) GetTournaments(c *gin.Context) {
	limit, offset := parsePagination(c)

	filters := services.TournamentFilters{
		Status:         c.Query("status"),
		TournamentType: c.Query("tournament_type"),
	}
	if arenaStr := c.Query("arena_id"); arenaStr != "" {
		if id, err := strconv.ParseUint(arenaStr, 10, 64); err == nil {
			arenaID := uint(id)
			filters.ArenaID = &arenaID
		}
	}

	tournaments, err := h.tournamentService.GetTournaments(c.Request.Context(), filters, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tournaments": tournaments,
		"total":       len(tournaments),
	})
}

// GetTournament returns one tournament
// GET /api/v1/tournaments/:id
func (h *TournamentHandler) GetTournament(c *gin.Context) {
	tournamentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tournament, err := h.tournamentService.GetTournamentByID(c.Request.Context(), tournamentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tournament)
}

// CreateTournament creates a new tournament organized by the current user
// POST /api/v1/tournaments
func (h *TournamentHandler) CreateTournament(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var tournament models.Tournament
	if err := c.ShouldBindJSON(&tournament); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tournament.OrganizerID = userID

	if err := h.tournamentService.CreateTournament(c.Request.Context(), &tournament); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tournament)
}

// Register adds the current user to a tournament
// POST /api/v1/tournaments/:id/register
func (h *TournamentHandler) Register(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	tournamentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	registration, err := h.tournamentService.RegisterParticipant(c.Request.Context(), tournamentID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, registration)
}

// Unregister removes the current user from an upcoming tournament
// POST /api/v1/tournaments/:id/unregister
func (h *TournamentHandler) Unregister(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	tournamentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.tournamentService.UnregisterParticipant(c.Request.Context(), tournamentID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "unregistered"})
}

// GetParticipants lists a tournament's registrations
// GET /api/v1/tournaments/:id/participants
func (h *TournamentHandler) GetParticipants(c *gin.Context) {
	tournamentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	participants, err := h.tournamentService.GetTournamentParticipants(c.Request.Context(), tournamentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"participants": participants,
		"total":        len(participants),
	})
}

// GetBracket returns the tournament bracket
// GET /api/v1/tournaments/:id/bracket
func (h *TournamentHandler) GetBracket(c *gin.Context) {
	tournamentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	bracket, err := h.tournamentService.GetTournamentBracket(c.Request.Context(), tournamentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bracket": bracket})
}

// UpdateBracket replaces the tournament bracket
// PUT /api/v1/tournaments/:id/bracket
func (h *TournamentHandler) UpdateBracket(c *gin.Context) {
	tournamentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Bracket models.JSONB `json:"bracket" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.tournamentService.UpdateBracket(c.Request.Context(), tournamentID, req.Bracket); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "bracket updated"})
}

// StartTournament transitions a tournament to active
// POST /api/v1/tournaments/:id/start
func (h *TournamentHandler) StartTournament(c *gin.Context) {
	tournamentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tournament, err := h.tournamentService.StartTournament(c.Request.Context(), tournamentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tournament)
}

// CompleteTournament transitions a tournament to completed
// POST /api/v1/tournaments/:id/complete
func (h *TournamentHandler) CompleteTournament(c *gin.Context) {
	tournamentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		WinnerID *uint `json:"winner_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tournament, err := h.tournamentService.CompleteTournament(c.Request.Context(), tournamentID, req.WinnerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tournament)
}
