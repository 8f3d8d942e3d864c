package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"giperarena/internal/models"
	"giperarena/internal/services"
)

// ArenaHandler handles arena endpoints
type ArenaHandler struct {
	arenaService *services.ArenaService
}

// NewArenaHandler creates a new ArenaHandler
func NewArenaHandler(arenaService *services.ArenaService) *ArenaHandler {
	return &ArenaHandler{
		arenaService: arenaService,
	}
}

// GetArenas lists arenas
// GET /api/v1/arenas
func (h *ArenaHandler) GetArenas(c *gin.Context) {
	limit, offset := parsePagination(c)

	filters := services.ArenaFilters{
		Status:   c.Query("status"),
		GameType: c.Query("game_type"),
		Country:  c.Query("country"),
		City:     c.Query("city"),
	}

	arenas, err := h.arenaService.GetArenas(c.Request.Context(), filters, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"arenas": arenas,
		"total":  len(arenas),
	})
}

// GetArena returns one arena
// GET /api/v1/arenas/:id
func (h *ArenaHandler) GetArena(c *gin.Context) {
	arenaID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	arena, err := h.arenaService.GetArenaByID(c.Request.Context(), arenaID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, arena)
}

// CreateArena creates a new arena listing
// POST /api/v1/arenas
func (h *ArenaHandler) CreateArena(c *gin.Context) {
	var arena models.Arena
	if err := c.ShouldBindJSON(&arena); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.arenaService.CreateArena(c.Request.Context(), &arena); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, arena)
}

// UpdateArena applies updates to an arena
// PUT /api/v1/arenas/:id
func (h *ArenaHandler) UpdateArena(c *gin.Context) {
	arenaID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	arena, err := h.arenaService.UpdateArena(c.Request.Context(), arenaID, updates)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, arena)
}

// DeleteArena removes an arena listing
// DELETE /api/v1/arenas/:id
func (h *ArenaHandler) DeleteArena(c *gin.Context) {
	arenaID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.arenaService.DeleteArena(c.Request.Context(), arenaID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "arena deleted"})
}

// SearchArenas finds arenas by name or description
// GET /api/v1/arenas/search
func (h *ArenaHandler) SearchArenas(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "search query required"})
		return
	}

	limit, offset := parsePagination(c)

	arenas, err := h.arenaService.SearchArenas(c.Request.Context(), query, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"arenas": arenas,
		"total":  len(arenas),
	})
}

// GetArenaStats returns an arena's activity aggregates
// GET /api/v1/arenas/:id/stats
func (h *ArenaHandler) GetArenaStats(c *gin.Context) {
	arenaID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	stats, err := h.arenaService.GetArenaStats(c.Request.Context(), arenaID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
