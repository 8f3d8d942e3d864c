package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"giperarena/internal/auth"
	"giperarena/internal/services"
)

// SessionHandler handles game session endpoints
type SessionHandler struct {
	sessionService *services.SessionService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessionService *services.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
	}
}

// GetSessions lists game sessions
// GET /api/v1/sessions
func (h *SessionHandler) GetSessions(c *gin.Context) {
	limit, offset := parsePagination(c)

	filters := services.SessionFilters{
		Status: c.Query("status"),
	}
	if arenaStr := c.Query("arena_id"); arenaStr != "" {
		if id, err := strconv.ParseUint(arenaStr, 10, 64); err == nil {
			arenaID := uint(id)
			filters.ArenaID = &arenaID
		}
	}
	if playerStr := c.Query("player_id"); playerStr != "" {
		if id, err := strconv.ParseUint(playerStr, 10, 64); err == nil {
			playerID := uint(id)
			filters.PlayerID = &playerID
		}
	}

	sessions, err := h.sessionService.GetSessions(c.Request.Context(), filters, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"total":    len(sessions),
	})
}

// GetSession returns one game session
// GET /api/v1/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	session, err := h.sessionService.GetSessionByID(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// CreateSession opens a waiting session at an arena for the current user
// POST /api/v1/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		ArenaID uint `json:"arena_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessionService.CreateSession(c.Request.Context(), req.ArenaID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// StartSession transitions a waiting session to active
// POST /api/v1/sessions/:id/start
func (h *SessionHandler) StartSession(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	session, err := h.sessionService.StartSession(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// EndSession completes an active session with an optional score and replay
// POST /api/v1/sessions/:id/end
func (h *SessionHandler) EndSession(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Score     *int    `json:"score"`
		ReplayURL *string `json:"replay_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessionService.EndSession(c.Request.Context(), sessionID, req.Score, req.ReplayURL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// CancelSession cancels a waiting or active session
// POST /api/v1/sessions/:id/cancel
func (h *SessionHandler) CancelSession(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	session, err := h.sessionService.CancelSession(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// GetMyHistory returns the current user's finished sessions
// GET /api/v1/sessions/history
func (h *SessionHandler) GetMyHistory(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := parsePagination(c)

	sessions, err := h.sessionService.GetUserGameHistory(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"total":    len(sessions),
	})
}
