package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"giperarena/internal/auth"
	"giperarena/internal/models"
	"giperarena/internal/services"
)

// WalletHandler handles wallet, staking and ledger endpoints
type WalletHandler struct {
	walletService *services.WalletService
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(walletService *services.WalletService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

// GetWallet returns the current user's balances
// GET /api/v1/wallet
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	wallet, err := h.walletService.GetWallet(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, wallet)
}

// GetTransactions returns the current user's ledger history
// GET /api/v1/wallet/transactions
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := parsePagination(c)

	transactions, err := h.walletService.GetTransactions(c.Request.Context(), userID, c.Query("type"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": transactions,
		"total":        len(transactions),
	})
}

// Deposit credits tokens confirmed on-chain
// POST /api/v1/wallet/deposit
func (h *WalletHandler) Deposit(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		Amount          decimal.Decimal `json:"amount" binding:"required"`
		TokenType       string          `json:"token_type" binding:"required"`
		TransactionHash string          `json:"transaction_hash" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.walletService.Deposit(c.Request.Context(), userID, req.Amount,
		models.TokenType(req.TokenType), req.TransactionHash)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "deposit successful",
		"transaction": entry,
	})
}

// Withdraw debits tokens and queues a pending withdrawal
// POST /api/v1/wallet/withdraw
func (h *WalletHandler) Withdraw(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		Amount           decimal.Decimal `json:"amount" binding:"required"`
		TokenType        string          `json:"token_type" binding:"required"`
		RecipientAddress string          `json:"recipient_address" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.walletService.Withdraw(c.Request.Context(), userID, req.Amount,
		models.TokenType(req.TokenType), req.RecipientAddress)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "withdrawal queued",
		"transaction": entry,
	})
}

// Stake locks PAC tokens for a staking period
// POST /api/v1/wallet/stake
func (h *WalletHandler) Stake(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		Amount       decimal.Decimal `json:"amount" binding:"required"`
		DurationDays int             `json:"duration_days" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.walletService.Stake(c.Request.Context(), userID, req.Amount, req.DurationDays)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "stake successful",
		"transaction": entry,
	})
}

// Unstake releases the staked amount plus rewards
// POST /api/v1/wallet/unstake
func (h *WalletHandler) Unstake(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	entry, err := h.walletService.Unstake(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "unstake successful",
		"transaction": entry,
	})
}

// GetStakingInfo returns the current staking position
// GET /api/v1/wallet/staking
func (h *WalletHandler) GetStakingInfo(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	info, err := h.walletService.GetStakingInfo(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}
