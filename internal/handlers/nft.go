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

// NFTHandler handles NFT marketplace endpoints
type NFTHandler struct {
	nftService *services.NFTService
}

// NewNFTHandler creates a new NFTHandler
func NewNFTHandler(nftService *services.NFTService) *NFTHandler {
	return &NFTHandler{
		nftService: nftService,
	}
}

// GetNFTs lists NFTs on the marketplace
// GET /api/v1/nfts
func (h *NFTHandler) GetNFTs(c *gin.Context) {
	limit, offset := parsePagination(c)

	filters := services.NFTFilters{
		NFTType: c.Query("nft_type"),
	}
	if ownerStr := c.Query("owner_id"); ownerStr != "" {
		if id, err := strconv.ParseUint(ownerStr, 10, 64); err == nil {
			ownerID := uint(id)
			filters.OwnerID = &ownerID
		}
	}
	if listedStr := c.Query("is_listed"); listedStr != "" {
		listed := listedStr == "true"
		filters.IsListed = &listed
	}

	nfts, err := h.nftService.GetNFTs(c.Request.Context(), filters, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"nfts":  nfts,
		"total": len(nfts),
	})
}

// GetNFT returns one NFT
// GET /api/v1/nfts/:id
func (h *NFTHandler) GetNFT(c *gin.Context) {
	nftID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	nft, err := h.nftService.GetNFTByID(c.Request.Context(), nftID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, nft)
}

// GetMyNFTs lists the current user's NFTs
// GET /api/v1/nfts/my
func (h *NFTHandler) GetMyNFTs(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := parsePagination(c)

	nfts, err := h.nftService.GetUserNFTs(c.Request.Context(), userID, c.Query("nft_type"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"nfts":  nfts,
		"total": len(nfts),
	})
}

// MintNFT creates a new NFT owned by the current user
// POST /api/v1/nfts
func (h *NFTHandler) MintNFT(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		NFTType     string       `json:"nft_type" binding:"required"`
		Name        string       `json:"name" binding:"required"`
		Description string       `json:"description"`
		MintAddress string       `json:"mint_address"`
		MetadataURI *string      `json:"metadata_uri"`
		ImageURL    *string      `json:"image_url"`
		Rarity      string       `json:"rarity"`
		Attributes  models.JSONB `json:"attributes"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	nft, err := h.nftService.MintNFT(c.Request.Context(), services.MintRequest{
		OwnerID:     userID,
		NFTType:     req.NFTType,
		Name:        req.Name,
		Description: req.Description,
		MintAddress: req.MintAddress,
		MetadataURI: req.MetadataURI,
		ImageURL:    req.ImageURL,
		Rarity:      req.Rarity,
		Attributes:  req.Attributes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, nft)
}

// ListNFT puts an NFT up for sale
// POST /api/v1/nfts/:id/list
func (h *NFTHandler) ListNFT(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	nftID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Price decimal.Decimal `json:"price" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	nft, err := h.nftService.ListNFTForSale(c.Request.Context(), nftID, userID, req.Price)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, nft)
}

// UnlistNFT removes an NFT from sale
// POST /api/v1/nfts/:id/unlist
func (h *NFTHandler) UnlistNFT(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	nftID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	nft, err := h.nftService.UnlistNFT(c.Request.Context(), nftID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, nft)
}

// BuyNFT purchases a listed NFT
// POST /api/v1/nfts/:id/buy
func (h *NFTHandler) BuyNFT(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	nftID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	sale, err := h.nftService.BuyNFT(c.Request.Context(), nftID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "purchase successful",
		"sale":    sale,
	})
}

// TransferNFT gifts an NFT to another user
// POST /api/v1/nfts/:id/transfer
func (h *NFTHandler) TransferNFT(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	nftID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		ToUserID uint `json:"to_user_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	nft, err := h.nftService.TransferNFT(c.Request.Context(), nftID, userID, req.ToUserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, nft)
}
