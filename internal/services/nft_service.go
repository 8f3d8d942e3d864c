package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"giperarena/internal/cache"
	"giperarena/internal/models"
)

// platformFeeRate is the marketplace cut taken from every NFT sale
var platformFeeRate = decimal.NewFromFloat(0.05)

// NFTService handles the NFT marketplace: minting, listing and purchases
type NFTService struct {
	db    *gorm.DB
	store cache.Store
}

// NewNFTService creates a new NFTService
func NewNFTService(db *gorm.DB, store cache.Store) *NFTService {
	return &NFTService{db: db, store: store}
}

// NFTFilters narrows the marketplace listing
type NFTFilters struct {
	NFTType  string
	OwnerID  *uint
	IsListed *bool
}

// GetNFTs returns NFTs matching the filters, newest first
func (s *NFTService) GetNFTs(ctx context.Context, filters NFTFilters, limit, offset int) ([]models.NFT, error) {
	if limit <= 0 {
		limit = 20
	}

	query := s.db.WithContext(ctx).Model(&models.NFT{}).Preload("Owner")
	if filters.NFTType != "" {
		query = query.Where("nft_type = ?", filters.NFTType)
	}
	if filters.OwnerID != nil {
		query = query.Where("owner_id = ?", *filters.OwnerID)
	}
	if filters.IsListed != nil {
		query = query.Where("is_listed = ?", *filters.IsListed)
	}

	var nfts []models.NFT
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&nfts).Error
	if err != nil {
		return nil, err
	}
	return nfts, nil
}

// GetNFTByID returns one NFT, served cache-aside
func (s *NFTService) GetNFTByID(ctx context.Context, nftID uint) (*models.NFT, error) {
	var nft models.NFT
	if cache.GetJSON(ctx, s.store, cache.NFTKey(nftID), &nft) {
		return &nft, nil
	}

	err := s.db.WithContext(ctx).Preload("Owner").First(&nft, nftID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("nft: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	cache.SetJSON(ctx, s.store, cache.NFTKey(nftID), &nft, cache.TTLSlow)
	return &nft, nil
}

// GetUserNFTs returns all NFTs owned by a user
func (s *NFTService) GetUserNFTs(ctx context.Context, userID uint, nftType string, limit, offset int) ([]models.NFT, error) {
	owner := userID
	return s.GetNFTs(ctx, NFTFilters{NFTType: nftType, OwnerID: &owner}, limit, offset)
}

// MintRequest carries the fields for minting a new NFT
type MintRequest struct {
	OwnerID     uint
	NFTType     string
	Name        string
	Description string
	MintAddress string
	MetadataURI *string
	ImageURL    *string
	Rarity      string
	Attributes  models.JSONB
}

// MintNFT creates a new unlisted NFT. A mint address is generated when the
// caller does not supply one.
func (s *NFTService) MintNFT(ctx context.Context, req MintRequest) (*models.NFT, error) {
	mintAddress := req.MintAddress
	if mintAddress == "" {
		mintAddress = "mint-" + strings.ReplaceAll(uuid.New().String(), "-", "")
	}

	rarity := req.Rarity
	if rarity == "" {
		rarity = "common"
	}

	nft := models.NFT{
		OwnerID:     req.OwnerID,
		NFTType:     req.NFTType,
		Name:        req.Name,
		Description: req.Description,
		MintAddress: mintAddress,
		MetadataURI: req.MetadataURI,
		ImageURL:    req.ImageURL,
		Rarity:      rarity,
		Attributes:  req.Attributes,
		IsListed:    false,
	}

	if err := s.db.WithContext(ctx).Create(&nft).Error; err != nil {
		return nil, fmt.Errorf("failed to mint nft: %w", err)
	}
	return &nft, nil
}

// ListNFTForSale marks an NFT as listed at the given price
func (s *NFTService) ListNFTForSale(ctx context.Context, nftID, ownerID uint, price decimal.Decimal) (*models.NFT, error) {
	if price.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("list price must be positive")
	}

	nft, err := s.getOwnedNFT(ctx, nftID, ownerID)
	if err != nil {
		return nil, err
	}

	nft.IsListed = true
	nft.ListPrice = &price
	if err := s.db.WithContext(ctx).Save(nft).Error; err != nil {
		return nil, err
	}

	s.store.Invalidate(ctx, cache.NFTKey(nftID))
	return nft, nil
}

// UnlistNFT removes an NFT from sale
func (s *NFTService) UnlistNFT(ctx context.Context, nftID, ownerID uint) (*models.NFT, error) {
	nft, err := s.getOwnedNFT(ctx, nftID, ownerID)
	if err != nil {
		return nil, err
	}

	nft.IsListed = false
	nft.ListPrice = nil
	if err := s.db.WithContext(ctx).Model(nft).Select("is_listed", "list_price").Updates(nft).Error; err != nil {
		return nil, err
	}

	s.store.Invalidate(ctx, cache.NFTKey(nftID))
	return nft, nil
}

// BuyNFT purchases a listed NFT: debits the buyer, credits the seller minus
// the 5% platform fee, transfers ownership and writes both ledger entries,
// all in one transaction.
func (s *NFTService) BuyNFT(ctx context.Context, nftID, buyerID uint) (*models.NFTSale, error) {
	var sale models.NFTSale

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var nft models.NFT
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&nft, nftID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("nft: %w", ErrNotFound)
		}
		if err != nil {
			return err
		}

		if !nft.IsListed || nft.ListPrice == nil {
			return ErrNFTNotListed
		}
		if nft.OwnerID == buyerID {
			return ErrOwnNFT
		}

		price := *nft.ListPrice
		sellerID := nft.OwnerID

		buyerWallet, err := lockWallet(tx, buyerID)
		if err != nil {
			return err
		}
		if buyerWallet.PACBalance.LessThan(price) {
			return ErrInsufficientBalance
		}

		platformFee := price.Mul(platformFeeRate).Round(2)
		sellerAmount := price.Sub(platformFee)

		buyerWallet.PACBalance = buyerWallet.PACBalance.Sub(price)
		if err := tx.Save(buyerWallet).Error; err != nil {
			return fmt.Errorf("failed to debit buyer: %w", err)
		}

		sellerWallet, err := lockOrCreateWallet(tx, sellerID)
		if err != nil {
			return err
		}
		sellerWallet.PACBalance = sellerWallet.PACBalance.Add(sellerAmount)
		if err := tx.Save(sellerWallet).Error; err != nil {
			return fmt.Errorf("failed to credit seller: %w", err)
		}

		nft.OwnerID = buyerID
		nft.IsListed = false
		nft.ListPrice = nil
		if err := tx.Model(&nft).Select("owner_id", "is_listed", "list_price").Updates(&nft).Error; err != nil {
			return fmt.Errorf("failed to transfer ownership: %w", err)
		}

		entries := []models.Transaction{
			{
				UserID:      buyerID,
				Type:        models.TxNFTPurchase,
				Amount:      price,
				TokenType:   models.TokenPAC,
				Status:      models.TxStatusCompleted,
				ReferenceID: &nft.ID,
			},
			{
				UserID:      sellerID,
				Type:        models.TxNFTSale,
				Amount:      sellerAmount,
				TokenType:   models.TokenPAC,
				Status:      models.TxStatusCompleted,
				ReferenceID: &nft.ID,
			},
		}
		if err := tx.Create(&entries).Error; err != nil {
			return fmt.Errorf("failed to record sale: %w", err)
		}

		sale = models.NFTSale{
			NFTID:       nftID,
			BuyerID:     buyerID,
			SellerID:    sellerID,
			Price:       price,
			PlatformFee: platformFee,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.store.Invalidate(ctx,
		cache.NFTKey(nftID),
		cache.WalletKey(sale.BuyerID),
		cache.WalletKey(sale.SellerID),
	)
	return &sale, nil
}

// TransferNFT moves ownership without payment and delists the NFT
func (s *NFTService) TransferNFT(ctx context.Context, nftID, ownerID, toUserID uint) (*models.NFT, error) {
	nft, err := s.getOwnedNFT(ctx, nftID, ownerID)
	if err != nil {
		return nil, err
	}

	nft.OwnerID = toUserID
	nft.IsListed = false
	nft.ListPrice = nil
	if err := s.db.WithContext(ctx).Model(nft).Select("owner_id", "is_listed", "list_price").Updates(nft).Error; err != nil {
		return nil, err
	}

	s.store.Invalidate(ctx, cache.NFTKey(nftID))
	return nft, nil
}

// getOwnedNFT loads an NFT and verifies ownership
func (s *NFTService) getOwnedNFT(ctx context.Context, nftID, ownerID uint) (*models.NFT, error) {
	var nft models.NFT
	err := s.db.WithContext(ctx).First(&nft, nftID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("nft: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if nft.OwnerID != ownerID {
		return nil, fmt.Errorf("nft: %w", ErrNotFound)
	}
	return &nft, nil
}
