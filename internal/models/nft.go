package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// NFT represents a marketplace collectible owned by a user
type NFT struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	OwnerID     uint             `gorm:"not null;index" json:"owner_id"`
	Owner       *User            `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	NFTType     string           `gorm:"size:50;not null;index" json:"nft_type"` // avatar, arena_pass, trophy
	Name        string           `gorm:"size:255;not null" json:"name"`
	Description string           `gorm:"type:text" json:"description"`
	MintAddress string           `gorm:"size:255;uniqueIndex;not null" json:"mint_address"`
	MetadataURI *string          `gorm:"size:500" json:"metadata_uri,omitempty"`
	ImageURL    *string          `gorm:"size:500" json:"image_url,omitempty"`
	Rarity      string           `gorm:"size:20;not null;default:common" json:"rarity"`
	Attributes  JSONB            `gorm:"type:jsonb" json:"attributes"`
	IsListed    bool             `gorm:"not null;default:false;index" json:"is_listed"`
	ListPrice   *decimal.Decimal `gorm:"type:decimal(15,2)" json:"list_price,omitempty"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// TableName specifies the table name for NFT model
func (NFT) TableName() string {
	return "nfts"
}

// NFTSale summarizes a completed marketplace purchase
type NFTSale struct {
	NFTID       uint            `json:"nft_id"`
	BuyerID     uint            `json:"buyer_id"`
	SellerID    uint            `json:"seller_id"`
	Price       decimal.Decimal `json:"price"`
	PlatformFee decimal.Decimal `json:"platform_fee"`
}
