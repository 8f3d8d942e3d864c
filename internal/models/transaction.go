package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry
type TransactionType string

const (
	TxDeposit     TransactionType = "deposit"
	TxWithdrawal  TransactionType = "withdrawal"
	TxStake       TransactionType = "stake"
	TxUnstake     TransactionType = "unstake"
	TxBet         TransactionType = "bet"
	TxRefund      TransactionType = "refund"
	TxNFTPurchase TransactionType = "nft_purchase"
	TxNFTSale     TransactionType = "nft_sale"
)

// TransactionStatus is the settlement state of a ledger entry
type TransactionStatus string

const (
	TxStatusPending   TransactionStatus = "pending"
	TxStatusCompleted TransactionStatus = "completed"
)

// Transaction is an append-only ledger entry for every balance-affecting
// event. Rows are immutable once written; pending withdrawals are resolved
// by an external settlement process, never here.
type Transaction struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	UserID           uint              `gorm:"not null;index;uniqueIndex:idx_tx_user_hash" json:"user_id"`
	User             *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Type             TransactionType   `gorm:"size:50;not null;index" json:"type"`
	Amount           decimal.Decimal   `gorm:"type:decimal(15,2);not null" json:"amount"`
	TokenType        TokenType         `gorm:"size:10;not null" json:"token_type"`
	Status           TransactionStatus `gorm:"size:20;not null" json:"status"`
	ReferenceID      *uint             `gorm:"index" json:"reference_id,omitempty"`
	TransactionHash  *string           `gorm:"size:255;uniqueIndex:idx_tx_user_hash" json:"transaction_hash,omitempty"`
	RecipientAddress *string           `gorm:"size:255" json:"recipient_address,omitempty"`
	CreatedAt        time.Time         `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for Transaction model
func (Transaction) TableName() string {
	return "transactions"
}
