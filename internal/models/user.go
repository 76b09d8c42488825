package models

import "gorm.io/gorm"

// User represents a GitHub identity with a custodial creator wallet.
// The wallet is generated lazily on the user's first deploy and never rotated.
type User struct {
	ID             string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	GithubUsername string `json:"github_username" gorm:"uniqueIndex;type:varchar(100)" validate:"required"`
	WalletAddress  string `json:"wallet_address" gorm:"type:varchar(42)"`
	EncryptedKey   string `gorm:"type:text"` // "iv_hex:ciphertext_hex", never the raw key. No json tag for security
	gorm.Model            // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
