package model

import "time"

// swagger:model
type SavedAd struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID uint      `gorm:"not null;uniqueIndex:idx_account_ad" json:"accountId"`
	AdID      uint      `gorm:"not null;uniqueIndex:idx_account_ad" json:"adId"`
	Ad        *Ad       `gorm:"foreignKey:AdID" json:"ad,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
