package model

import "time"

type CooperationStatus string

const (
	CooperationPending  CooperationStatus = "pending"
	CooperationAccepted CooperationStatus = "accepted"
	CooperationDeclined CooperationStatus = "declined"
)

// swagger:model
type CooperationRequest struct {
	BaseModel
	AdID           uint              `gorm:"not null;uniqueIndex:idx_ad_sender" json:"adId"`
	SenderID       uint              `gorm:"not null;uniqueIndex:idx_ad_sender" json:"senderId"`
	RecipientID    uint              `gorm:"index;not null" json:"recipientId"`
	Message        string            `gorm:"size:1500" json:"message"`
	Status         CooperationStatus `gorm:"size:10;index;not null;default:pending" json:"status"`
	SenderPhone    *string           `gorm:"size:15" json:"senderPhone"`
	RecipientPhone *string           `gorm:"size:15" json:"recipientPhone"`
	AcknowledgedAt *time.Time        `json:"acknowledgedAt"`
}
