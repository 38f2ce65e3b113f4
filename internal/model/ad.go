package model

import "time"

type AdStatus string

const (
	AdStatusActive   AdStatus = "active"
	AdStatusInactive AdStatus = "inactive"
)

func (s AdStatus) Valid() bool {
	return s == AdStatusActive || s == AdStatusInactive
}

const (
	CooperationIndividual = "individual"
	CooperationCompany    = "company"
)

// FeeNegotiable is the only non-numeric fee an ad may carry.
const FeeNegotiable = "negotiable"

const (
	MaxAdImages         = 5
	MaxAdTitleLength    = 38
	MaxAdFeeLength      = 20
	MaxReportMessageLen = 1500
)

// swagger:model
type Ad struct {
	BaseModel
	AccountID       uint      `gorm:"index;not null" json:"accountId"`
	OwnerName       string    `gorm:"size:100" json:"ownerName"`
	OwnerRole       Role      `gorm:"size:20" json:"ownerRole"`
	PhoneNumber     string    `gorm:"size:15" json:"phoneNumber"`
	Gender          string    `gorm:"size:10" json:"gender"`
	Title           string    `gorm:"size:38;not null" json:"title"`
	Description     string    `gorm:"type:text;not null" json:"description"`
	Fee             string    `gorm:"size:20;not null" json:"fee"`
	Province        string    `gorm:"size:50;index;not null" json:"province"`
	City            string    `gorm:"size:50" json:"city"`
	CooperationKind *string   `gorm:"size:20" json:"cooperationKind,omitempty"`
	Skill           *string   `gorm:"size:50" json:"skill,omitempty"`
	Status          AdStatus  `gorm:"size:10;index;not null;default:active" json:"status"`
	Images          []AdImage `gorm:"foreignKey:AdID" json:"images"`
}

// swagger:model
type AdImage struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	AdID       uint      `gorm:"index;not null" json:"adId"`
	StorageKey string    `gorm:"size:255;not null" json:"-"`
	URL        string    `gorm:"size:500;not null" json:"url"`
	CreatedAt  time.Time `json:"createdAt"`
}

// swagger:model
type AdReport struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	AdID       uint      `gorm:"index;not null" json:"adId"`
	ReporterID uint      `gorm:"index;not null" json:"reporterId"`
	Message    string    `gorm:"size:1500;not null" json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}
