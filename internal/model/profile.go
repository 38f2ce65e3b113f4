package model

import "time"

// MaxSampleImages caps the portfolio images attached to one profile.
const MaxSampleImages = 5

// swagger:model
type Profile struct {
	BaseModel
	AccountID    uint          `gorm:"uniqueIndex;not null" json:"accountId"`
	Name         string        `gorm:"size:100;not null" json:"name"`
	City         string        `gorm:"size:50;not null" json:"city"`
	Gender       string        `gorm:"size:10;not null" json:"gender"`
	Skill        *string       `gorm:"size:50" json:"skill,omitempty"`
	Description  string        `gorm:"type:text" json:"description"`
	AvatarKey    string        `gorm:"size:255" json:"-"`
	AvatarURL    string        `gorm:"size:500" json:"avatarUrl,omitempty"`
	SampleImages []SampleImage `gorm:"foreignKey:ProfileID" json:"sampleImages"`
}

// swagger:model
type SampleImage struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProfileID  uint      `gorm:"index;not null" json:"profileId"`
	StorageKey string    `gorm:"size:255;not null" json:"-"`
	URL        string    `gorm:"size:500;not null" json:"url"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (SampleImage) TableName() string {
	return "profile_sample_images"
}
