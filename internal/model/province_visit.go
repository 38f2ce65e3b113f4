package model

import "time"

// swagger:model
type ProvinceVisit struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	VisitCount int64     `gorm:"not null;default:0" json:"visitCount"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
