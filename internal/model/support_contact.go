package model

// swagger:model
type SupportContact struct {
	BaseModel
	Email        string `gorm:"size:254" json:"email"`
	TelegramLink string `gorm:"size:200" json:"telegramLink"`
	EitaaLink    string `gorm:"size:200" json:"eitaaLink"`
}
