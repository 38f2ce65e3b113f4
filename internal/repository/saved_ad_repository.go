package repository

import (
	"context"

	"peymonak_backend/internal/model"

	"gorm.io/gorm"
)

type SavedAdRepository struct {
	DB *gorm.DB
}

func NewSavedAdRepository(db *gorm.DB) *SavedAdRepository {
	return &SavedAdRepository{DB: db}
}

func (r *SavedAdRepository) Create(ctx context.Context, saved *model.SavedAd) error {
	return r.DB.WithContext(ctx).Omit("Ad").Create(saved).Error
}

func (r *SavedAdRepository) FindByID(ctx context.Context, id uint) (*model.SavedAd, error) {
	var saved model.SavedAd
	err := r.DB.WithContext(ctx).First(&saved, id).Error
	return &saved, err
}

func (r *SavedAdRepository) ListByAccount(ctx context.Context, accountID uint) ([]model.SavedAd, error) {
	var saved []model.SavedAd
	err := r.DB.WithContext(ctx).
		Preload("Ad").
		Preload("Ad.Images").
		Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC").
		Find(&saved).Error
	return saved, err
}

func (r *SavedAdRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&model.SavedAd{}, id).Error
}
