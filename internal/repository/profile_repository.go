package repository

import (
	"context"

	"peymonak_backend/internal/model"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	DB *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

func (r *ProfileRepository) WithTx(tx *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: tx}
}

func (r *ProfileRepository) Create(ctx context.Context, profile *model.Profile) error {
	return r.DB.WithContext(ctx).Create(profile).Error
}

// Update saves the profile's own columns; sample images are managed separately.
func (r *ProfileRepository) Update(ctx context.Context, profile *model.Profile) error {
	return r.DB.WithContext(ctx).Omit("SampleImages").Save(profile).Error
}

func (r *ProfileRepository) FindByAccountID(ctx context.Context, accountID uint) (*model.Profile, error) {
	var profile model.Profile
	err := r.DB.WithContext(ctx).
		Preload("SampleImages", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("account_id = ?", accountID).
		First(&profile).Error
	return &profile, err
}

func (r *ProfileRepository) CountSamples(ctx context.Context, profileID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.SampleImage{}).Where("profile_id = ?", profileID).Count(&count).Error
	return count, err
}

func (r *ProfileRepository) AddSamples(ctx context.Context, samples []model.SampleImage) error {
	if len(samples) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Create(&samples).Error
}

func (r *ProfileRepository) FindSample(ctx context.Context, id uint) (*model.SampleImage, error) {
	var sample model.SampleImage
	err := r.DB.WithContext(ctx).First(&sample, id).Error
	return &sample, err
}

func (r *ProfileRepository) DeleteSample(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&model.SampleImage{}, id).Error
}
