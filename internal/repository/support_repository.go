package repository

import (
	"context"

	"peymonak_backend/internal/model"

	"gorm.io/gorm"
)

type SupportRepository struct {
	DB *gorm.DB
}

func NewSupportRepository(db *gorm.DB) *SupportRepository {
	return &SupportRepository{DB: db}
}

func (r *SupportRepository) List(ctx context.Context) ([]model.SupportContact, error) {
	var contacts []model.SupportContact
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&contacts).Error
	return contacts, err
}
