package repository

import (
	"context"
	"time"

	"peymonak_backend/internal/model"

	"gorm.io/gorm"
)

const (
	BoxSent     = "sent"
	BoxReceived = "received"
)

type CooperationFilter struct {
	ParticipantID uint
	Box           string
	AdID          uint
	Status        model.CooperationStatus
	Page          int
	Limit         int
}

type CooperationRepository struct {
	DB *gorm.DB
}

func NewCooperationRepository(db *gorm.DB) *CooperationRepository {
	return &CooperationRepository{DB: db}
}

func (r *CooperationRepository) WithTx(tx *gorm.DB) *CooperationRepository {
	return &CooperationRepository{DB: tx}
}

// Create relies on the (ad_id, sender_id) unique index; a duplicate surfaces
// as gorm.ErrDuplicatedKey.
func (r *CooperationRepository) Create(ctx context.Context, req *model.CooperationRequest) error {
	return r.DB.WithContext(ctx).Create(req).Error
}

func (r *CooperationRepository) FindByID(ctx context.Context, id uint) (*model.CooperationRequest, error) {
	var req model.CooperationRequest
	err := r.DB.WithContext(ctx).First(&req, id).Error
	return &req, err
}

func (r *CooperationRepository) ExistsForSender(ctx context.Context, adID, senderID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.CooperationRequest{}).
		Where("ad_id = ? AND sender_id = ?", adID, senderID).
		Count(&count).Error
	return count > 0, err
}

// Resolve moves a pending request to status. It returns false when the row
// was no longer pending, leaving it untouched.
func (r *CooperationRepository) Resolve(ctx context.Context, id uint, status model.CooperationStatus, senderPhone, recipientPhone *string, at time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&model.CooperationRequest{}).
		Where("id = ? AND status = ?", id, model.CooperationPending).
		Updates(map[string]interface{}{
			"status":          status,
			"sender_phone":    senderPhone,
			"recipient_phone": recipientPhone,
			"acknowledged_at": at,
			"updated_at":      at,
		})
	return res.RowsAffected == 1, res.Error
}

// DeletePending removes the request only while it is still pending.
func (r *CooperationRepository) DeletePending(ctx context.Context, id uint) (bool, error) {
	res := r.DB.WithContext(ctx).
		Where("id = ? AND status = ?", id, model.CooperationPending).
		Delete(&model.CooperationRequest{})
	return res.RowsAffected == 1, res.Error
}

func (r *CooperationRepository) List(ctx context.Context, f CooperationFilter) ([]model.CooperationRequest, int64, error) {
	query := r.DB.WithContext(ctx).Model(&model.CooperationRequest{})

	switch f.Box {
	case BoxSent:
		query = query.Where("sender_id = ?", f.ParticipantID)
	case BoxReceived:
		query = query.Where("recipient_id = ?", f.ParticipantID)
	default:
		query = query.Where("sender_id = ? OR recipient_id = ?", f.ParticipantID, f.ParticipantID)
	}
	if f.AdID != 0 {
		query = query.Where("ad_id = ?", f.AdID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []model.CooperationRequest
	err := query.
		Order("created_at DESC, id DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&list).Error
	return list, total, err
}
