package repository

import (
	"context"
	"time"

	"peymonak_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProvinceRepository struct {
	DB *gorm.DB
}

func NewProvinceRepository(db *gorm.DB) *ProvinceRepository {
	return &ProvinceRepository{DB: db}
}

// IncrementVisit inserts the province with a count of 1 or bumps the existing
// row in the same statement, so concurrent callers never lose an increment.
func (r *ProvinceRepository) IncrementVisit(ctx context.Context, name string) error {
	now := time.Now()
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"visit_count": gorm.Expr("visit_count + 1"),
				"updated_at":  now,
			}),
		}).
		Create(&model.ProvinceVisit{Name: name, VisitCount: 1, UpdatedAt: now}).
		Error
}

func (r *ProvinceRepository) FindByName(ctx context.Context, name string) (*model.ProvinceVisit, error) {
	var visit model.ProvinceVisit
	err := r.DB.WithContext(ctx).Where("name = ?", name).First(&visit).Error
	return &visit, err
}

func (r *ProvinceRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.ProvinceVisit{}).Count(&n).Error
	return n, err
}
