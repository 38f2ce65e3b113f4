package repository

import (
	"context"
	"strings"
	"time"

	"peymonak_backend/internal/model"

	"gorm.io/gorm"
)

// AdFilter narrows an ad listing. Zero values mean "no constraint".
type AdFilter struct {
	Search          string
	Title           string
	Skill           string
	Province        string
	City            string
	CooperationKind string
	Roles           []model.Role
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
	Status          model.AdStatus
	AccountID       uint
	Ordering        string
	Page            int
	Limit           int
}

// adOrderColumns whitelists the sortable columns.
var adOrderColumns = map[string]string{
	"created_at": "created_at",
	"title":      "title",
	"fee":        "fee",
	"province":   "province",
	"city":       "city",
	"id":         "id",
}

const DefaultAdOrdering = "-created_at"

// ValidAdOrdering reports whether s names a sortable field, optionally prefixed with "-".
func ValidAdOrdering(s string) bool {
	_, ok := adOrderColumns[strings.TrimPrefix(s, "-")]
	return ok
}

type AdRepository struct {
	DB *gorm.DB
}

func NewAdRepository(db *gorm.DB) *AdRepository {
	return &AdRepository{DB: db}
}

func (r *AdRepository) WithTx(tx *gorm.DB) *AdRepository {
	return &AdRepository{DB: tx}
}

func (r *AdRepository) CountByAccount(ctx context.Context, accountID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Ad{}).Where("account_id = ?", accountID).Count(&count).Error
	return count, err
}

// Create inserts the ad together with its images.
func (r *AdRepository) Create(ctx context.Context, ad *model.Ad) error {
	return r.DB.WithContext(ctx).Create(ad).Error
}

func (r *AdRepository) FindByID(ctx context.Context, id uint) (*model.Ad, error) {
	var ad model.Ad
	err := r.DB.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&ad, id).Error
	return &ad, err
}

func (r *AdRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Ad{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// UpdateFields applies a partial update; keys are column names.
func (r *AdRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Model(&model.Ad{}).Where("id = ?", id).Updates(fields).Error
}

func (r *AdRepository) CountImages(ctx context.Context, adID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.AdImage{}).Where("ad_id = ?", adID).Count(&count).Error
	return count, err
}

func (r *AdRepository) AddImages(ctx context.Context, images []model.AdImage) error {
	if len(images) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Create(&images).Error
}

// Delete removes the ad and every row that references it.
func (r *AdRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dep := range []interface{}{
			&model.AdImage{},
			&model.SavedAd{},
			&model.CooperationRequest{},
			&model.AdReport{},
		} {
			if err := tx.Where("ad_id = ?", id).Delete(dep).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&model.Ad{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *AdRepository) CreateReport(ctx context.Context, report *model.AdReport) error {
	return r.DB.WithContext(ctx).Create(report).Error
}

// escapeLike escapes LIKE wildcards using '!' so the same SQL works on MySQL,
// PostgreSQL and SQLite.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

func containsPattern(term string) string {
	return "%" + escapeLike(strings.ToLower(term)) + "%"
}

func (r *AdRepository) List(ctx context.Context, f AdFilter) ([]model.Ad, int64, error) {
	query := r.DB.WithContext(ctx).Model(&model.Ad{})

	// Every search term must match at least one of the text columns.
	for _, term := range strings.Fields(f.Search) {
		p := containsPattern(term)
		query = query.Where(
			"LOWER(title) LIKE ? ESCAPE '!' OR LOWER(owner_name) LIKE ? ESCAPE '!' OR LOWER(province) LIKE ? ESCAPE '!' OR LOWER(city) LIKE ? ESCAPE '!'",
			p, p, p, p,
		)
	}
	if f.Title != "" {
		query = query.Where("LOWER(title) LIKE ? ESCAPE '!'", containsPattern(f.Title))
	}
	if f.Skill != "" {
		query = query.Where("LOWER(skill) = ?", strings.ToLower(f.Skill))
	}
	if f.Province != "" {
		query = query.Where("LOWER(province) = ?", strings.ToLower(f.Province))
	}
	if f.City != "" {
		query = query.Where("LOWER(city) = ?", strings.ToLower(f.City))
	}
	if f.CooperationKind != "" {
		query = query.Where("LOWER(cooperation_kind) = ?", strings.ToLower(f.CooperationKind))
	}
	if len(f.Roles) > 0 {
		query = query.Where("owner_role IN ?", f.Roles)
	}
	if f.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		query = query.Where("created_at < ?", *f.CreatedTo)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.AccountID != 0 {
		query = query.Where("account_id = ?", f.AccountID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	ordering := f.Ordering
	if !ValidAdOrdering(ordering) {
		ordering = DefaultAdOrdering
	}
	direction := "ASC"
	if strings.HasPrefix(ordering, "-") {
		direction = "DESC"
	}
	column := adOrderColumns[strings.TrimPrefix(ordering, "-")]

	var ads []model.Ad
	err := query.
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order(column + " " + direction).
		Order("id " + direction).
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&ads).Error
	return ads, total, err
}
