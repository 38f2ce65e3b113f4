package repository

import (
	"context"
	"time"

	"peymonak_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccountRepository struct {
	DB *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{DB: db}
}

// WithTx returns a repository bound to tx.
func (r *AccountRepository) WithTx(tx *gorm.DB) *AccountRepository {
	return &AccountRepository{DB: tx}
}

func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	return r.DB.WithContext(ctx).Create(account).Error
}

func (r *AccountRepository) Save(ctx context.Context, account *model.Account) error {
	return r.DB.WithContext(ctx).Save(account).Error
}

func (r *AccountRepository) FindByID(ctx context.Context, id uint) (*model.Account, error) {
	var account model.Account
	err := r.DB.WithContext(ctx).First(&account, id).Error
	return &account, err
}

func (r *AccountRepository) FindByPhone(ctx context.Context, phone string) (*model.Account, error) {
	var account model.Account
	err := r.DB.WithContext(ctx).Where("phone_number = ?", phone).First(&account).Error
	return &account, err
}

func (r *AccountRepository) FindByNationalCode(ctx context.Context, code string) (*model.Account, error) {
	var account model.Account
	err := r.DB.WithContext(ctx).Where("national_code = ?", code).First(&account).Error
	return &account, err
}

// LockByID selects the account FOR UPDATE. Only meaningful inside a transaction.
func (r *AccountRepository) LockByID(ctx context.Context, id uint) (*model.Account, error) {
	var account model.Account
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&account, id).Error
	return &account, err
}

func (r *AccountRepository) UpdateLastSeen(accountID uint) error {
	return r.DB.Model(&model.Account{}).
		Where("id = ?", accountID).
		UpdateColumn("last_seen", time.Now()).
		Error
}

// ConsumeCode clears the stored code hash only if it still equals hash, so
// two concurrent submissions of the same code cannot both succeed.
func (r *AccountRepository) ConsumeCode(ctx context.Context, id uint, hash string, state model.VerificationState) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&model.Account{}).
		Where("id = ? AND code_hash = ?", id, hash).
		Updates(map[string]interface{}{
			"code_hash":          nil,
			"verification_state": state,
			"updated_at":         time.Now(),
		})
	return res.RowsAffected == 1, res.Error
}
