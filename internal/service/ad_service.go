package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"peymonak_backend/internal/model"
	"peymonak_backend/internal/reference"
	"peymonak_backend/internal/repository"
	"peymonak_backend/internal/util"
	"peymonak_backend/pkg/logger"
	"peymonak_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AdService struct {
	DB       *gorm.DB
	Ads      *repository.AdRepository
	Accounts *repository.AccountRepository
	Profiles *repository.ProfileRepository
	Images   *ImageService
	Catalog  reference.Lookup
}

func NewAdService(db *gorm.DB, ads *repository.AdRepository, accounts *repository.AccountRepository, profiles *repository.ProfileRepository, images *ImageService, catalog reference.Lookup) *AdService {
	return &AdService{
		DB:       db,
		Ads:      ads,
		Accounts: accounts,
		Profiles: profiles,
		Images:   images,
		Catalog:  catalog,
	}
}

type AdInput struct {
	Title           string
	Description     string
	Fee             string
	Province        string
	City            string
	CooperationKind string
	Skill           string
}

// AdUpdateInput is a partial update; nil fields are left unchanged.
type AdUpdateInput struct {
	Title           *string
	Description     *string
	Fee             *string
	Province        *string
	City            *string
	CooperationKind *string
	Skill           *string
	Status          *model.AdStatus
}

// AdQuery is the raw listing query as received from the client.
type AdQuery struct {
	Search          string `form:"search"`
	Title           string `form:"title"`
	Skill           string `form:"skill"`
	Province        string `form:"province"`
	City            string `form:"city"`
	CooperationKind string `form:"cooperation_kind"`
	Roles           string `form:"selected_professional"`
	CreatedFrom     string `form:"created_from"`
	CreatedTo       string `form:"created_to"`
	Status          string `form:"status"`
	Ordering        string `form:"ordering"`
	Page            int    `form:"page"`
	Limit           int    `form:"limit"`
}

func validFee(fee string) bool {
	return fee == model.FeeNegotiable || util.IsDigits(fee)
}

func validCooperationKind(kind string) bool {
	return kind == model.CooperationIndividual || kind == model.CooperationCompany
}

// resolveCooperationKind applies the role rule: workers always cooperate as
// individuals, everyone else must choose.
func resolveCooperationKind(role model.Role, requested string, fields map[string]string) *string {
	if role == model.RoleWorker {
		return util.StringPtr(model.CooperationIndividual)
	}
	if requested == "" {
		fields["cooperationKind"] = "this field is required"
		return nil
	}
	if !validCooperationKind(requested) {
		fields["cooperationKind"] = "must be one of: individual, company"
		return nil
	}
	return util.StringPtr(requested)
}

func (s *AdService) validateCommon(title, description, fee, province, city string, fields map[string]string) {
	switch {
	case strings.TrimSpace(title) == "":
		fields["title"] = "this field is required"
	case utf8.RuneCountInString(title) > model.MaxAdTitleLength:
		fields["title"] = "must be at most 38 characters"
	}
	if strings.TrimSpace(description) == "" {
		fields["description"] = "this field is required"
	}
	switch {
	case fee == "":
		fields["fee"] = "this field is required"
	case len(fee) > model.MaxAdFeeLength:
		fields["fee"] = "must be at most 20 characters"
	case !validFee(fee):
		fields["fee"] = `must be "negotiable" or digits only`
	}
	switch {
	case province == "":
		fields["province"] = "this field is required"
	case !s.Catalog.IsProvince(province):
		fields["province"] = "unknown province"
	}
	if city != "" && !s.Catalog.IsProvince(city) {
		fields["city"] = "unknown city"
	}
}

func (s *AdService) validateSkill(role model.Role, skill string, fields map[string]string) *string {
	if skill == "" {
		if role != model.RoleConstructor {
			fields["skill"] = "this field is required"
		}
		return nil
	}
	if !s.Catalog.IsSkill(skill) {
		fields["skill"] = "unknown skill"
		return nil
	}
	return util.StringPtr(skill)
}

func (s *AdService) loadOwner(ctx context.Context, accountID uint) (*model.Account, error) {
	account, err := s.Accounts.FindByID(ctx, accountID)
	if err != nil {
		if isNotFound(err) {
			return nil, util.ErrAccountNotFound
		}
		return nil, err
	}
	if !account.IsVerified || !account.Role.Valid() {
		return nil, util.ErrNotVerified
	}
	return account, nil
}

// CreateAd validates the ad against the owner's role, checks the profile
// precondition and the role quota, then stores images and the ad. The quota
// check and insert run under a lock on the owner's account row.
func (s *AdService) CreateAd(ctx context.Context, ownerID uint, in AdInput, images []ImageFile) (*model.Ad, error) {
	owner, err := s.loadOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	fields := map[string]string{}
	s.validateCommon(in.Title, in.Description, in.Fee, in.Province, in.City, fields)
	kind := resolveCooperationKind(owner.Role, in.CooperationKind, fields)
	skill := s.validateSkill(owner.Role, in.Skill, fields)
	if len(fields) > 0 {
		return nil, util.NewValidationError(fields)
	}
	if len(images) > model.MaxAdImages {
		return nil, util.ErrAdImageLimit
	}

	profile, err := s.Profiles.FindByAccountID(ctx, owner.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, util.ErrProfileRequired
		}
		return nil, err
	}

	quota := owner.Role.AdQuota()
	if count, err := s.Ads.CountByAccount(ctx, owner.ID); err != nil {
		return nil, err
	} else if int(count) >= quota {
		return nil, util.ErrAdQuotaExceeded
	}

	stored, err := s.Images.StoreBatch(ctx, util.ScopeAdImage, images)
	if err != nil {
		return nil, err
	}

	ad := &model.Ad{
		AccountID:       owner.ID,
		OwnerName:       profile.Name,
		OwnerRole:       owner.Role,
		PhoneNumber:     owner.PhoneNumber,
		Gender:          profile.Gender,
		Title:           in.Title,
		Description:     in.Description,
		Fee:             in.Fee,
		Province:        in.Province,
		City:            in.City,
		CooperationKind: kind,
		Skill:           skill,
		Status:          model.AdStatusActive,
		Images:          adImageRows(0, stored),
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.Accounts.WithTx(tx).LockByID(ctx, owner.ID); err != nil {
			return err
		}
		ads := s.Ads.WithTx(tx)
		count, err := ads.CountByAccount(ctx, owner.ID)
		if err != nil {
			return err
		}
		if int(count) >= quota {
			return util.ErrAdQuotaExceeded
		}
		return ads.Create(ctx, ad)
	})
	if err != nil {
		s.Images.Discard(ctx, stored)
		return nil, err
	}

	monitoring.AdsCreated.WithLabelValues(string(owner.Role)).Inc()
	logger.Log.Info("Ad created",
		zap.Uint("ad_id", ad.ID),
		zap.Uint("account_id", owner.ID),
		zap.Int("images", len(stored)),
	)
	return ad, nil
}

func (s *AdService) GetAd(ctx context.Context, id uint) (*model.Ad, error) {
	ad, err := s.Ads.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, util.ErrAdNotFound
		}
		return nil, err
	}
	return ad, nil
}

func parseDate(field, value string, fields map[string]string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.ParseInLocation(util.DateFormat, value, time.Local)
	if err != nil {
		fields[field] = "must be a date formatted as YYYY-MM-DD"
		return nil
	}
	return &t
}

// buildFilter turns the raw query into a repository filter. Unknown roles
// and orderings are ignored; malformed dates are rejected.
func buildFilter(q AdQuery) (repository.AdFilter, error) {
	fields := map[string]string{}
	from := parseDate("created_from", q.CreatedFrom, fields)
	to := parseDate("created_to", q.CreatedTo, fields)
	status := model.AdStatus(q.Status)
	if q.Status != "" && !status.Valid() {
		fields["status"] = "must be one of: active, inactive"
	}
	if len(fields) > 0 {
		return repository.AdFilter{}, util.NewValidationError(fields)
	}
	if to != nil {
		// Inclusive end date.
		end := to.AddDate(0, 0, 1)
		to = &end
	}

	var roles []model.Role
	for _, r := range util.SplitCSV(q.Roles) {
		if role := model.Role(r); role.Valid() {
			roles = append(roles, role)
		}
	}

	page, limit := util.NormalizePage(q.Page, q.Limit)
	return repository.AdFilter{
		Search:          q.Search,
		Title:           q.Title,
		Skill:           q.Skill,
		Province:        q.Province,
		City:            q.City,
		CooperationKind: q.CooperationKind,
		Roles:           roles,
		CreatedFrom:     from,
		CreatedTo:       to,
		Status:          status,
		Ordering:        q.Ordering,
		Page:            page,
		Limit:           limit,
	}, nil
}

func (s *AdService) ListAds(ctx context.Context, q AdQuery) ([]model.Ad, int64, error) {
	f, err := buildFilter(q)
	if err != nil {
		return nil, 0, err
	}
	return s.Ads.List(ctx, f)
}

func (s *AdService) ListActiveAds(ctx context.Context, q AdQuery) ([]model.Ad, int64, error) {
	q.Status = string(model.AdStatusActive)
	return s.ListAds(ctx, q)
}

func (s *AdService) ListMyAds(ctx context.Context, accountID uint, q AdQuery) ([]model.Ad, int64, error) {
	f, err := buildFilter(q)
	if err != nil {
		return nil, 0, err
	}
	f.AccountID = accountID
	return s.Ads.List(ctx, f)
}

func (s *AdService) ownedAd(ctx context.Context, requesterID, adID uint) (*model.Ad, error) {
	ad, err := s.GetAd(ctx, adID)
	if err != nil {
		return nil, err
	}
	if ad.AccountID != requesterID {
		return nil, util.ErrNotAdOwner
	}
	return ad, nil
}

// UpdateAd applies an owner's partial update, re-checking the same rules as
// CreateAd for the fields that change. New images are appended up to the cap.
func (s *AdService) UpdateAd(ctx context.Context, requesterID, adID uint, in AdUpdateInput, images []ImageFile) (*model.Ad, error) {
	ad, err := s.ownedAd(ctx, requesterID, adID)
	if err != nil {
		return nil, err
	}

	pick := func(p *string, current string) string {
		if p != nil {
			return *p
		}
		return current
	}
	title := strings.TrimSpace(pick(in.Title, ad.Title))
	description := pick(in.Description, ad.Description)
	fee := pick(in.Fee, ad.Fee)
	province := pick(in.Province, ad.Province)
	city := pick(in.City, ad.City)

	fields := map[string]string{}
	s.validateCommon(title, description, fee, province, city, fields)

	updates := map[string]interface{}{}
	if in.CooperationKind != nil {
		if kind := resolveCooperationKind(ad.OwnerRole, *in.CooperationKind, fields); kind != nil {
			updates["cooperation_kind"] = *kind
		}
	}
	if in.Skill != nil {
		skill := s.validateSkill(ad.OwnerRole, *in.Skill, fields)
		updates["skill"] = skill
	}
	if in.Status != nil && !in.Status.Valid() {
		fields["status"] = "must be one of: active, inactive"
	}
	if len(fields) > 0 {
		return nil, util.NewValidationError(fields)
	}
	if len(ad.Images)+len(images) > model.MaxAdImages {
		return nil, util.ErrAdImageLimit
	}

	if in.Title != nil {
		updates["title"] = title
	}
	if in.Description != nil {
		updates["description"] = description
	}
	if in.Fee != nil {
		updates["fee"] = fee
	}
	if in.Province != nil {
		updates["province"] = province
	}
	if in.City != nil {
		updates["city"] = city
	}
	if in.Status != nil {
		updates["status"] = *in.Status
	}

	stored, err := s.Images.StoreBatch(ctx, util.ScopeAdImage, images)
	if err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ads := s.Ads.WithTx(tx)
		count, err := ads.CountImages(ctx, ad.ID)
		if err != nil {
			return err
		}
		if int(count)+len(stored) > model.MaxAdImages {
			return util.ErrAdImageLimit
		}
		if err := ads.UpdateFields(ctx, ad.ID, updates); err != nil {
			return err
		}
		return ads.AddImages(ctx, adImageRows(ad.ID, stored))
	})
	if err != nil {
		s.Images.Discard(ctx, stored)
		return nil, err
	}

	return s.GetAd(ctx, ad.ID)
}

// DeleteAd removes the owner's ad. Stored image files go first; a failed
// file deletion is logged and does not keep the row alive.
func (s *AdService) DeleteAd(ctx context.Context, requesterID, adID uint) error {
	ad, err := s.ownedAd(ctx, requesterID, adID)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(ad.Images))
	for _, img := range ad.Images {
		keys = append(keys, img.StorageKey)
	}
	s.Images.RemoveKeys(ctx, keys...)

	if err := s.Ads.Delete(ctx, ad.ID); err != nil {
		if isNotFound(err) {
			return util.ErrAdNotFound
		}
		return err
	}

	logger.Log.Info("Ad deleted", zap.Uint("ad_id", ad.ID), zap.Uint("account_id", requesterID))
	return nil
}

func (s *AdService) ReportAd(ctx context.Context, reporterID, adID uint, message string) (*model.AdReport, error) {
	message = strings.TrimSpace(message)
	switch {
	case message == "":
		return nil, util.FieldError("message", "this field is required")
	case utf8.RuneCountInString(message) > model.MaxReportMessageLen:
		return nil, util.FieldError("message", "must be at most 1500 characters")
	}

	if ok, err := s.Ads.Exists(ctx, adID); err != nil {
		return nil, err
	} else if !ok {
		return nil, util.ErrAdNotFound
	}

	report := &model.AdReport{AdID: adID, ReporterID: reporterID, Message: message}
	if err := s.Ads.CreateReport(ctx, report); err != nil {
		return nil, err
	}
	logger.Log.Info("Ad reported", zap.Uint("ad_id", adID), zap.Uint("reporter_id", reporterID))
	return report, nil
}

func adImageRows(adID uint, stored []StoredImage) []model.AdImage {
	rows := make([]model.AdImage, 0, len(stored))
	for _, img := range stored {
		rows = append(rows, model.AdImage{AdID: adID, StorageKey: img.Key, URL: img.URL})
	}
	return rows
}
