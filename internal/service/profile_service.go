package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"peymonak_backend/internal/model"
	"peymonak_backend/internal/reference"
	"peymonak_backend/internal/repository"
	"peymonak_backend/internal/util"
	"peymonak_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxProfileNameLength        = 100
	maxProfileDescriptionLength = 2000
)

type ProfileService struct {
	DB       *gorm.DB
	Profiles *repository.ProfileRepository
	Images   *ImageService
	Catalog  reference.Lookup
}

func NewProfileService(db *gorm.DB, profiles *repository.ProfileRepository, images *ImageService, catalog reference.Lookup) *ProfileService {
	return &ProfileService{DB: db, Profiles: profiles, Images: images, Catalog: catalog}
}

// ProfileInput carries optional fields; nil means "not provided".
type ProfileInput struct {
	Name        *string
	City        *string
	Gender      *string
	Skill       *string
	Description *string
	ClearAvatar bool
}

// PublicProfile is what other users may see about an account.
type PublicProfile struct {
	UserID         uint   `json:"userId"`
	FullName       string `json:"fullName"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

func (s *ProfileService) validate(in ProfileInput, creating bool) error {
	fields := map[string]string{}

	required := func(field string, v *string) bool {
		if v == nil || strings.TrimSpace(*v) == "" {
			if creating || v != nil {
				fields[field] = "this field is required"
			}
			return false
		}
		return true
	}

	if required("name", in.Name) && utf8.RuneCountInString(*in.Name) > maxProfileNameLength {
		fields["name"] = "must be at most 100 characters"
	}
	if required("city", in.City) && !s.Catalog.IsProvince(*in.City) {
		fields["city"] = "unknown province"
	}
	if required("gender", in.Gender) && !s.Catalog.IsGender(*in.Gender) {
		fields["gender"] = "unknown gender"
	}
	if in.Skill != nil && *in.Skill != "" && !s.Catalog.IsSkill(*in.Skill) {
		fields["skill"] = "unknown skill"
	}
	if in.Description != nil && utf8.RuneCountInString(*in.Description) > maxProfileDescriptionLength {
		fields["description"] = "must be at most 2000 characters"
	}

	if len(fields) > 0 {
		return util.NewValidationError(fields)
	}
	return nil
}

func (s *ProfileService) GetOwn(ctx context.Context, accountID uint) (*model.Profile, error) {
	profile, err := s.Profiles.FindByAccountID(ctx, accountID)
	if err != nil {
		if isNotFound(err) {
			return nil, util.ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) GetPublic(ctx context.Context, accountID uint) (*PublicProfile, error) {
	profile, err := s.GetOwn(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &PublicProfile{
		UserID:         profile.AccountID,
		FullName:       profile.Name,
		ProfilePicture: profile.AvatarURL,
	}, nil
}

// Create builds the caller's profile. Images are only stored after every
// field and the sample count have been validated.
func (s *ProfileService) Create(ctx context.Context, accountID uint, in ProfileInput, avatar *ImageFile, samples []ImageFile) (*model.Profile, error) {
	if err := s.validate(in, true); err != nil {
		return nil, err
	}
	if len(samples) > model.MaxSampleImages {
		return nil, util.ErrSampleLimit
	}

	if _, err := s.Profiles.FindByAccountID(ctx, accountID); err == nil {
		return nil, util.ErrProfileExists
	} else if !isNotFound(err) {
		return nil, err
	}

	stored, avatarImg, err := s.storeImages(ctx, avatar, samples)
	if err != nil {
		return nil, err
	}

	profile := &model.Profile{
		AccountID:   accountID,
		Name:        strings.TrimSpace(*in.Name),
		City:        *in.City,
		Gender:      *in.Gender,
		Skill:       nonEmpty(in.Skill),
		Description: util.Deref(in.Description),
	}
	if avatarImg != nil {
		profile.AvatarKey = avatarImg.Key
		profile.AvatarURL = avatarImg.URL
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profiles := s.Profiles.WithTx(tx)
		if err := profiles.Create(ctx, profile); err != nil {
			return err
		}
		return profiles.AddSamples(ctx, sampleRows(profile.ID, stored))
	})
	if err != nil {
		s.Images.Discard(ctx, allImages(avatarImg, stored))
		if isDuplicate(err) {
			return nil, util.ErrProfileExists
		}
		return nil, err
	}

	logger.Log.Info("Profile created", zap.Uint("account_id", accountID))
	return s.GetOwn(ctx, accountID)
}

// Update applies the provided fields, optionally replaces or clears the
// avatar and appends sample images up to the cap.
func (s *ProfileService) Update(ctx context.Context, accountID uint, in ProfileInput, avatar *ImageFile, samples []ImageFile) (*model.Profile, error) {
	if err := s.validate(in, false); err != nil {
		return nil, err
	}

	profile, err := s.GetOwn(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if len(profile.SampleImages)+len(samples) > model.MaxSampleImages {
		return nil, util.ErrSampleLimit
	}

	stored, avatarImg, err := s.storeImages(ctx, avatar, samples)
	if err != nil {
		return nil, err
	}

	oldAvatarKey := profile.AvatarKey
	if in.Name != nil {
		profile.Name = strings.TrimSpace(*in.Name)
	}
	if in.City != nil {
		profile.City = *in.City
	}
	if in.Gender != nil {
		profile.Gender = *in.Gender
	}
	if in.Skill != nil {
		profile.Skill = nonEmpty(in.Skill)
	}
	if in.Description != nil {
		profile.Description = *in.Description
	}
	switch {
	case avatarImg != nil:
		profile.AvatarKey = avatarImg.Key
		profile.AvatarURL = avatarImg.URL
	case in.ClearAvatar:
		profile.AvatarKey = ""
		profile.AvatarURL = ""
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profiles := s.Profiles.WithTx(tx)
		count, err := profiles.CountSamples(ctx, profile.ID)
		if err != nil {
			return err
		}
		if int(count)+len(stored) > model.MaxSampleImages {
			return util.ErrSampleLimit
		}
		if err := profiles.Update(ctx, profile); err != nil {
			return err
		}
		return profiles.AddSamples(ctx, sampleRows(profile.ID, stored))
	})
	if err != nil {
		s.Images.Discard(ctx, allImages(avatarImg, stored))
		return nil, err
	}

	if oldAvatarKey != "" && oldAvatarKey != profile.AvatarKey {
		s.Images.RemoveKeys(ctx, oldAvatarKey)
	}

	return s.GetOwn(ctx, accountID)
}

// DeleteSampleImage removes one portfolio image owned by the caller.
func (s *ProfileService) DeleteSampleImage(ctx context.Context, accountID, imageID uint) error {
	profile, err := s.GetOwn(ctx, accountID)
	if err != nil {
		return err
	}

	sample, err := s.Profiles.FindSample(ctx, imageID)
	if err != nil {
		if isNotFound(err) {
			return util.ErrImageNotFound
		}
		return err
	}
	if sample.ProfileID != profile.ID {
		return util.ErrPermissionDenied
	}

	if err := s.Profiles.DeleteSample(ctx, sample.ID); err != nil {
		return err
	}
	s.Images.RemoveKeys(ctx, sample.StorageKey)
	return nil
}

func (s *ProfileService) storeImages(ctx context.Context, avatar *ImageFile, samples []ImageFile) ([]StoredImage, *StoredImage, error) {
	var avatarImg *StoredImage
	if avatar != nil {
		img, err := s.Images.Store(ctx, util.ScopeProfilePicture, *avatar)
		if err != nil {
			return nil, nil, err
		}
		avatarImg = img
	}

	stored, err := s.Images.StoreBatch(ctx, util.ScopeProfileSample, samples)
	if err != nil {
		if avatarImg != nil {
			s.Images.Discard(ctx, []StoredImage{*avatarImg})
		}
		return nil, nil, err
	}
	return stored, avatarImg, nil
}

func sampleRows(profileID uint, stored []StoredImage) []model.SampleImage {
	rows := make([]model.SampleImage, 0, len(stored))
	for _, img := range stored {
		rows = append(rows, model.SampleImage{ProfileID: profileID, StorageKey: img.Key, URL: img.URL})
	}
	return rows
}

func allImages(avatar *StoredImage, rest []StoredImage) []StoredImage {
	if avatar == nil {
		return rest
	}
	return append([]StoredImage{*avatar}, rest...)
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
