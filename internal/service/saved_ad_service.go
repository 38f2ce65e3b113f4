package service

import (
	"context"

	"peymonak_backend/internal/model"
	"peymonak_backend/internal/repository"
	"peymonak_backend/internal/util"
)

type SavedAdService struct {
	Saved *repository.SavedAdRepository
	Ads   *repository.AdRepository
}

func NewSavedAdService(saved *repository.SavedAdRepository, ads *repository.AdRepository) *SavedAdService {
	return &SavedAdService{Saved: saved, Ads: ads}
}

// SavedAdView is a saved entry with the ad fields a bookmark list shows.
type SavedAdView struct {
	ID        uint     `json:"id"`
	AdID      uint     `json:"adId"`
	Title     string   `json:"title"`
	Province  string   `json:"province"`
	Fee       string   `json:"fee"`
	Status    string   `json:"status"`
	ImageURLs []string `json:"images"`
}

func (s *SavedAdService) Save(ctx context.Context, accountID, adID uint) (*model.SavedAd, error) {
	if adID == 0 {
		return nil, util.FieldError("adId", "this field is required")
	}
	if ok, err := s.Ads.Exists(ctx, adID); err != nil {
		return nil, err
	} else if !ok {
		return nil, util.ErrAdNotFound
	}

	saved := &model.SavedAd{AccountID: accountID, AdID: adID}
	if err := s.Saved.Create(ctx, saved); err != nil {
		if isDuplicate(err) {
			return nil, util.ErrAdAlreadySaved
		}
		return nil, err
	}
	return saved, nil
}

func (s *SavedAdService) List(ctx context.Context, accountID uint) ([]SavedAdView, error) {
	rows, err := s.Saved.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	views := make([]SavedAdView, 0, len(rows))
	for _, row := range rows {
		if row.Ad == nil {
			continue
		}
		urls := make([]string, 0, len(row.Ad.Images))
		for _, img := range row.Ad.Images {
			urls = append(urls, img.URL)
		}
		views = append(views, SavedAdView{
			ID:        row.ID,
			AdID:      row.AdID,
			Title:     row.Ad.Title,
			Province:  row.Ad.Province,
			Fee:       row.Ad.Fee,
			Status:    string(row.Ad.Status),
			ImageURLs: urls,
		})
	}
	return views, nil
}

func (s *SavedAdService) Remove(ctx context.Context, accountID, savedID uint) error {
	saved, err := s.Saved.FindByID(ctx, savedID)
	if err != nil {
		if isNotFound(err) {
			return util.ErrSavedAdNotFound
		}
		return err
	}
	if saved.AccountID != accountID {
		return util.ErrNotSavedAdOwner
	}
	return s.Saved.Delete(ctx, saved.ID)
}
