package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"peymonak_backend/internal/model"
	"peymonak_backend/internal/repository"
	"peymonak_backend/internal/util"
	"peymonak_backend/pkg/logger"
	"peymonak_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxCooperationMessageLength = 1500

// CooperationService runs the pending -> accepted | declined workflow.
type CooperationService struct {
	DB       *gorm.DB
	Requests *repository.CooperationRepository
	Ads      *repository.AdRepository
	Accounts *repository.AccountRepository
}

func NewCooperationService(db *gorm.DB, requests *repository.CooperationRepository, ads *repository.AdRepository, accounts *repository.AccountRepository) *CooperationService {
	return &CooperationService{DB: db, Requests: requests, Ads: ads, Accounts: accounts}
}

type CooperationInput struct {
	AdID        uint
	RecipientID uint
	Message     string
}

type CooperationQuery struct {
	Box    string `form:"box"`
	AdID   uint   `form:"ad"`
	Status string `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// Create opens a pending request from sender about an ad. Each sender gets one
// request per ad; the unique index settles concurrent attempts.
func (s *CooperationService) Create(ctx context.Context, senderID uint, in CooperationInput) (*model.CooperationRequest, error) {
	fields := map[string]string{}
	if in.AdID == 0 {
		fields["adId"] = "this field is required"
	}
	if in.RecipientID == 0 {
		fields["recipientId"] = "this field is required"
	} else if in.RecipientID == senderID {
		fields["recipientId"] = "you cannot send a request to yourself"
	}
	if utf8.RuneCountInString(in.Message) > maxCooperationMessageLength {
		fields["message"] = "must be at most 1500 characters"
	}
	if len(fields) > 0 {
		return nil, util.NewValidationError(fields)
	}

	ad, err := s.Ads.FindByID(ctx, in.AdID)
	if err != nil {
		if isNotFound(err) {
			return nil, util.ErrAdNotFound
		}
		return nil, err
	}
	if ad.AccountID == senderID {
		return nil, util.FieldError("adId", "you cannot request cooperation on your own ad")
	}

	if _, err := s.Accounts.FindByID(ctx, in.RecipientID); err != nil {
		if isNotFound(err) {
			return nil, util.ErrRecipientNotFound
		}
		return nil, err
	}

	if exists, err := s.Requests.ExistsForSender(ctx, ad.ID, senderID); err != nil {
		return nil, err
	} else if exists {
		return nil, util.ErrDuplicateRequest
	}

	req := &model.CooperationRequest{
		AdID:        ad.ID,
		SenderID:    senderID,
		RecipientID: in.RecipientID,
		Message:     strings.TrimSpace(in.Message),
		Status:      model.CooperationPending,
	}
	if err := s.Requests.Create(ctx, req); err != nil {
		if isDuplicate(err) {
			return nil, util.ErrDuplicateRequest
		}
		return nil, err
	}

	logger.Log.Info("Cooperation request created",
		zap.Uint("request_id", req.ID),
		zap.Uint("ad_id", ad.ID),
		zap.Uint("sender_id", senderID),
	)
	return req, nil
}

// Respond lets the recipient accept or decline a pending request. Accepting
// reveals both phone numbers; declining leaves them empty.
func (s *CooperationService) Respond(ctx context.Context, actorID, requestID uint, accept bool) (*model.CooperationRequest, error) {
	var result *model.CooperationRequest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requests := s.Requests.WithTx(tx)
		accounts := s.Accounts.WithTx(tx)

		req, err := requests.FindByID(ctx, requestID)
		if err != nil {
			if isNotFound(err) {
				return util.ErrRequestNotFound
			}
			return err
		}
		if req.RecipientID != actorID {
			return util.ErrNotRecipient
		}
		if req.Status != model.CooperationPending {
			return util.ErrRequestNotPending
		}

		status := model.CooperationDeclined
		var senderPhone, recipientPhone *string
		if accept {
			status = model.CooperationAccepted
			sender, err := accounts.FindByID(ctx, req.SenderID)
			if err != nil {
				return err
			}
			recipient, err := accounts.FindByID(ctx, req.RecipientID)
			if err != nil {
				return err
			}
			senderPhone = util.StringPtr(sender.PhoneNumber)
			recipientPhone = util.StringPtr(recipient.PhoneNumber)
		}

		now := time.Now()
		ok, err := requests.Resolve(ctx, req.ID, status, senderPhone, recipientPhone, now)
		if err != nil {
			return err
		}
		if !ok {
			return util.ErrRequestNotPending
		}

		req.Status = status
		req.SenderPhone = senderPhone
		req.RecipientPhone = recipientPhone
		req.AcknowledgedAt = &now
		req.UpdatedAt = now
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.CooperationTransitions.WithLabelValues(string(result.Status)).Inc()
	logger.Log.Info("Cooperation request resolved",
		zap.Uint("request_id", result.ID),
		zap.String("status", string(result.Status)),
	)
	return result, nil
}

func (s *CooperationService) Get(ctx context.Context, actorID, requestID uint) (*model.CooperationRequest, error) {
	req, err := s.Requests.FindByID(ctx, requestID)
	if err != nil {
		if isNotFound(err) {
			return nil, util.ErrRequestNotFound
		}
		return nil, err
	}
	if req.SenderID != actorID && req.RecipientID != actorID {
		return nil, util.ErrNotParticipant
	}
	return req, nil
}

// List returns requests the actor sent or received.
func (s *CooperationService) List(ctx context.Context, actorID uint, q CooperationQuery) ([]model.CooperationRequest, int64, error) {
	fields := map[string]string{}
	if q.Box != "" && q.Box != repository.BoxSent && q.Box != repository.BoxReceived {
		fields["box"] = "must be one of: sent, received"
	}
	status := model.CooperationStatus(q.Status)
	switch status {
	case "", model.CooperationPending, model.CooperationAccepted, model.CooperationDeclined:
	default:
		fields["status"] = "must be one of: pending, accepted, declined"
	}
	if len(fields) > 0 {
		return nil, 0, util.NewValidationError(fields)
	}

	page, limit := util.NormalizePage(q.Page, q.Limit)
	return s.Requests.List(ctx, repository.CooperationFilter{
		ParticipantID: actorID,
		Box:           q.Box,
		AdID:          q.AdID,
		Status:        status,
		Page:          page,
		Limit:         limit,
	})
}

// Cancel lets the sender withdraw a request that has not been answered yet.
func (s *CooperationService) Cancel(ctx context.Context, actorID, requestID uint) error {
	req, err := s.Get(ctx, actorID, requestID)
	if err != nil {
		return err
	}
	if req.SenderID != actorID {
		return util.ErrNotSender
	}
	if req.Status != model.CooperationPending {
		return util.ErrRequestNotPending
	}
	ok, err := s.Requests.DeletePending(ctx, req.ID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrRequestNotPending
	}
	return nil
}
