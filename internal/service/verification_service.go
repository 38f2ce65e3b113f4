package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"peymonak_backend/internal/config"
	"peymonak_backend/internal/model"
	"peymonak_backend/internal/repository"
	"peymonak_backend/internal/util"
	"peymonak_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Next steps reported after a code is accepted.
const (
	NextLogin    = "login"
	NextRegister = "register"
)

// CodeHashCost is the bcrypt cost for stored verification codes.
var CodeHashCost = bcrypt.DefaultCost

// CooldownStore throttles code resends per phone number.
type CooldownStore interface {
	AcquireCooldown(ctx context.Context, phone string, ttl time.Duration) (bool, error)
	ReleaseCooldown(ctx context.Context, phone string) error
}

type VerificationService struct {
	Accounts *repository.AccountRepository
	SMS      SMSSender
	Store    CooldownStore
	Tokens   *TokenService
	Cfg      *config.VerificationConfig
}

func NewVerificationService(accounts *repository.AccountRepository, sms SMSSender, store CooldownStore, tokens *TokenService, cfg *config.VerificationConfig) *VerificationService {
	return &VerificationService{
		Accounts: accounts,
		SMS:      sms,
		Store:    store,
		Tokens:   tokens,
		Cfg:      cfg,
	}
}

type RequestCodeResult struct {
	AlreadyVerified bool   `json:"alreadyVerified"`
	Message         string `json:"message"`
}

type SubmitCodeResult struct {
	Next    string          `json:"next"`
	Account *model.Account  `json:"account"`
	Tokens  *util.TokenPair `json:"tokens,omitempty"`
}

// GenerateCode returns a uniformly random 6-digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func VerificationText(code string) string {
	return "Your verification code: " + code
}

func validatePhone(phone string) error {
	if phone == "" {
		return util.FieldError("phoneNumber", "this field is required")
	}
	if !util.ValidPhone(phone) {
		return util.FieldError("phoneNumber", "must be a phone number like 09xxxxxxxxx or 989xxxxxxxxx")
	}
	return nil
}

// RequestCode sends a fresh code to an unverified (or unknown) phone number.
// Verified accounts are reported as such and their state is left untouched.
func (s *VerificationService) RequestCode(ctx context.Context, phone string) (*RequestCodeResult, error) {
	if err := validatePhone(phone); err != nil {
		return nil, err
	}

	account, err := s.Accounts.FindByPhone(ctx, phone)
	switch {
	case err == nil:
		if account.IsVerified {
			return &RequestCodeResult{AlreadyVerified: true, Message: "account is already verified"}, nil
		}
	case isNotFound(err):
		account = nil
	default:
		return nil, err
	}

	if err := s.acquireCooldown(ctx, phone); err != nil {
		return nil, err
	}
	res, err := s.issueCode(ctx, phone, account)
	if err != nil || res.AlreadyVerified {
		s.releaseCooldown(ctx, phone)
	}
	return res, err
}

// issueCode stores a new code hash on account, creating it when nil, and
// sends the code.
func (s *VerificationService) issueCode(ctx context.Context, phone string, account *model.Account) (*RequestCodeResult, error) {
	code, hash, err := newCode()
	if err != nil {
		return nil, err
	}

	if account == nil {
		account = &model.Account{
			PhoneNumber:       phone,
			VerificationState: model.StateCodeSent,
			CodeHash:          &hash,
		}
		err := s.Accounts.Create(ctx, account)
		if err != nil && !isDuplicate(err) {
			return nil, err
		}
		if err != nil {
			// Lost a race with a concurrent request for the same phone.
			if account, err = s.Accounts.FindByPhone(ctx, phone); err != nil {
				return nil, err
			}
			if account.IsVerified {
				return &RequestCodeResult{AlreadyVerified: true, Message: "account is already verified"}, nil
			}
			if err := s.storeCode(ctx, account, hash); err != nil {
				return nil, err
			}
		}
	} else if err := s.storeCode(ctx, account, hash); err != nil {
		return nil, err
	}

	if err := s.SMS.Send(ctx, phone, VerificationText(code)); err != nil {
		return nil, err
	}

	logger.Log.Info("Verification code sent", zap.Uint("account_id", account.ID))
	return &RequestCodeResult{Message: "verification code sent"}, nil
}

// RequestLoginCode sends a code to an already verified account so it can
// obtain a new token pair through SubmitCode.
func (s *VerificationService) RequestLoginCode(ctx context.Context, phone string) error {
	if err := validatePhone(phone); err != nil {
		return err
	}

	account, err := s.Accounts.FindByPhone(ctx, phone)
	if err != nil {
		if isNotFound(err) {
			return util.ErrAccountNotFound
		}
		return err
	}
	if !account.IsVerified {
		return util.ErrNotVerified
	}

	if err := s.acquireCooldown(ctx, phone); err != nil {
		return err
	}
	if err := s.issueLoginCode(ctx, phone, account); err != nil {
		s.releaseCooldown(ctx, phone)
		return err
	}
	return nil
}

func (s *VerificationService) issueLoginCode(ctx context.Context, phone string, account *model.Account) error {
	code, hash, err := newCode()
	if err != nil {
		return err
	}
	account.CodeHash = &hash
	if err := s.Accounts.Save(ctx, account); err != nil {
		return err
	}
	return s.SMS.Send(ctx, phone, VerificationText(code))
}

// SubmitCode checks code against the pending one and clears it on success.
// Verified accounts receive tokens; others move on to registration.
func (s *VerificationService) SubmitCode(ctx context.Context, phone, code string) (*SubmitCodeResult, error) {
	if err := validatePhone(phone); err != nil {
		return nil, err
	}
	if code == "" {
		return nil, util.FieldError("code", "this field is required")
	}

	account, err := s.Accounts.FindByPhone(ctx, phone)
	if err != nil {
		if isNotFound(err) {
			return nil, util.ErrAccountNotFound
		}
		return nil, err
	}
	if !account.HasPendingCode() {
		return nil, util.ErrNoPendingCode
	}

	hash := *account.CodeHash
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) != nil {
		return nil, util.ErrCodeMismatch
	}

	nextState := model.StateCodeVerified
	if account.IsVerified {
		nextState = account.VerificationState
	}
	consumed, err := s.Accounts.ConsumeCode(ctx, account.ID, hash, nextState)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, util.ErrNoPendingCode
	}
	account.CodeHash = nil
	account.VerificationState = nextState

	if !account.IsVerified {
		return &SubmitCodeResult{Next: NextRegister, Account: account}, nil
	}

	tokens, err := s.Tokens.Issue(account)
	if err != nil {
		return nil, err
	}
	return &SubmitCodeResult{Next: NextLogin, Account: account, Tokens: tokens}, nil
}

func (s *VerificationService) storeCode(ctx context.Context, account *model.Account, hash string) error {
	account.CodeHash = &hash
	account.VerificationState = model.StateCodeSent
	return s.Accounts.Save(ctx, account)
}

func (s *VerificationService) acquireCooldown(ctx context.Context, phone string) error {
	if s.Cfg == nil || s.Cfg.ResendCooldownSeconds <= 0 {
		return nil
	}
	ok, err := s.Store.AcquireCooldown(ctx, phone, time.Duration(s.Cfg.ResendCooldownSeconds)*time.Second)
	if err != nil {
		// Fail open when Redis is unavailable.
		logger.Log.Warn("Cooldown check failed", zap.Error(err))
		return nil
	}
	if !ok {
		return util.ErrResendTooSoon
	}
	return nil
}

// releaseCooldown frees the phone after an attempt that sent nothing.
func (s *VerificationService) releaseCooldown(ctx context.Context, phone string) {
	if s.Cfg == nil || s.Cfg.ResendCooldownSeconds <= 0 {
		return
	}
	if err := s.Store.ReleaseCooldown(ctx, phone); err != nil {
		logger.Log.Warn("Failed to release cooldown", zap.Error(err))
	}
}

func newCode() (string, string, error) {
	code, err := GenerateCode()
	if err != nil {
		return "", "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), CodeHashCost)
	if err != nil {
		return "", "", err
	}
	return code, string(hashed), nil
}
