package service

import (
	"context"
	"errors"

	"peymonak_backend/internal/config"
	"peymonak_backend/internal/model"
	"peymonak_backend/internal/repository"
	"peymonak_backend/internal/util"
	"peymonak_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TokenService issues, rotates and revokes JWT pairs.
type TokenService struct {
	Accounts *repository.AccountRepository
	Store    *RedisStore
	Cfg      *config.JWTConfig
}

func NewTokenService(accounts *repository.AccountRepository, store *RedisStore, cfg *config.JWTConfig) *TokenService {
	return &TokenService{Accounts: accounts, Store: store, Cfg: cfg}
}

func (s *TokenService) Issue(account *model.Account) (*util.TokenPair, error) {
	return util.GenerateTokenPair(account, s.Cfg.Secret, s.Cfg.AccessExpire, s.Cfg.RefreshExpire)
}

// Refresh exchanges a valid refresh token for a new pair and revokes the old one.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*util.TokenPair, error) {
	claims, err := s.parse(ctx, refreshToken, util.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	account, err := s.Accounts.FindByID(ctx, claims.AccountID)
	if err != nil {
		if isNotFound(err) {
			return nil, util.ErrInvalidToken
		}
		return nil, err
	}

	pair, err := s.Issue(account)
	if err != nil {
		return nil, err
	}
	if err := s.Store.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		logger.Log.Warn("Failed to revoke rotated refresh token", zap.Error(err))
	}
	return pair, nil
}

// Logout revokes the current access token and, if given, the refresh token.
func (s *TokenService) Logout(ctx context.Context, access *util.Claims, refreshToken string) error {
	if access != nil && access.ExpiresAt != nil {
		if err := s.Store.Revoke(ctx, access.ID, access.ExpiresAt.Time); err != nil {
			return err
		}
	}
	if refreshToken == "" {
		return nil
	}
	claims, err := util.ParseJWT(refreshToken, s.Cfg.Secret)
	if err != nil || claims.TokenType != util.TokenTypeRefresh {
		return util.ErrInvalidToken
	}
	if access != nil && claims.AccountID != access.AccountID {
		return util.ErrPermissionDenied
	}
	return s.Store.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// IsRevoked lets the auth middleware reject logged-out access tokens.
func (s *TokenService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.Store.IsRevoked(ctx, jti)
}

func (s *TokenService) parse(ctx context.Context, token, tokenType string) (*util.Claims, error) {
	claims, err := util.ParseJWT(token, s.Cfg.Secret)
	if err != nil || claims.TokenType != tokenType {
		return nil, util.ErrInvalidToken
	}
	revoked, err := s.Store.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, util.ErrInvalidToken
	}
	return claims, nil
}

type AuthService struct {
	DB       *gorm.DB
	Accounts *repository.AccountRepository
	Tokens   *TokenService
}

func NewAuthService(db *gorm.DB, accounts *repository.AccountRepository, tokens *TokenService) *AuthService {
	return &AuthService{DB: db, Accounts: accounts, Tokens: tokens}
}

type RegisterInput struct {
	PhoneNumber  string
	Role         model.Role
	NationalCode string
}

type RegisterResult struct {
	Account *model.Account  `json:"account"`
	Tokens  *util.TokenPair `json:"tokens,omitempty"`
}

func validateRegister(in RegisterInput) error {
	fields := map[string]string{}
	if err := validatePhone(in.PhoneNumber); err != nil {
		var appErr *util.AppError
		if errors.As(err, &appErr) {
			for k, v := range appErr.Fields {
				fields[k] = v
			}
		}
	}
	if !in.Role.Valid() {
		fields["role"] = "must be one of: Constructor, Contractor, Worker"
	}
	if !util.ValidNationalCode(in.NationalCode) {
		fields["nationalCode"] = "must be exactly 10 digits"
	}
	if len(fields) > 0 {
		return util.NewValidationError(fields)
	}
	return nil
}

// Register binds a role and national code to a phone number and marks the
// account verified. Tokens are only issued when the phone was proven by
// SubmitCode beforehand; otherwise the client logs in with a code.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	if err := validateRegister(in); err != nil {
		return nil, err
	}

	var (
		account     *model.Account
		issueTokens bool
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accounts := s.Accounts.WithTx(tx)

		holder, err := accounts.FindByNationalCode(ctx, in.NationalCode)
		if err == nil && holder.PhoneNumber != in.PhoneNumber {
			return util.ErrNationalCodeTaken
		}
		if err != nil && !isNotFound(err) {
			return err
		}

		account, err = accounts.FindByPhone(ctx, in.PhoneNumber)
		if err != nil && !isNotFound(err) {
			return err
		}

		code := in.NationalCode
		if isNotFound(err) {
			account = &model.Account{
				PhoneNumber:       in.PhoneNumber,
				Role:              in.Role,
				NationalCode:      &code,
				VerificationState: model.StateRegistrationComplete,
				IsVerified:        true,
			}
			return accounts.Create(ctx, account)
		}

		if account.VerificationState == model.StateRegistrationComplete {
			return util.ErrAlreadyRegistered
		}
		issueTokens = account.VerificationState == model.StateCodeVerified

		account.Role = in.Role
		account.NationalCode = &code
		account.IsVerified = true
		account.VerificationState = model.StateRegistrationComplete
		account.CodeHash = nil
		return accounts.Save(ctx, account)
	})
	if err != nil {
		if isDuplicate(err) {
			return nil, util.NewError(util.KindConflict, "phone number or national code is already registered")
		}
		return nil, err
	}

	logger.Log.Info("Account registered",
		zap.Uint("account_id", account.ID),
		zap.String("role", string(account.Role)),
	)

	result := &RegisterResult{Account: account}
	if issueTokens {
		if result.Tokens, err = s.Tokens.Issue(account); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *AuthService) CurrentAccount(ctx context.Context, accountID uint) (*model.Account, error) {
	account, err := s.Accounts.FindByID(ctx, accountID)
	if err != nil {
		if isNotFound(err) {
			return nil, util.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}
