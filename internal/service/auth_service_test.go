package service_test

import (
	"context"
	"testing"

	"peymonak_backend/internal/model"
	"peymonak_backend/internal/service"
	"peymonak_backend/internal/testutil"
	"peymonak_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAfterVerificationIssuesTokens(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	phone := "09122220000"

	_, err := env.Verification.RequestCode(ctx, phone)
	require.NoError(t, err)
	_, err = env.Verification.SubmitCode(ctx, phone, env.SMS.LastCode(t, phone))
	require.NoError(t, err)

	res, err := env.Auth.Register(ctx, service.RegisterInput{
		PhoneNumber:  phone,
		Role:         model.RoleConstructor,
		NationalCode: "0012345678",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Tokens)
	assert.True(t, res.Account.IsVerified)
	assert.Equal(t, model.RoleConstructor, res.Account.Role)
	assert.Equal(t, model.StateRegistrationComplete, res.Account.VerificationState)
	assert.Equal(t, "0012345678", *res.Account.NationalCode)
}

func TestRegisterWithoutVerifiedCodeHasNoTokens(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	res, err := env.Auth.Register(ctx, service.RegisterInput{
		PhoneNumber:  "09122220001",
		Role:         model.RoleWorker,
		NationalCode: "0012345679",
	})
	require.NoError(t, err)
	assert.Nil(t, res.Tokens)
	assert.True(t, res.Account.IsVerified)
}

func TestRegisterValidation(t *testing.T) {
	env := testutil.NewEnv(t)

	_, err := env.Auth.Register(context.Background(), service.RegisterInput{
		PhoneNumber:  "123",
		Role:         "Architect",
		NationalCode: "12ab",
	})
	require.Error(t, err)

	var appErr *util.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, util.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Fields, "phoneNumber")
	assert.Contains(t, appErr.Fields, "role")
	assert.Contains(t, appErr.Fields, "nationalCode")
}

func TestRegisterConflicts(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	env.Register(t, "09122220002", model.RoleContractor)

	_, err := env.Auth.Register(ctx, service.RegisterInput{
		PhoneNumber:  "09122220002",
		Role:         model.RoleWorker,
		NationalCode: testutil.NationalCodeFor("09122220002"),
	})
	assert.ErrorIs(t, err, util.ErrAlreadyRegistered)

	_, err = env.Auth.Register(ctx, service.RegisterInput{
		PhoneNumber:  "09122220003",
		Role:         model.RoleWorker,
		NationalCode: testutil.NationalCodeFor("09122220002"),
	})
	assert.ErrorIs(t, err, util.ErrNationalCodeTaken)
}

func TestTokenRefreshRotates(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	account := env.Register(t, "09122220004", model.RoleWorker)
	pair, err := env.Tokens.Issue(account)
	require.NoError(t, err)

	next, err := env.Tokens.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	claims, err := util.ParseJWT(next.AccessToken, testutil.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.AccountID)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	_, err = env.Tokens.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, util.ErrInvalidToken)

	_, err = env.Tokens.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, util.ErrInvalidToken)
}

func TestLogoutRejectsForeignRefreshToken(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	alice := env.Register(t, "09122220005", model.RoleWorker)
	bob := env.Register(t, "09122220006", model.RoleWorker)
	alicePair, err := env.Tokens.Issue(alice)
	require.NoError(t, err)
	bobPair, err := env.Tokens.Issue(bob)
	require.NoError(t, err)

	access, err := util.ParseJWT(alicePair.AccessToken, testutil.JWTSecret)
	require.NoError(t, err)

	assert.ErrorIs(t, env.Tokens.Logout(ctx, access, bobPair.RefreshToken), util.ErrPermissionDenied)
	assert.NoError(t, env.Tokens.Logout(ctx, access, alicePair.RefreshToken))
}

func TestCurrentAccount(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	account := env.Register(t, "09122220007", model.RoleConstructor)
	got, err := env.Auth.CurrentAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.PhoneNumber, got.PhoneNumber)

	_, err = env.Auth.CurrentAccount(ctx, account.ID+100)
	assert.ErrorIs(t, err, util.ErrAccountNotFound)
}
