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

func TestWorkerOnboardingFlow(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	phone := "989127770000"

	_, err := env.Verification.RequestCode(ctx, phone)
	require.NoError(t, err)

	submitted, err := env.Verification.SubmitCode(ctx, phone, env.SMS.LastCode(t, phone))
	require.NoError(t, err)
	assert.Equal(t, service.NextRegister, submitted.Next)

	registered, err := env.Auth.Register(ctx, service.RegisterInput{
		PhoneNumber:  phone,
		Role:         model.RoleWorker,
		NationalCode: "1234567890",
	})
	require.NoError(t, err)
	require.NotNil(t, registered.Tokens)
	assert.True(t, registered.Account.IsVerified)

	claims, err := util.ParseJWT(registered.Tokens.AccessToken, testutil.JWTSecret)
	require.NoError(t, err)
	accountID := claims.AccountID

	_, err = env.Profiles.Create(ctx, accountID, service.ProfileInput{
		Name:   str("Mehdi"),
		City:   str("Tehran"),
		Gender: str("male"),
		Skill:  str("mason"),
	}, nil, nil)
	require.NoError(t, err)

	ad, err := env.Ads.CreateAd(ctx, accountID, service.AdInput{
		Title:           "Mason available",
		Description:     "Brickwork and plastering",
		Fee:             "negotiable",
		Province:        "Tehran",
		CooperationKind: model.CooperationCompany,
		Skill:           "mason",
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, ad.CooperationKind)
	assert.Equal(t, model.CooperationIndividual, *ad.CooperationKind)
	require.NotNil(t, ad.Skill)
	assert.Equal(t, "mason", *ad.Skill)

	_, err = env.Ads.CreateAd(ctx, accountID, testutil.ValidAd(), nil)
	assert.ErrorIs(t, err, util.ErrAdQuotaExceeded)

	active, total, err := env.Ads.ListActiveAds(ctx, service.AdQuery{Province: "Tehran"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, ad.ID, active[0].ID)
}
