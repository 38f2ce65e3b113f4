package service_test

import (
	"context"
	"strings"
	"testing"

	"peymonak_backend/internal/model"
	"peymonak_backend/internal/service"
	"peymonak_backend/internal/testutil"
	"peymonak_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func TestCreateProfile(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	account := env.Register(t, "09125550000", model.RoleWorker)

	avatar := testutil.Images(t, 1)[0]
	profile, err := env.Profiles.Create(ctx, account.ID, service.ProfileInput{
		Name:        str("  Reza Karimi "),
		City:        str("Isfahan"),
		Gender:      str("male"),
		Skill:       str("welder"),
		Description: str("Ten years of structural welding"),
	}, &avatar, testutil.Images(t, 2))
	require.NoError(t, err)

	assert.Equal(t, "Reza Karimi", profile.Name)
	assert.Equal(t, "Isfahan", profile.City)
	require.NotNil(t, profile.Skill)
	assert.Equal(t, "welder", *profile.Skill)
	assert.True(t, strings.HasPrefix(profile.AvatarKey, util.ScopeProfilePicture+"/"))
	assert.Len(t, profile.SampleImages, 2)
	assert.Equal(t, 3, env.Storage.Len())

	_, err = env.Profiles.Create(ctx, account.ID, service.ProfileInput{
		Name: str("Again"), City: str("Tehran"), Gender: str("male"),
	}, nil, nil)
	assert.ErrorIs(t, err, util.ErrProfileExists)

	public, err := env.Profiles.GetPublic(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Reza Karimi", public.FullName)
	assert.Equal(t, profile.AvatarURL, public.ProfilePicture)
}

func TestCreateProfileValidation(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	account := env.Register(t, "09125550001", model.RoleWorker)

	_, err := env.Profiles.Create(ctx, account.ID, service.ProfileInput{
		City:   str("Springfield"),
		Gender: str("other"),
		Skill:  str("astronaut"),
	}, nil, testutil.Images(t, 1))
	var appErr *util.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "name")
	assert.Contains(t, appErr.Fields, "city")
	assert.Contains(t, appErr.Fields, "gender")
	assert.Contains(t, appErr.Fields, "skill")
	assert.Zero(t, env.Storage.Len())

	_, err = env.Profiles.Create(ctx, account.ID, service.ProfileInput{
		Name: str("Sara"), City: str("Tehran"), Gender: str("female"),
	}, nil, testutil.Images(t, model.MaxSampleImages+1))
	assert.ErrorIs(t, err, util.ErrSampleLimit)
	assert.Zero(t, env.Storage.Len())

	_, err = env.Profiles.GetOwn(ctx, account.ID)
	assert.ErrorIs(t, err, util.ErrProfileNotFound)
}

func TestUpdateProfile(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	account := env.Register(t, "09125550002", model.RoleConstructor)

	avatar := testutil.Images(t, 1)[0]
	_, err := env.Profiles.Create(ctx, account.ID, service.ProfileInput{
		Name: str("Sara"), City: str("Tehran"), Gender: str("female"),
	}, &avatar, testutil.Images(t, 4))
	require.NoError(t, err)

	_, err = env.Profiles.Update(ctx, account.ID, service.ProfileInput{}, nil, testutil.Images(t, 2))
	assert.ErrorIs(t, err, util.ErrSampleLimit)

	_, err = env.Profiles.Update(ctx, account.ID, service.ProfileInput{Name: str("  ")}, nil, nil)
	assert.Equal(t, util.KindValidation, util.KindOf(err))

	replacement := testutil.Images(t, 1)[0]
	updated, err := env.Profiles.Update(ctx, account.ID, service.ProfileInput{City: str("Qom")}, &replacement, testutil.Images(t, 1))
	require.NoError(t, err)
	assert.Equal(t, "Qom", updated.City)
	assert.Equal(t, "Sara", updated.Name)
	assert.Len(t, updated.SampleImages, model.MaxSampleImages)
	// old avatar replaced: 1 avatar + 5 samples
	assert.Equal(t, 6, env.Storage.Len())

	cleared, err := env.Profiles.Update(ctx, account.ID, service.ProfileInput{ClearAvatar: true}, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, cleared.AvatarKey)
	assert.Equal(t, 5, env.Storage.Len())
}

func TestDeleteSampleImage(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	owner := env.Register(t, "09125550003", model.RoleWorker)
	other := env.Register(t, "09125550004", model.RoleWorker)

	profile, err := env.Profiles.Create(ctx, owner.ID, service.ProfileInput{
		Name: str("Ali"), City: str("Fars"), Gender: str("male"),
	}, nil, testutil.Images(t, 2))
	require.NoError(t, err)
	env.CreateProfile(t, other.ID)

	sample := profile.SampleImages[0]
	assert.ErrorIs(t, env.Profiles.DeleteSampleImage(ctx, other.ID, sample.ID), util.ErrPermissionDenied)
	assert.ErrorIs(t, env.Profiles.DeleteSampleImage(ctx, owner.ID, sample.ID+100), util.ErrImageNotFound)

	require.NoError(t, env.Profiles.DeleteSampleImage(ctx, owner.ID, sample.ID))
	got, err := env.Profiles.GetOwn(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, got.SampleImages, 1)
	assert.Equal(t, 1, env.Storage.Len())
}
