package service_test

import (
	"context"
	"testing"

	"peymonak_backend/internal/model"
	"peymonak_backend/internal/testutil"
	"peymonak_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavedAds(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	owner := poster(t, env, "09126660000", model.RoleConstructor)
	reader := env.Register(t, "09126660001", model.RoleWorker)
	stranger := env.Register(t, "09126660002", model.RoleWorker)

	ad, err := env.Ads.CreateAd(ctx, owner.ID, testutil.ValidAd(), testutil.Images(t, 1))
	require.NoError(t, err)

	saved, err := env.Saved.Save(ctx, reader.ID, ad.ID)
	require.NoError(t, err)

	_, err = env.Saved.Save(ctx, reader.ID, ad.ID)
	assert.ErrorIs(t, err, util.ErrAdAlreadySaved)
	_, err = env.Saved.Save(ctx, reader.ID, ad.ID+1)
	assert.ErrorIs(t, err, util.ErrAdNotFound)

	list, err := env.Saved.List(ctx, reader.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, ad.ID, list[0].AdID)
	assert.Equal(t, ad.Title, list[0].Title)
	assert.Len(t, list[0].ImageURLs, 1)

	assert.ErrorIs(t, env.Saved.Remove(ctx, stranger.ID, saved.ID), util.ErrNotSavedAdOwner)
	require.NoError(t, env.Saved.Remove(ctx, reader.ID, saved.ID))
	assert.ErrorIs(t, env.Saved.Remove(ctx, reader.ID, saved.ID), util.ErrSavedAdNotFound)
}
