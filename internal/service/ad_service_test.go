package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"peymonak_backend/internal/model"
	"peymonak_backend/internal/service"
	"peymonak_backend/internal/testutil"
	"peymonak_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// poster registers an account with a profile, ready to create ads.
func poster(t *testing.T, env *testutil.Env, phone string, role model.Role) *model.Account {
	t.Helper()
	account := env.Register(t, phone, role)
	env.CreateProfile(t, account.ID)
	return account
}

func countAds(t *testing.T, env *testutil.Env, accountID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.DB.Model(&model.Ad{}).Where("account_id = ?", accountID).Count(&n).Error)
	return n
}

func TestCreateAdQuotaByRole(t *testing.T) {
	cases := []struct {
		role  model.Role
		quota int
	}{
		{model.RoleConstructor, 5},
		{model.RoleContractor, 1},
		{model.RoleWorker, 1},
	}
	for i, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			env := testutil.NewEnv(t)
			ctx := context.Background()
			owner := poster(t, env, fmt.Sprintf("0912333000%d", i), tc.role)

			for n := 0; n < tc.quota; n++ {
				_, err := env.Ads.CreateAd(ctx, owner.ID, testutil.ValidAd(), nil)
				require.NoError(t, err)
			}

			_, err := env.Ads.CreateAd(ctx, owner.ID, testutil.ValidAd(), nil)
			assert.ErrorIs(t, err, util.ErrAdQuotaExceeded)
			assert.Equal(t, util.KindQuotaExceeded, util.KindOf(err))
			assert.EqualValues(t, tc.quota, countAds(t, env, owner.ID))
		})
	}
}

func TestCreateAdQuotaUnderConcurrency(t *testing.T) {
	env := testutil.NewEnv(t)
	owner := poster(t, env, "09123330010", model.RoleWorker)

	var g errgroup.Group
	results := make([]error, 6)
	for i := range results {
		g.Go(func() error {
			_, results[i] = env.Ads.CreateAd(context.Background(), owner.ID, testutil.ValidAd(), nil)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	created := 0
	for _, err := range results {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, util.ErrAdQuotaExceeded)
	}
	assert.Equal(t, 1, created)
	assert.EqualValues(t, 1, countAds(t, env, owner.ID))
}

func TestCreateAdWorkerIsAlwaysIndividual(t *testing.T) {
	env := testutil.NewEnv(t)
	owner := poster(t, env, "09123330011", model.RoleWorker)

	in := testutil.ValidAd()
	in.CooperationKind = model.CooperationCompany
	ad, err := env.Ads.CreateAd(context.Background(), owner.ID, in, nil)
	require.NoError(t, err)
	require.NotNil(t, ad.CooperationKind)
	assert.Equal(t, model.CooperationIndividual, *ad.CooperationKind)
	assert.Equal(t, model.RoleWorker, ad.OwnerRole)
	assert.Equal(t, "Test User", ad.OwnerName)
	assert.Equal(t, owner.PhoneNumber, ad.PhoneNumber)
	assert.Equal(t, model.AdStatusActive, ad.Status)
}

func TestCreateAdValidation(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	constructor := poster(t, env, "09123330012", model.RoleConstructor)
	worker := poster(t, env, "09123330013", model.RoleWorker)

	in := testutil.ValidAd()
	in.Title = strings.Repeat("x", model.MaxAdTitleLength+1)
	in.Fee = "12a"
	in.Province = "Atlantis"
	_, err := env.Ads.CreateAd(ctx, constructor.ID, in, nil)
	var appErr *util.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, util.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Fields, "title")
	assert.Contains(t, appErr.Fields, "fee")
	assert.Contains(t, appErr.Fields, "province")

	in = testutil.ValidAd()
	in.Skill = ""
	_, err = env.Ads.CreateAd(ctx, worker.ID, in, nil)
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "skill")

	in.CooperationKind = ""
	ad, err := env.Ads.CreateAd(ctx, constructor.ID, in, nil)
	require.Error(t, err)
	assert.Nil(t, ad)
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "cooperationKind")

	in.CooperationKind = model.CooperationCompany
	ad, err = env.Ads.CreateAd(ctx, constructor.ID, in, nil)
	require.NoError(t, err)
	assert.Nil(t, ad.Skill)

	in.Fee = "2500000"
	_, err = env.Ads.CreateAd(ctx, constructor.ID, in, nil)
	assert.NoError(t, err)
}

func TestCreateAdPreconditions(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	_, err := env.Verification.RequestCode(ctx, "09123330014")
	require.NoError(t, err)
	pending := findAccount(t, env, "09123330014")
	_, err = env.Ads.CreateAd(ctx, pending.ID, testutil.ValidAd(), nil)
	assert.ErrorIs(t, err, util.ErrNotVerified)

	noProfile := env.Register(t, "09123330015", model.RoleConstructor)
	_, err = env.Ads.CreateAd(ctx, noProfile.ID, testutil.ValidAd(), nil)
	assert.ErrorIs(t, err, util.ErrProfileRequired)

	_, err = env.Ads.CreateAd(ctx, 9999, testutil.ValidAd(), nil)
	assert.ErrorIs(t, err, util.ErrAccountNotFound)
}

func TestCreateAdStoresImages(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	owner := poster(t, env, "09123330016", model.RoleConstructor)

	ad, err := env.Ads.CreateAd(ctx, owner.ID, testutil.ValidAd(), testutil.Images(t, 2))
	require.NoError(t, err)
	require.Len(t, ad.Images, 2)
	assert.Equal(t, 2, env.Storage.Len())
	for _, img := range ad.Images {
		assert.True(t, strings.HasPrefix(img.StorageKey, util.ScopeAdImage+"/"), img.StorageKey)
		assert.True(t, strings.HasSuffix(img.StorageKey, "_compressed.jpg"), img.StorageKey)
		assert.Equal(t, "/images/"+img.StorageKey, img.URL)
	}

	_, err = env.Ads.CreateAd(ctx, owner.ID, testutil.ValidAd(), testutil.Images(t, model.MaxAdImages+1))
	assert.ErrorIs(t, err, util.ErrAdImageLimit)

	bad := append(testutil.Images(t, 1), service.ImageFile{Name: "notes.txt", Data: []byte("plain text, not an image")})
	_, err = env.Ads.CreateAd(ctx, owner.ID, testutil.ValidAd(), bad)
	assert.Equal(t, util.KindValidation, util.KindOf(err))
	assert.Equal(t, 2, env.Storage.Len())
	assert.EqualValues(t, 1, countAds(t, env, owner.ID))
}

func TestCreateAdStorageFailureLeavesNothing(t *testing.T) {
	env := testutil.NewEnv(t)
	owner := poster(t, env, "09123330017", model.RoleConstructor)
	env.Storage.FailAfter = 1

	_, err := env.Ads.CreateAd(context.Background(), owner.ID, testutil.ValidAd(), testutil.Images(t, 3))
	require.Error(t, err)
	assert.Zero(t, env.Storage.Len())
	assert.Zero(t, countAds(t, env, owner.ID))
}

func TestListAdsFilters(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	constructor := poster(t, env, "09123330018", model.RoleConstructor)
	worker := poster(t, env, "09123330019", model.RoleWorker)

	in := testutil.ValidAd()
	in.Title = "Brick wall repair"
	in.Province = "Isfahan"
	_, err := env.Ads.CreateAd(ctx, constructor.ID, in, nil)
	require.NoError(t, err)

	in = testutil.ValidAd()
	in.Title = "Electric wiring 100%"
	in.Skill = "electrician"
	_, err = env.Ads.CreateAd(ctx, constructor.ID, in, nil)
	require.NoError(t, err)

	in = testutil.ValidAd()
	in.Title = "Experienced welder"
	in.Skill = "welder"
	_, err = env.Ads.CreateAd(ctx, worker.ID, in, nil)
	require.NoError(t, err)

	ads, total, err := env.Ads.ListAds(ctx, service.AdQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, "Experienced welder", ads[0].Title)

	_, total, err = env.Ads.ListAds(ctx, service.AdQuery{Province: "Isfahan"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	ads, total, err = env.Ads.ListAds(ctx, service.AdQuery{Search: "wiring"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, "Electric wiring 100%", ads[0].Title)

	_, total, err = env.Ads.ListAds(ctx, service.AdQuery{Search: "100%"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = env.Ads.ListAds(ctx, service.AdQuery{Roles: "Worker,Contractor"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = env.Ads.ListAds(ctx, service.AdQuery{Roles: "Nobody"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	ads, _, err = env.Ads.ListAds(ctx, service.AdQuery{Ordering: "title"})
	require.NoError(t, err)
	assert.Equal(t, "Brick wall repair", ads[0].Title)

	ads, total, err = env.Ads.ListAds(ctx, service.AdQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, ads, 1)

	_, _, err = env.Ads.ListAds(ctx, service.AdQuery{CreatedFrom: "yesterday"})
	assert.Equal(t, util.KindValidation, util.KindOf(err))

	mine, total, err := env.Ads.ListMyAds(ctx, worker.ID, service.AdQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, worker.ID, mine[0].AccountID)
}

func TestUpdateAdAndActiveListing(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	owner := poster(t, env, "09123330020", model.RoleConstructor)
	other := poster(t, env, "09123330021", model.RoleWorker)

	ad, err := env.Ads.CreateAd(ctx, owner.ID, testutil.ValidAd(), nil)
	require.NoError(t, err)

	title := "Updated title"
	_, err = env.Ads.UpdateAd(ctx, other.ID, ad.ID, service.AdUpdateInput{Title: &title}, nil)
	assert.ErrorIs(t, err, util.ErrNotAdOwner)

	inactive := model.AdStatusInactive
	updated, err := env.Ads.UpdateAd(ctx, owner.ID, ad.ID, service.AdUpdateInput{Title: &title, Status: &inactive}, testutil.Images(t, 1))
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, model.AdStatusInactive, updated.Status)
	assert.Len(t, updated.Images, 1)

	_, total, err := env.Ads.ListActiveAds(ctx, service.AdQuery{})
	require.NoError(t, err)
	assert.Zero(t, total)

	_, err = env.Ads.UpdateAd(ctx, owner.ID, ad.ID, service.AdUpdateInput{}, testutil.Images(t, model.MaxAdImages))
	assert.ErrorIs(t, err, util.ErrAdImageLimit)

	bad := "free"
	_, err = env.Ads.UpdateAd(ctx, owner.ID, ad.ID, service.AdUpdateInput{Fee: &bad}, nil)
	assert.Equal(t, util.KindValidation, util.KindOf(err))
}

func TestDeleteAdRemovesImagesAndBookmarks(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	owner := poster(t, env, "09123330022", model.RoleConstructor)
	reader := env.Register(t, "09123330023", model.RoleWorker)

	ad, err := env.Ads.CreateAd(ctx, owner.ID, testutil.ValidAd(), testutil.Images(t, 2))
	require.NoError(t, err)
	_, err = env.Saved.Save(ctx, reader.ID, ad.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, env.Ads.DeleteAd(ctx, reader.ID, ad.ID), util.ErrNotAdOwner)
	require.NoError(t, env.Ads.DeleteAd(ctx, owner.ID, ad.ID))

	assert.Zero(t, env.Storage.Len())
	_, err = env.Ads.GetAd(ctx, ad.ID)
	assert.ErrorIs(t, err, util.ErrAdNotFound)

	saved, err := env.Saved.List(ctx, reader.ID)
	require.NoError(t, err)
	assert.Empty(t, saved)

	_, err = env.Ads.CreateAd(ctx, owner.ID, testutil.ValidAd(), nil)
	assert.NoError(t, err)
}

func TestReportAd(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	owner := poster(t, env, "09123330024", model.RoleConstructor)
	reporter := env.Register(t, "09123330025", model.RoleWorker)

	ad, err := env.Ads.CreateAd(ctx, owner.ID, testutil.ValidAd(), nil)
	require.NoError(t, err)

	_, err = env.Ads.ReportAd(ctx, reporter.ID, ad.ID, "   ")
	assert.Equal(t, util.KindValidation, util.KindOf(err))

	_, err = env.Ads.ReportAd(ctx, reporter.ID, ad.ID+1, "spam")
	assert.ErrorIs(t, err, util.ErrAdNotFound)

	report, err := env.Ads.ReportAd(ctx, reporter.ID, ad.ID, "misleading fee")
	require.NoError(t, err)
	assert.Equal(t, ad.ID, report.AdID)
	assert.Equal(t, "misleading fee", report.Message)
}
