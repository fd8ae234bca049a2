package tests

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/bannerhive/bannerhive/app/dto"
	businessflow "github.com/bannerhive/bannerhive/business_flow"
	"github.com/bannerhive/bannerhive/models"
	"github.com/bannerhive/bannerhive/repository"
	testingutil "github.com/bannerhive/bannerhive/testing"
	"github.com/bannerhive/bannerhive/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const adminUserID = uint(999)

func TestCreateBanner(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		_, adminFlow := newTestFlows(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		btfRepo := repository.NewBannerTagFeatureRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("MissingContent", func(t *testing.T) {
			featureID := uint(1)
			_, err := adminFlow.CreateBanner(ctx, &dto.CreateBannerRequest{
				UserID:    adminUserID,
				FeatureID: &featureID,
				TagIDs:    []uint{1},
			}, testMetadata())
			assert.True(t, businessflow.IsContentRequired(err))
		})

		t.Run("MissingFeature", func(t *testing.T) {
			_, err := adminFlow.CreateBanner(ctx, &dto.CreateBannerRequest{
				UserID:  adminUserID,
				Content: []byte(`{}`),
				TagIDs:  []uint{1},
			}, testMetadata())
			assert.True(t, businessflow.IsFeatureIDRequired(err))
		})

		t.Run("MissingTags", func(t *testing.T) {
			featureID := uint(1)
			_, err := adminFlow.CreateBanner(ctx, &dto.CreateBannerRequest{
				UserID:    adminUserID,
				Content:   []byte(`{}`),
				FeatureID: &featureID,
			}, testMetadata())
			assert.True(t, businessflow.IsTagsRequired(err))
		})

		t.Run("DuplicateTags", func(t *testing.T) {
			featureID := uint(1)
			_, err := adminFlow.CreateBanner(ctx, &dto.CreateBannerRequest{
				UserID:    adminUserID,
				Content:   []byte(`{}`),
				FeatureID: &featureID,
				TagIDs:    []uint{3, 3},
			}, testMetadata())
			assert.True(t, businessflow.IsDuplicateTagInput(err))

			// The rejected request must leave no rows behind
			var banners, associations int64
			require.NoError(t, testDB.DB.Model(&models.Banner{}).Count(&banners).Error)
			require.NoError(t, testDB.DB.Model(&models.BannerTagFeature{}).Count(&associations).Error)
			assert.Zero(t, banners)
			assert.Zero(t, associations)
		})

		t.Run("UnknownTag", func(t *testing.T) {
			feature, err := fixtures.CreateTestFeature()
			require.NoError(t, err)

			_, err = adminFlow.CreateBanner(ctx, &dto.CreateBannerRequest{
				UserID:    adminUserID,
				Content:   []byte(`{}`),
				FeatureID: &feature.ID,
				TagIDs:    []uint{999999},
			}, testMetadata())
			assert.True(t, businessflow.IsTagNotFound(err))
		})

		t.Run("UnknownFeature", func(t *testing.T) {
			tag, err := fixtures.CreateTestTag()
			require.NoError(t, err)

			missing := uint(999999)
			_, err = adminFlow.CreateBanner(ctx, &dto.CreateBannerRequest{
				UserID:    adminUserID,
				Content:   []byte(`{}`),
				FeatureID: &missing,
				TagIDs:    []uint{tag.ID},
			}, testMetadata())
			assert.True(t, businessflow.IsFeatureNotFound(err))
		})

		t.Run("CreatesBannerWithAssociations", func(t *testing.T) {
			feature, err := fixtures.CreateTestFeature()
			require.NoError(t, err)
			tag1, err := fixtures.CreateTestTag()
			require.NoError(t, err)
			tag2, err := fixtures.CreateTestTag()
			require.NoError(t, err)

			res, err := adminFlow.CreateBanner(ctx, &dto.CreateBannerRequest{
				UserID:    adminUserID,
				Content:   []byte(`{"title": "new"}`),
				FeatureID: &feature.ID,
				TagIDs:    []uint{tag1.ID, tag2.ID},
			}, testMetadata())
			require.NoError(t, err)
			assert.NotZero(t, res.BannerID)

			rows, err := btfRepo.ListByBanner(ctx, res.BannerID)
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, tag1.ID, rows[0].TagID)
			assert.Equal(t, feature.ID, rows[0].FeatureID)
		})

		t.Run("InactiveOnRequest", func(t *testing.T) {
			feature, err := fixtures.CreateTestFeature()
			require.NoError(t, err)
			tag, err := fixtures.CreateTestTag()
			require.NoError(t, err)

			res, err := adminFlow.CreateBanner(ctx, &dto.CreateBannerRequest{
				UserID:    adminUserID,
				Content:   []byte(`{}`),
				FeatureID: &feature.ID,
				TagIDs:    []uint{tag.ID},
				IsActive:  utils.ToPtr(false),
			}, testMetadata())
			require.NoError(t, err)

			var banner models.Banner
			require.NoError(t, testDB.DB.First(&banner, res.BannerID).Error)
			assert.False(t, utils.IsTrue(banner.IsActive))
		})

		t.Run("FailedInsertRollsBackCreate", func(t *testing.T) {
			feature, err := fixtures.CreateTestFeature()
			require.NoError(t, err)
			tag, err := fixtures.CreateTestTag()
			require.NoError(t, err)
			taken, err := fixtures.CreateTestBanner(feature.ID, "", true)
			require.NoError(t, err)

			var bannersBefore, associationsBefore int64
			require.NoError(t, testDB.DB.Model(&models.Banner{}).Count(&bannersBefore).Error)
			require.NoError(t, testDB.DB.Model(&models.BannerTagFeature{}).Count(&associationsBefore).Error)

			// Rewind the id sequence so the banner insert collides with an
			// existing row and the transaction aborts after validation passed
			require.NoError(t, testDB.DB.Exec(
				"SELECT setval('banners_id_seq', ?, false)", taken.ID).Error)

			_, err = adminFlow.CreateBanner(ctx, &dto.CreateBannerRequest{
				UserID:    adminUserID,
				Content:   []byte(`{}`),
				FeatureID: &feature.ID,
				TagIDs:    []uint{tag.ID},
			}, testMetadata())
			require.Error(t, err)

			require.NoError(t, testDB.DB.Exec(
				"SELECT setval('banners_id_seq', (SELECT MAX(id) FROM banners), true)").Error)

			var bannersAfter, associationsAfter int64
			require.NoError(t, testDB.DB.Model(&models.Banner{}).Count(&bannersAfter).Error)
			require.NoError(t, testDB.DB.Model(&models.BannerTagFeature{}).Count(&associationsAfter).Error)
			assert.Equal(t, bannersBefore, bannersAfter)
			assert.Equal(t, associationsBefore, associationsAfter)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestUpdateBanner(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		bannerFlow, adminFlow := newTestFlows(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		btfRepo := repository.NewBannerTagFeatureRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("NoFields", func(t *testing.T) {
			_, err := adminFlow.UpdateBanner(ctx, &dto.UpdateBannerRequest{
				ID:     1,
				UserID: adminUserID,
			}, testMetadata())
			assert.True(t, businessflow.IsNoUpdateFields(err))
		})

		t.Run("NotFound", func(t *testing.T) {
			_, err := adminFlow.UpdateBanner(ctx, &dto.UpdateBannerRequest{
				ID:      999999,
				UserID:  adminUserID,
				Content: []byte(`{}`),
			}, testMetadata())
			assert.True(t, businessflow.IsBannerNotFound(err))
		})

		t.Run("ContentAndActivation", func(t *testing.T) {
			_, _, banner, err := fixtures.CreateResolvableBanner(`{"rev": 1}`)
			require.NoError(t, err)

			res, err := adminFlow.UpdateBanner(ctx, &dto.UpdateBannerRequest{
				ID:       banner.ID,
				UserID:   adminUserID,
				Content:  []byte(`{"rev": 2}`),
				IsActive: utils.ToPtr(false),
			}, testMetadata())
			require.NoError(t, err)
			assert.JSONEq(t, `{"rev": 2}`, string(res.Banner.Content))
			assert.False(t, res.Banner.IsActive)
		})

		t.Run("ReplaceTagSet", func(t *testing.T) {
			tag, feature, banner, err := fixtures.CreateResolvableBanner("")
			require.NoError(t, err)
			newTag, err := fixtures.CreateTestTag()
			require.NoError(t, err)

			res, err := adminFlow.UpdateBanner(ctx, &dto.UpdateBannerRequest{
				ID:     banner.ID,
				UserID: adminUserID,
				TagIDs: &[]uint{newTag.ID},
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, []uint{newTag.ID}, res.Banner.TagIDs)

			rows, err := btfRepo.ListByBanner(ctx, banner.ID)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, newTag.ID, rows[0].TagID)
			assert.Equal(t, feature.ID, rows[0].FeatureID)
			assert.NotEqual(t, tag.ID, rows[0].TagID)
		})

		t.Run("ReplaceTagsRedirectsResolution", func(t *testing.T) {
			oldTag, feature, banner, err := fixtures.CreateResolvableBanner(`{"msg": "hello"}`)
			require.NoError(t, err)
			newTag, err := fixtures.CreateTestTag()
			require.NoError(t, err)

			_, err = adminFlow.UpdateBanner(ctx, &dto.UpdateBannerRequest{
				ID:     banner.ID,
				UserID: adminUserID,
				TagIDs: &[]uint{newTag.ID},
			}, testMetadata())
			require.NoError(t, err)

			// The old pair no longer resolves; the new pair serves the banner
			_, err = bannerFlow.ResolveBanner(ctx, &dto.ResolveBannerRequest{
				UserID:    600,
				TagID:     &oldTag.ID,
				FeatureID: &feature.ID,
			}, testMetadata())
			assert.True(t, businessflow.IsNoBannerForPair(err))

			res, err := bannerFlow.ResolveBanner(ctx, &dto.ResolveBannerRequest{
				UserID:    600,
				TagID:     &newTag.ID,
				FeatureID: &feature.ID,
			}, testMetadata())
			require.NoError(t, err)
			require.NotNil(t, res.BannerID)
			assert.Equal(t, banner.ID, *res.BannerID)
			assert.JSONEq(t, `{"msg": "hello"}`, string(res.Content))
		})

		t.Run("FeatureChangeMigratesAssociations", func(t *testing.T) {
			tag, _, banner, err := fixtures.CreateResolvableBanner("")
			require.NoError(t, err)
			newFeature, err := fixtures.CreateTestFeature()
			require.NoError(t, err)

			res, err := adminFlow.UpdateBanner(ctx, &dto.UpdateBannerRequest{
				ID:        banner.ID,
				UserID:    adminUserID,
				FeatureID: &newFeature.ID,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, newFeature.ID, res.Banner.FeatureID)

			rows, err := btfRepo.ListByBanner(ctx, banner.ID)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, tag.ID, rows[0].TagID)
			assert.Equal(t, newFeature.ID, rows[0].FeatureID)
		})

		t.Run("UnknownFeature", func(t *testing.T) {
			_, _, banner, err := fixtures.CreateResolvableBanner("")
			require.NoError(t, err)

			missing := uint(999999)
			_, err = adminFlow.UpdateBanner(ctx, &dto.UpdateBannerRequest{
				ID:        banner.ID,
				UserID:    adminUserID,
				FeatureID: &missing,
			}, testMetadata())
			assert.True(t, businessflow.IsFeatureNotFound(err))
		})

		t.Run("ConflictRollsBackWholeUpdate", func(t *testing.T) {
			tag, _, banner, err := fixtures.CreateResolvableBanner(`{"rev": 1}`)
			require.NoError(t, err)
			otherFeature, err := fixtures.CreateTestFeature()
			require.NoError(t, err)

			// A second association under a different feature; migrating both rows
			// to otherFeature would collide on the unique triple.
			_, err = fixtures.CreateTestAssociation(tag.ID, banner.ID, otherFeature.ID)
			require.NoError(t, err)

			_, err = adminFlow.UpdateBanner(ctx, &dto.UpdateBannerRequest{
				ID:        banner.ID,
				UserID:    adminUserID,
				Content:   []byte(`{"rev": 2}`),
				FeatureID: &otherFeature.ID,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsAssociationConflict(err))

			// The content change must not have been committed
			var reloaded models.Banner
			require.NoError(t, testDB.DB.First(&reloaded, banner.ID).Error)
			assert.JSONEq(t, `{"rev": 1}`, string(reloaded.Content))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestDeleteBanner(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		_, adminFlow := newTestFlows(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		btfRepo := repository.NewBannerTagFeatureRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("NotFound", func(t *testing.T) {
			err := adminFlow.DeleteBanner(ctx, 999999, adminUserID, testMetadata())
			assert.True(t, businessflow.IsBannerNotFound(err))
		})

		t.Run("ZeroID", func(t *testing.T) {
			err := adminFlow.DeleteBanner(ctx, 0, adminUserID, testMetadata())
			assert.True(t, businessflow.IsBannerIDRequired(err))
		})

		t.Run("DeletesBannerAndAssociations", func(t *testing.T) {
			_, _, banner, err := fixtures.CreateResolvableBanner("")
			require.NoError(t, err)

			require.NoError(t, adminFlow.DeleteBanner(ctx, banner.ID, adminUserID, testMetadata()))

			var count int64
			require.NoError(t, testDB.DB.Model(&models.Banner{}).Where("id = ?", banner.ID).Count(&count).Error)
			assert.Zero(t, count)

			rows, err := btfRepo.ListByBanner(ctx, banner.ID)
			require.NoError(t, err)
			assert.Empty(t, rows)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestExportBanners(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		_, adminFlow := newTestFlows(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		tag, feature, banner, err := fixtures.CreateResolvableBanner(`{"title": "export me"}`)
		require.NoError(t, err)

		filename, data, err := adminFlow.ExportBanners(ctx)
		require.NoError(t, err)
		assert.Equal(t, "banners.xlsx", filename)
		require.NotEmpty(t, data)

		xl, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer xl.Close()

		sheet := xl.GetSheetName(0)
		rows, err := xl.GetRows(sheet)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, []string{"id", "feature_id", "tag_ids", "is_active", "content", "created_at", "updated_at"}, rows[0])
		assert.Equal(t, strconv.FormatUint(uint64(banner.ID), 10), rows[1][0])
		assert.Equal(t, strconv.FormatUint(uint64(feature.ID), 10), rows[1][1])
		assert.Equal(t, strconv.FormatUint(uint64(tag.ID), 10), rows[1][2])
		assert.JSONEq(t, `{"title": "export me"}`, rows[1][4])

		return nil
	})
	require.NoError(t, err)
}
