// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"
	"time"

	"github.com/bannerhive/bannerhive/models"
	"github.com/bannerhive/bannerhive/repository"
	testingutil "github.com/bannerhive/bannerhive/testing"
	"github.com/bannerhive/bannerhive/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewTagRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("Save", func(t *testing.T) {
			tag, err := fixtures.CreateTestTag()
			require.NoError(t, err)
			assert.NotZero(t, tag.ID)
		})

		t.Run("SaveBatch", func(t *testing.T) {
			rows := []*models.Tag{{}, {}, {}}
			require.NoError(t, repo.SaveBatch(ctx, rows))
			for _, r := range rows {
				assert.NotZero(t, r.ID)
			}
		})

		t.Run("ListByIDs", func(t *testing.T) {
			tag1, err := fixtures.CreateTestTag()
			require.NoError(t, err)
			tag2, err := fixtures.CreateTestTag()
			require.NoError(t, err)

			tags, err := repo.ListByIDs(ctx, []uint{tag1.ID, tag2.ID})
			require.NoError(t, err)
			assert.Len(t, tags, 2)

			// Missing ids simply do not come back
			tags, err = repo.ListByIDs(ctx, []uint{tag1.ID, 999999})
			require.NoError(t, err)
			assert.Len(t, tags, 1)
		})

		t.Run("Exists", func(t *testing.T) {
			tag, err := fixtures.CreateTestTag()
			require.NoError(t, err)

			exists, err := repo.Exists(ctx, models.TagFilter{ID: &tag.ID})
			require.NoError(t, err)
			assert.True(t, exists)

			missing := uint(999999)
			exists, err = repo.Exists(ctx, models.TagFilter{ID: &missing})
			require.NoError(t, err)
			assert.False(t, exists)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestBannerRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewBannerRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByIDNotFound", func(t *testing.T) {
			banner, err := repo.ByID(ctx, 999999)
			assert.NoError(t, err)
			assert.Nil(t, banner)
		})

		t.Run("ResolveActiveByTagAndFeature", func(t *testing.T) {
			tag, feature, banner, err := fixtures.CreateResolvableBanner(`{"title": "hello"}`)
			require.NoError(t, err)

			resolved, err := repo.ResolveActiveByTagAndFeature(ctx, tag.ID, feature.ID)
			require.NoError(t, err)
			require.NotNil(t, resolved)
			assert.Equal(t, banner.ID, resolved.ID)
			assert.JSONEq(t, `{"title": "hello"}`, string(resolved.Content))
		})

		t.Run("ResolveSkipsInactiveBanner", func(t *testing.T) {
			tag, err := fixtures.CreateTestTag()
			require.NoError(t, err)
			feature, err := fixtures.CreateTestFeature()
			require.NoError(t, err)
			banner, err := fixtures.CreateTestBanner(feature.ID, "", false)
			require.NoError(t, err)
			_, err = fixtures.CreateTestAssociation(tag.ID, banner.ID, feature.ID)
			require.NoError(t, err)

			resolved, err := repo.ResolveActiveByTagAndFeature(ctx, tag.ID, feature.ID)
			require.NoError(t, err)
			assert.Nil(t, resolved)
		})

		t.Run("ResolveNewestUpdatedAtWins", func(t *testing.T) {
			tag, err := fixtures.CreateTestTag()
			require.NoError(t, err)
			feature, err := fixtures.CreateTestFeature()
			require.NoError(t, err)

			older, err := fixtures.CreateTestBanner(feature.ID, `{"v": 1}`, true)
			require.NoError(t, err)
			newer, err := fixtures.CreateTestBanner(feature.ID, `{"v": 2}`, true)
			require.NoError(t, err)

			_, err = fixtures.CreateTestAssociation(tag.ID, older.ID, feature.ID)
			require.NoError(t, err)
			_, err = fixtures.CreateTestAssociation(tag.ID, newer.ID, feature.ID)
			require.NoError(t, err)

			// Make the ordering unambiguous
			require.NoError(t, testDB.DB.Exec(
				"UPDATE banners SET updated_at = ? WHERE id = ?",
				time.Now().UTC().Add(time.Hour), newer.ID).Error)

			resolved, err := repo.ResolveActiveByTagAndFeature(ctx, tag.ID, feature.ID)
			require.NoError(t, err)
			require.NotNil(t, resolved)
			assert.Equal(t, newer.ID, resolved.ID)
		})

		t.Run("ResolveMiss", func(t *testing.T) {
			tag, err := fixtures.CreateTestTag()
			require.NoError(t, err)
			feature, err := fixtures.CreateTestFeature()
			require.NoError(t, err)

			resolved, err := repo.ResolveActiveByTagAndFeature(ctx, tag.ID, feature.ID)
			require.NoError(t, err)
			assert.Nil(t, resolved)
		})

		t.Run("ByFilterTagID", func(t *testing.T) {
			tag, feature, banner, err := fixtures.CreateResolvableBanner("")
			require.NoError(t, err)
			_ = feature

			banners, err := repo.ByFilter(ctx, models.BannerFilter{TagID: &tag.ID}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, banners, 1)
			assert.Equal(t, banner.ID, banners[0].ID)
		})

		t.Run("CountByFeature", func(t *testing.T) {
			feature, err := fixtures.CreateTestFeature()
			require.NoError(t, err)
			_, err = fixtures.CreateTestBanner(feature.ID, "", true)
			require.NoError(t, err)
			_, err = fixtures.CreateTestBanner(feature.ID, "", false)
			require.NoError(t, err)

			count, err := repo.Count(ctx, models.BannerFilter{FeatureID: &feature.ID})
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)
		})

		t.Run("UpdateAndDelete", func(t *testing.T) {
			feature, err := fixtures.CreateTestFeature()
			require.NoError(t, err)
			banner, err := fixtures.CreateTestBanner(feature.ID, `{"v": 1}`, true)
			require.NoError(t, err)

			banner.Content = []byte(`{"v": 2}`)
			banner.IsActive = utils.ToPtr(false)
			require.NoError(t, repo.Update(ctx, banner))

			reloaded, err := repo.ByID(ctx, banner.ID)
			require.NoError(t, err)
			require.NotNil(t, reloaded)
			assert.JSONEq(t, `{"v": 2}`, string(reloaded.Content))
			assert.False(t, utils.IsTrue(reloaded.IsActive))

			require.NoError(t, repo.Delete(ctx, banner.ID))
			gone, err := repo.ByID(ctx, banner.ID)
			require.NoError(t, err)
			assert.Nil(t, gone)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestBannerTagFeatureRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewBannerTagFeatureRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("UniqueTripleViolation", func(t *testing.T) {
			tag, feature, banner, err := fixtures.CreateResolvableBanner("")
			require.NoError(t, err)

			err = repo.Save(ctx, &models.BannerTagFeature{
				TagID:     tag.ID,
				BannerID:  banner.ID,
				FeatureID: feature.ID,
			})
			require.Error(t, err)
			assert.True(t, repository.IsUniqueViolation(err))
		})

		t.Run("ListByBanner", func(t *testing.T) {
			feature, err := fixtures.CreateTestFeature()
			require.NoError(t, err)
			banner, err := fixtures.CreateTestBanner(feature.ID, "", true)
			require.NoError(t, err)

			tag1, err := fixtures.CreateTestTag()
			require.NoError(t, err)
			tag2, err := fixtures.CreateTestTag()
			require.NoError(t, err)
			_, err = fixtures.CreateTestAssociation(tag1.ID, banner.ID, feature.ID)
			require.NoError(t, err)
			_, err = fixtures.CreateTestAssociation(tag2.ID, banner.ID, feature.ID)
			require.NoError(t, err)

			rows, err := repo.ListByBanner(ctx, banner.ID)
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, tag1.ID, rows[0].TagID)
			assert.Equal(t, tag2.ID, rows[1].TagID)
		})

		t.Run("DeleteByBanner", func(t *testing.T) {
			_, _, banner, err := fixtures.CreateResolvableBanner("")
			require.NoError(t, err)

			require.NoError(t, repo.DeleteByBanner(ctx, banner.ID))
			rows, err := repo.ListByBanner(ctx, banner.ID)
			require.NoError(t, err)
			assert.Empty(t, rows)
		})

		t.Run("UpdateFeatureByBanner", func(t *testing.T) {
			tag, _, banner, err := fixtures.CreateResolvableBanner("")
			require.NoError(t, err)
			newFeature, err := fixtures.CreateTestFeature()
			require.NoError(t, err)

			require.NoError(t, repo.UpdateFeatureByBanner(ctx, banner.ID, newFeature.ID))

			rows, err := repo.ListByBanner(ctx, banner.ID)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, tag.ID, rows[0].TagID)
			assert.Equal(t, newFeature.ID, rows[0].FeatureID)
		})

		t.Run("CascadeOnBannerDelete", func(t *testing.T) {
			_, _, banner, err := fixtures.CreateResolvableBanner("")
			require.NoError(t, err)

			require.NoError(t, testDB.DB.Exec("DELETE FROM banners WHERE id = ?", banner.ID).Error)

			rows, err := repo.ListByBanner(ctx, banner.ID)
			require.NoError(t, err)
			assert.Empty(t, rows)
		})

		t.Run("CascadeOnTagDelete", func(t *testing.T) {
			tag, _, banner, err := fixtures.CreateResolvableBanner("")
			require.NoError(t, err)

			require.NoError(t, testDB.DB.Exec("DELETE FROM tags WHERE id = ?", tag.ID).Error)

			rows, err := repo.ListByBanner(ctx, banner.ID)
			require.NoError(t, err)
			assert.Empty(t, rows)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestUserProfileRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewUserProfileRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByUserID", func(t *testing.T) {
			profile, err := fixtures.CreateTestProfile(101, true)
			require.NoError(t, err)

			found, err := repo.ByUserID(ctx, 101)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, profile.ID, found.ID)
			assert.True(t, utils.IsTrue(found.UseLastRevision))
		})

		t.Run("ByUserIDNotFound", func(t *testing.T) {
			found, err := repo.ByUserID(ctx, 999999)
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("DuplicateUserID", func(t *testing.T) {
			_, err := fixtures.CreateTestProfile(102, false)
			require.NoError(t, err)

			err = repo.Save(ctx, &models.UserProfile{
				UserID:          102,
				UseLastRevision: utils.ToPtr(false),
			})
			require.Error(t, err)
			assert.True(t, repository.IsUniqueViolation(err))
		})

		t.Run("UpdateSnapshot", func(t *testing.T) {
			tag, _, _, err := fixtures.CreateResolvableBanner(`{"v": 1}`)
			require.NoError(t, err)

			profile, err := fixtures.CreateTestProfile(103, false)
			require.NoError(t, err)

			now := time.Now().UTC()
			profile.LastTagID = &tag.ID
			profile.LastContent = []byte(`{"v": 1}`)
			profile.LastResolvedAt = &now
			require.NoError(t, repo.Update(ctx, profile))

			reloaded, err := repo.ByUserID(ctx, 103)
			require.NoError(t, err)
			require.NotNil(t, reloaded)
			require.NotNil(t, reloaded.LastTagID)
			assert.Equal(t, tag.ID, *reloaded.LastTagID)
			assert.True(t, reloaded.HasSnapshotFor(tag.ID))
		})

		t.Run("LastTagNulledOnTagDelete", func(t *testing.T) {
			tag, err := fixtures.CreateTestTag()
			require.NoError(t, err)

			profile, err := fixtures.CreateTestProfile(104, true)
			require.NoError(t, err)
			profile.LastTagID = &tag.ID
			profile.LastContent = []byte(`{"v": 1}`)
			require.NoError(t, repo.Update(ctx, profile))

			require.NoError(t, testDB.DB.Exec("DELETE FROM tags WHERE id = ?", tag.ID).Error)

			reloaded, err := repo.ByUserID(ctx, 104)
			require.NoError(t, err)
			require.NotNil(t, reloaded)
			assert.Nil(t, reloaded.LastTagID)
			// Content survives; only the back-reference is dropped
			assert.NotEmpty(t, reloaded.LastContent)
		})

		return nil
	})
	require.NoError(t, err)
}
