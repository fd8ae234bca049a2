package tests

import (
	"testing"

	"github.com/bannerhive/bannerhive/app/dto"
	businessflow "github.com/bannerhive/bannerhive/business_flow"
	"github.com/bannerhive/bannerhive/repository"
	testingutil "github.com/bannerhive/bannerhive/testing"
	"github.com/bannerhive/bannerhive/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileFlow(testDB *testingutil.TestDB) businessflow.UserProfileFlow {
	profileRepo := repository.NewUserProfileRepository(testDB.DB)
	auditRepo := repository.NewAuditLogRepository(testDB.DB)
	return businessflow.NewUserProfileFlow(profileRepo, auditRepo, testDB.DB)
}

func TestUserProfileFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newProfileFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("GetNotFound", func(t *testing.T) {
			_, err := flow.GetProfile(ctx, 999999)
			assert.True(t, businessflow.IsUserProfileNotFound(err))
		})

		t.Run("Get", func(t *testing.T) {
			_, err := fixtures.CreateTestProfile(301, true)
			require.NoError(t, err)

			res, err := flow.GetProfile(ctx, 301)
			require.NoError(t, err)
			assert.Equal(t, uint(301), res.Profile.UserID)
			assert.True(t, res.Profile.UseLastRevision)
		})

		t.Run("UpdateCreatesMissingProfile", func(t *testing.T) {
			res, err := flow.UpdateProfile(ctx, &dto.UpdateUserProfileRequest{
				UserID:          302,
				UseLastRevision: utils.ToPtr(true),
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, uint(302), res.Profile.UserID)
			assert.True(t, res.Profile.UseLastRevision)

			reloaded, err := flow.GetProfile(ctx, 302)
			require.NoError(t, err)
			assert.True(t, reloaded.Profile.UseLastRevision)
		})

		t.Run("UpdateExistingProfile", func(t *testing.T) {
			_, err := fixtures.CreateTestProfile(303, true)
			require.NoError(t, err)

			res, err := flow.UpdateProfile(ctx, &dto.UpdateUserProfileRequest{
				UserID:          303,
				UseLastRevision: utils.ToPtr(false),
			}, testMetadata())
			require.NoError(t, err)
			assert.False(t, res.Profile.UseLastRevision)
		})

		t.Run("NilPreferenceKeepsExisting", func(t *testing.T) {
			_, err := fixtures.CreateTestProfile(305, true)
			require.NoError(t, err)

			res, err := flow.UpdateProfile(ctx, &dto.UpdateUserProfileRequest{
				UserID: 305,
			}, testMetadata())
			require.NoError(t, err)
			assert.True(t, res.Profile.UseLastRevision)
		})

		t.Run("NilPreferenceDefaultsOffOnCreate", func(t *testing.T) {
			res, err := flow.UpdateProfile(ctx, &dto.UpdateUserProfileRequest{
				UserID: 306,
			}, testMetadata())
			require.NoError(t, err)
			assert.False(t, res.Profile.UseLastRevision)

			reloaded, err := flow.GetProfile(ctx, 306)
			require.NoError(t, err)
			assert.False(t, reloaded.Profile.UseLastRevision)
		})

		t.Run("SnapshotFieldsExposed", func(t *testing.T) {
			tag, feature, _, err := fixtures.CreateResolvableBanner(`{"rev": 1}`)
			require.NoError(t, err)

			profile, err := fixtures.CreateTestProfile(304, false)
			require.NoError(t, err)
			now := utils.UTCNow()
			profile.LastTagID = &tag.ID
			profile.LastFeatureID = &feature.ID
			profile.LastContent = []byte(`{"rev": 1}`)
			profile.LastResolvedAt = &now
			require.NoError(t, repository.NewUserProfileRepository(testDB.DB).Update(ctx, profile))

			res, err := flow.GetProfile(ctx, 304)
			require.NoError(t, err)
			require.NotNil(t, res.Profile.LastTagID)
			assert.Equal(t, tag.ID, *res.Profile.LastTagID)
			require.NotNil(t, res.Profile.LastFeatureID)
			assert.Equal(t, feature.ID, *res.Profile.LastFeatureID)
			assert.NotEmpty(t, res.Profile.LastResolvedAt)
		})

		return nil
	})
	require.NoError(t, err)
}
