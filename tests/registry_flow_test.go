package tests

import (
	"testing"

	"github.com/bannerhive/bannerhive/app/dto"
	businessflow "github.com/bannerhive/bannerhive/business_flow"
	"github.com/bannerhive/bannerhive/repository"
	testingutil "github.com/bannerhive/bannerhive/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistryFlow(testDB *testingutil.TestDB) businessflow.RegistryFlow {
	tagRepo := repository.NewTagRepository(testDB.DB)
	featureRepo := repository.NewFeatureRepository(testDB.DB)
	auditRepo := repository.NewAuditLogRepository(testDB.DB)
	return businessflow.NewRegistryFlow(tagRepo, featureRepo, auditRepo, testDB.DB)
}

func TestRegistryFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newRegistryFlow(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("SeedTags", func(t *testing.T) {
			res, err := flow.SeedTags(ctx, &dto.SeedRequest{UserID: adminUserID, Count: 5}, testMetadata())
			require.NoError(t, err)
			assert.Len(t, res.IDs, 5)
			for _, id := range res.IDs {
				assert.NotZero(t, id)
			}
		})

		t.Run("SeedFeatures", func(t *testing.T) {
			res, err := flow.SeedFeatures(ctx, &dto.SeedRequest{UserID: adminUserID, Count: 3}, testMetadata())
			require.NoError(t, err)
			assert.Len(t, res.IDs, 3)
		})

		t.Run("SeedCountTooSmall", func(t *testing.T) {
			_, err := flow.SeedTags(ctx, &dto.SeedRequest{UserID: adminUserID, Count: 0}, testMetadata())
			assert.True(t, businessflow.IsSeedCountInvalid(err))
		})

		t.Run("SeedCountTooLarge", func(t *testing.T) {
			_, err := flow.SeedFeatures(ctx, &dto.SeedRequest{UserID: adminUserID, Count: 1001}, testMetadata())
			assert.True(t, businessflow.IsSeedCountInvalid(err))
		})

		t.Run("ListTags", func(t *testing.T) {
			res, err := flow.ListTags(ctx, &dto.ListRegistryRequest{Page: 1, Limit: 3})
			require.NoError(t, err)
			assert.Len(t, res.Items, 3)
			assert.GreaterOrEqual(t, res.Pagination.Total, int64(5))
			assert.NotEmpty(t, res.Items[0].CreatedAt)
		})

		t.Run("ListFeatures", func(t *testing.T) {
			res, err := flow.ListFeatures(ctx, &dto.ListRegistryRequest{})
			require.NoError(t, err)
			assert.GreaterOrEqual(t, len(res.Items), 3)
		})

		t.Run("ListInvalidPage", func(t *testing.T) {
			_, err := flow.ListTags(ctx, &dto.ListRegistryRequest{Page: -2})
			assert.True(t, businessflow.IsInvalidPage(err))
		})

		return nil
	})
	require.NoError(t, err)
}
