// Package testing provides test utilities and database setup for testing the banner service
package testing

import (
	"encoding/json"
	"fmt"

	"github.com/bannerhive/bannerhive/models"
	"github.com/bannerhive/bannerhive/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestTag creates a tag registry row
func (tf *TestFixtures) CreateTestTag() (*models.Tag, error) {
	tag := &models.Tag{}
	if err := tf.DB.DB.Create(tag).Error; err != nil {
		return nil, fmt.Errorf("failed to create test tag: %w", err)
	}
	return tag, nil
}

// CreateTestFeature creates a feature registry row
func (tf *TestFixtures) CreateTestFeature() (*models.Feature, error) {
	feature := &models.Feature{}
	if err := tf.DB.DB.Create(feature).Error; err != nil {
		return nil, fmt.Errorf("failed to create test feature: %w", err)
	}
	return feature, nil
}

// CreateTestBanner creates a banner owned by the given feature
func (tf *TestFixtures) CreateTestBanner(featureID uint, content string, isActive bool) (*models.Banner, error) {
	if content == "" {
		content = `{"title": "test banner"}`
	}

	banner := &models.Banner{
		Content:   json.RawMessage(content),
		IsActive:  utils.ToPtr(isActive),
		FeatureID: featureID,
	}
	if err := tf.DB.DB.Create(banner).Error; err != nil {
		return nil, fmt.Errorf("failed to create test banner: %w", err)
	}
	return banner, nil
}

// CreateTestAssociation links a banner to a (tag, feature) lookup key
func (tf *TestFixtures) CreateTestAssociation(tagID, bannerID, featureID uint) (*models.BannerTagFeature, error) {
	assoc := &models.BannerTagFeature{
		TagID:     tagID,
		BannerID:  bannerID,
		FeatureID: featureID,
	}
	if err := tf.DB.DB.Create(assoc).Error; err != nil {
		return nil, fmt.Errorf("failed to create test association: %w", err)
	}
	return assoc, nil
}

// CreateResolvableBanner creates a tag, a feature, an active banner, and the
// association wiring them together. Returns all three rows.
func (tf *TestFixtures) CreateResolvableBanner(content string) (*models.Tag, *models.Feature, *models.Banner, error) {
	tag, err := tf.CreateTestTag()
	if err != nil {
		return nil, nil, nil, err
	}
	feature, err := tf.CreateTestFeature()
	if err != nil {
		return nil, nil, nil, err
	}
	banner, err := tf.CreateTestBanner(feature.ID, content, true)
	if err != nil {
		return nil, nil, nil, err
	}
	if _, err := tf.CreateTestAssociation(tag.ID, banner.ID, feature.ID); err != nil {
		return nil, nil, nil, err
	}
	return tag, feature, banner, nil
}

// CreateTestProfile creates a user profile with the given lookup-mode preference
func (tf *TestFixtures) CreateTestProfile(userID uint, useLastRevision bool) (*models.UserProfile, error) {
	profile := &models.UserProfile{
		UserID:          userID,
		UseLastRevision: utils.ToPtr(useLastRevision),
	}
	if err := tf.DB.DB.Create(profile).Error; err != nil {
		return nil, fmt.Errorf("failed to create test profile: %w", err)
	}
	return profile, nil
}

// CreateTestAuditLog creates a test audit log entry
func (tf *TestFixtures) CreateTestAuditLog(userID *uint, action string, success bool) (*models.AuditLog, error) {
	description := fmt.Sprintf("Test %s action", action)
	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	audit := &models.AuditLog{
		UserID:      userID,
		Action:      action,
		Description: &description,
		Success:     &success,
		IPAddress:   &ipAddress,
		UserAgent:   &userAgent,
	}

	if !success {
		errorMessage := "Test failed action"
		audit.ErrorMessage = &errorMessage
	}

	if err := tf.DB.DB.Create(audit).Error; err != nil {
		return nil, fmt.Errorf("failed to create test audit log: %w", err)
	}

	return audit, nil
}
