// Package businessflow contains the core business logic and use cases for banner workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Validation errors (malformed or missing input)
	ErrTagIDRequired     = errors.New("tag_id is required")
	ErrFeatureIDRequired = errors.New("feature_id is required")
	ErrContentRequired   = errors.New("banner content is required")
	ErrTagsRequired      = errors.New("at least one tag is required")
	ErrDuplicateTagInput = errors.New("duplicate tag in request")
	ErrBannerIDRequired  = errors.New("banner id is required")
	ErrNoUpdateFields    = errors.New("at least one field must be provided for update")
	ErrSeedCountInvalid  = errors.New("count must be between 1 and 1000")

	// Not-found errors
	ErrTagNotFound         = errors.New("tag not found")
	ErrFeatureNotFound     = errors.New("feature not found")
	ErrBannerNotFound      = errors.New("banner not found")
	ErrNoBannerForPair     = errors.New("no active banner for tag and feature")
	ErrUserProfileNotFound = errors.New("user profile not found")

	// Conflict errors
	ErrAssociationConflict = errors.New("banner already associated with this tag and feature")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsTagIDRequired(err error) bool {
	return errors.Is(err, ErrTagIDRequired)
}

func IsFeatureIDRequired(err error) bool {
	return errors.Is(err, ErrFeatureIDRequired)
}

func IsContentRequired(err error) bool {
	return errors.Is(err, ErrContentRequired)
}

func IsTagsRequired(err error) bool {
	return errors.Is(err, ErrTagsRequired)
}

func IsDuplicateTagInput(err error) bool {
	return errors.Is(err, ErrDuplicateTagInput)
}

func IsBannerIDRequired(err error) bool {
	return errors.Is(err, ErrBannerIDRequired)
}

func IsNoUpdateFields(err error) bool {
	return errors.Is(err, ErrNoUpdateFields)
}

func IsSeedCountInvalid(err error) bool {
	return errors.Is(err, ErrSeedCountInvalid)
}

func IsTagNotFound(err error) bool {
	return errors.Is(err, ErrTagNotFound)
}

func IsFeatureNotFound(err error) bool {
	return errors.Is(err, ErrFeatureNotFound)
}

func IsBannerNotFound(err error) bool {
	return errors.Is(err, ErrBannerNotFound)
}

func IsNoBannerForPair(err error) bool {
	return errors.Is(err, ErrNoBannerForPair)
}

func IsUserProfileNotFound(err error) bool {
	return errors.Is(err, ErrUserProfileNotFound)
}

func IsAssociationConflict(err error) bool {
	return errors.Is(err, ErrAssociationConflict)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}
