package utils

import (
	"fmt"
	"time"
)

// ContextKey is the type for request-scoped context values
type ContextKey string

// Context keys populated by handlers for downstream flows
const (
	RequestIDKey  ContextKey = "request_id"
	UserIDKey     ContextKey = "user_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// Cache constants
const (
	// BannerContentCacheTTL bounds staleness of the read-side content cache;
	// admin writes invalidate eagerly, the TTL is the safety net
	BannerContentCacheTTL = 5 * time.Minute
)

// BannerContentCacheKey builds the redis key for a resolved (tag, feature) pair
func BannerContentCacheKey(prefix string, tagID, featureID uint) string {
	return fmt.Sprintf("%sbanner:content:%d:%d", prefix, tagID, featureID)
}

// Pagination limits
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)
