package utils

import (
	"time"
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Cache key constants
const (
	// PricingRulesCacheKey holds the active quick-engine rule set as JSON
	PricingRulesCacheKey = "pricing:rules:active"

	// RegionZipCacheKeyPrefix prefixes zip-to-region lookups, one key per zip
	RegionZipCacheKeyPrefix = "pricing:region:zip:"

	// PricingRulesCacheTTL bounds staleness of the cached rule set
	PricingRulesCacheTTL = 5 * time.Minute

	// RegionZipCacheTTL bounds staleness of cached region lookups
	RegionZipCacheTTL = 15 * time.Minute
)
