package config

import "time"

// Application-wide constants organized by domain

// Database and Performance Constants
const (
	// Timeouts
	DefaultQueryTimeout = 30 * time.Second
	StatsQueryTimeout   = 10 * time.Second

	// Token cache settings
	TokenCacheSize       = 10000
	TokenCacheExpiration = 5 * time.Minute
)

// API and Rate Limiting Constants
const (
	GlobalRateLimit   = 100
	AuthAttemptLimit  = 5
	RateLimitWindow   = 1 * time.Minute
	MaxUploadBodySize = 12 * 1024 * 1024
)

// Validation Constants
const (
	MinPasswordLength = 5
	MaxEmailLength    = 255
	MaxNameLength     = 255
	MaxTitleLength    = 255
	MaxLinkLength     = 255

	// Price is stored as decimal(5,2)
	PriceMaxDigits     = 5
	PriceDecimalPlaces = 2
)

// File and Storage Constants
const (
	MaxImageSize    = 10 * 1024 * 1024 // 10MB
	RecipeImageRoot = "uploads/recipe/"
	TokenKeyBytes   = 20
)

// Search Constants
const (
	MaxSearchResults = 100
)
