package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "ordernorm"
	DefaultMongoConnTimeout  = 10 * time.Second
	DefaultAuditEnabled      = false

	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout   = 30 * time.Second
	DefaultIdempotencyTTL   = 24 * time.Hour
	DefaultMaxRequestSize   = 1 * 1024 * 1024 // 1MB
	DefaultMaxDocumentDepth = 64

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPayloadLocale   = "en-US"
	DefaultPayloadLocation = "51.159133, 4.806236"
	DefaultPayloadTimezone = "Central European Standard Time"
	DefaultPayloadCurrency = "EUR"

	DefaultBillingTimeout       = 10 * time.Second
	DefaultBillingPDFWait       = 5 * time.Second
	DefaultBillingPDFInterval   = 2 * time.Second
	DefaultBillingPDFMaxRetries = 4
)

const (
	DefaultTablesMaxRetries = 3
)
