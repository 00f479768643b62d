package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"
	EnvAuditEnabled      = "AUDIT_ENABLED"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvWebhookSecret = "WEBHOOK_SECRET"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout   = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL   = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize   = "MAX_REQUEST_SIZE"
	EnvMaxDocumentDepth = "MAX_DOCUMENT_DEPTH"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	// Pipeline
	EnvDateInputFormats = "DATE_INPUT_FORMATS"
	EnvDateOutputFormat = "DATE_OUTPUT_FORMAT"
	EnvCurrencySymbols  = "CURRENCY_SYMBOLS"
	EnvRulesFile        = "MAPPING_RULES_FILE"

	// Outgoing billing payload
	EnvPayloadLocale   = "PAYLOAD_LOCALE"
	EnvPayloadLocation = "PAYLOAD_LOCATION"
	EnvPayloadTimezone = "PAYLOAD_TIMEZONE"
	EnvPayloadCurrency = "PAYLOAD_CURRENCY"

	// Billing API
	EnvBillingBaseURL       = "BILLING_BASE_URL"
	EnvBillingAPIKey        = "BILLING_API_KEY"
	EnvBillingTimeout       = "BILLING_TIMEOUT"
	EnvBillingPDFWait       = "BILLING_PDF_INITIAL_WAIT"
	EnvBillingPDFInterval   = "BILLING_PDF_INTERVAL"
	EnvBillingPDFMaxRetries = "BILLING_PDF_MAX_RETRIES"
)

// Table sync API
const (
	EnvTablesBaseURL    = "TABLES_BASE_URL"
	EnvTablesAppID      = "TABLES_APP_ID"
	EnvTablesAccessKey  = "TABLES_ACCESS_KEY"
	EnvTablesMaxRetries = "TABLES_MAX_RETRIES"
)

// Failure notifications
const (
	EnvNotifyBaseURL  = "NOTIFY_BASE_URL"
	EnvNotifyAPIKey   = "NOTIFY_API_KEY"
	EnvNotifyDeviceID = "NOTIFY_DEVICE_ID"
)
