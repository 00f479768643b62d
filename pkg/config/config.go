package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"ordernorm/pkg/client"
	kafka_config "ordernorm/pkg/kafka/config"
	"ordernorm/pkg/locale"
	"ordernorm/pkg/logger"
	"ordernorm/pkg/normalize"
)

type Config struct {
	ServiceName string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration
	AuditEnabled      bool

	Port string

	WebhookSecret string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout   time.Duration
	IdempotencyTTL   time.Duration
	MaxRequestSize   int
	MaxDocumentDepth int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	DateInputFormats []string
	DateOutputFormat string
	CurrencySymbols  []string
	RulesFile        string

	Payload client.PayloadProperties

	BillingBaseURL       string
	BillingAPIKey        string
	BillingTimeout       time.Duration
	BillingPDFWait       time.Duration
	BillingPDFInterval   time.Duration
	BillingPDFMaxRetries int

	TablesBaseURL    string
	TablesAppID      string
	TablesAccessKey  string
	TablesMaxRetries int

	NotifyBaseURL  string
	NotifyAPIKey   string
	NotifyDeviceID string

	Kafka *kafka_config.Config

	Log    *logger.Logger
	Client *client.Client
}

// Load reads the service configuration from the environment and exits on
// invalid settings.
func Load(serviceName string) *Config {
	cfg, err := FromEnv(serviceName)
	if err != nil {
		if cfg != nil && cfg.Log != nil {
			cfg.Log.Fatal(err.Error())
		}
		logger.New(logger.Config{Service: serviceName}).Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// FromEnv is Load without the exit: it returns every validation problem in
// one error.
func FromEnv(serviceName string) (*Config, error) {
	cfg := &Config{
		ServiceName: serviceName,

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),
		AuditEnabled:      getEnvBool(EnvAuditEnabled, DefaultAuditEnabled),

		Port: getEnvStr(EnvPort, DefaultPort),

		WebhookSecret: getEnvStr(EnvWebhookSecret, ""),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout:   getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL:   getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize:   getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),
		MaxDocumentDepth: getEnvNum(EnvMaxDocumentDepth, DefaultMaxDocumentDepth),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		DateInputFormats: getEnvList(EnvDateInputFormats, []string{normalize.DateFormatUS, normalize.DateFormatDayFirst}),
		DateOutputFormat: getEnvStr(EnvDateOutputFormat, normalize.DateFormatISO),
		CurrencySymbols:  getEnvList(EnvCurrencySymbols, normalize.DefaultCurrencySymbols),
		RulesFile:        getEnvStr(EnvRulesFile, ""),

		Payload: client.PayloadProperties{
			Locale:   getEnvStr(EnvPayloadLocale, DefaultPayloadLocale),
			Location: getEnvStr(EnvPayloadLocation, DefaultPayloadLocation),
			Timezone: locale.WindowsZone(getEnvStr(EnvPayloadTimezone, DefaultPayloadTimezone)),
			Currency: getEnvStr(EnvPayloadCurrency, DefaultPayloadCurrency),
		},

		BillingBaseURL:       getEnvStr(EnvBillingBaseURL, ""),
		BillingAPIKey:        getEnvStr(EnvBillingAPIKey, ""),
		BillingTimeout:       getEnvDuration(EnvBillingTimeout, DefaultBillingTimeout),
		BillingPDFWait:       getEnvDuration(EnvBillingPDFWait, DefaultBillingPDFWait),
		BillingPDFInterval:   getEnvDuration(EnvBillingPDFInterval, DefaultBillingPDFInterval),
		BillingPDFMaxRetries: getEnvNum(EnvBillingPDFMaxRetries, DefaultBillingPDFMaxRetries),

		TablesBaseURL:    getEnvStr(EnvTablesBaseURL, ""),
		TablesAppID:      getEnvStr(EnvTablesAppID, ""),
		TablesAccessKey:  getEnvStr(EnvTablesAccessKey, ""),
		TablesMaxRetries: getEnvNum(EnvTablesMaxRetries, DefaultTablesMaxRetries),

		NotifyBaseURL:  getEnvStr(EnvNotifyBaseURL, ""),
		NotifyAPIKey:   getEnvStr(EnvNotifyAPIKey, ""),
		NotifyDeviceID: getEnvStr(EnvNotifyDeviceID, ""),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    getEnvStr(EnvLogFormat, DefaultLogFormat),
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	kafkaCfg, kafkaErr := kafka_config.Load()
	cfg.Kafka = kafkaCfg

	err := cfg.Validate()
	if kafkaErr != nil {
		if err == nil {
			return cfg, kafkaErr
		}
		return cfg, fmt.Errorf("%w\n%v", err, kafkaErr)
	}
	if err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SetMongo connects the shared Mongo client and exits when the database is
// unreachable.
func (cfg *Config) SetMongo() {
	if err := cfg.Client.ConnectMongo(cfg.MongoURI, cfg.ServiceName, cfg.MongoConnTimeout); err != nil {
		cfg.Log.Fatal("MongoDB unavailable", "uri", redactMongoURI(cfg.MongoURI), "error", err)
	}
	cfg.Log.Info("Connected to MongoDB", "database", cfg.MongoDatabaseName)
}

// NormalizeOptions builds the cleaning pipeline options from the config.
func (cfg *Config) NormalizeOptions() normalize.Options {
	return normalize.Options{
		DateInputFormats: cfg.DateInputFormats,
		DateOutputFormat: cfg.DateOutputFormat,
		CurrencySymbols:  cfg.CurrencySymbols,
		Log:              cfg.Log,
	}
}

// BillingEnabled reports whether a billing API is configured.
func (cfg *Config) BillingEnabled() bool {
	return cfg.BillingBaseURL != ""
}

func (cfg *Config) BillingConfig() client.BillingConfig {
	return client.BillingConfig{
		BaseURL:        cfg.BillingBaseURL,
		APIKey:         cfg.BillingAPIKey,
		Timeout:        cfg.BillingTimeout,
		PDFInitialWait: cfg.BillingPDFWait,
		PDFInterval:    cfg.BillingPDFInterval,
		PDFMaxRetries:  cfg.BillingPDFMaxRetries,
	}
}

func (cfg *Config) TablesEnabled() bool {
	return cfg.TablesBaseURL != ""
}

func (cfg *Config) TablesConfig() client.TablesConfig {
	return client.TablesConfig{
		BaseURL:    cfg.TablesBaseURL,
		AppID:      cfg.TablesAppID,
		AccessKey:  cfg.TablesAccessKey,
		MaxRetries: cfg.TablesMaxRetries,
		Properties: cfg.Payload,
	}
}

// NotifyEnabled reports whether failed runs raise a push notification.
func (cfg *Config) NotifyEnabled() bool {
	return cfg.NotifyBaseURL != ""
}

func (cfg *Config) NotifyConfig() client.NotifyConfig {
	return client.NotifyConfig{
		BaseURL:  cfg.NotifyBaseURL,
		APIKey:   cfg.NotifyAPIKey,
		DeviceID: cfg.NotifyDeviceID,
	}
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.AuditEnabled {
		if cfg.MongoURI == "" {
			errors = append(errors, "MongoURI cannot be empty when audit is enabled")
		} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
		if cfg.MongoConnTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
		}
	}

	positiveDurations := []struct {
		name string
		d    time.Duration
	}{
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"BillingTimeout", cfg.BillingTimeout},
		{"BillingPDFInterval", cfg.BillingPDFInterval},
	}
	for _, p := range positiveDurations {
		if p.d <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", p.name, p.d))
		}
	}
	if cfg.BillingPDFWait < 0 {
		errors = append(errors, fmt.Sprintf("BillingPDFWait cannot be negative, got: %s", cfg.BillingPDFWait))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.MaxDocumentDepth <= 0 {
		errors = append(errors, fmt.Sprintf("MaxDocumentDepth must be positive, got: %d", cfg.MaxDocumentDepth))
	}
	if cfg.BillingPDFMaxRetries < 0 {
		errors = append(errors, fmt.Sprintf("BillingPDFMaxRetries cannot be negative, got: %d", cfg.BillingPDFMaxRetries))
	}
	if cfg.TablesMaxRetries <= 0 {
		errors = append(errors, fmt.Sprintf("TablesMaxRetries must be positive, got: %d", cfg.TablesMaxRetries))
	}

	for _, format := range cfg.DateInputFormats {
		if _, err := normalize.Layout(format, true); err != nil {
			errors = append(errors, fmt.Sprintf("DateInputFormats: %v", err))
		}
	}
	if _, err := normalize.Layout(cfg.DateOutputFormat, false); err != nil {
		errors = append(errors, fmt.Sprintf("DateOutputFormat: %v", err))
	}
	if len(cfg.CurrencySymbols) == 0 {
		errors = append(errors, "CurrencySymbols cannot be empty")
	}

	if cfg.BillingBaseURL != "" {
		if u, err := url.Parse(cfg.BillingBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("BillingBaseURL must be an absolute URL, got: %s", cfg.BillingBaseURL))
		}
		if cfg.BillingAPIKey == "" {
			errors = append(errors, "BillingAPIKey cannot be empty when BillingBaseURL is set")
		}
	}
	if cfg.TablesBaseURL != "" && (cfg.TablesAppID == "" || cfg.TablesAccessKey == "") {
		errors = append(errors, "TablesAppID and TablesAccessKey are required when TablesBaseURL is set")
	}
	if cfg.NotifyBaseURL != "" {
		if u, err := url.Parse(cfg.NotifyBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("NotifyBaseURL must be an absolute URL, got: %s", cfg.NotifyBaseURL))
		}
		if cfg.NotifyAPIKey == "" || cfg.NotifyDeviceID == "" {
			errors = append(errors, "NotifyAPIKey and NotifyDeviceID are required when NotifyBaseURL is set")
		}
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"audit_enabled", cfg.AuditEnabled,
		"port", cfg.Port,
		"webhook_secret_set", cfg.WebhookSecret != "",
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"max_document_depth", cfg.MaxDocumentDepth,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"date_input_formats", cfg.DateInputFormats,
		"date_output_format", cfg.DateOutputFormat,
		"currency_symbols", cfg.CurrencySymbols,
		"rules_file", cfg.RulesFile,
		"payload_locale", cfg.Payload.Locale,
		"payload_timezone", cfg.Payload.Timezone,
		"billing_enabled", cfg.BillingEnabled(),
		"tables_enabled", cfg.TablesEnabled(),
		"notify_enabled", cfg.NotifyEnabled(),
	)
	if cfg.Kafka != nil {
		cfg.Kafka.LogConfiguration(cfg.Log.Info)
	}
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma separated value. Date formats never contain
// commas, so no escaping is supported.
func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), fallback...)
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// GracefulShutdown releases the shared connections.
func (cfg *Config) GracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := cfg.Client.Close(ctx); err != nil {
		cfg.Log.Error("Failed to disconnect from MongoDB", "error", err)
	}
}
