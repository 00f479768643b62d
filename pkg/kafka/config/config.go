package kafka_config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config is the stream transport configuration. Field tags carry the
// constraints checked by Validate.
type Config struct {
	Enabled bool
	Brokers []string `validate:"required,min=1,dive,hostname_port"`

	InputTopic  string `validate:"required"`
	OutputTopic string `validate:"required,nefield=InputTopic"`
	DLQTopic    string
	GroupID     string `validate:"required"`

	ProducerMaxAttempts  int           `validate:"gt=0"`
	ProducerBatchTimeout time.Duration `validate:"gt=0"`
	ProducerRequireAcks  int           `validate:"oneof=-1 0 1"`
	ProducerCompression  string        `validate:"oneof=none gzip snappy lz4 zstd"`
	ProducerAsync        bool

	// -1 newest, -2 oldest, anything else an absolute offset.
	ConsumerStartOffset       int64         `validate:"gte=-2"`
	ConsumerMinBytes          int           `validate:"gt=0"`
	ConsumerMaxBytes          int           `validate:"gtefield=ConsumerMinBytes"`
	ConsumerMaxWait           time.Duration `validate:"gt=0"`
	ConsumerCommitInterval    time.Duration `validate:"gt=0"`
	ConsumerHeartbeatInterval time.Duration `validate:"gt=0"`
	ConsumerSessionTimeout    time.Duration `validate:"gtfield=ConsumerHeartbeatInterval"`
	ConsumerRebalanceTimeout  time.Duration `validate:"gt=0"`
	ConsumerMaxRetries        int           `validate:"gte=0"`

	EnableMiddleware bool
}

// Load reads KAFKA_* variables over the defaults. A disabled config is
// returned as is; an enabled one must parse and validate.
func Load() (*Config, error) {
	env := &envReader{}

	cfg := &Config{
		Enabled: env.boolean(EnvKafkaEnabled, DefaultKafkaEnabled),
		Brokers: splitBrokers(env.str(EnvKafkaBrokers, DefaultKafkaBrokers)),

		InputTopic:  env.str(EnvKafkaInputTopic, DefaultInputTopic),
		OutputTopic: env.str(EnvKafkaOutputTopic, DefaultOutputTopic),
		DLQTopic:    env.str(EnvKafkaDLQTopic, DefaultDLQTopic),
		GroupID:     env.str(EnvKafkaGroupID, DefaultGroupID),

		ProducerMaxAttempts:  env.integer(EnvKafkaProducerMaxAttempts, DefaultProducerMaxAttempts),
		ProducerBatchTimeout: env.duration(EnvKafkaProducerBatchTimeout, DefaultProducerBatchTimeout),
		ProducerRequireAcks:  env.integer(EnvKafkaProducerRequireAcks, DefaultProducerRequireAcks),
		ProducerCompression:  strings.ToLower(env.str(EnvKafkaProducerCompression, DefaultProducerCompression)),
		ProducerAsync:        env.boolean(EnvKafkaProducerAsync, DefaultProducerAsync),

		ConsumerStartOffset:       int64(env.integer(EnvKafkaConsumerStartOffset, DefaultConsumerStartOffset)),
		ConsumerMinBytes:          env.integer(EnvKafkaConsumerMinBytes, DefaultConsumerMinBytes),
		ConsumerMaxBytes:          env.integer(EnvKafkaConsumerMaxBytes, DefaultConsumerMaxBytes),
		ConsumerMaxWait:           env.duration(EnvKafkaConsumerMaxWait, DefaultConsumerMaxWait),
		ConsumerCommitInterval:    env.duration(EnvKafkaConsumerCommitInterval, DefaultConsumerCommitInterval),
		ConsumerHeartbeatInterval: env.duration(EnvKafkaConsumerHeartbeatInterval, DefaultConsumerHeartbeatInterval),
		ConsumerSessionTimeout:    env.duration(EnvKafkaConsumerSessionTimeout, DefaultConsumerSessionTimeout),
		ConsumerRebalanceTimeout:  env.duration(EnvKafkaConsumerRebalanceTimeout, DefaultConsumerRebalanceTimeout),
		ConsumerMaxRetries:        env.integer(EnvKafkaConsumerMaxRetries, DefaultConsumerMaxRetries),

		EnableMiddleware: env.boolean(EnvKafkaEnableMiddleware, DefaultEnableMiddleware),
	}

	if !cfg.Enabled {
		return cfg, nil
	}

	problems := env.problems
	if err := cfg.Validate(); err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return nil, err
		}
		problems = append(problems, verr.Problems...)
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return cfg, nil
}

// ValidationError lists every problem found in one pass.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("Kafka configuration validation failed:\n")
	for i, p := range e.Problems {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, p)
	}
	return b.String()
}

// Validate checks the struct constraints and returns a *ValidationError.
func (cfg *Config) Validate() error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate kafka config: %w", err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}
	return &ValidationError{Problems: problems}
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "min":
		return field + " cannot be empty"
	case "hostname_port":
		return fmt.Sprintf("%s must be host:port, got: %q", field, fe.Value())
	case "nefield":
		return fmt.Sprintf("%s must differ from %s, both are: %v", field, fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got: %v", field, fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be positive, got: %v", field, fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be at least %s, got: %v", field, fe.Param(), fe.Value())
	case "gtefield", "gtfield":
		return fmt.Sprintf("%s must exceed %s, got: %v", field, fe.Param(), fe.Value())
	}
	return fe.Error()
}

func splitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// LogConfiguration logs the Kafka configuration through logFunc, typically
// a bound logger method such as log.Info.
func (cfg *Config) LogConfiguration(logFunc func(msg string, args ...any)) {
	if logFunc == nil {
		return
	}
	if !cfg.Enabled {
		logFunc("Kafka disabled")
		return
	}

	logFunc("Kafka stream configured",
		"brokers", cfg.Brokers,
		"topics", fmt.Sprintf("%s -> %s (dlq %s)", cfg.InputTopic, cfg.OutputTopic, cfg.DLQTopic),
		"group_id", cfg.GroupID,
		"producer", fmt.Sprintf("acks=%d compression=%s attempts=%d async=%t", cfg.ProducerRequireAcks, cfg.ProducerCompression, cfg.ProducerMaxAttempts, cfg.ProducerAsync),
		"consumer_start_offset", cfg.ConsumerStartOffset,
		"consumer_max_retries", cfg.ConsumerMaxRetries,
		"consumer_session_timeout", cfg.ConsumerSessionTimeout,
		"enable_middleware", cfg.EnableMiddleware,
	)
}

// envReader falls back to the default for unset variables and records a
// problem for set-but-malformed ones.
type envReader struct {
	problems []string
}

func (r *envReader) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func (r *envReader) parse(key string, parse func(string) error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	if err := parse(strings.TrimSpace(v)); err != nil {
		r.problems = append(r.problems, fmt.Sprintf("%s: cannot parse %q", key, v))
	}
}

func (r *envReader) integer(key string, def int) int {
	out := def
	r.parse(key, func(s string) error {
		n, err := strconv.Atoi(s)
		if err == nil {
			out = n
		}
		return err
	})
	return out
}

func (r *envReader) boolean(key string, def bool) bool {
	out := def
	r.parse(key, func(s string) error {
		b, err := strconv.ParseBool(s)
		if err == nil {
			out = b
		}
		return err
	})
	return out
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	out := def
	r.parse(key, func(s string) error {
		d, err := time.ParseDuration(s)
		if err == nil {
			out = d
		}
		return err
	})
	return out
}
