package kafka_config

import "time"

// Stream defaults. Topics follow the <domain>.<stage> naming used by the
// ERP connectors.
const (
	DefaultKafkaEnabled = false
	DefaultKafkaBrokers = "localhost:9092"

	DefaultInputTopic  = "orders.raw"
	DefaultOutputTopic = "orders.normalized"
	DefaultDLQTopic    = "orders.dlq"
	DefaultGroupID     = "ordernorm-normalizer"
)

const (
	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = false
)

const (
	DefaultConsumerStartOffset       = -1
	DefaultConsumerMinBytes          = 1
	DefaultConsumerMaxBytes          = 4 << 20
	DefaultConsumerMaxWait           = 250 * time.Millisecond
	DefaultConsumerCommitInterval    = time.Second
	DefaultConsumerHeartbeatInterval = 3 * time.Second
	DefaultConsumerSessionTimeout    = 30 * time.Second
	DefaultConsumerRebalanceTimeout  = time.Minute
	DefaultConsumerMaxRetries        = 3

	DefaultEnableMiddleware = true
)
