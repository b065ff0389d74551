package kafka_config

import "time"

const (
	DefaultKafkaBrokers = "localhost:9092"

	// Scheduling events are keyed by resource id, so ordering per key relies
	// on every replica acknowledging before the next write.
	DefaultProducerMaxAttempts            = 3
	DefaultProducerBatchTimeout           = 10 * time.Millisecond
	DefaultProducerWriteTimeout           = 10 * time.Second
	DefaultProducerRequireAcks            = -1
	DefaultProducerCompression            = "snappy"
	DefaultProducerAsync                  = false
	DefaultProducerAllowAutoTopicCreation = false

	DefaultConsumerStartOffset       = -1 // newest
	DefaultConsumerMinBytes          = 1
	DefaultConsumerMaxBytes          = 10 * 1024 * 1024
	DefaultConsumerMaxWait           = 500 * time.Millisecond
	DefaultConsumerCommitInterval    = 1 * time.Second
	DefaultConsumerHeartbeatInterval = 3 * time.Second
	DefaultConsumerSessionTimeout    = 10 * time.Second
	DefaultConsumerRebalanceTimeout  = 60 * time.Second
	DefaultConsumerMaxRetries        = 3

	DefaultEnableMiddleware = true
)
