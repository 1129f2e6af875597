package kafka_config

import "time"

const (
	DefaultKafkaBrokers = "localhost:9092"
	DefaultDLQTopic     = ""

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1 // all replicas
	DefaultProducerCompression  = "snappy"

	// Grid changes only matter from now on; older ones are covered by the
	// rebuild at startup.
	DefaultConsumerStartOffset    = -1
	DefaultConsumerMaxWait        = 500 * time.Millisecond
	DefaultConsumerCommitInterval = time.Second
	DefaultConsumerMaxRetries     = 3
	DefaultConsumerRetryBackoff   = 200 * time.Millisecond
)
