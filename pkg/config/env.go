package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvKafkaEnabled       = "KAFKA_ENABLED"
	EnvSchedulingTopic    = "SCHEDULING_TOPIC"
	EnvSchedulingDLQTopic = "SCHEDULING_DLQ_TOPIC"
	EnvAuditorGroupID     = "AUDITOR_GROUP_ID"

	EnvMaxConflictScan          = "MAX_CONFLICT_SCAN"
	EnvMaxAvailabilityRangeDays = "MAX_AVAILABILITY_RANGE_DAYS"
	EnvLockTTL                  = "LOCK_TTL"

	EnvConflictSweepSchedule = "CONFLICT_SWEEP_SCHEDULE"
	EnvConflictSweepHorizon  = "CONFLICT_SWEEP_HORIZON"
)
