package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "crewcall"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRateLimitRequests = 120
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultRedisDB = 0

	DefaultKafkaEnabled       = false
	DefaultSchedulingTopic    = "crewcall.scheduling"
	DefaultSchedulingDLQTopic = "crewcall.scheduling.dlq"
	DefaultAuditorGroupID     = "crewcall-conflict-auditor"

	DefaultMaxConflictScan          = 500
	DefaultMaxAvailabilityRangeDays = 366
	DefaultLockTTL                  = 10 * time.Second

	DefaultConflictSweepSchedule = "@every 15m"
	DefaultConflictSweepHorizon  = 14 * 24 * time.Hour

	DefaultPaginationLimit = 100
)
