package params

import (
	"runtime"
	"time"
)

// Job sources.
const (
	SourceStdin = "stdin"
	SourceNATS  = "nats"
	// SourceNone runs the pipeline without a source, for callers that submit jobs directly.
	SourceNone = "none"
)

type NATSConfig struct {
	URL     string
	Subject string
	// Queue is the queue group; workers sharing it split the subject's jobs.
	Queue         string
	MaxReconnects int
	ReconnectWait time.Duration
}

func DefaultNATSConfig() *NATSConfig {
	return &NATSConfig{
		URL:           "nats://127.0.0.1:4222",
		Subject:       "aistrust.jobs",
		Queue:         "aistrust-workers",
		MaxReconnects: 10,
		ReconnectWait: time.Second,
	}
}

type PostgresConfig struct {
	// DSN is empty when no database is configured.
	DSN             string
	ConnectAttempts int
	ConnectDelay    time.Duration
}

func DefaultPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		ConnectAttempts: 5,
		ConnectDelay:    2 * time.Second,
	}
}

type WorkerConfig struct {
	Source  string
	Workers int
	// Window is how far back from the job timestamp data are fetched.
	Window time.Duration
	// JobTimeout bounds fetching and scoring a single job.
	JobTimeout time.Duration
	// TickInterval is how often throughput is logged. Zero disables it.
	TickInterval time.Duration

	NATS     *NATSConfig
	Postgres *PostgresConfig
}

func DefaultWorkerConfig() *WorkerConfig {
	return &WorkerConfig{
		Source:       SourceStdin,
		Workers:      runtime.NumCPU(),
		Window:       time.Hour,
		JobTimeout:   30 * time.Second,
		TickInterval: 10 * time.Second,
		NATS:         DefaultNATSConfig(),
		Postgres:     DefaultPostgresConfig(),
	}
}
