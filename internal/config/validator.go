package config

import (
	"fmt"

	"structnotify/internal/constants"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		errors = append(errors, err)
	}

	if err := validateBroker(cfg.Broker); err != nil {
		errors = append(errors, err)
	}

	if err := validateNotification(cfg.Notification); err != nil {
		errors = append(errors, err)
	}

	if err := validateDirectory(cfg.Directory); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.ReadTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.read_timeout_seconds",
			Message: "read timeout must be positive",
		}
	}

	if cfg.WriteTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.write_timeout_seconds",
			Message: "write timeout must be positive",
		}
	}

	return nil
}

func validateDatabase(cfg DatabaseConfig) error {
	// The predicate store is the one hard requirement. Mongo and Redis are
	// optional capabilities checked where they are wired.
	if cfg.Postgres.Host == "" {
		return &ValidationError{
			Field:   "database.postgres.host",
			Message: "postgres host is required (predicate store)",
		}
	}
	if cfg.Postgres.DBName == "" {
		return &ValidationError{
			Field:   "database.postgres.dbname",
			Message: "postgres dbname is required",
		}
	}
	return nil
}

func validateBroker(cfg BrokerConfig) error {
	if cfg.Type == "" {
		return nil // config events disabled
	}
	if cfg.Type != "kafka" {
		return &ValidationError{
			Field:   "broker.type",
			Message: fmt.Sprintf("unsupported broker type %q, only kafka is supported", cfg.Type),
		}
	}
	if len(cfg.Kafka.Brokers) == 0 {
		return &ValidationError{
			Field:   "broker.kafka.brokers",
			Message: "at least one kafka broker is required when broker.type is kafka",
		}
	}
	return nil
}

func validateNotification(cfg NotificationConfig) error {
	if cfg.GatherConcurrency < 0 {
		return &ValidationError{
			Field:   "notification.gather_concurrency",
			Message: "gather concurrency must be non-negative",
		}
	}
	if cfg.Dedup.Enabled && cfg.Dedup.TTLSeconds < 0 {
		return &ValidationError{
			Field:   "notification.dedup.ttl_seconds",
			Message: "dedup TTL must be non-negative",
		}
	}
	return nil
}

func validateDirectory(cfg DirectoryConfig) error {
	switch cfg.Backend {
	case "", "postgres", "static":
		return nil
	default:
		return &ValidationError{
			Field:   "directory.backend",
			Message: fmt.Sprintf("unsupported directory backend %q", cfg.Backend),
		}
	}
}

// Defaulted returns cfg with zero-valued tunables replaced by defaults.
func (c NotificationConfig) Defaulted() NotificationConfig {
	cfg := c
	if cfg.GatherConcurrency == 0 {
		cfg.GatherConcurrency = constants.DefaultGatherConcurrency
	}
	if cfg.RecordSource.SchemaRegistry == "" {
		cfg.RecordSource.SchemaRegistry = constants.DefaultSchemaRegistry
	}
	return cfg
}
