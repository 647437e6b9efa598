package settings

import (
	"context"
	"os"

	"github.com/rs/zerolog"
)

// Store defines the settings persistence interface
type Store interface {
	SaveSettings(ctx context.Context, s ReportSettings) error
	GetSettings(ctx context.Context, userID string) (*ReportSettings, error)
}

// NoopStore is a no-op implementation when DynamoDB is disabled. Reads
// report nothing saved; writes are dropped.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (s *NoopStore) SaveSettings(_ context.Context, _ ReportSettings) error { return nil }
func (s *NoopStore) GetSettings(_ context.Context, _ string) (*ReportSettings, error) {
	return nil, nil
}

// DynamoMode represents the DynamoDB connection mode
type DynamoMode string

const (
	DynamoModeLocal DynamoMode = "local"
	DynamoModeAWS   DynamoMode = "aws"
	DynamoModeNone  DynamoMode = "none"
)

// DynamoConfig holds DynamoDB configuration
type DynamoConfig struct {
	Mode          DynamoMode
	Endpoint      string // for local mode
	Region        string
	SettingsTable string
}

// LoadDynamoConfig loads DynamoDB config from environment
func LoadDynamoConfig() DynamoConfig {
	mode := DynamoMode(getEnv("DYNAMO_MODE", "none"))
	if mode != DynamoModeLocal && mode != DynamoModeAWS {
		mode = DynamoModeNone
	}

	return DynamoConfig{
		Mode:          mode,
		Endpoint:      getEnv("DYNAMO_ENDPOINT", "http://localhost:8000"),
		Region:        getEnv("DYNAMO_REGION", "eu-central-1"),
		SettingsTable: getEnv("DYNAMO_SETTINGS_TABLE", "asterview-report-settings"),
	}
}

// NewStore creates the appropriate store based on configuration
func NewStore(ctx context.Context, logger zerolog.Logger) (Store, error) {
	cfg := LoadDynamoConfig()

	switch cfg.Mode {
	case DynamoModeLocal, DynamoModeAWS:
		return NewDynamoDBStore(ctx, cfg, logger)
	default:
		logger.Info().Msg("DynamoDB disabled (DYNAMO_MODE=none), settings are not persisted")
		return NewNoopStore(), nil
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
