package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/ledgerdrive/internal/ledger"
	"github.com/dmitrijs2005/ledgerdrive/internal/storage"
)

// Storage backends.
const (
	BackendMemory     = "memory"
	BackendLighthouse = "lighthouse"
	BackendS3         = "s3"
)

// Config holds runtime settings for the ledgerdrive CLI.
//
// Units: all intervals and timeouts are time.Duration values.
type Config struct {
	LedgerEndpointAddr string
	ProgramID          string
	// Owner, when set, is logged in on start.
	Owner         string
	SessionSecret string
	TokenValidity time.Duration
	DatabasePath  string

	StorageBackend   string
	LighthouseURL    string
	LighthouseAPIKey string
	S3               storage.S3Config
	GatewayURL       string

	LedgerTimeout  time.Duration
	StorageTimeout time.Duration
	LedgerRetries  uint64

	OnlineCheckInterval time.Duration
	LogLevel            string
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.LedgerEndpointAddr = "127.0.0.1:50051"
	c.ProgramID = ledger.DefaultProgramID
	c.SessionSecret = "secretKey"
	c.TokenValidity = 15 * time.Minute
	c.DatabasePath = "ledgerdrive.db"
	c.StorageBackend = BackendMemory
	c.LighthouseURL = "https://node.lighthouse.storage"
	c.S3.Region = "us-east-1"
	c.GatewayURL = storage.DefaultGatewayURL
	c.LedgerTimeout = 10 * time.Second
	c.StorageTimeout = 5 * time.Minute
	c.LedgerRetries = 2
	c.OnlineCheckInterval = 3 * time.Second
	c.LogLevel = "info"
}

// Validate reports settings the client cannot start with.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendMemory:
	case BackendLighthouse:
		if c.LighthouseAPIKey == "" {
			return fmt.Errorf("lighthouse backend needs an API key")
		}
	case BackendS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("s3 backend needs a bucket")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("session secret is empty")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
