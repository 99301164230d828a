// Package config handles configuration for the ledger gateway daemon,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"fmt"

	"github.com/dmitrijs2005/ledgerdrive/internal/ledger"
	"github.com/dmitrijs2005/ledgerdrive/internal/ledger/memledger"
)

// Config holds runtime settings for ledgerd.
//
// Fields:
//   - ListenAddr: bind address for the gateway gRPC endpoint.
//   - SecretKey: HMAC secret session tokens are verified with (HS256).
//   - ProgramID: ledger program account addresses are derived from.
//   - MaxFileSize: largest file size the ledger config accepts, in bytes.
//   - LogLevel / LogFormat: slog level name and "json" or "text".
type Config struct {
	ListenAddr  string
	SecretKey   string
	ProgramID   string
	MaxFileSize uint64
	LogLevel    string
	LogFormat   string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret must be overridden outside development.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":50051"
	c.SecretKey = "secretKey"
	c.ProgramID = ledger.DefaultProgramID
	c.MaxFileSize = memledger.DefaultMaxFileSize
	c.LogLevel = "info"
	c.LogFormat = "json"
}

// Validate reports settings the daemon cannot start with.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("secret key is empty")
	}
	if c.MaxFileSize == 0 {
		return fmt.Errorf("max file size must be positive")
	}
	if err := ledger.ValidateOwner(c.ProgramID); err != nil {
		return fmt.Errorf("program id: %w", err)
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
