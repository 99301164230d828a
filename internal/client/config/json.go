package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/ledgerdrive/internal/flagx"
	"github.com/dmitrijs2005/ledgerdrive/internal/timex"
)

type jsonS3 struct {
	Endpoint  string `json:"endpoint"`
	Region    string `json:"region"`
	Bucket    string `json:"bucket"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
}

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields tell "absent" from "zero"; absent keys keep the earlier value.
type JsonConfig struct {
	LedgerEndpointAddr  *string         `json:"ledger_endpoint_addr"`
	ProgramID           *string         `json:"program_id"`
	Owner               *string         `json:"owner"`
	SessionSecret       *string         `json:"session_secret"`
	TokenValidity       *timex.Duration `json:"token_validity"`
	DatabasePath        *string         `json:"database_path"`
	StorageBackend      *string         `json:"storage_backend"`
	LighthouseURL       *string         `json:"lighthouse_url"`
	LighthouseAPIKey    *string         `json:"lighthouse_api_key"`
	S3                  *jsonS3         `json:"s3"`
	GatewayURL          *string         `json:"gateway_url"`
	LedgerTimeout       *timex.Duration `json:"ledger_timeout"`
	StorageTimeout      *timex.Duration `json:"storage_timeout"`
	LedgerRetries       *uint64         `json:"ledger_retries"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	LogLevel            *string         `json:"log_level"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *timex.Duration) {
	if src != nil {
		*dst = src.Duration
	}
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Without either flag nothing is loaded. Read or unmarshal
// errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.LedgerEndpointAddr, jc.LedgerEndpointAddr)
	setString(&cfg.ProgramID, jc.ProgramID)
	setString(&cfg.Owner, jc.Owner)
	setString(&cfg.SessionSecret, jc.SessionSecret)
	setDuration(&cfg.TokenValidity, jc.TokenValidity)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.StorageBackend, jc.StorageBackend)
	setString(&cfg.LighthouseURL, jc.LighthouseURL)
	setString(&cfg.LighthouseAPIKey, jc.LighthouseAPIKey)
	setString(&cfg.GatewayURL, jc.GatewayURL)
	setDuration(&cfg.LedgerTimeout, jc.LedgerTimeout)
	setDuration(&cfg.StorageTimeout, jc.StorageTimeout)
	setDuration(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.LedgerRetries != nil {
		cfg.LedgerRetries = *jc.LedgerRetries
	}
	if s := jc.S3; s != nil {
		cfg.S3.Endpoint = s.Endpoint
		if s.Region != "" {
			cfg.S3.Region = s.Region
		}
		cfg.S3.Bucket = s.Bucket
		cfg.S3.AccessKey = s.AccessKey
		cfg.S3.SecretKey = s.SecretKey
	}
}
