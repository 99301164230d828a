package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/ledgerdrive/internal/flagx"
)

// JsonConfig is the on-disk shape of the daemon config. Pointer fields
// tell "absent" from "zero"; absent keys keep the earlier value.
type JsonConfig struct {
	ListenAddr  *string `json:"listen_addr"`
	SecretKey   *string `json:"secret_key"`
	ProgramID   *string `json:"program_id"`
	MaxFileSize *uint64 `json:"max_file_size"`
	LogLevel    *string `json:"log_level"`
	LogFormat   *string `json:"log_format"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// parseJson loads configuration values from the JSON file named by the -c
// or -config flag. Without either flag nothing is loaded. A file that
// cannot be read or parsed panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.ListenAddr, c.ListenAddr)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.ProgramID, c.ProgramID)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	if c.MaxFileSize != nil {
		config.MaxFileSize = *c.MaxFileSize
	}
}
