package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/ledgerdrive/internal/storage"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	path := writeTempJSON(t, dir, "flag.json", map[string]any{
		"ledger_endpoint_addr":  "ledger.example:9000",
		"storage_backend":       "s3",
		"s3":                    map[string]any{"endpoint": "https://s3.example", "bucket": "drive", "access_key": "ak", "secret_key": "sk"},
		"ledger_timeout":        "3s",
		"ledger_retries":        0,
		"online_check_interval": float64(10 * time.Second),
	})

	t.Run("overlays present keys only", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}

		var cfg Config
		cfg.LoadDefaults()
		want := cfg
		want.LedgerEndpointAddr = "ledger.example:9000"
		want.StorageBackend = BackendS3
		want.S3 = storage.S3Config{Endpoint: "https://s3.example", Region: "us-east-1", Bucket: "drive", AccessKey: "ak", SecretKey: "sk"}
		want.LedgerTimeout = 3 * time.Second
		want.LedgerRetries = 0
		want.OnlineCheckInterval = 10 * time.Second

		parseJson(&cfg)
		assert.Empty(t, cmp.Diff(want, cfg))
	})

	t.Run("no config flag, no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := Config{LedgerEndpointAddr: "defaults:1234", OnlineCheckInterval: 42 * time.Second}
		parseJson(&cfg)

		assert.Equal(t, "defaults:1234", cfg.LedgerEndpointAddr)
		assert.Equal(t, 42*time.Second, cfg.OnlineCheckInterval)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-c", bad}
		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "nope.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
