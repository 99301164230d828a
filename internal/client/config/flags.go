package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/ledgerdrive/internal/flagx"
)

var clientFlags = []string{"-a", "-o", "-s", "-d", "-b", "-k", "-g", "-t", "-u", "-r", "-i", "-l"}

// valueFlags are all flags followed by a value, the config file ones included.
var valueFlags = append([]string{"-c", "-config"}, clientFlags...)

// parseFlags populates selected Config fields from command-line flags.
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], clientFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.LedgerEndpointAddr, "a", cfg.LedgerEndpointAddr, "address and port of the ledger gateway")
	fs.StringVar(&cfg.Owner, "o", cfg.Owner, "owner public key to log in as")
	fs.StringVar(&cfg.SessionSecret, "s", cfg.SessionSecret, "session token secret")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.StorageBackend, "b", cfg.StorageBackend, "storage backend (memory, lighthouse, s3)")
	fs.StringVar(&cfg.LighthouseAPIKey, "k", cfg.LighthouseAPIKey, "Lighthouse API key")
	fs.StringVar(&cfg.GatewayURL, "g", cfg.GatewayURL, "retrieval gateway base URL")
	ledgerTimeout := fs.Int("t", int(cfg.LedgerTimeout.Seconds()), "ledger call timeout (in seconds)")
	storageTimeout := fs.Int("u", int(cfg.StorageTimeout.Seconds()), "storage upload timeout (in seconds)")
	fs.Uint64Var(&cfg.LedgerRetries, "r", cfg.LedgerRetries, "resubmissions of a timed-out ledger call")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// "client [flags] <owner>" is shorthand for -o <owner>
	if pos := flagx.Positional(os.Args[1:], valueFlags); len(pos) > 0 && cfg.Owner == "" {
		cfg.Owner = pos[0]
	}

	cfg.LedgerTimeout = time.Duration(*ledgerTimeout) * time.Second
	cfg.StorageTimeout = time.Duration(*storageTimeout) * time.Second
	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
