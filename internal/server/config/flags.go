package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/ledgerdrive/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   gRPC bind address (e.g. ":50051")
//	-s string   session token secret
//	-p string   ledger program id
//	-m uint     max file size, bytes
//	-l string   log level (debug, info, warn, error)
//	-f string   log format (json, text)
//
// Unknown flags are filtered out first with flagx.FilterArgs so that -c
// and -config reach the JSON loader only.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-p", "-m", "-l", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to run server")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.ProgramID, "p", config.ProgramID, "ledger program id")
	fs.Uint64Var(&config.MaxFileSize, "m", config.MaxFileSize, "max file size (in bytes)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
