// Package server wires the ledger gateway daemon: it builds the ledger
// backend, serves it over gRPC and stops on SIGINT, SIGTERM or SIGQUIT.
package server

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/ledgerdrive/internal/ledger"
	"github.com/dmitrijs2005/ledgerdrive/internal/ledger/memledger"
	"github.com/dmitrijs2005/ledgerdrive/internal/logging"
	"github.com/dmitrijs2005/ledgerdrive/internal/server/config"

	gs "github.com/dmitrijs2005/ledgerdrive/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	backend ledger.Backend
}

func NewApp(c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger := logging.New(os.Stdout, c.LogFormat, c.LogLevel)

	backend := memledger.New(
		memledger.WithMaxFileSize(c.MaxFileSize),
		memledger.WithProgram(ledger.NewProgram(c.ProgramID)),
	)

	return &App{config: c, logger: logger, backend: backend}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.ListenAddr, app.logger, app.backend, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a signal arrives or the listener
// fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting ledgerd...", "program", app.config.ProgramID, "max_file_size", app.config.MaxFileSize)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "ledgerd stopped")
}
