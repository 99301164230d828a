package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/ledgerdrive/internal/auth"
	"github.com/dmitrijs2005/ledgerdrive/internal/client/client"
	"github.com/dmitrijs2005/ledgerdrive/internal/client/config"
	"github.com/dmitrijs2005/ledgerdrive/internal/client/services"
	"github.com/dmitrijs2005/ledgerdrive/internal/ledger"
	"github.com/dmitrijs2005/ledgerdrive/internal/logging"
	"github.com/dmitrijs2005/ledgerdrive/internal/saga"
	"github.com/dmitrijs2005/ledgerdrive/internal/storage"
	"golang.org/x/term"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

var (
	errNotLoggedIn = errors.New("not logged in, use: login <owner>")
	errEmptyInput  = errors.New("empty input")
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    *client.Repositories
	client   client.Client
	sessions services.SessionService
	files    services.FileService

	owner string

	mu   sync.Mutex
	mode Mode

	reader *bufio.Reader
	out    io.Writer
	tty    bool
}

// newStorage builds the storage backend selected in c and the fetcher that
// reads its content back. Remote backends are read through c.GatewayURL.
func newStorage(ctx context.Context, c *config.Config) (storage.Uploader, storage.Fetcher, error) {
	var u storage.Uploader
	var f storage.Fetcher = storage.NewGatewayFetcher(c.GatewayURL, &http.Client{Timeout: c.StorageTimeout})
	switch c.StorageBackend {
	case config.BackendMemory:
		m := storage.NewMemoryStore()
		u, f = m, m
	case config.BackendLighthouse:
		u = storage.NewLighthouseUploader(c.LighthouseURL, c.LighthouseAPIKey, &http.Client{})
	case config.BackendS3:
		api, err := storage.NewS3Client(ctx, c.S3)
		if err != nil {
			return nil, nil, fmt.Errorf("s3 client init error: %w", err)
		}
		u = storage.NewS3Uploader(api, c.S3.Bucket)
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	return storage.WithTimeout(u, c.StorageTimeout), f, nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger := logging.New(os.Stderr, "text", c.LogLevel)

	repos, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	tokens := auth.NewTokenSource("", []byte(c.SessionSecret), c.TokenValidity)

	apiClient, err := client.NewGRPCClient(c.LedgerEndpointAddr, client.Options{
		Tokens:      tokens,
		CallTimeout: c.LedgerTimeout,
		Retries:     c.LedgerRetries,
		Logger:      logger,
	})
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	uploader, fetcher, err := newStorage(ctx, c)
	if err != nil {
		_ = apiClient.Close()
		_ = repos.Close()
		return nil, err
	}

	coordinator := saga.NewCoordinator(apiClient, uploader, repos.Uploads,
		saga.WithLogger(logger),
		saga.WithProgram(ledger.NewProgram(c.ProgramID)),
	)

	return &App{
		config:   c,
		logger:   logger,
		repos:    repos,
		client:   apiClient,
		sessions: services.NewSessionService(repos.DB, tokens),
		files:    services.NewFileService(apiClient, repos.Uploads, coordinator, fetcher, c.GatewayURL, logger),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		tty:      term.IsTerminal(int(os.Stdout.Fd())),
	}, nil
}

func (a *App) Close() error {
	return errors.Join(a.client.Close(), a.repos.Close())
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

func (a *App) isLoggedIn() bool {
	return a.owner != ""
}

// Run resumes or starts a session, starts the connectivity watcher and runs
// the REPL until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Error(ctx, "close error", "error", err)
		}
	}()

	fmt.Fprintln(a.out, "Welcome to ledgerdrive CLI (type 'help' for commands)")

	a.checkOnline(ctx)
	a.startSession(ctx)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

// startSession logs in the configured owner, or resumes the stored session.
func (a *App) startSession(ctx context.Context) {
	if a.config.Owner != "" {
		if err := a.Login(ctx, []string{a.config.Owner}); err != nil {
			fmt.Fprintln(a.out, "Login unsuccessful:", err)
		}
		return
	}
	sess, err := a.sessions.Resume(ctx)
	if err != nil {
		return
	}
	a.owner = sess.Owner
	fmt.Fprintf(a.out, "Resumed session of %s\n", sess.Owner)
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.files.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher re-checks connectivity every interval until ctx
// is done. A non-positive interval disables it.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) getStatus() string {
	s := ""
	if a.owner != "" {
		s = shortOwner(a.owner) + " "
	}
	s += string(a.Mode())
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// shortOwner abbreviates a public key for the prompt.
func shortOwner(owner string) string {
	if len(owner) <= 10 {
		return owner
	}
	return owner[:4] + ".." + owner[len(owner)-4:]
}
