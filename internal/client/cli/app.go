package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/foodfinder/internal/client/accounts"
	"github.com/dmitrijs2005/foodfinder/internal/client/client"
	"github.com/dmitrijs2005/foodfinder/internal/client/config"
	"github.com/dmitrijs2005/foodfinder/internal/client/services"
	"github.com/dmitrijs2005/foodfinder/internal/client/storage"
	"github.com/dmitrijs2005/foodfinder/internal/filex"
	"github.com/dmitrijs2005/foodfinder/internal/logging"
)

const dbFileName = "accounts.db"

type App struct {
	config  *config.Config
	session services.SessionService
	logger  logging.Logger
	reader  *bufio.Reader
	out     io.Writer

	// email of the signed-in account, "" when signed out
	current string
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	st := openStorage(ctx, c, logger)

	apiClient := client.NewHTTPClient(c.ServerURL, c.APIKey, c.RequestTimeout)

	opts := services.SessionOptions{
		RememberPasswords:    c.RememberPasswords,
		SwitchAttemptTimeout: c.SwitchAttemptTimeout,
	}
	if c.CachePassphrase != "" {
		opts.Codec = accounts.NewSealedCodec(c.CachePassphrase)
	}

	return &App{
		config:  c,
		session: services.NewSessionService(apiClient, st, logger, opts),
		logger:  logger.With("module", "cli"),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// openStorage opens the configured backend. When it cannot be opened the
// accounts are kept in memory for this run only.
func openStorage(ctx context.Context, c *config.Config, logger logging.Logger) storage.Storage {
	var (
		st  storage.Storage
		err error
	)

	switch c.StorageBackend {
	case config.StorageMemory:
		return storage.NewMemoryStorage()
	case config.StorageRedis:
		st, err = storage.OpenRedisStorage(ctx, c.RedisAddr)
	default:
		var dir string
		dir, err = filex.EnsureDir(c.DataDir)
		if err == nil {
			st, err = storage.OpenSQLiteStorage(ctx, filepath.Join(dir, dbFileName))
		}
	}

	if err != nil {
		logger.Warn(ctx, "account storage unavailable, saved accounts will not survive a restart",
			"backend", c.StorageBackend, "error", err)
		return storage.NewMemoryStorage()
	}
	return st
}

func (a *App) isLoggedIn() bool {
	return a.current != ""
}

func (a *App) getStatus() string {
	if a.current == "" {
		return "(signed out)"
	}
	return fmt.Sprintf("(%s)", a.current)
}

// Run migrates old saved accounts and blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.session.Close(ctx); err != nil {
			a.logger.Warn(ctx, "close failed", "error", err)
		}
	}()

	if err := a.session.Migrate(ctx); err != nil {
		a.logger.Warn(ctx, "saved accounts migration failed", "error", err)
	}

	fmt.Fprintln(a.out, "Welcome to FoodFinder CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}
