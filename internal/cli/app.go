package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/lockbox/internal/common"
	"github.com/dmitrijs2005/lockbox/internal/config"
	"github.com/dmitrijs2005/lockbox/internal/filex"
	"github.com/dmitrijs2005/lockbox/internal/logging"
	"github.com/dmitrijs2005/lockbox/internal/vault/services"
	"github.com/dmitrijs2005/lockbox/internal/vault/store"
)

// App wires the vault store and services behind an interactive REPL. The
// master key and vault id of the authenticated profile live only in memory
// and are wiped on logout.
type App struct {
	config        *config.Config
	store         *store.Store
	authService   services.AuthService
	objectService services.ObjectService
	backupService services.BackupService
	masterKey     []byte
	vaultID       string
	profileName   string
	reader        *bufio.Reader
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	if _, err := filex.EnsureDir(c.DataDir); err != nil {
		return nil, err
	}

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	st := store.New(c.DatabasePath(), store.Options{
		OpenRetryInterval: c.OpenRetryInterval,
		OpenRetryMax:      c.OpenRetryMax,
	}, log)
	if err := st.Open(ctx); err != nil {
		return nil, err
	}

	limits := services.Limits{
		ChunkThreshold:   c.ChunkThreshold,
		CompressionFloor: c.CompressionFloor,
		SealWorkers:      c.SealWorkers,
	}

	return &App{
		config:        c,
		store:         st,
		authService:   services.NewAuthService(st, log),
		objectService: services.NewObjectService(st, limits, log),
		backupService: services.NewBackupService(st, log),
		reader:        bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer func() { _ = a.store.Close() }()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.masterKey != nil
}

// forgetSession wipes the in-memory master key and clears the session.
func (a *App) forgetSession() {
	if a.masterKey != nil {
		common.WipeByteArray(a.masterKey)
	}
	a.masterKey = nil
	a.vaultID = ""
	a.profileName = ""
}
