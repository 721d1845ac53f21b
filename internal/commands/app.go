package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/envelo-dev/envelo/internal/config"
	"github.com/envelo-dev/envelo/internal/engine"
	"github.com/envelo-dev/envelo/internal/ledger"
	"github.com/envelo-dev/envelo/internal/model"
	"github.com/envelo-dev/envelo/internal/oplog"
	"github.com/envelo-dev/envelo/internal/store"
)

// rootOptions holds the global flag values shared by all subcommands.
type rootOptions struct {
	dataDir string
	budget  string
	jsonOut bool
	quiet   bool
}

// App is the explicit per-invocation handle threaded through every
// command: config, open store, services and the rollover cache. There is
// no process-wide current store; tests create and tear down their own.
type App struct {
	Config   *config.Config
	Store    store.Store
	Ledger   *ledger.Service
	Rollover *engine.Rollover
	Log      *slog.Logger

	jsonOut bool
	quiet   bool
}

// defaultDataDir is <home>/.envelo, or ./.envelo when home is unknown.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".envelo"
	}
	return filepath.Join(home, ".envelo")
}

func (o *rootOptions) resolveDataDir() string {
	if o.dataDir != "" {
		return o.dataDir
	}
	if v := os.Getenv("ENVELO_DATA_DIR"); v != "" {
		return v
	}
	return defaultDataDir()
}

// openApp loads config and opens the store. The caller must Close.
func (o *rootOptions) openApp() (*App, error) {
	// A .env next to the working directory may carry ENVELO_* overrides.
	_ = godotenv.Load()

	dataDir := o.resolveDataDir()
	cfg, err := config.Load(filepath.Join(dataDir, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("no budget data at %s (run `envelo init`?): %w", dataDir, err)
	}
	cfg.ApplyEnv()

	st, err := store.Open(cfg.DBPath())
	if err != nil {
		return nil, err
	}

	return &App{
		Config:   cfg,
		Store:    st,
		Ledger:   ledger.NewService(st),
		Rollover: engine.NewRollover(),
		Log:      newLogger(cfg.Log.Level),
		jsonOut:  o.jsonOut,
		quiet:    o.quiet,
	}, nil
}

// Close tears the handle down for clean shutdown.
func (a *App) Close() error {
	return a.Store.Close()
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// budgetID resolves the target budget from the --budget flag or the
// configured default.
func (a *App) budgetID(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if a.Config.Budget.DefaultID != "" {
		return a.Config.Budget.DefaultID, nil
	}
	return "", fmt.Errorf("no budget selected: pass --budget or set a default with `envelo init`")
}

// record appends a mutation to the oplog. Logging failures are warned,
// never fatal: the mutation itself already committed.
func (a *App) record(action, entity, entityID, details string) {
	if !a.Config.Oplog.Enabled {
		return
	}
	e := oplog.Entry{
		Timestamp: time.Now(),
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Details:   details,
	}
	if err := oplog.Append(a.Config.Data.Dir, []oplog.Entry{e}); err != nil {
		a.Log.Warn("oplog append failed", "err", err)
	}
}

// printResult renders v according to the output mode: --json emits the
// raw record, --quiet emits only the identifier, otherwise the human
// line is printed.
func (a *App) printResult(v any, id, human string) error {
	switch {
	case a.jsonOut:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding output: %w", err)
		}
		fmt.Println(string(data))
	case a.quiet:
		fmt.Println(id)
	default:
		fmt.Println(human)
	}
	return nil
}

// refresh recomputes the rollover cache from the earliest affected month
// and returns the refreshed summary for that month, which commands
// re-render from.
func (a *App) refresh(ctx context.Context, budgetID string, from model.Month) (*engine.MonthSummary, error) {
	if err := a.Rollover.Refresh(ctx, a.Store, budgetID, from); err != nil {
		return nil, err
	}
	return a.Rollover.Summary(ctx, a.Store, budgetID, from)
}
