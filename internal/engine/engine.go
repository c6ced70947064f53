// Package engine ties the pieces together: one session per open workbook,
// proposals staged for review, the executor, and the undo stack. Its methods
// are the JSON-RPC surface the host UI talks to.
package engine

import (
	"log/slog"
	"os"
	"path/filepath"

	"sheetwright/engine/internal/action"
	"sheetwright/engine/internal/appdirs"
	"sheetwright/engine/internal/executor"
	"sheetwright/engine/internal/grid"
	"sheetwright/engine/internal/history"
	"sheetwright/engine/internal/logging"
	"sheetwright/engine/internal/preview"
	"sheetwright/engine/internal/settings"
)

const APIVersion = "1"

type Notifier func(method string, params any)

// StoreOpener opens or creates the grid store behind a workbook path. Tests
// swap it for an in-memory store.
type StoreOpener func(path string, create bool) (grid.Store, error)

// Session is the execution context for one open workbook: the store, the
// undo stack, and at most one pending proposal.
type Session struct {
	Path     string
	Store    grid.Store
	History  *history.Stack
	Proposal *preview.State

	exec *executor.Executor
}

type Engine struct {
	dataDir   string
	settings  *settings.Store
	registry  *action.Registry
	openStore StoreOpener
	notify    Notifier
	logger    *slog.Logger

	session *Session
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithDataDir(dir string) Option {
	return func(e *Engine) {
		e.dataDir = dir
	}
}

func WithStoreOpener(opener StoreOpener) Option {
	return func(e *Engine) {
		if opener != nil {
			e.openStore = opener
		}
	}
}

func New(opts ...Option) (*Engine, error) {
	engine := &Engine{logger: logging.Nop()}
	for _, opt := range opts {
		opt(engine)
	}
	if engine.dataDir == "" {
		dataDir, err := appdirs.DataDir()
		if err != nil {
			return nil, err
		}
		engine.dataDir = dataDir
	}
	if err := os.MkdirAll(engine.dataDir, 0o755); err != nil {
		return nil, err
	}
	engine.settings = settings.NewStore(filepath.Join(engine.dataDir, "settings.json"))
	engine.registry = action.NewRegistry()
	if engine.openStore == nil {
		engine.openStore = engine.openWorkbookStore
	}
	engine.logger.Debug("engine.init", "data_dir", engine.dataDir, "kinds", engine.registry.Len())
	return engine, nil
}

func (e *Engine) SetNotifier(notify Notifier) {
	e.notify = notify
}

// Registry exposes the action catalog, for the CLI surface.
func (e *Engine) Registry() *action.Registry {
	return e.registry
}

// openWorkbookStore is the production opener. Freshly created workbooks get
// their initial sheet named after the default_sheet setting.
func (e *Engine) openWorkbookStore(path string, create bool) (grid.Store, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && create {
			sheet := ""
			if cfg, err := e.settings.Load(); err == nil {
				sheet = cfg.DefaultSheet
			}
			return grid.NewWorkbookSheet(path, sheet), nil
		}
		return nil, err
	}
	return grid.OpenWorkbook(path)
}

func (e *Engine) emit(method string, params any) {
	if e.notify != nil {
		e.notify(method, params)
	}
}
