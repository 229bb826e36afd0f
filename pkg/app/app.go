// Package app wires configuration, logging, the command channel, the editor
// session and the GUI together.
package app

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/marjoballabani/lazya2l/pkg/command"
	"github.com/marjoballabani/lazya2l/pkg/config"
	"github.com/marjoballabani/lazya2l/pkg/gui"
	"github.com/marjoballabani/lazya2l/pkg/recent"
	"github.com/marjoballabani/lazya2l/pkg/session"
	"github.com/marjoballabani/lazya2l/pkg/store"
)

// BuildInfo contains version information set at compile time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// Options selects what the TUI starts with.
type Options struct {
	// Remote is a ws:// URL of a running `lazya2l serve`. Empty runs the
	// store in process.
	Remote string
	// File is opened at startup when set.
	File string
}

// App is the main application struct that holds all components.
type App struct {
	buildInfo *BuildInfo
	config    *config.Config
	logWriter io.WriteCloser
	logger    *log.Logger
	ctx       context.Context
}

// NewApp loads configuration and opens the log file.
func NewApp(ctx context.Context, buildInfo *BuildInfo) (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	return New(ctx, buildInfo, cfg)
}

// New builds an App from an already loaded configuration.
func New(ctx context.Context, buildInfo *BuildInfo, cfg *config.Config) (*App, error) {
	w, err := openLog(cfg.Log)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open log file")
	}
	return &App{
		buildInfo: buildInfo,
		config:    cfg,
		logWriter: w,
		logger:    log.New(w, "", log.LstdFlags),
		ctx:       ctx,
	}, nil
}

func openLog(cfg config.LogConfig) (io.WriteCloser, error) {
	if cfg.File == "" {
		return nopCloser{io.Discard}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, err
	}
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// Config returns the loaded configuration.
func (app *App) Config() *config.Config { return app.config }

// Logger returns the application logger.
func (app *App) Logger() *log.Logger { return app.logger }

// Close flushes and closes the log file.
func (app *App) Close() error {
	return app.logWriter.Close()
}

// Dispatcher creates a store with its dispatcher. reg may be nil.
func (app *App) Dispatcher(reg prometheus.Registerer) *command.Dispatcher {
	var metrics *command.Metrics
	if reg != nil {
		metrics = command.NewMetrics(reg)
	}
	return command.NewDispatcher(store.New(app.logger), metrics, app.logger)
}

// Channel returns a channel to the store: in process, or to the server at
// remote.
func (app *App) Channel(remote string) (command.Channel, func() error, error) {
	if remote == "" {
		return command.NewLocal(app.Dispatcher(nil)), func() error { return nil }, nil
	}
	r, err := command.Dial(app.ctx, remote, app.logger)
	if err != nil {
		return nil, nil, err
	}
	return r, r.Close, nil
}

// Session creates an editor session over ch.
func (app *App) Session(ch command.Channel) *session.Session {
	return session.New(command.NewClient(ch), session.Options{
		PageSize: app.config.UI.PageSize,
		Recents:  app.Recents(),
		Logger:   app.logger,
	})
}

// Recents opens the recent-file registry.
func (app *App) Recents() *recent.Registry {
	return recent.Open(app.config.Data.Dir)
}

// Run starts the terminal UI and blocks until the user quits.
func (app *App) Run(opts Options) error {
	ch, closeCh, err := app.Channel(opts.Remote)
	if err != nil {
		return errors.Wrap(err, "failed to connect to backend")
	}
	defer closeCh()

	sess := app.Session(ch)
	g, err := gui.NewGui(app.ctx, app.config, sess, app.logger, app.buildInfo.Version)
	if err != nil {
		return errors.Wrap(err, "failed to initialize GUI")
	}
	if opts.File != "" {
		g.OpenOnStart(opts.File)
	}
	return g.Run()
}

// Serve runs the websocket backend until ctx is done.
func (app *App) Serve(addr string) error {
	if addr == "" {
		addr = app.config.Server.Addr
	}
	reg := prometheus.NewRegistry()
	srv := command.NewServer(app.Dispatcher(reg), reg, app.logger)
	return srv.ListenAndServe(app.ctx, addr)
}
