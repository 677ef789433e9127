package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/powervision/estoque/internal/api"
	"github.com/powervision/estoque/internal/config"
	"github.com/powervision/estoque/internal/export"
	"github.com/powervision/estoque/internal/journal"
	"github.com/powervision/estoque/internal/logging"
	"github.com/powervision/estoque/internal/nav"
	"github.com/powervision/estoque/internal/screen"
	"github.com/powervision/estoque/internal/session"
	"github.com/powervision/estoque/internal/tui"
)

// appEnv is the wired object graph shared by the terminal UI and the
// one-shot commands.
type appEnv struct {
	cfg     *config.Config
	log     *zap.Logger
	session *session.Store
	client  *api.Client
	store   *journal.Store // nil when the journal is disabled or failed to open
	nav     *nav.Navigator

	login  *screen.Login
	list   *screen.ProductList
	detail *screen.ProductDetail
}

// buildApp wires logger, session, gateway, journal, exporter, navigator and
// the three screens. alert receives every user-facing message.
func buildApp(cfg *config.Config, alert screen.Alerter) (*appEnv, error) {
	log, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, err
	}

	base, err := api.ParseBaseURL(cfg.API.BaseURL)
	if err != nil {
		return nil, err
	}
	sharer, err := export.SharerFor(cfg.Export.Share)
	if err != nil {
		return nil, err
	}

	a := &appEnv{
		cfg:     cfg,
		log:     log,
		session: session.New(),
		nav:     nav.New(),
	}
	a.client = api.NewClient(api.NewHTTPClient(cfg.API.Timeout), base, a.session, api.WithLogger(log))

	var recorder journal.Recorder = journal.Nop{}
	if cfg.Journal.Enabled {
		if store, err := openJournal(cfg.Journal.Path); err != nil {
			log.Warn("journal_unavailable", zap.Error(err))
		} else {
			a.store = store
			recorder = store
		}
	}

	deps := screen.Deps{
		Auth:     a.client,
		Products: a.client,
		Session:  a.session,
		Nav:      a.nav,
		Alert:    alert,
		Journal:  recorder,
		Exporter: export.NewExporter(cfg.Export.Dir, sharer),
		Log:      log,
	}
	a.login = screen.NewLogin(deps)
	a.list = screen.NewProductList(deps)
	a.detail = screen.NewProductDetail(deps)

	a.nav.Register(nav.Login, a.login)
	a.nav.Register(nav.Products, a.list)
	a.nav.Register(nav.ProductInfo, a.detail)

	log.Debug("app_built",
		zap.String("base_url", base.String()),
		zap.Duration("timeout", cfg.API.Timeout),
		zap.Bool("journal", a.store != nil),
		zap.String("share", cfg.Export.Share),
	)
	return a, nil
}

// context attaches the logger to ctx.
func (a *appEnv) context(ctx context.Context) context.Context {
	return logging.WithContext(ctx, a.log)
}

// TUI returns the controllers in the shape the terminal UI expects.
func (a *appEnv) TUI() tui.App {
	return tui.App{Nav: a.nav, Login: a.login, List: a.list, Detail: a.detail}
}

func (a *appEnv) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("journal_close_failed", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}

func openJournal(path string) (*journal.Store, error) {
	if path == "" {
		p, err := journal.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return journal.Open(path)
}

// defaultLogPath returns ~/.local/share/estoque/estoque.log.
func defaultLogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "estoque", "estoque.log"), nil
}
