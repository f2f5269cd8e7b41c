package main

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fekuna/omnipos-inventory-service/config"
	"github.com/fekuna/omnipos-inventory-service/pkg/apiclient"
	"github.com/fekuna/omnipos-inventory-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/session"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("not logged in, run `invctl login` first")

// app is shared by every command; it is filled in by the root command's
// PersistentPreRunE.
type app struct {
	cfg *config.Config

	baseURL     string
	sessionFile string
	lang        string
	verbose     bool

	out     io.Writer
	errOut  io.Writer
	logger  logger.ZapLogger
	nav     *terminalNavigator
	client  *apiclient.Client
	session *session.Session
}

func (a *app) init(cmd *cobra.Command) error {
	a.out = cmd.OutOrStdout()
	a.errOut = cmd.ErrOrStderr()

	a.logger = logger.NewNop()
	if a.verbose {
		a.logger = logger.NewZapLogger(&logger.ZapLoggerConfig{
			IsDevelopment:     true,
			Encoding:          "console",
			Level:             "debug",
			DisableStacktrace: true,
		})
	}

	path := a.sessionFile
	if path == "" {
		p, err := session.DefaultFilePath()
		if err != nil {
			return fmt.Errorf("session file: %w", err)
		}
		path = p
	}

	a.nav = &terminalNavigator{path: "/", out: a.errOut}
	a.client = apiclient.New(a.baseURL,
		apiclient.WithTimeout(a.cfg.Client.Timeout),
		apiclient.WithNavigator(a.nav),
		apiclient.WithNotifier(terminalNotifier{out: a.errOut}),
		apiclient.WithLanguage(a.lang),
		apiclient.WithLogger(a.logger),
	)
	a.session = session.New(a.client, session.NewFileStore(path), a.nav, session.WithLogger(a.logger))
	a.client.SetTokenSource(a.session)
	a.client.SetSessionHandler(a.session)

	if a.session.Restore() {
		a.nav.Navigate(session.DashboardPath)
	}
	return nil
}

func (a *app) requireLogin() error {
	if !a.session.IsAuthenticated() {
		return errNotLoggedIn
	}
	return nil
}

// openDB connects straight to Postgres for the commands that bypass the API.
func (a *app) openDB() (*sqlx.DB, error) {
	pg := a.cfg.Postgres
	return postgres.NewPostgres(&postgres.Config{
		Host:            pg.Host,
		Port:            pg.Port,
		User:            pg.User,
		Password:        pg.Password,
		DBName:          pg.DBName,
		SSLMode:         pg.SSLMode,
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Duration(pg.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(pg.ConnMaxIdleTime) * time.Second,
	})
}

// terminalNavigator tracks the "page" the CLI is on so the API client can
// tell a login screen from everything else.
type terminalNavigator struct {
	mu   sync.Mutex
	path string
	out  io.Writer
}

func (n *terminalNavigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

func (n *terminalNavigator) Navigate(path string) {
	n.mu.Lock()
	prev := n.path
	n.path = path
	n.mu.Unlock()
	if path == apiclient.LoginPath && prev != apiclient.LoginPath {
		fmt.Fprintln(n.out, "Signed out. Run `invctl login` to sign in again.")
	}
}

type terminalNotifier struct {
	out io.Writer
}

func (t terminalNotifier) Error(msg string) {
	fmt.Fprintln(t.out, "error:", msg)
}
