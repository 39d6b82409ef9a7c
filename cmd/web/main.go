package main

import (
	"context"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/donseba/go-htmx"
	"github.com/joho/godotenv"
	"github.com/myrjola/interviewdash/internal/envstruct"
	"github.com/myrjola/interviewdash/internal/errors"
	"github.com/myrjola/interviewdash/internal/interviews"
	"github.com/myrjola/interviewdash/internal/logging"
	"github.com/myrjola/interviewdash/internal/pprofserver"
	"github.com/myrjola/interviewdash/internal/repositories"
	"github.com/myrjola/interviewdash/internal/sqlite"
	"github.com/myrjola/interviewdash/internal/webauthnhandler"
	"io/fs"
	"log/slog"
	"os"
	"time"
)

type application struct {
	logger          *slog.Logger
	webAuthnHandler *webauthnhandler.WebAuthnHandler
	sessionManager  *scs.SessionManager
	interviews      *repositories.InterviewRepository
	formatter       interviews.Formatter
	htmx            *htmx.HTMX
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"INTERVIEWDASH_ADDR" envDefault:"localhost:4000"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"INTERVIEWDASH_SQLITE_URL" envDefault:"./interviewdash.sqlite3"`
	// PProfPort is the port for the pprof server. Empty disables it.
	PProfPort string `env:"INTERVIEWDASH_PPROF_PORT" envDefault:":6060"`
	// Timezone is the IANA zone the dashboard renders dates in.
	Timezone string `env:"INTERVIEWDASH_TIMEZONE" envDefault:"Local"`
	// SeedFixtures inserts the demo interviews on startup.
	SeedFixtures bool `env:"INTERVIEWDASH_SEED_FIXTURES" envDefault:"false"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		err     error
		cfg     config
		authCfg webauthnhandler.Config
	)
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}
	if err = envstruct.Populate(&authCfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate webauthn config")
	}

	var location *time.Location
	if location, err = time.LoadLocation(cfg.Timezone); err != nil {
		return errors.Wrap(err, "load timezone", slog.String("timezone", cfg.Timezone))
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, cfg.SqliteURL, logger); err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "error closing database", errors.SlogError(closeErr))
		}
	}()
	if cfg.SeedFixtures {
		if err = db.Seed(ctx); err != nil {
			return errors.Wrap(err, "seed fixtures")
		}
	}

	// Initialise pprof listening on localhost so that it's not open to the world.
	pprofserver.Launch(ctx, cfg.PProfPort, logger)

	sessionManager := scs.New()
	store := sqlite3store.NewWithCleanupInterval(db.ReadWrite.DB, 24*time.Hour) //nolint:mnd // daily cleanup
	defer store.StopCleanup()
	sessionManager.Store = store
	sessionManager.Lifetime = 12 * time.Hour //nolint:mnd // half a day

	var webAuthnHandler *webauthnhandler.WebAuthnHandler
	if webAuthnHandler, err = webauthnhandler.New(authCfg, logger, sessionManager, db); err != nil {
		return errors.Wrap(err, "new webauthn handler")
	}

	app := application{
		logger:          logger,
		webAuthnHandler: webAuthnHandler,
		sessionManager:  sessionManager,
		interviews:      repositories.NewInterviewRepository(db, logger),
		formatter:       interviews.Formatter{Location: location},
		htmx:            htmx.New(),
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}

	return nil
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)

	// A .env file is a convenience for local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.LogAttrs(ctx, slog.LevelError, "failure loading .env file", errors.SlogError(err))
		os.Exit(1)
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
