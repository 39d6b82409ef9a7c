// Package dataset holds the commands that read and write the interview database.
package dataset

import (
	"context"
	"github.com/myrjola/interviewdash/internal/envstruct"
	"github.com/myrjola/interviewdash/internal/errors"
	"github.com/myrjola/interviewdash/internal/logging"
	"github.com/myrjola/interviewdash/internal/repositories"
	"github.com/myrjola/interviewdash/internal/sqlite"
	"github.com/spf13/cobra"
	"log/slog"
	"os"
)

var Group = &cobra.Group{
	ID:    "data",
	Title: "Interview data",
}

// config shares its variable names with the web server so that both open the same database.
type config struct {
	SqliteURL string `env:"INTERVIEWDASH_SQLITE_URL" envDefault:"./interviewdash.sqlite3"`
	// OpenAIAPIKey enables variable extraction during import. Empty disables it.
	OpenAIAPIKey  string `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" envDefault:""`
}

func loadConfig(lookupEnv func(string) (string, bool)) (config, error) {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return config{}, errors.Wrap(err, "populate config")
	}
	return cfg, nil
}

func newLogger() *slog.Logger {
	return slog.New(logging.NewContextHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelInfo,
		ReplaceAttr: nil,
	})))
}

// openRepository opens the database the web server uses. The caller closes the returned database.
func openRepository(
	ctx context.Context,
	logger *slog.Logger,
	url string,
) (*sqlite.Database, *repositories.InterviewRepository, error) {
	db, err := sqlite.NewDatabase(ctx, url, logger)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open database", slog.String("url", url))
	}
	return db, repositories.NewInterviewRepository(db, logger), nil
}

func closeDatabase(ctx context.Context, logger *slog.Logger, db *sqlite.Database) {
	if err := db.Close(); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error closing database", errors.SlogError(err))
	}
}

// commandContext returns the command context or a background context when the command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
