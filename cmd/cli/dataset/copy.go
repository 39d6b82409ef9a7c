package dataset

import (
	"fmt"
	"github.com/myrjola/interviewdash/internal/clipboard"
	"github.com/myrjola/interviewdash/internal/errors"
	"github.com/myrjola/interviewdash/internal/repositories"
	"github.com/spf13/cobra"
	"log/slog"
	"os"
)

var CopyCallID = &cobra.Command{
	Use:     "copy-call-id [call-id]",
	GroupID: "data",
	Short:   "Copy a call ID to the clipboard",
	Long: `Looks up the interview and copies its call ID to the terminal clipboard with an OSC 52 escape sequence.

The terminal emulator has to allow clipboard writes for this to work.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		logger := newLogger()
		callID := args[0]
		cfg, err := loadConfig(os.LookupEnv)
		if err != nil {
			return err
		}

		db, repo, err := openRepository(ctx, logger, cfg.SqliteURL)
		if err != nil {
			return err
		}
		defer closeDatabase(ctx, logger, db)

		if _, err = repo.Get(ctx, callID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return errors.New("no interview with call ID", slog.String("call_id", callID))
			}
			return errors.Wrap(err, "get interview", slog.String("call_id", callID))
		}

		button := clipboard.NewButton(clipboard.NewOSC52(os.Stdout))
		defer button.Close()
		if err = button.Copy(ctx, callID); err != nil {
			return errors.Wrap(err, "copy call ID", slog.String("call_id", callID))
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "copied %s\n", callID)
		return nil
	},
}
