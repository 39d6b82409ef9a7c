package dataset

import (
	"fmt"
	"github.com/myrjola/interviewdash/internal/ai"
	"github.com/myrjola/interviewdash/internal/errors"
	"github.com/myrjola/interviewdash/internal/ingest"
	"github.com/spf13/cobra"
	"log/slog"
	"os"
)

func init() {
	Import.Flags().Bool("extract", true, "infer missing variables from transcripts when OPENAI_API_KEY is set")
}

var Import = &cobra.Command{
	Use:     "import [file...]",
	GroupID: "data",
	Short:   "Import interview reports",
	Long: `Imports interview reports from JSON or YAML files into the dashboard database.

Each file holds one report or a list of them. Reports are upserted by call_id so re-importing a file is safe.
Reports without extracted variables get them inferred from the transcript when OPENAI_API_KEY is set.
Otherwise an existing interview keeps the variables stored by an earlier import.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		logger := newLogger()
		cfg, err := loadConfig(os.LookupEnv)
		if err != nil {
			return err
		}

		var reports []ingest.Report
		for _, name := range args {
			decoded, err := decodeFile(name)
			if err != nil {
				return err
			}
			reports = append(reports, decoded...)
		}

		db, repo, err := openRepository(ctx, logger, cfg.SqliteURL)
		if err != nil {
			return err
		}
		defer closeDatabase(ctx, logger, db)

		importer := ingest.Importer{
			Repo:      repo,
			Extractor: nil,
			Logger:    logger,
			Now:       nil,
		}
		extract, _ := cmd.Flags().GetBool("extract")
		if extract && cfg.OpenAIAPIKey != "" {
			importer.Extractor = ai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
		}

		var result ingest.Result
		if result, err = importer.Import(ctx, reports); err != nil {
			return errors.Wrap(err, "import reports", slog.Int("imported", result.Imported))
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d reports, extracted variables for %d\n",
			result.Imported, result.Extracted)
		return nil
	},
}

func decodeFile(name string) ([]ingest.Report, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "open report file", slog.String("file", name))
	}
	defer func() {
		_ = f.Close()
	}()
	var reports []ingest.Report
	if reports, err = ingest.Decode(name, f); err != nil {
		return nil, errors.Wrap(err, "decode report file", slog.String("file", name))
	}
	return reports, nil
}
