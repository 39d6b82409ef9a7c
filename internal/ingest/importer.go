package ingest

import (
	"context"
	"github.com/myrjola/interviewdash/internal/errors"
	"github.com/myrjola/interviewdash/internal/models"
	"log/slog"
	"time"
)

// Store persists interviews keyed by call id.
type Store interface {
	Upsert(ctx context.Context, interview models.Interview) (string, error)
}

// Extractor infers the extracted variables from a transcript.
type Extractor interface {
	ExtractVariables(ctx context.Context, transcript []models.TranscriptMessage) (*models.ExtractedVariables, error)
}

type Importer struct {
	Repo Store
	// Extractor is optional. Without it reports keep the variables they carry.
	Extractor Extractor
	Logger    *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Result counts what Import did.
type Result struct {
	Imported int
	// Extracted is the number of reports whose variables were inferred from the transcript.
	Extracted int
}

// Import validates all reports and then stores them one by one.
//
// Variable extraction failures are logged and the report is stored without variables. A store failure stops the
// import and the result counts the reports stored before it.
func (im Importer) Import(ctx context.Context, reports []Report) (Result, error) {
	var result Result
	if err := Validate(reports); err != nil {
		return result, err
	}
	now := time.Now
	if im.Now != nil {
		now = im.Now
	}

	for _, report := range reports {
		interview, err := report.Interview(now())
		if err != nil {
			return result, errors.Wrap(err, "convert report")
		}

		if interview.ExtractedVariables == nil && im.Extractor != nil && len(interview.Transcript) > 0 {
			var vars *models.ExtractedVariables
			if vars, err = im.Extractor.ExtractVariables(ctx, interview.Transcript); err != nil {
				err = errors.Wrap(err, "extract variables", slog.String("call_id", interview.CallID))
				im.Logger.LogAttrs(ctx, slog.LevelWarn, "storing interview without variables", errors.SlogError(err))
			} else if vars != nil {
				interview.ExtractedVariables = vars
				result.Extracted++
			}
		}

		var id string
		if id, err = im.Repo.Upsert(ctx, interview); err != nil {
			return result, errors.Wrap(err, "store interview", slog.String("call_id", interview.CallID))
		}
		result.Imported++
		im.Logger.LogAttrs(ctx, slog.LevelInfo, "imported interview",
			slog.String("call_id", interview.CallID), slog.String("id", id))
	}
	return result, nil
}
