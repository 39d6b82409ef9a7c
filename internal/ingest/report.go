// Package ingest imports end-of-call reports into the interview store.
package ingest

import (
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/myrjola/interviewdash/internal/errors"
	"github.com/myrjola/interviewdash/internal/models"
	"log/slog"
	"reflect"
	"strings"
	"time"
)

// Report is the end-of-call report of one interview.
type Report struct {
	CallID        string  `json:"call_id"                  yaml:"call_id"                  validate:"required"`
	ParticipantID *string `json:"participant_id,omitempty" yaml:"participant_id,omitempty" validate:"omitempty,min=1"`
	// CreatedAt is an RFC 3339 timestamp. Empty means the time of the import.
	CreatedAt          string                     `json:"created_at,omitempty"          yaml:"created_at,omitempty"          validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	DurationMS         int64                      `json:"duration_ms"                   yaml:"duration_ms"                   validate:"gte=0"`
	Status             models.CompletionStatus    `json:"status,omitempty"              yaml:"status,omitempty"              validate:"omitempty,oneof=completed in-progress failed"`
	Transcript         []models.TranscriptMessage `json:"transcript,omitempty"          yaml:"transcript,omitempty"          validate:"dive"`
	ExtractedVariables *models.ExtractedVariables `json:"extracted_variables,omitempty" yaml:"extracted_variables,omitempty"`
}

var ErrInvalidReport = errors.NewSentinel("invalid report")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report the JSON names of the fields so that violations match the input.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every report and reports all violations together.
func Validate(reports []Report) error {
	var violations []string
	for index, report := range reports {
		err := validate.Struct(report)
		if err == nil {
			continue
		}
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return errors.Wrap(err, "validate report", slog.Int("index", index))
		}
		for _, fieldErr := range validationErrors {
			violation := fmt.Sprintf("report %d (%s): field '%s' failed on the '%s' tag",
				index, report.CallID, strings.TrimPrefix(fieldErr.Namespace(), "Report."), fieldErr.Tag())
			if fieldErr.Param() != "" {
				violation = fmt.Sprintf("%s (%s)", violation, fieldErr.Param())
			}
			violations = append(violations, violation)
		}
	}
	if len(violations) > 0 {
		return errors.Wrap(ErrInvalidReport, "validate reports", slog.Any("violations", violations))
	}
	return nil
}

// Interview converts a validated report. Missing creation time defaults to now and missing status to completed.
func (r Report) Interview(now time.Time) (models.Interview, error) {
	createdAt := now
	if r.CreatedAt != "" {
		var err error
		if createdAt, err = time.Parse(time.RFC3339, r.CreatedAt); err != nil {
			return models.Interview{}, errors.Wrap(err, "parse created_at", slog.String("call_id", r.CallID))
		}
	}
	status := r.Status
	if status == "" {
		status = models.CompletionStatusCompleted
	}
	return models.Interview{
		ID:                 "",
		CallID:             r.CallID,
		ParticipantID:      r.ParticipantID,
		CreatedAt:          createdAt,
		Duration:           time.Duration(r.DurationMS) * time.Millisecond,
		CompletionStatus:   status,
		Transcript:         r.Transcript,
		ExtractedVariables: r.ExtractedVariables,
	}, nil
}
