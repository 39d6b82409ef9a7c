package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/myrjola/interviewdash/internal/errors"
	"github.com/myrjola/interviewdash/internal/models"
	"github.com/myrjola/interviewdash/internal/sqlite"
	"log/slog"
	"time"
)

var ErrNotFound = errors.NewSentinel("not found")

type InterviewRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewInterviewRepository(db *sqlite.Database, logger *slog.Logger) *InterviewRepository {
	return &InterviewRepository{
		db:     db,
		logger: logger.With(slog.String("source", "InterviewRepository")),
	}
}

type interviewRow struct {
	ID                 string         `db:"id"`
	CallID             string         `db:"call_id"`
	ParticipantID      sql.NullString `db:"participant_id"`
	CreatedAt          int64          `db:"created_at"`
	DurationMS         int64          `db:"duration_ms"`
	CompletionStatus   string         `db:"completion_status"`
	ExtractedVariables sql.NullString `db:"extracted_variables"`
}

type transcriptRow struct {
	Speaker string `db:"speaker"`
	Text    string `db:"text"`
}

const selectInterview = `SELECT id, call_id, participant_id, created_at, duration_ms, completion_status, extracted_variables
FROM interviews`

// toModel converts a stored row. A malformed extracted_variables column is logged and treated as absent.
func (r *InterviewRepository) toModel(ctx context.Context, row interviewRow) models.Interview {
	interview := models.Interview{
		ID:               row.ID,
		CallID:           row.CallID,
		CreatedAt:        time.UnixMilli(row.CreatedAt),
		Duration:         time.Duration(row.DurationMS) * time.Millisecond,
		CompletionStatus: models.CompletionStatus(row.CompletionStatus),
	}
	if row.ParticipantID.Valid {
		participantID := row.ParticipantID.String
		interview.ParticipantID = &participantID
	}
	if row.ExtractedVariables.Valid && row.ExtractedVariables.String != "" {
		var vars *models.ExtractedVariables
		if err := json.Unmarshal([]byte(row.ExtractedVariables.String), &vars); err != nil {
			err = errors.Wrap(err, "unmarshal extracted variables", slog.String("call_id", row.CallID))
			r.logger.LogAttrs(ctx, slog.LevelWarn, "ignoring malformed extracted variables", errors.SlogError(err))
		} else {
			interview.ExtractedVariables = vars
		}
	}
	return interview
}

// Get returns the interview with callID including its transcript or ErrNotFound.
func (r *InterviewRepository) Get(ctx context.Context, callID string) (*models.Interview, error) {
	var (
		row        interviewRow
		transcript []transcriptRow
		err        error
	)
	if err = r.db.ReadOnly.GetContext(ctx, &row, selectInterview+` WHERE call_id = ?`, callID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrNotFound, "interview not found", slog.String("call_id", callID))
		}
		return nil, errors.Wrap(err, "read interview", slog.String("call_id", callID))
	}

	stmt := `SELECT speaker, text FROM transcript_messages WHERE interview_id = ? ORDER BY "order"`
	if err = r.db.ReadOnly.SelectContext(ctx, &transcript, stmt, row.ID); err != nil {
		return nil, errors.Wrap(err, "read transcript", slog.String("call_id", callID))
	}

	interview := r.toModel(ctx, row)
	interview.Transcript = make([]models.TranscriptMessage, 0, len(transcript))
	for _, message := range transcript {
		interview.Transcript = append(interview.Transcript, models.TranscriptMessage{
			Speaker: message.Speaker,
			Text:    message.Text,
		})
	}
	return &interview, nil
}

// List returns all interviews newest first. Transcripts are not loaded.
func (r *InterviewRepository) List(ctx context.Context) ([]models.Interview, error) {
	var rows []interviewRow
	if err := r.db.ReadOnly.SelectContext(ctx, &rows, selectInterview+` ORDER BY created_at DESC, call_id`); err != nil {
		return nil, errors.Wrap(err, "list interviews")
	}
	interviews := make([]models.Interview, 0, len(rows))
	for _, row := range rows {
		interviews = append(interviews, r.toModel(ctx, row))
	}
	return interviews, nil
}

// Count returns the number of stored interviews.
func (r *InterviewRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.ReadOnly.GetContext(ctx, &count, `SELECT COUNT(*) FROM interviews`); err != nil {
		return 0, errors.Wrap(err, "count interviews")
	}
	return count, nil
}

// Upsert stores the interview keyed by its call id and returns the stored id.
//
// An existing interview keeps its id and creation time, every other field and the transcript are replaced.
// Empty extracted variables keep the stored ones so that re-importing a report does not discard earlier extraction.
// A missing id gets a new UUID and a zero CreatedAt means now.
func (r *InterviewRepository) Upsert(ctx context.Context, interview models.Interview) (string, error) {
	var (
		err       error
		tx        *sqlx.Tx
		id        string
		variables sql.NullString
	)
	if interview.Duration < 0 {
		return "", errors.New("negative duration", slog.String("call_id", interview.CallID))
	}
	if interview.ID == "" {
		interview.ID = uuid.NewString()
	}
	if interview.CreatedAt.IsZero() {
		interview.CreatedAt = time.Now()
	}
	if !interview.ExtractedVariables.IsEmpty() {
		var raw []byte
		if raw, err = json.Marshal(interview.ExtractedVariables); err != nil {
			return "", errors.Wrap(err, "marshal extracted variables")
		}
		variables = sql.NullString{String: string(raw), Valid: true}
	}

	if tx, err = r.db.ReadWrite.BeginTxx(ctx, nil); err != nil {
		return "", errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			rollbackErr = errors.Wrap(rollbackErr, "rollback")
			r.logger.LogAttrs(ctx, slog.LevelError, "could not rollback upsert", errors.SlogError(rollbackErr))
		}
	}()

	stmt := `INSERT INTO interviews (id, call_id, participant_id, created_at, duration_ms, completion_status,
                        extracted_variables)
VALUES (:id, :call_id, :participant_id, :created_at, :duration_ms, :completion_status, :extracted_variables)
ON CONFLICT (call_id) DO UPDATE SET participant_id      = excluded.participant_id,
                                    duration_ms         = excluded.duration_ms,
                                    completion_status   = excluded.completion_status,
                                    extracted_variables = COALESCE(excluded.extracted_variables,
                                                                   interviews.extracted_variables)
RETURNING id`
	var participantID sql.NullString
	if interview.ParticipantID != nil {
		participantID = sql.NullString{String: *interview.ParticipantID, Valid: true}
	}
	if err = tx.GetContext(ctx, &id, stmt,
		sql.Named("id", interview.ID),
		sql.Named("call_id", interview.CallID),
		sql.Named("participant_id", participantID),
		sql.Named("created_at", interview.CreatedAt.UnixMilli()),
		sql.Named("duration_ms", interview.Duration.Milliseconds()),
		sql.Named("completion_status", string(interview.CompletionStatus)),
		sql.Named("extracted_variables", variables),
	); err != nil {
		return "", errors.Wrap(err, "upsert interview", slog.String("call_id", interview.CallID))
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM transcript_messages WHERE interview_id = ?`, id); err != nil {
		return "", errors.Wrap(err, "clear transcript")
	}
	for order, message := range interview.Transcript {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO transcript_messages (interview_id, "order", speaker, text) VALUES (?, ?, ?, ?)`,
			id, order, message.Speaker, message.Text); err != nil {
			return "", errors.Wrap(err, "insert transcript message", slog.Int("order", order))
		}
	}

	if err = tx.Commit(); err != nil {
		return "", errors.Wrap(err, "commit upsert")
	}
	return id, nil
}
