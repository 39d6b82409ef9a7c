package interviews

import (
	"fmt"
	"github.com/myrjola/interviewdash/internal/models"
	"net/url"
)

// StatusBadge is the label and style of a completion status.
type StatusBadge struct {
	Label string
	Class string
}

// NewStatusBadge maps the known completion statuses to badges. Unknown statuses are shown verbatim.
func NewStatusBadge(status models.CompletionStatus) StatusBadge {
	switch status {
	case models.CompletionStatusCompleted:
		return StatusBadge{Label: "Completed", Class: "badge-completed"}
	case models.CompletionStatusInProgress:
		return StatusBadge{Label: "In progress", Class: "badge-in-progress"}
	case models.CompletionStatusFailed:
		return StatusBadge{Label: "Failed", Class: "badge-failed"}
	default:
		return StatusBadge{Label: string(status), Class: "badge-unknown"}
	}
}

// Variables is the display form of the extracted variables.
type Variables struct {
	HasGender bool
	// GenderLabel is "Woman" or "Not woman".
	GenderLabel string
	// GenderTitle is the question and answer behind the gender badge.
	GenderTitle  string
	FavoriteFood string
	FoodReason   string
	// ShowVariables is set when there is a gender or a favorite food to show.
	ShowVariables bool
}

func newVariables(i models.Interview) Variables {
	var v Variables
	if isWoman, ok := i.IsWoman(); ok {
		v.HasGender = true
		v.GenderLabel = "Not woman"
		v.GenderTitle = "Are you a woman? No"
		if isWoman {
			v.GenderLabel = "Woman"
			v.GenderTitle = "Are you a woman? Yes"
		}
	}
	if vars := i.ExtractedVariables; vars != nil {
		if vars.FavoriteFood != nil {
			v.FavoriteFood = *vars.FavoriteFood
		}
		if vars.FoodReason != nil {
			v.FoodReason = *vars.FoodReason
		}
	}
	v.ShowVariables = v.HasGender || v.FavoriteFood != ""
	return v
}

func participant(i models.Interview, fallback string) string {
	if i.ParticipantID == nil || *i.ParticipantID == "" {
		return fallback
	}
	return *i.ParticipantID
}

// DetailPath is the path of the detail page of the interview with callID.
func DetailPath(callID string) string {
	return "/interview/" + url.PathEscape(callID)
}

// Row is one line of the interview list.
type Row struct {
	Variables
	CallID       string
	Href         string
	Participant  string
	CreatedAt    string
	// Seconds is the duration rounded to whole seconds, like "65s".
	Seconds      string
	SecondsTitle string
	Status       StatusBadge
}

func NewRow(i models.Interview, f Formatter) Row {
	ms := i.Duration.Milliseconds()
	return Row{
		Variables:    newVariables(i),
		CallID:       i.CallID,
		Href:         DetailPath(i.CallID),
		Participant:  participant(i, "Unknown"),
		CreatedAt:    f.DateTime(i.CreatedAt),
		Seconds:      f.SecondsLabel(ms),
		SecondsTitle: fmt.Sprintf("Duration: %d seconds", f.Seconds(ms)),
		Status:       NewStatusBadge(i.CompletionStatus),
	}
}

// NewRows shapes the interviews passing filter into list rows.
func NewRows(records []models.Interview, filter Filter, f Formatter) []Row {
	kept := Apply(records, filter)
	rows := make([]Row, 0, len(kept))
	for _, i := range kept {
		rows = append(rows, NewRow(i, f))
	}
	return rows
}

// Summary is the detail card of one interview.
type Summary struct {
	Variables
	ID          string
	CallID      string
	Participant string
	Date        string
	Time        string
	Duration    string
	// Seconds is the duration rounded to whole seconds, like "42s".
	Seconds    string
	Status     StatusBadge
	Transcript []models.TranscriptMessage
}

func NewSummary(i models.Interview, f Formatter) Summary {
	ms := i.Duration.Milliseconds()
	return Summary{
		Variables:   newVariables(i),
		ID:          i.ID,
		CallID:      i.CallID,
		Participant: participant(i, "N/A"),
		Date:        f.Date(i.CreatedAt),
		Time:        f.Time(i.CreatedAt),
		Duration:    f.Duration(ms),
		Seconds:     f.SecondsLabel(ms),
		Status:      NewStatusBadge(i.CompletionStatus),
		Transcript:  i.Transcript,
	}
}
