package models

import "time"

// Interview is the record of one voice-interview call.
//
// Records are created when the call starts and completed by the ingestion process
// when it ends. The dashboard only reads them.
type Interview struct {
	ID               string
	CallID           string
	ParticipantID    *string
	CreatedAt        time.Time
	Duration         time.Duration
	CompletionStatus CompletionStatus
	// Transcript is ordered by the time the messages were spoken.
	Transcript         []TranscriptMessage
	ExtractedVariables *ExtractedVariables
}

// IsWoman reports the inferred gender flag and whether it is present at all.
func (i Interview) IsWoman() (isWoman bool, ok bool) {
	if i.ExtractedVariables == nil || i.ExtractedVariables.IsWoman == nil {
		return false, false
	}
	return *i.ExtractedVariables.IsWoman, true
}

type CompletionStatus string

const (
	CompletionStatusCompleted  CompletionStatus = "completed"
	CompletionStatusInProgress CompletionStatus = "in-progress"
	CompletionStatusFailed     CompletionStatus = "failed"
)

// TranscriptMessage is one spoken turn in the interview.
type TranscriptMessage struct {
	Speaker string `json:"speaker" yaml:"speaker" validate:"required"`
	Text    string `json:"text"    yaml:"text"    validate:"required"`
}

// ExtractedVariables are the structured answers inferred from the interview.
//
// Every field is independently optional. A nil field means the variable was not extracted, which is different from
// a false or empty value.
type ExtractedVariables struct {
	IsWoman      *bool   `json:"is_woman,omitempty"      yaml:"is_woman,omitempty"`
	FavoriteFood *string `json:"favorite_food,omitempty" yaml:"favorite_food,omitempty"`
	FoodReason   *string `json:"food_reason,omitempty"   yaml:"food_reason,omitempty"`
}

// IsEmpty reports whether no variable has been extracted.
func (v *ExtractedVariables) IsEmpty() bool {
	return v == nil || (v.IsWoman == nil && v.FavoriteFood == nil && v.FoodReason == nil)
}
