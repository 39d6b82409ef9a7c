// Package interviews holds the list filtering, formatting and view shaping of interview records.
package interviews

import (
	"github.com/myrjola/interviewdash/internal/errors"
	"github.com/myrjola/interviewdash/internal/models"
	"log/slog"
)

// Filter selects which interviews the list shows.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterWoman    Filter = "woman"
	FilterNotWoman Filter = "not-woman"
)

var ErrUnknownFilter = errors.NewSentinel("unknown filter")

// ParseFilter parses the filter query parameter. An empty value selects every interview.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterWoman, FilterNotWoman:
		return f, nil
	default:
		return "", errors.Wrap(ErrUnknownFilter, "parse filter", slog.String("filter", s))
	}
}

// Keep reports whether the interview passes the filter.
//
// Interviews without the gender variable only pass FilterAll.
func (f Filter) Keep(i models.Interview) bool {
	if f == FilterAll {
		return true
	}
	isWoman, ok := i.IsWoman()
	if !ok {
		return false
	}
	switch f {
	case FilterWoman:
		return isWoman
	case FilterNotWoman:
		return !isWoman
	default:
		return false
	}
}

// Apply returns the interviews passing f in their original order. The input is not modified.
func Apply(records []models.Interview, f Filter) []models.Interview {
	kept := make([]models.Interview, 0, len(records))
	for _, record := range records {
		if f.Keep(record) {
			kept = append(kept, record)
		}
	}
	return kept
}

// EmptyMessage is shown in place of a list that has no rows.
func (f Filter) EmptyMessage() string {
	if f == FilterAll {
		return "No interviews yet."
	}
	return "No interviews match this filter."
}

func (f Filter) Label() string {
	switch f {
	case FilterAll:
		return "All"
	case FilterWoman:
		return "Woman"
	case FilterNotWoman:
		return "Not woman"
	default:
		return string(f)
	}
}

// FilterOption is one filter button.
type FilterOption struct {
	Filter Filter
	Label  string
	Active bool
}

// Filters lists the filter buttons in display order with the active one marked.
func Filters(active Filter) []FilterOption {
	all := []Filter{FilterAll, FilterWoman, FilterNotWoman}
	options := make([]FilterOption, 0, len(all))
	for _, f := range all {
		options = append(options, FilterOption{
			Filter: f,
			Label:  f.Label(),
			Active: f == active,
		})
	}
	return options
}
