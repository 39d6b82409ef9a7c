package main

import (
	"github.com/myrjola/interviewdash/internal/contexthelpers"
	"net/http"
)

// BaseTemplateData is embedded in the data of every page rendered with the base layout.
type BaseTemplateData struct {
	Authenticated bool
	// CurrentPath marks the active navigation link.
	CurrentPath string
}

func newBaseTemplateData(r *http.Request) BaseTemplateData {
	ctx := r.Context()
	return BaseTemplateData{
		Authenticated: contexthelpers.IsAuthenticated(ctx),
		CurrentPath:   contexthelpers.CurrentPath(ctx),
	}
}
