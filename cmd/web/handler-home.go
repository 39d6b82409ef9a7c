package main

import (
	"github.com/myrjola/interviewdash/internal/contexthelpers"
	"github.com/myrjola/interviewdash/internal/errors"
	"net/http"
)

type homeTemplateData struct {
	BaseTemplateData

	// InterviewCount is only loaded for signed in reviewers.
	InterviewCount int
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	data := homeTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		InterviewCount:   0,
	}

	if contexthelpers.IsAuthenticated(r.Context()) {
		var err error
		if data.InterviewCount, err = app.interviews.Count(r.Context()); err != nil {
			app.serverError(w, r, errors.Wrap(err, "count interviews"))
			return
		}
	}

	app.render(w, r, http.StatusOK, "home", data)
}
