package main

import (
	"github.com/myrjola/interviewdash/internal/errors"
	"github.com/myrjola/interviewdash/internal/interviews"
	"github.com/myrjola/interviewdash/internal/models"
	"github.com/myrjola/interviewdash/internal/repositories"
	"log/slog"
	"net/http"
)

type interviewTemplateData struct {
	BaseTemplateData

	Summary interviews.Summary
}

func (app *application) interview(w http.ResponseWriter, r *http.Request) {
	var (
		ctx       = r.Context()
		callID    = r.PathValue("callID")
		interview *models.Interview
		err       error
	)
	if interview, err = app.interviews.Get(ctx, callID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, errors.Wrap(err, "get interview", slog.String("call_id", callID)))
		return
	}

	data := interviewTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Summary:          interviews.NewSummary(*interview, app.formatter),
	}
	app.render(w, r, http.StatusOK, "interview", data)
}
