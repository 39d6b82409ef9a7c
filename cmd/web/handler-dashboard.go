package main

import (
	"github.com/myrjola/interviewdash/internal/errors"
	"github.com/myrjola/interviewdash/internal/interviews"
	"github.com/myrjola/interviewdash/internal/models"
	"log/slog"
	"net/http"
	"net/url"
)

type dashboardTemplateData struct {
	BaseTemplateData

	Filters      []interviews.FilterOption
	Rows         []interviews.Row
	EmptyMessage string
}

func (app *application) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rawFilter := r.URL.Query().Get("filter")
	filter, err := interviews.ParseFilter(rawFilter)
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest, "unknown filter "+rawFilter)
		return
	}

	var records []models.Interview
	if records, err = app.interviews.List(ctx); err != nil {
		app.serverError(w, r, errors.Wrap(err, "list interviews", slog.String("filter", string(filter))))
		return
	}

	data := dashboardTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Filters:          interviews.Filters(filter),
		Rows:             interviews.NewRows(records, filter, app.formatter),
		EmptyMessage:     filter.EmptyMessage(),
	}

	hx := app.htmx.NewHandler(w, r)
	if hx.Request().HxRequest {
		// Keep the address bar in sync so that reloading shows the same filter.
		hx.PushURL("/dashboard?" + url.Values{"filter": {string(filter)}}.Encode())
		app.renderPartial(w, r, http.StatusOK, "dashboard", "interview-list", data)
		return
	}

	app.render(w, r, http.StatusOK, "dashboard", data)
}
