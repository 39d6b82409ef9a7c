package main

import (
	"bytes"
	"fmt"
	"github.com/myrjola/interviewdash/internal/contexthelpers"
	"github.com/myrjola/interviewdash/internal/errors"
	"github.com/myrjola/interviewdash/ui"
	"html/template"
	"io"
	"log/slog"
	"net/http"
)

// pageTemplate returns a template for the given page name.
//
// pageName corresponds to directory inside ui/templates/pages folder. It has to include a template named "page".
func (app *application) pageTemplate(pageName string) (*template.Template, error) {
	patterns := []string{
		"templates/base.gohtml",
		fmt.Sprintf("templates/pages/%s/*.gohtml", pageName),
	}

	// We need to initialize the FuncMap before parsing the files. These will be overridden in the render function.
	t, err := template.New(pageName).Funcs(template.FuncMap{
		"nonce": func() template.HTMLAttr {
			panic("not implemented")
		},
		"csrf": func() template.HTML {
			panic("not implemented")
		},
	}).ParseFS(ui.Files, patterns...)
	if err != nil {
		return nil, errors.Wrap(err, "parse template files", slog.String("page", pageName))
	}
	return t, nil
}

// execute renders templateName from the page into a buffer so that a template error can still become a 500 response.
func (app *application) execute(r *http.Request, page string, templateName string, data any) (*bytes.Buffer, error) {
	var (
		err error
		t   *template.Template
	)

	if t, err = app.pageTemplate(page); err != nil {
		return nil, errors.Wrap(err, "parse template")
	}

	buf := new(bytes.Buffer)
	ctx := r.Context()
	nonce := fmt.Sprintf("nonce=\"%s\"", contexthelpers.CSPNonce(ctx))
	csrf := fmt.Sprintf("<input type=\"hidden\" name=\"csrf_token\" value=\"%s\"/>", contexthelpers.CSRFToken(ctx))
	t.Funcs(template.FuncMap{
		"nonce": func() template.HTMLAttr {
			return template.HTMLAttr(nonce) //nolint:gosec // we trust the nonce since it's not provided by user.
		},
		"csrf": func() template.HTML {
			return template.HTML(csrf) //nolint:gosec // we trust the csrf since it's not provided by user.
		},
	})
	if err = t.ExecuteTemplate(buf, templateName, data); err != nil {
		return nil, errors.Wrap(err, "execute template", slog.String("template", templateName))
	}
	return buf, nil
}

// render writes the full page wrapped in the base layout.
func (app *application) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	app.renderPartial(w, r, status, page, "base", data)
}

// renderPartial writes only the named template of the page, used for responses to htmx requests.
func (app *application) renderPartial(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	page string,
	templateName string,
	data any,
) {
	buf, err := app.execute(r, page, templateName, data)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "render", slog.String("page", page)))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	_, _ = io.Copy(w, buf)
}
