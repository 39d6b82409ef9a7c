package main

import (
	"github.com/myrjola/interviewdash/internal/errors"
	"net/http"
)

// writeJSON writes the already encoded WebAuthn options.
func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, out []byte) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(out); err != nil {
		app.serverError(w, r, errors.Wrap(err, "write JSON response"))
	}
}

func (app *application) beginRegistration(w http.ResponseWriter, r *http.Request) {
	out, err := app.webAuthnHandler.BeginRegistration(r.Context())
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "begin registration"))
		return
	}
	app.writeJSON(w, r, out)
}

func (app *application) finishRegistration(w http.ResponseWriter, r *http.Request) {
	if err := app.webAuthnHandler.FinishRegistration(r); err != nil {
		app.serverError(w, r, errors.Wrap(err, "finish registration"))
		return
	}
}

func (app *application) beginLogin(w http.ResponseWriter, r *http.Request) {
	out, err := app.webAuthnHandler.BeginLogin(r.Context())
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "begin login"))
		return
	}
	app.writeJSON(w, r, out)
}

func (app *application) finishLogin(w http.ResponseWriter, r *http.Request) {
	if err := app.webAuthnHandler.FinishLogin(r); err != nil {
		app.serverError(w, r, errors.Wrap(err, "finish login"))
		return
	}
}

// logout ends the session and sends the reviewer back to the front page.
func (app *application) logout(w http.ResponseWriter, r *http.Request) {
	if err := app.webAuthnHandler.Logout(r.Context()); err != nil {
		app.serverError(w, r, errors.Wrap(err, "logout"))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
