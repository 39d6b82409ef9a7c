package main

import (
	htmxmiddleware "github.com/donseba/go-htmx/middleware"
	"github.com/justinas/alice"
	"github.com/myrjola/interviewdash/ui"
	"net/http"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	fileServer := http.FileServer(ui.StaticFiles())
	mux.Handle("GET /static/", cacheForeverHeaders(http.StripPrefix("/static", fileServer)))
	mux.HandleFunc("GET /api/healthy", app.healthy)

	session := alice.New(app.sessionManager.LoadAndSave, noSurf, app.webAuthnHandler.AuthenticateMiddleware,
		commonContext)
	mustSession := session.Append(app.requireAuthentication)

	mux.Handle("GET /{$}", session.ThenFunc(app.home))
	mux.Handle("GET /dashboard", mustSession.ThenFunc(app.dashboard))
	mux.Handle("GET /interview/{callID}", mustSession.ThenFunc(app.interview))

	mux.Handle("POST /api/registration/start", session.ThenFunc(app.beginRegistration))
	mux.Handle("POST /api/registration/finish", session.ThenFunc(app.finishRegistration))
	mux.Handle("POST /api/login/start", session.ThenFunc(app.beginLogin))
	mux.Handle("POST /api/login/finish", session.ThenFunc(app.finishLogin))
	mux.Handle("POST /api/logout", session.ThenFunc(app.logout))

	mux.Handle("/", session.ThenFunc(app.notFound))

	common := alice.New(app.recoverPanic, app.logRequest, app.secureHeaders, htmxmiddleware.MiddleWare)

	return common.Then(mux)
}
