package main

import (
	"context"
	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/interviewdash/internal/e2etest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"testing"
	"time"
)

func testLookupEnv(key string) (string, bool) {
	switch key {
	case "INTERVIEWDASH_ADDR":
		return "localhost:0", true
	case "INTERVIEWDASH_FQDN":
		return "localhost", true
	case "INTERVIEWDASH_RP_ORIGIN":
		return "http://localhost:0", true
	case "INTERVIEWDASH_SQLITE_URL":
		return ":memory:", true
	case "INTERVIEWDASH_PPROF_PORT":
		return "", true
	case "INTERVIEWDASH_SEED_FIXTURES":
		return "true", true
	case "INTERVIEWDASH_TIMEZONE":
		return "UTC", true
	default:
		return "", false
	}
}

func withoutFixtures(key string) (string, bool) {
	if key == "INTERVIEWDASH_SEED_FIXTURES" {
		return "false", true
	}
	return testLookupEnv(key)
}

func startServer(t *testing.T, lookupEnv func(string) (string, bool)) (context.Context, *e2etest.Server) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	server, err := e2etest.StartServer(ctx, io.Discard, lookupEnv, run)
	require.NoError(t, err)
	return ctx, server
}

// startAuthenticatedServer returns a server with the demo interviews and a client that has signed in.
func startAuthenticatedServer(t *testing.T) (context.Context, *e2etest.Client) {
	t.Helper()
	ctx, server := startServer(t, testLookupEnv)
	client := server.Client()
	_, err := client.Register(ctx)
	require.NoError(t, err)
	return ctx, client
}

func callIDs(doc *goquery.Document) []string {
	return doc.Find("tr[data-call-id]").Map(func(_ int, s *goquery.Selection) string {
		return s.AttrOr("data-call-id", "")
	})
}

func Test_application_auth(t *testing.T) {
	ctx, server := startServer(t, testLookupEnv)
	client := server.Client()

	doc, err := client.GetDoc(ctx, "/")
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find("button:contains('Sign in')").Length())
	assert.Equal(t, 1, doc.Find("button:contains('Register')").Length())

	doc, err = client.Register(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find("button:contains('Log out')").Length())
	assert.Equal(t, 1, doc.Find("main a[href='/dashboard']").Length())
	assert.Equal(t, "5", doc.Find("span.interview-count").Text())
	registeredSession, ok := client.Cookie("session")
	require.True(t, ok, "registration starts a session")

	doc, err = client.Logout(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find("button:contains('Sign in')").Length())

	doc, err = client.Login(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find("button:contains('Log out')").Length())
	loggedInSession, ok := client.Cookie("session")
	require.True(t, ok)
	assert.NotEqual(t, registeredSession, loggedInSession, "login renews the session token")
}

func Test_application_requiresAuthentication(t *testing.T) {
	ctx, server := startServer(t, testLookupEnv)
	client := server.Client()

	for _, path := range []string{"/dashboard", "/interview/xyz"} {
		doc, err := client.GetDoc(ctx, path)
		require.NoError(t, err, path)
		assert.Equal(t, 1, doc.Find("button:contains('Sign in')").Length(), "%s redirects to the front page", path)
		assert.Zero(t, doc.Find("tr[data-call-id]").Length())
		assert.Zero(t, doc.Find("article.summary").Length())
	}
}

func Test_application_dashboard(t *testing.T) {
	ctx, client := startAuthenticatedServer(t)

	tests := []struct {
		name    string
		path    string
		active  string
		callIDs []string
	}{
		{"default", "/dashboard", "all", []string{"call-123", "xyz", "abc", "def", "ghi"}},
		{"all", "/dashboard?filter=all", "all", []string{"call-123", "xyz", "abc", "def", "ghi"}},
		{"woman", "/dashboard?filter=woman", "woman", []string{"abc"}},
		{"not woman", "/dashboard?filter=not-woman", "not-woman", []string{"xyz"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := client.GetDoc(ctx, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.callIDs, callIDs(doc))
			active := doc.Find("nav.filters a[aria-current='page']")
			require.Equal(t, 1, active.Length())
			assert.Equal(t, tt.active, active.AttrOr("data-filter", ""))
			assert.Zero(t, doc.Find("p.empty").Length())
		})
	}

	t.Run("row contents", func(t *testing.T) {
		doc, err := client.GetDoc(ctx, "/dashboard")
		require.NoError(t, err)

		abc := doc.Find("tr[data-call-id='abc']")
		assert.Equal(t, "P-001", abc.Find("td.participant").Text())
		assert.Equal(t, "65s", abc.Find("td.duration").Text())
		assert.Equal(t, "Duration: 65 seconds", abc.Find("td.duration").AttrOr("title", ""))
		assert.Equal(t, "Woman", abc.Find("span.badge-gender").Text())
		assert.Equal(t, "pizza", abc.Find("span.favorite-food").Text())
		assert.Zero(t, abc.Find("span.food-reason").Length())
		assert.Equal(t, "abc", abc.Find("button[data-copy]").AttrOr("data-copy", ""))
		assert.Equal(t, "/interview/abc", abc.Find("a").AttrOr("href", ""))

		xyz := doc.Find("tr[data-call-id='xyz']")
		assert.Equal(t, "42s", xyz.Find("td.duration").Text())
		assert.Equal(t, "sushi", xyz.Find("span.favorite-food").Text())
		assert.Equal(t, "It reminds me of my trip to Osaka", xyz.Find("span.food-reason").Text())
		assert.Equal(t, "xyz", xyz.Find("button[data-copy]").AttrOr("data-copy", ""))

		call123 := doc.Find("tr[data-call-id='call-123']")
		assert.Equal(t, "Unknown", call123.Find("td.participant").Text())
		assert.Equal(t, "In progress", call123.Find("span.badge-in-progress").Text())
		assert.Zero(t, call123.Find("span.badge-gender").Length())

		ghi := doc.Find("tr[data-call-id='ghi']")
		assert.Zero(t, ghi.Find("span.badge-gender").Length())
		assert.Zero(t, ghi.Find("span.favorite-food").Length())
	})

	t.Run("htmx fragment", func(t *testing.T) {
		doc, header, err := client.GetFragment(ctx, "/dashboard?filter=woman")
		require.NoError(t, err)
		assert.Equal(t, "/dashboard?filter=woman", header.Get("HX-Push-Url"))
		assert.Equal(t, 1, doc.Find("section#interviews").Length())
		assert.Zero(t, doc.Find("header.site-header").Length(), "fragment must not include the layout")
		assert.Equal(t, []string{"abc"}, callIDs(doc))
	})

	t.Run("unknown filter", func(t *testing.T) {
		resp, err := client.Get(ctx, "/dashboard?filter=bogus")
		require.NoError(t, err)
		defer func() {
			_ = resp.Body.Close()
		}()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func Test_application_dashboardEmpty(t *testing.T) {
	ctx, server := startServer(t, withoutFixtures)
	client := server.Client()
	_, err := client.Register(ctx)
	require.NoError(t, err)

	doc, err := client.GetDoc(ctx, "/dashboard")
	require.NoError(t, err)
	assert.Empty(t, callIDs(doc))
	assert.Equal(t, "No interviews yet.", doc.Find("p.empty").Text())

	doc, err = client.GetDoc(ctx, "/dashboard?filter=woman")
	require.NoError(t, err)
	assert.Equal(t, "No interviews match this filter.", doc.Find("p.empty").Text())
}

func Test_application_interview(t *testing.T) {
	ctx, client := startAuthenticatedServer(t)

	t.Run("all variables", func(t *testing.T) {
		doc, err := client.GetDoc(ctx, "/interview/xyz")
		require.NoError(t, err)
		summary := doc.Find("article.summary")
		require.Equal(t, 1, summary.Length())
		assert.Equal(t, "xyz", summary.Find("span.call-id").Text())
		assert.Equal(t, "xyz", summary.Find("button.copy").AttrOr("data-copy", ""))
		assert.Equal(t, "P-002", summary.Find("dd.participant").Text())
		assert.Equal(t, "Oct 9", summary.Find("dd.date").Text())
		assert.Equal(t, "09:53 AM", summary.Find("dd.time").Text())
		assert.Equal(t, "42s", summary.Find("dd.duration").Text())
		assert.Equal(t, "42s", summary.Find("dd.duration").AttrOr("title", ""))
		assert.Equal(t, "Completed", summary.Find("span.badge-completed").Text())
		assert.Equal(t, "Not woman", summary.Find("section.variables span.badge-gender").Text())
		assert.Equal(t, "Favorite food: sushi", summary.Find("p.favorite-food").Text())
		assert.Equal(t, "Why: It reminds me of my trip to Osaka", summary.Find("p.food-reason").Text())

		speakers := doc.Find("li.message").Map(func(_ int, s *goquery.Selection) string {
			return s.AttrOr("data-speaker", "")
		})
		assert.Equal(t, []string{"assistant", "user", "assistant", "user"}, speakers)
		assert.Equal(t, "No.", doc.Find("li.message").Eq(1).Find(".text").Text())
	})

	t.Run("no food reason", func(t *testing.T) {
		doc, err := client.GetDoc(ctx, "/interview/abc")
		require.NoError(t, err)
		assert.Equal(t, "Favorite food: pizza", doc.Find("p.favorite-food").Text())
		assert.Zero(t, doc.Find("p.food-reason").Length())
		assert.Equal(t, "1m 5s", doc.Find("dd.duration").Text())
		assert.Equal(t, "65s", doc.Find("dd.duration").AttrOr("title", ""))
	})

	t.Run("unknown participant without answers", func(t *testing.T) {
		doc, err := client.GetDoc(ctx, "/interview/call-123")
		require.NoError(t, err)
		assert.Equal(t, "N/A", doc.Find("dd.participant").Text())
		assert.Zero(t, doc.Find("section.variables").Length())
		assert.Equal(t, "No transcript yet.", doc.Find("section.transcript p.empty").Text())
	})

	t.Run("missing", func(t *testing.T) {
		doc, status, err := client.GetDocWithStatus(ctx, "/interview/missing")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Not found", doc.Find("h1").Text())
	})
}

func Test_application_healthy(t *testing.T) {
	ctx, server := startServer(t, testLookupEnv)

	resp, err := server.Client().Get(ctx, "/api/healthy")
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func Test_application_notFound(t *testing.T) {
	ctx, server := startServer(t, testLookupEnv)

	doc, status, err := server.Client().GetDocWithStatus(ctx, "/no-such-page")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Not found", doc.Find("h1").Text())
}

func Test_application_scripts(t *testing.T) {
	ctx, server := startServer(t, testLookupEnv)

	doc, err := server.Client().GetDoc(ctx, "/")
	require.NoError(t, err)

	scripts := doc.Find("script")
	require.Equal(t, 3, scripts.Length())
	scripts.Each(func(_ int, s *goquery.Selection) {
		assert.NotEmpty(t, s.AttrOr("nonce", ""), "script %s needs a nonce", s.AttrOr("src", ""))
	})

	htmxScript := doc.Find("script[src^='https://']")
	require.Equal(t, 1, htmxScript.Length(), "only htmx is loaded from a CDN")
	assert.Contains(t, htmxScript.AttrOr("src", ""), "htmx.org@1.9.12")
	assert.Regexp(t, `^sha384-[A-Za-z0-9+/]{64}$`, htmxScript.AttrOr("integrity", ""))
	assert.Equal(t, "anonymous", htmxScript.AttrOr("crossorigin", ""))
}
