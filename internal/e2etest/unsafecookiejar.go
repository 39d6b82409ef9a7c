package e2etest

import (
	"github.com/myrjola/interviewdash/internal/errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
)

// unsafeCookieJar stores Secure cookies that arrive over plain HTTP so that a test server on localhost can keep its
// session and CSRF cookies.
type unsafeCookieJar struct {
	jar *cookiejar.Jar
}

func newUnsafeCookieJar() (*unsafeCookieJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "new cookie jar")
	}

	return &unsafeCookieJar{jar: jar}, nil
}

func (u *unsafeCookieJar) SetCookies(url *url.URL, cookies []*http.Cookie) {
	relaxed := make([]*http.Cookie, 0, len(cookies))
	for _, cookie := range cookies {
		c := *cookie
		c.Secure = false
		relaxed = append(relaxed, &c)
	}
	u.jar.SetCookies(url, relaxed)
}

func (u *unsafeCookieJar) Cookies(url *url.URL) []*http.Cookie {
	return u.jar.Cookies(url)
}

// Cookie returns the value of the named cookie stored for url.
func (u *unsafeCookieJar) Cookie(url *url.URL, name string) (string, bool) {
	for _, c := range u.jar.Cookies(url) {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}
