package main

import (
	"net/http"
	"time"
)

// timeoutBody has no scripts because the handler writing it never sets a CSP nonce.
const timeoutBody = `<!doctype html>
<html lang="en">
<head><title>Timeout · Interview dashboard</title></head>
<body>
<h1>Timeout</h1>
<p>The interview dashboard took too long to respond.</p>
<p><a href="">Try again</a></p>
</body>
</html>
`

// timeoutHandler responds with a 503 Service Unavailable error when the handler does not meet the deadline.
//
// The deadline is a little shorter than the server's write timeout so that the timeout page is written before the
// server closes the connection.
func timeoutHandler(h http.Handler, serverTimeout time.Duration) http.Handler {
	handlerTimeout := serverTimeout - 500*time.Millisecond //nolint:mnd // 500ms
	return http.TimeoutHandler(h, handlerTimeout, timeoutBody)
}
