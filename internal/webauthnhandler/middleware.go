package webauthnhandler

import (
	"crypto/sha256"
	"encoding/hex"
	"github.com/myrjola/interviewdash/internal/contexthelpers"
	"github.com/myrjola/interviewdash/internal/errors"
	"github.com/myrjola/interviewdash/internal/logging"
	"log/slog"
	"net/http"
)

// AuthenticateMiddleware marks the request authenticated when the session belongs to a registered reviewer.
//
// A session pointing to a reviewer that no longer exists is logged out. It must run after the session has been loaded.
func (h *WebAuthnHandler) AuthenticateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := h.sessionManager.GetBytes(ctx, string(userIDSessionKey))
		if userID == nil {
			next.ServeHTTP(w, r)
			return
		}

		exists, err := h.userExists(ctx, userID)
		if err != nil {
			err = errors.Wrap(err, "check user exists")
			h.logger.LogAttrs(ctx, slog.LevelError, "server error",
				slog.String("method", r.Method), slog.String("uri", r.URL.RequestURI()), errors.SlogError(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if !exists {
			h.logger.LogAttrs(ctx, slog.LevelWarn, "session user not found, logging out", userIDAttr(userID))
			h.sessionManager.Remove(ctx, string(userIDSessionKey))
			next.ServeHTTP(w, r)
			return
		}
		r = contexthelpers.AuthenticateContext(r, userID)

		// The session token is hashed so that it does not leak through the logs.
		tokenHash := sha256.Sum256([]byte(h.sessionManager.Token(ctx)))
		ctx = logging.WithAttrs(r.Context(),
			slog.String("session_hash", hex.EncodeToString(tokenHash[:])),
			userIDAttr(userID),
		)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
