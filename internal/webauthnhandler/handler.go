package webauthnhandler

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"github.com/alexedwards/scs/v2"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/myrjola/interviewdash/internal/errors"
	"github.com/myrjola/interviewdash/internal/sqlite"
	"log/slog"
	"net/http"
)

var (
	// ErrNoCeremony is returned when a ceremony is finished without being started in the same session.
	ErrNoCeremony = errors.NewSentinel("no webauthn ceremony in progress")
	// ErrUnknownUser is returned when a user handle does not match any registered reviewer.
	ErrUnknownUser = errors.NewSentinel("unknown user")
)

// Config is the Relying Party configuration, populated with envstruct.
type Config struct {
	// RPID is the fully qualified domain name passkeys are scoped to.
	RPID string `env:"INTERVIEWDASH_FQDN" envDefault:"localhost"`
	// RPOrigin is the origin the browser reports in WebAuthn ceremonies.
	RPOrigin string `env:"INTERVIEWDASH_RP_ORIGIN" envDefault:"http://localhost:4000"`
	// RPDisplayName is shown by the browser when it asks for a passkey.
	RPDisplayName string `env:"INTERVIEWDASH_RP_DISPLAY_NAME" envDefault:"Interview dashboard"`
}

// WebAuthnHandler runs the passkey registration and login ceremonies and keeps the signed-in reviewer in the session.
type WebAuthnHandler struct {
	logger         *slog.Logger
	webAuthn       *webauthn.WebAuthn
	sessionManager *scs.SessionManager
	db             *sqlite.Database
}

func New(cfg Config, logger *slog.Logger, sessionManager *scs.SessionManager, db *sqlite.Database) (
	*WebAuthnHandler, error) {
	webAuthn, err := webauthn.New(&webauthn.Config{ //nolint:exhaustruct // library defaults for the rest.
		RPID:          cfg.RPID,
		RPDisplayName: cfg.RPDisplayName,
		RPOrigins:     []string{cfg.RPOrigin},
	})
	if err != nil {
		return nil, errors.Wrap(err, "new webauthn",
			slog.String("rp_id", cfg.RPID),
			slog.String("rp_origin", cfg.RPOrigin))
	}

	return &WebAuthnHandler{
		logger:         logger.With(slog.String("source", "webauthn")),
		webAuthn:       webAuthn,
		sessionManager: sessionManager,
		db:             db,
	}, nil
}

// BeginRegistration creates a fresh anonymous reviewer and returns the JSON encoded credential creation options.
func (h *WebAuthnHandler) BeginRegistration(ctx context.Context) ([]byte, error) {
	u, err := newRandomUser()
	if err != nil {
		return nil, errors.Wrap(err, "new user")
	}

	opts, session, err := h.webAuthn.BeginRegistration(u,
		webauthn.WithAuthenticatorSelection(protocol.AuthenticatorSelection{ //nolint:exhaustruct // defaults.
			RequireResidentKey: protocol.ResidentKeyNotRequired(),
			UserVerification:   protocol.VerificationDiscouraged,
		}),
		webauthn.WithResidentKeyRequirement(protocol.ResidentKeyRequirementRequired))
	if err != nil {
		return nil, errors.Wrap(err, "begin registration")
	}

	if err = h.upsertUser(ctx, u); err != nil {
		return nil, errors.Wrap(err, "upsert user")
	}
	h.sessionManager.Put(ctx, string(registrationSessionKey), *session)

	return encodeOptions(opts)
}

// FinishRegistration stores the new passkey and signs the reviewer in.
func (h *WebAuthnHandler) FinishRegistration(r *http.Request) error {
	ctx := r.Context()
	session, err := h.popCeremony(ctx, registrationSessionKey)
	if err != nil {
		return err
	}

	var u *user
	if u, err = h.getUser(ctx, session.UserID); err != nil {
		return errors.Wrap(err, "get registering user")
	}

	var credential *webauthn.Credential
	if credential, err = h.webAuthn.FinishRegistration(u, session, r); err != nil {
		return errors.Wrap(err, "finish webauthn registration", userIDAttr(u.WebAuthnID()))
	}
	if err = h.upsertCredential(ctx, u.WebAuthnID(), credential); err != nil {
		return errors.Wrap(err, "upsert webauthn credential")
	}

	return h.signIn(ctx, u.WebAuthnID(), "registration")
}

// BeginLogin starts a discoverable login so that the browser offers every passkey it holds for this site.
func (h *WebAuthnHandler) BeginLogin(ctx context.Context) ([]byte, error) {
	opts, session, err := h.webAuthn.BeginDiscoverableLogin()
	if err != nil {
		return nil, errors.Wrap(err, "begin discoverable webauthn login")
	}
	h.sessionManager.Put(ctx, string(loginSessionKey), *session)

	return encodeOptions(opts)
}

// FinishLogin validates the assertion against the stored passkey and signs the reviewer in.
func (h *WebAuthnHandler) FinishLogin(r *http.Request) error {
	ctx := r.Context()
	session, err := h.popCeremony(ctx, loginSessionKey)
	if err != nil {
		return err
	}

	var parsed *protocol.ParsedCredentialAssertionData
	if parsed, err = protocol.ParseCredentialRequestResponse(r); err != nil {
		return errors.Wrap(err, "parse credential request response")
	}

	findUser := func(_, userHandle []byte) (webauthn.User, error) {
		return h.getUser(ctx, userHandle)
	}
	u, credential, err := h.webAuthn.ValidatePasskeyLogin(findUser, session, parsed)
	if err != nil {
		return errors.Wrap(err, "validate passkey login")
	}

	// The sign count moves on every login.
	if err = h.upsertCredential(ctx, u.WebAuthnID(), credential); err != nil {
		return errors.Wrap(err, "upsert webauthn credential")
	}

	return h.signIn(ctx, u.WebAuthnID(), "login")
}

// Logout drops the reviewer from the session.
func (h *WebAuthnHandler) Logout(ctx context.Context) error {
	if err := h.sessionManager.RenewToken(ctx); err != nil {
		return errors.Wrap(err, "renew session token")
	}
	h.sessionManager.Remove(ctx, string(userIDSessionKey))
	return nil
}

// popCeremony takes the ceremony state out of the session so that a challenge can be answered only once.
func (h *WebAuthnHandler) popCeremony(ctx context.Context, key sessionKey) (webauthn.SessionData, error) {
	session, ok := h.sessionManager.Pop(ctx, string(key)).(webauthn.SessionData)
	if !ok {
		return webauthn.SessionData{}, errors.Wrap(ErrNoCeremony, "pop ceremony", slog.String("ceremony", string(key)))
	}
	return session, nil
}

func (h *WebAuthnHandler) signIn(ctx context.Context, userID []byte, via string) error {
	// A fresh token prevents session fixation.
	if err := h.sessionManager.RenewToken(ctx); err != nil {
		return errors.Wrap(err, "renew session token")
	}
	h.sessionManager.Put(ctx, string(userIDSessionKey), userID)
	h.logger.LogAttrs(ctx, slog.LevelInfo, "reviewer signed in", userIDAttr(userID), slog.String("via", via))
	return nil
}

func encodeOptions(opts any) ([]byte, error) {
	out, err := json.Marshal(opts)
	if err != nil {
		return nil, errors.Wrap(err, "JSON encode webauthn options")
	}
	return out, nil
}

func userIDAttr(id []byte) slog.Attr {
	return slog.String("user_id", hex.EncodeToString(id))
}
