package webauthnhandler

import (
	"crypto/rand"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/myrjola/interviewdash/internal/errors"
	"time"
)

// user is a dashboard reviewer. Reviewers are anonymous, a passkey is the only thing identifying them.
type user struct {
	id          []byte
	displayName string
	credentials []webauthn.Credential
}

// webauthnIDSize is the maximum user handle size allowed by WebAuthn.
const webauthnIDSize = 64

// newRandomUser creates a reviewer with a random user handle. The display name only helps to tell passkeys apart in
// the browser's passkey picker.
func newRandomUser() (webauthn.User, error) {
	id := make([]byte, webauthnIDSize)
	if _, err := rand.Read(id); err != nil {
		return nil, errors.Wrap(err, "generate user id")
	}

	return &user{
		id:          id,
		displayName: "Interview reviewer " + time.Now().UTC().Format("2006-01-02 15:04"),
		credentials: []webauthn.Credential{},
	}, nil
}

// WebAuthnID is the opaque user handle. Authentication decisions are made on it, never on the display name.
func (u user) WebAuthnID() []byte {
	return u.id
}

func (u user) WebAuthnName() string {
	return u.displayName
}

func (u user) WebAuthnDisplayName() string {
	return u.displayName
}

func (u user) WebAuthnCredentials() []webauthn.Credential {
	return u.credentials
}
