package webauthnhandler

import (
	"encoding/gob"
	"github.com/go-webauthn/webauthn/webauthn"
)

func init() {
	// The scs session store serializes values with gob.
	gob.Register(webauthn.SessionData{})
}

type sessionKey string

const (
	registrationSessionKey = sessionKey("webauthn_registration")
	loginSessionKey        = sessionKey("webauthn_login")
	userIDSessionKey       = sessionKey("userID")
)
