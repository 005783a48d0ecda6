// Package auth implements the Basic-authentication gate that protects
// destructive contact operations.
package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
)

// ErrAuthentication matches any *AuthenticationError via errors.Is.
var ErrAuthentication = errors.New("authentication failed")

// AuthenticationError reports missing or wrong credentials.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return e.Reason
}

func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

// Credentials is the single shared username/password pair, loaded once at
// startup. The zero value rejects everyone.
type Credentials struct {
	Username string
	Password string
}

// Configured reports whether both halves of the pair are set.
func (c Credentials) Configured() bool {
	return c.Username != "" && c.Password != ""
}

// Gate checks requests against a fixed Credentials pair.
// There is no session state: every request is checked afresh.
type Gate struct {
	creds Credentials
	realm string
}

// NewGate returns a gate for creds. realm is sent in the WWW-Authenticate
// challenge; an empty realm sends a bare "Basic" challenge.
func NewGate(creds Credentials, realm string) *Gate {
	return &Gate{creds: creds, realm: realm}
}

// Check extracts Basic credentials from r and compares both fields
// byte-for-byte in constant time. Returns *AuthenticationError on any mismatch,
// a missing header, or when the gate has no credentials configured.
func (g *Gate) Check(r *http.Request) error {
	username, password, ok := r.BasicAuth()
	if !ok {
		return &AuthenticationError{Reason: "Not authenticated"}
	}

	if !g.creds.Configured() {
		return &AuthenticationError{Reason: "Incorrect username or password"}
	}

	// evaluate both comparisons so timing does not reveal which one failed
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.creds.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(g.creds.Password)) == 1
	if !userOK || !passOK {
		return &AuthenticationError{Reason: "Incorrect username or password"}
	}

	return nil
}

// Challenge returns the WWW-Authenticate header value for a 401 response.
func (g *Gate) Challenge() string {
	if g.realm == "" {
		return "Basic"
	}
	return `Basic realm="` + g.realm + `"`
}

// Require wraps next so it only runs for requests that pass Check. Rejected
// requests are handed to onFail, which is expected to write the 401 response
// (including the Challenge header).
func (g *Gate) Require(next http.Handler, onFail func(http.ResponseWriter, *http.Request, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := g.Check(r); err != nil {
			onFail(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
