package auth

import (
	"context"
	"errors"
	"net/http"
	"time"
)

const (
	SessionTTL = 24 * time.Hour
)

// ErrInvalidSession is returned by a SessionStore when the client presented
// a session that cannot be trusted (bad signature, expired, unknown id).
var ErrInvalidSession = errors.New("invalid session")

// Identity is what a browser session knows about its visitor. Either key may
// be absent on its own: logging out only clears Username.
type Identity struct {
	UserID   int64
	Username string
}

// IsAuthenticated is keyed on UserID alone.
func (i Identity) IsAuthenticated() bool { return i.UserID != 0 }

func (i Identity) empty() bool { return i.UserID == 0 && i.Username == "" }

// SessionStore persists an Identity across requests of one browser.
type SessionStore interface {
	Load(r *http.Request) (Identity, error)
	// Save writes id for this browser; a zero Identity removes the session.
	Save(w http.ResponseWriter, r *http.Request, id Identity) error
}

// Sessions is the session manager used by the handlers.
type Sessions struct {
	store SessionStore
}

func NewSessions(store SessionStore) *Sessions {
	return &Sessions{store: store}
}

// Load resolves the identity of the visitor making r.
func (s *Sessions) Load(r *http.Request) (Identity, error) {
	return s.store.Load(r)
}

// Start associates the visitor's session with a user.
func (s *Sessions) Start(w http.ResponseWriter, r *http.Request, userID int64, username string) error {
	return s.store.Save(w, r, Identity{UserID: userID, Username: username})
}

// End removes the username from the session and keeps the user id.
func (s *Sessions) End(w http.ResponseWriter, r *http.Request) error {
	id, err := s.store.Load(r)
	if err != nil || id.empty() {
		return nil
	}
	id.Username = ""
	return s.store.Save(w, r, id)
}

type identityKey struct{}

// ContextWithIdentity stores id in ctx.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by the session middleware,
// or the anonymous identity.
func IdentityFromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey{}).(Identity)
	return id
}

// IsAuthenticated reports whether the request identity carries a user id.
func IsAuthenticated(ctx context.Context) bool {
	return IdentityFromContext(ctx).IsAuthenticated()
}
