package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const SessionCookie = "session"

// GenerateSecret returns a random signing key. A key generated at startup
// is lost on restart, which logs every visitor out.
func GenerateSecret() ([]byte, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}
	return b, nil
}

type sessionClaims struct {
	UserID   int64  `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// CookieStore keeps the whole session client-side as an HS256-signed token.
type CookieStore struct {
	key    []byte
	ttl    time.Duration
	secure bool
}

func NewCookieStore(key []byte, ttl time.Duration, secure bool) (*CookieStore, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("session signing key cannot be empty")
	}
	if ttl <= 0 {
		ttl = SessionTTL
	}
	return &CookieStore{key: key, ttl: ttl, secure: secure}, nil
}

func (s *CookieStore) Load(r *http.Request) (Identity, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return Identity{}, nil
	}

	claims := &sessionClaims{}
	_, err = jwt.ParseWithClaims(cookie.Value, claims, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, fmt.Errorf("%w: expired", ErrInvalidSession)
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

func (s *CookieStore) Save(w http.ResponseWriter, _ *http.Request, id Identity) error {
	if id.empty() {
		http.SetCookie(w, s.cookie("", -1))
		return nil
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &sessionClaims{
		UserID:   id.UserID,
		Username: id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := token.SignedString(s.key)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	http.SetCookie(w, s.cookie(signed, int(s.ttl/time.Second)))
	return nil
}

func (s *CookieStore) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}
