package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const RedisSessionCookie = "session_id"

// RedisStore keeps sessions server-side in a Redis hash per session id;
// the cookie only carries the id.
type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	secure bool
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration, secure bool) *RedisStore {
	if ttl <= 0 {
		ttl = SessionTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl, secure: secure}
}

func sessionKey(sid string) string { return "session:" + sid }

func (s *RedisStore) Load(r *http.Request) (Identity, error) {
	cookie, err := r.Cookie(RedisSessionCookie)
	if err != nil || cookie.Value == "" {
		return Identity{}, nil
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return Identity{}, fmt.Errorf("%w: malformed id", ErrInvalidSession)
	}

	vals, err := s.rdb.HGetAll(r.Context(), sessionKey(cookie.Value)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Identity{}, fmt.Errorf("load session: %w", err)
	}
	if len(vals) == 0 {
		return Identity{}, nil
	}

	var id Identity
	if v, ok := vals["user_id"]; ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Identity{}, fmt.Errorf("%w: bad user_id %q", ErrInvalidSession, v)
		}
		id.UserID = n
	}
	id.Username = vals["username"]
	return id, nil
}

func (s *RedisStore) Save(w http.ResponseWriter, r *http.Request, id Identity) error {
	ctx := r.Context()
	sid := ""
	if c, err := r.Cookie(RedisSessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			sid = c.Value
		}
	}

	if id.empty() {
		if sid != "" {
			if err := s.rdb.Del(ctx, sessionKey(sid)).Err(); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
		}
		http.SetCookie(w, s.cookie("", -1))
		return nil
	}

	if sid == "" {
		sid = uuid.New().String()
	}
	key := sessionKey(sid)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if id.UserID != 0 {
			pipe.HSet(ctx, key, "user_id", id.UserID)
		} else {
			pipe.HDel(ctx, key, "user_id")
		}
		if id.Username != "" {
			pipe.HSet(ctx, key, "username", id.Username)
		} else {
			pipe.HDel(ctx, key, "username")
		}
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	http.SetCookie(w, s.cookie(sid, int(s.ttl/time.Second)))
	return nil
}

func (s *RedisStore) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     RedisSessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}
