package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	MinSecretLength = 32
	tokenIssuer     = "docmap"
)

// Claims is the session token payload. The subject is the session id.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Store is a thread-safe in-memory session registry with idle eviction.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewStore(secret string, ttl time.Duration) (*Store, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("session secret must be at least %d characters", MinSecretLength)
	}
	return &Store{
		sessions: make(map[string]*Session),
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// Init starts a session and returns it with its bearer token.
func (st *Store) Init(email string) (*Session, string, error) {
	now := st.now()
	s := newSession(uuid.NewString(), email, now)

	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   s.ID,
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(st.secret)
	if err != nil {
		return nil, "", fmt.Errorf("sign session token: %w", err)
	}

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s, token, nil
}

// Authenticate resolves a bearer token to its live session. Tokens carry no
// expiry of their own: a token is valid while its session is, and a session
// ends after ttl without requests or on teardown.
func (st *Store) Authenticate(token string) (*Session, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return st.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(st.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}

	now := st.now()
	st.mu.Lock()
	s := st.sessions[claims.Subject]
	if s != nil && s.idleSince(now) > st.ttl {
		delete(st.sessions, claims.Subject)
		st.mu.Unlock()
		s.close()
		return nil, ErrNotFound
	}
	st.mu.Unlock()
	if s == nil {
		return nil, ErrNotFound
	}
	s.touch(now)
	return s, nil
}

func (st *Store) Get(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sessions[id]
}

// Teardown ends a session. Later results for it are discarded.
func (st *Store) Teardown(id string) error {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.close()
	return nil
}

// Cleanup tears down sessions idle for longer than the TTL and returns how
// many were removed.
func (st *Store) Cleanup() int {
	now := st.now()
	st.mu.Lock()
	var expired []*Session
	for id, s := range st.sessions {
		if s.idleSince(now) > st.ttl {
			expired = append(expired, s)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, s := range expired {
		s.close()
	}
	return len(expired)
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

