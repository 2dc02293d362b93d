package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kasamhealthcare/clinic-web/internal/backend"
	"github.com/kasamhealthcare/clinic-web/pkg/logging"
)

// Errors returned by Manager operations.
var (
	ErrNoSession = errors.New("session: no session cookie")
	ErrBadCookie = errors.New("session: invalid session cookie")
)

// Config carries the knobs the Manager needs from the application config.
type Config struct {
	Secret         string
	CookieName     string
	TTL            time.Duration
	Secure         bool
	HealthTimeout  time.Duration
	ProfileTimeout time.Duration
}

// Manager issues, reads, and clears sessions. It is the only component that
// touches the session cookie or the session store.
type Manager struct {
	store          Store
	api            *backend.Client
	secret         []byte
	cookieName     string
	ttl            time.Duration
	secure         bool
	healthTimeout  time.Duration
	profileTimeout time.Duration
	logger         *logging.Logger
}

// NewManager wires a session manager.
func NewManager(store Store, api *backend.Client, cfg Config, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Default()
	}
	m := &Manager{
		store:          store,
		api:            api,
		secret:         []byte(cfg.Secret),
		cookieName:     cfg.CookieName,
		ttl:            cfg.TTL,
		secure:         cfg.Secure,
		healthTimeout:  cfg.HealthTimeout,
		profileTimeout: cfg.ProfileTimeout,
		logger:         logger,
	}
	if m.cookieName == "" {
		m.cookieName = "clinic_session"
	}
	if m.ttl <= 0 {
		m.ttl = 7 * 24 * time.Hour
	}
	if m.healthTimeout <= 0 {
		m.healthTimeout = 3 * time.Second
	}
	if m.profileTimeout <= 0 {
		m.profileTimeout = 5 * time.Second
	}
	return m
}

// Issue creates a session record for a freshly authenticated user and sets
// the signed cookie on the response.
func (m *Manager) Issue(ctx context.Context, w http.ResponseWriter, token string, user *backend.User) (*Record, error) {
	rec := &Record{
		ID:        uuid.New().String(),
		Token:     token,
		CreatedAt: time.Now(),
	}
	if user != nil {
		if err := rec.SetUser(user); err != nil {
			return nil, err
		}
	}
	if err := m.store.Save(ctx, rec, m.ttl); err != nil {
		return nil, err
	}
	signed, err := m.signCookie(rec.ID)
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return rec, nil
}

// Read loads the session record referenced by the request's cookie.
func (m *Manager) Read(ctx context.Context, r *http.Request) (*Record, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil, ErrNoSession
	}
	id, err := m.parseCookie(cookie.Value)
	if err != nil {
		return nil, ErrBadCookie
	}
	return m.store.Get(ctx, id)
}

// Save persists an updated record, refreshing its TTL.
func (m *Manager) Save(ctx context.Context, rec *Record) error {
	return m.store.Save(ctx, rec, m.ttl)
}

// Clear deletes the session record and expires the cookie.
func (m *Manager) Clear(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(m.cookieName); err == nil {
		if id, err := m.parseCookie(cookie.Value); err == nil {
			if err := m.store.Delete(ctx, id); err != nil {
				m.logger.Warn("session: delete record failed", "error", err)
			}
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Resume validates a stored session against the backend on first contact. A
// reachable backend that rejects the token ends the session. An unreachable
// or slow backend keeps the session alive on the stored user mirror so a
// flaky upstream never logs patients out.
func (m *Manager) Resume(ctx context.Context, rec *Record) (*backend.User, error) {
	if rec.Token == "" {
		return nil, backend.ErrSessionExpired
	}

	healthCtx, cancel := context.WithTimeout(ctx, m.healthTimeout)
	healthy := m.api.Health(healthCtx) == nil
	cancel()
	if !healthy {
		m.logger.Warn("session: backend health check failed, using stored user")
		return rec.DecodeUser()
	}

	profileCtx, cancel := context.WithTimeout(ctx, m.profileTimeout)
	user, err := m.api.Me(profileCtx, rec.Token)
	cancel()
	if err == nil {
		if serr := rec.SetUser(user); serr != nil {
			return nil, serr
		}
		if serr := m.Save(ctx, rec); serr != nil {
			m.logger.Warn("session: refresh user mirror failed", "error", serr)
		}
		return user, nil
	}
	if backend.IsSessionExpired(err) || backend.IsAuthFailure(err) {
		return nil, backend.ErrSessionExpired
	}
	// Timeout or network trouble after a passing health check. Fall back to
	// the mirror rather than bouncing the patient to login.
	m.logger.Warn("session: profile fetch failed, using stored user", "error", err)
	return rec.DecodeUser()
}

// DismissBanner records a banner dismissal. Session-tier dismissals live on
// the record and vanish with it. Permanent dismissals are per-user flags that
// survive re-login.
func (m *Manager) DismissBanner(ctx context.Context, rec *Record, key string, permanent bool) error {
	if permanent {
		user, err := rec.DecodeUser()
		if err != nil {
			return err
		}
		return m.store.SetFlag(ctx, user.ID, key)
	}
	if rec.Dismissed == nil {
		rec.Dismissed = make(map[string]bool)
	}
	rec.Dismissed[key] = true
	return m.Save(ctx, rec)
}

// BannerDismissed reports whether a banner key was dismissed in either tier.
func (m *Manager) BannerDismissed(ctx context.Context, rec *Record, key string) bool {
	if rec.Dismissed[key] {
		return true
	}
	user, err := rec.DecodeUser()
	if err != nil {
		return false
	}
	ok, err := m.store.HasFlag(ctx, user.ID, key)
	if err != nil {
		m.logger.Warn("session: read dismissal flag failed", "error", err)
		return false
	}
	return ok
}

func (m *Manager) signCookie(id string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("session: sign cookie: %w", err)
	}
	return signed, nil
}

func (m *Manager) parseCookie(value string) (string, error) {
	token, err := jwt.ParseWithClaims(value, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("session: unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrBadCookie
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrBadCookie
	}
	return claims.Subject, nil
}
