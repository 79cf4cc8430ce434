// Package auth implements the session manager: email/password and
// magic-link sign-in, session issuance and refresh, lockout, and
// session-change notifications.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anon381/Movie-Search-App/internal/config"
	"github.com/anon381/Movie-Search-App/internal/errs"
	"github.com/anon381/Movie-Search-App/internal/mail"
	"github.com/anon381/Movie-Search-App/internal/models"
	"github.com/anon381/Movie-Search-App/internal/repository"
)

// UserStore is the account persistence the manager depends on.
type UserStore interface {
	Create(u *repository.User) error
	GetByEmail(email string) (*repository.User, error)
	GetByID(id string) (*repository.User, error)
	Confirm(id string) error
	UpdatePassword(id string, hash, salt []byte) error
}

// SessionStore persists refresh-token sessions.
type SessionStore interface {
	Create(s *repository.StoredSession) error
	GetByRefreshToken(token string) (*repository.StoredSession, error)
	Rotate(id, newToken string, expiresAt time.Time) error
	Delete(id string) error
}

// TokenStore persists one-time tokens (magic link, confirm, reset).
type TokenStore interface {
	Create(token, userID, kind string, expiresAt time.Time) error
	Consume(token, kind string) (string, error)
}

// Manager tracks authentication state, issues sign-in/out, and detects
// session expiry. It publishes session-change events to subscribers.
type Manager struct {
	users    UserStore
	sessions SessionStore
	tokens   TokenStore
	mailer   mail.Mailer
	lockout  Lockout
	cfg      config.AuthConfig

	mu    sync.Mutex
	state State
	subs  map[int]chan Event
	next  int

	// In-flight flags tracked per operation family so the UI can
	// disable only the relevant control.
	magicPending    bool
	passwordPending bool
}

// NewManager constructs the session manager.
func NewManager(users UserStore, sessions SessionStore, tokens TokenStore, mailer mail.Mailer, lockout Lockout, cfg config.AuthConfig) *Manager {
	return &Manager{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		mailer:   mailer,
		lockout:  lockout,
		cfg:      cfg,
		subs:     make(map[int]chan Event),
	}
}

// State returns the current snapshot.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns the active session, or nil when anonymous.
func (m *Manager) Session() *models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Session
}

// InFlight reports the per-operation pending flags (magic link and
// password flows tracked independently).
func (m *Manager) InFlight() (magicLink, password bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.magicPending, m.passwordPending
}

// Subscribe registers for session-change events. The returned func
// unsubscribes; call it on teardown.
func (m *Manager) Subscribe() (<-chan Event, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.next
	m.next++
	ch := make(chan Event, 4)
	m.subs[id] = ch
	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Manager) publishLocked(ev Event) {
	for _, ch := range m.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// ---- Sign-up / confirmation ----

// SignUpWithPassword registers a new account. An email that is already
// registered returns ErrAlreadyExists so the caller can switch to
// sign-in rather than showing a generic error. Success returns
// ErrConfirmationRequired: no session exists until the email is
// confirmed.
func (m *Manager) SignUpWithPassword(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return fmt.Errorf("email and password are required")
	}

	m.setPasswordPending(true)
	defer m.setPasswordPending(false)

	if _, err := m.users.GetByEmail(email); err == nil {
		return errs.ErrAlreadyExists
	} else if !errors.Is(err, errs.ErrNotFound) {
		return err
	}

	salt, err := randBytes(16)
	if err != nil {
		return err
	}
	u := &repository.User{
		ID:       uuid.NewString(),
		Email:    email,
		PassHash: hashPassword([]byte(password), salt),
		PassSalt: salt,
	}
	if err := m.users.Create(u); err != nil {
		return err
	}

	if err := m.sendToken(u, repository.TokenConfirm, "Confirm your account"); err != nil {
		slog.Error("failed to send confirmation", "email", email, "error", err)
	}

	m.mu.Lock()
	m.state = State{Phase: PhaseAwaitingConfirmation, Email: email}
	m.mu.Unlock()
	return errs.ErrConfirmationRequired
}

// ConfirmSignUp consumes an emailed confirmation token and signs the
// user in.
func (m *Manager) ConfirmSignUp(ctx context.Context, token string) (*models.Session, error) {
	userID, err := m.tokens.Consume(token, repository.TokenConfirm)
	if err != nil {
		return nil, err
	}
	if err := m.users.Confirm(userID); err != nil {
		return nil, err
	}
	u, err := m.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	return m.establishSession(u)
}

// ResendConfirmation issues a fresh confirmation token for an
// unconfirmed account.
func (m *Manager) ResendConfirmation(ctx context.Context, email string) error {
	u, err := m.users.GetByEmail(normalizeEmail(email))
	if err != nil {
		return err
	}
	if u.Confirmed {
		return nil
	}
	return m.sendToken(u, repository.TokenConfirm, "Confirm your account")
}

// ---- Password sign-in ----

// SignInWithPassword authenticates with email and password, enforcing
// the failed-attempt lockout window.
func (m *Manager) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	email = normalizeEmail(email)

	m.setPasswordPending(true)
	defer m.setPasswordPending(false)

	m.mu.Lock()
	m.state.Phase = PhaseAuthenticating
	m.state.Email = email
	m.mu.Unlock()

	allowed, retryAfter, err := m.lockout.Allow(ctx, email)
	if err != nil {
		return nil, err
	}
	if !allowed {
		m.enterLocked(retryAfter)
		return nil, errs.ErrRateLimited
	}

	u, err := m.users.GetByEmail(email)
	if err != nil || !verifyPassword([]byte(password), u.PassSalt, u.PassHash) {
		if blocked, after, ferr := m.lockout.Failure(ctx, email); ferr == nil && blocked {
			m.enterLocked(after)
			return nil, errs.ErrRateLimited
		}
		m.resetToAnonymous()
		// Hide account existence on wrong password.
		return nil, errs.ErrUnauthorized
	}
	if !u.Confirmed {
		m.mu.Lock()
		m.state = State{Phase: PhaseAwaitingConfirmation, Email: email}
		m.mu.Unlock()
		return nil, errs.ErrConfirmationRequired
	}

	_ = m.lockout.Success(ctx, email)
	return m.establishSession(u)
}

// ---- Magic link ----

// SignInWithMagicLink emails a one-time sign-in link. Unknown addresses
// get an account created on the fly, as with OTP-style flows.
func (m *Manager) SignInWithMagicLink(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}

	m.setMagicPending(true)
	defer m.setMagicPending(false)

	u, err := m.users.GetByEmail(email)
	if errors.Is(err, errs.ErrNotFound) {
		u = &repository.User{ID: uuid.NewString(), Email: email}
		if err := m.users.Create(u); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	return m.sendToken(u, repository.TokenMagicLink, "Your sign-in link")
}

// ConsumeMagicLink exchanges an emailed token for a session. A magic
// link proves control of the mailbox, so it also confirms the account.
func (m *Manager) ConsumeMagicLink(ctx context.Context, token string) (*models.Session, error) {
	userID, err := m.tokens.Consume(token, repository.TokenMagicLink)
	if err != nil {
		return nil, err
	}
	if err := m.users.Confirm(userID); err != nil {
		return nil, err
	}
	u, err := m.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	return m.establishSession(u)
}

// ---- Password reset ----

// RequestPasswordReset emails a reset token. The response does not
// reveal whether the address is registered.
func (m *Manager) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := m.users.GetByEmail(normalizeEmail(email))
	if errors.Is(err, errs.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return m.sendToken(u, repository.TokenReset, "Reset your password")
}

// ResetPassword consumes a reset token and stores a new credential.
func (m *Manager) ResetPassword(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("password is required")
	}
	userID, err := m.tokens.Consume(token, repository.TokenReset)
	if err != nil {
		return err
	}
	salt, err := randBytes(16)
	if err != nil {
		return err
	}
	return m.users.UpdatePassword(userID, hashPassword([]byte(newPassword), salt), salt)
}

// ---- Session lifecycle ----

// SignOut destroys the active session and clears the expired flag.
func (m *Manager) SignOut(ctx context.Context) error {
	m.mu.Lock()
	sess := m.state.Session
	m.state = State{Phase: PhaseAnonymous}
	m.publishLocked(Event{Kind: EventSignedOut})
	m.mu.Unlock()

	if sess != nil {
		if err := m.sessions.Delete(sess.ID); err != nil {
			return err
		}
	}
	return nil
}

// Refresh exchanges a refresh token for a rotated session and a fresh
// access token. Clears the session-expired flag on success.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	stored, err := m.sessions.GetByRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, errs.ErrSessionExpired) {
			m.markExpired()
		}
		return nil, err
	}
	u, err := m.users.GetByID(stored.UserID)
	if err != nil {
		return nil, err
	}

	newToken := uuid.NewString()
	expires := time.Now().Add(m.cfg.RefreshTTL)
	if err := m.sessions.Rotate(stored.ID, newToken, expires); err != nil {
		return nil, err
	}
	access, accessExp, err := issueAccessToken([]byte(m.cfg.JWTKey), u.ID, stored.ID, m.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}

	sess := &models.Session{
		ID:           stored.ID,
		UserID:       u.ID,
		Email:        u.Email,
		AccessToken:  access,
		RefreshToken: newToken,
		ExpiresAt:    accessExp,
	}

	m.mu.Lock()
	m.state = State{Phase: PhaseAuthenticated, Email: u.Email, Session: sess}
	m.publishLocked(Event{Kind: EventTokenRefreshed, Session: sess})
	m.mu.Unlock()
	return sess, nil
}

// Revalidate refreshes the active session best-effort. Intended for
// app-became-visible / connectivity-restored triggers; failures are
// ignored.
func (m *Manager) Revalidate(ctx context.Context) {
	m.mu.Lock()
	sess := m.state.Session
	m.mu.Unlock()
	if sess == nil {
		return
	}
	if _, err := m.Refresh(ctx, sess.RefreshToken); err != nil {
		slog.Debug("revalidate failed", "error", err)
	}
}

// VerifyAccess validates a bearer token and returns the user id.
func (m *Manager) VerifyAccess(tokenString string) (string, error) {
	userID, _, err := parseAccessToken([]byte(m.cfg.JWTKey), tokenString)
	return userID, err
}

// Authed runs fn and inspects its failure for expired-session
// signatures, setting the session-expired flag exactly once per
// occurrence regardless of which operation detected it.
func (m *Manager) Authed(ctx context.Context, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	if err != nil && errors.Is(err, errs.ErrSessionExpired) {
		m.markExpired()
	}
	return err
}

// ---- internals ----

func (m *Manager) establishSession(u *repository.User) (*models.Session, error) {
	sessionID := uuid.NewString()
	refresh := uuid.NewString()
	stored := &repository.StoredSession{
		ID:           sessionID,
		UserID:       u.ID,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(m.cfg.RefreshTTL),
	}
	if err := m.sessions.Create(stored); err != nil {
		return nil, err
	}
	access, accessExp, err := issueAccessToken([]byte(m.cfg.JWTKey), u.ID, sessionID, m.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	sess := &models.Session{
		ID:           sessionID,
		UserID:       u.ID,
		Email:        u.Email,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    accessExp,
	}

	m.mu.Lock()
	m.state = State{Phase: PhaseAuthenticated, Email: u.Email, Session: sess}
	m.publishLocked(Event{Kind: EventSignedIn, Session: sess})
	m.mu.Unlock()
	return sess, nil
}

func (m *Manager) sendToken(u *repository.User, kind, subject string) error {
	token := uuid.NewString()
	if err := m.tokens.Create(token, u.ID, kind, time.Now().Add(m.cfg.TokenTTL)); err != nil {
		return err
	}
	return m.mailer.Send(u.Email, subject, token)
}

// markExpired sets the session-expired flag once; refresh or sign-out
// clears it.
func (m *Manager) markExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.SessionExpired {
		return
	}
	m.state.SessionExpired = true
	m.publishLocked(Event{Kind: EventExpired})
}

func (m *Manager) enterLocked(retryAfter time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Phase = PhaseLocked
	m.state.Session = nil
	m.state.LockedUntil = time.Now().Add(retryAfter)
}

func (m *Manager) resetToAnonymous() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Phase == PhaseAuthenticating {
		m.state.Phase = PhaseAnonymous
	}
}

func (m *Manager) setMagicPending(v bool) {
	m.mu.Lock()
	m.magicPending = v
	m.mu.Unlock()
}

func (m *Manager) setPasswordPending(v bool) {
	m.mu.Lock()
	m.passwordPending = v
	m.mu.Unlock()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
