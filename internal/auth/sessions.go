package auth

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager runs logins and keeps the resulting sessions.
type Manager struct {
	store   SessionStore
	authn   Authenticator
	delay   time.Duration
	ttl     time.Duration
	log     *zap.Logger
	metrics *Metrics
	now     func() time.Time

	mu       sync.Mutex
	inflight map[string]struct{}
}

type ManagerOpts struct {
	// Delay is the simulated login latency.
	Delay time.Duration
	// TTL bounds a session's life. Zero keeps sessions until logout.
	TTL     time.Duration
	Log     *zap.Logger
	Metrics *Metrics
}

func NewManager(store SessionStore, authn Authenticator, opts ManagerOpts) *Manager {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		store:    store,
		authn:    authn,
		delay:    opts.Delay,
		ttl:      opts.TTL,
		log:      log,
		metrics:  opts.Metrics,
		now:      time.Now,
		inflight: make(map[string]struct{}),
	}
}

func (m *Manager) Ping(ctx context.Context) error { return m.store.Ping(ctx) }

// Login authenticates c after the configured delay and opens a session. A
// second login for the same email while one is pending fails with
// ErrLoginInProgress.
func (m *Manager) Login(ctx context.Context, c Credentials) (Session, error) {
	email := normalizeEmail(c.Email)
	if email == "" || c.Password == "" {
		m.observe(resultInvalid)
		return Session{}, ErrInvalidCredentials
	}

	if !m.begin(email) {
		m.observe(resultInProgress)
		return Session{}, errors.Wrapf(ErrLoginInProgress, "%s", email)
	}
	defer m.end(email)

	if err := m.wait(ctx); err != nil {
		m.observe(resultCanceled)
		return Session{}, err
	}

	u, err := m.authn.Authenticate(ctx, Credentials{Email: email, Password: c.Password})
	if err != nil {
		if errors.Is(err, ErrAuthenticationFailed) {
			m.observe(resultFailed)
			return Session{}, err
		}
		m.observe(resultError)
		return Session{}, errors.Wrap(err, "authenticate")
	}

	sess := Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Email:     u.Email,
		CreatedAt: m.now().UTC(),
	}
	if err := m.store.Create(ctx, sess); err != nil {
		m.observe(resultError)
		return Session{}, errors.Wrap(err, "create session")
	}

	m.observe(resultSuccess)
	m.log.Info("login", zap.String("user_id", sess.UserID), zap.String("session_id", sess.ID))
	return sess, nil
}

// Logout ends the session. Ending an unknown session is not an error.
func (m *Manager) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := m.store.Delete(ctx, sessionID); err != nil {
		return errors.Wrap(err, "delete session")
	}
	return nil
}

func (m *Manager) Current(ctx context.Context, sessionID string) (Session, error) {
	if sessionID == "" {
		return Session{}, ErrNoSession
	}
	sess, ok, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return Session{}, errors.Wrap(err, "get session")
	}
	if !ok {
		return Session{}, ErrNoSession
	}
	if m.expired(sess) {
		if err := m.store.Delete(ctx, sess.ID); err != nil {
			m.log.Warn("delete expired session", zap.String("session_id", sess.ID), zap.Error(err))
		}
		return Session{}, ErrNoSession
	}
	return sess, nil
}

func (m *Manager) expired(s Session) bool {
	return m.ttl > 0 && !m.now().Before(s.CreatedAt.Add(m.ttl))
}

// Sweep deletes every session older than the TTL.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	if m.ttl <= 0 {
		return 0, nil
	}
	n, err := m.store.DeleteBefore(ctx, m.now().Add(-m.ttl))
	if err != nil {
		return 0, errors.Wrap(err, "sweep sessions")
	}
	return n, nil
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, every time.Duration) {
	if m.ttl <= 0 || every <= 0 {
		return
	}

	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := m.Sweep(ctx)
			if err != nil {
				m.log.Warn("session sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				m.log.Info("expired sessions removed", zap.Int("count", n))
			}
		}
	}
}

func (m *Manager) begin(email string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, busy := m.inflight[email]; busy {
		return false
	}
	m.inflight[email] = struct{}{}
	return true
}

func (m *Manager) end(email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inflight, email)
}

func (m *Manager) wait(ctx context.Context) error {
	if m.delay <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(m.delay)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) observe(result string) {
	if m.metrics != nil {
		m.metrics.Logins.WithLabelValues(result).Inc()
	}
}
