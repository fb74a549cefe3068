package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"

	"anistream/internal/gateway"
	"anistream/internal/store"
	"anistream/pkg/models"
	"anistream/pkg/utils"
)

// State is the session lifecycle. Both restore paths (local admin token,
// gateway session) feed transitions into one arbiter instead of racing to
// mutate shared flags.
type State int

const (
	StateUnknown State = iota
	StateCheckingLocal
	StateCheckingRemote
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateCheckingLocal:
		return "checking_local"
	case StateCheckingRemote:
		return "checking_remote"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the current session state.
type Snapshot struct {
	State   State
	User    *models.User
	Loading bool
}

// Gateway is the slice of the gateway client the manager needs.
type Gateway interface {
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	Session(ctx context.Context, accessToken string) (*models.User, error)
	SignOut(ctx context.Context, accessToken string) error
	UserFromToken(raw string) (*models.User, error)
	SubscribeAuthEvents(handler func(gateway.AuthEvent)) (func(), error)
}

type Manager struct {
	gw    Gateway
	store *store.Store
	admin utils.AdminConfig

	mu           sync.Mutex
	state        State
	user         *models.User
	loading      bool
	gwToken      string
	subs         map[int]func(Snapshot)
	nextSub      int
	stopRealtime func()
}

func NewManager(gw Gateway, st *store.Store, admin utils.AdminConfig) *Manager {
	return &Manager{
		gw:    gw,
		store: st,
		admin: admin,
		state: StateUnknown,
		subs:  make(map[int]func(Snapshot)),
	}
}

// Subscribe registers a state-change listener and returns its id.
// Listeners are invoked in registration order, under the arbiter lock, so
// every subscriber observes the same transition sequence.
func (m *Manager) Subscribe(fn func(Snapshot)) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSub++
	m.subs[m.nextSub] = fn
	return m.nextSub
}

func (m *Manager) Unsubscribe(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs, id)
}

func (m *Manager) Current() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{State: m.state, User: m.user, Loading: m.loading}
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateAuthenticated
}

// Restore runs once at startup: the local admin-token check first (no
// network), then the gateway session check, then it registers the
// long-lived auth-event subscription that keeps state in sync with
// gateway-driven changes (including external logout).
func (m *Manager) Restore(ctx context.Context) {
	m.transition(StateCheckingLocal, nil)

	if m.restoreLocal(ctx) {
		m.transition(StateAuthenticated, &models.User{ID: m.admin.Username, Role: RoleAdmin})
	} else {
		m.transition(StateCheckingRemote, nil)
	}

	if user, token := m.restoreRemote(ctx); user != nil {
		m.mu.Lock()
		m.gwToken = token
		m.mu.Unlock()
		// the gateway user overlays whatever the local path decided
		m.transition(StateAuthenticated, user)
	} else if !m.IsAuthenticated() {
		m.transition(StateUnauthenticated, nil)
	}

	stop, err := m.gw.SubscribeAuthEvents(m.HandleAuthEvent)
	switch {
	case err == nil:
		m.mu.Lock()
		m.stopRealtime = stop
		m.mu.Unlock()
	case errors.Is(err, gateway.ErrRealtimeDisabled):
		// polling-free setups run without the listener
	default:
		log.Printf("[session] auth event subscription failed: %v", err)
	}
}

// Dispose tears down the realtime subscription.
func (m *Manager) Dispose() {
	m.mu.Lock()
	stop := m.stopRealtime
	m.stopRealtime = nil
	m.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// restoreLocal reports whether a usable admin token is in the store.
// Validity is presence of a non-empty token with a parseable issue
// timestamp; the token itself is never re-derived.
func (m *Manager) restoreLocal(ctx context.Context) bool {
	token, err := m.store.Get(ctx, store.KeyAdminToken)
	if err != nil {
		log.Printf("[session] local token read failed: %v", err)
		return false
	}
	if token == "" {
		return false
	}

	issued, err := m.store.Get(ctx, store.KeyAdminTokenTime)
	if err != nil {
		log.Printf("[session] local token time read failed: %v", err)
		return false
	}
	if _, err := strconv.ParseInt(issued, 10, 64); err != nil {
		log.Printf("[session] discarding admin token with bad issue time %q", issued)
		return false
	}
	return true
}

// restoreRemote validates any stored gateway session: signature and expiry
// locally via the token claims, then the gateway itself when reachable.
func (m *Manager) restoreRemote(ctx context.Context) (*models.User, string) {
	raw, err := m.store.Get(ctx, store.KeyGatewaySession)
	if err != nil {
		log.Printf("[session] stored session read failed: %v", err)
		return nil, ""
	}
	if raw == "" {
		return nil, ""
	}

	sess, err := decodeSession(raw)
	if err != nil {
		log.Printf("[session] discarding unreadable stored session: %v", err)
		return nil, ""
	}

	user, err := m.gw.UserFromToken(sess.AccessToken)
	if err != nil {
		log.Printf("[session] stored session rejected: %v", err)
		return nil, ""
	}

	remote, err := m.gw.Session(ctx, sess.AccessToken)
	if err != nil {
		// gateway unreachable: trust the verified claims for now
		log.Printf("[session] session confirm failed, using token claims: %v", err)
		return user, sess.AccessToken
	}
	if remote == nil {
		return nil, ""
	}
	return remote, sess.AccessToken
}

// HandleAuthEvent is the single entry point for auth-state changes, both
// gateway-pushed and locally generated by a successful sign-in.
func (m *Manager) HandleAuthEvent(ev gateway.AuthEvent) {
	switch ev.Event {
	case "SIGNED_IN", "TOKEN_REFRESHED":
		if ev.User != nil {
			m.transition(StateAuthenticated, ev.User)
		}
	case "SIGNED_OUT":
		// an external gateway logout does not revoke a local admin session
		if m.restoreLocal(context.Background()) {
			m.transition(StateAuthenticated, &models.User{ID: m.admin.Username, Role: RoleAdmin})
		} else {
			m.transition(StateUnauthenticated, nil)
		}
	}
}

// LoginWithCredentials delegates to the gateway's password sign-in. State
// is updated through the same auth-event path the realtime listener uses.
// The underlying error is returned so composing callers can react.
func (m *Manager) LoginWithCredentials(ctx context.Context, email, password string) error {
	m.setLoading(true)
	defer m.setLoading(false)

	sess, err := m.gw.SignIn(ctx, email, password)
	if err != nil {
		log.Printf("[session] credential login failed: %v", err)
		return fmt.Errorf("login: %w", err)
	}

	m.mu.Lock()
	m.gwToken = sess.AccessToken
	m.mu.Unlock()
	m.saveGatewaySession(ctx, sess)

	user := sess.User
	m.HandleAuthEvent(gateway.AuthEvent{Event: "SIGNED_IN", User: &user})
	return nil
}

// Logout clears the local admin token unconditionally, signs the gateway
// session out if one exists, and resets state regardless of which path
// established it.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.store.Delete(ctx, store.KeyAdminToken); err != nil {
		log.Printf("[session] clear admin token failed: %v", err)
	}
	if err := m.store.Delete(ctx, store.KeyAdminTokenTime); err != nil {
		log.Printf("[session] clear admin token time failed: %v", err)
	}

	m.mu.Lock()
	token := m.gwToken
	m.gwToken = ""
	m.mu.Unlock()

	if token != "" {
		if err := m.gw.SignOut(ctx, token); err != nil {
			log.Printf("[session] gateway sign-out failed: %v", err)
		}
	}
	if err := m.store.Delete(ctx, store.KeyGatewaySession); err != nil {
		log.Printf("[session] clear stored session failed: %v", err)
	}

	m.transition(StateUnauthenticated, nil)
}

// transition is the arbiter: the only place session state changes.
func (m *Manager) transition(st State, user *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = st
	m.user = user
	m.notifyLocked()
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = v
	m.notifyLocked()
}

func (m *Manager) notifyLocked() {
	snap := Snapshot{State: m.state, User: m.user, Loading: m.loading}
	for id := 1; id <= m.nextSub; id++ {
		if fn, ok := m.subs[id]; ok {
			fn(snap)
		}
	}
}
