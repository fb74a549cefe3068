package session

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"anistream/internal/store"
	"anistream/pkg/models"
)

const RoleAdmin = "admin"

var ErrInvalidCredentials = errors.New("invalid admin credentials")

// LoginWithAdminCredentials checks the supplied pair against the
// configured values and, on match, mints a local session token and
// persists it. A mismatch changes nothing.
func (m *Manager) LoginWithAdminCredentials(ctx context.Context, username, password string) error {
	if !m.adminMatch(username, password) {
		return ErrInvalidCredentials
	}

	issued := time.Now()
	token := deriveAdminToken(username, password, issued)

	// store failures degrade to a session-only login
	if err := m.store.Set(ctx, store.KeyAdminToken, token); err != nil {
		log.Printf("[session] persist admin token failed: %v", err)
	} else if err := m.store.Set(ctx, store.KeyAdminTokenTime, strconv.FormatInt(issued.UnixMilli(), 10)); err != nil {
		log.Printf("[session] persist admin token time failed: %v", err)
	}

	m.transition(StateAuthenticated, &models.User{ID: username, Role: RoleAdmin})
	return nil
}

// adminMatch compares both parts in constant time. The configured
// password may be a bcrypt hash (recognized by its $2 prefix) instead of
// plaintext.
func (m *Manager) adminMatch(username, password string) bool {
	if m.admin.Username == "" || m.admin.Password == "" {
		return false
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(m.admin.Username)) == 1

	var passOK bool
	if strings.HasPrefix(m.admin.Password, "$2") {
		passOK = bcrypt.CompareHashAndPassword([]byte(m.admin.Password), []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(m.admin.Password)) == 1
	}

	return userOK && passOK
}

// deriveAdminToken keys an HMAC-SHA256 of username+issue-millis with the
// supplied password. Deterministic for a given triple; the timestamp makes
// each issued token effectively unique.
func deriveAdminToken(username, password string, issued time.Time) string {
	mac := hmac.New(sha256.New, []byte(password))
	mac.Write([]byte(username + strconv.FormatInt(issued.UnixMilli(), 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

func (m *Manager) saveGatewaySession(ctx context.Context, sess *models.Session) {
	b, err := json.Marshal(sess)
	if err != nil {
		log.Printf("[session] encode session failed: %v", err)
		return
	}
	if err := m.store.Set(ctx, store.KeyGatewaySession, string(b)); err != nil {
		log.Printf("[session] persist session failed: %v", err)
	}
}

func decodeSession(raw string) (*models.Session, error) {
	var sess models.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, err
	}
	if sess.AccessToken == "" {
		return nil, errors.New("stored session has no access token")
	}
	return &sess, nil
}
