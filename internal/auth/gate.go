// Package auth holds the single shared administrative credential check.
package auth

import (
	"crypto/subtle"
	"fmt"

	"surya-backend/internal/config"
	"surya-backend/internal/utils"
)

// Gate compares request credentials against the configured admin pair.
// It keeps no state between calls.
type Gate struct {
	user     string
	passHash string
}

// NewGate builds a Gate from cfg. ADMIN_PASS_HASH wins over ADMIN_PASS;
// a plaintext password is hashed once here and then discarded.
// A gate without a username or password rejects every request.
func NewGate(cfg *config.Config) (*Gate, error) {
	g := &Gate{user: cfg.AdminUser, passHash: cfg.AdminPassHash}
	if g.passHash == "" && cfg.AdminPass != "" {
		hash, err := utils.HashPassword(cfg.AdminPass)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		g.passHash = hash
	}
	return g, nil
}

// Configured reports whether any credentials can ever pass.
func (g *Gate) Configured() bool {
	return g.user != "" && g.passHash != ""
}

// Check reports whether username and password match the admin pair.
func (g *Gate) Check(username, password string) bool {
	if !g.Configured() {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.user)) == 1
	passOK := utils.CheckPassword(password, g.passHash)
	return userOK && passOK
}
