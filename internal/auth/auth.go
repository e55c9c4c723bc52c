// Package auth resolves the optional bearer token sent to the todo API.
package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/idilsaglam/todosync/internal/store/jsonstore"
)

// EnvToken overrides the credentials file.
const EnvToken = "TODO_TOKEN"

const credFileName = "credentials.json"

type TokenInfo struct {
	Token     string     `json:"token"`
	Source    string     `json:"source"`     // "env" | "file"
	CreatedAt time.Time  `json:"created_at"` // when we saved to file
	ExpiresAt *time.Time `json:"expires_at"` // optional (JWT or server-provided)
}

// Expired reports whether the token has a known expiry in the past.
func (ti *TokenInfo) Expired(now time.Time) bool {
	return ti.ExpiresAt != nil && now.After(*ti.ExpiresAt)
}

// Dir is where credentials live: <user config dir>/todo.
func Dir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "todo"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".config", "todo"), nil
}

func credFilePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, credFileName), nil
}

// GetToken returns the active token, or nil when not logged in.
func GetToken() (*TokenInfo, error) {
	// 1) env override
	if env := stripBearer(os.Getenv(EnvToken)); env != "" {
		return &TokenInfo{Token: env, Source: "env"}, nil
	}

	// 2) file
	p, err := credFilePath()
	if err != nil {
		return nil, err
	}
	var ti TokenInfo
	found, err := jsonstore.Load(p, &ti)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	if !found {
		return nil, nil
	}
	ti.Token = stripBearer(ti.Token)
	ti.Source = "file"
	return &ti, nil
}

// SetToken stores token in the credentials file. A JWT's exp claim is
// used as the expiry when expires is nil.
func SetToken(token string, expires *time.Time) error {
	token = stripBearer(token)
	if token == "" {
		return fmt.Errorf("empty token")
	}
	if expires == nil {
		expires = jwtExpiry(token)
	}
	p, err := credFilePath()
	if err != nil {
		return err
	}
	ti := TokenInfo{
		Token:     token,
		Source:    "file",
		CreatedAt: time.Now(),
		ExpiresAt: expires,
	}
	// owner-only
	return jsonstore.Save(p, ti, 0o600)
}

// DeleteToken removes the credentials file.
func DeleteToken() error {
	p, err := credFilePath()
	if err != nil {
		return err
	}
	return jsonstore.Remove(p)
}

// Token returns the token string to send, or "" when none is usable.
func Token() (string, error) {
	ti, err := GetToken()
	if err != nil || ti == nil {
		return "", err
	}
	if ti.Expired(time.Now()) {
		return "", errors.New("stored token expired; run `todo auth login`")
	}
	return ti.Token, nil
}

// stripBearer drops a leading "Bearer" scheme. A bare scheme yields "".
func stripBearer(s string) string {
	s = strings.TrimSpace(s)
	scheme, rest, _ := strings.Cut(s, " ")
	if strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(rest)
	}
	return s
}

// JWTPayload decodes the payload segment of a JWT, if token looks like one.
func JWTPayload(token string) (string, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", false
	}
	dec, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return "", false
	}
	return string(dec), true
}

func jwtExpiry(token string) *time.Time {
	payload, ok := JWTPayload(token)
	if !ok {
		return nil
	}
	var claims struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal([]byte(payload), &claims); err != nil || claims.Exp == 0 {
		return nil
	}
	exp := time.Unix(claims.Exp, 0)
	return &exp
}
