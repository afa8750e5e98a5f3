package security

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/scrypt"

	"github.com/example/panbox/internal/config"
)

const serviceTokenSalt = "panbox-service|"

// ResolveServiceToken returns the IPC token shared by the bridge and its
// clients. A token compiled into the binary wins, then an explicitly
// configured one, and finally a value derived from secret.
func ResolveServiceToken(configured, secret string) string {
	if compiled := strings.TrimSpace(config.CompiledToken); compiled != "" {
		return compiled
	}

	if token := strings.TrimSpace(configured); token != "" {
		return token
	}

	return DeriveServiceToken(secret)
}

// DeriveServiceToken stretches the provided secret into a deterministic token.
func DeriveServiceToken(secret string) string {
	const (
		keyLength = 32
		n         = 1 << 15
		r         = 8
		p         = 1
	)

	secret = strings.TrimSpace(secret)
	if secret == "" {
		return ""
	}
	key, err := scrypt.Key([]byte(secret), []byte(serviceTokenSalt), n, r, p, keyLength)
	if err != nil {
		return ""
	}
	return hex.EncodeToString(key)
}
