package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/fernet/fernet-go"
)

// ErrMissingSecretKey is returned when an encrypted token is configured without SECRET_KEY.
var ErrMissingSecretKey = errors.New("SECRET_KEY is required to decrypt BRAPI_TOKEN_ENCRYPTED")

// resolveProviderToken returns the market-data provider token. A plain BRAPI_TOKEN
// wins; otherwise BRAPI_TOKEN_ENCRYPTED is decrypted with the fernet SECRET_KEY.
// An empty token is valid: the provider serves a few symbols anonymously.
func resolveProviderToken() (string, error) {
	if plain := os.Getenv("BRAPI_TOKEN"); plain != "" {
		return plain, nil
	}

	encrypted := os.Getenv("BRAPI_TOKEN_ENCRYPTED")
	if encrypted == "" {
		return "", nil
	}

	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		return "", ErrMissingSecretKey
	}

	return DecryptToken(encrypted, secret)
}

// DecryptToken decrypts a fernet token with the given base64 key.
func DecryptToken(token, secret string) (string, error) {
	key, err := fernet.DecodeKey(secret)
	if err != nil {
		return "", fmt.Errorf("invalid SECRET_KEY: %w", err)
	}

	// A negative TTL disables the age check; the token is long-lived configuration.
	msg := fernet.VerifyAndDecrypt([]byte(token), -1, []*fernet.Key{key})
	if msg == nil {
		return "", errors.New("failed to decrypt provider token")
	}
	return string(msg), nil
}

// EncryptToken produces a fernet token for the given plaintext. Used by the
// CLI to prepare BRAPI_TOKEN_ENCRYPTED values.
func EncryptToken(plain, secret string) (string, error) {
	key, err := fernet.DecodeKey(secret)
	if err != nil {
		return "", fmt.Errorf("invalid SECRET_KEY: %w", err)
	}

	tok, err := fernet.EncryptAndSign([]byte(plain), key)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt token: %w", err)
	}
	return string(tok), nil
}
