// Package auth verifies bearer credentials and resolves the principal email.
package auth

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/nextchamp/nextchamp/internal/platform/errors"
)

// Verifier turns a bearer credential into a verified principal email.
// Operations gated on a verified principal call this before touching state.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// verifierEnv holds raw env values before post-parse validation.
type verifierEnv struct {
	Issuer    string `env:"NEXTCHAMP_AUTH_ISSUER"`
	Audience  string `env:"NEXTCHAMP_AUTH_AUDIENCE"`
	PublicKey string `env:"NEXTCHAMP_AUTH_PUBLIC_KEY"`
}

// Config defines how identity tokens are verified.
type Config struct {
	Issuer   string
	Audience string
	Key      ed25519.PublicKey
	Now      func() time.Time
}

// tokenClaims is the internal claims type used for JWT parsing.
type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// LoadConfigFromEnv reads identity verification configuration.
func LoadConfigFromEnv(now func() time.Time) (Config, error) {
	var raw verifierEnv
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("parse auth env: %w", err)
	}
	issuer := strings.TrimSpace(raw.Issuer)
	audience := strings.TrimSpace(raw.Audience)
	publicKey := strings.TrimSpace(raw.PublicKey)
	if issuer == "" {
		return Config{}, fmt.Errorf("NEXTCHAMP_AUTH_ISSUER is required")
	}
	if audience == "" {
		return Config{}, fmt.Errorf("NEXTCHAMP_AUTH_AUDIENCE is required")
	}
	if publicKey == "" {
		return Config{}, fmt.Errorf("NEXTCHAMP_AUTH_PUBLIC_KEY is required")
	}
	keyBytes, err := decodeBase64(publicKey)
	if err != nil {
		return Config{}, fmt.Errorf("decode auth public key: %w", err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return Config{}, fmt.Errorf("auth public key must be %d bytes", ed25519.PublicKeySize)
	}
	if now == nil {
		now = time.Now
	}
	return Config{
		Issuer:   issuer,
		Audience: audience,
		Key:      ed25519.PublicKey(keyBytes),
		Now:      now,
	}, nil
}

// TokenVerifier validates ed25519-signed identity tokens.
type TokenVerifier struct {
	cfg Config
}

// NewTokenVerifier creates a TokenVerifier for the provided configuration.
func NewTokenVerifier(cfg Config) (*TokenVerifier, error) {
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.Key) != ed25519.PublicKeySize {
		return nil, errors.New("token verifier is not configured")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &TokenVerifier{cfg: cfg}, nil
}

// Verify validates the token signature and claims and returns the principal email.
func (v *TokenVerifier) Verify(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", apperrors.New(apperrors.CodeAuthTokenMissing, "identity token is required")
	}

	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(token *jwt.Token) (any, error) {
		return v.cfg.Key, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", mapJWTError(err)
	}

	if parsed.Issuer == "" || parsed.Issuer != v.cfg.Issuer {
		return "", apperrors.New(apperrors.CodeAuthTokenInvalid, "identity token issuer mismatch")
	}
	if !audienceContains(parsed.Audience, v.cfg.Audience) {
		return "", apperrors.New(apperrors.CodeAuthTokenInvalid, "identity token audience mismatch")
	}
	if parsed.ExpiresAt == nil {
		return "", apperrors.New(apperrors.CodeAuthTokenInvalid, "identity token exp is required")
	}

	now := v.cfg.Now().UTC()
	if !parsed.ExpiresAt.Time.UTC().After(now) {
		return "", apperrors.New(apperrors.CodeAuthTokenInvalid, "identity token is expired")
	}
	if parsed.NotBefore != nil && now.Before(parsed.NotBefore.Time.UTC()) {
		return "", apperrors.New(apperrors.CodeAuthTokenInvalid, "identity token not active yet")
	}

	email := strings.TrimSpace(parsed.Email)
	if email == "" {
		email = strings.TrimSpace(parsed.Subject)
	}
	if email == "" {
		return "", apperrors.New(apperrors.CodeAuthTokenInvalid, "identity token carries no email")
	}
	return email, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrEd25519Verification) {
		return apperrors.New(apperrors.CodeAuthTokenInvalid, "identity token signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeAuthTokenInvalid, "identity token alg is invalid")
	}
	return apperrors.Wrap(apperrors.CodeAuthTokenInvalid, "identity token is malformed", err)
}

func audienceContains(audience jwt.ClaimStrings, expected string) bool {
	for _, value := range audience {
		if value == expected {
			return true
		}
	}
	return false
}

func decodeBase64(value string) ([]byte, error) {
	if decoded, err := base64.StdEncoding.DecodeString(value); err == nil {
		return decoded, nil
	}
	return base64.RawStdEncoding.DecodeString(value)
}
