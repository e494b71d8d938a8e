package api

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/signoria/signoria/internal/platform/errors"
	"github.com/signoria/signoria/internal/platform/requestctx"
	"github.com/signoria/signoria/internal/services/governance/domain"
)

const (
	// DefaultGrantIssuer is the issuer operator grants carry unless
	// overridden by environment.
	DefaultGrantIssuer = "signoria"
	// DefaultGrantAudience is the audience operator grants carry unless
	// overridden by environment.
	DefaultGrantAudience = "signoria-governance"
)

// grantEnv holds raw env values before post-parse validation.
type grantEnv struct {
	Issuer    string `env:"SIGNORIA_GRANT_ISSUER"`
	Audience  string `env:"SIGNORIA_GRANT_AUDIENCE"`
	PublicKey string `env:"SIGNORIA_GRANT_PUBLIC_KEY"`
}

// GrantConfig defines how operator grants are verified.
type GrantConfig struct {
	Issuer   string
	Audience string
	Key      ed25519.PublicKey
	Now      func() time.Time
}

// GrantClaims captures validated operator grant claims.
type GrantClaims struct {
	Subject   domain.Address
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
	JWTID     string
}

// LoadGrantConfigFromEnv reads grant verification configuration. The
// public key is required; issuer and audience fall back to the defaults.
func LoadGrantConfigFromEnv(now func() time.Time) (GrantConfig, error) {
	var raw grantEnv
	if err := env.Parse(&raw); err != nil {
		return GrantConfig{}, fmt.Errorf("parse grant env: %w", err)
	}
	publicKey := strings.TrimSpace(raw.PublicKey)
	if publicKey == "" {
		return GrantConfig{}, fmt.Errorf("SIGNORIA_GRANT_PUBLIC_KEY is required")
	}
	keyBytes, err := decodeBase64(publicKey)
	if err != nil {
		return GrantConfig{}, fmt.Errorf("decode grant public key: %w", err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return GrantConfig{}, fmt.Errorf("grant public key must be %d bytes", ed25519.PublicKeySize)
	}
	return GrantConfig{
		Issuer:   strings.TrimSpace(raw.Issuer),
		Audience: strings.TrimSpace(raw.Audience),
		Key:      ed25519.PublicKey(keyBytes),
		Now:      now,
	}, nil
}

// GrantVerifier checks operator grants against the configured key and
// claims.
type GrantVerifier struct {
	cfg GrantConfig
}

// NewGrantVerifier validates the configuration and applies defaults.
func NewGrantVerifier(cfg GrantConfig) (*GrantVerifier, error) {
	if len(cfg.Key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("grant public key must be %d bytes", ed25519.PublicKeySize)
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultGrantIssuer
	}
	if cfg.Audience == "" {
		cfg.Audience = DefaultGrantAudience
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &GrantVerifier{cfg: cfg}, nil
}

// Verify checks the grant signature and claims and returns the caller
// identity it binds.
func (v *GrantVerifier) Verify(grant string) (GrantClaims, error) {
	grant = strings.TrimSpace(grant)
	if grant == "" {
		return GrantClaims{}, apperrors.New(apperrors.CodeUnauthenticated, "operator grant is required")
	}
	if v == nil || len(v.cfg.Key) != ed25519.PublicKeySize {
		return GrantClaims{}, errors.New("grant verifier is not configured")
	}

	var parsed jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(grant, &parsed, func(token *jwt.Token) (any, error) {
		return v.cfg.Key, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return GrantClaims{}, mapJWTError(err)
	}

	if parsed.Issuer == "" || parsed.Issuer != v.cfg.Issuer {
		return GrantClaims{}, apperrors.WithMetadata(
			apperrors.CodeGrantInvalid,
			"operator grant issuer mismatch",
			map[string]string{"Field": "issuer"},
		)
	}
	if !audienceContains(parsed.Audience, v.cfg.Audience) {
		return GrantClaims{}, apperrors.WithMetadata(
			apperrors.CodeGrantInvalid,
			"operator grant audience mismatch",
			map[string]string{"Field": "audience"},
		)
	}
	if parsed.ID == "" {
		return GrantClaims{}, apperrors.New(apperrors.CodeGrantInvalid, "operator grant jti is required")
	}
	if parsed.ExpiresAt == nil {
		return GrantClaims{}, apperrors.New(apperrors.CodeGrantInvalid, "operator grant exp is required")
	}

	now := v.cfg.Now().UTC()
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(now) {
		return GrantClaims{}, apperrors.New(apperrors.CodeGrantExpired, "operator grant is expired")
	}
	if parsed.NotBefore != nil && now.Before(parsed.NotBefore.Time.UTC()) {
		return GrantClaims{}, apperrors.New(apperrors.CodeGrantInvalid, "operator grant not active yet")
	}

	subject, err := domain.ParseAddress(parsed.Subject)
	if err != nil {
		return GrantClaims{}, apperrors.Wrap(apperrors.CodeGrantInvalid, "operator grant subject is not an account address", err)
	}

	return GrantClaims{
		Subject:   subject,
		Issuer:    parsed.Issuer,
		Audience:  []string(parsed.Audience),
		ExpiresAt: exp,
		JWTID:     parsed.ID,
	}, nil
}

// requireGrant wraps mutating handlers: the verified grant subject becomes
// the caller identity for the wrapped handler.
func (s *Server) requireGrant(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.grants == nil {
			writeError(w, r, apperrors.New(apperrors.CodeInternal, "operator grants are not configured"))
			return
		}
		claims, err := s.grants.Verify(bearerToken(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		next(w, r.WithContext(requestctx.WithCaller(r.Context(), claims.Subject.String())))
	}
}

func callerFromRequest(r *http.Request) domain.Address {
	return domain.Address(requestctx.CallerFromContext(r.Context()))
}

func bearerToken(r *http.Request) string {
	value := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(value, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrEd25519Verification) {
		return apperrors.New(apperrors.CodeGrantInvalid, "operator grant signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeGrantInvalid, "operator grant alg is invalid")
	}
	return apperrors.New(apperrors.CodeGrantInvalid, "operator grant is invalid")
}

// audienceContains reports whether the audience list contains the given value.
func audienceContains(aud jwt.ClaimStrings, value string) bool {
	for _, item := range aud {
		if item == value {
			return true
		}
	}
	return false
}

func decodeBase64(value string) ([]byte, error) {
	if value == "" {
		return nil, errors.New("empty base64 value")
	}
	decoded, err := base64.RawStdEncoding.DecodeString(value)
	if err == nil {
		return decoded, nil
	}
	return base64.StdEncoding.DecodeString(value)
}
