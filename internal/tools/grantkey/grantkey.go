// Package grantkey generates operator grant keypairs and mints signed
// grants for governance operators.
package grantkey

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/signoria/signoria/internal/platform/id"
	"github.com/signoria/signoria/internal/services/governance/api"
	"github.com/signoria/signoria/internal/services/governance/domain"
)

// DefaultGrantTTL bounds grants minted without an explicit TTL.
const DefaultGrantTTL = 12 * time.Hour

// GenerateKey generates an operator grant key pair and writes exports.
func GenerateKey(out io.Writer, reader io.Reader) error {
	if out == nil {
		return errors.New("output is required")
	}
	if reader == nil {
		reader = rand.Reader
	}
	publicKey, privateKey, err := ed25519.GenerateKey(reader)
	if err != nil {
		return fmt.Errorf("generate grant key: %w", err)
	}
	if _, err := fmt.Fprintf(out, "export SIGNORIA_GRANT_PRIVATE_KEY=%s\n", base64.RawStdEncoding.EncodeToString(privateKey)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "export SIGNORIA_GRANT_PUBLIC_KEY=%s\n", base64.RawStdEncoding.EncodeToString(publicKey)); err != nil {
		return err
	}
	return nil
}

// MintOptions describe the grant to sign.
type MintOptions struct {
	// PrivateKey is the base64 Ed25519 signing key emitted by GenerateKey.
	PrivateKey string
	// Subject is the operator's account address.
	Subject  string
	Issuer   string
	Audience string
	TTL      time.Duration
	Now      func() time.Time
}

// MintGrant signs an operator grant and writes it to out.
func MintGrant(out io.Writer, opts MintOptions) error {
	if out == nil {
		return errors.New("output is required")
	}
	key, err := decodePrivateKey(opts.PrivateKey)
	if err != nil {
		return err
	}
	subject, err := domain.ParseAddress(strings.TrimSpace(opts.Subject))
	if err != nil {
		return fmt.Errorf("grant subject: %w", err)
	}
	issuer := opts.Issuer
	if issuer == "" {
		issuer = api.DefaultGrantIssuer
	}
	audience := opts.Audience
	if audience == "" {
		audience = api.DefaultGrantAudience
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultGrantTTL
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	jti, err := id.NewID()
	if err != nil {
		return fmt.Errorf("grant id: %w", err)
	}

	issuedAt := now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, jwt.RegisteredClaims{
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{audience},
		Subject:   subject.String(),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		ID:        jti,
	})
	grant, err := token.SignedString(key)
	if err != nil {
		return fmt.Errorf("sign grant: %w", err)
	}
	_, err = fmt.Fprintln(out, grant)
	return err
}

func decodePrivateKey(raw string) (ed25519.PrivateKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("private key is required")
	}
	decoded, err := base64.RawStdEncoding.DecodeString(raw)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(raw)
	}
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	if len(decoded) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("private key must be %d bytes", ed25519.PrivateKeySize)
	}
	return ed25519.PrivateKey(decoded), nil
}
