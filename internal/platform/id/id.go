// Package id generates compact unique identifiers.
//
// Identifiers are random UUIDv4 values encoded as unpadded lowercase base32
// (RFC 4648), always 26 characters long. They are URL-safe and sort-neutral.
package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a new 26-character identifier.
func NewID() (string, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return strings.ToLower(encoding.EncodeToString(value[:])), nil
}
