// Package domain implements the governance session state machine: the
// authority registry, proposal lifecycle, threshold voting, and the effects
// a resolved proposal executes against the token ledger.
package domain

import (
	"strings"

	apperrors "github.com/signoria/signoria/internal/platform/errors"
)

// addressLength is the canonical length of an account address: "0x" plus
// 40 hex digits.
const addressLength = 42

// ZeroAddress is the null account. It is never a valid party to a proposal.
const ZeroAddress Address = "0x0000000000000000000000000000000000000000"

// Address identifies an account on the governed ledger. The canonical form
// is "0x" followed by 40 lowercase hex digits.
type Address string

// ParseAddress validates raw and returns its canonical lowercase form.
func ParseAddress(raw string) (Address, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return "", ErrAddressInvalid
	}
	if len(trimmed) != addressLength || !strings.HasPrefix(trimmed, "0x") {
		return "", apperrors.WithMetadata(apperrors.CodeInvalidArgument, "account address is malformed", map[string]string{
			"address": raw,
		})
	}
	for _, r := range trimmed[2:] {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return "", apperrors.WithMetadata(apperrors.CodeInvalidArgument, "account address is malformed", map[string]string{
				"address": raw,
			})
		}
	}
	return Address(trimmed), nil
}

// IsZero reports whether the address is empty or the null account.
func (a Address) IsZero() bool {
	return a == "" || a == ZeroAddress
}

// String returns the canonical address form.
func (a Address) String() string {
	return string(a)
}

// Short returns a compact display form: the first four and last four hex
// digits, e.g. "0x1234..cdef".
func (a Address) Short() string {
	if len(a) != addressLength {
		return string(a)
	}
	return string(a[:6]) + ".." + string(a[addressLength-4:])
}
