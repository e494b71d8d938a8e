// Package render produces localized display text for governance sessions.
// Translations are registered in the per-locale messages files and resolved
// through x/text message printers.
package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/signoria/signoria/internal/services/governance/domain"
)

const (
	keyMint             = "governance.describe.mint"
	keyMintFinished     = "governance.describe.mint_finished"
	keyBurn             = "governance.describe.burn"
	keyAddAuthority     = "governance.describe.add_authority"
	keyRemoveAuthority  = "governance.describe.remove_authority"
	keyRequiredApproval = "governance.describe.required_approval"
	keyUnknownProposal  = "governance.describe.unknown"
)

// Localizer is the minimal message-printer contract required to describe
// sessions.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// Describe returns a human-readable summary of one session's proposal.
func Describe(loc Localizer, session domain.Session) string {
	switch session.Topic {
	case domain.TopicMint:
		return localize(loc, keyMint, session.ReferNumber, session.ReferAccount.Short())
	case domain.TopicMintFinished:
		return localize(loc, keyMintFinished)
	case domain.TopicBurn:
		return localize(loc, keyBurn, session.ReferNumber, session.ReferAccount.Short())
	case domain.TopicAddAuthority:
		return localize(loc, keyAddAuthority, session.ReferAccount.Short())
	case domain.TopicRemoveAuthority:
		return localize(loc, keyRemoveAuthority, session.ReferAccount.Short())
	case domain.TopicChangeRequiredApproval:
		return localize(loc, keyRequiredApproval, session.ReferNumber)
	default:
		return localize(loc, keyUnknownProposal)
	}
}

// Describer adapts a localized printer to the domain's display contract.
// The zero value prints in the default locale.
type Describer struct {
	loc Localizer
}

// NewDescriber returns a describer printing in the supplied language.
func NewDescriber(tag language.Tag) Describer {
	return Describer{loc: Printer(tag)}
}

// Describe returns a one-line display name for the session.
func (d Describer) Describe(session domain.Session) string {
	loc := d.loc
	if loc == nil {
		loc = Printer(Default())
	}
	return Describe(loc, session)
}

func localize(loc Localizer, key message.Reference, args ...any) string {
	if loc == nil {
		if asString, ok := key.(string); ok {
			return asString
		}
		return ""
	}
	return loc.Sprintf(key, args...)
}
