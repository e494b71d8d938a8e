package domain

import apperrors "github.com/signoria/signoria/internal/platform/errors"

// Topic is the fixed kind of a proposal. The set is closed: governance
// actions are not user-extensible.
type Topic int

const (
	// TopicUnspecified represents an invalid topic.
	TopicUnspecified Topic = iota
	// TopicBurn proposes burning tokens held by an authority.
	TopicBurn
	// TopicMint proposes minting tokens to a beneficiary.
	TopicMint
	// TopicMintFinished proposes closing the supply irreversibly.
	TopicMintFinished
	// TopicAddAuthority proposes admitting a new authority.
	TopicAddAuthority
	// TopicRemoveAuthority proposes removing a current authority.
	TopicRemoveAuthority
	// TopicChangeRequiredApproval proposes a new quorum threshold.
	TopicChangeRequiredApproval
)

// String returns the wire name of the topic.
func (t Topic) String() string {
	switch t {
	case TopicBurn:
		return "BURN"
	case TopicMint:
		return "MINT"
	case TopicMintFinished:
		return "MINT_FINISHED"
	case TopicAddAuthority:
		return "ADD_AUTHORITY"
	case TopicRemoveAuthority:
		return "REMOVE_AUTHORITY"
	case TopicChangeRequiredApproval:
		return "CHANGE_REQUIRED_APPROVAL"
	default:
		return "UNSPECIFIED"
	}
}

// ParseTopic maps a wire name back to a topic.
func ParseTopic(raw string) (Topic, error) {
	switch raw {
	case "BURN":
		return TopicBurn, nil
	case "MINT":
		return TopicMint, nil
	case "MINT_FINISHED":
		return TopicMintFinished, nil
	case "ADD_AUTHORITY":
		return TopicAddAuthority, nil
	case "REMOVE_AUTHORITY":
		return TopicRemoveAuthority, nil
	case "CHANGE_REQUIRED_APPROVAL":
		return TopicChangeRequiredApproval, nil
	default:
		return TopicUnspecified, apperrors.WithMetadata(apperrors.CodeInvalidArgument, "unknown proposal topic", map[string]string{
			"topic": raw,
		})
	}
}
