package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, keyMint, "Mint %d tokens to %s")
	message.SetString(lang, keyMintFinished, "Close further token minting")
	message.SetString(lang, keyBurn, "Burn %d tokens held by %s")
	message.SetString(lang, keyAddAuthority, "Add %s as an authority")
	message.SetString(lang, keyRemoveAuthority, "Remove %s from the authorities")
	message.SetString(lang, keyRequiredApproval, "Require %d approvals per session")
	message.SetString(lang, keyUnknownProposal, "Unknown proposal")
}
