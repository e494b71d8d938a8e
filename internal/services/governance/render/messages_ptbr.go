package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.MustParse("pt-BR")

	message.SetString(lang, keyMint, "Emitir %d tokens para %s")
	message.SetString(lang, keyMintFinished, "Encerrar a emissão de tokens")
	message.SetString(lang, keyBurn, "Queimar %d tokens de %s")
	message.SetString(lang, keyAddAuthority, "Adicionar %s como autoridade")
	message.SetString(lang, keyRemoveAuthority, "Remover %s das autoridades")
	message.SetString(lang, keyRequiredApproval, "Exigir %d aprovações por sessão")
	message.SetString(lang, keyUnknownProposal, "Proposta desconhecida")
}
