// Package main provides a one-shot utility for operator grant keys.
//
// Without flags it emits the Ed25519 keypair that signs operator grants.
// With -subject it mints a signed grant for one operator, reading the
// signing key from SIGNORIA_GRANT_PRIVATE_KEY.
package main

import (
	"flag"
	"os"
	"time"

	"github.com/signoria/signoria/internal/platform/config"
	"github.com/signoria/signoria/internal/tools/grantkey"
)

func main() {
	var subject string
	var ttl time.Duration
	flag.StringVar(&subject, "subject", "", "operator account address to mint a grant for")
	flag.DurationVar(&ttl, "ttl", grantkey.DefaultGrantTTL, "grant lifetime")
	flag.Parse()

	if subject == "" {
		if err := grantkey.GenerateKey(os.Stdout, nil); err != nil {
			config.Exitf("generate grant key: %v", err)
		}
		return
	}

	if err := grantkey.MintGrant(os.Stdout, grantkey.MintOptions{
		PrivateKey: os.Getenv("SIGNORIA_GRANT_PRIVATE_KEY"),
		Subject:    subject,
		TTL:        ttl,
	}); err != nil {
		config.Exitf("mint operator grant: %v", err)
	}
}
