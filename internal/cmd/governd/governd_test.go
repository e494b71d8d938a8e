package governd

import (
	"flag"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("governd", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected default http addr :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.DatabasePath != "signoria.db" {
		t.Fatalf("expected default database path signoria.db, got %s", cfg.DatabasePath)
	}
	if cfg.BlockInterval != 15*time.Second {
		t.Fatalf("expected default block interval 15s, got %s", cfg.BlockInterval)
	}
	if cfg.GenesisHeight != 1 {
		t.Fatalf("expected default genesis height 1, got %d", cfg.GenesisHeight)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("SIGNORIA_HTTP_ADDR", ":9090")

	fs := flag.NewFlagSet("governd", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-http-addr", ":9091"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != ":9091" {
		t.Fatalf("expected flag override :9091, got %s", cfg.HTTPAddr)
	}
}

func TestParseConfigReadsGenesisEnv(t *testing.T) {
	t.Setenv("SIGNORIA_GENESIS_AUTHORITIES", "0x00000000000000000000000000000000000000aa, 0x00000000000000000000000000000000000000ab")
	t.Setenv("SIGNORIA_GENESIS_QUORUM", "2")
	t.Setenv("SIGNORIA_GENESIS_HEIGHT", "50")

	fs := flag.NewFlagSet("governd", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.GenesisQuorum != 2 {
		t.Fatalf("expected quorum 2, got %d", cfg.GenesisQuorum)
	}
	if cfg.GenesisHeight != 50 {
		t.Fatalf("expected genesis height 50, got %d", cfg.GenesisHeight)
	}
	authorities := splitList(cfg.GenesisAuthorities)
	if len(authorities) != 2 {
		t.Fatalf("expected 2 genesis authorities, got %v", authorities)
	}
	if authorities[1] != "0x00000000000000000000000000000000000000ab" {
		t.Fatalf("expected trimmed second authority, got %q", authorities[1])
	}
}

func TestSplitListDropsEmptyEntries(t *testing.T) {
	if got := splitList(""); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
	if got := splitList(" , ,a, "); len(got) != 1 || got[0] != "a" {
		t.Fatalf("expected [a], got %v", got)
	}
}
