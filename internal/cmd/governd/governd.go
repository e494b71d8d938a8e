// Package governd parses governance daemon flags and composes the service
// entrypoint.
package governd

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	entrypoint "github.com/signoria/signoria/internal/platform/cmd"
	server "github.com/signoria/signoria/internal/services/governance/app"
)

// Config holds governance daemon configuration.
type Config struct {
	HTTPAddr           string        `env:"SIGNORIA_HTTP_ADDR"            envDefault:":8080"`
	DatabasePath       string        `env:"SIGNORIA_DB_PATH"              envDefault:"signoria.db"`
	GenesisAuthorities string        `env:"SIGNORIA_GENESIS_AUTHORITIES"`
	GenesisQuorum      uint64        `env:"SIGNORIA_GENESIS_QUORUM"`
	GenesisHeight      uint64        `env:"SIGNORIA_GENESIS_HEIGHT"       envDefault:"1"`
	Locale             string        `env:"SIGNORIA_LOCALE"               envDefault:"en"`
	BlockInterval      time.Duration `env:"SIGNORIA_BLOCK_INTERVAL"       envDefault:"15s"`
	RelayInterval      time.Duration `env:"SIGNORIA_RELAY_INTERVAL"       envDefault:"1s"`
	NATSURL            string        `env:"SIGNORIA_NATS_URL"`
	NATSEmbedded       bool          `env:"SIGNORIA_NATS_EMBEDDED"`
	NATSStoreDir       string        `env:"SIGNORIA_NATS_STORE_DIR"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "governance HTTP listen address")
	fs.StringVar(&cfg.DatabasePath, "db-path", cfg.DatabasePath, "governance SQLite database path")
	fs.StringVar(&cfg.GenesisAuthorities, "genesis-authorities", cfg.GenesisAuthorities, "comma-separated genesis authority addresses")
	fs.Uint64Var(&cfg.GenesisQuorum, "genesis-quorum", cfg.GenesisQuorum, "genesis approval quorum")
	fs.Uint64Var(&cfg.GenesisHeight, "genesis-height", cfg.GenesisHeight, "block height written at genesis")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "fallback locale for session descriptions")
	fs.DurationVar(&cfg.BlockInterval, "block-interval", cfg.BlockInterval, "block height advance interval")
	fs.DurationVar(&cfg.RelayInterval, "relay-interval", cfg.RelayInterval, "journal relay poll interval")
	fs.StringVar(&cfg.NATSURL, "nats-url", cfg.NATSURL, "NATS broker URL for journal events, empty disables the relay")
	fs.BoolVar(&cfg.NATSEmbedded, "nats-embedded", cfg.NATSEmbedded, "run an in-process JetStream broker")
	fs.StringVar(&cfg.NATSStoreDir, "nats-store-dir", cfg.NATSStoreDir, "embedded broker storage directory")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run builds the governance app and serves it until the context ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceGovernd, func(context.Context) error {
		if err := server.Run(ctx, server.Config{
			HTTPAddr:           cfg.HTTPAddr,
			DatabasePath:       cfg.DatabasePath,
			GenesisAuthorities: splitList(cfg.GenesisAuthorities),
			GenesisQuorum:      cfg.GenesisQuorum,
			GenesisHeight:      cfg.GenesisHeight,
			Locale:             cfg.Locale,
			BlockInterval:      cfg.BlockInterval,
			RelayInterval:      cfg.RelayInterval,
			NATSURL:            cfg.NATSURL,
			NATSEmbedded:       cfg.NATSEmbedded,
			NATSStoreDir:       cfg.NATSStoreDir,
		}); err != nil {
			return fmt.Errorf("serve governance: %w", err)
		}
		return nil
	})
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
