// Package mcp parses MCP bridge flags and composes the service entrypoint.
package mcp

import (
	"context"
	"flag"

	entrypoint "github.com/signoria/signoria/internal/platform/cmd"
	"github.com/signoria/signoria/internal/services/mcp/service"
)

// Config holds MCP bridge configuration.
type Config struct {
	APIURL     string `env:"SIGNORIA_API_URL"     envDefault:"http://localhost:8080"`
	GrantToken string `env:"SIGNORIA_GRANT_TOKEN"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "governance API base URL")
	fs.StringVar(&cfg.GrantToken, "grant-token", cfg.GrantToken, "operator grant attached to mutating tools")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP bridge over stdio.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(context.Context) error {
		return service.Run(ctx, service.Config{
			APIURL:     cfg.APIURL,
			GrantToken: cfg.GrantToken,
		})
	})
}
