// Package config loads process configuration. Services declare their
// settings as structs with SIGNORIA_-prefixed env tags; flags parsed by
// the launchers override whatever the environment provided.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv fills target from the process environment using its env tags.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
