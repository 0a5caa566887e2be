// Package plugin hooks the link feed generator into a build.
package plugin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/scipunch/linkfeed/generator"
	"github.com/scipunch/linkfeed/signals"
)

// GetGenerators answers the get_generators signal.
func GetGenerators() signals.GeneratorFactory {
	return generator.Factory
}

// Register connects GetGenerators to s.
func Register(s *signals.Signals) {
	s.ConnectGetGenerators(GetGenerators)
}

// Run creates every generator registered on env.Signals, runs all context
// phases and then all output phases.
func Run(ctx context.Context, env signals.Env) error {
	factories := env.Signals.Generators()
	gens := make([]signals.Generator, 0, len(factories))
	for _, factory := range factories {
		g, err := factory(env)
		if err != nil {
			return fmt.Errorf("failed to create generator with %w", err)
		}
		gens = append(gens, g)
	}

	for _, g := range gens {
		if err := g.GenerateContext(ctx); err != nil {
			return fmt.Errorf("failed to generate context with %w", err)
		}
	}
	for _, g := range gens {
		if err := g.GenerateOutput(ctx); err != nil {
			return fmt.Errorf("failed to generate output with %w", err)
		}
	}
	slog.Info("build finished", "generators", len(gens))
	return nil
}
