// Package seed creates the startup data the service needs
package seed

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/yigit/campusfound/internal/config"
)

// AdminEnsurer creates or promotes an administrator account
type AdminEnsurer interface {
	EnsureAdmin(ctx context.Context, email, password, fullName string) error
}

// EnsureAdmin makes sure the configured seed administrator exists. Nothing happens
// when no seed email is configured.
func EnsureAdmin(ctx context.Context, users AdminEnsurer, cfg *config.Config, lgr zerolog.Logger) error {
	if cfg.Admin.SeedEmail == "" {
		lgr.Debug().Msg("No seed administrator configured")
		return nil
	}

	lgr.Info().Str("email", cfg.Admin.SeedEmail).Msg("Checking/Creating seed administrator...")
	if err := users.EnsureAdmin(ctx, cfg.Admin.SeedEmail, cfg.Admin.SeedPassword, cfg.Admin.SeedName); err != nil {
		lgr.Error().Err(err).Msg("Error creating seed administrator")
		return err
	}
	return nil
}
