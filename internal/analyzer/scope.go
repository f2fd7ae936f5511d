// Package analyzer decides which profiles a run processes and whether they are in use.
package analyzer

import (
	"log/slog"

	"github.com/ppiankov/profilespectre/internal/models"
	"github.com/ppiankov/profilespectre/pkg/config"
)

// ShouldProcess reports whether profile is in scope for the run described by cfg.
func ShouldProcess(profile *models.Profile, cfg *config.Config) bool {
	scope := profile.Scope
	if scope == "" {
		scope = models.ScopeProject
	}

	if scope == models.ScopeSystem {
		return false
	}
	if cfg.IsProfileExcluded(profile.Name) {
		return false
	}
	if !cfg.HasProjectFilter() {
		return true
	}
	return scope == models.ScopeProject
}

// Filter keeps the profiles ShouldProcess accepts, in input order, and
// returns how many were skipped.
func Filter(profiles []*models.Profile, cfg *config.Config) ([]*models.Profile, int) {
	kept := make([]*models.Profile, 0, len(profiles))
	skipped := 0
	for _, profile := range profiles {
		if !ShouldProcess(profile, cfg) {
			skipped++
			slog.Debug("profile out of scope",
				slog.String("name", profile.Name),
				slog.String("uid", profile.UID),
				slog.String("scope", string(profile.Scope)),
			)
			continue
		}
		kept = append(kept, profile)
	}
	return kept, skipped
}
