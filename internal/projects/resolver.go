// Package projects maps operator-facing project names to backend uids.
package projects

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ppiankov/profilespectre/internal/models"
)

// DefaultRegistryTTL bounds how long one run reuses the fetched registry.
const DefaultRegistryTTL = 5 * time.Minute

// ErrProjectNotFound is returned when no project matches the given name.
var ErrProjectNotFound = fmt.Errorf("project %w", models.ErrNotFound)

// Lister fetches the project registry.
type Lister interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
}

// Registry serves the project list, fetching it at most once per TTL.
type Registry struct {
	lister Lister
	cache  *Cache
}

// NewRegistry creates a registry backed by lister.
func NewRegistry(lister Lister, ttl time.Duration) *Registry {
	return &Registry{
		lister: lister,
		cache:  NewCache(ttl),
	}
}

// Projects returns the project registry.
func (r *Registry) Projects(ctx context.Context) ([]models.Project, error) {
	if cached, ok := r.cache.Get(); ok {
		slog.Debug("project registry cache hit", slog.Int("projects", len(cached)))
		return cached, nil
	}

	projects, err := r.lister.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	r.cache.Set(projects)
	return projects, nil
}

// Resolver resolves project names to uids.
type Resolver struct {
	registry *Registry
}

// NewResolver creates a name→uid resolver over registry.
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Resolve returns the uid of the project whose name equals name, ignoring
// case. With several matches the first one in registry order wins.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	wanted := strings.TrimSpace(name)

	projects, err := r.registry.Projects(ctx)
	if err != nil {
		return "", err
	}

	var matches []models.Project
	for _, project := range projects {
		if strings.EqualFold(strings.TrimSpace(project.Name), wanted) {
			matches = append(matches, project)
		}
	}

	if len(matches) == 0 {
		known := Names(projects)
		slog.Warn("project not found",
			slog.String("project", wanted),
			slog.String("known_projects", strings.Join(known, ", ")),
		)
		return "", fmt.Errorf("%w: %q (known projects: %s)", ErrProjectNotFound, wanted, strings.Join(known, ", "))
	}

	if len(matches) > 1 {
		slog.Warn("project name is ambiguous, using first match",
			slog.String("project", wanted),
			slog.Int("matches", len(matches)),
			slog.String("uid", matches[0].UID),
		)
	}

	slog.Debug("resolved project",
		slog.String("project", wanted),
		slog.String("uid", matches[0].UID),
	)
	return matches[0].UID, nil
}

// Names lists project names in registry order.
func Names(projects []models.Project) []string {
	names := make([]string, 0, len(projects))
	for _, project := range projects {
		names = append(names, project.Name)
	}
	return names
}
