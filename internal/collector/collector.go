// Package collector aggregates cluster profiles across tenant and project scopes.
package collector

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/ppiankov/profilespectre/internal/models"
	"github.com/ppiankov/profilespectre/pkg/config"
)

// ErrProfileNotFound is returned when a named profile is absent from the
// targeted scope.
var ErrProfileNotFound = fmt.Errorf("profile %w", models.ErrNotFound)

// Source lists cluster profiles, scoped to a project when projectUID is set.
type Source interface {
	ListProfiles(ctx context.Context, projectUID string) ([]*models.Profile, error)
}

// ProjectSource returns the project registry.
type ProjectSource interface {
	Projects(ctx context.Context) ([]models.Project, error)
}

// Collector builds the candidate profile set for one run.
type Collector struct {
	config   *config.Config
	source   Source
	projects ProjectSource

	// resolved project filter; empty when no filter is active
	projectUID string

	profiles []*models.Profile
	seen     sets.Set[string]
	errs     []error
}

// New creates a collector. projectUID is the resolved uid of cfg.Project and
// must be set whenever a project filter is active.
func New(cfg *config.Config, source Source, projects ProjectSource, projectUID string) *Collector {
	return &Collector{
		config:     cfg,
		source:     source,
		projects:   projects,
		projectUID: projectUID,
	}
}

// Collect fetches the profile snapshot. Each call starts from an empty set.
func (c *Collector) Collect(ctx context.Context) ([]*models.Profile, error) {
	c.profiles = nil
	c.seen = sets.New[string]()
	c.errs = nil

	if c.config.HasProfileFilter() {
		if err := c.collectNamed(ctx); err != nil {
			return nil, err
		}
		return c.profiles, nil
	}

	tenant, err := c.source.ListProfiles(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tenant profiles: %w", err)
	}
	c.add(tenant)
	slog.Debug("fetched tenant profiles", slog.Int("count", len(tenant)))

	if c.config.HasProjectFilter() {
		scoped, err := c.source.ListProfiles(ctx, c.projectUID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch profiles for project %q: %w", c.config.Project, err)
		}
		c.add(c.tag(scoped, c.projectUID, c.config.Project))
		return c.profiles, nil
	}

	if err := c.collectAllProjects(ctx); err != nil {
		return nil, err
	}
	return c.profiles, nil
}

// Errors returns the per-project failures of the last Collect.
func (c *Collector) Errors() []error {
	return c.errs
}

func (c *Collector) collectNamed(ctx context.Context) error {
	name := c.config.Profile
	target := "tenant"
	if c.config.HasProjectFilter() {
		target = fmt.Sprintf("project %q", c.config.Project)
	}

	listed, err := c.source.ListProfiles(ctx, c.projectUID)
	if err != nil {
		return fmt.Errorf("failed to fetch %s profiles: %w", target, err)
	}

	var matched []*models.Profile
	for _, profile := range listed {
		if profile.Name == name {
			matched = append(matched, profile)
		}
	}
	if len(matched) == 0 {
		return fmt.Errorf("%w: %q in %s scope", ErrProfileNotFound, name, target)
	}

	if c.config.HasProjectFilter() {
		matched = c.tag(matched, c.projectUID, c.config.Project)
	}
	c.add(matched)
	slog.Debug("fetched named profile",
		slog.String("profile", name),
		slog.Int("versions", len(matched)),
	)
	return nil
}

func (c *Collector) collectAllProjects(ctx context.Context) error {
	registry, err := c.projects.Projects(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch project registry: %w", err)
	}

	for _, project := range registry {
		if err := ctx.Err(); err != nil {
			return err
		}

		scoped, err := c.source.ListProfiles(ctx, project.UID)
		if err != nil {
			slog.Warn("failed to fetch project profiles, continuing",
				slog.String("project", project.Name),
				slog.String("project_uid", project.UID),
				slog.String("error", err.Error()),
			)
			c.errs = append(c.errs, fmt.Errorf("project %q: %w", project.Name, err))
			continue
		}

		var owned []*models.Profile
		for _, profile := range scoped {
			// tenant and system items reappear in scoped lists
			if profile.Scope == models.ScopeTenant || profile.Scope == models.ScopeSystem {
				continue
			}
			owned = append(owned, profile)
		}
		c.add(c.tag(owned, project.UID, project.Name))
		slog.Debug("fetched project profiles",
			slog.String("project", project.Name),
			slog.Int("count", len(owned)),
		)
	}
	return nil
}

// tag records the source project on project-scoped profiles.
func (c *Collector) tag(profiles []*models.Profile, uid, name string) []*models.Profile {
	for _, profile := range profiles {
		if profile.Scope != models.ScopeProject {
			continue
		}
		profile.ProjectUID = uid
		profile.ProjectName = strings.TrimSpace(name)
	}
	return profiles
}

func (c *Collector) add(profiles []*models.Profile) {
	for _, profile := range profiles {
		key := profile.Key()
		if c.seen.Has(key) {
			continue
		}
		c.seen.Insert(key)

		// a project profile already seen untagged in the baseline takes its owner
		if profile.Scope == models.ScopeProject && profile.ProjectUID != "" {
			untagged := (&models.Profile{UID: profile.UID, Scope: models.ScopeProject}).Key()
			if c.seen.Has(untagged) {
				c.replace(untagged, profile)
				continue
			}
		}
		c.profiles = append(c.profiles, profile)
	}
}

func (c *Collector) replace(key string, profile *models.Profile) {
	for i, existing := range c.profiles {
		if existing.Key() == key {
			c.profiles[i] = profile
			c.seen.Delete(key)
			return
		}
	}
}
