package analyzer

import (
	"encoding/json"
	"testing"

	"github.com/ppiankov/profilespectre/internal/models"
	"github.com/ppiankov/profilespectre/pkg/config"
)

func TestShouldProcess(t *testing.T) {
	cases := []struct {
		name    string
		scope   models.Scope
		project string
		exclude []string
		want    bool
	}{
		{name: "tenant_no_filter", scope: models.ScopeTenant, want: true},
		{name: "project_no_filter", scope: models.ScopeProject, want: true},
		{name: "absent_scope_no_filter", scope: "", want: true},
		{name: "system_no_filter", scope: models.ScopeSystem, want: false},
		{name: "system_with_filter", scope: models.ScopeSystem, project: "proj-a", want: false},
		{name: "tenant_with_filter", scope: models.ScopeTenant, project: "proj-a", want: false},
		{name: "project_with_filter", scope: models.ScopeProject, project: "proj-a", want: true},
		{name: "absent_scope_with_filter", scope: "", project: "proj-a", want: true},
		{name: "excluded_name", scope: models.ScopeTenant, exclude: []string{"we*"}, want: false},
		{name: "exclude_not_matching", scope: models.ScopeTenant, exclude: []string{"db-*"}, want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Project = tc.project
			cfg.ExcludeProfiles = tc.exclude
			cfg.Normalize()

			profile := &models.Profile{UID: "u1", Name: "web", Scope: tc.scope}
			if got := ShouldProcess(profile, cfg); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestSystemScopeNeverProcessed(t *testing.T) {
	filters := []struct{ project, profile string }{
		{"", ""},
		{"proj-a", ""},
		{"", "os"},
		{"proj-a", "os"},
	}
	for _, f := range filters {
		cfg := config.DefaultConfig()
		cfg.Project = f.project
		cfg.Profile = f.profile
		if ShouldProcess(&models.Profile{Name: "os", Scope: models.ScopeSystem}, cfg) {
			t.Fatalf("system profile processed with filters %+v", f)
		}
	}
}

func TestFilter(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Project = "proj-a"

	profiles := []*models.Profile{
		{UID: "t1", Scope: models.ScopeTenant},
		{UID: "p1", Scope: models.ScopeProject},
		{UID: "s1", Scope: models.ScopeSystem},
		{UID: "p2", Scope: models.ScopeProject},
	}

	kept, skipped := Filter(profiles, cfg)
	if skipped != 2 {
		t.Fatalf("expected 2 skipped, got %d", skipped)
	}
	if len(kept) != 2 || kept[0].UID != "p1" || kept[1].UID != "p2" {
		t.Fatalf("unexpected kept profiles: %+v", kept)
	}
}

func TestCheckUsage(t *testing.T) {
	raw := func(s string) json.RawMessage { return json.RawMessage(s) }

	cases := []struct {
		name  string
		usage models.UsageSignal
		want  bool
	}{
		{name: "all_absent", usage: models.UsageSignal{}, want: false},
		{name: "all_null", usage: models.UsageSignal{Clusters: raw("null"), ClusterUIDs: raw("null"), ClusterTemplates: raw("null")}, want: false},
		{name: "all_empty", usage: models.UsageSignal{Clusters: raw("[]"), ClusterUIDs: raw("[]"), ClusterTemplates: raw("[]")}, want: false},
		{name: "clusters", usage: models.UsageSignal{Clusters: raw(`[{"uid":"c1"}]`)}, want: true},
		{name: "cluster_uids", usage: models.UsageSignal{ClusterUIDs: raw(`["c1"]`)}, want: true},
		{name: "cluster_templates", usage: models.UsageSignal{ClusterTemplates: raw(`["tpl"]`)}, want: true},
		{name: "non_array_is_empty", usage: models.UsageSignal{Clusters: raw(`"c1"`), ClusterUIDs: raw(`3`), ClusterTemplates: raw(`{"a":1}`)}, want: false},
		{name: "broken_json_is_empty", usage: models.UsageSignal{ClusterUIDs: raw(`["c1"`)}, want: false},
		{name: "one_valid_among_broken", usage: models.UsageSignal{Clusters: raw(`{`), ClusterTemplates: raw(`["tpl"]`)}, want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			detail := &models.ProfileDetail{Profile: &models.Profile{UID: "u1"}, Usage: tc.usage}
			if got := CheckUsage(detail); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}

	if CheckUsage(nil) {
		t.Fatal("nil detail must read as unused")
	}
}
