package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// ErrNotFound is the root sentinel for lookups that matched nothing.
var ErrNotFound = errors.New("not found")

// Scope is the visibility level of a cluster profile.
type Scope string

const (
	ScopeTenant  Scope = "tenant"
	ScopeProject Scope = "project"
	ScopeSystem  Scope = "system"
)

// ParseScope normalizes a raw scope annotation. Absent values mean project.
func ParseScope(raw string) Scope {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return ScopeProject
	case string(ScopeTenant):
		return ScopeTenant
	case string(ScopeSystem):
		return ScopeSystem
	case string(ScopeProject):
		return ScopeProject
	default:
		return Scope(strings.ToLower(strings.TrimSpace(raw)))
	}
}

// Project is an entry from the project registry.
type Project struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
}

// Profile is a cluster profile as seen in a list response, normalized once
// at the aggregation boundary.
type Profile struct {
	UID            string            `json:"uid"`
	Name           string            `json:"name"`
	Version        string            `json:"version"`
	Scope          Scope             `json:"scope"`
	ProjectUID     string            `json:"project_uid,omitempty"`  // source project during aggregation
	ProjectName    string            `json:"project_name,omitempty"` // display only
	Annotations    map[string]string `json:"annotations,omitempty"`
	SpecProjectUID string            `json:"spec_project_uid,omitempty"`
}

// Key identifies a profile within its (scope, owning project) combination.
func (p *Profile) Key() string {
	if p.Scope == ScopeProject {
		return string(p.Scope) + "/" + p.ProjectUID + "/" + p.UID
	}
	return string(p.Scope) + "/" + p.UID
}

// ProjectDisplay returns the label used for the project column.
func (p *Profile) ProjectDisplay() string {
	if p.ProjectName != "" {
		return p.ProjectName
	}
	if p.Scope == ScopeTenant {
		return "(tenant)"
	}
	if p.Scope == ScopeSystem {
		return "(system)"
	}
	return "-"
}

// ProjectCandidates lists the project uids recoverable from the profile's own
// fields, in priority order.
func (p *Profile) ProjectCandidates() []string {
	candidates := []string{p.ProjectUID}
	if p.Annotations != nil {
		candidates = append(candidates, p.Annotations["projectUid"])
	}
	candidates = append(candidates, p.SpecProjectUID)
	return candidates
}

// UsageSignal holds the three status lists that reference a profile.
// Values stay raw so a malformed field degrades to empty instead of failing
// the whole detail decode.
type UsageSignal struct {
	Clusters         json.RawMessage `json:"inUseClusters,omitempty"`
	ClusterUIDs      json.RawMessage `json:"inUseClusterUids,omitempty"`
	ClusterTemplates json.RawMessage `json:"inUseClusterTemplates,omitempty"`
}

// ListLen returns the element count of a raw JSON list. Anything that is not
// a JSON array counts as zero.
func ListLen(raw json.RawMessage) int {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return 0
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return 0
	}
	return len(items)
}

// ProfileDetail is the detailed view of a profile including usage status.
type ProfileDetail struct {
	Profile *Profile        `json:"profile"`
	Usage   UsageSignal     `json:"usage"`
	Raw     json.RawMessage `json:"raw"`
}
