package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ppiankov/profilespectre/internal/models"
)

const (
	projectsPath        = "/v1/projects"
	clusterProfilesPath = "/v1/clusterprofiles"
)

// ListProjects fetches the project registry.
func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	resp, err := c.Execute(ctx, http.MethodGet, projectsPath, nil, "")
	if err != nil {
		return nil, err
	}

	var payload struct {
		Items []struct {
			Metadata itemMetadata `json:"metadata"`
		} `json:"items"`
	}
	if err := decode(resp, http.MethodGet, projectsPath, &payload); err != nil {
		return nil, err
	}

	projects := make([]models.Project, 0, len(payload.Items))
	for _, item := range payload.Items {
		uid := item.Metadata.UID.String()
		if uid == "" {
			continue
		}
		projects = append(projects, models.Project{
			UID:  uid,
			Name: item.Metadata.Name.String(),
		})
	}
	return projects, nil
}

// ListProfiles fetches cluster profiles visible in the given scope. An empty
// projectUID lists the tenant scope.
func (c *Client) ListProfiles(ctx context.Context, projectUID string) ([]*models.Profile, error) {
	resp, err := c.Execute(ctx, http.MethodGet, clusterProfilesPath, nil, projectUID)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Items []profileItem `json:"items"`
	}
	if err := decode(resp, http.MethodGet, clusterProfilesPath, &payload); err != nil {
		return nil, err
	}

	profiles := make([]*models.Profile, 0, len(payload.Items))
	for _, item := range payload.Items {
		profile := item.toProfile()
		if profile.UID == "" {
			continue
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// GetProfile fetches the detailed view of a profile including usage status.
func (c *Client) GetProfile(ctx context.Context, uid, projectUID string) (*models.ProfileDetail, error) {
	path := profilePath(uid)
	resp, err := c.Execute(ctx, http.MethodGet, path, nil, projectUID)
	if err != nil {
		return nil, err
	}

	var item profileItem
	if err := decode(resp, http.MethodGet, path, &item); err != nil {
		return nil, err
	}

	return &models.ProfileDetail{
		Profile: item.toProfile(),
		Usage:   item.Status,
		Raw:     resp.Body,
	}, nil
}

// DeleteProfile removes a profile. A 204 is the expected success.
func (c *Client) DeleteProfile(ctx context.Context, uid, projectUID string) error {
	_, err := c.Execute(ctx, http.MethodDelete, profilePath(uid), nil, projectUID)
	return err
}

// ExportProfile downloads the platform's structured export of a profile.
func (c *Client) ExportProfile(ctx context.Context, uid, projectUID string) ([]byte, error) {
	return c.ExecuteRaw(ctx, profilePath(uid)+"/export", projectUID)
}

func profilePath(uid string) string {
	return clusterProfilesPath + "/" + url.PathEscape(uid)
}

func decode(resp *Response, method, path string, destination any) error {
	if resp == nil || resp.Empty {
		return fmt.Errorf("%w: %s %s: expected a JSON body", ErrMalformedResponse, method, path)
	}
	if err := json.Unmarshal(resp.Body, destination); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", ErrMalformedResponse, method, path, err)
	}
	return nil
}

type itemMetadata struct {
	UID         looseString            `json:"uid"`
	Name        looseString            `json:"name"`
	Annotations map[string]looseString `json:"annotations"`
}

type profileItem struct {
	Metadata itemMetadata `json:"metadata"`
	Spec     struct {
		Version    looseString `json:"version"`
		ProjectUID looseString `json:"projectUid"`
		Published  *struct {
			ProfileVersion looseString `json:"profileVersion"`
		} `json:"published"`
	} `json:"spec"`
	Status models.UsageSignal `json:"status"`
}

func (item profileItem) toProfile() *models.Profile {
	annotations := make(map[string]string, len(item.Metadata.Annotations))
	for key, value := range item.Metadata.Annotations {
		annotations[key] = value.String()
	}

	version := item.Spec.Version.String()
	if version == "" && item.Spec.Published != nil {
		version = item.Spec.Published.ProfileVersion.String()
	}
	if version == "" {
		version = annotations["version"]
	}

	return &models.Profile{
		UID:            item.Metadata.UID.String(),
		Name:           item.Metadata.Name.String(),
		Version:        version,
		Scope:          models.ParseScope(annotations["scope"]),
		Annotations:    annotations,
		SpecProjectUID: item.Spec.ProjectUID.String(),
	}
}

// looseString accepts strings, numbers, booleans and null. Anything else
// decodes to the empty string.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*s = ""
		return nil
	}

	switch trimmed[0] {
	case '"':
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return err
		}
		*s = looseString(strings.TrimSpace(value))
	case 't', 'f':
		*s = looseString(strconv.FormatBool(trimmed[0] == 't'))
	case '{', '[':
		*s = ""
	default:
		*s = looseString(trimmed)
	}
	return nil
}

func (s looseString) String() string {
	return string(s)
}
