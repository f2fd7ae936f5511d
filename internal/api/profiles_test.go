package api

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/profilespectre/internal/models"
)

func TestListProjects(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/projects", r.URL.Path)
		_, _ = io.WriteString(w, `{"items":[
			{"metadata":{"uid":"u1","name":"Default"}},
			{"metadata":{"uid":"","name":"broken"}},
			{"metadata":{"uid":"u2","name":"proj-a"}}
		]}`)
	})

	projects, err := client.ListProjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Project{{UID: "u1", Name: "Default"}, {UID: "u2", Name: "proj-a"}}, projects)
}

func TestListProfilesNormalizesLooseFields(t *testing.T) {
	var scope string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		scope = r.Header.Get(HeaderProjectUID)
		_, _ = io.WriteString(w, `{"items":[
			{"metadata":{"uid":"a","name":"web","annotations":{"scope":"tenant"}},"spec":{"version":"1.0.0"}},
			{"metadata":{"uid":"b","name":"db","annotations":{"scope":"project","projectUid":"p-9"}},"spec":{"version":2,"projectUid":"p-9"}},
			{"metadata":{"uid":"c","name":"edge","annotations":null},"spec":{"published":{"profileVersion":"3.1"}}},
			{"metadata":{"uid":"d","name":"sys","annotations":{"scope":"system","managed":true}}},
			{"metadata":{"name":"no-uid"}}
		]}`)
	})

	profiles, err := client.ListProfiles(context.Background(), "p-9")
	require.NoError(t, err)
	assert.Equal(t, "p-9", scope)
	require.Len(t, profiles, 4)

	assert.Equal(t, models.ScopeTenant, profiles[0].Scope)
	assert.Equal(t, "1.0.0", profiles[0].Version)

	assert.Equal(t, "2", profiles[1].Version)
	assert.Equal(t, "p-9", profiles[1].SpecProjectUID)
	assert.Equal(t, "p-9", profiles[1].Annotations["projectUid"])

	assert.Equal(t, models.ScopeProject, profiles[2].Scope, "absent scope defaults to project")
	assert.Equal(t, "3.1", profiles[2].Version)

	assert.Equal(t, models.ScopeSystem, profiles[3].Scope)
	assert.Equal(t, "true", profiles[3].Annotations["managed"])
}

func TestGetProfileKeepsRawSnapshot(t *testing.T) {
	body := `{"metadata":{"uid":"p1","name":"web","annotations":{"scope":"tenant"}},"spec":{"version":"1.0.0"},"status":{"inUseClusterUids":["c1"],"inUseClusters":null}}`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/clusterprofiles/p1", r.URL.Path)
		_, _ = io.WriteString(w, body)
	})

	detail, err := client.GetProfile(context.Background(), "p1", "")
	require.NoError(t, err)
	assert.Equal(t, "web", detail.Profile.Name)
	assert.Equal(t, 1, models.ListLen(detail.Usage.ClusterUIDs))
	assert.Equal(t, 0, models.ListLen(detail.Usage.Clusters))
	assert.JSONEq(t, body, string(detail.Raw))
}

func TestDeleteProfile(t *testing.T) {
	var method, path, scope string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path, scope = r.Method, r.URL.Path, r.Header.Get(HeaderProjectUID)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteProfile(context.Background(), "p1", "proj-1"))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/v1/clusterprofiles/p1", path)
	assert.Equal(t, "proj-1", scope)
}

func TestExportProfile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/clusterprofiles/p1/export", r.URL.Path)
		_, _ = io.WriteString(w, "exported-bytes")
	})

	data, err := client.ExportProfile(context.Background(), "p1", "")
	require.NoError(t, err)
	assert.Equal(t, "exported-bytes", string(data))
}

func TestListProfilesRejectsMalformedPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"items":"nope"}`)
	})

	_, err := client.ListProfiles(context.Background(), "")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}
