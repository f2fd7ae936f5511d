package cleanup

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ppiankov/profilespectre/internal/api"
	"github.com/ppiankov/profilespectre/internal/collector"
	"github.com/ppiankov/profilespectre/internal/projects"
	"github.com/ppiankov/profilespectre/pkg/config"
)

type fakeProfile struct {
	uid        string
	name       string
	version    string
	scope      string
	project    string // owning project uid, empty for tenant/system
	clusterIDs []string
}

// fakeAPI is an in-memory management API.
type fakeAPI struct {
	mu         sync.Mutex
	projects   map[string]string // uid -> name
	order      []string
	profiles   []fakeProfile
	exportFail bool
	detailFail map[string]bool
	deleteFail map[string]bool

	deletes []string // "uid@projectUid"
	details []string
	exports []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		projects:   map[string]string{},
		detailFail: map[string]bool{},
		deleteFail: map[string]bool{},
	}
}

func (f *fakeAPI) addProject(uid, name string) {
	f.projects[uid] = name
	f.order = append(f.order, uid)
}

func (f *fakeAPI) item(p fakeProfile, withStatus bool) map[string]any {
	annotations := map[string]any{}
	if p.scope != "" {
		annotations["scope"] = p.scope
	}
	if p.project != "" {
		annotations["projectUid"] = p.project
	}
	item := map[string]any{
		"metadata": map[string]any{"uid": p.uid, "name": p.name, "annotations": annotations},
		"spec":     map[string]any{"version": p.version},
	}
	if withStatus {
		item["status"] = map[string]any{
			"inUseClusters":         nil,
			"inUseClusterUids":      p.clusterIDs,
			"inUseClusterTemplates": []string{},
		}
	}
	return item
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	scope := r.Header.Get(api.HeaderProjectUID)
	path := strings.TrimPrefix(r.URL.Path, "/v1/")

	switch {
	case path == "projects":
		var items []map[string]any
		for _, uid := range f.order {
			items = append(items, map[string]any{"metadata": map[string]any{"uid": uid, "name": f.projects[uid]}})
		}
		writeJSON(w, map[string]any{"items": items})

	case path == "clusterprofiles":
		items := []map[string]any{}
		for _, p := range f.profiles {
			visible := p.scope == "tenant" || p.scope == "system" || (scope != "" && p.project == scope)
			if visible {
				items = append(items, f.item(p, false))
			}
		}
		writeJSON(w, map[string]any{"items": items})

	case strings.HasSuffix(path, "/export"):
		uid := strings.TrimSuffix(strings.TrimPrefix(path, "clusterprofiles/"), "/export")
		f.exports = append(f.exports, uid)
		if f.exportFail {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("export unavailable"))
			return
		}
		_, _ = w.Write([]byte("export:" + uid))

	case strings.HasPrefix(path, "clusterprofiles/"):
		uid := strings.TrimPrefix(path, "clusterprofiles/")
		p, ok := f.find(uid)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"not found"}`))
			return
		}

		if r.Method == http.MethodDelete {
			f.deletes = append(f.deletes, uid+"@"+scope)
			if f.deleteFail[uid] {
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(`{"message":"locked"}`))
				return
			}
			f.remove(uid)
			w.WriteHeader(http.StatusNoContent)
			return
		}

		f.details = append(f.details, uid+"@"+scope)
		if f.detailFail[uid] {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("detail unavailable"))
			return
		}
		writeJSON(w, f.item(p, true))

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeAPI) find(uid string) (fakeProfile, bool) {
	for _, p := range f.profiles {
		if p.uid == uid {
			return p, true
		}
	}
	return fakeProfile{}, false
}

func (f *fakeAPI) remove(uid string) {
	kept := f.profiles[:0]
	for _, p := range f.profiles {
		if p.uid != uid {
			kept = append(kept, p)
		}
	}
	f.profiles = kept
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic(fmt.Sprintf("encode: %v", err))
	}
}

// harness wires a real client, registry and collector against fake.
type harness struct {
	cfg       *config.Config
	client    *api.Client
	collector *collector.Collector
	projectID string
}

func newHarness(t *testing.T, fake *fakeAPI, mutate func(*config.Config)) *harness {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	cfg := config.DefaultConfig()
	cfg.APIEndpoint = server.URL
	cfg.APIKey = "test-key"
	cfg.RateLimit = 0
	cfg.Timeout = 5 * time.Second
	cfg.OutputDir = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}
	cfg.Normalize()

	client, err := api.NewClient(cfg)
	require.NoError(t, err)

	registry := projects.NewRegistry(client, time.Minute)
	var projectUID string
	if cfg.HasProjectFilter() {
		projectUID, err = projects.NewResolver(registry).Resolve(testContext(t), cfg.Project)
		require.NoError(t, err)
	}

	return &harness{
		cfg:       cfg,
		client:    client,
		collector: collector.New(cfg, client, registry, projectUID),
		projectID: projectUID,
	}
}

func (h *harness) orchestrator(opts Options) *Orchestrator {
	opts.ProjectUID = h.projectID
	return New(h.cfg, h.client, h.collector, opts)
}
