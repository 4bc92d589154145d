package app

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/kastheco/craftdeck/config/auditlog"
	"github.com/kastheco/craftdeck/launcher"
)

// fakeBackend is an in-memory launcher.Backend.
type fakeBackend struct {
	mu sync.Mutex

	accounts  []launcher.Account
	instances []launcher.Instance
	versions  []launcher.GameVersion
	files     map[string]map[string]launcher.ProjectFile // instance id -> file id -> file
	hits      []launcher.SearchHit
	projects  map[string]launcher.ProjectDetail
	logs      map[string]string
	running   map[string]bool
	events    []auditlog.Event

	// createGate, when set, blocks CreateInstance until it is closed.
	createGate chan struct{}
	createErr  error

	searches     []launcher.SearchQuery
	edits        int
	runningPolls int
	nextID       int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		versions: []launcher.GameVersion{
			{Version: "1.20.1", VersionType: launcher.ReleaseType},
			{Version: "1.19.4", VersionType: launcher.ReleaseType},
		},
		files:    make(map[string]map[string]launcher.ProjectFile),
		projects: make(map[string]launcher.ProjectDetail),
		logs:     make(map[string]string),
		running:  make(map[string]bool),
	}
}

func (f *fakeBackend) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

// addInstance seeds an installed instance.
func (f *fakeBackend) addInstance(name string, loader launcher.Loader) launcher.Instance {
	f.mu.Lock()
	defer f.mu.Unlock()
	inst := launcher.Instance{
		ID:          f.id("inst"),
		Name:        name,
		GameVersion: "1.20.1",
		Loader:      loader,
		Stage:       launcher.StageInstalled,
		Created:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.instances = append(f.instances, inst)
	f.files[inst.ID] = make(map[string]launcher.ProjectFile)
	return inst
}

func (f *fakeBackend) addFile(instID string, file launcher.ProjectFile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[instID][file.ID] = file
}

func (f *fakeBackend) find(id string) (int, error) {
	i := slices.IndexFunc(f.instances, func(inst launcher.Instance) bool { return inst.ID == id })
	if i < 0 {
		return -1, launcher.ErrInstanceNotFound
	}
	return i, nil
}

func (f *fakeBackend) ListAccounts(context.Context) ([]launcher.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.accounts), nil
}

func (f *fakeBackend) AddAccount(_ context.Context, username string) (launcher.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Username == username {
			return launcher.Account{}, launcher.ErrAccountExists
		}
	}
	acc := launcher.Account{ID: f.id("acc"), Username: username, Added: time.Now()}
	f.accounts = append(f.accounts, acc)
	return acc, nil
}

func (f *fakeBackend) ListInstances(context.Context) ([]launcher.Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.instances), nil
}

func (f *fakeBackend) GameVersions(context.Context) ([]launcher.GameVersion, error) {
	return f.versions, nil
}

func (f *fakeBackend) CreateInstance(ctx context.Context, req launcher.CreateRequest) (launcher.Instance, error) {
	if f.createGate != nil {
		select {
		case <-f.createGate:
		case <-ctx.Done():
			return launcher.Instance{}, ctx.Err()
		}
	}
	if f.createErr != nil {
		return launcher.Instance{}, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	inst := launcher.Instance{
		ID:          f.id("inst"),
		Name:        req.Name,
		GameVersion: req.GameVersion,
		Loader:      req.Loader,
		Stage:       launcher.StageInstalled,
		Created:     time.Now(),
	}
	f.instances = append(f.instances, inst)
	f.files[inst.ID] = make(map[string]launcher.ProjectFile)
	f.events = append(f.events, auditlog.Event{Kind: auditlog.EventInstanceCreated, Timestamp: time.Now(), Instance: inst.Name, Message: "created " + inst.Name})
	return inst, nil
}

func (f *fakeBackend) EditInstance(_ context.Context, id string, mutate func(*launcher.Instance)) (launcher.Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, err := f.find(id)
	if err != nil {
		return launcher.Instance{}, err
	}
	mutate(&f.instances[i])
	f.edits++
	return f.instances[i], nil
}

func (f *fakeBackend) DeleteInstance(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, err := f.find(id)
	if err != nil {
		return err
	}
	f.instances = slices.Delete(f.instances, i, i+1)
	delete(f.files, id)
	return nil
}

func (f *fakeBackend) InstancePath(_ context.Context, id string) (string, error) {
	return "/tmp/instances/" + id, nil
}

func (f *fakeBackend) OpenFolder(context.Context, string) error { return nil }

func (f *fakeBackend) UpdateLoader(_ context.Context, id string) (launcher.Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, err := f.find(id)
	if err != nil {
		return launcher.Instance{}, err
	}
	if f.instances[i].Loader == launcher.LoaderVanilla {
		return launcher.Instance{}, launcher.ErrNoLoader
	}
	f.instances[i].LoaderVersion = "9.9.9"
	return f.instances[i], nil
}

func (f *fakeBackend) RunInstance(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running[id] {
		return launcher.ErrAlreadyRunning
	}
	f.running[id] = true
	return nil
}

func (f *fakeBackend) IsRunning(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runningPolls++
	return f.running[id], nil
}

func (f *fakeBackend) polls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runningPolls
}

func (f *fakeBackend) TailLog(_ context.Context, id string, cursor int64) (launcher.LogChunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.logs[id]
	if cursor > int64(len(out)) {
		cursor = 0
	}
	return launcher.LogChunk{Output: out[cursor:], Cursor: int64(len(out))}, nil
}

func (f *fakeBackend) appendLog(id, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs[id] += text
}

func (f *fakeBackend) ListFiles(_ context.Context, id string) (map[string]launcher.ProjectFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	files, ok := f.files[id]
	if !ok {
		return nil, launcher.ErrInstanceNotFound
	}
	out := make(map[string]launcher.ProjectFile, len(files))
	for k, v := range files {
		out[k] = v
	}
	return out, nil
}

func (f *fakeBackend) ToggleFile(_ context.Context, id, fileID string) (launcher.ProjectFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[id][fileID]
	if !ok {
		return launcher.ProjectFile{}, launcher.ErrFileNotFound
	}
	if file.Disabled() {
		file.FileName = strings.TrimSuffix(file.FileName, launcher.DisabledSuffix)
	} else {
		file.FileName += launcher.DisabledSuffix
	}
	f.files[id][fileID] = file
	return file, nil
}

func (f *fakeBackend) RemoveFile(_ context.Context, id, fileID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[id][fileID]; !ok {
		return launcher.ErrFileNotFound
	}
	delete(f.files[id], fileID)
	return nil
}

func (f *fakeBackend) Search(_ context.Context, q launcher.SearchQuery) (launcher.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, q)
	var matched []launcher.SearchHit
	for _, h := range f.hits {
		if q.Query == "" || strings.Contains(strings.ToLower(h.Title), strings.ToLower(q.Query)) {
			matched = append(matched, h)
		}
	}
	start := min(q.Offset, len(matched))
	end := min(start+q.Limit, len(matched))
	return launcher.SearchResult{Hits: matched[start:end], Offset: q.Offset, Limit: q.Limit, TotalHits: len(matched)}, nil
}

func (f *fakeBackend) Project(_ context.Context, projectID string) (launcher.ProjectDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[projectID]
	if !ok {
		return launcher.ProjectDetail{}, &launcher.APIError{Method: "GET", URL: "/project/" + projectID, Status: 404}
	}
	return p, nil
}

func (f *fakeBackend) InstallProject(_ context.Context, id, projectID string) (launcher.ProjectFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[id]; !ok {
		return launcher.ProjectFile{}, launcher.ErrInstanceNotFound
	}
	file := launcher.ProjectFile{
		ID:        f.id("file"),
		FileName:  projectID + ".jar",
		Kind:      launcher.KindMod,
		Size:      1024,
		ProjectID: projectID,
	}
	f.files[id][file.ID] = file
	return file, nil
}

func (f *fakeBackend) InstallPack(context.Context, string) (launcher.Instance, error) {
	return launcher.Instance{}, launcher.ErrInvalidPack
}

func (f *fakeBackend) RecentActivity(_ context.Context, limit int) ([]auditlog.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := slices.Clone(f.events)
	slices.Reverse(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
