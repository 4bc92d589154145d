package launcher

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kastheco/craftdeck/cmd"
	"github.com/kastheco/craftdeck/config"
	"github.com/kastheco/craftdeck/config/auditlog"
	"github.com/kastheco/craftdeck/log"
	"github.com/kastheco/craftdeck/session/process"
)

const (
	instancesDir  = "instances"
	logFile       = "logs/latest.log"
	storeFileName = "craftdeck.db"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,16}$`)

// Options wires a Service. Store, Modrinth and DataDir are required.
type Options struct {
	DataDir     string
	JavaCommand string
	LaunchArgs  []string
	RunningTTL  time.Duration

	Store     *Store
	Modrinth  *ModrinthClient
	Processes *process.Manager
	Audit     auditlog.Logger
	Executor  cmd.Executor
}

// Service is the Backend used by the binary.
type Service struct {
	dataDir    string
	java       string
	launchArgs []string

	store    *Store
	modrinth *ModrinthClient
	procs    *process.Manager
	audit    auditlog.Logger
	exec     cmd.Executor
	running  *runningCache
	now      func() time.Time

	// serialises slug allocation
	createMu sync.Mutex
}

var _ Backend = (*Service)(nil)

// NewService builds a Service from opts, filling optional collaborators
// with their defaults.
func NewService(opts Options) (*Service, error) {
	if opts.Store == nil || opts.Modrinth == nil {
		return nil, errors.New("launcher: store and modrinth client are required")
	}
	if opts.DataDir == "" {
		return nil, errors.New("launcher: data dir is required")
	}
	if err := os.MkdirAll(filepath.Join(opts.DataDir, instancesDir), 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if opts.Processes == nil {
		opts.Processes = process.NewManager(nil)
	}
	if opts.Audit == nil {
		opts.Audit = auditlog.NopLogger()
	}
	if opts.Executor == nil {
		opts.Executor = cmd.MakeExecutor()
	}
	if opts.RunningTTL <= 0 {
		opts.RunningTTL = 10 * time.Second
	}
	if opts.JavaCommand == "" {
		opts.JavaCommand = "java"
	}
	return &Service{
		dataDir:    opts.DataDir,
		java:       opts.JavaCommand,
		launchArgs: opts.LaunchArgs,
		store:      opts.Store,
		modrinth:   opts.Modrinth,
		procs:      opts.Processes,
		audit:      opts.Audit,
		exec:       opts.Executor,
		running:    newRunningCache(opts.RunningTTL),
		now:        time.Now,
	}, nil
}

// activityRetention is how long activity events are kept.
const activityRetention = 90 * 24 * time.Hour

// StorePath is where Open keeps the launcher database under dataDir.
func StorePath(dataDir string) string {
	return filepath.Join(dataDir, storeFileName)
}

// Open builds the Service described by cfg. The store and the activity log
// share one database file under the data dir.
func Open(cfg *config.Config, userAgent string) (*Service, error) {
	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	store, err := NewStore(StorePath(dataDir))
	if err != nil {
		return nil, err
	}
	audit, err := auditlog.NewSQLiteLogger(StorePath(dataDir))
	if err != nil {
		store.Close()
		return nil, err
	}
	if n, err := audit.Prune(time.Now().Add(-activityRetention)); err != nil {
		log.WarningLog.Printf("%v", err)
	} else if n > 0 {
		log.InfoLog.Printf("pruned %d old activity events", n)
	}

	svc, err := NewService(Options{
		DataDir:     dataDir,
		JavaCommand: cfg.JavaCommand,
		LaunchArgs:  cfg.GetLaunchArgs(),
		RunningTTL:  cfg.RunningCacheTTL(),
		Store:       store,
		Modrinth:    NewModrinthClient(cfg.GetModrinthURL(), cfg.GetLauncherMetaURL(), userAgent, nil),
		Audit:       audit,
	})
	if err != nil {
		store.Close()
		audit.Close()
		return nil, err
	}
	return svc, nil
}

// Close stops every running instance and releases the databases.
func (s *Service) Close() error {
	s.procs.StopAll(5 * time.Second)
	return errors.Join(s.store.Close(), s.audit.Close())
}

func (s *Service) emit(kind auditlog.EventKind, msg string, opts ...auditlog.EventOption) {
	s.audit.Emit(auditlog.NewEvent(kind, msg, opts...))
}

func (s *Service) dirOf(inst Instance) string {
	return filepath.Join(s.dataDir, instancesDir, inst.Slug)
}

func (s *Service) ListAccounts(_ context.Context) ([]Account, error) {
	return s.store.ListAccounts()
}

// AddAccount registers an offline account. Usernames follow the game's rules:
// 3 to 16 letters, digits or underscores.
func (s *Service) AddAccount(_ context.Context, username string) (Account, error) {
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return Account{}, fmt.Errorf("invalid username %q: use 3-16 letters, digits or underscores", username)
	}
	acct := Account{ID: uuid.NewString(), Username: username, Added: s.now()}
	if err := s.store.CreateAccount(acct); err != nil {
		return Account{}, err
	}
	s.emit(auditlog.EventAccountAdded, "added account "+username)
	return acct, nil
}

func (s *Service) ListInstances(_ context.Context) ([]Instance, error) {
	return s.store.ListInstances()
}

func (s *Service) GameVersions(ctx context.Context) ([]GameVersion, error) {
	return s.modrinth.GameVersions(ctx)
}

// CreateInstance records the instance, lays out its directory and resolves
// the loader build. An instance whose install failed is kept with the
// not_installed stage so the user can delete it.
func (s *Service) CreateInstance(ctx context.Context, req CreateRequest) (Instance, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return Instance{}, errors.New("instance name is required")
	}
	if req.GameVersion == "" {
		return Instance{}, errors.New("game version is required")
	}
	if req.Loader == "" {
		req.Loader = LoaderVanilla
	}
	if _, err := ParseLoader(string(req.Loader)); err != nil {
		return Instance{}, err
	}

	s.createMu.Lock()
	slug, err := s.allocateSlug(req.Name)
	if err != nil {
		s.createMu.Unlock()
		return Instance{}, err
	}
	now := s.now()
	inst := Instance{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Slug:          slug,
		GameVersion:   req.GameVersion,
		Loader:        req.Loader,
		LoaderVersion: req.LoaderVersion,
		Stage:         StageInstalling,
		Created:       now,
		Modified:      now,
	}
	err = s.store.CreateInstance(inst)
	s.createMu.Unlock()
	if err != nil {
		return Instance{}, err
	}
	s.emit(auditlog.EventInstanceCreated, "created "+inst.Name, auditlog.WithInstance(inst.ID))

	if err := s.install(ctx, &inst); err != nil {
		inst.Stage = StageNotInstalled
		inst.Modified = s.now()
		if uerr := s.store.UpdateInstance(inst); uerr != nil {
			log.ErrorLog.Printf("mark %s not installed: %v", inst.ID, uerr)
		}
		s.emit(auditlog.EventError, "install failed: "+err.Error(),
			auditlog.WithInstance(inst.ID), auditlog.WithLevel("error"))
		return inst, fmt.Errorf("install %s: %w", inst.Name, err)
	}

	inst.Stage = StageInstalled
	inst.Modified = s.now()
	if err := s.store.UpdateInstance(inst); err != nil {
		return inst, err
	}
	s.emit(auditlog.EventInstanceInstalled, "installed "+inst.VersionLabel(), auditlog.WithInstance(inst.ID))
	return inst, nil
}

func (s *Service) install(ctx context.Context, inst *Instance) error {
	dir := s.dirOf(*inst)
	for _, sub := range []string{"logs", KindMod.Folder(), KindResourcepack.Folder(), KindShaderpack.Folder()} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return fmt.Errorf("create %s: %w", sub, err)
		}
	}
	if inst.Loader == LoaderVanilla || inst.LoaderVersion != "" {
		return nil
	}
	v, err := s.modrinth.LoaderVersion(ctx, inst.Loader, inst.GameVersion)
	if err != nil {
		return err
	}
	inst.LoaderVersion = v
	return nil
}

// allocateSlug picks a free directory name for name. Callers hold createMu.
func (s *Service) allocateSlug(name string) (string, error) {
	base := slugify(name)
	slug := base
	for i := 2; ; i++ {
		taken, err := s.store.SlugTaken(slug)
		if err != nil {
			return "", err
		}
		if _, statErr := os.Stat(filepath.Join(s.dataDir, instancesDir, slug)); !taken && errors.Is(statErr, os.ErrNotExist) {
			return slug, nil
		}
		slug = base + "-" + strconv.Itoa(i)
	}
}

func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "instance"
	}
	return slug
}

// EditInstance applies mutate to a copy of the instance and saves it. The
// ID, directory and timestamps cannot be changed through mutate.
func (s *Service) EditInstance(_ context.Context, id string, mutate func(*Instance)) (Instance, error) {
	inst, err := s.store.GetInstance(id)
	if err != nil {
		return Instance{}, err
	}
	next := inst
	mutate(&next)
	next.Name = strings.TrimSpace(next.Name)
	if next.Name == "" {
		return Instance{}, errors.New("instance name is required")
	}
	next.ID, next.Slug, next.Created = inst.ID, inst.Slug, inst.Created
	next.Modified = s.now()
	if err := s.store.UpdateInstance(next); err != nil {
		return Instance{}, err
	}
	s.emit(auditlog.EventInstanceEdited, "edited "+next.Name, auditlog.WithInstance(id))
	return next, nil
}

// DeleteInstance removes the instance and its directory. Running instances
// cannot be deleted.
func (s *Service) DeleteInstance(_ context.Context, id string) error {
	inst, err := s.store.GetInstance(id)
	if err != nil {
		return err
	}
	if s.procs.IsRunning(id) {
		return fmt.Errorf("cannot delete %s: %w", inst.Name, ErrAlreadyRunning)
	}
	if err := s.store.DeleteInstance(id); err != nil {
		return err
	}
	s.running.forget(id)
	if err := os.RemoveAll(s.dirOf(inst)); err != nil {
		return fmt.Errorf("remove %s: %w", s.dirOf(inst), err)
	}
	s.emit(auditlog.EventInstanceDeleted, "deleted "+inst.Name, auditlog.WithInstance(id))
	return nil
}

func (s *Service) InstancePath(_ context.Context, id string) (string, error) {
	inst, err := s.store.GetInstance(id)
	if err != nil {
		return "", err
	}
	return s.dirOf(inst), nil
}

// OpenFolder opens the instance directory in the desktop file manager.
func (s *Service) OpenFolder(ctx context.Context, id string) error {
	dir, err := s.InstancePath(ctx, id)
	if err != nil {
		return err
	}
	opener := "xdg-open"
	if runtime.GOOS == "darwin" {
		opener = "open"
	}
	c := exec.Command(opener, dir)
	if err := s.exec.Run(c); err != nil {
		return fmt.Errorf("%s: %w", cmd.ToString(c), err)
	}
	return nil
}

// UpdateLoader moves the instance to the newest loader build for its game
// version.
func (s *Service) UpdateLoader(ctx context.Context, id string) (Instance, error) {
	inst, err := s.store.GetInstance(id)
	if err != nil {
		return Instance{}, err
	}
	if inst.Loader == LoaderVanilla {
		return Instance{}, ErrNoLoader
	}
	v, err := s.modrinth.LoaderVersion(ctx, inst.Loader, inst.GameVersion)
	if err != nil {
		return Instance{}, err
	}
	if v == inst.LoaderVersion {
		return inst, nil
	}
	prev := inst.LoaderVersion
	inst.LoaderVersion = v
	inst.Modified = s.now()
	if err := s.store.UpdateInstance(inst); err != nil {
		return Instance{}, err
	}
	s.emit(auditlog.EventInstanceEdited, fmt.Sprintf("updated %s %s -> %s", inst.Loader, prev, v),
		auditlog.WithInstance(id))
	return inst, nil
}

// RunInstance launches the game under a pty. Output goes to logs/latest.log.
func (s *Service) RunInstance(_ context.Context, id string) error {
	inst, err := s.store.GetInstance(id)
	if err != nil {
		return err
	}
	if !inst.Installed() {
		return fmt.Errorf("%s is not installed", inst.Name)
	}
	dir := s.dirOf(inst)
	argv := launchCommand(s.java, s.launchArgs, inst, dir)
	if err := s.procs.Launch(id, dir, argv, filepath.Join(dir, filepath.FromSlash(logFile))); err != nil {
		return err
	}
	s.running.set(id, true)

	inst.LastPlayed = s.now()
	if err := s.store.UpdateInstance(inst); err != nil {
		log.WarningLog.Printf("record last played for %s: %v", id, err)
	}
	s.emit(auditlog.EventInstanceLaunched, "launched "+inst.Name, auditlog.WithInstance(id))
	return nil
}

// IsRunning answers from a short-lived cache; concurrent callers share one
// check.
func (s *Service) IsRunning(_ context.Context, id string) (bool, error) {
	return s.running.get(id, func() (bool, error) {
		return s.procs.IsRunning(id), nil
	})
}

// TailLog returns log output written after cursor. A cursor past the end
// means the log was truncated by a relaunch, so reading starts over.
func (s *Service) TailLog(ctx context.Context, id string, cursor int64) (LogChunk, error) {
	dir, err := s.InstancePath(ctx, id)
	if err != nil {
		return LogChunk{}, err
	}
	f, err := os.Open(filepath.Join(dir, filepath.FromSlash(logFile)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return LogChunk{Cursor: 0}, nil
		}
		return LogChunk{}, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return LogChunk{}, fmt.Errorf("stat log: %w", err)
	}
	if cursor < 0 || cursor > info.Size() {
		cursor = 0
	}
	if _, err := f.Seek(cursor, io.SeekStart); err != nil {
		return LogChunk{}, fmt.Errorf("seek log: %w", err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return LogChunk{}, fmt.Errorf("read log: %w", err)
	}
	return LogChunk{Output: string(data), Cursor: cursor + int64(len(data))}, nil
}

func (s *Service) ListFiles(ctx context.Context, id string) (map[string]ProjectFile, error) {
	inst, err := s.store.GetInstance(id)
	if err != nil {
		return nil, err
	}
	meta, err := s.store.FileMetas(id)
	if err != nil {
		return nil, err
	}
	return scanFiles(s.dirOf(inst), meta)
}

func (s *Service) findFile(ctx context.Context, id, fileID string) (Instance, ProjectFile, error) {
	inst, err := s.store.GetInstance(id)
	if err != nil {
		return Instance{}, ProjectFile{}, err
	}
	files, err := s.ListFiles(ctx, id)
	if err != nil {
		return Instance{}, ProjectFile{}, err
	}
	f, ok := files[fileID]
	if !ok {
		return Instance{}, ProjectFile{}, fmt.Errorf("%w: %s", ErrFileNotFound, fileID)
	}
	return inst, f, nil
}

// ToggleFile enables a disabled file or disables an enabled one.
func (s *Service) ToggleFile(ctx context.Context, id, fileID string) (ProjectFile, error) {
	inst, f, err := s.findFile(ctx, id, fileID)
	if err != nil {
		return ProjectFile{}, err
	}
	next, err := toggleFile(s.dirOf(inst), f)
	if err != nil {
		return ProjectFile{}, err
	}
	state := "enabled "
	if next.Disabled() {
		state = "disabled "
	}
	s.emit(auditlog.EventFileToggled, state+next.DisplayName(),
		auditlog.WithInstance(id), auditlog.WithFile(next.FileName), auditlog.WithProject(next.ProjectID))
	return next, nil
}

func (s *Service) RemoveFile(ctx context.Context, id, fileID string) error {
	inst, f, err := s.findFile(ctx, id, fileID)
	if err != nil {
		return err
	}
	if err := removeFile(s.dirOf(inst), f); err != nil {
		return err
	}
	if err := s.store.DeleteFileMeta(id, f.ID); err != nil {
		log.WarningLog.Printf("forget %s metadata: %v", f.FileName, err)
	}
	s.emit(auditlog.EventFileRemoved, "removed "+f.DisplayName(),
		auditlog.WithInstance(id), auditlog.WithFile(f.FileName), auditlog.WithProject(f.ProjectID))
	return nil
}

func (s *Service) Search(ctx context.Context, q SearchQuery) (SearchResult, error) {
	return s.modrinth.Search(ctx, q)
}

func (s *Service) Project(ctx context.Context, projectID string) (ProjectDetail, error) {
	return s.modrinth.Project(ctx, projectID)
}

// InstallProject downloads the primary file of the newest version of the
// project that matches the instance's game version and loader.
func (s *Service) InstallProject(ctx context.Context, id, projectID string) (ProjectFile, error) {
	inst, err := s.store.GetInstance(id)
	if err != nil {
		return ProjectFile{}, err
	}
	versions, err := s.modrinth.ProjectVersions(ctx, projectID, inst.GameVersion, inst.Loader)
	if err != nil {
		return ProjectFile{}, err
	}
	if len(versions) == 0 {
		return ProjectFile{}, fmt.Errorf("%w: %s for %s", ErrNoCompatibleVersion, projectID, inst.VersionLabel())
	}
	v := versions[0]
	mf, ok := v.PrimaryFile()
	if !ok {
		return ProjectFile{}, fmt.Errorf("%w: version %s has no files", ErrNoCompatibleVersion, v.ID)
	}

	kind := KindFromLoaders(v.Loaders)
	name := filepath.Base(mf.Filename)
	if name == "." || name == "/" || name == "" {
		return ProjectFile{}, fmt.Errorf("bad file name %q", mf.Filename)
	}
	dest := filepath.Join(s.dirOf(inst), kind.Folder(), name)
	size, err := s.modrinth.Download(ctx, mf.URL, dest, mf.Hashes["sha1"])
	if err != nil {
		return ProjectFile{}, err
	}
	sum, err := hashFile(dest)
	if err != nil {
		return ProjectFile{}, err
	}
	if err := s.store.PutFileMeta(id, sum, FileMeta{ProjectID: v.ProjectID, VersionID: v.ID}); err != nil {
		return ProjectFile{}, err
	}

	f := ProjectFile{
		ID:        sum,
		FileName:  name,
		Kind:      kind,
		Size:      size,
		ProjectID: v.ProjectID,
		VersionID: v.ID,
	}
	s.emit(auditlog.EventProjectInstalled, "installed "+f.DisplayName(),
		auditlog.WithInstance(id), auditlog.WithProject(v.ProjectID), auditlog.WithFile(name))
	return f, nil
}

// InstallPack creates an instance from a .mrpack file.
func (s *Service) InstallPack(ctx context.Context, path string) (Instance, error) {
	zr, index, err := openPack(path)
	if err != nil {
		return Instance{}, err
	}
	defer zr.Close()

	req, err := index.createRequest()
	if err != nil {
		return Instance{}, err
	}
	inst, err := s.CreateInstance(ctx, req)
	if err != nil {
		return inst, err
	}

	if err := s.installPackFiles(ctx, inst, index, &zr.Reader); err != nil {
		inst.Stage = StageNotInstalled
		inst.Modified = s.now()
		if uerr := s.store.UpdateInstance(inst); uerr != nil {
			log.ErrorLog.Printf("mark %s not installed: %v", inst.ID, uerr)
		}
		return inst, fmt.Errorf("install pack %s: %w", index.Name, err)
	}
	s.emit(auditlog.EventPackInstalled, fmt.Sprintf("installed pack %s %s", index.Name, index.VersionID),
		auditlog.WithInstance(inst.ID), auditlog.WithFile(filepath.Base(path)))
	return inst, nil
}

func (s *Service) installPackFiles(ctx context.Context, inst Instance, index *packIndex, zr *zip.Reader) error {
	dir := s.dirOf(inst)
	for _, f := range index.Files {
		if !f.forClient() {
			continue
		}
		dest, err := safeJoin(dir, f.Path)
		if err != nil {
			return err
		}
		if len(f.Downloads) == 0 {
			return fmt.Errorf("%w: %s has no download", ErrInvalidPack, f.Path)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.modrinth.Download(ctx, f.Downloads[0], dest, f.Hashes["sha1"]); err != nil {
			return err
		}
	}
	n, err := extractOverrides(zr, dir)
	if err != nil {
		return err
	}
	log.InfoLog.Printf("pack %s: %d files, %d overrides", index.Name, len(index.Files), n)
	return nil
}

func (s *Service) RecentActivity(_ context.Context, limit int) ([]auditlog.Event, error) {
	return s.audit.Query(auditlog.QueryFilter{Limit: limit})
}
