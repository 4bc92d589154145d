// Package launcher implements the game-launcher backend: instances and
// accounts in sqlite, content from Modrinth, processes under a pty.
package launcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/kastheco/craftdeck/config/auditlog"
	"github.com/kastheco/craftdeck/session/process"
)

var (
	ErrInstanceNotFound    = errors.New("instance not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountExists       = errors.New("account already exists")
	ErrFileNotFound        = errors.New("file not found")
	ErrAlreadyRunning      = process.ErrAlreadyRunning
	ErrNoCompatibleVersion = errors.New("no compatible version found")
	ErrInvalidPack         = errors.New("invalid modpack")
	ErrNoLoader            = errors.New("vanilla instances have no loader to update")
	ErrHashMismatch        = errors.New("downloaded file hash does not match")
)

// APIError is a non-2xx answer from Modrinth or the launcher meta service.
type APIError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Status, e.Body)
}

// Backend is everything the UI needs from the launcher. Every method may
// block on disk, sqlite or the network.
type Backend interface {
	ListAccounts(ctx context.Context) ([]Account, error)
	AddAccount(ctx context.Context, username string) (Account, error)

	ListInstances(ctx context.Context) ([]Instance, error)
	GameVersions(ctx context.Context) ([]GameVersion, error)
	CreateInstance(ctx context.Context, req CreateRequest) (Instance, error)
	EditInstance(ctx context.Context, id string, mutate func(*Instance)) (Instance, error)
	DeleteInstance(ctx context.Context, id string) error
	InstancePath(ctx context.Context, id string) (string, error)
	OpenFolder(ctx context.Context, id string) error
	UpdateLoader(ctx context.Context, id string) (Instance, error)

	RunInstance(ctx context.Context, id string) error
	IsRunning(ctx context.Context, id string) (bool, error)
	TailLog(ctx context.Context, id string, cursor int64) (LogChunk, error)

	ListFiles(ctx context.Context, id string) (map[string]ProjectFile, error)
	ToggleFile(ctx context.Context, id, fileID string) (ProjectFile, error)
	RemoveFile(ctx context.Context, id, fileID string) error

	Search(ctx context.Context, q SearchQuery) (SearchResult, error)
	Project(ctx context.Context, projectID string) (ProjectDetail, error)
	InstallProject(ctx context.Context, id, projectID string) (ProjectFile, error)
	InstallPack(ctx context.Context, path string) (Instance, error)

	RecentActivity(ctx context.Context, limit int) ([]auditlog.Event, error)
}
