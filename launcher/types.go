package launcher

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Loader is a mod loader id as Modrinth spells it.
type Loader string

const (
	LoaderVanilla  Loader = "vanilla"
	LoaderForge    Loader = "forge"
	LoaderFabric   Loader = "fabric"
	LoaderQuilt    Loader = "quilt"
	LoaderNeoForge Loader = "neoforge"
)

// Loaders is the order the create screen offers loaders in.
var Loaders = []Loader{LoaderVanilla, LoaderForge, LoaderFabric, LoaderQuilt, LoaderNeoForge}

// String returns the display name.
func (l Loader) String() string {
	switch l {
	case LoaderVanilla:
		return "Vanilla"
	case LoaderForge:
		return "Forge"
	case LoaderFabric:
		return "Fabric"
	case LoaderQuilt:
		return "Quilt"
	case LoaderNeoForge:
		return "NeoForge"
	}
	return string(l)
}

// ParseLoader accepts a loader id in any case.
func ParseLoader(s string) (Loader, error) {
	l := Loader(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Loaders {
		if l == known {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown mod loader %q", s)
}

// InstallStage tracks how far an instance got through installation.
type InstallStage string

const (
	StageInstalling   InstallStage = "installing"
	StageInstalled    InstallStage = "installed"
	StageNotInstalled InstallStage = "not_installed"
)

// Instance is a playable game profile.
type Instance struct {
	ID            string
	Name          string
	Slug          string // directory name under <data>/instances
	GameVersion   string
	Loader        Loader
	LoaderVersion string
	MemoryMB      int   // 0 means the launcher default
	Fullscreen    *bool // nil means the game decides
	Stage         InstallStage
	Created       time.Time
	Modified      time.Time
	LastPlayed    time.Time
}

func (i Instance) Installed() bool {
	return i.Stage == StageInstalled
}

// VersionLabel is "<game version> <loader>" plus the loader version when known.
func (i Instance) VersionLabel() string {
	if i.LoaderVersion != "" {
		return fmt.Sprintf("%s %s (%s)", i.GameVersion, i.Loader, i.LoaderVersion)
	}
	return fmt.Sprintf("%s %s", i.GameVersion, i.Loader)
}

// Account is an offline player profile.
type Account struct {
	ID       string
	Username string
	Added    time.Time
}

// FileKind is the content type of an installed file; it decides the folder.
type FileKind int

const (
	KindMod FileKind = iota
	KindDatapack
	KindResourcepack
	KindShaderpack
)

// FileKinds lists every kind in folder scan order.
var FileKinds = []FileKind{KindMod, KindDatapack, KindResourcepack, KindShaderpack}

func (k FileKind) String() string {
	switch k {
	case KindDatapack:
		return "Datapack"
	case KindResourcepack:
		return "Resourcepack"
	case KindShaderpack:
		return "Shaderpack"
	default:
		return "Mod"
	}
}

// Folder is the instance-relative directory holding files of this kind.
func (k FileKind) Folder() string {
	switch k {
	case KindDatapack:
		return "datapacks"
	case KindResourcepack:
		return "resourcepacks"
	case KindShaderpack:
		return "shaderpacks"
	default:
		return "mods"
	}
}

// KindFromLoaders guesses the file kind from a Modrinth version's loader list.
func KindFromLoaders(loaders []string) FileKind {
	for _, l := range loaders {
		switch l {
		case "datapack":
			return KindDatapack
		case "minecraft":
			return KindResourcepack
		case "iris", "optifine", "canvas", "vanilla":
			return KindShaderpack
		}
	}
	return KindMod
}

// DisabledSuffix marks a file the game should not load.
const DisabledSuffix = ".disabled"

// ProjectFile is a file inside one of an instance's content folders. ID is the
// sha1 of its contents, so it survives enable/disable renames.
type ProjectFile struct {
	ID        string
	FileName  string
	Kind      FileKind
	Size      int64
	ProjectID string // empty when the file was not installed from Modrinth
	VersionID string
}

func (f ProjectFile) Disabled() bool {
	return strings.HasSuffix(f.FileName, DisabledSuffix)
}

// DisplayName drops the .disabled and .jar suffixes.
func (f ProjectFile) DisplayName() string {
	name := strings.TrimSuffix(f.FileName, DisabledSuffix)
	return strings.TrimSuffix(name, ".jar")
}

// DisplaySize is the SI-formatted size, e.g. "1.2 MB".
func (f ProjectFile) DisplaySize() string {
	return humanize.Bytes(uint64(max(f.Size, 0)))
}

// RelPath is the path relative to the instance directory.
func (f ProjectFile) RelPath() string {
	return f.Kind.Folder() + "/" + f.FileName
}

// CreateRequest describes a new instance. LoaderVersion is resolved from the
// loader manifest when empty.
type CreateRequest struct {
	Name          string
	GameVersion   string
	Loader        Loader
	LoaderVersion string
}

// GameVersion is an entry of Modrinth's game version tag list.
type GameVersion struct {
	Version     string    `json:"version"`
	VersionType string    `json:"version_type"`
	Date        time.Time `json:"date"`
	Major       bool      `json:"major"`
}

// ReleaseType is the version_type of full releases.
const ReleaseType = "release"

// SearchQuery is one page of a Modrinth project search. Each facet is a JSON
// array of OR-ed terms; facets are AND-ed.
type SearchQuery struct {
	Facets []string
	Query  string
	Limit  int
	Offset int
	Index  string // relevance when empty
}

// SearchHit is a project in a search result page.
type SearchHit struct {
	ProjectID    string    `json:"project_id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Author       string    `json:"author"`
	ProjectType  string    `json:"project_type"`
	Downloads    int64     `json:"downloads"`
	Follows      int64     `json:"follows"`
	DateModified time.Time `json:"date_modified"`
	Categories   []string  `json:"categories"`
}

// DownloadsLabel is the download count in SI form, e.g. "12.3k".
func (h SearchHit) DownloadsLabel() string {
	return compactCount(h.Downloads)
}

// FollowsLabel is the follower count in SI form.
func (h SearchHit) FollowsLabel() string {
	return compactCount(h.Follows)
}

// ModifiedLabel is the relative update time, e.g. "3 days ago".
func (h SearchHit) ModifiedLabel() string {
	if h.DateModified.IsZero() {
		return ""
	}
	return humanize.Time(h.DateModified)
}

func compactCount(n int64) string {
	if n < 1000 {
		return humanize.Comma(n)
	}
	v, unit := humanize.ComputeSI(float64(n))
	return humanize.FtoaWithDigits(v, 1) + unit
}

// SearchResult is a page of hits.
type SearchResult struct {
	Hits      []SearchHit `json:"hits"`
	Offset    int         `json:"offset"`
	Limit     int         `json:"limit"`
	TotalHits int         `json:"total_hits"`
}

// ProjectDetail is the full page of a Modrinth project.
type ProjectDetail struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Body        string    `json:"body"` // markdown
	ProjectType string    `json:"project_type"`
	Downloads   int64     `json:"downloads"`
	Followers   int64     `json:"followers"`
	Updated     time.Time `json:"updated"`
	License     struct {
		ID string `json:"id"`
	} `json:"license"`
}

// LogChunk is output appended to an instance log since a cursor.
type LogChunk struct {
	Output string
	Cursor int64 // pass back to continue tailing
}
