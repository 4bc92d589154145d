package launcher

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const packIndexName = "modrinth.index.json"

// overrideDirs are copied over the instance in order; later ones win.
var overrideDirs = []string{"overrides/", "client-overrides/"}

type packIndex struct {
	FormatVersion int               `json:"formatVersion"`
	Game          string            `json:"game"`
	VersionID     string            `json:"versionId"`
	Name          string            `json:"name"`
	Summary       string            `json:"summary"`
	Files         []packFile        `json:"files"`
	Dependencies  map[string]string `json:"dependencies"`
}

type packFile struct {
	Path      string            `json:"path"`
	Hashes    map[string]string `json:"hashes"`
	Env       map[string]string `json:"env"`
	Downloads []string          `json:"downloads"`
	FileSize  int64             `json:"fileSize"`
}

// forClient reports whether the file belongs in a client install.
func (f packFile) forClient() bool {
	return f.Env["client"] != "unsupported"
}

// packLoaders maps index dependency keys to loaders, in lookup order.
var packLoaders = []struct {
	dep    string
	loader Loader
}{
	{"fabric-loader", LoaderFabric},
	{"quilt-loader", LoaderQuilt},
	{"forge", LoaderForge},
	{"neoforge", LoaderNeoForge},
}

// createRequest derives the instance to create from the index.
func (p *packIndex) createRequest() (CreateRequest, error) {
	gv := p.Dependencies["minecraft"]
	if gv == "" {
		return CreateRequest{}, fmt.Errorf("%w: no minecraft dependency", ErrInvalidPack)
	}
	req := CreateRequest{Name: p.Name, GameVersion: gv, Loader: LoaderVanilla}
	if strings.TrimSpace(req.Name) == "" {
		req.Name = "Modpack " + gv
	}
	for _, pl := range packLoaders {
		if v, ok := p.Dependencies[pl.dep]; ok {
			req.Loader = pl.loader
			req.LoaderVersion = v
			break
		}
	}
	return req, nil
}

// openPack opens a .mrpack and decodes its index. The caller closes the reader.
func openPack(path string) (*zip.ReadCloser, *packIndex, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidPack, err)
	}

	var index *packIndex
	for _, f := range zr.File {
		if f.Name != packIndexName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			zr.Close()
			return nil, nil, fmt.Errorf("open %s: %w", packIndexName, err)
		}
		index = &packIndex{}
		err = json.NewDecoder(rc).Decode(index)
		rc.Close()
		if err != nil {
			zr.Close()
			return nil, nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidPack, packIndexName, err)
		}
		break
	}
	if index == nil {
		zr.Close()
		return nil, nil, fmt.Errorf("%w: missing %s", ErrInvalidPack, packIndexName)
	}
	if index.Game != "" && index.Game != "minecraft" {
		zr.Close()
		return nil, nil, fmt.Errorf("%w: unsupported game %q", ErrInvalidPack, index.Game)
	}
	return zr, index, nil
}

// extractOverrides copies the override folders of the pack into dir.
func extractOverrides(zr *zip.Reader, dir string) (int, error) {
	count := 0
	for _, prefix := range overrideDirs {
		for _, f := range zr.File {
			if !strings.HasPrefix(f.Name, prefix) || f.FileInfo().IsDir() {
				continue
			}
			rel := strings.TrimPrefix(f.Name, prefix)
			if rel == "" {
				continue
			}
			dest, err := safeJoin(dir, rel)
			if err != nil {
				return count, err
			}
			if err := extractFile(f, dest); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

func extractFile(f *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(dest), err)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return out.Close()
}
