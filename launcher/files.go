package launcher

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// hashFile returns the hex sha1 of the file at path.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// scanFiles walks every kind folder of dir. meta fills in the Modrinth origin
// of files installed through the launcher. Missing folders are skipped.
func scanFiles(dir string, meta map[string]FileMeta) (map[string]ProjectFile, error) {
	out := make(map[string]ProjectFile)
	for _, kind := range FileKinds {
		entries, err := os.ReadDir(filepath.Join(dir, kind.Folder()))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", kind.Folder(), err)
		}
		for _, e := range entries {
			if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			sum, err := hashFile(filepath.Join(dir, kind.Folder(), e.Name()))
			if err != nil {
				return nil, err
			}
			f := ProjectFile{
				ID:       sum,
				FileName: e.Name(),
				Kind:     kind,
				Size:     info.Size(),
			}
			if m, ok := meta[sum]; ok {
				f.ProjectID = m.ProjectID
				f.VersionID = m.VersionID
			}
			out[sum] = f
		}
	}
	return out, nil
}

// toggleFile flips the .disabled suffix of f on disk and returns the renamed file.
func toggleFile(dir string, f ProjectFile) (ProjectFile, error) {
	from := filepath.Join(dir, filepath.FromSlash(f.RelPath()))
	next := f
	if f.Disabled() {
		next.FileName = strings.TrimSuffix(f.FileName, DisabledSuffix)
	} else {
		next.FileName = f.FileName + DisabledSuffix
	}
	to := filepath.Join(dir, filepath.FromSlash(next.RelPath()))
	if _, err := os.Stat(to); err == nil {
		return ProjectFile{}, fmt.Errorf("cannot rename %s: %s already exists", f.FileName, next.FileName)
	}
	if err := os.Rename(from, to); err != nil {
		return ProjectFile{}, fmt.Errorf("rename %s: %w", f.FileName, err)
	}
	return next, nil
}

func removeFile(dir string, f ProjectFile) error {
	if err := os.Remove(filepath.Join(dir, filepath.FromSlash(f.RelPath()))); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, f.FileName)
		}
		return fmt.Errorf("remove %s: %w", f.FileName, err)
	}
	return nil
}

// safeJoin joins an archive-relative path onto root, refusing anything that
// would land outside it.
func safeJoin(root, rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("%w: bad path %q", ErrInvalidPack, rel)
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path escapes instance: %q", ErrInvalidPack, rel)
	}
	return filepath.Join(root, clean), nil
}
