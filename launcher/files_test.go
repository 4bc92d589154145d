package launcher

import (
	"archive/zip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kastheco/craftdeck/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.Initialize(false)
	code := m.Run()
	log.Close()
	os.Exit(code)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestScanFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "mods", "sodium.jar"), "sodium")
	writeFile(t, filepath.Join(dir, "mods", "lithium.jar.disabled"), "lithium")
	writeFile(t, filepath.Join(dir, "mods", ".hidden"), "skip")
	writeFile(t, filepath.Join(dir, "shaderpacks", "bsl.zip"), "bsl")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "mods", "nested"), 0755))

	sodiumID, err := hashFile(filepath.Join(dir, "mods", "sodium.jar"))
	require.NoError(t, err)

	files, err := scanFiles(dir, map[string]FileMeta{sodiumID: {ProjectID: "AANobbMI", VersionID: "v1"}})
	require.NoError(t, err)
	require.Len(t, files, 3)

	sodium := files[sodiumID]
	assert.Equal(t, "sodium.jar", sodium.FileName)
	assert.Equal(t, KindMod, sodium.Kind)
	assert.Equal(t, "AANobbMI", sodium.ProjectID)
	assert.Equal(t, int64(6), sodium.Size)
	assert.False(t, sodium.Disabled())

	var kinds []FileKind
	for _, f := range files {
		kinds = append(kinds, f.Kind)
		if f.FileName == "lithium.jar.disabled" {
			assert.True(t, f.Disabled())
			assert.Equal(t, "lithium", f.DisplayName())
			assert.Empty(t, f.ProjectID)
		}
	}
	assert.Contains(t, kinds, KindShaderpack)
}

func TestScanFiles_EmptyInstance(t *testing.T) {
	files, err := scanFiles(t.TempDir(), nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestToggleFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "mods", "a.jar"), "a")
	f := ProjectFile{FileName: "a.jar", Kind: KindMod}

	off, err := toggleFile(dir, f)
	require.NoError(t, err)
	assert.Equal(t, "a.jar.disabled", off.FileName)
	assert.FileExists(t, filepath.Join(dir, "mods", "a.jar.disabled"))
	assert.NoFileExists(t, filepath.Join(dir, "mods", "a.jar"))

	on, err := toggleFile(dir, off)
	require.NoError(t, err)
	assert.Equal(t, "a.jar", on.FileName)
	assert.FileExists(t, filepath.Join(dir, "mods", "a.jar"))
}

func TestToggleFile_RefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "mods", "a.jar"), "new")
	writeFile(t, filepath.Join(dir, "mods", "a.jar.disabled"), "old")

	_, err := toggleFile(dir, ProjectFile{FileName: "a.jar", Kind: KindMod})
	assert.Error(t, err)
}

func TestRemoveFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "resourcepacks", "faithful.zip"), "x")
	f := ProjectFile{FileName: "faithful.zip", Kind: KindResourcepack}

	require.NoError(t, removeFile(dir, f))
	assert.ErrorIs(t, removeFile(dir, f), ErrFileNotFound)
}

func TestSafeJoin(t *testing.T) {
	root := "/data/inst"
	tests := []struct {
		rel     string
		want    string
		wantErr bool
	}{
		{"mods/a.jar", "/data/inst/mods/a.jar", false},
		{"config/../options.txt", "/data/inst/options.txt", false},
		{"../escape.jar", "", true},
		{"mods/../../escape.jar", "", true},
		{"/etc/passwd", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			got, err := safeJoin(root, tt.rel)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPack)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

// buildPack writes a .mrpack with the given index and extra entries.
func buildPack(t *testing.T, index any, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pack.mrpack")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	if index != nil {
		w, err := zw.Create(packIndexName)
		require.NoError(t, err)
		require.NoError(t, json.NewEncoder(w).Encode(index))
	}
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestOpenPack(t *testing.T) {
	t.Run("reads index and loader", func(t *testing.T) {
		path := buildPack(t, map[string]any{
			"formatVersion": 1,
			"game":          "minecraft",
			"name":          "Cozy",
			"dependencies":  map[string]string{"minecraft": "1.20.1", "quilt-loader": "0.20.0"},
		}, nil)
		zr, index, err := openPack(path)
		require.NoError(t, err)
		defer zr.Close()

		req, err := index.createRequest()
		require.NoError(t, err)
		assert.Equal(t, CreateRequest{Name: "Cozy", GameVersion: "1.20.1", Loader: LoaderQuilt, LoaderVersion: "0.20.0"}, req)
	})

	t.Run("missing index", func(t *testing.T) {
		_, _, err := openPack(buildPack(t, nil, map[string]string{"overrides/a.txt": "a"}))
		assert.ErrorIs(t, err, ErrInvalidPack)
	})

	t.Run("not a zip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.mrpack")
		writeFile(t, path, "nope")
		_, _, err := openPack(path)
		assert.ErrorIs(t, err, ErrInvalidPack)
	})

	t.Run("missing minecraft dependency", func(t *testing.T) {
		zr, index, err := openPack(buildPack(t, map[string]any{"name": "X"}, nil))
		require.NoError(t, err)
		defer zr.Close()
		_, err = index.createRequest()
		assert.ErrorIs(t, err, ErrInvalidPack)
	})
}

func TestExtractOverrides(t *testing.T) {
	path := buildPack(t, map[string]any{"dependencies": map[string]string{"minecraft": "1.20.1"}}, map[string]string{
		"overrides/options.txt":        "server",
		"client-overrides/options.txt": "client",
		"overrides/config/sodium.json": "{}",
		"other/ignored.txt":            "x",
	})
	zr, _, err := openPack(path)
	require.NoError(t, err)
	defer zr.Close()

	dir := t.TempDir()
	n, err := extractOverrides(&zr.Reader, dir)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	data, err := os.ReadFile(filepath.Join(dir, "options.txt"))
	require.NoError(t, err)
	assert.Equal(t, "client", string(data), "client overrides win")
	assert.FileExists(t, filepath.Join(dir, "config", "sodium.json"))
	assert.NoFileExists(t, filepath.Join(dir, "other", "ignored.txt"))
}

func TestLaunchCommand(t *testing.T) {
	on := true
	inst := Instance{Name: "Cozy", GameVersion: "1.20.1", Loader: LoaderFabric, LoaderVersion: "0.15.11", Fullscreen: &on}
	argv := launchCommand("/jdk/bin/java",
		[]string{"-Xmx{memory}M", "-jar", "{dir}/client.jar", "--loader={loader}@{loader_version}", "--title={name} {version}"},
		inst, "/data/inst/cozy")

	assert.Equal(t, []string{
		"/jdk/bin/java",
		"-Xmx2048M",
		"-jar",
		"/data/inst/cozy/client.jar",
		"--loader=fabric@0.15.11",
		"--title=Cozy 1.20.1",
		FullscreenFlag,
	}, argv)

	off := false
	inst.Fullscreen = &off
	inst.MemoryMB = 6144
	argv = launchCommand("java", []string{"-Xmx{memory}M"}, inst, "/d")
	assert.Equal(t, []string{"java", "-Xmx6144M"}, argv)
}

func TestRunningCache(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := newRunningCache(10 * time.Second)
	c.now = func() time.Time { return now }

	calls := 0
	check := func() (bool, error) {
		calls++
		return true, nil
	}

	got, err := c.get("a", check)
	require.NoError(t, err)
	assert.True(t, got)

	now = now.Add(9 * time.Second)
	_, _ = c.get("a", check)
	assert.Equal(t, 1, calls, "answer is reused within the ttl")

	now = now.Add(2 * time.Second)
	_, _ = c.get("a", check)
	assert.Equal(t, 2, calls)

	c.set("a", false)
	got, _ = c.get("a", check)
	assert.False(t, got)
	assert.Equal(t, 2, calls)

	c.forget("a")
	_, _ = c.get("a", check)
	assert.Equal(t, 3, calls)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "my-cool-pack", slugify("  My Cool Pack!! "))
	assert.Equal(t, "1-20-survival", slugify("1.20 Survival"))
	assert.Equal(t, "instance", slugify("???"))
}
