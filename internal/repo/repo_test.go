package repo

import (
	"os"
	"path/filepath"
	"testing"

	"evolog/internal/ops"
	"evolog/internal/plane"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepo(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("Init Repository", func(t *testing.T) {
		repoPath := filepath.Join(tmpDir, "test-repo")
		e, err := InitRepo(repoPath, "", nil)
		if err != nil {
			t.Fatal(err)
		}

		for _, dir := range []string{".evolog", ".evolog/config"} {
			if _, err := os.Stat(filepath.Join(repoPath, dir)); os.IsNotExist(err) {
				t.Errorf("Directory %s not created", dir)
			}
		}

		loaded, err := LoadLog(repoPath, nil)
		if err != nil {
			t.Fatal(err)
		}
		if loaded.Cursor() != e.Cursor() {
			t.Errorf("Expected cursor %s, got %s", e.Cursor(), loaded.Cursor())
		}
		if loaded.Len() != 1 {
			t.Errorf("Expected 1 commit, got %d", loaded.Len())
		}
	})

	t.Run("Fixed Nonce", func(t *testing.T) {
		e, err := InitRepo(filepath.Join(tmpDir, "nonce-repo"), "Hello World", nil)
		require.NoError(t, err)
		assert.Equal(t, "6cf9ecb881ec9bf672c2ca123633fa8b6fd1adb7fc6b73f5a1913ce89939887a", e.Cursor())
	})

	t.Run("Find Repository Root", func(t *testing.T) {
		repoPath := filepath.Join(tmpDir, "find-repo-test")
		if _, err := InitRepo(repoPath, "", nil); err != nil {
			t.Fatal(err)
		}

		nestedPath := filepath.Join(repoPath, "dir1", "dir2", "dir3")
		if err := os.MkdirAll(nestedPath, 0755); err != nil {
			t.Fatal(err)
		}

		found, err := FindRepoRoot(nestedPath)
		if err != nil {
			t.Fatal(err)
		}
		if found != repoPath {
			t.Errorf("Expected root %s, got %s", repoPath, found)
		}

		nonRepoPath := filepath.Join(tmpDir, "non-repo")
		if err := os.MkdirAll(nonRepoPath, 0755); err != nil {
			t.Fatal(err)
		}
		if _, err := FindRepoRoot(nonRepoPath); err == nil {
			t.Error("Expected error when finding root in non-repository")
		}
	})

	t.Run("Multiple Init Prevention", func(t *testing.T) {
		repoPath := filepath.Join(tmpDir, "multi-init-test")
		if _, err := InitRepo(repoPath, "", nil); err != nil {
			t.Fatal(err)
		}
		_, err := InitRepo(repoPath, "", nil)
		assert.ErrorIs(t, err, ErrExists)
	})
}

func TestSession(t *testing.T) {
	repoPath := t.TempDir()
	e, err := InitRepo(repoPath, "", nil)
	require.NoError(t, err)

	xy := e.Append(ops.NewPlane{Name: "XY", Plane: plane.XY()})
	e.Append(ops.NewSketch{Name: "Sketch1", PlaneName: "XY", UniqueID: "sk-1"})
	require.NoError(t, e.Checkout(xy))
	require.NoError(t, SaveLog(repoPath, e))

	loaded, err := LoadLog(repoPath, nil)
	require.NoError(t, err)
	assert.Equal(t, xy, loaded.Cursor())
	assert.Equal(t, e.Commits(), loaded.Commits())

	entries, err := os.ReadDir(filepath.Join(repoPath, EvoDir))
	require.NoError(t, err)
	for _, ent := range entries {
		assert.NotContains(t, ent.Name(), SessionFile+".", "temp file left behind")
	}

	t.Run("Truncated", func(t *testing.T) {
		data, err := os.ReadFile(SessionPath(repoPath))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(SessionPath(repoPath), data[:len(data)/2], 0644))
		_, err = LoadLog(repoPath, nil)
		assert.ErrorIs(t, err, ErrCorruptSession)
	})

	t.Run("Oversized Header", func(t *testing.T) {
		// claims 4 GiB with a two byte body
		require.NoError(t, os.WriteFile(SessionPath(repoPath), []byte{0xff, 0xff, 0xff, 0xff, '{', '}'}, 0644))
		_, err := LoadLog(repoPath, nil)
		assert.ErrorIs(t, err, ErrCorruptSession)
		assert.ErrorContains(t, err, "header claims 4294967295 bytes, file has 2")
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := LoadLog(t.TempDir(), nil)
		assert.Error(t, err)
	})
}

func TestExportReplay(t *testing.T) {
	src, err := InitRepo(t.TempDir(), "", nil)
	require.NoError(t, err)
	xy := src.Append(ops.NewPlane{Name: "XY", Plane: plane.XY()})
	src.Append(ops.NewSketch{Name: "Abandoned", PlaneName: "XY", UniqueID: "sk-0"})
	require.NoError(t, src.Checkout(xy))
	src.Append(ops.NewSketch{Name: "Sketch1", PlaneName: "XY", UniqueID: "sk-1"})
	src.Append(ops.NewCircle{SketchID: "sk-1", Radius: 3})

	fn := filepath.Join(t.TempDir(), "ops.bin")
	n, err := ExportOps(fn, src)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	dst, err := InitRepo(t.TempDir(), "", nil)
	require.NoError(t, err)
	n, err = ReplayOps(fn, dst)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 4, dst.Len())

	var want, got []ops.Operation
	for _, c := range src.Ancestry()[1:] {
		want = append(want, c.Operation)
	}
	for _, c := range dst.Ancestry()[1:] {
		got = append(got, c.Operation)
	}
	assert.Equal(t, want, got)

	t.Run("Export Overwrites", func(t *testing.T) {
		n, err := ExportOps(fn, src)
		require.NoError(t, err)
		loaded, err := ops.LoadAllOps(fn)
		require.NoError(t, err)
		assert.Len(t, loaded, n)
	})
}
