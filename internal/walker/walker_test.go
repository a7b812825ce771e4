package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repoctx/repoctx/pkg/types"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func relPaths(files []FileInfo) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.RelPath
	}
	return paths
}

func TestWalk(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app/models/user.rb", "class User\nend\n")
	writeFile(t, root, "lib/util.py", "def util():\n    pass\n")
	writeFile(t, root, "README.md", "# readme\n")
	writeFile(t, root, "vendor/gem/skip.rb", "class Skip\nend\n")
	writeFile(t, root, "node_modules/pkg/index.js", "module.exports = 1\n")

	files, err := Walk(root, Options{
		AllowedExtensions: map[string]bool{"rb": true, "py": true, "js": true},
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"app/models/user.rb", "lib/util.py"}, relPaths(files))
	for _, f := range files {
		assert.True(t, filepath.IsAbs(f.AbsPath))
		assert.Greater(t, f.Size, int64(0))
	}
}

func TestWalkMaxFileSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "small.rb", "x = 1\n")
	writeFile(t, root, "big.rb", string(make([]byte, 2048)))

	files, err := Walk(root, Options{
		AllowedExtensions: map[string]bool{"rb": true},
		MaxFileSize:       1024,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"small.rb"}, relPaths(files))
}

func TestWalkCustomIgnoredPrefixes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "generated/out.rb", "x = 1\n")
	writeFile(t, root, "vendor/dep.rb", "y = 2\n")
	writeFile(t, root, "app.rb", "z = 3\n")

	files, err := Walk(root, Options{
		AllowedExtensions: map[string]bool{"rb": true},
		IgnoredPrefixes:   []string{"generated/"},
	})
	require.NoError(t, err)

	// Custom prefixes replace the defaults, so vendor/ is walked
	assert.ElementsMatch(t, []string{"app.rb", "vendor/dep.rb"}, relPaths(files))
}

func TestWalkEmptyDirectory(t *testing.T) {
	files, err := Walk(t.TempDir(), Options{
		AllowedExtensions: map[string]bool{"rb": true},
	})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestWalkInvalidRoot(t *testing.T) {
	_, err := Walk(filepath.Join(t.TempDir(), "does-not-exist"), Options{
		AllowedExtensions: map[string]bool{"rb": true},
	})
	assert.ErrorIs(t, err, types.ErrInvalidRoot)
}

func TestWalkRootIsFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "file.rb", "x = 1\n")

	_, err := Walk(filepath.Join(root, "file.rb"), Options{
		AllowedExtensions: map[string]bool{"rb": true},
	})
	assert.ErrorIs(t, err, types.ErrInvalidRoot)
}

func TestWalkSkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "real.rb", "x = 1\n")
	linkPath := filepath.Join(root, "link.rb")
	if err := os.Symlink(filepath.Join(root, "real.rb"), linkPath); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	files, err := Walk(root, Options{
		AllowedExtensions: map[string]bool{"rb": true},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"real.rb"}, relPaths(files))
}

func TestWalkRestartable(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.rb", "a\n")
	writeFile(t, root, "b.rb", "b\n")

	opts := Options{AllowedExtensions: map[string]bool{"rb": true}}
	first, err := Walk(root, opts)
	require.NoError(t, err)
	second, err := Walk(root, opts)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
