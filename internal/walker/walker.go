package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/repoctx/repoctx/pkg/types"
)

// FileInfo holds metadata about a discovered source file
type FileInfo struct {
	AbsPath string // Absolute path on disk
	RelPath string // Slash-separated path relative to the walk root
	Size    int64
}

// DefaultMaxFileSize is the largest file considered for indexing (1 MiB)
const DefaultMaxFileSize = 1 << 20

// DefaultIgnoredPrefixes are relative path prefixes excluded from every walk
var DefaultIgnoredPrefixes = []string{
	"vendor/",
	"node_modules/",
	".git/",
	"tmp/",
	"log/",
	"coverage/",
	"dist/",
	"build/",
}

// Options configures a walk
type Options struct {
	// AllowedExtensions is the set of lowercased extensions (without dot)
	// eligible for indexing. Required.
	AllowedExtensions map[string]bool

	// IgnoredPrefixes are relative path prefixes to skip. Defaults to
	// DefaultIgnoredPrefixes when nil.
	IgnoredPrefixes []string

	// MaxFileSize is the size ceiling in bytes. Defaults to
	// DefaultMaxFileSize when zero.
	MaxFileSize int64
}

// Walk enumerates candidate files under root, applying the extension
// allowlist, size ceiling, and ignored-prefix rules. The returned slice is
// finite and restartable: calling Walk again repeats the enumeration from
// scratch. Unreadable entries are skipped, never fatal.
func Walk(root string, opts Options) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrInvalidRoot, root, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrInvalidRoot, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", types.ErrInvalidRoot, root)
	}

	ignored := opts.IgnoredPrefixes
	if ignored == nil {
		ignored = DefaultIgnoredPrefixes
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	var files []FileInfo
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries, keep walking
		}

		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			if hasIgnoredPrefix(rel+"/", ignored) {
				return filepath.SkipDir
			}
			return nil
		}

		// Skip symlinks to avoid cycles and out-of-tree content
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		if hasIgnoredPrefix(rel, ignored) {
			return nil
		}

		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if !opts.AllowedExtensions[ext] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() > maxSize {
			return nil
		}

		files = append(files, FileInfo{
			AbsPath: path,
			RelPath: rel,
			Size:    info.Size(),
		})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return files, nil
}

// hasIgnoredPrefix reports whether a slash-separated relative path starts
// with any of the ignored prefixes
func hasIgnoredPrefix(rel string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(rel, p) {
			return true
		}
	}
	return false
}
