package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// DevDirName is the temp namespace used for sandboxed development caches.
const DevDirName = "notesync-dev"

// IsDevRun checks if the current process is running via `go run` or `go test`.
// It relies on the fact that these commands build binaries in temporary directories.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}
	return isDevExecutable(exe, os.TempDir())
}

func isDevExecutable(exe, tempDir string) bool {
	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(tempDir)) {
		return true
	}
	return strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe")
}

// ResolveCacheDir determines the directory of the filesystem cache.
// When sandbox is true the directory is re-rooted under the temp dir so a
// development run never overwrites a real cache. Paths already inside the
// temp dir (t.TempDir()) are trusted as is.
func ResolveCacheDir(dir string, sandbox bool) string {
	if !sandbox {
		if dir == "" {
			return "."
		}
		return dir
	}

	clean := filepath.Clean(dir)
	tempRoot := os.TempDir()
	if rel, err := filepath.Rel(tempRoot, clean); err == nil && filepath.IsAbs(clean) && !strings.HasPrefix(rel, "..") {
		return clean
	}

	sub := filepath.Base(clean)
	if dir == "" || sub == "." || sub == string(os.PathSeparator) {
		sub = "default"
	}
	return filepath.Join(tempRoot, DevDirName, sub)
}
