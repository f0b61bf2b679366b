package interp

import (
	"os"
	"path/filepath"
	"runtime"
)

// findExecutable walks the search path directories in order looking for a
// regular, executable file with the given name. The first match wins.
// Entries that are missing, directories, or not executable are skipped
// silently.
func (s *Selector) findExecutable(name string) (string, bool) {
	if runtime.GOOS == "windows" && filepath.Ext(name) == "" {
		name += ".exe"
	}

	for _, dir := range filepath.SplitList(s.searchPath()) {
		if dir == "" {
			continue
		}

		candidate := filepath.Join(dir, name)

		info, err := os.Stat(candidate)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		if !isExecutable(info.Mode()) {
			continue
		}

		return candidate, true
	}

	return "", false
}

// isExecutable checks the executable permission bits. Windows has no such
// bits, so existence of a regular file is enough there.
func isExecutable(mode os.FileMode) bool {
	if runtime.GOOS == "windows" {
		return true
	}

	return mode.Perm()&0o111 != 0
}
