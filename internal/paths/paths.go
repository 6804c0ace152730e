package paths

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ConfigDirName is the per-project directory holding lspwiki configuration
const ConfigDirName = ".lspwiki"

// CanonicalizePath converts an absolute path to a repo-relative canonical path
// - Resolves symlinks to real paths when the file exists
// - Makes path relative to repo root
// - Converts backslashes to forward slashes
func CanonicalizePath(absolutePath string, repoRoot string) (string, error) {
	resolved, err := filepath.EvalSymlinks(absolutePath)
	rootResolved := repoRoot
	switch {
	case err == nil:
		if rootResolved, err = filepath.EvalSymlinks(repoRoot); err != nil {
			if !os.IsNotExist(err) {
				return "", err
			}
			rootResolved = repoRoot
		}
	case os.IsNotExist(err):
		// a missing file is compared against the root as given
		resolved = absolutePath
	default:
		return "", err
	}

	rel, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// IsWithinRepo checks if a path is within the repository root
func IsWithinRepo(path string, repoRoot string) bool {
	canonical, err := CanonicalizePath(path, repoRoot)
	if err != nil {
		return false
	}
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}

// JoinRepoPath joins a repo root with a canonical path
func JoinRepoPath(repoRoot string, canonicalPath string) string {
	parts := strings.Split(strings.ReplaceAll(canonicalPath, "\\", "/"), "/")
	return filepath.Join(append([]string{repoRoot}, parts...)...)
}

// FileURI returns the file:// URI for an absolute path, percent-encoding as needed.
func FileURI(absolutePath string) string {
	p := filepath.ToSlash(absolutePath)
	if !strings.HasPrefix(p, "/") {
		// Windows drive paths: C:/x -> /C:/x
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}

// ConfigDir returns the lspwiki config directory for a project root
func ConfigDir(repoRoot string) string {
	return filepath.Join(repoRoot, ConfigDirName)
}
