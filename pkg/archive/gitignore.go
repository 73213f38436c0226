// pkg/archive/gitignore.go
package archive

import (
	"io/fs"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// gitignoreMatcher applies .gitignore patterns with hierarchy support.
// The tree is pre-scanned once for .gitignore files, each compiled into a
// matcher keyed by the relative directory that holds it ("" = root).
type gitignoreMatcher struct {
	baseDir  string
	matchers map[string]*ignore.GitIgnore
}

// newGitignoreMatcher scans baseDir for .gitignore files. Returns nil when
// none exist so callers can skip filtering entirely.
func newGitignoreMatcher(baseDir string) (*gitignoreMatcher, error) {
	baseDir = filepath.Clean(baseDir)
	gm := &gitignoreMatcher{
		baseDir:  baseDir,
		matchers: make(map[string]*ignore.GitIgnore),
	}

	err := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || d.Name() != ".gitignore" {
			// Inaccessible paths and non-matches are skipped.
			return nil
		}

		relDir, err := filepath.Rel(baseDir, filepath.Dir(path))
		if err != nil {
			return nil
		}
		if relDir == "." {
			relDir = ""
		}

		matcher, err := ignore.CompileIgnoreFile(path)
		if err != nil {
			// Invalid .gitignore files are ignored, matching git's tolerance.
			return nil
		}
		gm.matchers[filepath.ToSlash(relDir)] = matcher
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(gm.matchers) == 0 {
		return nil, nil
	}
	return gm, nil
}

// ShouldIgnore reports whether the file at relPath (relative to baseDir)
// matches an ignore pattern. Every .gitignore from the root down to the
// file's parent directory is consulted; negation within one file works,
// cross-file negation requires the child file to restate it.
func (gm *gitignoreMatcher) ShouldIgnore(relPath string) bool {
	if gm == nil || len(gm.matchers) == 0 {
		return false
	}

	relPath = filepath.ToSlash(relPath)
	for _, dirPath := range hierarchy(relPath) {
		matcher, ok := gm.matchers[dirPath]
		if !ok {
			continue
		}

		pathToCheck := relPath
		if dirPath != "" {
			pathToCheck = strings.TrimPrefix(relPath, dirPath+"/")
		}
		if matcher.MatchesPath(pathToCheck) {
			return true
		}
	}
	return false
}

// ShouldIgnoreDir reports whether a whole directory subtree should be
// pruned. Only explicit directory patterns ("build/") prune; file patterns
// that happen to match a directory name ("*.log") do not.
func (gm *gitignoreMatcher) ShouldIgnoreDir(relPath string) bool {
	if gm == nil || len(gm.matchers) == 0 {
		return false
	}
	return gm.ShouldIgnore(relPath+"/") && !gm.ShouldIgnore(relPath)
}

// hierarchy lists the directory paths from the root to relPath's parent.
// For "src/lib/file.log": ["", "src", "src/lib"].
func hierarchy(relPath string) []string {
	parentDir := filepath.ToSlash(filepath.Dir(relPath))
	if parentDir == "." {
		parentDir = ""
	}

	dirs := []string{""}
	if parentDir == "" {
		return dirs
	}

	current := ""
	for _, part := range strings.Split(parentDir, "/") {
		if part == "" {
			continue
		}
		if current == "" {
			current = part
		} else {
			current = current + "/" + part
		}
		dirs = append(dirs, current)
	}
	return dirs
}
