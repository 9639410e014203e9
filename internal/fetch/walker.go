package fetch

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// maxFileSize is the largest single file considered for extraction (1 MB).
const maxFileSize = 1 << 20

// defaultIgnores excludes caches, version-control metadata, and dependency
// trees from discovery.
var defaultIgnores = []string{
	".git",
	".svn",
	".hg",
	"node_modules",
	"vendor",
	"__pycache__",
	".venv",
	"venv",
	".idea",
	".vscode",
	"dist",
	"build",
	"*.egg-info",
}

// discover walks the clone and returns source files with registered
// extensions, skipping ignored directories, symlinks, empty files, and files
// over maxFileSize. Paths come back in walk order with forward-slash
// relative paths.
func (f *Fetcher) discover(root string) []File {
	matcher := loadIgnoreMatcher(root)

	var files []File
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries, keep walking
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if matcher.MatchesPath(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if matcher.MatchesPath(rel) {
			return nil
		}

		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		if !f.exts[ext] {
			return nil
		}
		info, err := d.Info()
		if err != nil || info.Size() == 0 || info.Size() > maxFileSize {
			return nil
		}

		files = append(files, File{Path: path, RelPath: rel, Size: info.Size()})
		return nil
	})
	return files
}

// loadIgnoreMatcher compiles the default patterns plus the repository's own
// .gitignore when present.
func loadIgnoreMatcher(root string) *ignore.GitIgnore {
	lines := append([]string(nil), defaultIgnores...)
	if data, err := os.ReadFile(filepath.Join(root, ".gitignore")); err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "#") {
				lines = append(lines, line)
			}
		}
	}
	return ignore.CompileIgnoreLines(lines...)
}
