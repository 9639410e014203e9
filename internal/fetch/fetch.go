// Package fetch acquires repository sources: shallow clone, size ceiling,
// and ignore-aware source file discovery.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// MaxRepoBytes is the hard ceiling on a cloned repository's size.
const MaxRepoBytes = 100 << 20

// cloneTimeout bounds the shallow clone itself.
const cloneTimeout = 60 * time.Second

// ErrInvalidURL reports a locator that is not a recognized repository URL.
var ErrInvalidURL = errors.New("invalid repository URL, expected https://github.com/user/repo")

// File is one discovered source file inside a fetched repository.
type File struct {
	Path    string // absolute path on disk
	RelPath string // repository-relative, forward-slash
	Size    int64
}

// Result is a fetched repository: its temp root and the source files found
// in it. Callers must Cleanup when done, on every exit path.
type Result struct {
	Root  string
	Files []File
}

// Cleanup removes the temporary clone directory. Safe to call more than once.
func (r *Result) Cleanup() {
	if r != nil && r.Root != "" {
		os.RemoveAll(r.Root)
	}
}

// Fetcher clones repositories and discovers their source files.
type Fetcher struct {
	exts map[string]bool
	log  *slog.Logger
}

// New creates a fetcher that keeps only files with the given extensions
// (without dot).
func New(exts map[string]bool, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{exts: exts, log: logger}
}

// ValidateURL checks that a locator has the expected repository-URL shape.
func ValidateURL(locator string) error {
	rest, ok := strings.CutPrefix(locator, "https://github.com/")
	if !ok {
		return ErrInvalidURL
	}
	parts := strings.Split(strings.TrimSuffix(rest, ".git"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return ErrInvalidURL
	}
	return nil
}

// Fetch shallow-clones the repository into a temp directory, enforces the
// size ceiling, and discovers source files. On error nothing is left on
// disk.
func (f *Fetcher) Fetch(ctx context.Context, locator string) (*Result, error) {
	if err := ValidateURL(locator); err != nil {
		return nil, err
	}
	cloneURL := locator
	if !strings.HasSuffix(cloneURL, ".git") {
		cloneURL += ".git"
	}

	dir, err := os.MkdirTemp("", "codescout-*")
	if err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}

	cloneCtx, cancel := context.WithTimeout(ctx, cloneTimeout)
	defer cancel()
	cmd := exec.CommandContext(cloneCtx, "git", "clone", "--depth", "1", cloneURL, dir)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	if out, err := cmd.CombinedOutput(); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to clone repository: %s", cloneFailureDetail(out, err))
	}

	size, err := dirSize(dir)
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("measure repository size: %w", err)
	}
	if size > MaxRepoBytes {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("repository too large (%dMB), maximum allowed: %dMB",
			size>>20, MaxRepoBytes>>20)
	}

	files := f.discover(dir)
	f.log.Debug("repository fetched", "locator", locator, "files", len(files), "bytes", size)
	return &Result{Root: dir, Files: files}, nil
}

// cloneFailureDetail prefers git's own message over the exec error.
func cloneFailureDetail(out []byte, err error) string {
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "fatal:") || strings.HasPrefix(line, "error:") {
			return line
		}
	}
	return err.Error()
}

// dirSize totals regular file sizes under root, ignoring symlinks.
func dirSize(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total, err
}
