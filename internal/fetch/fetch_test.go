package fetch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateURL(t *testing.T) {
	t.Parallel()

	valid := []string{
		"https://github.com/user/repo",
		"https://github.com/user/repo.git",
		"https://github.com/org/repo/tree/main",
	}
	for _, u := range valid {
		if err := ValidateURL(u); err != nil {
			t.Errorf("ValidateURL(%q) = %v, want nil", u, err)
		}
	}

	invalid := []string{
		"",
		"https://github.com/",
		"https://github.com/user",
		"https://gitlab.com/user/repo",
		"git@github.com:user/repo.git",
		"not a url",
	}
	for _, u := range invalid {
		if err := ValidateURL(u); err == nil {
			t.Errorf("ValidateURL(%q) accepted", u)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.py"), "def f(): pass\n")
	writeFile(t, filepath.Join(root, "src", "lib.py"), "def g(): pass\n")
	writeFile(t, filepath.Join(root, "README.md"), "# readme\n")
	writeFile(t, filepath.Join(root, "empty.py"), "")
	writeFile(t, filepath.Join(root, "__pycache__", "lib.cpython.py"), "cached\n")
	writeFile(t, filepath.Join(root, ".git", "config.py"), "not code\n")
	writeFile(t, filepath.Join(root, "node_modules", "dep.py"), "dep\n")

	f := New(map[string]bool{"py": true}, nil)
	files := f.discover(root)

	got := make(map[string]bool, len(files))
	for _, fi := range files {
		got[fi.RelPath] = true
	}
	want := []string{"app.py", "src/lib.py"}
	if len(files) != len(want) {
		t.Fatalf("discovered %v, want %v", got, want)
	}
	for _, w := range want {
		if !got[w] {
			t.Errorf("missing %s in %v", w, got)
		}
	}
}

func TestDiscoverHonorsGitignore(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), "generated/\n")
	writeFile(t, filepath.Join(root, "main.py"), "def f(): pass\n")
	writeFile(t, filepath.Join(root, "generated", "gen.py"), "def g(): pass\n")

	f := New(map[string]bool{"py": true}, nil)
	files := f.discover(root)
	if len(files) != 1 || files[0].RelPath != "main.py" {
		t.Fatalf("gitignore not honored: %+v", files)
	}
}

func TestFetchRejectsInvalidLocator(t *testing.T) {
	t.Parallel()

	f := New(map[string]bool{"py": true}, nil)
	if _, err := f.Fetch(t.Context(), "ftp://nope"); err == nil {
		t.Fatal("invalid locator accepted")
	}
}
