package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrUnsafeRoot is returned by Reset for roots that must never be wiped.
var ErrUnsafeRoot = errors.New("refusing to reset output directory")

// OutputTree lays out the per-team scorecard directories
type OutputTree struct {
	root string
}

// NewOutputTree creates an OutputTree rooted at root. Nothing is touched on
// disk until Reset or TeamDir is called.
func NewOutputTree(root string) (*OutputTree, error) {
	root, err := expandHome(root)
	if err != nil {
		return nil, err
	}
	return &OutputTree{root: root}, nil
}

// Reset deletes the root directory with everything in it and recreates it
// empty. The working directory, the filesystem root and the home directory
// are rejected.
func (o *OutputTree) Reset() error {
	if err := o.checkRoot(); err != nil {
		return err
	}
	if err := os.RemoveAll(o.root); err != nil {
		return errors.Wrapf(err, "removing output directory %s", o.root)
	}
	if err := os.MkdirAll(o.root, 0755); err != nil {
		return errors.Wrapf(err, "creating output directory %s", o.root)
	}
	return nil
}

func (o *OutputTree) checkRoot() error {
	clean := filepath.Clean(o.root)
	if o.root == "" || clean == "." || clean == string(filepath.Separator) || clean == filepath.VolumeName(clean)+string(filepath.Separator) {
		return errors.Wrapf(ErrUnsafeRoot, "%q", o.root)
	}
	if home, err := os.UserHomeDir(); err == nil && filepath.Clean(home) == clean {
		return errors.Wrapf(ErrUnsafeRoot, "%q", o.root)
	}
	if wd, err := os.Getwd(); err == nil {
		if abs, err := filepath.Abs(clean); err == nil && abs == wd {
			return errors.Wrapf(ErrUnsafeRoot, "%q", o.root)
		}
	}
	return nil
}

// TeamDir creates the folder named folder under the root and returns its
// path. folder is one of the names returned by FolderNames.
func (o *OutputTree) TeamDir(folder string) (string, error) {
	dir := filepath.Join(o.root, SafeName(folder))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "creating team directory %s", dir)
	}
	return dir, nil
}

// SafeName makes a team or opponent name usable as a single path element.
// Path separators, characters reserved on common filesystems and control
// characters become "_"; everything else is kept verbatim.
func SafeName(name string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '<', '>', ':', '"', '|', '?', '*':
			return '_'
		}
		if r < 0x20 || r == 0x7f {
			return '_'
		}
		return r
	}, name)

	switch safe {
	case "", ".", "..":
		return "_"
	}
	return safe
}

// FolderNames returns one folder name per team, in team order. Names are
// passed through SafeName, and teams whose names clash after that (ignoring
// case) get a " (n)" suffix, so every team keeps a folder of its own.
func FolderNames(teams []string) []string {
	names := make([]string, len(teams))
	used := make(map[string]bool)

	for i, team := range teams {
		base := SafeName(team)
		name := base
		for n := 2; used[strings.ToLower(name)]; n++ {
			name = UniqueName(base, "", n)
		}
		used[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

// UniqueName returns the n-th candidate file name for base: "base.ext" for
// n == 1, then "base (2).ext", "base (3).ext" and so on.
func UniqueName(base, ext string, n int) string {
	if n <= 1 {
		return base + ext
	}
	return fmt.Sprintf("%s (%d)%s", base, n, ext)
}

// CreateUnique creates a new file in dir named after base, numbering it when
// a file of that name already exists. Files are opened exclusively, so an
// existing file is never overwritten. The caller closes the file.
func CreateUnique(dir, base, ext string) (*os.File, error) {
	base = SafeName(base)
	for n := 1; ; n++ {
		path := filepath.Join(dir, UniqueName(base, ext, n))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return f, nil
		}
		if !os.IsExist(err) {
			return nil, errors.Wrapf(err, "creating %s", path)
		}
	}
}
