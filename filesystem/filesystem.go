// Package filesystem is the single entry point for filesystem access.
//
// Everything goes through API() so that tests can swap the OS backend for an
// in-memory one.
package filesystem

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the active backend.
func API() afero.Afero {
	return backend
}

// SetOsFs restores the native backend.
func SetOsFs() {
	SetFs(afero.NewOsFs())
}

// SetMemMapFs switches to a volatile in-memory backend.
func SetMemMapFs() {
	SetFs(afero.NewMemMapFs())
}

// SetFs installs an arbitrary backend.
func SetFs(fs afero.Fs) {
	backend = afero.Afero{Fs: fs}
}

// ListExt returns the paths of regular files in dir having extension ext, sorted by name.
// A missing directory yields no paths.
func ListExt(dir, ext string) ([]string, error) {
	if exists, err := backend.DirExists(dir); err != nil || !exists {
		return nil, err
	}

	infos, err := backend.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), ext) {
			continue
		}
		paths = append(paths, filepath.Join(dir, info.Name()))
	}

	sort.Strings(paths)
	return paths, nil
}
