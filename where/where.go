// Package where resolves the application's filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/cinesrc/cinesrc/constant"
	"github.com/cinesrc/cinesrc/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the default configuration directory.
const EnvConfigPath = "CINESRC_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config is the configuration directory. CINESRC_CONFIG_PATH takes precedence over the
// platform default (XDG_CONFIG_HOME on Linux).
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.App))
}

// Cache is the cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.App))
}

// Logs is the directory of dated log files.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Providers is the directory holding custom Lua providers.
func Providers() string {
	return ensureDir(filepath.Join(Config(), "providers"))
}

// History is the file storing completed retrievals.
func History() string {
	return filepath.Join(Config(), "history.json")
}

// Queries is the file ranking previously used catalog filters.
func Queries() string {
	return filepath.Join(Cache(), "queries.json")
}

// Temp is a volatile directory for transient artifacts.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.App))
}
