// Package cache keeps JSON documents on disk for a bounded time.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cinesrc/cinesrc/filesystem"
	"github.com/cinesrc/cinesrc/log"
	"github.com/cinesrc/cinesrc/where"
	"github.com/spf13/afero"
)

// Dir is where cached documents live.
func Dir() string {
	dir := filepath.Join(where.Cache(), "records")
	_ = filesystem.API().MkdirAll(dir, os.ModePerm)
	return dir
}

// Key hashes parts into a file name. Parts are joined in order.
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(hash[:])
}

// Read decodes the document stored under key into target. It reports false
// for missing, unreadable or older than ttl documents.
func Read(key string, ttl time.Duration, target any) bool {
	path := filepath.Join(Dir(), key)

	info, err := filesystem.API().Stat(path)
	if err != nil || time.Since(info.ModTime()) > ttl {
		return false
	}

	f, err := filesystem.API().Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(target); err != nil {
		log.Debugf("cache %s: %v", key, err)
		return false
	}
	return true
}

// Write stores data under key, replacing the previous document atomically.
func Write(key string, data any) error {
	path := filepath.Join(Dir(), key)
	tmp := path + ".tmp"

	f, err := filesystem.API().Create(tmp)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(f).Encode(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return filesystem.API().Rename(tmp, path)
}

// CollectGarbage removes documents older than ttl in the background.
func CollectGarbage(ttl time.Duration) {
	go func() {
		_ = afero.Walk(filesystem.API(), Dir(), func(path string, info fs.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return nil
			}
			if time.Since(info.ModTime()) > ttl {
				_ = filesystem.API().Remove(path)
			}
			return nil
		})
	}()
}

// Clear removes every cached document.
func Clear() error {
	return filesystem.API().RemoveAll(Dir())
}
