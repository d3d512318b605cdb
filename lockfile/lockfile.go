// Package lockfile implements transcat.lock — a lock file that tracks MD5
// checksums of source leaves per target language. It lets `transcat status`
// report which targets went stale because their source text changed after
// the last translation run.
//
// The lock file is stored next to the source catalog.
package lockfile

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// LockFileName is the default lock file name.
const LockFileName = "transcat.lock"

// Version is the lock file format version.
const Version = 1

// LockFile represents the transcat.lock file structure.
type LockFile struct {
	Version   int                          `yaml:"version"`
	Checksums map[string]map[string]string `yaml:"checksums"` // target lang -> key path -> md5

	path string `yaml:"-"`
}

// Load reads a lock file from the given directory. A missing file yields
// an empty lock file, not an error.
func Load(dir string) (*LockFile, error) {
	path := filepath.Join(dir, LockFileName)
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
		path:      path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	lf.path = path

	if lf.Checksums == nil {
		lf.Checksums = make(map[string]map[string]string)
	}

	return lf, nil
}

// Save writes the lock file to disk.
func (lf *LockFile) Save() error {
	if lf.path == "" {
		return fmt.Errorf("lock file path not set")
	}

	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}

	if err := os.WriteFile(lf.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}

	return nil
}

// Path returns the lock file path.
func (lf *LockFile) Path() string {
	return lf.path
}

// Checksum returns the MD5 checksum of a source leaf value.
func Checksum(value string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(value)))
}

// SetChecksums records the checksums of all source leaves for a target
// language, replacing whatever was recorded before.
func (lf *LockFile) SetChecksums(lang string, leaves map[string]string) {
	sums := make(map[string]string, len(leaves))
	for path, value := range leaves {
		sums[path] = Checksum(value)
	}
	if lf.Checksums == nil {
		lf.Checksums = make(map[string]map[string]string)
	}
	lf.Checksums[lang] = sums
}

// Stale returns the key paths whose current source value differs from the
// checksum recorded for the given target language, plus paths never
// recorded. The result is sorted for stable output.
func (lf *LockFile) Stale(lang string, leaves map[string]string) []string {
	recorded := lf.Checksums[lang]

	var stale []string
	for path, value := range leaves {
		if recorded[path] != Checksum(value) {
			stale = append(stale, path)
		}
	}
	sort.Strings(stale)
	return stale
}

// HasLanguage reports whether checksums were ever recorded for a target.
func (lf *LockFile) HasLanguage(lang string) bool {
	_, ok := lf.Checksums[lang]
	return ok
}
