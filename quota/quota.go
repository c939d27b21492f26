// Package quota tracks monthly character usage against the translation
// provider's quota. DeepL's free tier allows 500000 characters per month,
// so subkit keeps a local ledger of how many source characters have been
// submitted and warns before the limit is reached.
//
// The ledger is stored in the XDG state directory:
//
//	$XDG_STATE_HOME/subkit/quota.yaml  (default: ~/.local/state/subkit/)
//
// The counter resets automatically when a new month starts.
package quota

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the quota ledger file name.
const FileName = "quota.yaml"

// Version is the ledger format version.
const Version = 1

// DefaultLimit is the DeepL free tier allowance: characters per month.
const DefaultLimit int64 = 500000

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// File represents the quota.yaml ledger.
type File struct {
	Version int    `yaml:"version"`
	Month   string `yaml:"month"` // "2006-01"
	Used    int64  `yaml:"used"`  // source characters submitted this month

	mu   sync.Mutex `yaml:"-"`
	path string     `yaml:"-"`
}

// CurrentMonth returns the month key for the current wall clock time.
func CurrentMonth() string {
	return time.Now().Format("2006-01")
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// stateDir returns the XDG state directory for subkit.
// Respects $XDG_STATE_HOME (falls back to ~/.local/state).
func stateDir() (string, error) {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "subkit"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", "subkit"), nil
}

// Load reads the quota ledger from the state directory.
// Returns a fresh ledger if the file doesn't exist, and rolls the
// counter over to zero if the stored month is not the current one.
func Load() (*File, error) {
	dir, err := stateDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, FileName)

	f := &File{
		Version: Version,
		Month:   CurrentMonth(),
		path:    path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	f.path = path
	f.rollover(CurrentMonth())

	return f, nil
}

// Save writes the ledger to disk.
func (f *File) Save() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.path == "" {
		return fmt.Errorf("quota file path not set")
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling quota file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", f.path, err)
	}

	return nil
}

// Path returns the ledger file path.
func (f *File) Path() string {
	return f.path
}

// rollover resets the counter when the tracked month is not current.
// Provider quotas reset at the start of each calendar month.
func (f *File) rollover(month string) {
	if f.Month != month {
		f.Month = month
		f.Used = 0
	}
}

// ---------------------------------------------------------------------------
// Counter operations
// ---------------------------------------------------------------------------

// Add records n submitted source characters.
func (f *File) Add(n int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Used += n
}

// Stats returns the used and remaining character counts for a limit.
// Remaining never goes below zero.
func (f *File) Stats(limit int64) (used, remaining int64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	used = f.Used
	remaining = limit - f.Used
	if remaining < 0 {
		remaining = 0
	}
	return
}

// Exceeded reports whether the given number of additional characters
// would push usage past the limit.
func (f *File) Exceeded(limit, additional int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Used+additional > limit
}

// Percent returns usage as a percentage of the limit.
func (f *File) Percent(limit int64) float64 {
	if limit <= 0 {
		return 0
	}
	used, _ := f.Stats(limit)
	return float64(used) / float64(limit) * 100
}

// ---------------------------------------------------------------------------
// Human-readable summary
// ---------------------------------------------------------------------------

// Summary returns a human-readable usage line for the status command.
func (f *File) Summary(limit int64) string {
	used, remaining := f.Stats(limit)
	return fmt.Sprintf("%s: %d / %d characters used (%.1f%%), %d remaining",
		f.Month, used, limit, f.Percent(limit), remaining)
}
