// Package config parses the dictionary subsystem's small configuration
// surface: a root directory and an optional per-archive size ceiling.
package config

import (
	"flag"
	"fmt"
	"os"
)

// Config holds the resolved runtime configuration.
type Config struct {
	// DictsPath is the root directory containing yomitan/, db/ and static/.
	DictsPath string
	// MaxArchiveSizeMB is the per-archive size ceiling in megabytes; 0 means unlimited.
	MaxArchiveSizeMB int64
}

// Load resolves DICTS_PATH from the environment, with the given flag set
// allowed to override it. fs should be an unparsed flag.FlagSet (or
// flag.CommandLine); args are parsed against it.
func Load(fs *flag.FlagSet, args []string) (Config, error) {
	dictsPath := fs.String("dicts-path", "", "root directory for dictionary archives and storage (overrides DICTS_PATH)")
	maxSizeMB := fs.Int64("max-size-mb", 0, "skip archives larger than this many megabytes (0 = unlimited)")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	path := *dictsPath
	if path == "" {
		path = os.Getenv("DICTS_PATH")
	}
	if path == "" {
		return Config{}, fmt.Errorf("DICTS_PATH is required (set the environment variable or pass -dicts-path)")
	}

	return Config{
		DictsPath:        path,
		MaxArchiveSizeMB: *maxSizeMB,
	}, nil
}
