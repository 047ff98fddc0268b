package config

import (
	"flag"
	"testing"
)

func TestLoadFromFlag(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Load(fs, []string{"-dicts-path", "/data/dicts", "-max-size-mb", "50"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DictsPath != "/data/dicts" {
		t.Fatalf("expected /data/dicts, got %q", cfg.DictsPath)
	}
	if cfg.MaxArchiveSizeMB != 50 {
		t.Fatalf("expected max size 50, got %d", cfg.MaxArchiveSizeMB)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DICTS_PATH", "/env/dicts")
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Load(fs, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DictsPath != "/env/dicts" {
		t.Fatalf("expected /env/dicts, got %q", cfg.DictsPath)
	}
}

func TestFlagOverridesEnv(t *testing.T) {
	t.Setenv("DICTS_PATH", "/env/dicts")
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Load(fs, []string{"-dicts-path", "/flag/dicts"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DictsPath != "/flag/dicts" {
		t.Fatalf("expected flag value to win over env, got %q", cfg.DictsPath)
	}
}

func TestLoadMissingDictsPath(t *testing.T) {
	t.Setenv("DICTS_PATH", "")
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	if _, err := Load(fs, nil); err == nil {
		t.Fatalf("expected an error when DICTS_PATH is unset and no flag given")
	}
}
