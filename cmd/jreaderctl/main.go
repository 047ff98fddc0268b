// Command jreaderctl drives the dictionary subsystem from the command
// line: ingesting staged Yomitan archives and running compound-aware
// lookups against the resulting registry.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jreader/yomitanctl/internal/config"
	"github.com/jreader/yomitanctl/internal/ingest"
	"github.com/jreader/yomitanctl/internal/lookup"
	"github.com/jreader/yomitanctl/internal/morph"
	"github.com/jreader/yomitanctl/internal/progress"
	"github.com/jreader/yomitanctl/internal/registry"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: jreaderctl <ingest|lookup> [flags]")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch os.Args[1] {
	case "ingest":
		runIngest(ctx, os.Args[2:])
	case "lookup":
		runLookup(ctx, os.Args[2:])
	default:
		log.Fatalf("unknown subcommand %q (want ingest or lookup)", os.Args[1])
	}
}

func runIngest(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	cfg, err := config.Load(fs, args)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := log.New(os.Stderr, "ingest: ", log.LstdFlags)

	prog, err := progress.New("")
	if err != nil {
		log.Fatalf("progress tracker: %v", err)
	}
	defer prog.Close()

	reg := registry.New()

	in := ingest.New(logger, prog, 4)
	stats, err := in.Scan(ctx, cfg.DictsPath, cfg.MaxArchiveSizeMB, reg)
	if err != nil {
		log.Fatalf("scan: %v", err)
	}

	fmt.Printf("processed=%d skipped=%d size_filtered=%d errors=%d\n",
		stats.Processed, stats.Skipped, stats.SizeFiltered, stats.Errors)

	for _, info := range reg.DictionariesInfo() {
		fmt.Printf("  %s %s (%s)\n", info.Title, info.Revision, info.Type)
	}
}

func runLookup(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("lookup", flag.ExitOnError)
	termFlag := fs.String("term", "", "text to analyze and look up")
	posFlag := fs.Int("position", 0, "rune offset within -term to anchor the lookup")
	cfg, err := config.Load(fs, args)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *termFlag == "" {
		log.Fatal("lookup requires -term")
	}

	logger := log.New(os.Stderr, "lookup: ", log.LstdFlags)

	reg := registry.New()
	loadErrors, err := reg.LoadAll(filepath.Join(cfg.DictsPath, "db"))
	if err != nil {
		log.Fatalf("load registry: %v", err)
	}
	for _, e := range loadErrors {
		logger.Printf("load: %v", e)
	}

	analyzer, err := morph.New()
	if err != nil {
		log.Fatalf("morphology analyzer: %v", err)
	}

	tokens, err := analyzer.Analyze(*termFlag, *posFlag)
	if err != nil {
		log.Fatalf("analyze: %v", err)
	}

	engine := lookup.New(reg, logger)
	prefs := lookup.NewUserPreferences("cli", reg.DictionariesInfo())

	result, err := engine.Lookup(ctx, tokens, prefs)
	if err != nil {
		log.Fatalf("lookup: %v", err)
	}

	fmt.Printf("candidates: %d\n", len(tokens))
	for _, dr := range result.Dict {
		fmt.Printf("  %s %s: %d entries\n", dr.Title, dr.Revision, len(dr.Entries))
	}
	for text, byReading := range result.Pitch {
		for reading, pitches := range byReading {
			fmt.Printf("  pitch %s/%s: %d candidates\n", text, reading, len(pitches))
		}
	}
	for dict, freqs := range result.Freq {
		fmt.Printf("  freq %s: %d entries\n", dict, len(freqs))
	}
}
