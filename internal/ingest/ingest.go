// Package ingest implements the Archive Ingester: it scans a directory of
// compressed dictionary archives, normalizes filenames to NFC, extracts and
// classifies their shard contents into per-dictionary KV stores, copies
// static assets, and reports progress, isolating failures per archive.
package ingest

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/jreader/yomitanctl/internal/jerrors"
	"github.com/jreader/yomitanctl/internal/kvstore"
	"github.com/jreader/yomitanctl/internal/progress"
	"github.com/jreader/yomitanctl/internal/registry"
	"github.com/jreader/yomitanctl/internal/yomitan"
)

// Stats summarizes the outcome of a Scan.
type Stats struct {
	Processed    int
	Skipped      int
	SizeFiltered int
	Errors       int
}

// RegisterSink is the narrow interface the ingester needs from a dictionary
// registry: hot-add a freshly populated directory.
type RegisterSink interface {
	Register(dir string) (*registry.RegisteredDictionary, error)
}

// Ingester transforms staged archives under root/yomitan/ into
// root/db/<dict>/ stores and root/static/<dict>/ asset trees.
type Ingester struct {
	Logger   *log.Logger
	Progress *progress.Tracker
	Workers  int
}

// New constructs an Ingester. A nil logger falls back to log.Default(); a
// non-positive workers count defaults to 1 (sequential processing).
func New(logger *log.Logger, prog *progress.Tracker, workers int) *Ingester {
	if logger == nil {
		logger = log.Default()
	}
	if workers <= 0 {
		workers = 1
	}
	return &Ingester{Logger: logger, Progress: prog, Workers: workers}
}

const (
	dirYomitan = "yomitan"
	dirDB      = "db"
	dirStatic  = "static"
)

var schemaOrder = []string{"term_bank_", "tag_bank_", "term_meta_bank_", "kanji_bank_", "kanji_meta_bank_"}

// Scan enumerates every .zip archive under root/yomitan/, processes each
// (normalizing its filename, extracting its shards, copying static assets)
// and hot-registers it with sink. maxSizeMB of 0 means no size ceiling.
// Failure in one archive is isolated: logged, counted, and scanning
// continues with the remaining archives.
func (in *Ingester) Scan(ctx context.Context, root string, maxSizeMB int64, sink RegisterSink) (Stats, error) {
	yomitanDir := filepath.Join(root, dirYomitan)
	entries, err := os.ReadDir(yomitanDir)
	if err != nil {
		return Stats{}, jerrors.New(jerrors.IO, "ingest.Scan: read yomitan dir", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".zip") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var (
		mu    sync.Mutex
		stats Stats
	)

	pool := NewWorkerPool(in.Workers, len(names))
	pool.Start(ctx)

	for _, name := range names {
		name := name
		_ = pool.Submit(func(ctx context.Context) error {
			result := in.processOne(ctx, root, name, maxSizeMB, sink)
			mu.Lock()
			defer mu.Unlock()
			switch result {
			case outcomeProcessed:
				stats.Processed++
			case outcomeSkipped:
				stats.Skipped++
			case outcomeSizeFiltered:
				stats.SizeFiltered++
			case outcomeError:
				stats.Errors++
			}
			return nil
		})
	}
	pool.Close()

	return stats, nil
}

type outcome int

const (
	outcomeProcessed outcome = iota
	outcomeSkipped
	outcomeSizeFiltered
	outcomeError
)

func (in *Ingester) processOne(ctx context.Context, root, name string, maxSizeMB int64, sink RegisterSink) outcome {
	yomitanDir := filepath.Join(root, dirYomitan)
	srcPath := filepath.Join(yomitanDir, name)

	info, err := os.Stat(srcPath)
	if err != nil {
		in.Logger.Printf("ingest: stat %s: %v", name, err)
		return outcomeError
	}
	if maxSizeMB > 0 && info.Size() > maxSizeMB*1024*1024 {
		in.Logger.Printf("ingest: skipping %s, exceeds %d MiB", name, maxSizeMB)
		return outcomeSizeFiltered
	}

	stem := stripExtension(name)
	normalizedStem := norm.NFC.String(stem)
	normalizedName := normalizedStem + filepath.Ext(name)

	if normalizedName != name {
		newPath := filepath.Join(yomitanDir, normalizedName)
		if err := os.Rename(srcPath, newPath); err != nil {
			in.Logger.Printf("ingest: rename %s to NFC form: %v", name, err)
			return outcomeError
		}
		srcPath = newPath
	}

	destDir := filepath.Join(root, dirDB, normalizedStem)
	if _, err := os.Stat(destDir); err == nil {
		in.registerExisting(destDir, sink)
		return outcomeSkipped
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		in.Logger.Printf("ingest: mkdir %s: %v", destDir, err)
		return outcomeError
	}

	if err := in.processArchive(ctx, srcPath, destDir, root, normalizedStem); err != nil {
		in.Logger.Printf("ingest: processing %s: %v", name, err)
		_ = os.RemoveAll(destDir)
		return outcomeError
	}

	in.registerExisting(destDir, sink)
	return outcomeProcessed
}

func (in *Ingester) registerExisting(dir string, sink RegisterSink) {
	if sink == nil {
		return
	}
	if _, err := sink.Register(dir); err != nil {
		in.Logger.Printf("ingest: register %s: %v", dir, err)
	}
}

// stripExtension generically strips the last "."-delimited segment of a
// filename, matching the behavior of joining all segments but the last.
func stripExtension(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) <= 1 {
		return name
	}
	return strings.Join(parts[:len(parts)-1], ".")
}

func (in *Ingester) processArchive(ctx context.Context, zipPath, destDir, root, stem string) error {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return jerrors.New(jerrors.ArchiveFormat, "ingest.processArchive: open zip", err)
	}
	defer zr.Close()

	indexEntry, err := findIndexFile(&zr.Reader)
	if err != nil {
		return err
	}

	indexRaw, err := readZipFile(indexEntry)
	if err != nil {
		return jerrors.New(jerrors.ArchiveFormat, "ingest.processArchive: read index.json", err)
	}

	var idx yomitan.DictionaryIndex
	if err := json.Unmarshal(indexRaw, &idx); err != nil {
		return jerrors.New(jerrors.SchemaDecode, "ingest.processArchive: decode index.json", err)
	}
	if err := idx.Validate(); err != nil {
		return jerrors.New(jerrors.SchemaDecode, "ingest.processArchive: validate index.json", err)
	}

	if err := os.WriteFile(filepath.Join(destDir, "index.json"), indexRaw, 0o644); err != nil {
		return jerrors.New(jerrors.IO, "ingest.processArchive: write index.json", err)
	}

	groupID := uuid.NewString()

	if err := processTermBank(ctx, &zr.Reader, destDir, idx, groupID, in.Progress); err != nil {
		return err
	}
	if err := processTagBank(ctx, &zr.Reader, destDir, idx, groupID, in.Progress); err != nil {
		return err
	}
	if err := processTermMetaBank(ctx, &zr.Reader, destDir, idx, groupID, in.Progress); err != nil {
		return err
	}
	if err := processKanjiBank(ctx, &zr.Reader, destDir, idx, groupID, in.Progress); err != nil {
		return err
	}
	if err := processKanjiMetaBank(ctx, &zr.Reader, destDir, idx, groupID, in.Progress); err != nil {
		return err
	}

	if err := copyStaticAssets(&zr.Reader, filepath.Join(root, dirStatic, stem), idx, groupID, in.Progress); err != nil {
		return err
	}

	return nil
}

func findIndexFile(zr *zip.Reader) (*zip.File, error) {
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if strings.TrimSuffix(f.Name, "/") == "index.json" {
			return f, nil
		}
	}
	return nil, jerrors.New(jerrors.ArchiveFormat, "ingest.findIndexFile", fmt.Errorf("archive has no index.json"))
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func hasSchemaPrefix(name, prefix string) bool {
	base := name
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		base = name[idx+1:]
	}
	return strings.HasPrefix(base, prefix)
}

func schemaFiles(zr *zip.Reader, prefix string) []*zip.File {
	var files []*zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if hasSchemaPrefix(f.Name, prefix) {
			files = append(files, f)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files
}

func decodeShardEntries[T any](files []*zip.File) ([]T, error) {
	var all []T
	for _, f := range files {
		raw, err := readZipFile(f)
		if err != nil {
			return nil, jerrors.New(jerrors.IO, "ingest.decodeShardEntries: read "+f.Name, err)
		}
		var entries []T
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, jerrors.New(jerrors.SchemaDecode, "ingest.decodeShardEntries: decode "+f.Name, err)
		}
		all = append(all, entries...)
	}
	return all, nil
}

func insertSchema[T any](ctx context.Context, destDir, prefix, schemaName string, entries []T, keyFn func(T) string, idx yomitan.DictionaryIndex, groupID string, prog *progress.Tracker) error {
	if len(entries) == 0 {
		return nil
	}
	grouped := kvstore.Group(entries, keyFn)

	store, err := kvstore.OpenRW[T](destDir, prefix)
	if err != nil {
		return err
	}
	defer store.Close()

	var sink kvstore.ProgressSink
	if prog != nil {
		sink = prog
	}
	return store.InsertAll(ctx, grouped, sink, idx.Title, idx.Revision, schemaName, groupID, "DbInsertAll")
}

func processTermBank(ctx context.Context, zr *zip.Reader, destDir string, idx yomitan.DictionaryIndex, groupID string, prog *progress.Tracker) error {
	files := schemaFiles(zr, "term_bank_")
	entries, err := decodeShardEntries[yomitan.TermEntry](files)
	if err != nil {
		return err
	}
	return insertSchema(ctx, destDir, "term_bank_", "term_bank", entries, func(e yomitan.TermEntry) string { return e.Text }, idx, groupID, prog)
}

func processTagBank(ctx context.Context, zr *zip.Reader, destDir string, idx yomitan.DictionaryIndex, groupID string, prog *progress.Tracker) error {
	files := schemaFiles(zr, "tag_bank_")
	entries, err := decodeShardEntries[yomitan.TagEntry](files)
	if err != nil {
		return err
	}
	return insertSchema(ctx, destDir, "tag_bank_", "tag_bank", entries, func(e yomitan.TagEntry) string { return e.Name }, idx, groupID, prog)
}

func processTermMetaBank(ctx context.Context, zr *zip.Reader, destDir string, idx yomitan.DictionaryIndex, groupID string, prog *progress.Tracker) error {
	files := schemaFiles(zr, "term_meta_bank_")
	entries, err := decodeShardEntries[yomitan.TermMetaEntry](files)
	if err != nil {
		return err
	}
	return insertSchema(ctx, destDir, "term_meta_bank_", "term_meta_bank", entries, func(e yomitan.TermMetaEntry) string { return e.Term }, idx, groupID, prog)
}

func processKanjiBank(ctx context.Context, zr *zip.Reader, destDir string, idx yomitan.DictionaryIndex, groupID string, prog *progress.Tracker) error {
	files := schemaFiles(zr, "kanji_bank_")
	entries, err := decodeShardEntries[yomitan.KanjiEntry](files)
	if err != nil {
		return err
	}
	return insertSchema(ctx, destDir, "kanji_bank_", "kanji_bank", entries, func(e yomitan.KanjiEntry) string { return e.Kanji }, idx, groupID, prog)
}

func processKanjiMetaBank(ctx context.Context, zr *zip.Reader, destDir string, idx yomitan.DictionaryIndex, groupID string, prog *progress.Tracker) error {
	files := schemaFiles(zr, "kanji_meta_bank_")
	entries, err := decodeShardEntries[yomitan.KanjiMetaEntry](files)
	if err != nil {
		return err
	}
	return insertSchema(ctx, destDir, "kanji_meta_bank_", "kanji_meta_bank", entries, func(e yomitan.KanjiMetaEntry) string { return e.Character }, idx, groupID, prog)
}

// copyStaticAssets copies every non-JSON, non-directory archive entry into
// destDir, preserving its subpath, and reports progress under one task
// whose total is precomputed from the archive manifest.
func copyStaticAssets(zr *zip.Reader, destDir string, idx yomitan.DictionaryIndex, groupID string, prog *progress.Tracker) error {
	var assets []*zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if strings.TrimSuffix(f.Name, "/") == "index.json" {
			continue
		}
		if strings.EqualFold(filepath.Ext(f.Name), ".json") {
			continue
		}
		if isSchemaShard(f.Name) {
			continue
		}
		assets = append(assets, f)
	}
	if len(assets) == 0 {
		return nil
	}

	var taskID string
	if prog != nil {
		var err error
		taskID, err = prog.CreateTask(groupID, "CopyStaticAssets", idx.Title, idx.Revision, "", int64(len(assets)))
		if err != nil {
			return jerrors.New(jerrors.Storage, "ingest.copyStaticAssets: create task", err)
		}
	}

	for _, f := range assets {
		destPath := filepath.Join(destDir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return jerrors.New(jerrors.IO, "ingest.copyStaticAssets: mkdir", err)
		}
		data, err := readZipFile(f)
		if err != nil {
			return jerrors.New(jerrors.IO, "ingest.copyStaticAssets: read "+f.Name, err)
		}
		if err := os.WriteFile(destPath, data, 0o644); err != nil {
			return jerrors.New(jerrors.IO, "ingest.copyStaticAssets: write "+destPath, err)
		}
		if prog != nil && taskID != "" {
			if err := prog.Increment(taskID, 1); err != nil {
				return jerrors.New(jerrors.Storage, "ingest.copyStaticAssets: increment progress", err)
			}
		}
	}
	return nil
}

func isSchemaShard(name string) bool {
	for _, prefix := range schemaOrder {
		if hasSchemaPrefix(name, prefix) {
			return true
		}
	}
	return false
}
