package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"clinetl/internal/config"
	"clinetl/internal/datasource/httpds"
	"clinetl/internal/fhir"
	"clinetl/internal/metrics"
	"clinetl/internal/skiplog"
	"clinetl/internal/storage"
	"clinetl/internal/variant"
)

// app holds what every command of one invocation shares.
type app struct {
	cfg   config.Config
	job   string
	skips *skiplog.Recorder

	flushMetrics func()
}

func newApp(cfg config.Config) *app {
	job := cfg.Job
	if job == "" {
		job = uuid.NewString()
	}
	a := &app{
		cfg:   cfg,
		job:   job,
		skips: skiplog.New(cfg.SkippedDir),
	}
	a.flushMetrics = setupMetrics(cfg.Metrics, job, cfg.Verbose)
	return a
}

func (a *app) close() {
	log.Printf("skipped: job=%s %s", a.job, a.skips.Summary())
	if err := a.skips.Close(); err != nil {
		log.Printf("skipped: close: %v", err)
	}
	a.flushMetrics()
}

func (a *app) run(ctx context.Context, cmd string) error {
	if a.cfg.Verbose {
		log.Printf("run: job=%s command=%s store=%s", a.job, cmd, a.cfg.Store.Kind)
	}
	switch cmd {
	case "fetch":
		return a.step("fetch", func() error { return a.fetch(ctx) })
	case "load":
		return a.withStore(ctx, func(s storage.Store) error {
			return a.step(variant.StageLoad, func() error { return a.load(ctx, s) })
		})
	case "filter":
		return a.withStore(ctx, func(s storage.Store) error {
			return a.step(variant.StageFilter, func() error { return a.filter(ctx, s) })
		})
	case "normalize":
		return a.withStore(ctx, func(s storage.Store) error {
			return a.step(variant.StageNormalize, func() error { return a.normalize(ctx, s) })
		})
	case "variants":
		return a.withStore(ctx, func(s storage.Store) error {
			if err := a.step(variant.StageFilter, func() error { return a.filter(ctx, s) }); err != nil {
				return err
			}
			return a.step(variant.StageNormalize, func() error { return a.normalize(ctx, s) })
		})
	case "bundles":
		return a.withStore(ctx, func(s storage.Store) error {
			return a.step(fhir.Stage, func() error { return a.bundles(ctx, s) })
		})
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// step times fn and records its outcome.
func (a *app) step(name string, fn func() error) error {
	start := time.Now()
	if a.cfg.Verbose {
		log.Printf("%s: start", name)
	}
	err := fn()
	d := time.Since(start)
	metrics.RecordStep(a.job, name, err, d)
	if err != nil {
		return err
	}
	log.Printf("%s: done in %s", name, d.Truncate(time.Millisecond))
	return nil
}

// withStore opens the configured store for the duration of fn.
func (a *app) withStore(ctx context.Context, fn func(storage.Store) error) error {
	if err := prepareSQLitePath(a.cfg.Store); err != nil {
		return err
	}
	s, err := storage.New(ctx, storage.Config{
		Kind:           a.cfg.Store.Kind,
		DSN:            a.cfg.Store.DSN,
		ConnectRetries: a.cfg.Store.ConnectRetries,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Printf("store: close: %v", err)
		}
	}()
	return fn(s)
}

// prepareSQLitePath creates the parent directory of a plain sqlite file DSN.
func prepareSQLitePath(st config.Store) error {
	if !strings.EqualFold(st.Kind, "sqlite") {
		return nil
	}
	dsn := st.DSN
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: create %s: %w", dir, err)
	}
	return nil
}

func (a *app) fetch(ctx context.Context) error {
	dest := fetchDest(a.cfg.Variants.Source, a.cfg.Variants.URL)
	c := httpds.NewClient(httpds.Config{MaxRetries: 3, UserAgent: "clinetl"})
	n, err := c.Download(ctx, a.cfg.Variants.URL, dest)
	if err != nil {
		return err
	}
	log.Printf("fetch: url=%s dest=%s bytes=%d", a.cfg.Variants.URL, dest, n)
	return nil
}

// fetchDest resolves source to a file path. A trailing separator or an
// existing directory means "save under the URL's file name in there".
func fetchDest(source, url string) string {
	if strings.HasSuffix(source, "/") || strings.HasSuffix(source, string(filepath.Separator)) {
		return filepath.Join(source, httpds.FilenameFromURL(url))
	}
	if fi, err := os.Stat(source); err == nil && fi.IsDir() {
		return filepath.Join(source, httpds.FilenameFromURL(url))
	}
	return source
}

func (a *app) load(ctx context.Context, s storage.Store) error {
	return variant.LoadVariantsFile(ctx, a.cfg.Variants.Source, s, variant.LoadOptions{
		ChunkSize: a.cfg.Variants.ChunkSize,
		Encoding:  a.cfg.Variants.Encoding,
		Job:       a.job,
		Skips:     a.skips,
	})
}

func (a *app) filter(ctx context.Context, s storage.Store) error {
	return variant.FilterFile(ctx, a.cfg.Variants.Source, s, variant.FilterOptions{
		Column:    a.cfg.Variants.FilterColumn,
		Substring: a.cfg.Variants.FilterSubstring,
		MatchAll:  a.cfg.Variants.FilterSubstring == "",
		ChunkSize: a.cfg.Variants.ChunkSize,
		Encoding:  a.cfg.Variants.Encoding,
		Job:       a.job,
		Skips:     a.skips,
	})
}

func (a *app) normalize(ctx context.Context, s storage.Store) error {
	return variant.NormalizeIdentifiers(ctx, s, variant.NormalizeOptions{
		BatchSize: a.cfg.Variants.BatchSize,
		Job:       a.job,
		Skips:     a.skips,
	})
}

func (a *app) bundles(ctx context.Context, s storage.Store) error {
	return fhir.MapDirectory(ctx, a.cfg.Bundles.Dir, s, fhir.MapOptions{
		Pattern:          a.cfg.Bundles.Pattern,
		MapBareResources: a.cfg.Bundles.MapBareResources,
		Job:              a.job,
		Skips:            a.skips,
	})
}
