// Package config defines the run configuration of clinetl and the layers it
// is assembled from:
//
//  1. Defaults()
//  2. an optional file (.json, or .yaml/.yml)
//  3. CLINETL_* environment variables (e.g. CLINETL_STORE_DSN,
//     CLINETL_VARIANTS_CHUNK_SIZE)
//  4. command-line flags the user actually set
//
// Each layer only overrides the fields it mentions.
//
// Example file:
//
//	job: nightly
//	store:
//	  kind: postgres
//	  dsn: postgres://etl@db/clinical
//	variants:
//	  source: data/variant_summary.txt.gz
//	bundles:
//	  dir: data/fhir
package config

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "CLINETL"

// DefaultURL is the upstream location of the ClinVar variant summary.
const DefaultURL = "https://ftp.ncbi.nlm.nih.gov/pub/clinvar/tab_delimited/variant_summary.txt"

// Config is the complete run configuration.
type Config struct {
	// Job labels log lines and metrics. Empty means a generated run id.
	Job     string `json:"job" yaml:"job"`
	Verbose bool   `json:"verbose" yaml:"verbose"`

	Store    Store    `json:"store" yaml:"store"`
	Variants Variants `json:"variants" yaml:"variants"`
	Bundles  Bundles  `json:"bundles" yaml:"bundles"`
	Metrics  Metrics  `json:"metrics" yaml:"metrics"`

	// SkippedDir receives one CSV per stage listing skipped items. Empty
	// keeps counts only.
	SkippedDir string `json:"skipped_dir" yaml:"skipped_dir" split_words:"true"`
}

// Store selects and opens the relational backend.
type Store struct {
	// Kind is a registered backend: sqlite, postgres, mysql or mssql.
	Kind string `json:"kind" yaml:"kind"`
	// DSN is passed to the backend driver. For sqlite it is a file path.
	DSN string `json:"dsn" yaml:"dsn"`
	// ConnectRetries bounds the retries of the initial open and ping.
	ConnectRetries int `json:"connect_retries" yaml:"connect_retries" split_words:"true"`
}

// Variants configures the fetch, load, filter and normalize commands.
type Variants struct {
	Source          string `json:"source" yaml:"source"`
	URL             string `json:"url" yaml:"url"`
	Encoding        string `json:"encoding" yaml:"encoding"`
	FilterColumn    string `json:"filter_column" yaml:"filter_column" split_words:"true"`
	FilterSubstring string `json:"filter_substring" yaml:"filter_substring" split_words:"true"`
	ChunkSize       int    `json:"chunk_size" yaml:"chunk_size" split_words:"true"`
	BatchSize       int    `json:"batch_size" yaml:"batch_size" split_words:"true"`
}

// Bundles configures the bundles command.
type Bundles struct {
	Dir              string `json:"dir" yaml:"dir"`
	Pattern          string `json:"pattern" yaml:"pattern"`
	MapBareResources bool   `json:"map_bare_resources" yaml:"map_bare_resources" split_words:"true"`
}

// Metrics selects the metrics backend: "none", "pushgateway" or "datadog".
type Metrics struct {
	Backend        string `json:"backend" yaml:"backend"`
	PushgatewayURL string `json:"pushgateway_url" yaml:"pushgateway_url" split_words:"true"`
	DatadogAddr    string `json:"datadog_addr" yaml:"datadog_addr" split_words:"true"`
}

// Defaults returns the base layer.
func Defaults() Config {
	return Config{
		Store: Store{
			Kind:           "sqlite",
			DSN:            "data/clinetl.db",
			ConnectRetries: 3,
		},
		Variants: Variants{
			Source:          "data/variant_summary.txt",
			URL:             DefaultURL,
			Encoding:        "utf-8",
			FilterColumn:    "ClinicalSignificance",
			FilterSubstring: "Pathogenic",
			ChunkSize:       200_000,
			BatchSize:       100_000,
		},
		Bundles: Bundles{
			Dir:     "data/fhir",
			Pattern: "*.json",
		},
		Metrics: Metrics{
			Backend: "none",
		},
	}
}

// Load assembles Defaults, the file at path (skipped when path is empty) and
// the environment.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile overlays the file at path onto cfg. The format follows the
// extension: .json, .yaml or .yml. Unknown keys are errors.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("config: decode %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.UnmarshalStrict(data, cfg); err != nil {
			return fmt.Errorf("config: decode %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config: %s: unsupported extension %q (want .json, .yaml or .yml)", path, ext)
	}
	return nil
}

// ApplyEnv overlays CLINETL_* environment variables onto cfg. Unset
// variables leave fields untouched.
func ApplyEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("config: env: %w", err)
	}
	return nil
}

// Flags binds command-line flags for the most common settings. Values are
// applied by Apply only for flags present on the command line, so they win
// over every other layer without masking them when absent.
type Flags struct {
	fs   *flag.FlagSet
	vals Config
}

// BindFlags registers the flags on fs.
func BindFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	v := &f.vals
	fs.StringVar(&v.Job, "job", "", "job name used in logs and metrics")
	fs.BoolVar(&v.Verbose, "v", false, "enable verbose logs")
	fs.StringVar(&v.Store.Kind, "store", "", "store backend (sqlite, postgres, mysql, mssql)")
	fs.StringVar(&v.Store.DSN, "dsn", "", "store DSN; a file path for sqlite")
	fs.IntVar(&v.Store.ConnectRetries, "connect-retries", 0, "retries when opening the store")
	fs.StringVar(&v.Variants.Source, "source", "", "variant summary TSV path (.gz accepted)")
	fs.StringVar(&v.Variants.URL, "url", "", "variant summary download URL")
	fs.StringVar(&v.Variants.Encoding, "encoding", "", "source charset (utf-8, latin1, windows-1252, utf-16)")
	fs.StringVar(&v.Variants.FilterColumn, "filter-column", "", "column matched by the filter")
	fs.StringVar(&v.Variants.FilterSubstring, "filter", "", "case-sensitive substring selected by the filter")
	fs.IntVar(&v.Variants.ChunkSize, "chunk-size", 0, "rows per TSV chunk")
	fs.IntVar(&v.Variants.BatchSize, "batch-size", 0, "rows per normalization page")
	fs.StringVar(&v.Bundles.Dir, "bundles-dir", "", "directory of FHIR JSON documents")
	fs.StringVar(&v.Bundles.Pattern, "pattern", "", "file name pattern for bundle documents")
	fs.BoolVar(&v.Bundles.MapBareResources, "bare-resources", false, "also map documents that are a single resource")
	fs.StringVar(&v.Metrics.Backend, "metrics-backend", "", "metrics backend (none, pushgateway, datadog)")
	fs.StringVar(&v.Metrics.PushgatewayURL, "pushgateway-url", "", "Pushgateway base URL")
	fs.StringVar(&v.Metrics.DatadogAddr, "datadog-addr", "", "DogStatsD address")
	fs.StringVar(&v.SkippedDir, "skipped-dir", "", "directory for skipped-item CSV files")
	return f
}

// Apply copies the values of visited flags onto cfg.
func (f *Flags) Apply(cfg *Config) {
	v := f.vals
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "job":
			cfg.Job = v.Job
		case "v":
			cfg.Verbose = v.Verbose
		case "store":
			cfg.Store.Kind = v.Store.Kind
		case "dsn":
			cfg.Store.DSN = v.Store.DSN
		case "connect-retries":
			cfg.Store.ConnectRetries = v.Store.ConnectRetries
		case "source":
			cfg.Variants.Source = v.Variants.Source
		case "url":
			cfg.Variants.URL = v.Variants.URL
		case "encoding":
			cfg.Variants.Encoding = v.Variants.Encoding
		case "filter-column":
			cfg.Variants.FilterColumn = v.Variants.FilterColumn
		case "filter":
			cfg.Variants.FilterSubstring = v.Variants.FilterSubstring
		case "chunk-size":
			cfg.Variants.ChunkSize = v.Variants.ChunkSize
		case "batch-size":
			cfg.Variants.BatchSize = v.Variants.BatchSize
		case "bundles-dir":
			cfg.Bundles.Dir = v.Bundles.Dir
		case "pattern":
			cfg.Bundles.Pattern = v.Bundles.Pattern
		case "bare-resources":
			cfg.Bundles.MapBareResources = v.Bundles.MapBareResources
		case "metrics-backend":
			cfg.Metrics.Backend = v.Metrics.Backend
		case "pushgateway-url":
			cfg.Metrics.PushgatewayURL = v.Metrics.PushgatewayURL
		case "datadog-addr":
			cfg.Metrics.DatadogAddr = v.Metrics.DatadogAddr
		case "skipped-dir":
			cfg.SkippedDir = v.SkippedDir
		}
	})
}
