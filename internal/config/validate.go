package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"clinetl/internal/datasource/file"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "store.kind",
// "variants.chunk_size"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate performs static checks over cfg. kinds lists the registered store
// backends; a nil kinds skips that check. It does not touch the filesystem or
// the network.
func Validate(cfg Config, kinds []string) []Issue {
	var issues []Issue
	issues = append(issues, validateStore(cfg.Store, kinds)...)
	issues = append(issues, validateVariants(cfg.Variants)...)
	issues = append(issues, validateBundles(cfg.Bundles)...)
	issues = append(issues, validateMetrics(cfg.Metrics)...)
	return issues
}

func validateStore(s Store, kinds []string) []Issue {
	var issues []Issue

	kind := strings.ToLower(strings.TrimSpace(s.Kind))
	if kind == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "store.kind",
			Message:  "store.kind must not be empty",
		})
	} else if kinds != nil && !containsFold(kinds, kind) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "store.kind",
			Message:  fmt.Sprintf("unknown store kind %q (registered: %s)", s.Kind, strings.Join(kinds, ", ")),
		})
	}

	if strings.TrimSpace(s.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "store.dsn",
			Message:  "store.dsn must not be empty",
		})
	} else if kind == "sqlite" && (s.DSN == ":memory:" || strings.Contains(s.DSN, "mode=memory")) {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "store.dsn",
			Message:  "in-memory sqlite database is discarded when the command exits",
		})
	}

	if s.ConnectRetries < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "store.connect_retries",
			Message:  "store.connect_retries must be >= 0",
		})
	}
	return issues
}

func validateVariants(v Variants) []Issue {
	var issues []Issue

	if v.ChunkSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "variants.chunk_size",
			Message:  "variants.chunk_size must be > 0",
		})
	}
	if v.BatchSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "variants.batch_size",
			Message:  "variants.batch_size must be > 0",
		})
	}
	if strings.TrimSpace(v.FilterColumn) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "variants.filter_column",
			Message:  "variants.filter_column must not be empty",
		})
	}
	if v.FilterSubstring == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "variants.filter_substring",
			Message:  "empty filter substring selects every row with a non-null filter column",
		})
	} else if strings.ToLower(v.FilterSubstring) == v.FilterSubstring && strings.ToUpper(v.FilterSubstring) != v.FilterSubstring {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "variants.filter_substring",
			Message:  fmt.Sprintf("matching is case-sensitive; %q will not match capitalised values", v.FilterSubstring),
		})
	}
	if _, err := file.Decoder(v.Encoding); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "variants.encoding",
			Message:  err.Error(),
		})
	}
	if v.URL != "" {
		if u, err := url.Parse(v.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "variants.url",
				Message:  fmt.Sprintf("variants.url %q must be an absolute http(s) URL", v.URL),
			})
		}
	}
	return issues
}

func validateBundles(b Bundles) []Issue {
	var issues []Issue
	if b.Pattern != "" {
		if _, err := filepath.Match(b.Pattern, "probe"); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "bundles.pattern",
				Message:  fmt.Sprintf("invalid pattern %q: %v", b.Pattern, err),
			})
		}
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch strings.ToLower(strings.TrimSpace(m.Backend)) {
	case "", "none":
	case "pushgateway":
		if m.PushgatewayURL == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires metrics.pushgateway_url",
			})
		}
	case "datadog":
		if m.DatadogAddr == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.datadog_addr",
				Message:  "datadog backend requires metrics.datadog_addr",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q (want none, pushgateway or datadog)", m.Backend),
		})
	}
	return issues
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
