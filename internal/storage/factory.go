package storage

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
)

// Config selects and parameterizes a backend.
type Config struct {
	// Kind is the registered backend name, e.g. "sqlite" or "postgres".
	Kind string

	// DSN is passed to the backend's driver unchanged.
	DSN string

	// ConnectRetries is the number of extra attempts made when the backend
	// fails to open or ping. Zero means a single attempt.
	ConnectRetries int
}

// Factory opens a Store for a Config. Backends register one per kind.
type Factory func(ctx context.Context, cfg Config) (Store, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// newBackOff is a test hook for the retry policy used by New.
var newBackOff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	return b
}

// Register registers (or replaces) the Factory for kind. It is typically
// called from a backend package's init function.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[strings.ToLower(kind)] = f
}

// Kinds lists the registered backend names in sorted order.
func Kinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New opens a Store of cfg.Kind. Transient open failures are retried with
// exponential backoff up to cfg.ConnectRetries times; an unknown kind fails
// immediately.
func New(ctx context.Context, cfg Config) (Store, error) {
	kind := strings.ToLower(strings.TrimSpace(cfg.Kind))
	regMu.RLock()
	f, ok := factories[kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown kind %q (registered: %s)", cfg.Kind, strings.Join(Kinds(), ", "))
	}

	retries := cfg.ConnectRetries
	if retries < 0 {
		retries = 0
	}

	var (
		s       Store
		attempt int
	)
	op := func() error {
		attempt++
		var err error
		s, err = f(ctx, cfg)
		if err != nil && attempt <= retries {
			log.Printf("storage: open kind=%s attempt=%d err=%v", kind, attempt, err)
		}
		return err
	}
	b := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), uint64(retries)), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", kind, err)
	}
	return s, nil
}
