package fhir

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"clinetl/internal/datasource/file"
	"clinetl/internal/metrics"
	"clinetl/internal/skiplog"
	"clinetl/internal/storage"
	"clinetl/internal/transformer/builtin"

	"github.com/Jeffail/gabs"
)

// Stage labels skip records and metrics.
const Stage = "bundles"

// DefaultPattern selects the documents MapDirectory reads.
const DefaultPattern = "*.json"

// DefaultBatchSize bounds the rows buffered per table before they are
// written to the open transaction.
const DefaultBatchSize = 1000

// MapOptions configures MapDirectory. Zero values select the defaults.
type MapOptions struct {
	// Pattern is matched against file base names (filepath.Match syntax).
	Pattern string

	// MapBareResources also maps documents that are a single resource
	// rather than a Bundle.
	MapBareResources bool

	BatchSize int

	Job   string
	Skips *skiplog.Recorder
}

// MapDirectory walks dir recursively in lexical order and maps every
// matching document into the clinical tables.
//
// All writes of one call share a single transaction that is committed after
// the walk. Unreadable or unparsable documents are skipped; an unreadable
// dir or any store failure rolls the transaction back and is returned.
func MapDirectory(ctx context.Context, dir string, store storage.Store, opt MapOptions) error {
	if opt.Pattern == "" {
		opt.Pattern = DefaultPattern
	}
	if opt.BatchSize <= 0 {
		opt.BatchSize = DefaultBatchSize
	}

	if err := storage.EnsureTables(ctx, store, Tables...); err != nil {
		return fmt.Errorf("fhir: %w", err)
	}

	tx, err := store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("fhir: begin: %w", err)
	}
	m, err := newMapper(tx, opt)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("fhir: %w", err)
	}

	err = file.Walk(ctx, dir, opt.Pattern, func(path string) error {
		return m.mapFile(ctx, path)
	}, func(path string, err error) {
		opt.Skips.Skip(Stage, "unreadable_dir", fmt.Sprintf("%s: %v", path, err))
	})
	if err == nil {
		err = m.flush(ctx)
	}
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("bundles: rollback failed: %v", rbErr)
		}
		return fmt.Errorf("fhir: map %s: %w", dir, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("fhir: commit: %w", err)
	}

	log.Printf("bundles: dir=%s files=%d resources=%d skipped=%d", dir, m.files, m.resources, m.skipped)
	metrics.RecordRows(opt.Job, Stage, "read", m.resources)
	metrics.RecordRows(opt.Job, Stage, "skipped", m.skipped)
	var written, batches int64
	for _, b := range m.batches {
		written += b.Total()
		batches += b.Batches()
	}
	metrics.RecordRows(opt.Job, Stage, "written", written)
	metrics.RecordBatches(opt.Job, Stage, batches)
	return nil
}

// mapper routes resources to one upsert batch per table.
type mapper struct {
	opt     MapOptions
	batches map[string]*storage.Batch
	order   []string

	files     int64
	resources int64
	skipped   int64
}

func newMapper(w storage.Writer, opt MapOptions) (*mapper, error) {
	m := &mapper{opt: opt, batches: make(map[string]*storage.Batch, len(Tables))}
	lastWins := builtin.DeDup{Key: 0, Policy: "keep-last"}
	for _, def := range Tables {
		def := def
		keyCols := def.KeyColumns()
		b, err := storage.NewBatch(Stage+"/"+def.FQN, def.ColumnNames(), opt.BatchSize,
			func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
				return w.Upsert(ctx, def.FQN, columns, keyCols, lastWins.Apply(rows))
			})
		if err != nil {
			return nil, err
		}
		m.batches[def.FQN] = b
		m.order = append(m.order, def.FQN)
	}
	return m, nil
}

func (m *mapper) flush(ctx context.Context) error {
	for _, name := range m.order {
		if err := m.batches[name].Flush(ctx); err != nil {
			return fmt.Errorf("upsert %s: %w", name, err)
		}
	}
	return nil
}

func (m *mapper) skip(reason, detail string) {
	m.skipped++
	m.opt.Skips.Skip(Stage, reason, detail)
}

// mapFile maps one document. Only store errors are returned.
func (m *mapper) mapFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		m.skip("unreadable_file", fmt.Sprintf("%s: %v", path, err))
		return nil
	}
	doc, err := parseDocument(data)
	if err != nil {
		m.skip("invalid_json", fmt.Sprintf("%s: %v", path, err))
		return nil
	}
	m.files++

	if resourceType(doc) != TypeBundle {
		if !m.opt.MapBareResources {
			return nil
		}
		return m.mapResource(ctx, path, doc)
	}

	entry := doc.S("entry")
	if _, ok := entry.Data().([]any); !ok {
		return nil
	}
	entries, err := entry.Children()
	if err != nil {
		return nil
	}
	for _, e := range entries {
		res := e.S("resource")
		if res == nil || res.Data() == nil {
			continue
		}
		if err := m.mapResource(ctx, path, res); err != nil {
			return err
		}
	}
	return nil
}

func (m *mapper) mapResource(ctx context.Context, path string, res *gabs.Container) error {
	typ := resourceType(res)
	switch typ {
	case TypePatient, TypeObservation, TypeCondition, TypeEncounter:
	default:
		return nil
	}
	m.resources++

	switch typ {
	case TypePatient:
		var p patient
		if err := decode(res.Data(), &p); err != nil {
			m.skip("decode_error", fmt.Sprintf("%s: %s: %v", path, typ, err))
			return nil
		}
		if p.ID == "" {
			m.skip("missing_id", path+": "+typ)
			return nil
		}
		return m.add(ctx, PersonTable, p.row())

	case TypeObservation:
		var o observation
		if err := decode(res.Data(), &o); err != nil {
			m.skip("decode_error", fmt.Sprintf("%s: %s: %v", path, typ, err))
			return nil
		}
		if o.ID == "" {
			m.skip("missing_id", path+": "+typ)
			return nil
		}
		obs, meas := o.rows()
		if err := m.add(ctx, ObservationTable, obs); err != nil {
			return err
		}
		if meas != nil {
			return m.add(ctx, MeasurementTable, meas)
		}
		return nil

	case TypeCondition:
		var c condition
		if err := decode(res.Data(), &c); err != nil {
			m.skip("decode_error", fmt.Sprintf("%s: %s: %v", path, typ, err))
			return nil
		}
		if c.ID == "" {
			m.skip("missing_id", path+": "+typ)
			return nil
		}
		row := c.row()
		if err := m.add(ctx, ConditionTable, row); err != nil {
			return err
		}
		return m.add(ctx, ConditionOccurrenceTable, append([]any(nil), row...))

	default: // TypeEncounter
		var e encounter
		if err := decode(res.Data(), &e); err != nil {
			m.skip("decode_error", fmt.Sprintf("%s: %s: %v", path, typ, err))
			return nil
		}
		if e.ID == "" {
			m.skip("missing_id", path+": "+typ)
			return nil
		}
		return m.add(ctx, VisitOccurrenceTable, e.row())
	}
}

func (m *mapper) add(ctx context.Context, table string, row []any) error {
	if err := m.batches[table].Add(ctx, row); err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

// parseDocument decodes one JSON document, keeping numbers as json.Number so
// quantity values keep their source text.
func parseDocument(data []byte) (*gabs.Container, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	doc, err := gabs.ParseJSONDecoder(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return doc, nil
}

func resourceType(c *gabs.Container) string {
	s, _ := c.S("resourceType").Data().(string)
	return s
}
