package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/vjranagit/curvecatalog/pkg/types"
)

// Sentinel errors returned by the catalog.
var (
	ErrNotFound = errors.New("catalog: record not found")
	ErrClosed   = errors.New("catalog: closed")
)

// Catalog is the contract for the manifest and series store.
type Catalog interface {
	// PutDataframe registers or replaces a dataframe manifest
	PutDataframe(ctx context.Context, df *types.Dataframe) error

	// GetDataframe retrieves a dataframe manifest by ID
	GetDataframe(ctx context.Context, id string) (*types.Dataframe, error)

	// ListDataframes lists all dataframe manifests sorted by ID
	ListDataframes(ctx context.Context) ([]*types.Dataframe, error)

	// PutPipeline registers or replaces a pipeline manifest
	PutPipeline(ctx context.Context, pl *types.Pipeline) error

	// GetPipeline retrieves a pipeline manifest by ID
	GetPipeline(ctx context.Context, id string) (*types.Pipeline, error)

	// ListPipelines lists all pipeline manifests sorted by ID
	ListPipelines(ctx context.Context) ([]*types.Pipeline, error)

	// FindDataframes finds dataframe IDs carrying every given topic tag
	FindDataframes(ctx context.Context, tags []string) ([]string, error)

	// WriteSeries stores numeric columns for a dataframe
	WriteSeries(ctx context.Context, req *types.SeriesWriteRequest) error

	// ReadSeries reads a stored column over a date range
	ReadSeries(ctx context.Context, req *types.SeriesReadRequest) (*types.SeriesReadResult, error)

	// Validate checks the reference graph and glimpse invariants
	Validate(ctx context.Context) ([]types.Issue, error)

	// Close closes the catalog
	Close() error
}

// Config holds catalog configuration
type Config struct {
	Path             string
	CompressionLevel int
	EnableJournal    bool
}

// DefaultConfig returns default catalog configuration
func DefaultConfig() *Config {
	return &Config{
		Path:             "./data",
		CompressionLevel: 3,
		EnableJournal:    true,
	}
}

// Key prefixes inside badger. Downstream code relies on these staying stable.
const (
	dataframePrefix = "df/"
	pipelinePrefix  = "pl/"
	seriesPrefix    = "series/"
)

// badgerCatalog implements Catalog using BadgerDB
type badgerCatalog struct {
	cfg        *Config
	db         *badger.DB
	index      *Index
	compressor *Compressor
	journal    *Journal
	mu         sync.RWMutex
	closed     bool
}

// Open opens (or creates) a catalog at cfg.Path. Any pending journal
// entries are replayed into badger before the index is rebuilt.
func Open(cfg *Config) (Catalog, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	opts := badger.DefaultOptions(filepath.Join(cfg.Path, "badger"))
	opts.Logger = nil // Disable BadgerDB logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %w", err)
	}

	compressor, err := NewCompressor(cfg.CompressionLevel)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create compressor: %w", err)
	}

	c := &badgerCatalog{
		cfg:        cfg,
		db:         db,
		index:      NewIndex(),
		compressor: compressor,
	}

	if err := ReplayJournal(cfg.Path, c.applyEntry); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal replay failed: %w", err)
	}

	if cfg.EnableJournal {
		journal, err := NewJournal(cfg.Path)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		c.journal = journal
	}

	if err := c.rebuildIndex(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to rebuild index: %w", err)
	}

	return c, nil
}

// applyEntry applies a replayed journal entry directly to badger.
func (c *badgerCatalog) applyEntry(entry *JournalEntry) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(entry.Key), entry.Payload)
	})
}

// rebuildIndex scans the manifest prefixes and repopulates the in-memory index.
func (c *badgerCatalog) rebuildIndex() error {
	c.index.Clear()

	return c.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())

			switch {
			case strings.HasPrefix(key, dataframePrefix):
				var df types.Dataframe
				if err := item.Value(func(val []byte) error {
					return json.Unmarshal(val, &df)
				}); err != nil {
					return fmt.Errorf("failed to decode %s: %w", key, err)
				}
				c.index.AddDataframe(&df)

			case strings.HasPrefix(key, pipelinePrefix):
				var pl types.Pipeline
				if err := item.Value(func(val []byte) error {
					return json.Unmarshal(val, &pl)
				}); err != nil {
					return fmt.Errorf("failed to decode %s: %w", key, err)
				}
				c.index.AddPipeline(&pl)
			}
		}

		return nil
	})
}

// PutDataframe implements Catalog.PutDataframe
func (c *badgerCatalog) PutDataframe(ctx context.Context, df *types.Dataframe) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if df.ID == "" {
		return fmt.Errorf("dataframe ID is required")
	}
	if df.Glimpse != nil && df.Glimpse.Columns != len(df.Glimpse.Fields) {
		return fmt.Errorf("glimpse column count %d does not match %d descriptors",
			df.Glimpse.Columns, len(df.Glimpse.Fields))
	}

	payload, err := json.Marshal(df)
	if err != nil {
		return fmt.Errorf("failed to marshal dataframe: %w", err)
	}

	key := dataframePrefix + df.ID
	if err := c.setWithJournal(key, payload); err != nil {
		return err
	}

	c.index.AddDataframe(df)
	return nil
}

// GetDataframe implements Catalog.GetDataframe
func (c *badgerCatalog) GetDataframe(ctx context.Context, id string) (*types.Dataframe, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, ErrClosed
	}

	var df types.Dataframe
	if err := c.get(dataframePrefix+id, &df); err != nil {
		return nil, err
	}
	return &df, nil
}

// ListDataframes implements Catalog.ListDataframes
func (c *badgerCatalog) ListDataframes(ctx context.Context) ([]*types.Dataframe, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, ErrClosed
	}
	return c.index.Dataframes(), nil
}

// PutPipeline implements Catalog.PutPipeline
func (c *badgerCatalog) PutPipeline(ctx context.Context, pl *types.Pipeline) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if pl.ID == "" {
		return fmt.Errorf("pipeline ID is required")
	}

	payload, err := json.Marshal(pl)
	if err != nil {
		return fmt.Errorf("failed to marshal pipeline: %w", err)
	}

	key := pipelinePrefix + pl.ID
	if err := c.setWithJournal(key, payload); err != nil {
		return err
	}

	c.index.AddPipeline(pl)
	return nil
}

// GetPipeline implements Catalog.GetPipeline
func (c *badgerCatalog) GetPipeline(ctx context.Context, id string) (*types.Pipeline, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, ErrClosed
	}

	var pl types.Pipeline
	if err := c.get(pipelinePrefix+id, &pl); err != nil {
		return nil, err
	}
	return &pl, nil
}

// ListPipelines implements Catalog.ListPipelines
func (c *badgerCatalog) ListPipelines(ctx context.Context) ([]*types.Pipeline, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, ErrClosed
	}
	return c.index.Pipelines(), nil
}

// FindDataframes implements Catalog.FindDataframes
func (c *badgerCatalog) FindDataframes(ctx context.Context, tags []string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, ErrClosed
	}
	return c.index.FindByTags(tags), nil
}

// seriesPayload is the stored form of one numeric column.
type seriesPayload struct {
	Count            int    `json:"count"`
	CompressedDates  []byte `json:"compressed_dates"`
	CompressedValues []byte `json:"compressed_values"`
}

// WriteSeries implements Catalog.WriteSeries
func (c *badgerCatalog) WriteSeries(ctx context.Context, req *types.SeriesWriteRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if req.DataframeID == "" {
		return fmt.Errorf("dataframe ID is required")
	}

	for _, series := range req.Series {
		if err := c.writeColumn(req.DataframeID, &series); err != nil {
			return fmt.Errorf("failed to write column %q: %w", series.Column, err)
		}
	}

	return nil
}

// writeColumn compresses and stores one column of a dataframe.
func (c *badgerCatalog) writeColumn(dataframeID string, series *types.Series) error {
	if len(series.Dates) != len(series.Values) {
		return fmt.Errorf("dates and values length mismatch: %d vs %d",
			len(series.Dates), len(series.Values))
	}
	if len(series.Dates) == 0 {
		return fmt.Errorf("empty series")
	}
	if !sort.SliceIsSorted(series.Dates, func(i, j int) bool {
		return series.Dates[i].Before(series.Dates[j])
	}) {
		return fmt.Errorf("dates must be sorted ascending")
	}

	dates := make([]int64, len(series.Dates))
	for i, d := range series.Dates {
		dates[i] = d.Unix()
	}

	compressedDates, err := c.compressor.CompressDates(dates)
	if err != nil {
		return fmt.Errorf("failed to compress dates: %w", err)
	}

	compressedVals, err := c.compressor.CompressValues(series.Values)
	if err != nil {
		return fmt.Errorf("failed to compress values: %w", err)
	}

	payload := &seriesPayload{
		Count:            len(series.Dates),
		CompressedDates:  compressedDates,
		CompressedValues: compressedVals,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	key := seriesKey(dataframeID, series.Column)
	return c.setWithJournal(key, payloadBytes)
}

// ReadSeries implements Catalog.ReadSeries
func (c *badgerCatalog) ReadSeries(ctx context.Context, req *types.SeriesReadRequest) (*types.SeriesReadResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, ErrClosed
	}

	var payload seriesPayload
	if err := c.get(seriesKey(req.DataframeID, req.Column), &payload); err != nil {
		return nil, err
	}

	dates, err := c.compressor.DecompressDates(payload.CompressedDates, payload.Count)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress dates: %w", err)
	}

	values, err := c.compressor.DecompressValues(payload.CompressedValues, payload.Count)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress values: %w", err)
	}

	series := types.Series{Column: req.Column}
	for i := 0; i < payload.Count; i++ {
		date := time.Unix(dates[i], 0).UTC()
		if !req.StartDate.IsZero() && date.Before(req.StartDate) {
			continue
		}
		if !req.EndDate.IsZero() && date.After(req.EndDate) {
			continue
		}
		series.Dates = append(series.Dates, date)
		series.Values = append(series.Values, values[i])
	}

	return &types.SeriesReadResult{Series: series}, nil
}

// Validate implements Catalog.Validate
func (c *badgerCatalog) Validate(ctx context.Context) ([]types.Issue, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, ErrClosed
	}
	return ValidateIndex(c.index), nil
}

// Close implements Catalog.Close
func (c *badgerCatalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.journal != nil {
		if err := c.journal.Close(); err != nil {
			return err
		}
	}
	if c.compressor != nil {
		c.compressor.Close()
	}
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// setWithJournal writes a key to badger and mirrors it into the journal.
func (c *badgerCatalog) setWithJournal(key string, payload []byte) error {
	if c.journal != nil {
		if err := c.journal.Append(key, payload); err != nil {
			return fmt.Errorf("journal append failed: %w", err)
		}
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), payload)
	})
}

// get reads a key from badger and unmarshals it into out.
func (c *badgerCatalog) get(key string, out interface{}) error {
	var payloadBytes []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			payloadBytes = append([]byte{}, val...)
			return nil
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(payloadBytes, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

// seriesKey builds the storage key for one column of a dataframe.
func seriesKey(dataframeID, column string) string {
	return seriesPrefix + dataframeID + "/" + column
}
