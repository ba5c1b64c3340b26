package pricing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"costcalc/internal/logging"
)

// Resolver resolves (calculator, region) pairs to pricing snapshots.
// It starts from the embedded default table, attempts a remote refresh at
// most once per process, and caches snapshots until an explicit override.
// Construct explicit instances for tests; there is no ambient singleton.
type Resolver struct {
	mu        sync.RWMutex
	table     *Table
	source    Source
	snapshots map[string]*Snapshot
	overrides map[string]map[string]decimal.Decimal

	fetchOnce sync.Once
	url       string
	client    *http.Client
	logger    *zap.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithURL sets the remote pricing resource
func WithURL(url string) Option {
	return func(r *Resolver) { r.url = url }
}

// WithHTTPClient sets the HTTP client used for the remote fetch
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) { r.client = client }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithTable seeds the resolver with a specific base table (tests)
func WithTable(table *Table) Option {
	return func(r *Resolver) {
		r.table = table
		r.source = SourceTable
	}
}

// NewResolver creates a resolver seeded with the embedded default table
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		table:     EmbeddedTable(),
		source:    SourceEmbedded,
		snapshots: make(map[string]*Snapshot),
		overrides: make(map[string]map[string]decimal.Decimal),
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logging.Logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetPricing resolves pricing for a calculator and region, attempting the
// remote table fetch first if it has not been attempted yet. Fetch failures
// never propagate: the embedded table answers instead.
func (r *Resolver) GetPricing(ctx context.Context, calculator, region string) *Snapshot {
	r.fetchOnce.Do(func() {
		r.refresh(ctx)
	})
	return r.GetPricingSync(calculator, region)
}

// GetPricingSync resolves pricing without any I/O, from whatever table is
// currently in memory. Snapshots are cached per (calculator, region) and
// reused until an override invalidates them.
func (r *Resolver) GetPricingSync(calculator, region string) *Snapshot {
	key := calculator + "/" + NormalizeRegion(region)

	r.mu.RLock()
	if snap, ok := r.snapshots[key]; ok {
		r.mu.RUnlock()
		return snap
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if snap, ok := r.snapshots[key]; ok {
		return snap
	}
	snap := r.buildSnapshot(calculator, region)
	r.snapshots[key] = snap
	return snap
}

// buildSnapshot assembles a snapshot from the current table.
// Caller holds the write lock.
func (r *Resolver) buildSnapshot(calculator, region string) *Snapshot {
	normalized := NormalizeRegion(region)

	entry, known := r.table.Regions[normalized]
	if !known {
		if normalized != DefaultRegion {
			r.logger.Debug("unknown region, using default",
				zap.String("region", normalized),
				zap.String("calculator", calculator))
		}
		normalized = DefaultRegion
		entry = r.table.Regions[DefaultRegion]
	}
	multiplier := entry.Multiplier
	if multiplier.IsZero() {
		multiplier = decimal.NewFromInt(1)
	}

	data := make(map[string]Price)
	if calc, ok := r.table.Calculators[calculator]; ok {
		for field, amount := range calc.flatten() {
			data[field] = Price{Amount: amount, Source: SourceTable}
		}
	}

	// Region replacement rates take precedence over the base table.
	if repl, ok := entry.Overrides[calculator]; ok {
		for field, amount := range repl {
			data[field] = Price{Amount: amount, Source: SourceTable}
		}
	}

	// Explicit overrides win over everything and are tagged as such.
	if ov, ok := r.overrides[calculator]; ok {
		for field, amount := range ov {
			data[field] = Price{Amount: amount, Source: SourceOverride}
		}
	}

	return &Snapshot{
		Calculator:  calculator,
		Region:      normalized,
		Multiplier:  multiplier,
		Data:        data,
		TableSource: r.source,
	}
}

// refresh attempts to replace the in-memory table from the remote resource.
// Any failure (no URL, network error, non-200, malformed JSON) leaves the
// current table in place and logs a warning.
func (r *Resolver) refresh(ctx context.Context) {
	if r.url == "" {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		r.logger.Warn("pricing fetch skipped", zap.Error(err))
		return
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("pricing fetch failed, using embedded defaults",
			zap.String("url", r.url), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.Warn("pricing fetch returned non-200, using embedded defaults",
			zap.String("url", r.url), zap.Int("status", resp.StatusCode))
		return
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		r.logger.Warn("pricing fetch read failed, using embedded defaults", zap.Error(err))
		return
	}

	table, err := ParseTable(body)
	if err != nil {
		r.logger.Warn("pricing fetch returned malformed JSON, using embedded defaults",
			zap.Error(err))
		return
	}

	r.mu.Lock()
	r.table = table
	r.source = SourceRemote
	r.snapshots = make(map[string]*Snapshot)
	r.mu.Unlock()

	r.logger.Info("pricing table refreshed",
		zap.String("version", table.Version),
		zap.Int("calculators", len(table.Calculators)))
}

// OverrideTable replaces the entire base table in memory and drops all
// cached snapshots. This is the only invalidation path.
func (r *Resolver) OverrideTable(table *Table) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table = table
	r.source = SourceOverride
	r.snapshots = make(map[string]*Snapshot)
}

// OverrideRate replaces a single rate for a calculator. The override is
// tagged so that explanations can surface it.
func (r *Resolver) OverrideRate(calculator, field string, amount decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.overrides[calculator] == nil {
		r.overrides[calculator] = make(map[string]decimal.Decimal)
	}
	r.overrides[calculator][field] = amount
	r.snapshots = make(map[string]*Snapshot)
}

// RestoreDefaults reinstates the embedded table and clears overrides
func (r *Resolver) RestoreDefaults() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table = EmbeddedTable()
	r.source = SourceEmbedded
	r.overrides = make(map[string]map[string]decimal.Decimal)
	r.snapshots = make(map[string]*Snapshot)
}

// Regions returns the known region keys from the current table
func (r *Resolver) Regions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	regions := make([]string, 0, len(r.table.Regions))
	for k := range r.table.Regions {
		regions = append(regions, k)
	}
	return regions
}

// TableVersion returns the version string of the current table
func (r *Resolver) TableVersion() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.table.Version == "" {
		return fmt.Sprintf("unversioned (%s)", r.source)
	}
	return r.table.Version
}
