// Package analytics composes the pure analysis packages over data fetched
// from the store and the external signal collector.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/kosarica/grooming-service/internal/alerts"
	"github.com/kosarica/grooming-service/internal/availability"
	"github.com/kosarica/grooming-service/internal/calendar"
	"github.com/kosarica/grooming-service/internal/classification"
	"github.com/kosarica/grooming-service/internal/forecast"
	"github.com/kosarica/grooming-service/internal/heatmap"
	"github.com/kosarica/grooming-service/internal/optimistic"
	"github.com/kosarica/grooming-service/internal/report"
	"github.com/kosarica/grooming-service/internal/segmentation"
	"github.com/kosarica/grooming-service/internal/signals"
	"github.com/kosarica/grooming-service/internal/telemetry"
	"github.com/kosarica/grooming-service/internal/types"
)

const (
	// DefaultLookback is the analysis window when a request gives none
	DefaultLookback = 30 * 24 * time.Hour
	// DefaultSegmentLookback is the purchase history segmentation reads back
	// from the reference instant
	DefaultSegmentLookback = 365 * 24 * time.Hour
)

// Config holds the business parameters of the service
type Config struct {
	Location *time.Location
	Business signals.Location
	Capacity int
	Blocks   []availability.Block
	// SegmentLookback bounds the history used for RFM segmentation. It is
	// independent of the requested period so that recency can exceed it.
	SegmentLookback time.Duration
}

// Period is a half-open time range
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Validate checks that the period is usable
func (p Period) Validate() error {
	if p.From.IsZero() || p.To.IsZero() {
		return fmt.Errorf("period bounds are required")
	}
	if !p.To.After(p.From) {
		return fmt.Errorf("period end must be after its start")
	}
	return nil
}

// Service runs the analytics operations. It holds no request state and is
// safe for concurrent use.
type Service struct {
	store   Store
	signals SignalCollector
	config  Config
	now     func() time.Time
	metrics *MetricsRecorder
	logger  zerolog.Logger
}

// Option customizes a Service
type Option func(*Service)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a service
func NewService(store Store, collector SignalCollector, config Config, logger zerolog.Logger, opts ...Option) *Service {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.Capacity <= 0 {
		config.Capacity = 5
	}
	if len(config.Blocks) == 0 {
		config.Blocks = availability.DefaultBlocks()
	}
	if config.SegmentLookback <= 0 {
		config.SegmentLookback = DefaultSegmentLookback
	}
	s := &Service{
		store:   store,
		signals: collector,
		config:  config,
		now:     time.Now,
		metrics: NewMetricsRecorder(),
		logger:  logger.With().Str("component", "analytics").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the business time zone
func (s *Service) Location() *time.Location {
	return s.config.Location
}

// DefaultPeriod is the trailing lookback window ending now
func (s *Service) DefaultPeriod() Period {
	to := s.now().In(s.config.Location)
	return Period{From: to.Add(-DefaultLookback), To: to}
}

func (s *Service) start(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(*error)) {
	ctx, span := telemetry.Tracer().Start(ctx, "analytics."+operation, trace.WithAttributes(attrs...))
	began := time.Now()
	return ctx, func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.metrics.RecordOperation(operation, time.Since(began), err)
	}
}

func periodAttrs(p Period) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("period.from", p.From.Format(time.RFC3339)),
		attribute.String("period.to", p.To.Format(time.RFC3339)),
	}
}

// asOf is the reference instant for a period: its end, unless that is in the
// future.
func (s *Service) asOf(p Period) time.Time {
	now := s.now().In(s.config.Location)
	if p.To.IsZero() || p.To.After(now) {
		return now
	}
	return p.To.In(s.config.Location)
}

// transactions fetches the period and moves timestamps into the business
// location
func (s *Service) transactions(ctx context.Context, p Period) ([]types.Transaction, error) {
	txs, err := s.store.Transactions(ctx, p.From, p.To)
	if err != nil {
		return nil, err
	}
	for i := range txs {
		if txs[i].HasValidDate() {
			txs[i].CreatedAt = txs[i].CreatedAt.In(s.config.Location)
		}
	}
	return txs, nil
}

// engine builds the classifier from the stored rules. A failed read falls
// back to the default keywords.
func (s *Service) engine(ctx context.Context) *classification.Engine {
	rules, err := s.store.ClassificationRules(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load classification rules, using defaults")
		return classification.NewEngine(nil)
	}
	return classification.NewEngine(rules)
}

type snapshot struct {
	transactions []types.Transaction
	// history is the segmentation window, set only when clients are loaded
	history  []types.Transaction
	clients  []types.Client
	products []types.Product
	engine   *classification.Engine
}

// historyPeriod is the window segmentation reads: the segment lookback ending
// at the period end, widened to cover the period itself.
func (s *Service) historyPeriod(p Period) Period {
	from := s.asOf(p).Add(-s.config.SegmentLookback)
	if p.From.Before(from) {
		from = p.From
	}
	return Period{From: from, To: p.To}
}

func (s *Service) load(ctx context.Context, p Period, withClients, withProducts bool) (*snapshot, error) {
	snap := &snapshot{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		txs, err := s.transactions(gctx, p)
		if err != nil {
			return fmt.Errorf("failed to load transactions: %w", err)
		}
		snap.transactions = txs
		return nil
	})
	if withClients {
		g.Go(func() error {
			txs, err := s.transactions(gctx, s.historyPeriod(p))
			if err != nil {
				return fmt.Errorf("failed to load transaction history: %w", err)
			}
			snap.history = txs
			return nil
		})
		g.Go(func() error {
			clients, err := s.store.Clients(gctx)
			if err != nil {
				return fmt.Errorf("failed to load clients: %w", err)
			}
			snap.clients = clients
			return nil
		})
	}
	if withProducts {
		g.Go(func() error {
			products, err := s.store.Products(gctx)
			if err != nil {
				return fmt.Errorf("failed to load products: %w", err)
			}
			snap.products = products
			return nil
		})
	}
	g.Go(func() error {
		snap.engine = s.engine(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Dashboard is every analysis over one period
type Dashboard struct {
	Period      Period                `json:"period"`
	Forecast    forecast.Result       `json:"forecast"`
	Segments    []types.ClientProfile `json:"segments"`
	Summary     map[types.Segment]int `json:"segment_summary"`
	Heatmap     heatmap.Heatmap       `json:"heatmap"`
	Busiest     *heatmap.Peak         `json:"busiest"`
	Alerts      []types.Alert         `json:"alerts"`
	Signals     signals.Snapshot      `json:"signals"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// Dashboard runs forecast, heatmap and alerts over the period together with
// the current external signals. Segmentation reads the longer history window.
func (s *Service) Dashboard(ctx context.Context, p Period) (d *Dashboard, err error) {
	ctx, done := s.start(ctx, "dashboard", periodAttrs(p)...)
	defer done(&err)

	d, _, err = s.dashboard(ctx, p)
	return d, err
}

func (s *Service) dashboard(ctx context.Context, p Period) (*Dashboard, *snapshot, error) {
	var (
		snap *snapshot
		sig  signals.Snapshot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap, err = s.load(gctx, p, true, true)
		return err
	})
	g.Go(func() error {
		sig = s.signals.Collect(gctx, s.config.Business)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	asOf := s.asOf(p)
	fc := forecast.Forecast(snap.transactions, snap.engine.ItemTarget)
	profiles := segmentation.Segment(snap.history, snap.clients, asOf)
	hm := heatmap.Build(snap.transactions)
	generated := alerts.Generate(alerts.Input{
		Transactions: snap.transactions,
		Predictions:  fc.Forecast,
		Clients:      profiles,
		Inventory:    snap.products,
		External:     externalFactors(sig),
		Now:          asOf,
	})
	s.metrics.RecordAlerts(generated)

	d := &Dashboard{
		Period:      p,
		Forecast:    fc,
		Segments:    profiles,
		Summary:     segmentation.Summary(profiles),
		Heatmap:     hm,
		Alerts:      generated,
		Signals:     sig,
		GeneratedAt: s.now(),
	}
	if peak, ok := hm.Busiest(); ok {
		d.Busiest = &peak
	}
	return d, snap, nil
}

func externalFactors(sig signals.Snapshot) *alerts.ExternalFactors {
	opp := sig.Opportunity
	return &alerts.ExternalFactors{
		Weather:     sig.Weather,
		Traffic:     sig.Traffic,
		Trends:      sig.Trends,
		Opportunity: &opp,
	}
}

// Forecast projects the revenue of the period forward
func (s *Service) Forecast(ctx context.Context, p Period) (res forecast.Result, err error) {
	ctx, done := s.start(ctx, "forecast", periodAttrs(p)...)
	defer done(&err)

	snap, err := s.load(ctx, p, false, false)
	if err != nil {
		return forecast.Result{}, err
	}
	return forecast.Forecast(snap.transactions, snap.engine.ItemTarget), nil
}

// Segments is the RFM segmentation with per-segment counts
type Segments struct {
	Profiles []types.ClientProfile `json:"profiles"`
	Summary  map[types.Segment]int `json:"summary"`
}

// Segments classifies the clients with purchases in the segment lookback
// ending at the period end
func (s *Service) Segments(ctx context.Context, p Period) (res Segments, err error) {
	ctx, done := s.start(ctx, "segments", periodAttrs(p)...)
	defer done(&err)

	snap, err := s.load(ctx, p, true, false)
	if err != nil {
		return Segments{}, err
	}
	profiles := segmentation.Segment(snap.history, snap.clients, s.asOf(p))
	return Segments{Profiles: profiles, Summary: segmentation.Summary(profiles)}, nil
}

// Heatmap accumulates the revenue of the period by weekday and block
func (s *Service) Heatmap(ctx context.Context, p Period) (hm heatmap.Heatmap, err error) {
	ctx, done := s.start(ctx, "heatmap", periodAttrs(p)...)
	defer done(&err)

	txs, err := s.transactions(ctx, p)
	if err != nil {
		return heatmap.Heatmap{}, fmt.Errorf("failed to load transactions: %w", err)
	}
	return heatmap.Build(txs), nil
}

// Alerts evaluates every alert rule over the period
func (s *Service) Alerts(ctx context.Context, p Period) ([]types.Alert, error) {
	d, err := s.Dashboard(ctx, p)
	if err != nil {
		return nil, err
	}
	return d.Alerts, nil
}

// EvaluateAlerts runs the rules over a caller-supplied snapshot
func (s *Service) EvaluateAlerts(in alerts.Input) []types.Alert {
	out := alerts.Generate(in)
	s.metrics.RecordAlerts(out)
	return out
}

// Signals returns the current external signals at the business location
func (s *Service) Signals(ctx context.Context) signals.Snapshot {
	ctx, done := s.start(ctx, "signals")
	defer done(nil)
	return s.signals.Collect(ctx, s.config.Business)
}

// Availability reports the booking status of each block on date. A store
// failure reports every block as available. Rows whose end is not after their
// start still occupy the block they start in.
func (s *Service) Availability(ctx context.Context, date time.Time) []types.AvailabilityBlock {
	ctx, done := s.start(ctx, "availability", attribute.String("date", date.Format("2006-01-02")))
	defer done(nil)

	day := date.In(s.config.Location)
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, s.config.Location)
	raw, err := s.store.Appointments(ctx, from, from.AddDate(0, 0, 1))
	if err != nil {
		s.logger.Warn().Err(err).Time("date", from).Msg("Failed to load appointments, failing open")
		return availability.FailOpen(s.config.Blocks, s.config.Capacity)
	}

	appts := make([]types.Appointment, 0, len(raw))
	for _, r := range raw {
		a, reason, ok := calendar.ParseAppointment(r, s.config.Location)
		if !ok {
			s.logger.Debug().Str("appointment", r.ID).Str("reason", reason).Msg("Skipped appointment")
			continue
		}
		appts = append(appts, a)
	}
	return availability.Compute(from, s.config.Blocks, appts, s.config.Capacity)
}

// CalendarView is the normalized calendar of a range
type CalendarView struct {
	calendar.Result
	Resources []types.Employee `json:"resources"`
}

// Calendar normalizes the appointments starting in [from, to)
func (s *Service) Calendar(ctx context.Context, from, to time.Time) (view CalendarView, err error) {
	ctx, done := s.start(ctx, "calendar")
	defer done(&err)

	var (
		raw       []types.RawAppointment
		employees []types.Employee
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		raw, err = s.store.Appointments(gctx, from, to)
		if err != nil {
			return fmt.Errorf("failed to load appointments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		employees, err = s.store.Employees(gctx)
		if err != nil {
			return fmt.Errorf("failed to load employees: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return CalendarView{}, err
	}

	res := calendar.Normalize(raw, s.config.Location)
	for _, d := range res.Dropped {
		s.logger.Debug().Str("appointment", d.ID).Str("reason", d.Reason).Msg("Dropped appointment")
	}
	if employees == nil {
		employees = []types.Employee{}
	}
	return CalendarView{Result: res, Resources: employees}, nil
}

// ClassifyTransaction classifies a stored transaction with the current rules
// and persists the flags
func (s *Service) ClassifyTransaction(ctx context.Context, id string) (flags classification.Flags, err error) {
	ctx, done := s.start(ctx, "classify", attribute.String("transaction.id", id))
	defer done(&err)

	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return flags, err
	}
	flags = s.engine(ctx).Classify(tx.Items)
	if err := s.store.SetTransactionFlags(ctx, id, flags.IsGrooming, flags.IsStore); err != nil {
		s.metrics.RecordClassification("error")
		return flags, fmt.Errorf("failed to persist classification: %w", err)
	}
	s.metrics.RecordClassification("ok")
	return flags, nil
}

// ClassifyItems classifies line items with the stored rules without
// persisting anything. Non-empty rules override the stored set.
func (s *Service) ClassifyItems(ctx context.Context, items []types.LineItem, rules []types.ClassificationRule) classification.Flags {
	if len(rules) > 0 {
		return classification.NewEngine(rules).Classify(items)
	}
	return s.engine(ctx).Classify(items)
}

// BackfillResult summarizes a backfill run
type BackfillResult struct {
	Processed int `json:"processed"`
	Grooming  int `json:"grooming"`
	Store     int `json:"store"`
	Failed    int `json:"failed"`
}

// Backfill classifies up to limit transactions that were never classified.
// A failed write is counted and skipped.
func (s *Service) Backfill(ctx context.Context, limit int) (res BackfillResult, err error) {
	ctx, done := s.start(ctx, "backfill", attribute.Int("limit", limit))
	defer done(&err)

	txs, err := s.store.UnclassifiedTransactions(ctx, limit)
	if err != nil {
		return res, fmt.Errorf("failed to load unclassified transactions: %w", err)
	}
	engine := s.engine(ctx)
	for _, tx := range txs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		flags := engine.Classify(tx.Items)
		if err := s.store.SetTransactionFlags(ctx, tx.ID, flags.IsGrooming, flags.IsStore); err != nil {
			res.Failed++
			s.metrics.RecordClassification("error")
			s.logger.Warn().Err(err).Str("transaction", tx.ID).Msg("Failed to persist classification")
			continue
		}
		s.metrics.RecordClassification("ok")
		res.Processed++
		if flags.IsGrooming {
			res.Grooming++
		}
		if flags.IsStore {
			res.Store++
		}
	}
	return res, nil
}

// Rules returns the stored classification rules in evaluation order
func (s *Service) Rules(ctx context.Context) ([]types.ClassificationRule, error) {
	rules, err := s.store.ClassificationRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load classification rules: %w", err)
	}
	if rules == nil {
		rules = []types.ClassificationRule{}
	}
	return rules, nil
}

// ReplaceRules validates and stores a new rule set
func (s *Service) ReplaceRules(ctx context.Context, rules []types.ClassificationRule) (err error) {
	ctx, done := s.start(ctx, "replace_rules", attribute.Int("rules", len(rules)))
	defer done(&err)

	if err := classification.ValidateRules(rules); err != nil {
		return err
	}
	return s.store.ReplaceRules(ctx, rules)
}

// UpdateProductCategory changes a product category optimistically. The
// observer sees the pending state before the write and the confirmed or
// rolled back state after it.
func (s *Service) UpdateProductCategory(ctx context.Context, id, category string, observer optimistic.Observer[types.Product]) (p types.Product, err error) {
	ctx, done := s.start(ctx, "update_category", attribute.String("product.id", id))
	defer done(&err)

	current, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return types.Product{}, err
	}

	update := optimistic.Begin(*current, func(p types.Product) types.Product {
		p.Category = category
		return p
	}, observer)

	return update.Resolve(ctx,
		func(ctx context.Context, p types.Product) error {
			_, err := s.store.UpdateProductCategory(ctx, p.ID, p.Category)
			return err
		},
		func(ctx context.Context) (types.Product, error) {
			fresh, err := s.store.GetProduct(ctx, id)
			if err != nil {
				return types.Product{}, err
			}
			return *fresh, nil
		},
	)
}

// Report assembles the comprehensive report for role
func (s *Service) Report(ctx context.Context, p Period, role report.Role) (r report.Report, err error) {
	ctx, done := s.start(ctx, "report", append(periodAttrs(p), attribute.String("role", string(role)))...)
	defer done(&err)

	d, snap, err := s.dashboard(ctx, p)
	if err != nil {
		return report.Report{}, err
	}

	return report.Assemble(report.Input{
		Period:       report.Period{From: p.From, To: p.To},
		Transactions: snap.transactions,
		Profiles:     d.Segments,
		Forecast:     d.Forecast,
		Products:     snap.products,
		Alerts:       d.Alerts,
		External:     externalFactors(d.Signals),
		Classify:     snap.engine.ItemTarget,
		Now:          s.now(),
	}, report.PermissionsForRole(role)), nil
}

// IsNotFound reports whether err means a missing row
func IsNotFound(err error) bool {
	return errors.Is(err, types.ErrNotFound)
}
